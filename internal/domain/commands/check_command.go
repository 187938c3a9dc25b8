package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	infraRepos "github.com/rios0rios0/gitbridge/internal/infrastructure/repositories"
)

// Check is the interface for the check command.
type Check interface {
	Execute(ctx context.Context, settings *entities.Settings, opts CheckOptions) ([]CheckResult, error)
}

// CheckOptions holds runtime options for a single check.
type CheckOptions struct {
	ProviderName string // If set, only check this provider
}

// CheckResult is the outcome of checking one configured provider.
type CheckResult struct {
	Name string
	Type entities.ProviderType
	User *entities.User
	Err  error
}

// CheckCommand verifies the connection and credentials of every configured provider.
type CheckCommand struct {
	providerRegistry *infraRepos.ProviderRegistry
}

// NewCheckCommand creates a new CheckCommand.
func NewCheckCommand(providerRegistry *infraRepos.ProviderRegistry) *CheckCommand {
	return &CheckCommand{providerRegistry: providerRegistry}
}

// Execute checks each provider and returns one result per provider. The error reports how
// many providers failed; individual causes are kept in the results.
func (it *CheckCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts CheckOptions,
) ([]CheckResult, error) {
	targets := settings.Providers
	if opts.ProviderName != "" {
		provider, err := selectProvider(settings, opts.ProviderName)
		if err != nil {
			return nil, err
		}
		targets = []entities.ProviderSettings{provider}
	}

	results := make([]CheckResult, 0, len(targets))
	failures := 0
	for _, providerSettings := range targets {
		result := it.check(ctx, providerSettings)
		if result.Err != nil {
			failures++
			logger.Errorf("Provider %q (%s) failed: %v", result.Name, result.Type, result.Err)
		} else if result.User != nil {
			logger.Infof("Provider %q (%s) authenticated as %q", result.Name, result.Type, result.User.Username)
		}
		results = append(results, result)
	}

	if failures > 0 {
		return results, fmt.Errorf("%d of %d providers failed the connection check", failures, len(targets))
	}
	return results, nil
}

func (it *CheckCommand) check(ctx context.Context, providerSettings entities.ProviderSettings) CheckResult {
	result := CheckResult{Name: providerSettings.Name, Type: providerSettings.ProviderType()}

	provider, err := buildProvider(it.providerRegistry, providerSettings)
	if err != nil {
		result.Err = err
		return result
	}
	if err = provider.CheckConnection(ctx); err != nil {
		result.Err = err
		return result
	}
	result.User, result.Err = provider.GetCurrentUser(ctx)
	return result
}
