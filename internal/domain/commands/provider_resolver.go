package commands

import (
	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/gitbridge/internal/infrastructure/repositories"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/restclient"
)

// selectProvider returns the settings named name. An empty name is accepted only when a
// single provider is configured.
func selectProvider(settings *entities.Settings, name string) (entities.ProviderSettings, error) {
	if name == "" {
		if len(settings.Providers) == 1 {
			return settings.Providers[0], nil
		}
		return entities.ProviderSettings{}, entities.NewConfigurationError(
			"%d providers are configured, choose one with --provider", len(settings.Providers),
		)
	}
	provider, ok := settings.FindProvider(name)
	if !ok {
		return entities.ProviderSettings{}, entities.NewConfigurationError("no provider named %q is configured", name)
	}
	return provider, nil
}

// buildProvider creates the adapter of one configured provider with its HTTP client settings.
func buildProvider(
	registry *infraRepos.ProviderRegistry,
	providerSettings entities.ProviderSettings,
) (repositories.GitProvider, error) {
	httpClient := restclient.NewHTTPClient(providerSettings.Timeout, providerSettings.RequestsPerSecond)
	provider, ok := registry.Get(
		providerSettings.ProviderType(),
		providerSettings.BaseURL,
		httpClient,
		providerSettings.Credential(),
	)
	if !ok {
		return nil, entities.NewConfigurationError("unsupported provider type %q", providerSettings.Type)
	}
	return provider, nil
}
