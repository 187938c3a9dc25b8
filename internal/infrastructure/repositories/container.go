package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	adoRepo "github.com/rios0rios0/gitbridge/internal/infrastructure/repositories/azuredevops"
	bbRepo "github.com/rios0rios0/gitbridge/internal/infrastructure/repositories/bitbucket"
	ghRepo "github.com/rios0rios0/gitbridge/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/gitbridge/internal/infrastructure/repositories/gitlab"
)

// NewDefaultProviderRegistry creates a registry holding every supported adapter.
func NewDefaultProviderRegistry() *ProviderRegistry {
	reg := NewProviderRegistry()
	reg.Register(entities.GITHUB, ghRepo.NewProviderRepository)
	reg.Register(entities.GITLAB, glRepo.NewProviderRepository)
	reg.Register(entities.BITBUCKET, bbRepo.NewProviderRepository)
	reg.Register(entities.AZURE, adoRepo.NewProviderRepository)
	return reg
}

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(NewDefaultProviderRegistry)
}
