//go:build unit

package commands_test

import (
	"net/http"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/gitbridge/internal/infrastructure/repositories"
	doubles "github.com/rios0rios0/gitbridge/test/infrastructure/repositorydoubles"
)

// registryWith returns a registry whose every type yields the given spy.
func registryWith(spy *doubles.SpyGitProvider) *infraRepos.ProviderRegistry {
	registry := infraRepos.NewProviderRegistry()
	for _, providerType := range []entities.ProviderType{entities.GITHUB, entities.GITLAB, entities.BITBUCKET, entities.AZURE} {
		registry.Register(providerType, func(_ string, _ *http.Client, _ entities.Credential) repositories.GitProvider {
			return spy
		})
	}
	return registry
}
