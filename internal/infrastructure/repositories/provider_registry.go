package repositories

import (
	"net/http"
	"slices"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/gitbridge/internal/domain/repositories"
)

// ProviderFactory builds an adapter. It must not perform network I/O.
type ProviderFactory func(baseURL string, httpClient *http.Client, credential entities.Credential) domainRepos.GitProvider

// ProviderRegistry is the provider factory: it maps each provider type to its adapter constructor.
type ProviderRegistry struct {
	providers map[entities.ProviderType]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[entities.ProviderType]ProviderFactory),
	}
}

// Register adds a provider factory for the given type, replacing any previous one.
func (r *ProviderRegistry) Register(providerType entities.ProviderType, factory ProviderFactory) {
	r.providers[providerType] = factory
}

// Get returns an adapter for providerType, or false when the type is not registered.
func (r *ProviderRegistry) Get(
	providerType entities.ProviderType,
	baseURL string,
	httpClient *http.Client,
	credential entities.Credential,
) (domainRepos.GitProvider, bool) {
	factory, ok := r.providers[providerType]
	if !ok {
		return nil, false
	}
	return factory(baseURL, httpClient, credential), true
}

// Types returns the registered provider types in a stable order.
func (r *ProviderRegistry) Types() []entities.ProviderType {
	types := make([]entities.ProviderType, 0, len(r.providers))
	for providerType := range r.providers {
		types = append(types, providerType)
	}
	slices.Sort(types)
	return types
}
