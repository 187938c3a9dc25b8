//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
)

// SpyGitProvider implements repositories.GitProvider as a configurable spy.
// Every call is recorded in Calls by operation name.
type SpyGitProvider struct {
	mu    sync.Mutex
	Calls []string

	// --- identity ---
	BaseURL    string
	Credential entities.Credential

	// --- CheckConnection / GetCurrentUser ---
	ConnectionErr error
	CurrentUser   *entities.User
	CurrentErr    error

	// --- organizations ---
	Organizations []entities.Organization
	Organization  *entities.Organization
	OrgErr        error
	Members       []entities.User

	// --- repositories ---
	Repositories     []entities.Repository
	Repository       *entities.Repository
	RepoErr          error
	CreatedInputs    []entities.Repository
	ListedOrg        *entities.Organization
	ListedUser       *entities.User
	ListedParameters map[string]string

	// --- git objects ---
	Commits      []entities.Commit
	Branches     []entities.Branch
	Tags         []entities.Tag
	GitErr       error
	CommitFilter *entities.CommitFilters

	// --- custom resources ---
	Resources      []entities.ProviderCustomResource
	ResourceErr    error
	ResourceType   string
	ResourceParams map[string]string

	LastPage entities.PageRequest
}

var _ repositories.GitProvider = (*SpyGitProvider)(nil)

func (s *SpyGitProvider) record(call string, page entities.PageRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, call)
	s.LastPage = page
}

// CallCount returns how many times the named operation was invoked.
func (s *SpyGitProvider) CallCount(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, recorded := range s.Calls {
		if recorded == call {
			count++
		}
	}
	return count
}

func (s *SpyGitProvider) CheckConnection(_ context.Context) error {
	s.record("CheckConnection", entities.PageRequest{})
	return s.ConnectionErr
}

func (s *SpyGitProvider) GetCurrentUser(_ context.Context) (*entities.User, error) {
	s.record("GetCurrentUser", entities.PageRequest{})
	return s.CurrentUser, s.CurrentErr
}

func (s *SpyGitProvider) ListOrganizations(
	_ context.Context,
	page entities.PageRequest,
) (entities.Page[entities.Organization], error) {
	s.record("ListOrganizations", page)
	if s.OrgErr != nil {
		return entities.Page[entities.Organization]{}, s.OrgErr
	}
	return entities.SlicePage(s.Organizations, page), nil
}

func (s *SpyGitProvider) GetOrganization(_ context.Context, _ string) (*entities.Organization, error) {
	s.record("GetOrganization", entities.PageRequest{})
	return s.Organization, s.OrgErr
}

func (s *SpyGitProvider) ListMembers(
	_ context.Context,
	_ entities.Organization,
	page entities.PageRequest,
) (entities.Page[entities.User], error) {
	s.record("ListMembers", page)
	if s.OrgErr != nil {
		return entities.Page[entities.User]{}, s.OrgErr
	}
	return entities.SlicePage(s.Members, page), nil
}

func (s *SpyGitProvider) ListRepositories(
	_ context.Context,
	org *entities.Organization,
	user *entities.User,
	extraParameters map[string]string,
	page entities.PageRequest,
) (entities.Page[entities.Repository], error) {
	s.record("ListRepositories", page)
	s.mu.Lock()
	s.ListedOrg, s.ListedUser, s.ListedParameters = org, user, extraParameters
	s.mu.Unlock()
	if s.RepoErr != nil {
		return entities.Page[entities.Repository]{}, s.RepoErr
	}
	return entities.SlicePage(s.Repositories, page), nil
}

func (s *SpyGitProvider) GetRepository(_ context.Context, _, _ string) (*entities.Repository, error) {
	s.record("GetRepository", entities.PageRequest{})
	return s.Repository, s.RepoErr
}

func (s *SpyGitProvider) CreateRepository(
	_ context.Context,
	repositoryToCreate entities.Repository,
) (*entities.Repository, error) {
	s.record("CreateRepository", entities.PageRequest{})
	s.mu.Lock()
	s.CreatedInputs = append(s.CreatedInputs, repositoryToCreate)
	s.mu.Unlock()
	if s.RepoErr != nil {
		return nil, s.RepoErr
	}
	return &repositoryToCreate, nil
}

func (s *SpyGitProvider) ListCommits(
	_ context.Context,
	_ entities.Repository,
	filters *entities.CommitFilters,
	page entities.PageRequest,
) (entities.Page[entities.Commit], error) {
	s.record("ListCommits", page)
	s.mu.Lock()
	s.CommitFilter = filters
	s.mu.Unlock()
	if s.GitErr != nil {
		return entities.Page[entities.Commit]{}, s.GitErr
	}
	return entities.SlicePage(s.Commits, page), nil
}

func (s *SpyGitProvider) ListBranches(
	_ context.Context,
	_ entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Branch], error) {
	s.record("ListBranches", page)
	if s.GitErr != nil {
		return entities.Page[entities.Branch]{}, s.GitErr
	}
	return entities.SlicePage(s.Branches, page), nil
}

func (s *SpyGitProvider) ListTags(
	_ context.Context,
	_ entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Tag], error) {
	s.record("ListTags", page)
	if s.GitErr != nil {
		return entities.Page[entities.Tag]{}, s.GitErr
	}
	return entities.SlicePage(s.Tags, page), nil
}

func (s *SpyGitProvider) GetProviderCustomResources(
	_ context.Context,
	resourceType string,
	parameters map[string]string,
	page entities.PageRequest,
) (entities.Page[entities.ProviderCustomResource], error) {
	s.record("GetProviderCustomResources", page)
	s.mu.Lock()
	s.ResourceType, s.ResourceParams = resourceType, parameters
	s.mu.Unlock()
	if s.ResourceErr != nil {
		return entities.Page[entities.ProviderCustomResource]{}, s.ResourceErr
	}
	return entities.SlicePage(s.Resources, page), nil
}
