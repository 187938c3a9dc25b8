package repositories

import (
	"context"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

// GitProvider abstracts a Git hosting service (GitHub, GitLab, Bitbucket, Azure DevOps).
// Implementations are stateless per call and safe for concurrent use when the
// underlying HTTP client is.
//
// Every method returns *entities.AuthenticationError when the provider answers 401 and
// *entities.ClientError for any other failure, including transport errors (status 500).
type GitProvider interface {
	// CheckConnection issues the cheapest authenticated request available.
	CheckConnection(ctx context.Context) error

	// GetCurrentUser returns the principal the credential authenticates.
	GetCurrentUser(ctx context.Context) (*entities.User, error)

	// ListOrganizations lists the organizations visible to the authenticated user.
	ListOrganizations(ctx context.Context, page entities.PageRequest) (entities.Page[entities.Organization], error)

	// GetOrganization returns nil (and no error) when the organization does not exist.
	GetOrganization(ctx context.Context, id string) (*entities.Organization, error)

	// ListMembers lists the users belonging to an organization.
	ListMembers(
		ctx context.Context, org entities.Organization, page entities.PageRequest,
	) (entities.Page[entities.User], error)

	// ListRepositories lists the repositories owned by org when org is not nil, otherwise
	// the public and private repositories owned by user.
	ListRepositories(
		ctx context.Context,
		org *entities.Organization,
		user *entities.User,
		extraParameters map[string]string,
		page entities.PageRequest,
	) (entities.Page[entities.Repository], error)

	// GetRepository returns nil (and no error) when the repository does not exist.
	// Providers that resolve ids within an owner context use ownerID, others ignore it.
	GetRepository(ctx context.Context, id, ownerID string) (*entities.Repository, error)

	// CreateRepository creates the repository and returns it fully populated.
	CreateRepository(ctx context.Context, repositoryToCreate entities.Repository) (*entities.Repository, error)

	// ListCommits lists commits of the repository's default context, or the range
	// described by filters. Invalid filters fail before any request is made.
	ListCommits(
		ctx context.Context,
		repository entities.Repository,
		filters *entities.CommitFilters,
		page entities.PageRequest,
	) (entities.Page[entities.Commit], error)

	// ListBranches lists branches in provider order.
	ListBranches(
		ctx context.Context, repository entities.Repository, page entities.PageRequest,
	) (entities.Page[entities.Branch], error)

	// ListTags lists tags in provider order.
	ListTags(
		ctx context.Context, repository entities.Repository, page entities.PageRequest,
	) (entities.Page[entities.Tag], error)

	// GetProviderCustomResources lists provider-specific resources of resourceType.
	// Providers without that type return an error wrapping entities.ErrUnsupportedResourceType.
	GetProviderCustomResources(
		ctx context.Context,
		resourceType string,
		parameters map[string]string,
		page entities.PageRequest,
	) (entities.Page[entities.ProviderCustomResource], error)
}
