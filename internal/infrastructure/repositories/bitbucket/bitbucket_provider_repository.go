package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/fanout"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/restclient"
)

const (
	// DefaultBaseURL is the Bitbucket Cloud REST API.
	DefaultBaseURL = "https://api.bitbucket.org/2.0"

	// tokenUsername is the fixed basic-auth user Bitbucket expects for access tokens.
	tokenUsername = "x-token-auth"

	// discoveryPageLen is the page size used while discovering workspaces and their projects.
	discoveryPageLen = 100

	// ResourceTypeProject is the only custom resource type Bitbucket exposes.
	ResourceTypeProject = "project"
)

// BitbucketProviderRepository implements repositories.GitProvider for Bitbucket Cloud.
type BitbucketProviderRepository struct {
	client *restclient.Client
}

// NewProviderRepository creates a Bitbucket provider. No request is made until the first operation.
func NewProviderRepository(
	baseURL string,
	httpClient *http.Client,
	credential entities.Credential,
) repositories.GitProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &BitbucketProviderRepository{
		client: restclient.New(baseURL, httpClient, restclient.BasicAuthorizer(tokenUsername, credential)),
	}
}

func (p *BitbucketProviderRepository) CheckConnection(ctx context.Context) error {
	_, err := p.GetCurrentUser(ctx)
	return err
}

func (p *BitbucketProviderRepository) GetCurrentUser(ctx context.Context) (*entities.User, error) {
	var dto userDTO
	if _, err := p.client.Get(ctx, "user", nil, &dto); err != nil {
		return nil, err
	}
	user := toUser(dto)
	return &user, nil
}

func (p *BitbucketProviderRepository) ListOrganizations(
	ctx context.Context,
	page entities.PageRequest,
) (entities.Page[entities.Organization], error) {
	var dto pageDTO[workspaceDTO]
	if _, err := p.client.Get(ctx, "workspaces", pageQuery(page), &dto); err != nil {
		return entities.Page[entities.Organization]{}, err
	}
	return entities.NewPage(toOrganizations(dto.Values), page.Normalize(), dto.Next != ""), nil
}

func (p *BitbucketProviderRepository) GetOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	if id == "" {
		return nil, entities.NewConfigurationError("workspace slug is required")
	}
	var dto workspaceDTO
	if _, err := p.client.Get(ctx, restclient.Path("workspaces", id), nil, &dto); err != nil {
		if entities.IsNotFound(err) {
			return nil, nil //nolint:nilnil // absent organization is not an error
		}
		return nil, err
	}
	org := toOrganization(dto)
	return &org, nil
}

func (p *BitbucketProviderRepository) ListMembers(
	ctx context.Context,
	org entities.Organization,
	page entities.PageRequest,
) (entities.Page[entities.User], error) {
	if org.ID == "" {
		return entities.Page[entities.User]{}, entities.NewConfigurationError("workspace slug is required to list members")
	}
	var dto pageDTO[memberDTO]
	if _, err := p.client.Get(ctx, restclient.Path("workspaces", org.ID, "members"), pageQuery(page), &dto); err != nil {
		return entities.Page[entities.User]{}, err
	}
	return entities.NewPage(toMembers(dto.Values), page.Normalize(), dto.Next != ""), nil
}

// ListRepositories lists the repositories of a workspace, or those the authenticated user
// owns when no workspace is given. Extra parameters (q, sort, role) are passed through.
func (p *BitbucketProviderRepository) ListRepositories(
	ctx context.Context,
	org *entities.Organization,
	_ *entities.User,
	extraParameters map[string]string,
	page entities.PageRequest,
) (entities.Page[entities.Repository], error) {
	query := pageQuery(page)
	path := "repositories"
	if org != nil {
		if org.ID == "" {
			return entities.Page[entities.Repository]{}, entities.NewConfigurationError("workspace slug is required to list its repositories")
		}
		path = restclient.Path("repositories", org.ID)
	} else {
		query.Set("role", "owner")
	}
	query = restclient.WithParameters(query, extraParameters)

	var dto pageDTO[repositoryDTO]
	if _, err := p.client.Get(ctx, path, query, &dto); err != nil {
		return entities.Page[entities.Repository]{}, err
	}
	return entities.NewPage(toRepositories(dto.Values), page.Normalize(), dto.Next != ""), nil
}

// GetRepository looks a repository up by UUID or slug inside the ownerID workspace.
func (p *BitbucketProviderRepository) GetRepository(ctx context.Context, id, ownerID string) (*entities.Repository, error) {
	if id == "" || ownerID == "" {
		return nil, entities.NewConfigurationError("workspace slug and repository id are required")
	}
	var dto repositoryDTO
	if _, err := p.client.Get(ctx, restclient.Path("repositories", ownerID, id), nil, &dto); err != nil {
		if entities.IsNotFound(err) {
			return nil, nil //nolint:nilnil // absent repository is not an error
		}
		return nil, err
	}
	repository := toRepository(dto)
	return &repository, nil
}

// CreateRepository creates a git repository in the OwnerID workspace. A "project" custom
// property is sent back as-is so the repository lands in that project.
func (p *BitbucketProviderRepository) CreateRepository(
	ctx context.Context,
	repositoryToCreate entities.Repository,
) (*entities.Repository, error) {
	if repositoryToCreate.Name == "" {
		return nil, entities.NewConfigurationError("repository name is required")
	}
	switch repositoryToCreate.OwnerType {
	case entities.OwnerTypeOrganization, entities.OwnerTypeAccount, "":
	default:
		return nil, entities.NewConfigurationError("unsupported owner type %q", repositoryToCreate.OwnerType)
	}
	if repositoryToCreate.OwnerID == "" {
		return nil, entities.NewConfigurationError("a workspace slug is required to create a repository")
	}

	body := toCreateRepositoryDTO(repositoryToCreate)
	slug := repositoryToCreate.StringProperty("slug")
	if slug == "" {
		slug = slugOf(repositoryToCreate.Name)
	}

	var dto repositoryDTO
	if _, err := p.client.Post(ctx, restclient.Path("repositories", repositoryToCreate.OwnerID, slug), nil, body, &dto); err != nil {
		return nil, err
	}
	created := toRepository(dto)
	return &created, nil
}

// ListCommits lists the history of the main branch, or the commits reachable from "to" and
// not from "from" when filters hold a pair.
func (p *BitbucketProviderRepository) ListCommits(
	ctx context.Context,
	repository entities.Repository,
	filters *entities.CommitFilters,
	page entities.PageRequest,
) (entities.Page[entities.Commit], error) {
	comparison, err := filters.Comparison()
	if err != nil {
		return entities.Page[entities.Commit]{}, err
	}
	base, err := repositoryPath(repository)
	if err != nil {
		return entities.Page[entities.Commit]{}, err
	}

	query := pageQuery(page)
	path := base + "/commits"
	switch {
	case comparison != nil:
		query.Set("include", comparison.To)
		query.Set("exclude", comparison.From)
	case repository.DefaultBranch != "":
		path += "/" + url.PathEscape(repository.DefaultBranch)
	}

	var dto pageDTO[commitDTO]
	if _, err = p.client.Get(ctx, path, query, &dto); err != nil {
		return entities.Page[entities.Commit]{}, err
	}
	return entities.NewPage(toCommits(dto.Values), page.Normalize(), dto.Next != ""), nil
}

func (p *BitbucketProviderRepository) ListBranches(
	ctx context.Context,
	repository entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Branch], error) {
	base, err := repositoryPath(repository)
	if err != nil {
		return entities.Page[entities.Branch]{}, err
	}
	var dto pageDTO[refDTO]
	if _, err = p.client.Get(ctx, base+"/refs/branches", pageQuery(page), &dto); err != nil {
		return entities.Page[entities.Branch]{}, err
	}
	return entities.NewPage(toBranches(dto.Values, repository.DefaultBranch), page.Normalize(), dto.Next != ""), nil
}

func (p *BitbucketProviderRepository) ListTags(
	ctx context.Context,
	repository entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Tag], error) {
	base, err := repositoryPath(repository)
	if err != nil {
		return entities.Page[entities.Tag]{}, err
	}
	var dto pageDTO[refDTO]
	if _, err = p.client.Get(ctx, base+"/refs/tags", pageQuery(page), &dto); err != nil {
		return entities.Page[entities.Tag]{}, err
	}
	return entities.NewPage(toTags(dto.Values), page.Normalize(), dto.Next != ""), nil
}

// GetProviderCustomResources lists projects. With a "workspace" parameter a single page of that
// workspace is fetched; without it every workspace is discovered and queried, and the
// aggregate is returned as one page.
func (p *BitbucketProviderRepository) GetProviderCustomResources(
	ctx context.Context,
	resourceType string,
	parameters map[string]string,
	page entities.PageRequest,
) (entities.Page[entities.ProviderCustomResource], error) {
	if resourceType != ResourceTypeProject {
		return entities.Page[entities.ProviderCustomResource]{}, fmt.Errorf(
			"%w: bitbucket has no %q resources", entities.ErrUnsupportedResourceType, resourceType,
		)
	}
	page = page.Normalize()

	if workspace := parameters["workspace"]; workspace != "" {
		projects, next, err := p.listProjects(ctx, workspace, pageQuery(page))
		if err != nil {
			return entities.Page[entities.ProviderCustomResource]{}, err
		}
		return entities.NewPage(projects, page, next), nil
	}

	workspaces, err := p.discoverWorkspaces(ctx)
	if err != nil {
		return entities.Page[entities.ProviderCustomResource]{}, err
	}
	projects, err := fanout.Collect(ctx, workspaces, fanout.DefaultConcurrency,
		func(ctx context.Context, workspace string) ([]entities.ProviderCustomResource, error) {
			resources, _, listErr := p.listProjects(ctx, workspace, url.Values{"pagelen": {strconv.Itoa(discoveryPageLen)}})
			return resources, listErr
		})
	if err != nil {
		return entities.Page[entities.ProviderCustomResource]{}, err
	}
	return entities.NewPage(projects, page, false), nil
}

func (p *BitbucketProviderRepository) listProjects(
	ctx context.Context,
	workspace string,
	query url.Values,
) ([]entities.ProviderCustomResource, bool, error) {
	var dto pageDTO[projectDTO]
	if _, err := p.client.Get(ctx, restclient.Path("workspaces", workspace, "projects"), query, &dto); err != nil {
		return nil, false, err
	}
	return toProjects(dto.Values, workspace), dto.Next != "", nil
}

// discoverWorkspaces follows the workspace listing to its last page and returns every slug.
func (p *BitbucketProviderRepository) discoverWorkspaces(ctx context.Context) ([]string, error) {
	var slugs []string
	path := "workspaces"
	query := url.Values{"pagelen": {strconv.Itoa(discoveryPageLen)}}
	for path != "" {
		var dto pageDTO[workspaceDTO]
		if _, err := p.client.Get(ctx, path, query, &dto); err != nil {
			return nil, err
		}
		for _, workspace := range dto.Values {
			slugs = append(slugs, workspace.Slug)
		}
		// next is an absolute URL that already carries the query
		path, query = dto.Next, nil
	}
	logger.Debugf("Discovered %d Bitbucket workspaces", len(slugs))
	return slugs, nil
}

// repositoryPath builds "repositories/{workspace}/{repo}" preferring the slug over the UUID.
func repositoryPath(repository entities.Repository) (string, error) {
	id := repository.StringProperty("slug")
	if id == "" {
		id = repository.ID
	}
	if repository.OwnerID == "" || id == "" {
		return "", entities.NewConfigurationError("repository workspace and id are required")
	}
	return restclient.Path("repositories", repository.OwnerID, id), nil
}

func slugOf(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

func pageQuery(page entities.PageRequest) url.Values {
	return restclient.PageQuery(page, "page", "pagelen")
}
