package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	gl "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/time/rate"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/restclient"
)

// DefaultBaseURL is the public GitLab SaaS instance.
const DefaultBaseURL = "https://gitlab.com"

// GitLabProviderRepository implements repositories.GitProvider for GitLab.
type GitLabProviderRepository struct {
	client *gl.Client
	err    error
}

// NewProviderRepository creates a GitLab provider. No request is made until the first operation;
// a credential or base URL the client cannot use is reported by every operation.
func NewProviderRepository(
	baseURL string,
	httpClient *http.Client,
	credential entities.Credential,
) repositories.GitProvider {
	token, err := restclient.TokenOf(credential)
	if err != nil {
		return &GitLabProviderRepository{err: err}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	options := []gl.ClientOptionFunc{
		gl.WithBaseURL(baseURL),
		gl.WithoutRetries(),
		gl.WithCustomLimiter(rate.NewLimiter(rate.Inf, 0)),
	}
	if httpClient != nil {
		options = append(options, gl.WithHTTPClient(httpClient))
	}
	// personal access tokens are accepted as bearer tokens
	client, err := gl.NewOAuthClient(token, options...)
	if err != nil {
		return &GitLabProviderRepository{
			err: entities.NewConfigurationError("invalid GitLab base URL %q: %v", baseURL, err),
		}
	}
	return &GitLabProviderRepository{client: client}
}

func (p *GitLabProviderRepository) CheckConnection(ctx context.Context) error {
	_, err := p.GetCurrentUser(ctx)
	return err
}

func (p *GitLabProviderRepository) GetCurrentUser(ctx context.Context) (*entities.User, error) {
	if p.err != nil {
		return nil, p.err
	}
	user, resp, err := p.client.Users.CurrentUser(gl.WithContext(ctx))
	if err != nil {
		return nil, translateError(resp, err)
	}
	result := toUser(user)
	return &result, nil
}

func (p *GitLabProviderRepository) ListOrganizations(
	ctx context.Context,
	page entities.PageRequest,
) (entities.Page[entities.Organization], error) {
	if p.err != nil {
		return entities.Page[entities.Organization]{}, p.err
	}
	page = page.Normalize()
	groups, resp, err := p.client.Groups.ListGroups(
		&gl.ListGroupsOptions{ListOptions: listOptions(page)}, gl.WithContext(ctx),
	)
	if err != nil {
		return entities.Page[entities.Organization]{}, translateError(resp, err)
	}
	return entities.NewPage(toOrganizations(groups), page, hasNext(resp)), nil
}

func (p *GitLabProviderRepository) GetOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	if p.err != nil {
		return nil, p.err
	}
	group, resp, err := p.client.Groups.GetGroup(id, nil, gl.WithContext(ctx))
	if err != nil {
		err = translateError(resp, err)
		if entities.IsNotFound(err) {
			return nil, nil //nolint:nilnil // absent organization is not an error
		}
		return nil, err
	}
	org := toOrganization(group)
	return &org, nil
}

func (p *GitLabProviderRepository) ListMembers(
	ctx context.Context,
	org entities.Organization,
	page entities.PageRequest,
) (entities.Page[entities.User], error) {
	if p.err != nil {
		return entities.Page[entities.User]{}, p.err
	}
	if org.ID == "" {
		return entities.Page[entities.User]{}, entities.NewConfigurationError("group id is required to list members")
	}
	page = page.Normalize()
	members, resp, err := p.client.Groups.ListGroupMembers(
		org.ID, &gl.ListGroupMembersOptions{ListOptions: listOptions(page)}, gl.WithContext(ctx),
	)
	if err != nil {
		return entities.Page[entities.User]{}, translateError(resp, err)
	}
	return entities.NewPage(toMembers(members), page, hasNext(resp)), nil
}

// ListRepositories lists group projects, or the projects owned by the authenticated user
// (public and private) when no group is given.
func (p *GitLabProviderRepository) ListRepositories(
	ctx context.Context,
	org *entities.Organization,
	_ *entities.User,
	extraParameters map[string]string,
	page entities.PageRequest,
) (entities.Page[entities.Repository], error) {
	if p.err != nil {
		return entities.Page[entities.Repository]{}, p.err
	}
	page = page.Normalize()

	var (
		projects []*gl.Project
		resp     *gl.Response
		err      error
	)
	requestOptions := []gl.RequestOptionFunc{gl.WithContext(ctx), withParameters(extraParameters)}
	if org != nil {
		if org.ID == "" {
			return entities.Page[entities.Repository]{}, entities.NewConfigurationError("group id is required to list its projects")
		}
		projects, resp, err = p.client.Groups.ListGroupProjects(
			org.ID, &gl.ListGroupProjectsOptions{ListOptions: listOptions(page)}, requestOptions...,
		)
	} else {
		projects, resp, err = p.client.Projects.ListProjects(
			&gl.ListProjectsOptions{ListOptions: listOptions(page), Owned: gl.Ptr(true)}, requestOptions...,
		)
	}
	if err != nil {
		return entities.Page[entities.Repository]{}, translateError(resp, err)
	}
	return entities.NewPage(toRepositories(projects), page, hasNext(resp)), nil
}

func (p *GitLabProviderRepository) GetRepository(ctx context.Context, id, _ string) (*entities.Repository, error) {
	if p.err != nil {
		return nil, p.err
	}
	if id == "" {
		return nil, entities.NewConfigurationError("project id is required")
	}
	project, resp, err := p.client.Projects.GetProject(id, nil, gl.WithContext(ctx))
	if err != nil {
		err = translateError(resp, err)
		if entities.IsNotFound(err) {
			return nil, nil //nolint:nilnil // absent repository is not an error
		}
		return nil, err
	}
	repository := toRepository(project)
	return &repository, nil
}

// CreateRepository creates a project in the given group, or in the user's namespace for
// account-owned repositories.
func (p *GitLabProviderRepository) CreateRepository(
	ctx context.Context,
	repositoryToCreate entities.Repository,
) (*entities.Repository, error) {
	if p.err != nil {
		return nil, p.err
	}
	if repositoryToCreate.Name == "" {
		return nil, entities.NewConfigurationError("repository name is required")
	}

	opts := toCreateProjectOptions(repositoryToCreate)

	switch repositoryToCreate.OwnerType {
	case entities.OwnerTypeOrganization:
		if repositoryToCreate.OwnerID == "" {
			return nil, entities.NewConfigurationError("a group id is required to create an organization repository")
		}
		namespaceID, err := strconv.ParseInt(repositoryToCreate.OwnerID, 10, 64)
		if err != nil {
			return nil, entities.NewConfigurationError("group id %q is not numeric", repositoryToCreate.OwnerID)
		}
		setPtr(&opts.NamespaceID, namespaceID)
	case entities.OwnerTypeAccount, "":
	default:
		return nil, entities.NewConfigurationError("unsupported owner type %q", repositoryToCreate.OwnerType)
	}

	project, resp, err := p.client.Projects.CreateProject(opts, gl.WithContext(ctx))
	if err != nil {
		return nil, translateError(resp, err)
	}
	created := toRepository(project)
	return &created, nil
}

// ListCommits lists commits of the default branch, or switches to the compare endpoint when
// a from/to pair is given. Compare results are not paginated by GitLab.
func (p *GitLabProviderRepository) ListCommits(
	ctx context.Context,
	repository entities.Repository,
	filters *entities.CommitFilters,
	page entities.PageRequest,
) (entities.Page[entities.Commit], error) {
	comparison, err := filters.Comparison()
	if err != nil {
		return entities.Page[entities.Commit]{}, err
	}
	if p.err != nil {
		return entities.Page[entities.Commit]{}, p.err
	}
	if repository.ID == "" {
		return entities.Page[entities.Commit]{}, entities.NewConfigurationError("project id is required")
	}

	page = page.Normalize()
	if comparison != nil {
		return p.compareCommits(ctx, repository, *comparison, page)
	}

	opts := &gl.ListCommitsOptions{ListOptions: listOptions(page)}
	if repository.DefaultBranch != "" {
		opts.RefName = gl.Ptr(repository.DefaultBranch)
	}
	commits, resp, err := p.client.Commits.ListCommits(repository.ID, opts, gl.WithContext(ctx))
	if err != nil {
		return entities.Page[entities.Commit]{}, translateError(resp, err)
	}
	return entities.NewPage(toCommits(commits), page, hasNext(resp)), nil
}

func (p *GitLabProviderRepository) compareCommits(
	ctx context.Context,
	repository entities.Repository,
	comparison entities.Comparison,
	page entities.PageRequest,
) (entities.Page[entities.Commit], error) {
	if page.Number > 0 {
		return entities.Page[entities.Commit]{}, entities.NewValidationError(
			"from and to parameters are mandatory together and cannot be combined with pagination",
		)
	}

	compare, resp, err := p.client.Repositories.Compare(repository.ID, &gl.CompareOptions{
		From: gl.Ptr(comparison.From),
		To:   gl.Ptr(comparison.To),
	}, gl.WithContext(ctx))
	if err != nil {
		return entities.Page[entities.Commit]{}, translateError(resp, err)
	}
	return entities.NewPage(toCommits(compare.Commits), page, false), nil
}

func (p *GitLabProviderRepository) ListBranches(
	ctx context.Context,
	repository entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Branch], error) {
	if p.err != nil {
		return entities.Page[entities.Branch]{}, p.err
	}
	if repository.ID == "" {
		return entities.Page[entities.Branch]{}, entities.NewConfigurationError("project id is required")
	}
	page = page.Normalize()
	branches, resp, err := p.client.Branches.ListBranches(
		repository.ID, &gl.ListBranchesOptions{ListOptions: listOptions(page)}, gl.WithContext(ctx),
	)
	if err != nil {
		return entities.Page[entities.Branch]{}, translateError(resp, err)
	}
	return entities.NewPage(toBranches(branches), page, hasNext(resp)), nil
}

func (p *GitLabProviderRepository) ListTags(
	ctx context.Context,
	repository entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Tag], error) {
	if p.err != nil {
		return entities.Page[entities.Tag]{}, p.err
	}
	if repository.ID == "" {
		return entities.Page[entities.Tag]{}, entities.NewConfigurationError("project id is required")
	}
	page = page.Normalize()
	tags, resp, err := p.client.Tags.ListTags(
		repository.ID, &gl.ListTagsOptions{ListOptions: listOptions(page)}, gl.WithContext(ctx),
	)
	if err != nil {
		return entities.Page[entities.Tag]{}, translateError(resp, err)
	}
	return entities.NewPage(toTags(tags), page, hasNext(resp)), nil
}

func (p *GitLabProviderRepository) GetProviderCustomResources(
	_ context.Context,
	resourceType string,
	_ map[string]string,
	_ entities.PageRequest,
) (entities.Page[entities.ProviderCustomResource], error) {
	return entities.Page[entities.ProviderCustomResource]{}, fmt.Errorf(
		"%w: gitlab has no %q resources", entities.ErrUnsupportedResourceType, resourceType,
	)
}

// translateError maps client-go failures into the provider-neutral error taxonomy.
func translateError(resp *gl.Response, err error) error {
	var errResp *gl.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		message := strings.TrimSpace(string(errResp.Body))
		if message == "" {
			message = errResp.Message
		}
		if message == "" {
			message = http.StatusText(errResp.Response.StatusCode)
		}
		return entities.NewHTTPError(errResp.Response.StatusCode, message)
	}
	if resp != nil && resp.Response != nil && resp.StatusCode >= http.StatusBadRequest {
		return entities.NewHTTPError(resp.StatusCode, err.Error())
	}
	return entities.NewTransportError(err)
}

// withParameters copies caller-supplied query parameters without overriding the ones
// the typed options already set.
func withParameters(parameters map[string]string) gl.RequestOptionFunc {
	return func(req *retryablehttp.Request) error {
		if len(parameters) == 0 {
			return nil
		}
		req.URL.RawQuery = restclient.WithParameters(req.URL.Query(), parameters).Encode()
		return nil
	}
}

func listOptions(page entities.PageRequest) gl.ListOptions {
	var opts gl.ListOptions
	assign(&opts.Page, page.Number+1)
	assign(&opts.PerPage, page.Size)
	return opts
}

func hasNext(resp *gl.Response) bool {
	return resp != nil && resp.NextPage != 0
}

// assign and setPtr store values into client-go integer fields whatever their width.
func assign[T ~int | ~int64](dst *T, value int) {
	*dst = T(value)
}

func setPtr[T ~int | ~int64](dst **T, value int64) {
	converted := T(value)
	*dst = &converted
}
