package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/fanout"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/restclient"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// GitHubProviderRepository implements repositories.GitProvider on top of go-github.
type GitHubProviderRepository struct {
	client *gh.Client
	// err is returned by every operation when the provider could not be configured.
	err error
}

// NewProviderRepository creates a GitHub provider. An unsupported credential or an invalid
// base URL yields a provider that fails on use rather than a panic at construction.
func NewProviderRepository(
	baseURL string,
	httpClient *http.Client,
	credential entities.Credential,
) repositories.GitProvider {
	token, err := restclient.TokenOf(credential)
	if err != nil {
		return &GitHubProviderRepository{err: err}
	}

	client := gh.NewClient(httpClient).WithAuthToken(token)
	if baseURL != "" && strings.TrimSuffix(baseURL, "/") != DefaultBaseURL {
		parsed, parseErr := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if parseErr != nil {
			return &GitHubProviderRepository{
				err: entities.NewConfigurationError("invalid GitHub base URL %q: %v", baseURL, parseErr),
			}
		}
		client.BaseURL = parsed
	}
	return &GitHubProviderRepository{client: client}
}

func (p *GitHubProviderRepository) CheckConnection(ctx context.Context) error {
	_, err := p.GetCurrentUser(ctx)
	return err
}

func (p *GitHubProviderRepository) GetCurrentUser(ctx context.Context) (*entities.User, error) {
	if p.err != nil {
		return nil, p.err
	}
	user, _, err := p.client.Users.Get(ctx, "")
	if err != nil {
		return nil, translateError(err)
	}
	result := toUser(user)
	return &result, nil
}

// ListOrganizations lists the memberships of the authenticated user, then fetches each
// organization since the membership listing only carries reduced fields.
func (p *GitHubProviderRepository) ListOrganizations(
	ctx context.Context,
	page entities.PageRequest,
) (entities.Page[entities.Organization], error) {
	if p.err != nil {
		return entities.Page[entities.Organization]{}, p.err
	}
	page = page.Normalize()
	memberships, resp, err := p.client.Organizations.List(ctx, "", listOptions(page))
	if err != nil {
		return entities.Page[entities.Organization]{}, translateError(err)
	}

	orgs, err := fanout.Map(ctx, memberships, fanout.DefaultConcurrency,
		func(ctx context.Context, membership *gh.Organization) (entities.Organization, error) {
			org, _, getErr := p.client.Organizations.Get(ctx, url.PathEscape(membership.GetLogin()))
			if getErr != nil {
				return entities.Organization{}, translateError(getErr)
			}
			return toOrganization(org), nil
		})
	if err != nil {
		return entities.Page[entities.Organization]{}, err
	}
	return entities.NewPage(orgs, page, hasNext(resp)), nil
}

func (p *GitHubProviderRepository) GetOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	if p.err != nil {
		return nil, p.err
	}
	org, _, err := p.client.Organizations.Get(ctx, url.PathEscape(id))
	if err != nil {
		err = translateError(err)
		if entities.IsNotFound(err) {
			return nil, nil //nolint:nilnil // absent organization is not an error
		}
		return nil, err
	}
	result := toOrganization(org)
	return &result, nil
}

func (p *GitHubProviderRepository) ListMembers(
	ctx context.Context,
	org entities.Organization,
	page entities.PageRequest,
) (entities.Page[entities.User], error) {
	if p.err != nil {
		return entities.Page[entities.User]{}, p.err
	}
	if org.ID == "" {
		return entities.Page[entities.User]{}, entities.NewConfigurationError("organization login is required to list members")
	}
	page = page.Normalize()
	users, resp, err := p.client.Organizations.ListMembers(ctx, url.PathEscape(org.ID), &gh.ListMembersOptions{
		ListOptions: *listOptions(page),
	})
	if err != nil {
		return entities.Page[entities.User]{}, translateError(err)
	}
	return entities.NewPage(toUsers(users), page, hasNext(resp)), nil
}

// ListRepositories lists organization repositories, or every repository the authenticated
// user owns (private and public) when no organization is given. Recognized extra parameters
// are "type", "sort", "direction", "visibility" and "affiliation".
func (p *GitHubProviderRepository) ListRepositories(
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
		repos []*gh.Repository
		resp  *gh.Response
		err   error
	)
	if org != nil {
		if org.ID == "" {
			return entities.Page[entities.Repository]{}, entities.NewConfigurationError("organization login is required to list its repositories")
		}
		repos, resp, err = p.client.Repositories.ListByOrg(ctx, url.PathEscape(org.ID), &gh.RepositoryListByOrgOptions{
			Type:        extraParameters["type"],
			Sort:        extraParameters["sort"],
			Direction:   extraParameters["direction"],
			ListOptions: *listOptions(page),
		})
	} else {
		opts := &gh.RepositoryListByAuthenticatedUserOptions{
			Visibility:  valueOr(extraParameters["visibility"], "all"),
			Affiliation: valueOr(extraParameters["affiliation"], "owner"),
			Sort:        extraParameters["sort"],
			Direction:   extraParameters["direction"],
			ListOptions: *listOptions(page),
		}
		// the API rejects type combined with visibility or affiliation
		if repoType := extraParameters["type"]; repoType != "" {
			opts.Type, opts.Visibility, opts.Affiliation = repoType, "", ""
		}
		repos, resp, err = p.client.Repositories.ListByAuthenticatedUser(ctx, opts)
	}
	if err != nil {
		return entities.Page[entities.Repository]{}, translateError(err)
	}
	return entities.NewPage(toRepositories(repos), page, hasNext(resp)), nil
}

// GetRepository looks a repository up by owner login and name when ownerID is given,
// otherwise by numeric id.
func (p *GitHubProviderRepository) GetRepository(ctx context.Context, id, ownerID string) (*entities.Repository, error) {
	if p.err != nil {
		return nil, p.err
	}

	var (
		repo *gh.Repository
		err  error
	)
	numericID, parseErr := strconv.ParseInt(id, 10, 64)
	switch {
	case id == "":
		return nil, entities.NewConfigurationError("repository id or name is required")
	case ownerID != "":
		repo, _, err = p.client.Repositories.Get(ctx, url.PathEscape(ownerID), url.PathEscape(id))
	case parseErr == nil:
		repo, _, err = p.client.Repositories.GetByID(ctx, numericID)
	default:
		return nil, entities.NewConfigurationError("owner login is required to look up repository %q by name", id)
	}
	if err != nil {
		err = translateError(err)
		if entities.IsNotFound(err) {
			return nil, nil //nolint:nilnil // absent repository is not an error
		}
		return nil, err
	}
	result := toRepository(repo)
	return &result, nil
}

// CreateRepository posts to the organization endpoint for organization-owned repositories
// and to the authenticated user endpoint otherwise.
func (p *GitHubProviderRepository) CreateRepository(
	ctx context.Context,
	repositoryToCreate entities.Repository,
) (*entities.Repository, error) {
	if p.err != nil {
		return nil, p.err
	}
	if repositoryToCreate.Name == "" {
		return nil, entities.NewConfigurationError("repository name is required")
	}

	org := ""
	switch repositoryToCreate.OwnerType {
	case entities.OwnerTypeOrganization:
		org = url.PathEscape(repositoryToCreate.OwnerID)
	case entities.OwnerTypeAccount, "":
	default:
		return nil, entities.NewConfigurationError("unsupported owner type %q", repositoryToCreate.OwnerType)
	}

	body := &gh.Repository{
		Name:    gh.String(repositoryToCreate.Name),
		Private: gh.Bool(repositoryToCreate.Visibility != entities.VisibilityPublic),
	}
	if repositoryToCreate.Description != "" {
		body.Description = gh.String(repositoryToCreate.Description)
	}

	created, _, err := p.client.Repositories.Create(ctx, org, body)
	if err != nil {
		return nil, translateError(err)
	}
	result := toRepository(created)
	return &result, nil
}

// ListCommits lists the default branch history, or the commits between two refs through
// the compare endpoint when filters hold a pair.
func (p *GitHubProviderRepository) ListCommits(
	ctx context.Context,
	repository entities.Repository,
	filters *entities.CommitFilters,
	page entities.PageRequest,
) (entities.Page[entities.Commit], error) {
	if p.err != nil {
		return entities.Page[entities.Commit]{}, p.err
	}
	comparison, err := filters.Comparison()
	if err != nil {
		return entities.Page[entities.Commit]{}, err
	}
	owner, name, err := coordinates(repository)
	if err != nil {
		return entities.Page[entities.Commit]{}, err
	}
	page = page.Normalize()

	if comparison != nil {
		result, resp, compareErr := p.client.Repositories.CompareCommits(
			ctx, owner, name, comparison.From, comparison.To, listOptions(page),
		)
		if compareErr != nil {
			return entities.Page[entities.Commit]{}, translateError(compareErr)
		}
		return entities.NewPage(toCommits(result.Commits), page, hasNext(resp)), nil
	}

	commits, resp, err := p.client.Repositories.ListCommits(ctx, owner, name, &gh.CommitsListOptions{
		SHA:         repository.DefaultBranch,
		ListOptions: *listOptions(page),
	})
	if err != nil {
		return entities.Page[entities.Commit]{}, translateError(err)
	}
	return entities.NewPage(toCommits(commits), page, hasNext(resp)), nil
}

func (p *GitHubProviderRepository) ListBranches(
	ctx context.Context,
	repository entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Branch], error) {
	if p.err != nil {
		return entities.Page[entities.Branch]{}, p.err
	}
	owner, name, err := coordinates(repository)
	if err != nil {
		return entities.Page[entities.Branch]{}, err
	}
	page = page.Normalize()
	branches, resp, err := p.client.Repositories.ListBranches(ctx, owner, name, &gh.BranchListOptions{
		ListOptions: *listOptions(page),
	})
	if err != nil {
		return entities.Page[entities.Branch]{}, translateError(err)
	}
	return entities.NewPage(toBranches(branches, repository), page, hasNext(resp)), nil
}

func (p *GitHubProviderRepository) ListTags(
	ctx context.Context,
	repository entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Tag], error) {
	if p.err != nil {
		return entities.Page[entities.Tag]{}, p.err
	}
	owner, name, err := coordinates(repository)
	if err != nil {
		return entities.Page[entities.Tag]{}, err
	}
	page = page.Normalize()
	tags, resp, err := p.client.Repositories.ListTags(ctx, owner, name, listOptions(page))
	if err != nil {
		return entities.Page[entities.Tag]{}, translateError(err)
	}
	return entities.NewPage(toTags(tags), page, hasNext(resp)), nil
}

func (p *GitHubProviderRepository) GetProviderCustomResources(
	_ context.Context,
	resourceType string,
	_ map[string]string,
	_ entities.PageRequest,
) (entities.Page[entities.ProviderCustomResource], error) {
	return entities.Page[entities.ProviderCustomResource]{}, fmt.Errorf(
		"%w: github has no %q resources", entities.ErrUnsupportedResourceType, resourceType,
	)
}

// coordinates returns the escaped owner and name path segments of a repository.
func coordinates(repository entities.Repository) (string, string, error) {
	if repository.OwnerID == "" || repository.Name == "" {
		return "", "", entities.NewConfigurationError("repository owner and name are required")
	}
	return url.PathEscape(repository.OwnerID), url.PathEscape(repository.Name), nil
}

func listOptions(page entities.PageRequest) *gh.ListOptions {
	page = page.Normalize()
	return &gh.ListOptions{Page: page.Number + 1, PerPage: page.Size}
}

func hasNext(resp *gh.Response) bool {
	return resp != nil && resp.NextPage != 0
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// translateError maps go-github failures onto the normalized error taxonomy.
func translateError(err error) error {
	var (
		errorResponse *gh.ErrorResponse
		rateLimit     *gh.RateLimitError
		abuseLimit    *gh.AbuseRateLimitError
	)
	switch {
	case errors.As(err, &rateLimit) && rateLimit.Response != nil:
		return entities.NewHTTPError(rateLimit.Response.StatusCode, rateLimit.Message)
	case errors.As(err, &abuseLimit) && abuseLimit.Response != nil:
		return entities.NewHTTPError(abuseLimit.Response.StatusCode, abuseLimit.Message)
	case errors.As(err, &errorResponse) && errorResponse.Response != nil:
		message := errorResponse.Message
		if message == "" {
			message = http.StatusText(errorResponse.Response.StatusCode)
		}
		return entities.NewHTTPError(errorResponse.Response.StatusCode, message)
	default:
		return entities.NewTransportError(err)
	}
}
