package azuredevops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/fanout"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/restclient"
)

const (
	// DefaultBaseURL is the Azure DevOps Services host.
	DefaultBaseURL = "https://dev.azure.com"

	defaultProfileURL = "https://app.vssps.visualstudio.com"
	defaultGraphURL   = "https://vssps.dev.azure.com"
	defaultHost       = "dev.azure.com"

	apiVersion      = "7.1"
	graphAPIVersion = "7.1-preview.1"

	continuationHeader = "X-MS-ContinuationToken"

	// ResourceTypeProject is the only custom resource type Azure DevOps exposes.
	ResourceTypeProject = "project"
)

// AzureDevOpsProviderRepository implements repositories.GitProvider for Azure DevOps Services.
//
// The base URL may carry the organization as its first path segment
// (https://dev.azure.com/contoso); it is used whenever an operation gives no organization.
type AzureDevOpsProviderRepository struct {
	client *restclient.Client

	root         string // scheme and host, no organization
	profileURL   string
	graphURL     string
	organization string
}

// NewProviderRepository creates an Azure DevOps provider. The token is sent as the basic-auth
// password with an empty user name. No request is made until the first operation.
func NewProviderRepository(
	baseURL string,
	httpClient *http.Client,
	credential entities.Credential,
) repositories.GitProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	root, organization := splitBaseURL(baseURL)

	provider := &AzureDevOpsProviderRepository{
		client:       restclient.New(root, httpClient, restclient.BasicAuthorizer("", credential)),
		root:         root,
		profileURL:   root,
		graphURL:     root,
		organization: organization,
	}
	if strings.EqualFold(hostOf(root), defaultHost) {
		provider.profileURL = defaultProfileURL
		provider.graphURL = defaultGraphURL
	}
	return provider
}

// splitBaseURL separates "https://dev.azure.com/contoso" into the host root and "contoso".
func splitBaseURL(baseURL string) (string, string) {
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || parsed.Host == "" {
		return strings.TrimSuffix(baseURL, "/"), ""
	}
	organization, _, _ := strings.Cut(strings.Trim(parsed.Path, "/"), "/")
	return parsed.Scheme + "://" + parsed.Host, organization
}

func hostOf(root string) string {
	parsed, err := url.Parse(root)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// resolveOrganization returns the first non-empty candidate, then the base URL organization.
func (p *AzureDevOpsProviderRepository) resolveOrganization(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if candidate != "" {
			return candidate, nil
		}
	}
	if p.organization != "" {
		return p.organization, nil
	}
	return "", entities.NewConfigurationError(
		"an Azure DevOps organization is required: pass one or use a base URL such as %s/<organization>", p.root,
	)
}

func (p *AzureDevOpsProviderRepository) endpoint(base string, segments ...string) string {
	return base + "/" + restclient.Path(segments...)
}

func versioned(query url.Values) url.Values {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", apiVersion)
	return query
}

func (p *AzureDevOpsProviderRepository) CheckConnection(ctx context.Context) error {
	_, err := p.GetCurrentUser(ctx)
	return err
}

func (p *AzureDevOpsProviderRepository) GetCurrentUser(ctx context.Context) (*entities.User, error) {
	profile, err := p.profile(ctx)
	if err != nil {
		return nil, err
	}
	user := toUser(profile)
	return &user, nil
}

func (p *AzureDevOpsProviderRepository) profile(ctx context.Context) (profileDTO, error) {
	var dto profileDTO
	_, err := p.client.Get(ctx, p.endpoint(p.profileURL, "_apis", "profile", "profiles", "me"), versioned(nil), &dto)
	return dto, err
}

func (p *AzureDevOpsProviderRepository) accounts(ctx context.Context) ([]accountDTO, error) {
	profile, err := p.profile(ctx)
	if err != nil {
		return nil, err
	}
	var dto listDTO[accountDTO]
	query := versioned(url.Values{"memberId": {profile.ID}})
	if _, err = p.client.Get(ctx, p.endpoint(p.profileURL, "_apis", "accounts"), query, &dto); err != nil {
		return nil, err
	}
	return dto.Value, nil
}

// ListOrganizations lists the organizations the authenticated user belongs to.
// The accounts endpoint is not paginated, so the page is cut locally.
func (p *AzureDevOpsProviderRepository) ListOrganizations(
	ctx context.Context,
	page entities.PageRequest,
) (entities.Page[entities.Organization], error) {
	accounts, err := p.accounts(ctx)
	if err != nil {
		return entities.Page[entities.Organization]{}, err
	}
	return entities.SlicePage(toOrganizations(accounts, p.root), page), nil
}

func (p *AzureDevOpsProviderRepository) GetOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	if id == "" {
		return nil, entities.NewConfigurationError("organization name is required")
	}
	accounts, err := p.accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, org := range toOrganizations(accounts, p.root) {
		if strings.EqualFold(org.ID, id) {
			return &org, nil
		}
	}
	return nil, nil //nolint:nilnil // absent organization is not an error
}

// ListMembers lists the users of the organization graph, following continuation tokens.
func (p *AzureDevOpsProviderRepository) ListMembers(
	ctx context.Context,
	org entities.Organization,
	page entities.PageRequest,
) (entities.Page[entities.User], error) {
	organization, err := p.resolveOrganization(org.ID)
	if err != nil {
		return entities.Page[entities.User]{}, err
	}

	users, err := collectAll[graphUserDTO](ctx, p.client,
		p.endpoint(p.graphURL, organization, "_apis", "graph", "users"),
		url.Values{"api-version": {graphAPIVersion}},
	)
	if err != nil {
		return entities.Page[entities.User]{}, err
	}
	return entities.SlicePage(toMembers(users), page), nil
}

// collectAll requests path until the continuation header is no longer returned. The token is
// sent back as the continuationToken query parameter.
func collectAll[T any](ctx context.Context, client *restclient.Client, path string, query url.Values) ([]T, error) {
	var all []T
	token := ""
	for {
		current := url.Values{}
		for key, values := range query {
			current[key] = values
		}
		if token != "" {
			current.Set("continuationToken", token)
		}

		var dto listDTO[T]
		header, err := client.Get(ctx, path, current, &dto)
		if err != nil {
			return nil, err
		}
		all = append(all, dto.Value...)

		token = header.Get(continuationHeader)
		if token == "" {
			return all, nil
		}
	}
}

// listProjects follows the continuation tokens of the project listing.
func (p *AzureDevOpsProviderRepository) listProjects(ctx context.Context, organization string) ([]projectDTO, error) {
	projects, err := collectAll[projectDTO](ctx, p.client, p.endpoint(p.root, organization, "_apis", "projects"), versioned(nil))
	if err != nil {
		return nil, err
	}
	logger.Debugf("Discovered %d Azure DevOps projects in %q", len(projects), organization)
	return projects, nil
}

func (p *AzureDevOpsProviderRepository) projectRepositories(
	ctx context.Context,
	organization, project string,
) ([]entities.Repository, error) {
	var dto listDTO[repositoryDTO]
	path := p.endpoint(p.root, organization, project, "_apis", "git", "repositories")
	if _, err := p.client.Get(ctx, path, versioned(nil), &dto); err != nil {
		return nil, err
	}
	return toRepositories(dto.Value, organization), nil
}

// ListRepositories lists the repositories of one project when extraParameters holds "project";
// otherwise it discovers every project of the organization and lists each one. The aggregate
// is paged locally.
func (p *AzureDevOpsProviderRepository) ListRepositories(
	ctx context.Context,
	org *entities.Organization,
	_ *entities.User,
	extraParameters map[string]string,
	page entities.PageRequest,
) (entities.Page[entities.Repository], error) {
	orgID := ""
	if org != nil {
		orgID = org.ID
	}
	organization, err := p.resolveOrganization(orgID)
	if err != nil {
		return entities.Page[entities.Repository]{}, err
	}

	if project := extraParameters["project"]; project != "" {
		repos, listErr := p.projectRepositories(ctx, organization, project)
		if listErr != nil {
			return entities.Page[entities.Repository]{}, listErr
		}
		return entities.SlicePage(repos, page), nil
	}

	projects, err := p.listProjects(ctx, organization)
	if err != nil {
		return entities.Page[entities.Repository]{}, err
	}
	repos, err := fanout.Collect(ctx, projects, fanout.DefaultConcurrency,
		func(ctx context.Context, project projectDTO) ([]entities.Repository, error) {
			return p.projectRepositories(ctx, organization, project.ID)
		})
	if err != nil {
		return entities.Page[entities.Repository]{}, err
	}
	return entities.SlicePage(repos, page), nil
}

// GetRepository fetches a repository by id. ownerID is the project id and may be empty.
func (p *AzureDevOpsProviderRepository) GetRepository(ctx context.Context, id, ownerID string) (*entities.Repository, error) {
	if id == "" {
		return nil, entities.NewConfigurationError("repository id is required")
	}
	organization, err := p.resolveOrganization()
	if err != nil {
		return nil, err
	}

	segments := []string{organization}
	if ownerID != "" {
		segments = append(segments, ownerID)
	}
	segments = append(segments, "_apis", "git", "repositories", id)

	var dto repositoryDTO
	if _, err = p.client.Get(ctx, p.endpoint(p.root, segments...), versioned(nil), &dto); err != nil {
		if entities.IsNotFound(err) {
			return nil, nil //nolint:nilnil // absent repository is not an error
		}
		return nil, err
	}
	repository := toRepository(dto, organization)
	return &repository, nil
}

// CreateRepository creates a repository in the project whose id is OwnerID.
// Azure DevOps repositories always belong to a project, so account ownership is rejected.
func (p *AzureDevOpsProviderRepository) CreateRepository(
	ctx context.Context,
	repositoryToCreate entities.Repository,
) (*entities.Repository, error) {
	if repositoryToCreate.OwnerType != entities.OwnerTypeOrganization {
		return nil, entities.NewConfigurationError(
			"azure devops repositories must be owned by an organization project, got owner type %q",
			repositoryToCreate.OwnerType,
		)
	}
	if repositoryToCreate.Name == "" {
		return nil, entities.NewConfigurationError("repository name is required")
	}
	projectID, err := uuid.Parse(repositoryToCreate.OwnerID)
	if err != nil {
		return nil, entities.NewConfigurationError("owner id %q is not a project id: %v", repositoryToCreate.OwnerID, err)
	}
	organization, err := p.resolveOrganization(repositoryToCreate.StringProperty("organization"))
	if err != nil {
		return nil, err
	}

	body := createRepositoryDTO{
		Name:    repositoryToCreate.Name,
		Project: projectReferenceDTO{ID: projectID.String()},
	}
	var dto repositoryDTO
	path := p.endpoint(p.root, organization, "_apis", "git", "repositories")
	if _, err = p.client.Post(ctx, path, versioned(nil), body, &dto); err != nil {
		return nil, err
	}
	created := toRepository(dto, organization)
	return &created, nil
}

// repositoryURL builds the git API root of an existing repository.
func (p *AzureDevOpsProviderRepository) repositoryURL(repository entities.Repository, segments ...string) (string, error) {
	if repository.ID == "" {
		return "", entities.NewConfigurationError("repository id is required")
	}
	organization, err := p.resolveOrganization(repository.StringProperty("organization"))
	if err != nil {
		return "", err
	}
	path := []string{organization}
	if repository.OwnerID != "" {
		path = append(path, repository.OwnerID)
	}
	path = append(path, "_apis", "git", "repositories", repository.ID)
	return p.endpoint(p.root, append(path, segments...)...), nil
}

// ListCommits lists commits of the default branch, or the commits of "to" that are not in
// "from" when filters hold a pair.
func (p *AzureDevOpsProviderRepository) ListCommits(
	ctx context.Context,
	repository entities.Repository,
	filters *entities.CommitFilters,
	page entities.PageRequest,
) (entities.Page[entities.Commit], error) {
	comparison, err := filters.Comparison()
	if err != nil {
		return entities.Page[entities.Commit]{}, err
	}
	path, err := p.repositoryURL(repository, "commits")
	if err != nil {
		return entities.Page[entities.Commit]{}, err
	}

	page = page.Normalize()
	query := versioned(url.Values{
		"searchCriteria.$top":  {strconv.Itoa(page.Size)},
		"searchCriteria.$skip": {strconv.Itoa(page.Offset())},
	})
	switch {
	case comparison != nil:
		versionType := versionTypeOf(comparison.Kind)
		query.Set("searchCriteria.itemVersion.version", comparison.To)
		query.Set("searchCriteria.itemVersion.versionType", versionType)
		query.Set("searchCriteria.compareVersion.version", comparison.From)
		query.Set("searchCriteria.compareVersion.versionType", versionType)
	case repository.DefaultBranch != "":
		query.Set("searchCriteria.itemVersion.version", repository.DefaultBranch)
		query.Set("searchCriteria.itemVersion.versionType", "branch")
	}

	var dto listDTO[commitDTO]
	if _, err = p.client.Get(ctx, path, query, &dto); err != nil {
		return entities.Page[entities.Commit]{}, err
	}
	return entities.NewPage(toCommits(dto.Value), page, len(dto.Value) >= page.Size), nil
}

func versionTypeOf(kind entities.ComparisonKind) string {
	switch kind {
	case entities.ComparisonTag:
		return "tag"
	case entities.ComparisonCommit:
		return "commit"
	default:
		return "branch"
	}
}

func (p *AzureDevOpsProviderRepository) refs(
	ctx context.Context,
	repository entities.Repository,
	query url.Values,
) ([]refDTO, error) {
	path, err := p.repositoryURL(repository, "refs")
	if err != nil {
		return nil, err
	}
	return collectAll[refDTO](ctx, p.client, path, versioned(query))
}

func (p *AzureDevOpsProviderRepository) ListBranches(
	ctx context.Context,
	repository entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Branch], error) {
	refs, err := p.refs(ctx, repository, url.Values{"filter": {"heads/"}})
	if err != nil {
		return entities.Page[entities.Branch]{}, err
	}
	return entities.SlicePage(toBranches(refs, repository), page), nil
}

func (p *AzureDevOpsProviderRepository) ListTags(
	ctx context.Context,
	repository entities.Repository,
	page entities.PageRequest,
) (entities.Page[entities.Tag], error) {
	refs, err := p.refs(ctx, repository, url.Values{"filter": {"tags/"}, "peelTags": {"true"}})
	if err != nil {
		return entities.Page[entities.Tag]{}, err
	}
	return entities.SlicePage(toTags(refs), page), nil
}

// GetProviderCustomResources lists the projects of the organization given by the
// "organization" parameter or the base URL.
func (p *AzureDevOpsProviderRepository) GetProviderCustomResources(
	ctx context.Context,
	resourceType string,
	parameters map[string]string,
	page entities.PageRequest,
) (entities.Page[entities.ProviderCustomResource], error) {
	if resourceType != ResourceTypeProject {
		return entities.Page[entities.ProviderCustomResource]{}, fmt.Errorf(
			"%w: azure devops has no %q resources", entities.ErrUnsupportedResourceType, resourceType,
		)
	}
	organization, err := p.resolveOrganization(parameters["organization"])
	if err != nil {
		return entities.Page[entities.ProviderCustomResource]{}, err
	}

	page = page.Normalize()
	query := versioned(url.Values{
		"$top":  {strconv.Itoa(page.Size)},
		"$skip": {strconv.Itoa(page.Offset())},
	})
	var dto listDTO[projectDTO]
	if _, err = p.client.Get(ctx, p.endpoint(p.root, organization, "_apis", "projects"), query, &dto); err != nil {
		return entities.Page[entities.ProviderCustomResource]{}, err
	}
	return entities.NewPage(toProjects(dto.Value, organization), page, len(dto.Value) >= page.Size), nil
}
