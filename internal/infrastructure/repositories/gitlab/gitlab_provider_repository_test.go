//go:build unit

package gitlab_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/repositories/gitlab"
	"github.com/rios0rios0/gitbridge/test/infrastructure/apidoubles"
)

const (
	userJSON     = `{"id":7,"username":"jdoe","name":"John Doe","avatar_url":"https://gl/a.png","web_url":"https://gl/jdoe"}`
	projectJSON  = `{"id":42,"name":"api","path_with_namespace":"team/api","description":"the api","http_url_to_repo":"https://gl/team/api.git","ssh_url_to_repo":"git@gl:team/api.git","default_branch":"main","visibility":"private","web_url":"https://gl/team/api","namespace":{"id":9,"kind":"group","full_path":"team"}}`
	commitsJSON  = `[{"id":"c2","title":"second","message":"second\n","author_email":"a@x.io","committed_date":"2024-02-02T10:00:00.000+01:00"},{"id":"c1","title":"first","message":"first\n","author_email":"b@x.io","committed_date":"2024-02-01T10:00:00Z"}]`
	compareJSON  = `{"commit":{"id":"c2"},"commits":[{"id":"c1","title":"first","message":"first","author_email":"b@x.io","committed_date":"2024-02-01T10:00:00Z"},{"id":"c2","title":"second","message":"second","author_email":"a@x.io","committed_date":"2024-02-02T10:00:00Z"}],"diffs":[]}`
	branchesJSON = `[{"name":"main","commit":{"id":"c2"},"default":true,"protected":true,"web_url":"https://gl/team/api/-/tree/main"},{"name":"dev","commit":{"id":"c3"},"default":false,"protected":false,"web_url":"https://gl/team/api/-/tree/dev"}]`
	tagsJSON     = `[{"name":"v1.1.0","message":"release","target":"t1","commit":{"id":"c2"},"created_at":"2024-02-03T00:00:00Z"},{"name":"v1.0.0","message":"","target":"c1","commit":{"id":"c1"}}]`
)

func newProvider(api *apidoubles.FakeAPI) *gitlab.GitLabProviderRepository {
	return gitlab.NewProviderRepository(
		api.URL, api.Client(), entities.PersonalAccessToken{Token: "glpat-secret"},
	).(*gitlab.GitLabProviderRepository)
}

func apiRepository() entities.Repository {
	return entities.Repository{ID: "42", Name: "api", DefaultBranch: "main"}
}

func TestGitLabConnection(t *testing.T) {
	t.Parallel()

	t.Run("should succeed and send a bearer token when the user endpoint answers", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/user", http.StatusOK, userJSON)
		provider := newProvider(api)

		// when
		err := provider.CheckConnection(context.Background())

		// then
		require.NoError(t, err)
		calls := api.RequestsTo(http.MethodGet, "/api/v4/user")
		require.Len(t, calls, 1)
		assert.Equal(t, "Bearer glpat-secret", calls[0].Header.Get("Authorization"))
	})

	t.Run("should raise an authentication failure on 401", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/user", http.StatusUnauthorized, `{"message":"401 Unauthorized"}`)
		provider := newProvider(api)

		// when
		err := provider.CheckConnection(context.Background())

		// then
		var authErr *entities.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	})

	t.Run("should raise a client failure carrying status and body on other errors", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/user", http.StatusForbidden, `{"message":"403 Forbidden"}`)
		provider := newProvider(api)

		// when
		err := provider.CheckConnection(context.Background())

		// then
		var clientErr *entities.ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, http.StatusForbidden, clientErr.Status)
		assert.Contains(t, clientErr.Message, "403 Forbidden")
	})

	t.Run("should normalize transport failures to status 500", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		baseURL := api.URL
		api.Close()
		provider := gitlab.NewProviderRepository(baseURL, nil, entities.PersonalAccessToken{Token: "t"})

		// when
		err := provider.CheckConnection(context.Background())

		// then
		var clientErr *entities.ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, http.StatusInternalServerError, clientErr.Status)
	})

	t.Run("should reject an unsupported credential without any request", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/user", http.StatusOK, userJSON)
		provider := gitlab.NewProviderRepository(api.URL, api.Client(), nil)

		// when
		err := provider.CheckConnection(context.Background())

		// then
		var configErr *entities.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Empty(t, api.Requests())
	})

	t.Run("should map the current user", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/user", http.StatusOK, userJSON)
		provider := newProvider(api)

		// when
		user, err := provider.GetCurrentUser(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.User{
			ID: "7", Username: "jdoe", DisplayName: "John Doe",
			AvatarURL: "https://gl/a.png", ProfileURL: "https://gl/jdoe",
		}, *user)
	})
}

func TestGitLabOrganizations(t *testing.T) {
	t.Parallel()

	t.Run("should translate the page request to 1-based page and per_page", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/groups", http.StatusOK,
			`[{"id":1,"name":"Team","full_path":"team","web_url":"https://gl/team"},{"id":2,"name":"Ops","full_path":"ops","web_url":"https://gl/ops"}]`)
		provider := newProvider(api)

		// when
		page, err := provider.ListOrganizations(context.Background(), entities.NewPageRequest(1, 5))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 2)
		assert.Equal(t, "1", page.Content[0].ID)
		assert.Equal(t, "Ops", page.Content[1].Name)
		assert.False(t, page.HasNext)
		query := api.RequestsTo(http.MethodGet, "/api/v4/groups")[0].Query
		assert.Equal(t, "2", query.Get("page"))
		assert.Equal(t, "5", query.Get("per_page"))
	})

	t.Run("should report a next page when the next page header is set", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).OnWithHeader(http.MethodGet, "/api/v4/groups", http.StatusOK,
			`[{"id":1,"name":"Team"}]`, map[string]string{"X-Next-Page": "2", "X-Page": "1"})
		provider := newProvider(api)

		// when
		page, err := provider.ListOrganizations(context.Background(), entities.NewPageRequest(0, 1))

		// then
		require.NoError(t, err)
		assert.True(t, page.HasNext)
	})

	t.Run("should return nil when the group does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)

		// when
		org, err := provider.GetOrganization(context.Background(), "404")

		// then
		require.NoError(t, err)
		assert.Nil(t, org)
	})

	t.Run("should list group members", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/groups/9/members", http.StatusOK,
			`[{"id":7,"username":"jdoe","name":"John Doe","access_level":50}]`)
		provider := newProvider(api)

		// when
		page, err := provider.ListMembers(context.Background(), entities.Organization{ID: "9"}, entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "jdoe", page.Content[0].Username)
	})
}

func TestGitLabRepositories(t *testing.T) {
	t.Parallel()

	t.Run("should list owned projects of the authenticated user when no group is given", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/projects", http.StatusOK, "["+projectJSON+"]")
		provider := newProvider(api)

		// when
		page, err := provider.ListRepositories(
			context.Background(), nil, &entities.User{ID: "7"}, map[string]string{"archived": "false"}, entities.NewPageRequest(0, 10),
		)

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		query := api.RequestsTo(http.MethodGet, "/api/v4/projects")[0].Query
		assert.Equal(t, "true", query.Get("owned"))
		assert.Equal(t, "false", query.Get("archived"))
	})

	t.Run("should map a project into the domain repository", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/groups/9/projects", http.StatusOK, "["+projectJSON+"]")
		provider := newProvider(api)

		// when
		page, err := provider.ListRepositories(
			context.Background(), &entities.Organization{ID: "9"}, nil, nil, entities.NewPageRequest(0, 10),
		)

		// then
		require.NoError(t, err)
		repository := page.Content[0]
		assert.Equal(t, "42", repository.ID)
		assert.Equal(t, "api", repository.Name)
		assert.Equal(t, "the api", repository.Description)
		assert.Equal(t, "https://gl/team/api.git", repository.HTTPCloneURL)
		assert.Equal(t, "git@gl:team/api.git", repository.SSHCloneURL)
		assert.Equal(t, "main", repository.DefaultBranch)
		assert.Equal(t, entities.OwnerTypeOrganization, repository.OwnerType)
		assert.Equal(t, "9", repository.OwnerID)
		assert.Equal(t, entities.VisibilityPrivate, repository.Visibility)
		assert.Equal(t, "team/api", repository.StringProperty("path_with_namespace"))
	})

	t.Run("should keep paging parameters when extra parameters collide with them", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/projects", http.StatusOK, "[]")
		provider := newProvider(api)

		// when
		_, err := provider.ListRepositories(
			context.Background(), nil, nil, map[string]string{"per_page": "99"}, entities.NewPageRequest(0, 10),
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, "10", api.RequestsTo(http.MethodGet, "/api/v4/projects")[0].Query.Get("per_page"))
	})

	t.Run("should return nil when the project does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)

		// when
		repository, err := provider.GetRepository(context.Background(), "1", "")

		// then
		require.NoError(t, err)
		assert.Nil(t, repository)
	})

	t.Run("should create a group project with its namespace id", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodPost, "/api/v4/projects", http.StatusCreated, projectJSON)
		provider := newProvider(api)

		// when
		created, err := provider.CreateRepository(context.Background(), entities.Repository{
			Name: "api", Description: "the api", Visibility: entities.VisibilityPublic,
			OwnerType: entities.OwnerTypeOrganization, OwnerID: "9",
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "42", created.ID)
		var body map[string]any
		require.NoError(t, json.Unmarshal(api.RequestsTo(http.MethodPost, "/api/v4/projects")[0].Body, &body))
		assert.Equal(t, "api", body["name"])
		assert.Equal(t, "public", body["visibility"])
		assert.InDelta(t, 9, body["namespace_id"], 0)
	})

	t.Run("should create an account project without namespace id", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodPost, "/api/v4/projects", http.StatusCreated, projectJSON)
		provider := newProvider(api)

		// when
		_, err := provider.CreateRepository(context.Background(), entities.Repository{
			Name: "api", OwnerType: entities.OwnerTypeAccount,
		})

		// then
		require.NoError(t, err)
		assert.NotContains(t, string(api.RequestsTo(http.MethodPost, "/api/v4/projects")[0].Body), "namespace_id")
	})

	t.Run("should reject an organization project without group id before any request", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)

		// when
		_, err := provider.CreateRepository(context.Background(), entities.Repository{
			Name: "api", OwnerType: entities.OwnerTypeOrganization,
		})

		// then
		var configErr *entities.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Empty(t, api.Requests())
	})
}

func TestGitLabCommits(t *testing.T) {
	t.Parallel()

	t.Run("should list default branch commits in provider order", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/projects/42/repository/commits", http.StatusOK, commitsJSON)
		provider := newProvider(api)

		// when
		page, err := provider.ListCommits(context.Background(), apiRepository(), nil, entities.NewPageRequest(0, 2))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 2)
		assert.Equal(t, "c2", page.Content[0].Hash)
		assert.Equal(t, "a@x.io", page.Content[0].AuthorEmail)
		assert.Equal(t, "c1", page.Content[1].Hash)
		assert.False(t, page.HasNext)
		assert.Equal(t, "main", api.RequestsTo(http.MethodGet, "/api/v4/projects/42/repository/commits")[0].Query.Get("ref_name"))
	})

	t.Run("should use the compare endpoint when a tag pair is given", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/projects/42/repository/compare", http.StatusOK, compareJSON)
		provider := newProvider(api)
		filters := &entities.CommitFilters{FromTagName: "v1.0.0", ToTagName: "v1.1.0"}

		// when
		page, err := provider.ListCommits(context.Background(), apiRepository(), filters, entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		assert.Empty(t, api.RequestsTo(http.MethodGet, "/api/v4/projects/42/repository/commits"))
		compare := api.RequestsTo(http.MethodGet, "/api/v4/projects/42/repository/compare")
		require.Len(t, compare, 1)
		assert.Equal(t, "v1.0.0", compare[0].Query.Get("from"))
		assert.Equal(t, "v1.1.0", compare[0].Query.Get("to"))
		require.Len(t, page.Content, 2)
		assert.Equal(t, "c1", page.Content[0].Hash)
		assert.Equal(t, "first", page.Content[0].Message)
	})

	t.Run("should reject a single-sided tag filter before any request", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)
		filters := &entities.CommitFilters{FromTagName: "v1.0.0"}

		// when
		_, err := provider.ListCommits(context.Background(), apiRepository(), filters, entities.NewPageRequest(0, 20))

		// then
		var validationErr *entities.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, err.Error(), "fromTagName and toTagName must be defined together")
		assert.Empty(t, api.Requests())
	})

	t.Run("should reject a compare combined with a later page", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)
		filters := &entities.CommitFilters{FromBranchName: "dev", ToBranchName: "main"}

		// when
		_, err := provider.ListCommits(context.Background(), apiRepository(), filters, entities.NewPageRequest(2, 20))

		// then
		var validationErr *entities.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, err.Error(), "from and to parameters are mandatory together")
		assert.Empty(t, api.Requests())
	})

	t.Run("should report a missing project as a not found client failure", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)

		// when
		_, err := provider.ListCommits(context.Background(), apiRepository(), nil, entities.NewPageRequest(0, 20))

		// then
		var clientErr *entities.ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, http.StatusNotFound, clientErr.Status)
		assert.True(t, entities.IsNotFound(err))
	})

	t.Run("should skip a commit without a committed date", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/projects/42/repository/commits", http.StatusOK,
			`[{"id":"bad"},{"id":"good","committed_date":"2024-02-01T10:00:00Z"}]`)
		provider := newProvider(api)

		// when
		page, err := provider.ListCommits(context.Background(), apiRepository(), nil, entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "good", page.Content[0].Hash)
	})
}

func TestGitLabRefs(t *testing.T) {
	t.Parallel()

	t.Run("should list branches with default and protected flags", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/projects/42/repository/branches", http.StatusOK, branchesJSON)
		provider := newProvider(api)

		// when
		page, err := provider.ListBranches(context.Background(), apiRepository(), entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.Branch{
			{Name: "main", LatestCommitHash: "c2", Default: true, Protected: true, URL: "https://gl/team/api/-/tree/main"},
			{Name: "dev", LatestCommitHash: "c3", URL: "https://gl/team/api/-/tree/dev"},
		}, page.Content)
	})

	t.Run("should leave optional fields empty for lightweight tags", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/api/v4/projects/42/repository/tags", http.StatusOK, tagsJSON)
		provider := newProvider(api)

		// when
		page, err := provider.ListTags(context.Background(), apiRepository(), entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 2)
		assert.Equal(t, "release", page.Content[0].Message)
		require.NotNil(t, page.Content[0].Date)
		assert.Equal(t, "c1", page.Content[1].CommitHash)
		assert.Empty(t, page.Content[1].Message)
		assert.Nil(t, page.Content[1].Date)
	})

	t.Run("should report custom resources as unsupported", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)

		// when
		_, err := provider.GetProviderCustomResources(context.Background(), "project", nil, entities.NewPageRequest(0, 20))

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrUnsupportedResourceType))
		assert.Empty(t, api.Requests())
	})
}
