//go:build unit

package bitbucket_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
	"github.com/rios0rios0/gitbridge/internal/infrastructure/repositories/bitbucket"
	"github.com/rios0rios0/gitbridge/test/infrastructure/apidoubles"
)

const (
	repositoryJSON = `{
		"uuid":"{b7a1}","name":"Data Lake","slug":"data-lake","full_name":"acme/data-lake","description":"lake",
		"is_private":true,"workspace":{"slug":"acme","uuid":"{w1}","name":"Acme"},
		"project":{"type":"project","key":"DATA","uuid":"{p1}"},
		"mainbranch":{"type":"branch","name":"main"},
		"owner":{"type":"team","username":"acme"},
		"links":{"html":{"href":"https://bitbucket.org/acme/data-lake"},"clone":[
			{"name":"https","href":"https://bitbucket.org/acme/data-lake.git"},
			{"name":"ssh","href":"git@bitbucket.org:acme/data-lake.git"}]}
	}`
	projectsJSON = `{"values":[{"uuid":"{p1}","key":"DATA","name":"Data","is_private":true}],"page":1,"pagelen":100,"size":1}`
)

func newProvider(api *apidoubles.FakeAPI) repositories.GitProvider {
	return bitbucket.NewProviderRepository(api.URL, api.Client(), entities.PersonalAccessToken{Token: "bb-token"})
}

func lakeRepository() entities.Repository {
	return entities.Repository{
		ID: "{b7a1}", Name: "Data Lake", OwnerID: "acme", DefaultBranch: "main",
		CustomProperties: entities.ProviderCustomResourceProperties{}.With("slug", "data-lake"),
	}
}

func TestBitbucketConnection(t *testing.T) {
	t.Parallel()

	t.Run("should authenticate with basic auth using the token as password", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/user", http.StatusOK,
			`{"uuid":"{u1}","username":"jdoe","display_name":"John","links":{"avatar":{"href":"https://bb/a.png"},"html":{"href":"https://bb/jdoe"}}}`)
		provider := newProvider(api)

		// when
		user, err := provider.GetCurrentUser(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.User{
			ID: "{u1}", Username: "jdoe", DisplayName: "John", AvatarURL: "https://bb/a.png", ProfileURL: "https://bb/jdoe",
		}, *user)
		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("x-token-auth:bb-token"))
		assert.Equal(t, expected, api.Requests()[0].Header.Get("Authorization"))
	})

	t.Run("should raise an authentication failure on 401", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/user", http.StatusUnauthorized, "")
		provider := newProvider(api)

		// when
		err := provider.CheckConnection(context.Background())

		// then
		var authErr *entities.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Unauthorized", authErr.Message)
	})
}

func TestBitbucketOrganizations(t *testing.T) {
	t.Parallel()

	t.Run("should list workspaces using page and pagelen", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/workspaces", http.StatusOK,
			`{"values":[{"slug":"acme","name":"Acme","links":{"html":{"href":"https://bb/acme"}}}],"next":"https://bb/next"}`)
		provider := newProvider(api)

		// when
		page, err := provider.ListOrganizations(context.Background(), entities.NewPageRequest(2, 30))

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.Organization{{ID: "acme", Name: "Acme", URL: "https://bb/acme"}}, page.Content)
		assert.True(t, page.HasNext)
		query := api.Requests()[0].Query
		assert.Equal(t, "3", query.Get("page"))
		assert.Equal(t, "30", query.Get("pagelen"))
	})

	t.Run("should list workspace members", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/workspaces/acme/members", http.StatusOK,
			`{"values":[{"user":{"uuid":"{u1}","nickname":"jd","display_name":"John"}}]}`)
		provider := newProvider(api)

		// when
		page, err := provider.ListMembers(context.Background(), entities.Organization{ID: "acme"}, entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "jd", page.Content[0].Username)
		assert.False(t, page.HasNext)
	})

	t.Run("should return nil for an unknown workspace", func(t *testing.T) {
		t.Parallel()

		// given
		provider := newProvider(apidoubles.NewFakeAPI(t))

		// when
		org, err := provider.GetOrganization(context.Background(), "ghost")

		// then
		require.NoError(t, err)
		assert.Nil(t, org)
	})
}

func TestBitbucketRepositories(t *testing.T) {
	t.Parallel()

	t.Run("should keep provider objects as custom properties", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/repositories/acme", http.StatusOK, `{"values":[`+repositoryJSON+`]}`)
		provider := newProvider(api)

		// when
		page, err := provider.ListRepositories(
			context.Background(), &entities.Organization{ID: "acme"}, nil, nil, entities.NewPageRequest(0, 20),
		)

		// then
		require.NoError(t, err)
		repository := page.Content[0]
		assert.Equal(t, "{b7a1}", repository.ID)
		assert.Equal(t, "Data Lake", repository.Name)
		assert.Equal(t, "main", repository.DefaultBranch)
		assert.Equal(t, "https://bitbucket.org/acme/data-lake.git", repository.HTTPCloneURL)
		assert.Equal(t, "git@bitbucket.org:acme/data-lake.git", repository.SSHCloneURL)
		assert.Equal(t, entities.OwnerTypeOrganization, repository.OwnerType)
		assert.Equal(t, "acme", repository.OwnerID)
		assert.Equal(t, entities.VisibilityPrivate, repository.Visibility)
		project, ok := repository.Property("project")
		require.True(t, ok)
		assert.JSONEq(t, `{"type":"project","key":"DATA","uuid":"{p1}"}`, string(project))
		_, ok = repository.Property("links")
		assert.True(t, ok)
	})

	t.Run("should list repositories the user owns when no workspace is given", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/repositories", http.StatusOK, `{"values":[]}`)
		provider := newProvider(api)

		// when
		page, err := provider.ListRepositories(
			context.Background(), nil, nil, map[string]string{"q": `name~"lake"`}, entities.NewPageRequest(0, 20),
		)

		// then
		require.NoError(t, err)
		assert.Empty(t, page.Content)
		query := api.Requests()[0].Query
		assert.Equal(t, "owner", query.Get("role"))
		assert.Equal(t, `name~"lake"`, query.Get("q"))
	})

	t.Run("should echo the project back when creating a repository", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodPost, "/repositories/acme/data-lake", http.StatusOK, repositoryJSON)
		provider := newProvider(api)
		toCreate := entities.Repository{
			Name: "Data Lake", OwnerType: entities.OwnerTypeOrganization, OwnerID: "acme",
			CustomProperties: entities.ProviderCustomResourceProperties{}.With("project", json.RawMessage(`{"key":"DATA"}`)),
		}

		// when
		created, err := provider.CreateRepository(context.Background(), toCreate)

		// then
		require.NoError(t, err)
		assert.Equal(t, "{b7a1}", created.ID)
		var body map[string]any
		require.NoError(t, json.Unmarshal(api.Requests()[0].Body, &body))
		assert.Equal(t, "git", body["scm"])
		assert.Equal(t, true, body["is_private"])
		assert.Equal(t, map[string]any{"key": "DATA"}, body["project"])
	})

	t.Run("should require a workspace to create a repository", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)

		// when
		_, err := provider.CreateRepository(context.Background(), entities.Repository{Name: "x"})

		// then
		var configErr *entities.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Empty(t, api.Requests())
	})

	t.Run("should return nil for an unknown repository", func(t *testing.T) {
		t.Parallel()

		// given
		provider := newProvider(apidoubles.NewFakeAPI(t))

		// when
		repository, err := provider.GetRepository(context.Background(), "{nope}", "acme")

		// then
		require.NoError(t, err)
		assert.Nil(t, repository)
	})
}

func TestBitbucketGitObjects(t *testing.T) {
	t.Parallel()

	t.Run("should list main branch commits and read the author email", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/repositories/acme/data-lake/commits/main", http.StatusOK,
			`{"values":[{"hash":"c2","message":"fix","date":"2024-02-02T10:00:00+00:00","author":{"raw":"Jane Doe <jane@x.io>"}}]}`)
		provider := newProvider(api)

		// when
		page, err := provider.ListCommits(context.Background(), lakeRepository(), nil, entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "jane@x.io", page.Content[0].AuthorEmail)
	})

	t.Run("should include the target and exclude the source of a branch pair", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/repositories/acme/data-lake/commits", http.StatusOK, `{"values":[]}`)
		provider := newProvider(api)
		filters := &entities.CommitFilters{FromBranchName: "main", ToBranchName: "feature"}

		// when
		_, err := provider.ListCommits(context.Background(), lakeRepository(), filters, entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		query := api.Requests()[0].Query
		assert.Equal(t, "feature", query.Get("include"))
		assert.Equal(t, "main", query.Get("exclude"))
	})

	t.Run("should flag the main branch", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/repositories/acme/data-lake/refs/branches", http.StatusOK,
			`{"values":[{"name":"main","target":{"hash":"c2"},"links":{"html":{"href":"https://bb/acme/data-lake/branch/main"}}},{"name":"dev","target":{"hash":"c3"}}]}`)
		provider := newProvider(api)

		// when
		page, err := provider.ListBranches(context.Background(), lakeRepository(), entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.Branch{
			{Name: "main", LatestCommitHash: "c2", Default: true, URL: "https://bb/acme/data-lake/branch/main"},
			{Name: "dev", LatestCommitHash: "c3"},
		}, page.Content)
	})

	t.Run("should map annotated tags", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/repositories/acme/data-lake/refs/tags", http.StatusOK,
			`{"values":[{"name":"v1","target":{"hash":"c1"},"message":"first","date":"2024-02-01T00:00:00+00:00","tagger":{"raw":"Jane <jane@x.io>"}}]}`)
		provider := newProvider(api)

		// when
		page, err := provider.ListTags(context.Background(), lakeRepository(), entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "Jane <jane@x.io>", page.Content[0].Tagger)
		assert.NotNil(t, page.Content[0].Date)
	})
}

func TestBitbucketProjects(t *testing.T) {
	t.Parallel()

	t.Run("should issue exactly one request when the workspace is known", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).On(http.MethodGet, "/workspaces/acme/projects", http.StatusOK, projectsJSON)
		provider := newProvider(api)

		// when
		page, err := provider.GetProviderCustomResources(
			context.Background(), "project", map[string]string{"workspace": "acme"}, entities.NewPageRequest(0, 20),
		)

		// then
		require.NoError(t, err)
		require.Len(t, api.Requests(), 1)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "DATA", page.Content[0].Properties.GetString("key"))
		assert.Equal(t, "acme", page.Content[0].Properties.GetString("workspace"))
	})

	t.Run("should discover every workspace then query each one", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		api.On(http.MethodGet, "/workspaces", http.StatusOK,
			`{"values":[{"slug":"acme"}],"next":"`+api.URL+`/workspaces-next"}`).
			On(http.MethodGet, "/workspaces-next", http.StatusOK, `{"values":[{"slug":"umbrella"}]}`).
			On(http.MethodGet, "/workspaces/acme/projects", http.StatusOK, projectsJSON).
			On(http.MethodGet, "/workspaces/umbrella/projects", http.StatusOK,
				`{"values":[{"uuid":"{p2}","key":"OPS","name":"Ops"},{"uuid":"{p3}","key":"WEB","name":"Web"}]}`)
		provider := newProvider(api)

		// when
		page, err := provider.GetProviderCustomResources(context.Background(), "project", nil, entities.NewPageRequest(0, 20))

		// then
		require.NoError(t, err)
		require.Len(t, page.Content, 3)
		assert.Equal(t, "{p1}", page.Content[0].ID)
		assert.Equal(t, "{p3}", page.Content[2].ID)
		assert.False(t, page.HasNext)
		assert.Len(t, api.RequestsTo(http.MethodGet, "/workspaces/acme/projects"), 1)
		assert.Len(t, api.RequestsTo(http.MethodGet, "/workspaces/umbrella/projects"), 1)
		assert.Equal(t, "100", api.RequestsTo(http.MethodGet, "/workspaces/acme/projects")[0].Query.Get("pagelen"))
	})

	t.Run("should fail the aggregate when one workspace fails", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t).
			On(http.MethodGet, "/workspaces", http.StatusOK, `{"values":[{"slug":"acme"},{"slug":"broken"}]}`).
			On(http.MethodGet, "/workspaces/acme/projects", http.StatusOK, projectsJSON).
			On(http.MethodGet, "/workspaces/broken/projects", http.StatusForbidden, `{"error":{"message":"denied"}}`)
		provider := newProvider(api)

		// when
		page, err := provider.GetProviderCustomResources(context.Background(), "project", nil, entities.NewPageRequest(0, 20))

		// then
		var clientErr *entities.ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, http.StatusForbidden, clientErr.Status)
		assert.Empty(t, page.Content)
	})

	t.Run("should reject other resource types", func(t *testing.T) {
		t.Parallel()

		// given
		api := apidoubles.NewFakeAPI(t)
		provider := newProvider(api)

		// when
		_, err := provider.GetProviderCustomResources(context.Background(), "snippet", nil, entities.NewPageRequest(0, 20))

		// then
		assert.True(t, errors.Is(err, entities.ErrUnsupportedResourceType))
		assert.Empty(t, api.Requests())
	})
}
