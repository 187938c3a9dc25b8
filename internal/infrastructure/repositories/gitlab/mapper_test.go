package gitlab //nolint:testpackage // tests unexported functions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

func TestRepositoryMapping(t *testing.T) {
	t.Parallel()

	t.Run("should keep name, description, visibility and clone urls through a round trip", func(t *testing.T) {
		t.Parallel()

		// given
		project := &gl.Project{
			ID: 42, Name: "api", Description: "the api", Visibility: gl.PublicVisibility,
			HTTPURLToRepo: "https://gl/team/api.git", SSHURLToRepo: "git@gl:team/api.git",
			Namespace: &gl.ProjectNamespace{ID: 9, Kind: "group"},
		}

		// when
		repository := toRepository(project)
		opts := toCreateProjectOptions(repository)

		// then
		require.NotNil(t, opts.Name)
		assert.Equal(t, project.Name, *opts.Name)
		require.NotNil(t, opts.Description)
		assert.Equal(t, project.Description, *opts.Description)
		require.NotNil(t, opts.Visibility)
		assert.Equal(t, project.Visibility, *opts.Visibility)
		assert.Equal(t, project.HTTPURLToRepo, repository.HTTPCloneURL)
		assert.Equal(t, project.SSHURLToRepo, repository.SSHCloneURL)
		assert.Equal(t, "9", repository.OwnerID)
	})

	t.Run("should treat internal projects without namespace as private account projects", func(t *testing.T) {
		t.Parallel()

		// given
		project := &gl.Project{ID: 1, Visibility: gl.InternalVisibility}

		// when
		repository := toRepository(project)

		// then
		assert.Equal(t, entities.VisibilityPrivate, repository.Visibility)
		assert.Equal(t, entities.OwnerTypeAccount, repository.OwnerType)
		assert.Empty(t, repository.OwnerID)
		assert.Empty(t, repository.CustomProperties)
	})
}

func TestCommitMapping(t *testing.T) {
	t.Parallel()

	t.Run("should fall back to the title when the message is empty", func(t *testing.T) {
		t.Parallel()

		// given
		date := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
		commits := []*gl.Commit{{ID: "c1", Title: "first", CommittedDate: &date}}

		// when
		result := toCommits(commits)

		// then
		require.Len(t, result, 1)
		assert.Equal(t, "first", result[0].Message)
		assert.Equal(t, date, result[0].Date)
	})
}
