package gitlab

import (
	"strconv"

	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

func formatID[T ~int | ~int64](id T) string {
	return strconv.FormatInt(int64(id), 10)
}

func toUser(user *gl.User) entities.User {
	return entities.User{
		ID:          formatID(user.ID),
		Username:    user.Username,
		DisplayName: user.Name,
		AvatarURL:   user.AvatarURL,
		ProfileURL:  user.WebURL,
	}
}

func toMembers(members []*gl.GroupMember) []entities.User {
	return lo.Map(members, func(member *gl.GroupMember, _ int) entities.User {
		return entities.User{
			ID:          formatID(member.ID),
			Username:    member.Username,
			DisplayName: member.Name,
			AvatarURL:   member.AvatarURL,
			ProfileURL:  member.WebURL,
		}
	})
}

func toOrganization(group *gl.Group) entities.Organization {
	return entities.Organization{
		ID:   formatID(group.ID),
		Name: group.Name,
		URL:  group.WebURL,
	}
}

func toOrganizations(groups []*gl.Group) []entities.Organization {
	return lo.Map(groups, func(group *gl.Group, _ int) entities.Organization {
		return toOrganization(group)
	})
}

func toRepository(project *gl.Project) entities.Repository {
	ownerType := entities.OwnerTypeAccount
	if project.Namespace != nil && project.Namespace.Kind == "group" {
		ownerType = entities.OwnerTypeOrganization
	}

	visibility := entities.VisibilityPrivate
	if project.Visibility == gl.PublicVisibility {
		visibility = entities.VisibilityPublic
	}

	var properties entities.ProviderCustomResourceProperties
	if project.PathWithNamespace != "" {
		properties = properties.With("path_with_namespace", project.PathWithNamespace)
	}
	if project.WebURL != "" {
		properties = properties.With("web_url", project.WebURL)
	}

	repository := entities.Repository{
		ID:               formatID(project.ID),
		Name:             project.Name,
		Description:      project.Description,
		HTTPCloneURL:     project.HTTPURLToRepo,
		SSHCloneURL:      project.SSHURLToRepo,
		DefaultBranch:    project.DefaultBranch,
		OwnerType:        ownerType,
		Visibility:       visibility,
		CustomProperties: properties,
	}
	if project.Namespace != nil && project.Namespace.ID != 0 {
		repository.OwnerID = formatID(project.Namespace.ID)
	}
	return repository
}

func toRepositories(projects []*gl.Project) []entities.Repository {
	return lo.Map(projects, func(project *gl.Project, _ int) entities.Repository {
		return toRepository(project)
	})
}

func toVisibility(visibility entities.Visibility) gl.VisibilityValue {
	if visibility == entities.VisibilityPublic {
		return gl.PublicVisibility
	}
	return gl.PrivateVisibility
}

func toCreateProjectOptions(repository entities.Repository) *gl.CreateProjectOptions {
	opts := &gl.CreateProjectOptions{
		Name:       gl.Ptr(repository.Name),
		Visibility: gl.Ptr(toVisibility(repository.Visibility)),
	}
	if repository.Description != "" {
		opts.Description = gl.Ptr(repository.Description)
	}
	return opts
}

// toCommits skips commits without a committed date instead of failing the listing.
func toCommits(commits []*gl.Commit) []entities.Commit {
	return lo.FilterMap(commits, func(commit *gl.Commit, _ int) (entities.Commit, bool) {
		if commit.CommittedDate == nil {
			logger.Warnf("Skipping GitLab commit %q without a committed date", commit.ID)
			return entities.Commit{}, false
		}
		message := commit.Message
		if message == "" {
			message = commit.Title
		}
		return entities.Commit{
			Hash:        commit.ID,
			Message:     message,
			AuthorEmail: commit.AuthorEmail,
			Date:        *commit.CommittedDate,
		}, true
	})
}

func toBranches(branches []*gl.Branch) []entities.Branch {
	return lo.Map(branches, func(branch *gl.Branch, _ int) entities.Branch {
		result := entities.Branch{
			Name:      branch.Name,
			Default:   branch.Default,
			Protected: branch.Protected,
			URL:       branch.WebURL,
		}
		if branch.Commit != nil {
			result.LatestCommitHash = branch.Commit.ID
		}
		return result
	})
}

func toTags(tags []*gl.Tag) []entities.Tag {
	return lo.Map(tags, func(tag *gl.Tag, _ int) entities.Tag {
		result := entities.Tag{
			Name:       tag.Name,
			CommitHash: tag.Target,
			Message:    tag.Message,
			Date:       tag.CreatedAt,
		}
		if tag.Commit != nil && tag.Commit.ID != "" {
			result.CommitHash = tag.Commit.ID
		}
		return result
	})
}
