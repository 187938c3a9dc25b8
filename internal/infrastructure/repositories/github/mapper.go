package github

import (
	"strconv"

	gh "github.com/google/go-github/v66/github"
	"github.com/samber/lo"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

const ownerTypeOrganization = "Organization"

func toUser(user *gh.User) entities.User {
	return entities.User{
		ID:          user.GetLogin(),
		Username:    user.GetLogin(),
		DisplayName: user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		ProfileURL:  user.GetHTMLURL(),
	}
}

func toUsers(users []*gh.User) []entities.User {
	return lo.Map(users, func(user *gh.User, _ int) entities.User {
		return toUser(user)
	})
}

// toOrganization uses the login as identifier since every organization endpoint is addressed by it.
func toOrganization(org *gh.Organization) entities.Organization {
	name := org.GetName()
	if name == "" {
		name = org.GetLogin()
	}
	return entities.Organization{
		ID:   org.GetLogin(),
		Name: name,
		URL:  org.GetHTMLURL(),
	}
}

func toRepository(repo *gh.Repository) entities.Repository {
	ownerType := entities.OwnerTypeAccount
	if repo.GetOwner().GetType() == ownerTypeOrganization {
		ownerType = entities.OwnerTypeOrganization
	}

	visibility := entities.VisibilityPublic
	if repo.GetPrivate() || repo.GetVisibility() == "internal" {
		visibility = entities.VisibilityPrivate
	}

	var properties entities.ProviderCustomResourceProperties
	if fullName := repo.GetFullName(); fullName != "" {
		properties = properties.With("full_name", fullName)
	}
	if htmlURL := repo.GetHTMLURL(); htmlURL != "" {
		properties = properties.With("html_url", htmlURL)
	}

	return entities.Repository{
		ID:               strconv.FormatInt(repo.GetID(), 10),
		Name:             repo.GetName(),
		Description:      repo.GetDescription(),
		HTTPCloneURL:     repo.GetCloneURL(),
		SSHCloneURL:      repo.GetSSHURL(),
		DefaultBranch:    repo.GetDefaultBranch(),
		OwnerType:        ownerType,
		OwnerID:          repo.GetOwner().GetLogin(),
		Visibility:       visibility,
		CustomProperties: properties,
	}
}

func toRepositories(repos []*gh.Repository) []entities.Repository {
	return lo.Map(repos, func(repo *gh.Repository, _ int) entities.Repository {
		return toRepository(repo)
	})
}

func toCommits(commits []*gh.RepositoryCommit) []entities.Commit {
	return lo.Map(commits, func(commit *gh.RepositoryCommit, _ int) entities.Commit {
		author := commit.GetCommit().GetAuthor()
		return entities.Commit{
			Hash:        commit.GetSHA(),
			Message:     commit.GetCommit().GetMessage(),
			AuthorEmail: author.GetEmail(),
			Date:        author.GetDate().Time,
		}
	})
}

func toBranches(branches []*gh.Branch, repository entities.Repository) []entities.Branch {
	htmlURL := repository.StringProperty("html_url")
	return lo.Map(branches, func(branch *gh.Branch, _ int) entities.Branch {
		result := entities.Branch{
			Name:             branch.GetName(),
			LatestCommitHash: branch.GetCommit().GetSHA(),
			Default:          branch.GetName() == repository.DefaultBranch,
			Protected:        branch.GetProtected(),
		}
		if htmlURL != "" {
			result.URL = htmlURL + "/tree/" + branch.GetName()
		}
		return result
	})
}

// toTags leaves message, tagger and date empty since the tag listing carries only the target commit.
func toTags(tags []*gh.RepositoryTag) []entities.Tag {
	return lo.Map(tags, func(tag *gh.RepositoryTag, _ int) entities.Tag {
		return entities.Tag{
			Name:       tag.GetName(),
			CommitHash: tag.GetCommit().GetSHA(),
		}
	})
}
