package azuredevops

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

// shortName strips "refs/heads/" or "refs/tags/" from a full ref name.
func shortName(ref string) string {
	if ref == "" {
		return ""
	}
	return plumbing.ReferenceName(ref).Short()
}

func toUser(dto profileDTO) entities.User {
	username := dto.EmailAddress
	if username == "" {
		username = dto.PublicAlias
	}
	return entities.User{
		ID:          dto.ID,
		Username:    username,
		DisplayName: dto.DisplayName,
	}
}

func toMembers(dtos []graphUserDTO) []entities.User {
	return lo.Map(dtos, func(dto graphUserDTO, _ int) entities.User {
		return entities.User{
			ID:          dto.Descriptor,
			Username:    dto.PrincipalName,
			DisplayName: dto.DisplayName,
			AvatarURL:   dto.Links.Avatar.Href,
			ProfileURL:  dto.URL,
		}
	})
}

func toOrganizations(dtos []accountDTO, root string) []entities.Organization {
	return lo.Map(dtos, func(dto accountDTO, _ int) entities.Organization {
		return entities.Organization{
			ID:   dto.AccountName,
			Name: dto.AccountName,
			URL:  root + "/" + url.PathEscape(dto.AccountName),
		}
	})
}

func toRepository(dto repositoryDTO, organization string) entities.Repository {
	var project projectDTO
	_ = json.Unmarshal(dto.Project, &project)

	visibility := entities.VisibilityPrivate
	if project.Visibility == "public" {
		visibility = entities.VisibilityPublic
	}

	properties := entities.ProviderCustomResourceProperties{}.With("organization", organization)
	if len(dto.Project) > 0 && string(dto.Project) != "null" {
		properties = properties.With("project", dto.Project)
	}
	if dto.WebURL != "" {
		properties = properties.With("webUrl", dto.WebURL)
	}

	return entities.Repository{
		ID:               dto.ID,
		Name:             dto.Name,
		HTTPCloneURL:     dto.RemoteURL,
		SSHCloneURL:      dto.SSHURL,
		DefaultBranch:    shortName(dto.DefaultBranch),
		OwnerType:        entities.OwnerTypeOrganization,
		OwnerID:          project.ID,
		Visibility:       visibility,
		CustomProperties: properties,
	}
}

func toRepositories(dtos []repositoryDTO, organization string) []entities.Repository {
	return lo.Map(dtos, func(dto repositoryDTO, _ int) entities.Repository {
		return toRepository(dto, organization)
	})
}

func toCommits(dtos []commitDTO) []entities.Commit {
	return lo.FilterMap(dtos, func(dto commitDTO, _ int) (entities.Commit, bool) {
		date, err := time.Parse(time.RFC3339, dto.Author.Date)
		if err != nil {
			logger.Warnf("Skipping Azure DevOps commit %q with unreadable date %q", dto.CommitID, dto.Author.Date)
			return entities.Commit{}, false
		}
		return entities.Commit{
			Hash:        dto.CommitID,
			Message:     dto.Comment,
			AuthorEmail: dto.Author.Email,
			Date:        date,
		}, true
	})
}

func toBranches(dtos []refDTO, repository entities.Repository) []entities.Branch {
	webURL := repository.StringProperty("webUrl")
	return lo.Map(dtos, func(dto refDTO, _ int) entities.Branch {
		name := shortName(dto.Name)
		branch := entities.Branch{
			Name:             name,
			LatestCommitHash: dto.ObjectID,
			Default:          name == repository.DefaultBranch,
			Protected:        dto.IsLocked,
		}
		if webURL != "" {
			branch.URL = webURL + "?version=GB" + url.QueryEscape(name)
		}
		return branch
	})
}

// toTags prefers the peeled commit of annotated tags over the tag object id.
func toTags(dtos []refDTO) []entities.Tag {
	return lo.Map(dtos, func(dto refDTO, _ int) entities.Tag {
		hash := dto.PeeledObjectID
		if hash == "" {
			hash = dto.ObjectID
		}
		return entities.Tag{
			Name:       shortName(dto.Name),
			CommitHash: hash,
		}
	})
}

func toProjects(dtos []projectDTO, organization string) []entities.ProviderCustomResource {
	return lo.Map(dtos, func(dto projectDTO, _ int) entities.ProviderCustomResource {
		properties := entities.ProviderCustomResourceProperties{}.
			With("organization", organization).
			With("state", dto.State).
			With("visibility", dto.Visibility)
		if dto.URL != "" {
			properties = properties.With("url", dto.URL)
		}
		return entities.ProviderCustomResource{
			ID:          dto.ID,
			Name:        dto.Name,
			Description: dto.Description,
			Properties:  properties,
		}
	})
}
