package bitbucket

import (
	"encoding/json"
	"net/mail"
	"time"

	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

const ownerTypeUser = "user"

func toUser(dto userDTO) entities.User {
	username := dto.Username
	if username == "" {
		username = dto.Nickname
	}
	return entities.User{
		ID:          dto.UUID,
		Username:    username,
		DisplayName: dto.DisplayName,
		AvatarURL:   dto.Links.Avatar.Href,
		ProfileURL:  dto.Links.HTML.Href,
	}
}

func toMembers(dtos []memberDTO) []entities.User {
	return lo.Map(dtos, func(dto memberDTO, _ int) entities.User {
		return toUser(dto.User)
	})
}

func toOrganization(dto workspaceDTO) entities.Organization {
	return entities.Organization{
		ID:   dto.Slug,
		Name: dto.Name,
		URL:  dto.Links.HTML.Href,
	}
}

func toOrganizations(dtos []workspaceDTO) []entities.Organization {
	return lo.Map(dtos, func(dto workspaceDTO, _ int) entities.Organization {
		return toOrganization(dto)
	})
}

func toRepository(dto repositoryDTO) entities.Repository {
	var owner ownerDTO
	_ = json.Unmarshal(dto.Owner, &owner)
	ownerType := entities.OwnerTypeOrganization
	if owner.Type == ownerTypeUser {
		ownerType = entities.OwnerTypeAccount
	}

	var links linksDTO
	_ = json.Unmarshal(dto.Links, &links)
	var mainBranch branchRefDTO
	_ = json.Unmarshal(dto.MainBranch, &mainBranch)

	visibility := entities.VisibilityPublic
	if dto.IsPrivate {
		visibility = entities.VisibilityPrivate
	}

	var properties entities.ProviderCustomResourceProperties
	for _, raw := range []struct {
		name  string
		value json.RawMessage
	}{
		{"project", dto.Project},
		{"mainbranch", dto.MainBranch},
		{"owner", dto.Owner},
		{"links", dto.Links},
	} {
		if len(raw.value) > 0 && string(raw.value) != "null" {
			properties = properties.With(raw.name, raw.value)
		}
	}
	if dto.FullName != "" {
		properties = properties.With("full_name", dto.FullName)
	}
	if dto.Slug != "" {
		properties = properties.With("slug", dto.Slug)
	}

	repository := entities.Repository{
		ID:               dto.UUID,
		Name:             dto.Name,
		Description:      dto.Description,
		DefaultBranch:    mainBranch.Name,
		OwnerType:        ownerType,
		OwnerID:          dto.Workspace.Slug,
		Visibility:       visibility,
		CustomProperties: properties,
	}
	for _, clone := range links.Clone {
		switch clone.Name {
		case "https":
			repository.HTTPCloneURL = clone.Href
		case "ssh":
			repository.SSHCloneURL = clone.Href
		}
	}
	return repository
}

func toRepositories(dtos []repositoryDTO) []entities.Repository {
	return lo.Map(dtos, func(dto repositoryDTO, _ int) entities.Repository {
		return toRepository(dto)
	})
}

// toCreateRepositoryDTO echoes the raw "project" property so the repository lands in that project.
func toCreateRepositoryDTO(repository entities.Repository) createRepositoryDTO {
	body := createRepositoryDTO{
		SCM:         "git",
		Name:        repository.Name,
		Description: repository.Description,
		IsPrivate:   repository.Visibility != entities.VisibilityPublic,
	}
	if project, ok := repository.Property("project"); ok {
		body.Project = project
	}
	return body
}

// emailOf extracts the address of a "Name <email>" author string.
func emailOf(raw string) string {
	address, err := mail.ParseAddress(raw)
	if err != nil {
		return ""
	}
	return address.Address
}

func toCommits(dtos []commitDTO) []entities.Commit {
	return lo.FilterMap(dtos, func(dto commitDTO, _ int) (entities.Commit, bool) {
		date, err := time.Parse(time.RFC3339, dto.Date)
		if err != nil {
			logger.Warnf("Skipping Bitbucket commit %q with unreadable date %q", dto.Hash, dto.Date)
			return entities.Commit{}, false
		}
		return entities.Commit{
			Hash:        dto.Hash,
			Message:     dto.Message,
			AuthorEmail: emailOf(dto.Author.Raw),
			Date:        date,
		}, true
	})
}

func toBranches(dtos []refDTO, defaultBranch string) []entities.Branch {
	return lo.Map(dtos, func(dto refDTO, _ int) entities.Branch {
		return entities.Branch{
			Name:             dto.Name,
			LatestCommitHash: dto.Target.Hash,
			Default:          dto.Name == defaultBranch,
			URL:              dto.Links.HTML.Href,
		}
	})
}

func toTags(dtos []refDTO) []entities.Tag {
	return lo.Map(dtos, func(dto refDTO, _ int) entities.Tag {
		tag := entities.Tag{
			Name:       dto.Name,
			CommitHash: dto.Target.Hash,
			Message:    dto.Message,
		}
		if dto.Tagger != nil {
			tag.Tagger = dto.Tagger.Raw
		}
		if dto.Date != "" {
			if date, err := time.Parse(time.RFC3339, dto.Date); err == nil {
				tag.Date = &date
			}
		}
		return tag
	})
}

func toProjects(dtos []projectDTO, workspace string) []entities.ProviderCustomResource {
	return lo.Map(dtos, func(dto projectDTO, _ int) entities.ProviderCustomResource {
		properties := entities.ProviderCustomResourceProperties{}.
			With("key", dto.Key).
			With("workspace", workspace).
			With("is_private", dto.IsPrivate)
		if len(dto.Links) > 0 {
			properties = properties.With("links", dto.Links)
		}
		return entities.ProviderCustomResource{
			ID:          dto.UUID,
			Name:        dto.Name,
			Description: dto.Description,
			Properties:  properties,
		}
	})
}
