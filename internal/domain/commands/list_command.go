package commands

import (
	"context"
	"slices"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	"github.com/rios0rios0/gitbridge/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/gitbridge/internal/infrastructure/repositories"
)

// ListKind names what a list command enumerates.
type ListKind string

const (
	ListOrganizations ListKind = "orgs"
	ListMembers       ListKind = "members"
	ListRepositories  ListKind = "repos"
	ListCommits       ListKind = "commits"
	ListBranches      ListKind = "branches"
	ListTags          ListKind = "tags"
	ListResources     ListKind = "resources"
)

// ListKinds returns every supported kind in help order.
func ListKinds() []ListKind {
	return []ListKind{
		ListOrganizations, ListMembers, ListRepositories, ListCommits, ListBranches, ListTags, ListResources,
	}
}

// List is the interface for the list command.
type List interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ListOptions) (*ListResult, error)
}

// ListOptions holds runtime options for a single listing.
type ListOptions struct {
	ProviderName string
	Kind         ListKind
	Organization string            // organization/group/workspace id
	Repository   string            // repository id for commits, branches and tags
	Owner        string            // owner id used to resolve Repository
	Page         entities.PageRequest
	Parameters   map[string]string // extra provider parameters
	Filters      *entities.CommitFilters
	ResourceType string
	SemverSort   bool // sort tags by semantic version, newest first
}

// ListResult holds the page of the requested kind; every other field is nil.
type ListResult struct {
	Kind          ListKind
	Organizations *entities.Page[entities.Organization]
	Members       *entities.Page[entities.User]
	Repositories  *entities.Page[entities.Repository]
	Commits       *entities.Page[entities.Commit]
	Branches      *entities.Page[entities.Branch]
	Tags          *entities.Page[entities.Tag]
	Resources     *entities.Page[entities.ProviderCustomResource]
}

// ListCommand enumerates one kind of object of a configured provider.
type ListCommand struct {
	providerRegistry *infraRepos.ProviderRegistry
}

// NewListCommand creates a new ListCommand.
func NewListCommand(providerRegistry *infraRepos.ProviderRegistry) *ListCommand {
	return &ListCommand{providerRegistry: providerRegistry}
}

// Execute validates the options, builds the provider and fetches one page.
func (it *ListCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ListOptions,
) (*ListResult, error) {
	if err := opts.Filters.Validate(); err != nil {
		return nil, err
	}
	if err := opts.requireScope(); err != nil {
		return nil, err
	}

	providerSettings, err := selectProvider(settings, opts.ProviderName)
	if err != nil {
		return nil, err
	}
	provider, err := buildProvider(it.providerRegistry, providerSettings)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Listing %s on provider %q", opts.Kind, providerSettings.Name)

	result := &ListResult{Kind: opts.Kind}
	page := opts.Page.Normalize()
	switch opts.Kind {
	case ListOrganizations:
		orgs, listErr := provider.ListOrganizations(ctx, page)
		result.Organizations, err = &orgs, listErr
	case ListMembers:
		members, listErr := provider.ListMembers(ctx, entities.Organization{ID: opts.Organization}, page)
		result.Members, err = &members, listErr
	case ListRepositories:
		result.Repositories, err = it.listRepositories(ctx, provider, opts, page)
	case ListCommits, ListBranches, ListTags:
		err = it.listGitObjects(ctx, provider, opts, page, result)
	case ListResources:
		resources, listErr := provider.GetProviderCustomResources(ctx, opts.ResourceType, opts.Parameters, page)
		result.Resources, err = &resources, listErr
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// requireScope checks the identifiers each kind needs before any request is made.
func (o ListOptions) requireScope() error {
	switch o.Kind {
	case ListOrganizations, ListRepositories:
	case ListMembers:
		if o.Organization == "" {
			return entities.NewConfigurationError("--org is required to list members")
		}
	case ListCommits, ListBranches, ListTags:
		if o.Repository == "" {
			return entities.NewConfigurationError("--repo is required to list %s", o.Kind)
		}
	case ListResources:
		if o.ResourceType == "" {
			return entities.NewConfigurationError("--type is required to list resources")
		}
	default:
		return entities.NewConfigurationError("unknown list kind %q", o.Kind)
	}
	return nil
}

// listRepositories scopes by organization when one is given, otherwise by the authenticated user.
func (it *ListCommand) listRepositories(
	ctx context.Context,
	provider repositories.GitProvider,
	opts ListOptions,
	page entities.PageRequest,
) (*entities.Page[entities.Repository], error) {
	var (
		org  *entities.Organization
		user *entities.User
	)
	if opts.Organization != "" {
		org = &entities.Organization{ID: opts.Organization}
	} else {
		current, err := provider.GetCurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		user = current
	}
	repos, err := provider.ListRepositories(ctx, org, user, opts.Parameters, page)
	if err != nil {
		return nil, err
	}
	return &repos, nil
}

func (it *ListCommand) listGitObjects(
	ctx context.Context,
	provider repositories.GitProvider,
	opts ListOptions,
	page entities.PageRequest,
	result *ListResult,
) error {
	repository, err := provider.GetRepository(ctx, opts.Repository, opts.Owner)
	if err != nil {
		return err
	}
	if repository == nil {
		return entities.NewConfigurationError("repository %q was not found", opts.Repository)
	}

	switch opts.Kind {
	case ListCommits:
		commits, listErr := provider.ListCommits(ctx, *repository, opts.Filters, page)
		result.Commits, err = &commits, listErr
	case ListBranches:
		branches, listErr := provider.ListBranches(ctx, *repository, page)
		result.Branches, err = &branches, listErr
	default:
		tags, listErr := provider.ListTags(ctx, *repository, page)
		if listErr == nil && opts.SemverSort {
			SortTagsBySemver(tags.Content)
		}
		result.Tags, err = &tags, listErr
	}
	return err
}

// SortTagsBySemver orders tags newest version first. Names that are not semantic versions
// (with or without a "v" prefix) keep their relative order after all versions.
func SortTagsBySemver(tags []entities.Tag) {
	slices.SortStableFunc(tags, func(a, b entities.Tag) int {
		va, vb := canonicalVersion(a.Name), canonicalVersion(b.Name)
		switch {
		case va == "" && vb == "":
			return 0
		case va == "":
			return 1
		case vb == "":
			return -1
		default:
			return semver.Compare(vb, va)
		}
	})
}

func canonicalVersion(name string) string {
	version := name
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return ""
	}
	return version
}
