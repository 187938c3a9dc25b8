package controllers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gitbridge/internal/domain/commands"
	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

// ListController handles the "list" subcommand.
type ListController struct {
	command commands.List
}

// NewListController creates a new ListController.
func NewListController(command commands.List) *ListController {
	return &ListController{command: command}
}

// GetBind returns the Cobra command metadata for the list controller.
func (it *ListController) GetBind() entities.ControllerBind {
	kinds := lo.Map(commands.ListKinds(), func(kind commands.ListKind, _ int) string { return string(kind) })
	return entities.ControllerBind{
		Use:   "list <" + strings.Join(kinds, "|") + ">",
		Short: "List objects of a configured provider",
		Long: `Fetch one page of organizations, members, repositories, commits,
branches, tags or provider-specific resources from a configured provider.

Examples:
  gitbridge list orgs --provider corp-gitlab
  gitbridge list repos --provider corp-github --org acme --size 50
  gitbridge list commits --provider corp-github --repo 42 --from-tag v1.0.0 --to-tag v1.1.0
  gitbridge list resources --provider corp-bitbucket --type project --param workspace=acme`,
	}
}

// AddFlags adds the list-specific flags to the given Cobra command.
func (it *ListController) AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("provider", "", "Name of the configured provider (optional with a single provider)")
	flags.String("org", "", "Organization, group or workspace id")
	flags.String("repo", "", "Repository id (commits, branches, tags)")
	flags.String("owner", "", "Owner id used to resolve --repo")
	flags.Int("page", 0, "Zero-based page number")
	flags.Int("size", entities.DefaultPageSize, "Page size")
	flags.StringToString("param", nil, "Extra provider parameter (key=value, repeatable)")
	flags.String("from-tag", "", "Compare commits from this tag")
	flags.String("to-tag", "", "Compare commits up to this tag")
	flags.String("from-commit", "", "Compare commits from this hash")
	flags.String("to-commit", "", "Compare commits up to this hash")
	flags.String("from-branch", "", "Compare commits from this branch")
	flags.String("to-branch", "", "Compare commits up to this branch")
	flags.String("type", "", "Custom resource type (resources)")
	flags.Bool("semver", false, "Sort tags by semantic version, newest first")
	flags.StringP("output", "o", outputTable, "Output format (table, json)")
}

// Execute fetches and prints one page.
func (it *ListController) Execute(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		logger.Errorf("Expected exactly one kind to list, got %d arguments", len(args))
		return
	}

	opts, output, err := listOptionsFromFlags(cmd, commands.ListKind(args[0]))
	if err != nil {
		logger.Error(err)
		return
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		return
	}

	result, err := it.command.Execute(context.Background(), settings, opts)
	if err != nil {
		logger.Errorf("List failed: %v", err)
		return
	}
	if writeErr := writeListResult(cmd, output, result); writeErr != nil {
		logger.Errorf("Failed to write output: %v", writeErr)
	}
}

func listOptionsFromFlags(cmd *cobra.Command, kind commands.ListKind) (commands.ListOptions, string, error) {
	flags := cmd.Flags()
	output, _ := flags.GetString("output")
	if err := validateOutput(output); err != nil {
		return commands.ListOptions{}, "", err
	}

	providerName, _ := flags.GetString("provider")
	org, _ := flags.GetString("org")
	repo, _ := flags.GetString("repo")
	owner, _ := flags.GetString("owner")
	page, _ := flags.GetInt("page")
	size, _ := flags.GetInt("size")
	params, _ := flags.GetStringToString("param")
	resourceType, _ := flags.GetString("type")
	semverSort, _ := flags.GetBool("semver")

	filters := &entities.CommitFilters{}
	filters.FromTagName, _ = flags.GetString("from-tag")
	filters.ToTagName, _ = flags.GetString("to-tag")
	filters.FromCommitHash, _ = flags.GetString("from-commit")
	filters.ToCommitHash, _ = flags.GetString("to-commit")
	filters.FromBranchName, _ = flags.GetString("from-branch")
	filters.ToBranchName, _ = flags.GetString("to-branch")
	if *filters == (entities.CommitFilters{}) {
		filters = nil
	}

	return commands.ListOptions{
		ProviderName: providerName,
		Kind:         kind,
		Organization: org,
		Repository:   repo,
		Owner:        owner,
		Page:         entities.PageRequest{Number: page, Size: size},
		Parameters:   params,
		Filters:      filters,
		ResourceType: resourceType,
		SemverSort:   semverSort,
	}, output, nil
}

func writeListResult(cmd *cobra.Command, output string, result *commands.ListResult) error {
	header, rows, page := tabulate(result)
	if output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), page)
	}
	if err := writeTable(cmd.OutOrStdout(), header, rows); err != nil {
		return err
	}
	if hasNext(result) {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "\nMore results available, use --page to fetch the next page.")
		return err
	}
	return nil
}

// tabulate renders the populated page of result and returns it for JSON output.
func tabulate(result *commands.ListResult) ([]string, [][]string, any) {
	switch {
	case result.Organizations != nil:
		return []string{"ID", "NAME", "URL"},
			lo.Map(result.Organizations.Content, func(org entities.Organization, _ int) []string {
				return []string{org.ID, org.Name, org.URL}
			}), result.Organizations
	case result.Members != nil:
		return []string{"ID", "USERNAME", "NAME"},
			lo.Map(result.Members.Content, func(user entities.User, _ int) []string {
				return []string{user.ID, user.Username, user.DisplayName}
			}), result.Members
	case result.Repositories != nil:
		return []string{"ID", "NAME", "OWNER", "VISIBILITY", "DEFAULT BRANCH"},
			lo.Map(result.Repositories.Content, func(repo entities.Repository, _ int) []string {
				return []string{repo.ID, repo.Name, repo.OwnerID, string(repo.Visibility), repo.DefaultBranch}
			}), result.Repositories
	case result.Commits != nil:
		return []string{"HASH", "DATE", "AUTHOR", "MESSAGE"},
			lo.Map(result.Commits.Content, func(commit entities.Commit, _ int) []string {
				return []string{commit.Hash, commit.Date.Format(time.RFC3339), commit.AuthorEmail, firstLine(commit.Message)}
			}), result.Commits
	case result.Branches != nil:
		return []string{"NAME", "COMMIT", "DEFAULT", "PROTECTED"},
			lo.Map(result.Branches.Content, func(branch entities.Branch, _ int) []string {
				return []string{
					branch.Name, branch.LatestCommitHash,
					strconv.FormatBool(branch.Default), strconv.FormatBool(branch.Protected),
				}
			}), result.Branches
	case result.Tags != nil:
		return []string{"NAME", "COMMIT", "DATE"},
			lo.Map(result.Tags.Content, func(tag entities.Tag, _ int) []string {
				date := ""
				if tag.Date != nil {
					date = tag.Date.Format(time.RFC3339)
				}
				return []string{tag.Name, tag.CommitHash, date}
			}), result.Tags
	case result.Resources != nil:
		return []string{"ID", "NAME", "DESCRIPTION"},
			lo.Map(result.Resources.Content, func(resource entities.ProviderCustomResource, _ int) []string {
				return []string{resource.ID, resource.Name, firstLine(resource.Description)}
			}), result.Resources
	default:
		return nil, nil, nil
	}
}

func hasNext(result *commands.ListResult) bool {
	switch {
	case result.Organizations != nil:
		return result.Organizations.HasNext
	case result.Members != nil:
		return result.Members.HasNext
	case result.Repositories != nil:
		return result.Repositories.HasNext
	case result.Commits != nil:
		return result.Commits.HasNext
	case result.Branches != nil:
		return result.Branches.HasNext
	case result.Tags != nil:
		return result.Tags.HasNext
	case result.Resources != nil:
		return result.Resources.HasNext
	default:
		return false
	}
}
