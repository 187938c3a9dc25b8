package bitbucket

import "encoding/json"

// pageDTO is the envelope of every paginated Bitbucket listing.
type pageDTO[T any] struct {
	Values  []T    `json:"values"`
	Page    int    `json:"page"`
	PageLen int    `json:"pagelen"`
	Size    int    `json:"size"`
	Next    string `json:"next"`
}

type linkDTO struct {
	Href string `json:"href"`
	Name string `json:"name"`
}

type linksDTO struct {
	HTML   linkDTO   `json:"html"`
	Avatar linkDTO   `json:"avatar"`
	Clone  []linkDTO `json:"clone"`
}

type userDTO struct {
	UUID        string   `json:"uuid"`
	AccountID   string   `json:"account_id"`
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname"`
	DisplayName string   `json:"display_name"`
	Links       linksDTO `json:"links"`
}

type memberDTO struct {
	User userDTO `json:"user"`
}

type workspaceDTO struct {
	UUID  string   `json:"uuid"`
	Name  string   `json:"name"`
	Slug  string   `json:"slug"`
	Links linksDTO `json:"links"`
}

type ownerDTO struct {
	Type string `json:"type"` // "user" or "team"
}

type branchRefDTO struct {
	Name string `json:"name"`
}

// repositoryDTO keeps provider-specific objects raw so they can be echoed back on creation.
type repositoryDTO struct {
	UUID        string          `json:"uuid"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	FullName    string          `json:"full_name"`
	Description string          `json:"description"`
	IsPrivate   bool            `json:"is_private"`
	Workspace   workspaceDTO    `json:"workspace"`
	Project     json.RawMessage `json:"project"`
	MainBranch  json.RawMessage `json:"mainbranch"`
	Owner       json.RawMessage `json:"owner"`
	Links       json.RawMessage `json:"links"`
}

type createRepositoryDTO struct {
	SCM         string          `json:"scm"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	IsPrivate   bool            `json:"is_private"`
	Project     json.RawMessage `json:"project,omitempty"`
}

type authorDTO struct {
	Raw string `json:"raw"`
}

type commitDTO struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Date    string    `json:"date"`
	Author  authorDTO `json:"author"`
}

type targetDTO struct {
	Hash string `json:"hash"`
}

type refDTO struct {
	Name    string     `json:"name"`
	Target  targetDTO  `json:"target"`
	Message string     `json:"message"`
	Date    string     `json:"date"`
	Tagger  *authorDTO `json:"tagger"`
	Links   linksDTO   `json:"links"`
}

type projectDTO struct {
	UUID        string          `json:"uuid"`
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsPrivate   bool            `json:"is_private"`
	Links       json.RawMessage `json:"links"`
}
