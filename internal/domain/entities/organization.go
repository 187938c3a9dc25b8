package entities

// Organization groups users and repositories (GitHub organization, GitLab group,
// Bitbucket workspace, Azure DevOps organization).
// Members and Repositories are only populated when explicitly fetched.
type Organization struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URL          string       `json:"url,omitempty"`
	Members      []User       `json:"members,omitempty"`
	Repositories []Repository `json:"repositories,omitempty"`
}
