package azuredevops

import "encoding/json"

// listDTO is the envelope of every Azure DevOps collection.
type listDTO[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}

type profileDTO struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	PublicAlias  string `json:"publicAlias"`
}

type accountDTO struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	AccountURI  string `json:"accountUri"`
}

type hrefDTO struct {
	Href string `json:"href"`
}

type graphUserDTO struct {
	Descriptor    string `json:"descriptor"`
	PrincipalName string `json:"principalName"`
	DisplayName   string `json:"displayName"`
	MailAddress   string `json:"mailAddress"`
	URL           string `json:"url"`
	Links         struct {
		Avatar hrefDTO `json:"avatar"`
	} `json:"_links"`
}

type projectDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	State       string `json:"state"`
	Visibility  string `json:"visibility"` // "private" or "public"
}

// repositoryDTO keeps the raw project so it can be returned as a custom property.
type repositoryDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	URL           string          `json:"url"`
	RemoteURL     string          `json:"remoteUrl"`
	SSHURL        string          `json:"sshUrl"`
	WebURL        string          `json:"webUrl"`
	DefaultBranch string          `json:"defaultBranch"`
	Project       json.RawMessage `json:"project"`
}

type projectReferenceDTO struct {
	ID string `json:"id"`
}

type createRepositoryDTO struct {
	Name    string              `json:"name"`
	Project projectReferenceDTO `json:"project"`
}

type gitUserDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

type commitDTO struct {
	CommitID string     `json:"commitId"`
	Comment  string     `json:"comment"`
	Author   gitUserDTO `json:"author"`
}

type refDTO struct {
	Name           string `json:"name"`
	ObjectID       string `json:"objectId"`
	PeeledObjectID string `json:"peeledObjectId"`
	IsLocked       bool   `json:"isLocked"`
	URL            string `json:"url"`
}
