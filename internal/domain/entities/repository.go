package entities

import "encoding/json"

// OwnerType tells whether a repository belongs to an organization or to a single account.
type OwnerType string

const (
	OwnerTypeOrganization OwnerType = "ORGANIZATION"
	OwnerTypeAccount      OwnerType = "ACCOUNT"
)

// Visibility of a repository.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Repository is a Git repository on any hosting provider.
// ID is provider-native and only unique within one provider and base URL.
// Empty string fields mean the provider did not report a value.
type Repository struct {
	ID               string                           `json:"id"`
	Name             string                           `json:"name"`
	Description      string                           `json:"description,omitempty"`
	HTTPCloneURL     string                           `json:"httpCloneUrl,omitempty"`
	SSHCloneURL      string                           `json:"sshCloneUrl,omitempty"`
	DefaultBranch    string                           `json:"defaultBranch,omitempty"`
	OwnerType        OwnerType                        `json:"ownerType,omitempty"`
	OwnerID          string                           `json:"ownerId,omitempty"`
	Visibility       Visibility                       `json:"visibility,omitempty"`
	CustomProperties ProviderCustomResourceProperties `json:"customProperties,omitempty"`
}

// Property returns the raw value of the custom property with the given name.
func (r *Repository) Property(name string) (json.RawMessage, bool) {
	return r.CustomProperties.Get(name)
}

// StringProperty returns the custom property decoded as a string, or "" when absent or not a string.
func (r *Repository) StringProperty(name string) string {
	return r.CustomProperties.GetString(name)
}
