package entities

import "strings"

// ProviderType identifies a Git hosting service.
type ProviderType string

const (
	GITHUB    ProviderType = "GITHUB"
	GITLAB    ProviderType = "GITLAB"
	BITBUCKET ProviderType = "BITBUCKET"
	AZURE     ProviderType = "AZURE"
)

// ParseProviderType resolves a case-insensitive provider name (or one of its aliases).
// It returns false when the name does not denote a known provider.
func ParseProviderType(name string) (ProviderType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "github":
		return GITHUB, true
	case "gitlab":
		return GITLAB, true
	case "bitbucket":
		return BITBUCKET, true
	case "azure", "azuredevops", "azure-devops":
		return AZURE, true
	default:
		return "", false
	}
}

func (t ProviderType) String() string { return string(t) }
