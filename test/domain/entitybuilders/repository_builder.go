//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// RepositoryBuilder helps create test repositories with a fluent interface.
type RepositoryBuilder struct {
	*testkit.BaseBuilder
	id            string
	name          string
	description   string
	defaultBranch string
	ownerType     entities.OwnerType
	ownerID       string
	visibility    entities.Visibility
	properties    entities.ProviderCustomResourceProperties
}

// NewRepositoryBuilder creates a new repository builder with sensible defaults.
func NewRepositoryBuilder() *RepositoryBuilder {
	b := &RepositoryBuilder{BaseBuilder: testkit.NewBaseBuilder()}
	b.defaults()
	return b
}

func (b *RepositoryBuilder) defaults() {
	b.id = "42"
	b.name = "test-repo"
	b.description = ""
	b.defaultBranch = "main"
	b.ownerType = entities.OwnerTypeOrganization
	b.ownerID = "test-org"
	b.visibility = entities.VisibilityPrivate
	b.properties = nil
}

// WithID sets the provider-native id.
func (b *RepositoryBuilder) WithID(id string) *RepositoryBuilder {
	b.id = id
	return b
}

// WithName sets the repository name.
func (b *RepositoryBuilder) WithName(name string) *RepositoryBuilder {
	b.name = name
	return b
}

// WithDescription sets the description.
func (b *RepositoryBuilder) WithDescription(description string) *RepositoryBuilder {
	b.description = description
	return b
}

// WithDefaultBranch sets the default branch short name.
func (b *RepositoryBuilder) WithDefaultBranch(branch string) *RepositoryBuilder {
	b.defaultBranch = branch
	return b
}

// WithOwner sets the owner type and id.
func (b *RepositoryBuilder) WithOwner(ownerType entities.OwnerType, ownerID string) *RepositoryBuilder {
	b.ownerType = ownerType
	b.ownerID = ownerID
	return b
}

// WithVisibility sets the visibility.
func (b *RepositoryBuilder) WithVisibility(visibility entities.Visibility) *RepositoryBuilder {
	b.visibility = visibility
	return b
}

// WithProperty adds or replaces a custom property.
func (b *RepositoryBuilder) WithProperty(name string, value any) *RepositoryBuilder {
	b.properties = b.properties.With(name, value)
	return b
}

// Build creates the repository (satisfies testkit.Builder interface).
func (b *RepositoryBuilder) Build() interface{} {
	return b.BuildRepository()
}

// BuildRepository creates the repository with a concrete return type.
func (b *RepositoryBuilder) BuildRepository() entities.Repository {
	return entities.Repository{
		ID:               b.id,
		Name:             b.name,
		Description:      b.description,
		DefaultBranch:    b.defaultBranch,
		OwnerType:        b.ownerType,
		OwnerID:          b.ownerID,
		Visibility:       b.visibility,
		CustomProperties: b.properties,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepositoryBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.defaults()
	return b
}

// Clone creates a deep copy of the RepositoryBuilder.
func (b *RepositoryBuilder) Clone() testkit.Builder {
	return &RepositoryBuilder{
		BaseBuilder:   b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		id:            b.id,
		name:          b.name,
		description:   b.description,
		defaultBranch: b.defaultBranch,
		ownerType:     b.ownerType,
		ownerID:       b.ownerID,
		visibility:    b.visibility,
		properties:    append(entities.ProviderCustomResourceProperties(nil), b.properties...),
	}
}
