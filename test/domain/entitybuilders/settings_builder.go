//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/gitbridge/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// SettingsBuilder helps create test settings with a fluent interface.
type SettingsBuilder struct {
	*testkit.BaseBuilder
	providers []entities.ProviderSettings
}

// NewSettingsBuilder creates a builder with no providers.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{BaseBuilder: testkit.NewBaseBuilder()}
}

// WithProvider appends a provider with the given name and type and a dummy token.
func (b *SettingsBuilder) WithProvider(name, providerType string) *SettingsBuilder {
	b.providers = append(b.providers, entities.ProviderSettings{
		Name:  name,
		Type:  providerType,
		Token: "test-token",
	})
	return b
}

// Build creates the settings (satisfies testkit.Builder interface).
func (b *SettingsBuilder) Build() interface{} {
	return b.BuildSettings()
}

// BuildSettings creates the settings with a concrete return type.
func (b *SettingsBuilder) BuildSettings() *entities.Settings {
	return &entities.Settings{
		Providers: append([]entities.ProviderSettings(nil), b.providers...),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *SettingsBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.providers = nil
	return b
}

// Clone creates a deep copy of the SettingsBuilder.
func (b *SettingsBuilder) Clone() testkit.Builder {
	return &SettingsBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		providers:   append([]entities.ProviderSettings(nil), b.providers...),
	}
}
