package entities

import (
	"encoding/json"

	logger "github.com/sirupsen/logrus"
)

// ProviderCustomResourceProperty is an opaque, provider-specific name/value pair.
type ProviderCustomResourceProperty struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// ProviderCustomResourceProperties keeps the order in which a mapper produced the properties.
type ProviderCustomResourceProperties []ProviderCustomResourceProperty

// ProviderCustomResource surfaces provider concepts the common model has no type for
// (e.g. Bitbucket or Azure DevOps projects).
type ProviderCustomResource struct {
	ID          string                           `json:"id"`
	Name        string                           `json:"name"`
	Description string                           `json:"description,omitempty"`
	Properties  ProviderCustomResourceProperties `json:"properties,omitempty"`
}

// NewProperty marshals value into a property. Values that cannot be marshalled become JSON null.
func NewProperty(name string, value any) ProviderCustomResourceProperty {
	if raw, ok := value.(json.RawMessage); ok {
		return ProviderCustomResourceProperty{Name: name, Value: raw}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warnf("Failed to marshal custom property %q: %v", name, err)
		raw = json.RawMessage("null")
	}
	return ProviderCustomResourceProperty{Name: name, Value: raw}
}

// Get returns the raw value of the first property with the given name.
func (p ProviderCustomResourceProperties) Get(name string) (json.RawMessage, bool) {
	for _, property := range p {
		if property.Name == name {
			return property.Value, true
		}
	}
	return nil, false
}

// GetString decodes the named property as a string. Non-string values yield "".
func (p ProviderCustomResourceProperties) GetString(name string) string {
	raw, ok := p.Get(name)
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// With returns a copy where the named property is set, replacing an existing one with the same name.
func (p ProviderCustomResourceProperties) With(name string, value any) ProviderCustomResourceProperties {
	property := NewProperty(name, value)
	result := make(ProviderCustomResourceProperties, 0, len(p)+1)
	replaced := false
	for _, existing := range p {
		if existing.Name == name {
			if !replaced {
				result = append(result, property)
				replaced = true
			}
			continue
		}
		result = append(result, existing)
	}
	if !replaced {
		result = append(result, property)
	}
	return result
}
