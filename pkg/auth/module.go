package auth

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Well-known module property names.
const (
	propQueryOnResource  = "queryOnResource"
	propQueryID          = "queryId"
	propPropertyMapping  = "propertyMapping"
	propAuthenticationID = "authenticationId"
	propUserCredential   = "userCredential"
)

// ModuleConfig is one entry of the authModules list as loaded from
// configuration. Properties carries the raw module properties; their shape
// is validated by FilterModules, not at load time.
type ModuleConfig struct {
	Name       string                 `yaml:"name" json:"name"`
	Enabled    *bool                  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Properties map[string]interface{} `yaml:"properties" json:"properties"`
}

// IsEnabled reports whether the entry participates in chain construction.
// An absent enabled flag counts as enabled.
func (m ModuleConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// FilterModules returns the entries eligible for chain construction,
// preserving their relative order. An entry survives when it is enabled,
// names a string queryOnResource, and, if a queryId is present, carries a
// string queryId plus string propertyMapping.authenticationId and
// propertyMapping.userCredential values. Anything else is dropped: a bad
// entry costs itself, never the chain. A null queryId counts as absent.
// Filtering is total over any input shape and never returns an error.
func FilterModules(modules []ModuleConfig) []ModuleConfig {
	filtered := make([]ModuleConfig, 0, len(modules))
	for _, m := range modules {
		if !m.IsEnabled() {
			continue
		}
		if !hasString(m.Properties, propQueryOnResource) {
			continue
		}
		if queryID, present := m.Properties[propQueryID]; present && queryID != nil {
			if !hasString(m.Properties, propQueryID) {
				continue
			}
			mapping, ok := m.Properties[propPropertyMapping].(map[string]interface{})
			if !ok || !hasString(mapping, propAuthenticationID) || !hasString(mapping, propUserCredential) {
				continue
			}
		}
		filtered = append(filtered, m)
	}
	return filtered
}

func hasString(properties map[string]interface{}, name string) bool {
	value, present := properties[name]
	if !present {
		return false
	}
	_, ok := value.(string)
	return ok
}

// PropertyMapping names the object properties a query-backed module reads
// the authentication id and stored credential from.
type PropertyMapping struct {
	AuthenticationID string `mapstructure:"authenticationId"`
	UserCredential   string `mapstructure:"userCredential"`
	UserRoles        string `mapstructure:"userRoles"`
}

// ModuleProperties is the typed view of a validated property set. Extra
// collects properties specific to a module kind (static credentials, cache
// settings) that constructors decode on their own.
type ModuleProperties struct {
	QueryOnResource  string                 `mapstructure:"queryOnResource"`
	QueryID          string                 `mapstructure:"queryId"`
	PropertyMapping  PropertyMapping        `mapstructure:"propertyMapping"`
	DefaultUserRoles []string               `mapstructure:"defaultUserRoles"`
	Extra            map[string]interface{} `mapstructure:",remain"`
}

// DecodeProperties decodes the raw property map into its typed view.
// Call it on entries that already passed FilterModules.
func (m ModuleConfig) DecodeProperties() (ModuleProperties, error) {
	var props ModuleProperties
	if err := mapstructure.Decode(m.Properties, &props); err != nil {
		return ModuleProperties{}, fmt.Errorf("module %q: decode properties: %w", m.Name, err)
	}
	return props, nil
}
