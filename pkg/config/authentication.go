package config

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"idm-in-go/pkg/auth"
)

// SessionModuleJWT is the only session module kind the server knows.
const SessionModuleJWT = "JWT_SESSION"

// SessionModule configures how authenticated sessions are represented.
type SessionModule struct {
	Name       string                 `yaml:"name" json:"name"`
	Properties map[string]interface{} `yaml:"properties" json:"properties"`
}

// SessionProperties is the typed view of the session module properties.
type SessionProperties struct {
	KeyAlias             string `mapstructure:"keyAlias"`
	MaxTokenLifeMinutes  int    `mapstructure:"maxTokenLifeMinutes"`
	TokenIdleTimeMinutes int    `mapstructure:"tokenIdleTimeMinutes"`
}

// DecodeProperties decodes the raw session module properties.
func (s SessionModule) DecodeProperties() (SessionProperties, error) {
	var props SessionProperties
	if err := mapstructure.Decode(s.Properties, &props); err != nil {
		return SessionProperties{}, fmt.Errorf("session module %q: decode properties: %w", s.Name, err)
	}
	return props, nil
}

// ServerAuthContext is the authentication section of the document.
type ServerAuthContext struct {
	SessionModule SessionModule       `yaml:"sessionModule" json:"sessionModule"`
	AuthModules   []auth.ModuleConfig `yaml:"authModules" json:"authModules"`
}

// Authentication is the on-disk authentication document. It names the
// session module and lists the authentication modules in the order the
// chain consults them.
type Authentication struct {
	ServerAuthContext ServerAuthContext `yaml:"serverAuthContext" json:"serverAuthContext"`
}

// Modules returns the configured authentication module entries, unfiltered.
func (a *Authentication) Modules() []auth.ModuleConfig {
	return a.ServerAuthContext.AuthModules
}

// LoadAuthentication reads an authentication document from disk. YAML and
// JSON files are both accepted; JSON is valid YAML.
func LoadAuthentication(path string) (*Authentication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read authentication document: %w", err)
	}
	return ParseAuthentication(data)
}

// ParseAuthentication parses an authentication document.
func ParseAuthentication(data []byte) (*Authentication, error) {
	var doc Authentication
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse authentication document: %w", err)
	}

	if name := doc.ServerAuthContext.SessionModule.Name; name != "" && name != SessionModuleJWT {
		return nil, fmt.Errorf("unsupported session module %q", name)
	}

	return &doc, nil
}
