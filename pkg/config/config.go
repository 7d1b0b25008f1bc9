package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/idm/config"
	ConfigFileName    = "idm.yml"

	// AuthConfigFileName is the authentication document looked for next to
	// the server config when no explicit path is configured.
	AuthConfigFileName = "authentication.json"
)

// ServerConfig holds the IDM server settings. The authentication chain
// itself lives in a separate document, see Authentication; ServerConfig
// only records where to find it.
type ServerConfig struct {
	// ListenAddress is the host:port the HTTP server binds.
	ListenAddress string `yaml:"listen_address" json:"listen_address"`

	// TrustedProxies is a list of CIDR ranges whose X-Forwarded-For
	// headers are believed when resolving the client address.
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// SessionTTLMinutes is the session token lifetime in minutes. The
	// session module properties of the authentication document override it.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" json:"session_ttl_minutes"`

	// SessionIssuer is the iss claim recorded in session tokens.
	SessionIssuer string `yaml:"session_issuer" json:"session_issuer"`

	// AuthConfigFile is the path of the authentication document.
	AuthConfigFile string `yaml:"auth_config_file" json:"auth_config_file"`

	// WatchAuthConfig re-activates the chain when the authentication
	// document changes on disk.
	WatchAuthConfig bool `yaml:"watch_auth_config" json:"watch_auth_config"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *ServerConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *ServerConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *ServerConfig {
	return &ServerConfig{
		ListenAddress:     ":8080",
		TrustedProxies:    []string{},
		SessionTTLMinutes: 30,
		SessionIssuer:     "idm",
		AuthConfigFile:    filepath.Join(DefaultConfigPath, AuthConfigFileName),
		WatchAuthConfig:   true,
		sources:           make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*ServerConfig, error) {
	config := newDefault()

	// Initialize all sources as "default"
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	// Determine config file path
	configPath := os.Getenv("IDM_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	// The authentication document defaults to living next to the server
	// config, wherever that turned out to be.
	config.AuthConfigFile = filepath.Join(configPath, AuthConfigFileName)

	// Try to load from config file
	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig ServerConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	// Override with environment variables
	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"listen_address", "trusted_proxies", "session_ttl_minutes",
		"session_issuer", "auth_config_file", "watch_auth_config",
	}
}

func (c *ServerConfig) applyFileConfig(file *ServerConfig) {
	if file.ListenAddress != "" {
		c.ListenAddress = file.ListenAddress
		c.sources["listen_address"] = "file"
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.SessionTTLMinutes != 0 {
		c.SessionTTLMinutes = file.SessionTTLMinutes
		c.sources["session_ttl_minutes"] = "file"
	}
	if file.SessionIssuer != "" {
		c.SessionIssuer = file.SessionIssuer
		c.sources["session_issuer"] = "file"
	}
	if file.AuthConfigFile != "" {
		c.AuthConfigFile = file.AuthConfigFile
		c.sources["auth_config_file"] = "file"
	}
}

func (c *ServerConfig) applyEnvConfig() {
	if val := os.Getenv("IDM_LISTEN_ADDRESS"); val != "" {
		c.ListenAddress = val
		c.sources["listen_address"] = "environment"
	}
	if val := os.Getenv("IDM_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("IDM_SESSION_TTL_MINUTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SessionTTLMinutes = i
			c.sources["session_ttl_minutes"] = "environment"
		}
	}
	if val := os.Getenv("IDM_SESSION_ISSUER"); val != "" {
		c.SessionIssuer = val
		c.sources["session_issuer"] = "environment"
	}
	if val := os.Getenv("IDM_AUTH_CONFIG_FILE"); val != "" {
		c.AuthConfigFile = val
		c.sources["auth_config_file"] = "environment"
	}
	if val := os.Getenv("IDM_WATCH_AUTH_CONFIG"); val != "" {
		c.WatchAuthConfig = val == "true" || val == "1"
		c.sources["watch_auth_config"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *ServerConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *ServerConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// SessionTTL returns the session lifetime as a duration
func (c *ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *ServerConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *ServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen_address value: %s", c.ListenAddress)
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("invalid session_ttl_minutes value: %d", c.SessionTTLMinutes)
	}

	if c.AuthConfigFile == "" {
		return fmt.Errorf("auth_config_file is required")
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *ServerConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "listen_address", Value: c.ListenAddress, Source: c.Source("listen_address")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "session_ttl_minutes", Value: strconv.Itoa(c.SessionTTLMinutes), Source: c.Source("session_ttl_minutes")},
		{Name: "session_issuer", Value: c.SessionIssuer, Source: c.Source("session_issuer")},
		{Name: "auth_config_file", Value: c.AuthConfigFile, Source: c.Source("auth_config_file")},
		{Name: "watch_auth_config", Value: strconv.FormatBool(c.WatchAuthConfig), Source: c.Source("watch_auth_config")},
	}
}

// FormatText returns a text representation of the configuration
func (c *ServerConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-25s %-45s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-25s %-45s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-45s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *ServerConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
