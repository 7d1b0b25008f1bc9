// Package config provides configuration management for the IDM server.
//
// Two documents are involved. The server config (idm.yml) holds process
// settings such as the listen address and session lifetime; it is loaded
// once at startup from file and environment. The authentication document
// (authentication.json) declares the session module and the ordered list
// of authentication modules; it can be reloaded at runtime.
//
// # Configuration Sources
//
// Server config values are resolved in precedence order:
//
//   - Environment variables (IDM_LISTEN_ADDRESS, IDM_SESSION_TTL_MINUTES, ...)
//   - The config file ($IDM_CONFIG_PATH/idm.yml)
//   - Built-in defaults
//
// Each attribute remembers which source supplied it, which the
// "idmctl configuration show" command reports.
//
// # Live reload
//
// Watcher observes the authentication document and hands freshly parsed
// documents to a callback, typically one that re-activates the
// authentication chain. A broken document never replaces a working chain.
package config
