// Package main provides a Go implementation of an IDM-style authentication
// service.
//
// The server evaluates a configurable chain of authentication modules
// first-match-wins and exposes the authentication resource over HTTP,
// including the reauthenticate action.
//
// # Architecture
//
// The server is organized into several packages:
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/server/middleware: session authentication middleware
//   - pkg/auth: module filter, factory, chain, and orchestrator
//   - pkg/authenticator: authentication module implementations
//   - pkg/session: JWT session tokens
//   - pkg/crypto: field-level credential encryption
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/audit: audit logging
//   - pkg/config: configuration management
//
// # Quick Start
//
// The server is run via the idmctl CLI:
//
//	# Generate a data key for encryption
//	idmctl data-key generate > data_key
//	export IDM_DATA_KEY=$(cat data_key)
//
//	# Run database migrations
//	idmctl db migrate
//
//	# Seed a user
//	idmctl user create jdoe --password changeit
//
//	# Start the server
//	idmctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - IDM_DATA_KEY: Base64-encoded 256-bit key for field encryption
//   - IDM_SESSION_KEY: Base64-encoded session signing key (defaults to IDM_DATA_KEY)
//   - IDM_CONFIG_PATH: Directory holding idm.yml and authentication.json
//   - IDM_LOG_LEVEL: Log level (debug, info, warn, error)
//   - IDM_AUDIT_DATABASE_URL: Optional audit trail database
package main
