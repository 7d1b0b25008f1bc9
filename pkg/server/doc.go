// Package server provides the HTTP server for the IDM API.
//
// This package implements the core HTTP server that handles IDM REST API
// requests. It uses gorilla/mux for routing and provides middleware for
// authentication and request handling.
//
// # Server Setup
//
//	srv := server.NewServer(authService, sessions, users, health, cfg, db)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Auth: the authentication service evaluating the module chain
//   - Sessions: JWT session token issuance and validation
//   - Users: the user repository
//   - Health: database connectivity checks
//   - Router: HTTP request router
//   - DB: Database connection
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
//
// This registers:
//
//   - /authentication?_action=reauthenticate - credential reconfirmation
//   - /authenticators - installed and active authentication modules
//   - /health - database connectivity check
//   - /metrics - Prometheus metrics
package server
