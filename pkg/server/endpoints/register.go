package endpoints

import (
	"idm-in-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterAuthenticationEndpoints(srv)
	RegisterAuthenticatorsEndpoint(srv)
	RegisterHealthEndpoints(srv)
	RegisterMetricsEndpoint(srv)
}
