package endpoints

import (
	"net/http"
	"sort"

	"idm-in-go/pkg/server"
)

// AuthenticatorsResponse represents the response from /authenticators
type AuthenticatorsResponse struct {
	Installed  []string `json:"installed"`
	Configured []string `json:"configured"`
	Enabled    []string `json:"enabled"`
}

// RegisterAuthenticatorsEndpoint registers the module listing endpoint. It
// requires no authentication: it names modules, never their configuration
// or any credential material.
func RegisterAuthenticatorsEndpoint(s *server.Server) {
	s.Router.HandleFunc("/authenticators", handleAuthenticators(s)).Methods("GET")
}

func handleAuthenticators(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Installed = module kinds the factory can construct
		installed := s.Auth.Kinds()

		// Configured and enabled = the active chain. Ineligible entries are
		// filtered before activation, so the two lists coincide.
		enabled := s.Auth.Modules()

		// Sort for consistent output
		sort.Strings(installed)
		sort.Strings(enabled)

		respondWithJSON(w, http.StatusOK, AuthenticatorsResponse{
			Installed:  installed,
			Configured: enabled,
			Enabled:    enabled,
		})
	}
}
