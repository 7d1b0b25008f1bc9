package endpoints

import (
	"net/http"

	"idm-in-go/pkg/server"
	"idm-in-go/pkg/server/store"
)

// HealthResponse represents the response from the /health endpoint
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterHealthEndpoints registers the health endpoint. No auth required;
// it reports reachability, nothing about users or modules.
func RegisterHealthEndpoints(s *server.Server) {
	s.Router.HandleFunc("/health", handleHealth(s.Health)).Methods("GET")
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
