package endpoints

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idm-in-go/pkg/server"
)

// RegisterMetricsEndpoint exposes the Prometheus registry. The collectors
// label metrics with module names and outcomes only.
func RegisterMetricsEndpoint(s *server.Server) {
	s.Router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
