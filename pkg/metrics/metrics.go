// Package metrics exposes Prometheus counters for the authentication
// service. A package-level default instance is registered against the
// default Prometheus registerer; tests build their own instance against a
// fresh registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for authentication results.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the authentication service collectors.
type Metrics struct {
	moduleResults     *prometheus.CounterVec
	reauthentications *prometheus.CounterVec
	chainActivations  prometheus.Counter
	chainModules      prometheus.Gauge
}

// New creates an unregistered Metrics instance.
func New() *Metrics {
	return &Metrics{
		moduleResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idm_authentication_module_results_total",
				Help: "Authentication module evaluations by module and outcome",
			},
			[]string{"module", "outcome"},
		),
		reauthentications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idm_authentication_reauthentications_total",
				Help: "Reauthenticate actions by outcome",
			},
			[]string{"outcome"},
		),
		chainActivations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "idm_authentication_chain_activations_total",
				Help: "Chain rebuilds since the service started",
			},
		),
		chainModules: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "idm_authentication_chain_modules",
				Help: "Number of modules in the active chain",
			},
		),
	}
}

// Register registers all collectors with the given registerer.
func (m *Metrics) Register(registerer prometheus.Registerer) {
	registerer.MustRegister(m.moduleResults, m.reauthentications, m.chainActivations, m.chainModules)
}

// ModuleResult records one module evaluation outcome.
func (m *Metrics) ModuleResult(module string, outcome string) {
	m.moduleResults.WithLabelValues(module, outcome).Inc()
}

// Reauthentication records one reauthenticate action outcome.
func (m *Metrics) Reauthentication(outcome string) {
	m.reauthentications.WithLabelValues(outcome).Inc()
}

// ChainActivated records a chain swap and the new chain size.
func (m *Metrics) ChainActivated(modules int) {
	m.chainActivations.Inc()
	m.chainModules.Set(float64(modules))
}

// Default is the instance the service packages record to.
var Default = New()

func init() {
	Default.Register(prometheus.DefaultRegisterer)
}

// ModuleResult records a module outcome on the default instance.
func ModuleResult(module string, outcome string) {
	Default.ModuleResult(module, outcome)
}

// Reauthentication records a reauthenticate outcome on the default instance.
func Reauthentication(outcome string) {
	Default.Reauthentication(outcome)
}

// ChainActivated records a chain swap on the default instance.
func ChainActivated(modules int) {
	Default.ChainActivated(modules)
}
