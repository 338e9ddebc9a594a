// Package metrics records Atlas API and provisioning counters for one CLI run.
// The registry can be exported to a node_exporter textfile after the command finishes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcome labels.
const (
	OutcomeSuccess            = "success"
	OutcomeAPIError           = "api_error"
	OutcomeTransportError     = "transport_error"
	OutcomeMissingCredentials = "missing_credentials"
)

// Recorder owns a private registry. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	APIRequestsTotal    *prometheus.CounterVec
	APIRequestDuration  *prometheus.HistogramVec
	PollAttemptsTotal   *prometheus.CounterVec
	ProvisioningResults *prometheus.CounterVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atlas_provision_api_requests_total",
				Help: "Atlas Admin API calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atlas_provision_api_request_duration_seconds",
				Help:    "Atlas Admin API call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		PollAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atlas_provision_poll_attempts_total",
				Help: "Cluster readiness checks by tier",
			},
			[]string{"tier"},
		),
		ProvisioningResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atlas_provision_operations_total",
				Help: "Provisioning commands by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	r.registry.MustRegister(r.APIRequestsTotal)
	r.registry.MustRegister(r.APIRequestDuration)
	r.registry.MustRegister(r.PollAttemptsTotal)
	r.registry.MustRegister(r.ProvisioningResults)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRequest counts one API call.
func (r *Recorder) ObserveRequest(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.APIRequestsTotal.WithLabelValues(operation, outcome).Inc()
	if outcome != OutcomeMissingCredentials {
		r.APIRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

// ObservePollAttempt counts one readiness check.
func (r *Recorder) ObservePollAttempt(tier string) {
	if r == nil {
		return
	}
	r.PollAttemptsTotal.WithLabelValues(tier).Inc()
}

// ObserveOperation counts one finished command.
func (r *Recorder) ObserveOperation(operation string, err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.ProvisioningResults.WithLabelValues(operation, result).Inc()
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
