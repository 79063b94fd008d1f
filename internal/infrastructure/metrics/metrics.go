// Package metrics exports portal counters to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "training_portal"

// Metrics implements the observers used by the HTTP clients, the bootstrap
// flow and the form loader. A nil *Metrics records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	remoteCalls *prometheus.CounterVec
	schemaCache *prometheus.CounterVec
}

// New registers the portal collectors with reg, or the default registerer
// when reg is nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bootstrap_transitions_total",
			Help:      "Session bootstrap outcomes by flow and resulting state.",
		}, []string{"flow", "state"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Calls to the central system and training API by outcome.",
		}, []string{"api", "op", "status", "outcome"}),
		schemaCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_cache_lookups_total",
			Help:      "Interview form schema cache lookups by result.",
		}, []string{"result"}),
	}
	for _, c := range []*prometheus.CounterVec{m.transitions, m.remoteCalls, m.schemaCache} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// MustNew is New that panics on registration failure.
func MustNew(reg prometheus.Registerer) *Metrics {
	m, err := New(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) ObserveTransition(flow, state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(flow, state).Inc()
}

// ObserveRemote counts one outbound call. status is 0 when no response was
// received.
func (m *Metrics) ObserveRemote(api, op string, status int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.remoteCalls.WithLabelValues(api, op, strconv.Itoa(status), outcome).Inc()
}

func (m *Metrics) ObserveSchemaCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.schemaCache.WithLabelValues(result).Inc()
}
