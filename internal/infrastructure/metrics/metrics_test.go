package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRemote_SplitsOutcome(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRemote("central", "verify otp", 200, nil)
	m.ObserveRemote("central", "verify otp", 200, nil)
	m.ObserveRemote("central", "verify otp", 0, errors.New("dial"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.remoteCalls.WithLabelValues("central", "verify otp", "200", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteCalls.WithLabelValues("central", "verify otp", "0", "error")))
}

func TestObserveTransitionAndCache(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveTransition("verify", "AddingUser")
	m.ObserveSchemaCache(true)
	m.ObserveSchemaCache(false)
	m.ObserveSchemaCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("verify", "AddingUser")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.schemaCache.WithLabelValues("miss")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransition("x", "y")
		m.ObserveRemote("a", "b", 0, nil)
		m.ObserveSchemaCache(true)
	})
}

func TestNew_ToleratesReRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.NoError(t, err)
}
