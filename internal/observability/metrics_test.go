package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.RecordOperation("users", "ok", 10*time.Millisecond)
	m.RecordOperation("users", "ok", 5*time.Millisecond)
	m.RecordDenial("users", "FORBIDDEN")
	m.RecordRequest("/graphql", "POST", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("users", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deniedTotal.WithLabelValues("users", "FORBIDDEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/graphql", "POST", "200")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOperation("me", "ok", time.Millisecond)
		m.RecordDenial("me", "UNAUTHORIZED")
		m.RecordError("/graphql", "POST", "INTERNAL_ERROR")
		m.RecordRequest("/graphql", "POST", 500, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}
