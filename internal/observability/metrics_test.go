package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/health/live", "GET", 200, 5*time.Millisecond)
	m.RecordCheckout("payment")
	m.RecordCheckout("payment")
	m.RecordNotification("sermon", true)
	m.RecordNotification("sermon", false)
	m.RecordRoleResolution("degraded")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/health/live", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkouts.WithLabelValues("payment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("sermon", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.roleResolutions.WithLabelValues("degraded")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Second)
		m.RecordError("/", "GET", "INTERNAL_ERROR")
		m.RecordCheckout("subscription")
		m.RecordNotification("event", true)
		m.RecordRoleResolution("cache")
	})
}
