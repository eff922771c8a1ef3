package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notedesk/internal/client/metrics"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveRemote("list_notes", metrics.OutcomeSuccess, time.Now())
	m.ObserveRemote("list_notes", metrics.OutcomeSuccess, time.Now())
	m.ObserveRemote("create_note", metrics.OutcomeTransport, time.Now())
	m.ObserveRejected()
	m.ObserveList(3)

	assert.InDelta(t, 2, testutil.ToFloat64(m.RemoteRequests.WithLabelValues("list_notes", metrics.OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RemoteRequests.WithLabelValues("create_note", metrics.OutcomeTransport)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RejectedInFlight), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.ListedNotes), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveRemote("list_notes", metrics.OutcomeSuccess, time.Now())
		m.ObserveRejected()
		m.ObserveList(1)
	})
}
