// Package metrics собирает метрики обращений к удаленному сервису заметок.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы удаленного вызова.
const (
	OutcomeSuccess   = "success"
	OutcomeService   = "service_error"
	OutcomeTransport = "transport_error"
)

// Metrics - набор метрик клиента.
type Metrics struct {
	// Количество удаленных вызовов по операции и исходу.
	RemoteRequests *prometheus.CounterVec
	// Длительность удаленных вызовов.
	RemoteLatency *prometheus.HistogramVec
	// Отклоненные из-за уже выполняющегося запроса операции.
	RejectedInFlight prometheus.Counter
	// Количество заметок в последнем полученном списке.
	ListedNotes prometheus.Gauge
}

// New создает метрики и регистрирует их в reg. nil reg - метрики без регистрации.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RemoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notedesk",
				Name:      "remote_requests_total",
				Help:      "Number of requests sent to the note-storage service",
			},
			[]string{"operation", "outcome"},
		),
		RemoteLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notedesk",
				Name:      "remote_request_duration_seconds",
				Help:      "Latency of requests sent to the note-storage service",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RejectedInFlight: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notedesk",
				Name:      "rejected_in_flight_total",
				Help:      "Operations rejected because another request was in flight",
			},
		),
		ListedNotes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "notedesk",
				Name:      "listed_notes",
				Help:      "Number of notes in the last fetched list",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.RemoteRequests, m.RemoteLatency, m.RejectedInFlight, m.ListedNotes)
	}
	return m
}

// ObserveRemote записывает исход и длительность вызова.
func (m *Metrics) ObserveRemote(operation, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.RemoteRequests.WithLabelValues(operation, outcome).Inc()
	m.RemoteLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveRejected увеличивает счетчик отклоненных операций.
func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.RejectedInFlight.Inc()
}

// ObserveList запоминает размер списка.
func (m *Metrics) ObserveList(count int) {
	if m == nil {
		return
	}
	m.ListedNotes.Set(float64(count))
}
