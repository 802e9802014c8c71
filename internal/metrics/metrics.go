// Package metrics exposes the Prometheus collectors of the admin backend.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks HTTP traffic, form submissions, lifecycle transitions and
// reconciliation runs. A nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	FormSubmissions     *prometheus.CounterVec
	OpenForms           prometheus.Gauge
	Transitions         *prometheus.CounterVec
	ReconcileDuration   prometheus.Histogram
	ReconcileCorrection *prometheus.CounterVec
}

// New registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nfc_admin_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nfc_admin_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
		FormSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nfc_admin_form_submissions_total",
			Help: "Form submissions by form and outcome",
		}, []string{"form", "outcome"}),
		OpenForms: f.NewGauge(prometheus.GaugeOpts{
			Name: "nfc_admin_open_forms",
			Help: "Form sessions currently open",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nfc_admin_lifecycle_transitions_total",
			Help: "Lifecycle actions applied by entity kind and action",
		}, []string{"kind", "action"}),
		ReconcileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nfc_admin_reconcile_duration_seconds",
			Help:    "Duration of a reconciliation pass",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ReconcileCorrection: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nfc_admin_reconcile_corrections_total",
			Help: "Records rewritten by the reconciliation worker",
		}, []string{"kind"}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

func (m *Metrics) FormSubmitted(form, outcome string) {
	if m == nil {
		return
	}
	m.FormSubmissions.WithLabelValues(form, outcome).Inc()
}

func (m *Metrics) FormOpened() {
	if m == nil {
		return
	}
	m.OpenForms.Inc()
}

func (m *Metrics) FormClosed() {
	if m == nil {
		return
	}
	m.OpenForms.Dec()
}

func (m *Metrics) Transitioned(kind, action string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(kind, action).Inc()
}

// ObserveReconcile records a pass and the corrections per kind.
func (m *Metrics) ObserveReconcile(start time.Time, corrections map[string]int) {
	if m == nil {
		return
	}
	m.ReconcileDuration.Observe(time.Since(start).Seconds())
	for kind, n := range corrections {
		m.ReconcileCorrection.WithLabelValues(kind).Add(float64(n))
	}
}
