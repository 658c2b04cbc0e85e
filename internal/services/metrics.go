package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records engine activity. NopMetrics is used when metrics are off.
type Metrics interface {
	RecordSubmission(protocol Protocol, outcome string)
	RecordDegradedValidation()
	RecordDecision(status string, outcome string)
	RecordStandingsLatency(duration time.Duration)
	RecordReport(outcome string)
}

type PrometheusMetrics struct {
	submissions        *prometheus.CounterVec
	degradedValidation prometheus.Counter
	decisions          *prometheus.CounterVec
	standingsLatency   prometheus.Histogram
	reports            *prometheus.CounterVec
}

// NewPrometheusMetrics registers the engine's collectors with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tender_score_submissions_total",
				Help: "Score submissions received, by protocol and outcome.",
			},
			[]string{"protocol", "outcome"},
		),
		degradedValidation: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tender_score_degraded_validations_total",
				Help: "Submissions validated with generic bounds because the template could not be resolved.",
			},
		),
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tender_chairman_decisions_total",
				Help: "Chairman decisions filed, by status and outcome.",
			},
			[]string{"status", "outcome"},
		),
		standingsLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tender_standings_duration_seconds",
				Help:    "Time spent computing final standings for a tender.",
				Buckets: prometheus.DefBuckets,
			},
		),
		reports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tender_committee_reports_total",
				Help: "Committee report narratives generated, by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

func (pm *PrometheusMetrics) RecordSubmission(protocol Protocol, outcome string) {
	pm.submissions.WithLabelValues(string(protocol), outcome).Inc()
}

func (pm *PrometheusMetrics) RecordDegradedValidation() {
	pm.degradedValidation.Inc()
}

func (pm *PrometheusMetrics) RecordDecision(status string, outcome string) {
	pm.decisions.WithLabelValues(status, outcome).Inc()
}

func (pm *PrometheusMetrics) RecordStandingsLatency(duration time.Duration) {
	pm.standingsLatency.Observe(duration.Seconds())
}

func (pm *PrometheusMetrics) RecordReport(outcome string) {
	pm.reports.WithLabelValues(outcome).Inc()
}

type NopMetrics struct{}

func (NopMetrics) RecordSubmission(Protocol, string) {}
func (NopMetrics) RecordDegradedValidation() {}
func (NopMetrics) RecordDecision(string, string) {}
func (NopMetrics) RecordStandingsLatency(time.Duration) {}
func (NopMetrics) RecordReport(string) {}
