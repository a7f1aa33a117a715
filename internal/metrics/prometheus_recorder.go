package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runs          *prom.CounterVec
	checkDuration prom.Histogram
	checkOutcomes *prom.CounterVec
	findings      *prom.GaugeVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		runs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "check_runs_total",
			Help:      "Check runs by trigger",
		}, []string{"trigger"}),
		checkDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Duration of a full check run",
			Buckets:   prom.DefBuckets,
		}),
		checkOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "check_outcomes_total",
			Help:      "Check run outcomes",
		}, []string{"outcome"}),
		findings: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "check_findings",
			Help:      "Findings of the last check run by kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(pr.runs, pr.checkDuration, pr.checkOutcomes, pr.findings)
	return pr
}

func (p *PrometheusRecorder) IncRun(trigger Trigger) {
	if p == nil {
		return
	}
	p.runs.WithLabelValues(string(trigger)).Inc()
}

func (p *PrometheusRecorder) ObserveCheckDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.checkDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCheckOutcome(outcome Outcome) {
	if p == nil {
		return
	}
	p.checkOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetFindings(kind string, n int) {
	if p == nil {
		return
	}
	p.findings.WithLabelValues(kind).Set(float64(n))
}
