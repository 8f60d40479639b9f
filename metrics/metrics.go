// Package metrics provides Prometheus metrics for visibility processing runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"boxwatch/types"
)

// Stage names used as label values
const (
	StageClassify = "classify"
	StageSmooth   = "smooth"
	StageDebounce = "debounce"
	StageSessions = "sessions"
)

// Metrics contains all Prometheus metrics related to processing runs.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	FramesClassified prometheus.Counter
	StageDuration    *prometheus.HistogramVec
	SessionsTotal    *prometheus.CounterVec
	Workers          prometheus.Gauge
}

// New creates the metrics and registers them with registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boxwatch_runs_total",
				Help: "Total number of processing runs partitioned by outcome.",
			},
			[]string{"status"},
		),
		FramesClassified: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "boxwatch_frames_classified_total",
				Help: "Total number of mask frames decoded and classified.",
			},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boxwatch_stage_duration_seconds",
				Help:    "Time spent in each processing stage.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
			},
			[]string{"stage"},
		),
		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boxwatch_sessions_total",
				Help: "Total number of extracted sessions partitioned by status.",
			},
			[]string{"status"},
		),
		Workers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "boxwatch_workers",
				Help: "Size of the classification worker pool of the latest run.",
			},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return m, nil
}

// RecordRun counts a finished run
func (m *Metrics) RecordRun(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.RunsTotal.WithLabelValues("error").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("success").Inc()
}

// RecordFrames adds classified frames
func (m *Metrics) RecordFrames(n int) {
	if m == nil {
		return
	}
	m.FramesClassified.Add(float64(n))
}

// RecordStage observes the duration of one stage
func (m *Metrics) RecordStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordSessions counts sessions by status
func (m *Metrics) RecordSessions(summary map[int]types.BoxSessions) {
	if m == nil {
		return
	}
	for _, box := range summary {
		for _, s := range box.Sessions {
			m.SessionsTotal.WithLabelValues(s.Status.String()).Inc()
		}
	}
}

// SetWorkers records the pool size
func (m *Metrics) SetWorkers(n int) {
	if m == nil {
		return
	}
	m.Workers.Set(float64(n))
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.RunsTotal.Describe(ch)
	ch <- m.FramesClassified.Desc()
	m.StageDuration.Describe(ch)
	m.SessionsTotal.Describe(ch)
	ch <- m.Workers.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.RunsTotal.Collect(ch)
	ch <- m.FramesClassified
	m.StageDuration.Collect(ch)
	m.SessionsTotal.Collect(ch)
	ch <- m.Workers
}
