package service

import (
	"time"

	"golang-news-analytics/pkg/common"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs            *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	trendsWritten   *prometheus.CounterVec
	storyOutcomes   *prometheus.CounterVec
	textGenerations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: common.MetricsNamespace,
			Name:      "runs_total",
			Help:      "Analytics runs by job type and final status.",
		}, []string{"job_type", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: common.MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of analytics runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"job_type"}),
		trendsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: common.MetricsNamespace,
			Name:      "trends_written_total",
			Help:      "Trend rows written by timeframe and kind.",
		}, []string{"timeframe", "kind"}),
		storyOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: common.MetricsNamespace,
			Name:      "story_groups_total",
			Help:      "Significant story groups by resolution outcome.",
		}, []string{"outcome"}),
		textGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: common.MetricsNamespace,
			Name:      "text_generations_total",
			Help:      "Text generation requests by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.runs, m.runDuration, m.trendsWritten, m.storyOutcomes, m.textGenerations)
	return m
}

func (m *Metrics) observeRun(jobType, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(jobType, status).Inc()
	m.runDuration.WithLabelValues(jobType).Observe(d.Seconds())
}

func (m *Metrics) addTrends(timeframe, kind string, n int) {
	if m == nil {
		return
	}
	m.trendsWritten.WithLabelValues(timeframe, kind).Add(float64(n))
}

func (m *Metrics) storyOutcome(outcome string) {
	if m == nil {
		return
	}
	m.storyOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) textGeneration(result string) {
	if m == nil {
		return
	}
	m.textGenerations.WithLabelValues(result).Inc()
}
