package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors exported on /metrics.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheLookup *prometheus.CounterVec
	questions   prometheus.Histogram
	scores      prometheus.Histogram
}

// NewMetrics registers the server collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resumebot_requests_total",
				Help: "Total analysis requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resumebot_request_duration_seconds",
				Help:    "Duration of analysis requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheLookup: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resumebot_scan_cache_lookups_total",
				Help: "Résumé scan cache lookups by result",
			},
			[]string{"result"},
		),
		questions: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "resumebot_test_questions",
			Help:    "Number of questions per generated test",
			Buckets: []float64{0, 2, 4, 6, 8, 10, 15, 20},
		}),
		scores: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "resumebot_test_scores",
			Help:    "Distribution of evaluated scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
	}
}
