package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ranking pipeline and realtime metrics.
var (
	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end duration of search and autotag pipelines",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"pipeline", "status"},
	)

	PipelineCorpusSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_corpus_size",
			Help:      "Number of entries ranked per search",
			Buckets:   []float64{0, 1, 10, 50, 100, 250, 500, 1000},
		},
	)

	PipelineResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_results",
			Help:      "Number of results returned per pipeline call",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"pipeline"},
	)

	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Currently connected WebSocket clients",
		},
	)
)

var registerPipelineOnce sync.Once

// RegisterPipelineMetrics registers ranking and realtime metrics. Idempotent.
func RegisterPipelineMetrics() {
	registerPipelineOnce.Do(func() {
		prometheus.MustRegister(PipelineDuration, PipelineCorpusSize, PipelineResults, WebSocketClients)
	})
}

// ObservePipeline records the duration of one pipeline call under ok or error.
func ObservePipeline(pipeline string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	PipelineDuration.WithLabelValues(pipeline, status).Observe(time.Since(start).Seconds())
}
