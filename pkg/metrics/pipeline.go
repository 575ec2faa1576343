package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records timings and outcomes for the quote pipeline.
type PipelineMetrics struct {
	stageDuration *prometheus.HistogramVec
	quotesPriced  prometheus.Counter
	quotesFailed  *prometheus.CounterVec
	meshTriangles prometheus.Histogram
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_stage_duration_seconds",
		Help:    "Duration of quote pipeline stages in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	quotesPriced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotes_priced_total",
		Help: "Quotes priced successfully.",
	})
	quotesFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_failed_total",
		Help: "Quote requests rejected, by error code.",
	}, []string{"code"})
	meshTriangles := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mesh_triangle_count",
		Help:    "Triangle counts of analyzed meshes.",
		Buckets: prometheus.ExponentialBuckets(12, 4, 10),
	})
	reg.MustRegister(stageDuration, quotesPriced, quotesFailed, meshTriangles)
	return &PipelineMetrics{
		stageDuration: stageDuration,
		quotesPriced:  quotesPriced,
		quotesFailed:  quotesFailed,
		meshTriangles: meshTriangles,
	}
}

// ObserveStage records the duration for the named pipeline stage.
func (p *PipelineMetrics) ObserveStage(stage string, duration time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(normalizeLabel(stage)).Observe(duration.Seconds())
}

// IncPriced increments the priced-quote counter.
func (p *PipelineMetrics) IncPriced() {
	if p == nil || p.quotesPriced == nil {
		return
	}
	p.quotesPriced.Inc()
}

// IncFailed increments the failure counter for the given error code.
func (p *PipelineMetrics) IncFailed(code string) {
	if p == nil || p.quotesFailed == nil {
		return
	}
	p.quotesFailed.WithLabelValues(normalizeLabel(code)).Inc()
}

// ObserveTriangles records the triangle count of one analyzed mesh.
func (p *PipelineMetrics) ObserveTriangles(count int) {
	if p == nil || p.meshTriangles == nil {
		return
	}
	p.meshTriangles.Observe(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
