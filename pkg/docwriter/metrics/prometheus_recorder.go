package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry          *prom.Registry
	blocks            *prom.CounterVec
	rejections        *prom.CounterVec
	serializeDuration *prom.HistogramVec
	serializeResults  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.blocks = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "docwriter",
		Name:      "blocks_appended_total",
		Help:      "Blocks appended to documents by kind",
	}, []string{"kind"})
	pr.rejections = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "docwriter",
		Name:      "builder_rejections_total",
		Help:      "Builder calls rejected by validation, by reason",
	}, []string{"reason"})
	pr.serializeDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "docwriter",
		Name:      "serialize_duration_seconds",
		Help:      "Duration of document serialization",
		Buckets:   prom.DefBuckets,
	}, []string{"format"})
	pr.serializeResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "docwriter",
		Name:      "serialize_results_total",
		Help:      "Serialization outcomes by format",
	}, []string{"format", "result"})
	reg.MustRegister(pr.blocks, pr.rejections, pr.serializeDuration, pr.serializeResults)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (pr *PrometheusRecorder) Registry() *prom.Registry {
	return pr.registry
}

func (pr *PrometheusRecorder) IncBlock(kind string) {
	pr.blocks.WithLabelValues(kind).Inc()
}

func (pr *PrometheusRecorder) IncRejected(reason string) {
	pr.rejections.WithLabelValues(reason).Inc()
}

func (pr *PrometheusRecorder) ObserveSerialize(format string, d time.Duration, err error) {
	pr.serializeDuration.WithLabelValues(format).Observe(d.Seconds())
	pr.serializeResults.WithLabelValues(format, ResultOf(err)).Inc()
}

// WriteTextfile writes the current metric values in the text exposition
// format, suitable for the node-exporter textfile collector.
func (pr *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, pr.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
