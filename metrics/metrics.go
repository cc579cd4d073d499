// Package metrics - Prometheus collectors for output parsing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yoloparse"

// Recorder collects parse statistics into a private Prometheus registry.
//
// It satisfies yolov7.Recorder and is safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	calls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	rows     *prometheus.CounterVec
	rejected *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	objects  *prometheus.CounterVec
	perCall  *prometheus.HistogramVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Successful parse calls by output format.",
		}, []string{"format"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed parse calls by reason.",
		}, []string{"reason"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Candidate rows scanned by output format.",
		}, []string{"format"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_rejected_total",
			Help:      "Rows rejected by the objectness floor, class range or class threshold.",
		}, []string{"format"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxes_dropped_total",
			Help:      "Boxes dropped as degenerate after clamping.",
		}, []string{"format"}),
		objects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_total",
			Help:      "Decoded objects returned by output format.",
		}, []string{"format"}),
		perCall: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "objects_per_call",
			Help:      "Decoded objects per successful call.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 300},
		}, []string{"format"}),
	}

	r.registry.MustRegister(r.calls, r.failures, r.rows, r.rejected, r.dropped, r.objects, r.perCall)
	return r
}

// ObserveParse records one successful call.
func (r *Recorder) ObserveParse(format string, rows, rejected, dropped, objects int) {
	r.calls.WithLabelValues(format).Inc()
	r.rows.WithLabelValues(format).Add(float64(rows))
	r.rejected.WithLabelValues(format).Add(float64(rejected))
	r.dropped.WithLabelValues(format).Add(float64(dropped))
	r.objects.WithLabelValues(format).Add(float64(objects))
	r.perCall.WithLabelValues(format).Observe(float64(objects))
}

// ObserveFailure records one failed call.
func (r *Recorder) ObserveFailure(reason string) {
	r.failures.WithLabelValues(reason).Inc()
}

// Registry returns the registry the collectors live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler exposing the collectors.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the collectors in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, r.registry)
}
