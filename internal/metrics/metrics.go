// Package metrics exposes Prometheus instrumentation for the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's instrument handles on a private registry so
// tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	ActivationDuration prometheus.Histogram
	SceneActivations   prometheus.Counter
	SceneFailures      prometheus.Counter
	LightApplyFailures prometheus.Counter
	AudioUploads       prometheus.Counter
	UploadFailures     prometheus.Counter
}

// New creates a metrics set with the standard Go runtime collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Metrics{
		registry: registry,
		ActivationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "lorelight_scene_activation_duration_seconds",
			Help: "Wall-clock duration of scene activation from entry to invariant commit.",
			// The activation budget is ~100ms; buckets bracket it.
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SceneActivations: factory.NewCounter(prometheus.CounterOpts{
			Name: "lorelight_scene_activations_total",
			Help: "Completed scene activations.",
		}),
		SceneFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "lorelight_scene_activation_failures_total",
			Help: "Scene activations that failed before the invariant commit.",
		}),
		LightApplyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "lorelight_light_apply_failures_total",
			Help: "Hue light config applications that reported an error.",
		}),
		AudioUploads: factory.NewCounter(prometheus.CounterOpts{
			Name: "lorelight_audio_uploads_total",
			Help: "Audio files uploaded to object storage.",
		}),
		UploadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "lorelight_audio_upload_failures_total",
			Help: "Audio uploads that failed after retries.",
		}),
	}
}

// Handler returns the scrape endpoint handler for this metrics set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
