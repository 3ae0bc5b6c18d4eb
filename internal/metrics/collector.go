// Package metrics exposes the pipeline's Prometheus surface: per-camera
// state gauges, dispatcher drop counters, vision/reasoning call latency
// and failure counters, and summary-bucket size. Grounded on the
// teacher's internal/metrics/collector.go (a dedicated registry built in
// one constructor, one gauge/counter per concern, labeled by camera_id
// where cardinality is bounded by the number of cameras).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns every metric this process exposes and the registry they
// are registered against.
type Collector struct {
	registry *prometheus.Registry

	cameraState          *prometheus.GaugeVec
	dispatcherDrops      *prometheus.GaugeVec
	dispatcherSubs       prometheus.Gauge
	visionCalls          *prometheus.CounterVec
	visionLatency        *prometheus.HistogramVec
	reasoningCalls       *prometheus.CounterVec
	reasoningLatency     *prometheus.HistogramVec
	summaryBucketSize    *prometheus.GaugeVec
	alertsDispatched     *prometheus.CounterVec
	baselinesEstablished prometheus.Counter
}

// New builds a Collector with every metric registered against a fresh
// registry (never the global default, so tests can build as many
// Collectors as they like without a "duplicate metrics collector
// registration attempted" panic).
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{registry: reg}

	c.cameraState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vms_camera_state",
		Help: "Current CameraWorker state (1=active) by camera_id and state label.",
	}, []string{"camera_id", "state"})
	reg.MustRegister(c.cameraState)

	c.dispatcherDrops = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vms_dispatcher_subscriber_drops_total",
		Help: "Alerts dropped for a slow subscriber under backpressure, by subscriber id.",
	}, []string{"subscriber_id"})
	reg.MustRegister(c.dispatcherDrops)

	c.dispatcherSubs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vms_dispatcher_subscribers",
		Help: "Current number of live alert subscribers.",
	})
	reg.MustRegister(c.dispatcherSubs)

	c.visionCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vms_vision_calls_total",
		Help: "VisionClient calls by camera_id and outcome.",
	}, []string{"camera_id", "outcome"})
	reg.MustRegister(c.visionCalls)

	c.visionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vms_vision_call_latency_seconds",
		Help:    "VisionClient call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"camera_id"})
	reg.MustRegister(c.visionLatency)

	c.reasoningCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vms_reasoning_calls_total",
		Help: "ReasoningClient calls by camera_id and outcome.",
	}, []string{"camera_id", "outcome"})
	reg.MustRegister(c.reasoningCalls)

	c.reasoningLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vms_reasoning_call_latency_seconds",
		Help:    "ReasoningClient call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"camera_id"})
	reg.MustRegister(c.reasoningLatency)

	c.summaryBucketSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vms_summary_bucket_size",
		Help: "Number of collected-but-unflushed observations in a camera's summary bucket.",
	}, []string{"camera_id"})
	reg.MustRegister(c.summaryBucketSize)

	c.alertsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vms_alerts_dispatched_total",
		Help: "Alerts dispatched by camera_id, kind and severity.",
	}, []string{"camera_id", "kind", "severity"})
	reg.MustRegister(c.alertsDispatched)

	c.baselinesEstablished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vms_baselines_established_total",
		Help: "Total BaselineEstablished transitions across every camera/directive.",
	})
	reg.MustRegister(c.baselinesEstablished)

	return c
}

// Handler returns the promhttp handler for this Collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// SetCameraState records cameraID's current state, clearing every other
// known state label for that camera so stale gauges don't linger.
func (c *Collector) SetCameraState(cameraID, state string, allStates []string) {
	for _, s := range allStates {
		v := 0.0
		if s == state {
			v = 1.0
		}
		c.cameraState.WithLabelValues(cameraID, s).Set(v)
	}
}

func (c *Collector) SetDispatcherDrops(subscriberID string, drops uint64) {
	c.dispatcherDrops.WithLabelValues(subscriberID).Set(float64(drops))
}

func (c *Collector) SetSubscriberCount(n int) {
	c.dispatcherSubs.Set(float64(n))
}

func (c *Collector) ObserveVisionCall(cameraID, outcome string, seconds float64) {
	c.visionCalls.WithLabelValues(cameraID, outcome).Inc()
	c.visionLatency.WithLabelValues(cameraID).Observe(seconds)
}

func (c *Collector) ObserveReasoningCall(cameraID, outcome string, seconds float64) {
	c.reasoningCalls.WithLabelValues(cameraID, outcome).Inc()
	c.reasoningLatency.WithLabelValues(cameraID).Observe(seconds)
}

func (c *Collector) SetSummaryBucketSize(cameraID string, n int) {
	c.summaryBucketSize.WithLabelValues(cameraID).Set(float64(n))
}

func (c *Collector) IncAlertDispatched(cameraID, kind, severity string) {
	c.alertsDispatched.WithLabelValues(cameraID, kind, severity).Inc()
}

func (c *Collector) IncBaselineEstablished() {
	c.baselinesEstablished.Inc()
}
