package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sentrywatch/vms/internal/baseline"
	"github.com/sentrywatch/vms/internal/bus"
	"github.com/sentrywatch/vms/internal/decision"
	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/frame"
	"github.com/sentrywatch/vms/internal/metrics"
	"github.com/sentrywatch/vms/internal/reasoning"
	"github.com/sentrywatch/vms/internal/summary"
	"github.com/sentrywatch/vms/internal/vision"
)

// degradedAfterFailures is the consecutive-failure count that crosses
// into a remote_degraded system alert.
const degradedAfterFailures = 5

// Config bundles the fixed parameters a Worker needs for its lifetime.
type Config struct {
	CameraID        string
	Cadence         time.Duration
	RetryBudget     frame.RetryBudget
	Thresholds      decision.Thresholds
	HistoryWindow   int
	StabilityFrames int
	SummaryInterval time.Duration
}

// Worker is one CameraWorker: the per-camera ingest loop.
type Worker struct {
	cfg Config

	source     frame.Source
	store      *frame.Store
	registry   *directive.Registry
	vclient    vision.Client
	rclient    reasoning.Client
	dispatcher *dispatch.Dispatcher

	tracker *baseline.Tracker
	summary *summary.Aggregator
	state   stateBox
	cancel  context.CancelFunc
	done    chan struct{}

	publisher *bus.Publisher
	metrics   *metrics.Collector

	consecutiveVisionFailures int
	degradedAlertSent         bool
}

// New constructs a Worker in state STOPPED. rclient may be nil, meaning
// the reasoning layer is not configured for this process.
func New(cfg Config, src frame.Source, store *frame.Store, registry *directive.Registry, vclient vision.Client, rclient reasoning.Client, disp *dispatch.Dispatcher) *Worker {
	w := &Worker{
		cfg:        cfg,
		source:     src,
		store:      store,
		registry:   registry,
		vclient:    vclient,
		rclient:    rclient,
		dispatcher: disp,
	}
	w.state.store(StateStopped)
	return w
}

// WithBus attaches the push-channel publisher this worker reports its
// live-feed frames, analysis observations, and system events to. Both nil
// by default: a Worker built in a test never needs NATS wired up.
func (w *Worker) WithBus(p *bus.Publisher) *Worker {
	w.publisher = p
	return w
}

// WithMetrics attaches the Prometheus collector this worker reports
// camera state and vision/reasoning call outcomes to.
func (w *Worker) WithMetrics(m *metrics.Collector) *Worker {
	w.metrics = m
	return w
}

func (w *Worker) State() State { return w.state.load() }

// allStateLabels lists every State.String() value, for
// metrics.Collector.SetCameraState's "clear stale labels" pass.
var allStateLabels = []string{
	StateStopped.String(), StateStarting.String(), StateRunning.String(),
	StateStopping.String(), StateFailed.String(),
}

func (w *Worker) recordState(s State) {
	if w.metrics != nil {
		w.metrics.SetCameraState(w.cfg.CameraID, s.String(), allStateLabels)
	}
}

// Start transitions STOPPED -> STARTING and launches the ingest loop. A
// call on an already-running worker is a no-op (per idempotence
// requirements on camera start/stop).
func (w *Worker) Start(ctx context.Context) error {
	if !w.state.cas(StateStopped, StateStarting) {
		return nil
	}

	if err := w.source.Open(ctx); err != nil {
		w.state.store(StateStopped)
		w.recordState(StateStopped)
		return fmt.Errorf("worker %s: open source: %w", w.cfg.CameraID, err)
	}

	w.tracker = baseline.NewTracker(w.cfg.HistoryWindow)
	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.summary = summary.NewAggregator(runCtx, w.cfg.CameraID, w.cfg.SummaryInterval, w.dispatcher)
	w.done = make(chan struct{})

	go w.run(runCtx)
	return nil
}

// Stop transitions RUNNING/STARTING -> STOPPING and cancels the loop. It
// does not block for the loop to finish; callers that need that guarantee
// should wait on Done().
func (w *Worker) Stop() {
	for {
		cur := w.state.load()
		if cur != StateRunning && cur != StateStarting {
			return
		}
		if w.state.cas(cur, StateStopping) {
			break
		}
	}
	if w.cancel != nil {
		w.cancel()
	}
}

// Done returns a channel closed once the ingest loop has fully exited and
// released FrameSource/baseline/summary state.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) run(ctx context.Context) {
	defer w.teardown()

	first, err := frame.NextFrameWithRetry(ctx, w.source, w.cfg.RetryBudget)
	if err != nil {
		w.fail(err)
		return
	}
	w.state.store(StateRunning)
	w.recordState(StateRunning)
	w.publishSystem(dispatch.AlertKindSystem, decision.SeverityInfo, "Camera started", "camera_started", w.cfg.CameraID)
	w.process(ctx, first)

	ticker := time.NewTicker(w.cfg.Cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f, err := frame.NextFrameWithRetry(ctx, w.source, w.cfg.RetryBudget)
			if err != nil {
				w.fail(err)
				return
			}
			w.process(ctx, f)
		}
	}
}

func (w *Worker) fail(err error) {
	if w.state.load() == StateStopping {
		return
	}
	w.state.store(StateFailed)
	w.recordState(StateFailed)
	log.Printf("[WORKER:%s] frame source exhausted retries: %v", w.cfg.CameraID, err)
	w.publishSystem(dispatch.AlertKindSystem, decision.SeverityWarning, "Camera failed", "camera_failed", w.cfg.CameraID)
}

func (w *Worker) teardown() {
	if w.summary != nil {
		w.summary.Stop()
	}
	if err := w.source.Close(); err != nil {
		log.Printf("[WORKER:%s] close source: %v", w.cfg.CameraID, err)
	}
	if w.state.load() == StateStopping {
		w.state.store(StateStopped)
		w.recordState(StateStopped)
	}
	close(w.done)
}

// process runs the full per-frame pipeline: store, reconcile stale
// baseline state, then evaluate every active directive (or once,
// undirected) against this frame.
func (w *Worker) process(ctx context.Context, f frame.Frame) {
	w.store.Save(&f)

	directives := w.registry.ListForCamera(w.cfg.CameraID)
	w.reconcileTracker(directives)

	var observed *vision.Observation
	if len(directives) == 0 {
		observed = w.evaluate(ctx, nil, f)
	} else {
		for i := range directives {
			if o := w.evaluate(ctx, &directives[i], f); o != nil {
				observed = o
			}
		}
	}
	w.publishLiveFeed(f, observed)
}

// publishLiveFeed emits one live-feed frame per tick on the bus, as
// required regardless of how many directives were evaluated against it.
func (w *Worker) publishLiveFeed(f frame.Frame, obs *vision.Observation) {
	if w.publisher == nil {
		return
	}
	summaryText := "no observation"
	if obs != nil {
		summaryText = obs.SceneDescription
	}
	payload := bus.LiveFeedFrame{
		CameraID:           w.cfg.CameraID,
		Timestamp:          time.Now(),
		FrameBase64:        f.Base64,
		ObservationSummary: summaryText,
	}
	if err := w.publisher.Publish(bus.LiveFeedSubject(w.cfg.CameraID), payload); err != nil {
		log.Printf("[WORKER:%s] live-feed publish failed: %v", w.cfg.CameraID, err)
	}
}

// reconcileTracker clears baseline/history for any directive this camera
// is no longer scoped to, publishing a SYSTEM INFO alert per clear.
func (w *Worker) reconcileTracker(active []directive.Directive) {
	live := make(map[string]struct{}, len(active))
	for _, d := range active {
		live[d.ID] = struct{}{}
	}
	for _, id := range w.tracker.TrackedDirectiveIDs() {
		if _, ok := live[id]; ok {
			continue
		}
		w.tracker.Forget(id)
		w.publishSystem(dispatch.AlertKindSystem, decision.SeverityInfo,
			"Baseline cleared", "baseline_cleared:"+id, w.cfg.CameraID)
	}
}

func (w *Worker) evaluate(ctx context.Context, d *directive.Directive, f frame.Frame) *vision.Observation {
	var bl *baseline.State
	needsBaseline := d != nil && d.Kind.RequiresBaseline()
	if needsBaseline {
		bl = w.tracker.BaselineFor(d.ID)
	}

	var baselineDescription string
	baselineEstablished := bl != nil && bl.Established
	if baselineEstablished {
		baselineDescription = bl.StateDescription
	}

	visionStart := time.Now()
	obs, err := vision.AnalyzeFrame(ctx, w.vclient, f.JPEG, d, baselineDescription, baselineEstablished)
	if err != nil {
		w.onVisionFailure(err)
		w.recordVisionCall("error", time.Since(visionStart))
		return nil
	}
	w.onVisionSuccess()
	w.recordVisionCall("ok", time.Since(visionStart))
	w.publishAnalysis(obs)

	if needsBaseline {
		state, justEstablished := w.tracker.Update(d.ID, obs.SceneDescription, obs.PersonPresent, w.cfg.StabilityFrames)
		bl = state
		if justEstablished {
			if w.metrics != nil {
				w.metrics.IncBaselineEstablished()
			}
			w.publishSystem(dispatch.AlertKindSystem, decision.SeverityInfo,
				"Baseline established", "baseline_established:"+d.ID, w.cfg.CameraID)
		}
	}

	var history []reasoning.HistoryEntry
	var rdecision *reasoning.Decision
	if d != nil {
		h := w.tracker.HistoryFor(d.ID)
		h.Append(baseline.Entry{
			SceneDescription: obs.SceneDescription,
			Activity:         obs.Activity,
			Significance:     obs.Significance,
			At:               time.Now(),
		})
		if w.rclient != nil {
			for _, e := range h.Entries() {
				history = append(history, reasoning.HistoryEntry{
					SceneDescription: e.SceneDescription,
					Activity:         e.Activity,
					Significance:     e.Significance,
					At:               e.At,
				})
			}
			reasoningStart := time.Now()
			rd, err := w.rclient.AnalyzeProgression(ctx, *d, baselineEstablished, baselineDescription, obs, history)
			if err != nil {
				log.Printf("[WORKER:%s] reasoning fallback: %v", w.cfg.CameraID, err)
				w.recordReasoningCall("error", time.Since(reasoningStart))
			} else {
				rdecision = rd
				w.recordReasoningCall("ok", time.Since(reasoningStart))
			}
		}
	}

	dec := decision.Decide(d, obs, bl, rdecision, w.cfg.Thresholds)
	w.dispatchDecision(dec, obs, f)
	return obs
}

// publishAnalysis emits one AnalysisEvent per observation, for UI
// narration (§6's "analysis" push channel).
func (w *Worker) publishAnalysis(obs *vision.Observation) {
	if w.publisher == nil {
		return
	}
	payload := bus.AnalysisEvent{
		CameraID:         w.cfg.CameraID,
		Timestamp:        time.Now(),
		SceneDescription: obs.SceneDescription,
		Activity:         obs.Activity,
		Significance:     obs.Significance,
	}
	if err := w.publisher.Publish(bus.AnalysisSubject(w.cfg.CameraID), payload); err != nil {
		log.Printf("[WORKER:%s] analysis publish failed: %v", w.cfg.CameraID, err)
	}
}

func (w *Worker) recordVisionCall(outcome string, d time.Duration) {
	if w.metrics != nil {
		w.metrics.ObserveVisionCall(w.cfg.CameraID, outcome, d.Seconds())
	}
}

func (w *Worker) recordReasoningCall(outcome string, d time.Duration) {
	if w.metrics != nil {
		w.metrics.ObserveReasoningCall(w.cfg.CameraID, outcome, d.Seconds())
	}
}

func (w *Worker) dispatchDecision(dec decision.Decision, obs *vision.Observation, f frame.Frame) {
	switch dec.Kind {
	case decision.KindImmediate:
		alert := w.dispatcher.Publish(&dispatch.Alert{
			CameraID:        w.cfg.CameraID,
			Severity:        dec.Severity,
			Kind:            dispatch.AlertKindImmediate,
			Title:           immediateTitle(dec),
			Message:         obs.SceneDescription,
			Confidence:      dec.FinalConfidence,
			Timestamp:       time.Now(),
			DetectedObjects: labelsOf(obs),
			FrameURL:        f.URL,
			FrameBase64:     f.Base64,
			Reasons:         dec.Reasons,
			Source:          dec.Source,
		})
		w.recordAlert(alert)
	case decision.KindSummaryCandidate:
		w.summary.Collect(obs, f)
		if w.metrics != nil {
			w.metrics.SetSummaryBucketSize(w.cfg.CameraID, w.summary.BucketSize())
		}
	}
}

func (w *Worker) recordAlert(a *dispatch.Alert) {
	if w.metrics != nil {
		w.metrics.IncAlertDispatched(a.CameraID, string(a.Kind), string(a.Severity))
	}
	if w.publisher != nil {
		if err := w.publisher.Publish(bus.SubjectAlerts, a); err != nil {
			log.Printf("[WORKER:%s] alerts publish failed: %v", w.cfg.CameraID, err)
		}
	}
}

func (w *Worker) onVisionFailure(err error) {
	w.consecutiveVisionFailures++
	if w.consecutiveVisionFailures >= degradedAfterFailures+1 && !w.degradedAlertSent {
		w.degradedAlertSent = true
		w.publishSystem(dispatch.AlertKindSystem, decision.SeverityWarning,
			"Vision service degraded", "remote_degraded", w.cfg.CameraID)
	}
	log.Printf("[WORKER:%s] vision call failed (%d consecutive): %v", w.cfg.CameraID, w.consecutiveVisionFailures, err)
}

func (w *Worker) onVisionSuccess() {
	w.consecutiveVisionFailures = 0
	w.degradedAlertSent = false
}

func (w *Worker) publishSystem(kind dispatch.AlertKind, sev decision.Severity, title, reason, cameraID string) {
	alert := w.dispatcher.Publish(&dispatch.Alert{
		CameraID:  cameraID,
		Severity:  sev,
		Kind:      kind,
		Title:     title,
		Message:   reason,
		Timestamp: time.Now(),
		Reasons:   []string{reason},
		Source:    decision.SourceAggregator,
	})
	w.recordAlert(alert)
	if w.publisher != nil {
		evt := bus.SystemEvent{Timestamp: alert.Timestamp, Kind: reason, Message: title}
		if err := w.publisher.Publish(bus.SubjectSystem, evt); err != nil {
			log.Printf("[WORKER:%s] system event publish failed: %v", w.cfg.CameraID, err)
		}
	}
}

func immediateTitle(dec decision.Decision) string {
	if dec.OverrideReason != "" {
		return "Alert: " + dec.OverrideReason
	}
	if len(dec.Reasons) > 0 {
		return "Alert: " + dec.Reasons[0]
	}
	return "Alert"
}

func labelsOf(obs *vision.Observation) []string {
	if len(obs.Detections) == 0 {
		return nil
	}
	labels := make([]string, 0, len(obs.Detections))
	for _, d := range obs.Detections {
		labels = append(labels, d.Label)
	}
	return labels
}
