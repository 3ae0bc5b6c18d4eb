package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/sentrywatch/vms/internal/api"
	"github.com/sentrywatch/vms/internal/bus"
	"github.com/sentrywatch/vms/internal/camregistry"
	"github.com/sentrywatch/vms/internal/config"
	"github.com/sentrywatch/vms/internal/decision"
	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/frame"
	"github.com/sentrywatch/vms/internal/metrics"
	"github.com/sentrywatch/vms/internal/ratelimit"
	"github.com/sentrywatch/vms/internal/reasoning"
	"github.com/sentrywatch/vms/internal/supervisor"
	"github.com/sentrywatch/vms/internal/vision"
	"github.com/sentrywatch/vms/internal/worker"
)

const serviceName = "sentrywatch-vms"

// visionQuota is the default per-minute vision-model call budget; cameras
// share it since they share the underlying model endpoint.
var visionQuota = ratelimit.LimitConfig{Rate: 120, Window: time.Minute}

func main() {
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	limiter := ratelimit.NewLimiter(rdb)

	var visionClient vision.Client
	if cfg.VisionAPIKey != "" && cfg.VisionBaseURL != "" {
		visionClient = vision.NewHTTPClient(cfg.VisionBaseURL, cfg.VisionAPIKey, limiter, visionQuota)
	} else {
		log.Printf("VISION_API_KEY/VISION_BASE_URL not set, using scripted vision client")
		visionClient = &vision.ScriptedClient{}
	}

	var reasoningClient reasoning.Client
	if cfg.ReasoningEnabled() && cfg.ReasoningBaseURL != "" {
		reasoningClient = reasoning.NewHTTPClient(cfg.ReasoningBaseURL, cfg.ReasoningAPIKey)
	}

	nc, err := nats.Connect(cfg.NatsURL, nats.Name(serviceName))
	var publisher *bus.Publisher
	if err != nil {
		log.Printf("nats connect to %s failed: %v. Push channels disabled.", cfg.NatsURL, err)
		nc = nil
	} else {
		publisher = bus.NewPublisher(nc, 3)
		defer nc.Close()
	}

	registry := directive.NewRegistry()
	dispatcher := dispatch.NewDispatcher(cfg.AlertRingCapacity)
	collector := metrics.New()
	cameras := bootstrapCameras(cfg)

	thresholds := decision.Thresholds{
		ObjectThreshold:              cfg.ObjectThreshold,
		ActivityThreshold:            cfg.ActivityThreshold,
		UndirectedImmediateThreshold: cfg.UndirectedImmediateThreshold,
		SummaryCollectThreshold:      cfg.SummaryCollectThreshold,
	}

	newWorker := func(cameraID string) *worker.Worker {
		entry, _ := cameras.Get(cameraID)
		src := entry.NewSource()
		store := frame.NewStore(cfg.FrameStoreRoot)

		w := worker.New(worker.Config{
			CameraID:        cameraID,
			Cadence:         cfg.CameraCadence(),
			RetryBudget:     frame.DefaultRetryBudget(),
			Thresholds:      thresholds,
			HistoryWindow:   cfg.HistoryWindow,
			StabilityFrames: cfg.BaselineStabilityFrames,
			SummaryInterval: cfg.SummaryInterval(),
		}, src, store, registry, visionClient, reasoningClient, dispatcher)

		return w.WithMetrics(collector).WithBus(publisher)
	}

	sup := supervisor.New(registry, dispatcher, newWorker)

	srv := api.New(registry, sup, dispatcher, cameras, collector)
	if nc != nil {
		srv.WithNats(nc)
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), supervisor.ShutdownGrace+2*time.Second)
	defer cancel()

	sup.Shutdown()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}
	log.Println("stopped gracefully")
}

// bootstrapCameras reads CAMERA_IDS (comma-separated) and registers a
// MockSource-backed entry for each. Real camera device drivers are out of
// scope; operators wire a real frame.Source by replacing this bootstrap
// list with their own SourceFactory.
func bootstrapCameras(cfg config.Config) *camregistry.Registry {
	reg := camregistry.New()

	ids := strings.Split(os.Getenv("CAMERA_IDS"), ",")
	if len(ids) == 1 && ids[0] == "" {
		ids = []string{"cam-1"}
	}

	for _, id := range ids {
		id := strings.TrimSpace(id)
		if id == "" {
			continue
		}
		fps := cfg.CameraFPS
		reg.Register(camregistry.Entry{
			ID:   id,
			Name: fmt.Sprintf("Camera %s", id),
			NewSource: func() frame.Source {
				return frame.NewMockSource(id, fps)
			},
		})
	}
	return reg
}
