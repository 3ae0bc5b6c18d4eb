// Package config loads pipeline configuration from environment variables,
// optionally overlaid by a config/default.yaml file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"
)

// Config holds every recognised environment key (§6 EXTERNAL INTERFACES).
type Config struct {
	CameraFPS       float64 `yaml:"camera_fps"`
	VisionAPIKey    string  `yaml:"-"`
	ReasoningAPIKey string  `yaml:"-"`

	ObjectThreshold              float64 `yaml:"object_threshold"`
	ActivityThreshold            float64 `yaml:"activity_threshold"`
	UndirectedImmediateThreshold float64 `yaml:"undirected_immediate_threshold"`
	SummaryCollectThreshold      float64 `yaml:"summary_collect_threshold"`

	SummaryIntervalSeconds  int `yaml:"summary_interval_seconds"`
	BaselineStabilityFrames int `yaml:"baseline_stability_frames"`
	HistoryWindow           int `yaml:"history_window"`
	AlertRingCapacity       int `yaml:"alert_ring_capacity"`

	FrameStoreRoot string `yaml:"frame_store_root"`

	VisionBaseURL    string `yaml:"-"`
	ReasoningBaseURL string `yaml:"-"`
	RedisAddr        string `yaml:"redis_addr"`
	NatsURL          string `yaml:"nats_url"`
	HTTPPort         string `yaml:"http_port"`
}

// Default returns every key at its documented default.
func Default() Config {
	return Config{
		CameraFPS:                    0.033,
		ObjectThreshold:              60,
		ActivityThreshold:            40,
		UndirectedImmediateThreshold: 60,
		SummaryCollectThreshold:      50,
		SummaryIntervalSeconds:       120,
		BaselineStabilityFrames:      3,
		HistoryWindow:                8,
		AlertRingCapacity:            200,
		FrameStoreRoot:               "./event_frames",
		RedisAddr:                    "localhost:6379",
		NatsURL:                      nats.DefaultURL,
		HTTPPort:                     "8090",
	}
}

// yamlOverlay is the subset of Config a config/default.yaml file may set;
// credentials are deliberately excluded from the on-disk shape.
type yamlOverlay struct {
	Pipeline Config `yaml:"pipeline"`
}

// Load builds a Config from config/default.yaml (if present) overlaid by
// recognised environment variables, which always win. Errors reading or
// parsing the yaml file are non-fatal: the file is optional, and a
// malformed file is treated as absent.
func Load(yamlPath string) Config {
	cfg := Default()

	if yamlPath == "" {
		yamlPath = "config/default.yaml"
	}
	if data, err := os.ReadFile(yamlPath); err == nil {
		var overlay yamlOverlay
		if yaml.Unmarshal(data, &overlay) == nil {
			mergeNonZero(&cfg, overlay.Pipeline)
		}
	}

	cfg.VisionAPIKey = os.Getenv("VISION_API_KEY")
	cfg.ReasoningAPIKey = os.Getenv("REASONING_API_KEY")
	cfg.VisionBaseURL = os.Getenv("VISION_BASE_URL")
	cfg.ReasoningBaseURL = os.Getenv("REASONING_BASE_URL")

	envFloat("CAMERA_FPS", &cfg.CameraFPS)
	envFloat("OBJECT_THRESHOLD", &cfg.ObjectThreshold)
	envFloat("ACTIVITY_THRESHOLD", &cfg.ActivityThreshold)
	envFloat("UNDIRECTED_IMMEDIATE_THRESHOLD", &cfg.UndirectedImmediateThreshold)
	envFloat("SUMMARY_COLLECT_THRESHOLD", &cfg.SummaryCollectThreshold)
	envInt("SUMMARY_INTERVAL_SECONDS", &cfg.SummaryIntervalSeconds)
	envInt("BASELINE_STABILITY_FRAMES", &cfg.BaselineStabilityFrames)
	envInt("HISTORY_WINDOW", &cfg.HistoryWindow)
	envInt("ALERT_RING_CAPACITY", &cfg.AlertRingCapacity)
	envString("FRAME_STORE_ROOT", &cfg.FrameStoreRoot)
	envString("REDIS_ADDR", &cfg.RedisAddr)
	envString("NATS_URL", &cfg.NatsURL)
	envString("HTTP_PORT", &cfg.HTTPPort)

	return cfg
}

// ReasoningEnabled reports whether the reasoning layer is configured.
func (c Config) ReasoningEnabled() bool {
	return c.ReasoningAPIKey != ""
}

// CameraCadence converts CameraFPS into the worker's tick interval.
func (c Config) CameraCadence() time.Duration {
	if c.CameraFPS <= 0 {
		return time.Duration(float64(time.Second) / Default().CameraFPS)
	}
	return time.Duration(float64(time.Second) / c.CameraFPS)
}

// SummaryInterval converts SummaryIntervalSeconds into a time.Duration.
func (c Config) SummaryInterval() time.Duration {
	return time.Duration(c.SummaryIntervalSeconds) * time.Second
}

func mergeNonZero(dst *Config, src Config) {
	if src.CameraFPS != 0 {
		dst.CameraFPS = src.CameraFPS
	}
	if src.ObjectThreshold != 0 {
		dst.ObjectThreshold = src.ObjectThreshold
	}
	if src.ActivityThreshold != 0 {
		dst.ActivityThreshold = src.ActivityThreshold
	}
	if src.UndirectedImmediateThreshold != 0 {
		dst.UndirectedImmediateThreshold = src.UndirectedImmediateThreshold
	}
	if src.SummaryCollectThreshold != 0 {
		dst.SummaryCollectThreshold = src.SummaryCollectThreshold
	}
	if src.SummaryIntervalSeconds != 0 {
		dst.SummaryIntervalSeconds = src.SummaryIntervalSeconds
	}
	if src.BaselineStabilityFrames != 0 {
		dst.BaselineStabilityFrames = src.BaselineStabilityFrames
	}
	if src.HistoryWindow != 0 {
		dst.HistoryWindow = src.HistoryWindow
	}
	if src.AlertRingCapacity != 0 {
		dst.AlertRingCapacity = src.AlertRingCapacity
	}
	if src.FrameStoreRoot != "" {
		dst.FrameStoreRoot = src.FrameStoreRoot
	}
	if src.RedisAddr != "" {
		dst.RedisAddr = src.RedisAddr
	}
	if src.NatsURL != "" {
		dst.NatsURL = src.NatsURL
	}
	if src.HTTPPort != "" {
		dst.HTTPPort = src.HTTPPort
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
