package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort            = 8080
	DefaultBroadcastInterval   = 5 * time.Second
	DefaultUpdateInterval      = 1000 * time.Millisecond
	DefaultSampleTimeout       = 5 * time.Second
	DefaultHistoryCapacity     = 100
	DefaultInteractionCapacity = 1000
	DefaultPatternCapacity     = 500
)

// Config is the top-level configuration for neuropulsed.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`
	Source SourceConfig `yaml:"source"`
	Tiers  TiersConfig  `yaml:"tiers"`
	Alerts AlertsConfig `yaml:"alerts"`
}

// ServerConfig holds the HTTP serving settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval controls how often the WebSocket hub pushes the
	// current snapshot to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// EngineConfig holds the telemetry engine settings.
type EngineConfig struct {
	// UpdateInterval is the minimum wall-clock time between two real
	// recomputations. Reads inside the interval return the cached
	// snapshot unchanged.
	UpdateInterval time.Duration `yaml:"update_interval"`

	// SampleTimeout bounds a single reading-source sample. Sources that
	// exceed it are treated as failed for that cycle.
	SampleTimeout time.Duration `yaml:"sample_timeout"`

	// HistoryCapacity is the per-series metric history bound.
	HistoryCapacity int `yaml:"history_capacity"`

	// InteractionCapacity bounds the interaction event ledger.
	InteractionCapacity int `yaml:"interaction_capacity"`

	// PatternCapacity bounds the learned-pattern event ledger.
	PatternCapacity int `yaml:"pattern_capacity"`
}

// SourceConfig selects and configures the reading source.
type SourceConfig struct {
	// Type is one of: synthetic | fixed | host | prometheus.
	Type string `yaml:"type"`

	// Seed seeds the synthetic generator so runs are reproducible.
	Seed int64 `yaml:"seed"`

	// Endpoint is the exposition URL for the prometheus source.
	Endpoint string `yaml:"endpoint"`

	// Timeout is the HTTP timeout for the prometheus source.
	Timeout time.Duration `yaml:"timeout"`

	// Metrics maps reading fields (e.g. "cpu_usage") to metric family
	// names exposed at Endpoint. Only used by the prometheus source.
	Metrics map[string]string `yaml:"metrics"`
}

// TierConfig is one (lower bound, label) pair in a categorical score table.
type TierConfig struct {
	Lower float64 `yaml:"lower"`
	Label string  `yaml:"label"`
}

// TiersConfig overrides the built-in categorical tier tables. An empty
// list keeps the default table for that score.
type TiersConfig struct {
	Emotion       []TierConfig `yaml:"emotion"`
	Consciousness []TierConfig `yaml:"consciousness"`
	MetaCognition []TierConfig `yaml:"meta_cognition"`
}

// AlertsConfig holds all alerting rules and webhook targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines a threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "awareness < 0.3" or
	// "emotional_state == overloaded".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
		},
		Engine: EngineConfig{
			UpdateInterval:      DefaultUpdateInterval,
			SampleTimeout:       DefaultSampleTimeout,
			HistoryCapacity:     DefaultHistoryCapacity,
			InteractionCapacity: DefaultInteractionCapacity,
			PatternCapacity:     DefaultPatternCapacity,
		},
		Source: SourceConfig{
			Type: "synthetic",
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in 1..65535, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	if cfg.Engine.UpdateInterval <= 0 {
		return fmt.Errorf("engine.update_interval must be positive")
	}
	if cfg.Engine.SampleTimeout <= 0 {
		return fmt.Errorf("engine.sample_timeout must be positive")
	}
	if cfg.Engine.HistoryCapacity <= 0 {
		return fmt.Errorf("engine.history_capacity must be positive")
	}
	if cfg.Engine.InteractionCapacity <= 0 {
		return fmt.Errorf("engine.interaction_capacity must be positive")
	}
	if cfg.Engine.PatternCapacity <= 0 {
		return fmt.Errorf("engine.pattern_capacity must be positive")
	}

	switch cfg.Source.Type {
	case "synthetic", "fixed", "host", "prometheus", "":
	default:
		return fmt.Errorf("source.type: unknown type %q", cfg.Source.Type)
	}
	if cfg.Source.Type == "prometheus" && cfg.Source.Endpoint == "" {
		return fmt.Errorf("source.endpoint is required for the prometheus source")
	}

	for i, rule := range cfg.Alerts.Rules {
		if rule.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] %q: condition is required", i, rule.Name)
		}
		switch rule.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("alerts.rules[%d] %q: unknown severity %q", i, rule.Name, rule.Severity)
		}
	}
	for i, wh := range cfg.Alerts.Webhooks {
		switch wh.Type {
		case "slack", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
	}
	return nil
}
