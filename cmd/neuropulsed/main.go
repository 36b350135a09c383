package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neuropulse/neuropulse/internal/alerts"
	"github.com/neuropulse/neuropulse/internal/api"
	"github.com/neuropulse/neuropulse/internal/compute"
	"github.com/neuropulse/neuropulse/internal/config"
	"github.com/neuropulse/neuropulse/internal/engine"
	"github.com/neuropulse/neuropulse/internal/probe"
	"github.com/neuropulse/neuropulse/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("neuropulsed starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"source", cfg.Source.Type,
		"update_interval", cfg.Engine.UpdateInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := probe.New(cfg.Source)
	if err != nil {
		slog.Error("failed to build reading source", "err", err)
		os.Exit(1)
	}

	calc, err := buildCalculator(cfg.Tiers)
	if err != nil {
		slog.Error("invalid tier configuration", "err", err)
		os.Exit(1)
	}

	eng, err := engine.New(engine.Config{
		UpdateInterval:      cfg.Engine.UpdateInterval,
		SampleTimeout:       cfg.Engine.SampleTimeout,
		HistoryCapacity:     cfg.Engine.HistoryCapacity,
		InteractionCapacity: cfg.Engine.InteractionCapacity,
		PatternCapacity:     cfg.Engine.PatternCapacity,
	}, src, calc)
	if err != nil {
		slog.Error("failed to build engine", "err", err)
		os.Exit(1)
	}

	// Close the feedback loop: the synthetic source biases its next
	// reading by the engine's current consciousness depth.
	if syn, ok := src.(*probe.Synthetic); ok {
		syn.SetBias(eng.Depth)
	}

	// Alerts engine — evaluated against every fresh snapshot.
	alertEngine := alerts.New(cfg.Alerts)
	go func() {
		ticker := time.NewTicker(cfg.Engine.UpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				alertEngine.Evaluate(eng.GetMetrics())
			}
		}
	}()

	// Watch config file for hot-reload. Alert rules and webhook targets
	// take effect immediately; engine and source settings require a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			alertEngine.ApplyConfig(updated.Alerts)
			slog.Info("config hot-reloaded",
				"alert_rules", len(updated.Alerts.Rules),
				"note", "engine and source settings apply on restart")
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub — broadcasts snapshots to connected clients.
	hub := ws.New(eng, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// Combined HTTP server: REST API + WebSocket hub.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(eng, alertEngine))
	httpMux.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("neuropulsed shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// buildCalculator converts configured tier overrides into a Calculator.
// Empty override lists keep the package defaults.
func buildCalculator(cfg config.TiersConfig) (*compute.Calculator, error) {
	emotion, err := tableFrom(cfg.Emotion, "tiers.emotion")
	if err != nil {
		return nil, err
	}
	consciousness, err := tableFrom(cfg.Consciousness, "tiers.consciousness")
	if err != nil {
		return nil, err
	}
	meta, err := tableFrom(cfg.MetaCognition, "tiers.meta_cognition")
	if err != nil {
		return nil, err
	}
	return compute.NewCalculator(emotion, consciousness, meta), nil
}

func tableFrom(tiers []config.TierConfig, name string) (compute.Table, error) {
	if len(tiers) == 0 {
		return nil, nil
	}
	converted := make([]compute.Tier, len(tiers))
	for i, t := range tiers {
		converted[i] = compute.Tier{Lower: t.Lower, Label: t.Label}
	}
	table, err := compute.NewTable(converted)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return table, nil
}
