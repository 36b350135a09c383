package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neuropulse/neuropulse/internal/compute"
	"github.com/neuropulse/neuropulse/internal/ledger"
	"github.com/neuropulse/neuropulse/internal/probe"
	"github.com/neuropulse/neuropulse/internal/series"
)

// Metric series names recognized by History.
const (
	SeriesPerformance   = "performance"
	SeriesNeural        = "neural"
	SeriesConsciousness = "consciousness"
)

const defaultSampleTimeout = 5 * time.Second

// Sample is one appended history point: a named set of values at a
// timestamp. Immutable once appended.
type Sample struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Snapshot is the last computed composite result. It is cached and
// returned unchanged to every reader until the next recompute, so two
// reads inside the throttle interval observe identical timestamps and
// values.
type Snapshot struct {
	Timestamp time.Time
	Reading   probe.Reading
	Scores    compute.Output
}

// Config holds the engine construction parameters. All values must be
// positive; a zero SampleTimeout selects the default.
type Config struct {
	UpdateInterval      time.Duration
	SampleTimeout       time.Duration
	HistoryCapacity     int
	InteractionCapacity int
	PatternCapacity     int
}

// Engine maintains the rolling telemetry histories and the feedback
// state, throttling recomputation to one real update per interval.
//
// The engine is a two-state machine: Stale (interval elapsed since the
// last compute — the next read recomputes) and Fresh (the cached
// snapshot is served unchanged). All exported methods are safe for
// concurrent use; event recording does not contend with snapshot reads
// beyond the ledger's own lock.
type Engine struct {
	interval      time.Duration
	sampleTimeout time.Duration

	source probe.Source
	calc   *compute.Calculator
	events *ledger.Ledger

	mu          sync.Mutex
	histories   map[string]*series.Bounded[Sample]
	feedback    compute.Feedback
	snapshot    Snapshot
	hasSnapshot bool
	lastCompute time.Time

	now func() time.Time // injectable for deterministic tests
}

// New creates an Engine reading from src. A nil calc selects the default
// tier tables. Construction fails on any non-positive interval or
// capacity — configuration errors surface here, never at runtime.
func New(cfg Config, src probe.Source, calc *compute.Calculator) (*Engine, error) {
	if src == nil {
		return nil, fmt.Errorf("engine: reading source is required")
	}
	if cfg.UpdateInterval <= 0 {
		return nil, fmt.Errorf("engine: update interval must be positive, got %v", cfg.UpdateInterval)
	}
	if cfg.SampleTimeout < 0 {
		return nil, fmt.Errorf("engine: sample timeout must not be negative, got %v", cfg.SampleTimeout)
	}
	if cfg.SampleTimeout == 0 {
		cfg.SampleTimeout = defaultSampleTimeout
	}
	if calc == nil {
		calc = compute.NewCalculator(nil, nil, nil)
	}

	events, err := ledger.New(cfg.InteractionCapacity, cfg.PatternCapacity)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	histories := make(map[string]*series.Bounded[Sample], 3)
	for _, name := range []string{SeriesPerformance, SeriesNeural, SeriesConsciousness} {
		s, err := series.New[Sample](cfg.HistoryCapacity)
		if err != nil {
			return nil, fmt.Errorf("engine: %s history: %w", name, err)
		}
		histories[name] = s
	}

	return &Engine{
		interval:      cfg.UpdateInterval,
		sampleTimeout: cfg.SampleTimeout,
		source:        src,
		calc:          calc,
		events:        events,
		histories:     histories,
		feedback:      compute.InitialFeedback,
		now:           time.Now,
	}, nil
}

// GetMetrics returns the current snapshot. Within the throttle interval
// the cached snapshot is returned unchanged with no side effects; once
// the interval has elapsed the engine samples its source, recomputes all
// scores, appends history and caches the result.
func (e *Engine) GetMetrics() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if e.hasSnapshot && now.Sub(e.lastCompute) < e.interval {
		return e.snapshot
	}
	e.recompute(now)
	return e.snapshot
}

// ForceUpdate recomputes immediately, bypassing the throttle.
func (e *Engine) ForceUpdate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recompute(e.now())
}

// Reset clears all histories and ledgers, restores the feedback state to
// its initial constant and marks the engine stale so the next read
// computes fresh data.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, h := range e.histories {
		h.Clear()
	}
	e.events.Reset()
	e.feedback = compute.InitialFeedback
	e.snapshot = Snapshot{}
	e.hasSnapshot = false
	e.lastCompute = time.Time{}

	slog.Info("engine: reset to initial state")
}

// History returns the retained samples for the named series, oldest
// first. Unknown names are an error. The returned samples are detached
// copies; mutating them cannot reach the retained history.
func (e *Engine) History(name string) ([]Sample, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.histories[name]
	if !ok {
		return nil, fmt.Errorf("engine: unknown series %q", name)
	}

	samples := h.All()
	out := make([]Sample, len(samples))
	for i, s := range samples {
		values := make(map[string]float64, len(s.Values))
		for k, v := range s.Values {
			values[k] = v
		}
		out[i] = Sample{Timestamp: s.Timestamp, Values: values}
	}
	return out, nil
}

// SeriesNames returns the recognized history series names.
func (e *Engine) SeriesNames() []string {
	return []string{SeriesPerformance, SeriesNeural, SeriesConsciousness}
}

// RecordInteraction appends an interaction event that biases future
// scores and returns the assigned event ID. Safe to call concurrently
// with reads and recomputes.
func (e *Engine) RecordInteraction(kind string, payload map[string]any) (string, error) {
	return e.events.RecordInteraction(kind, payload)
}

// RecordPattern appends a learned-pattern event and returns the assigned
// event ID.
func (e *Engine) RecordPattern(kind string, payload map[string]any) (string, error) {
	return e.events.RecordPattern(kind, payload)
}

// Depth returns the current consciousness depth. Feedback-aware sources
// use it to bias their next reading, closing the one-step-delayed loop.
func (e *Engine) Depth() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feedback.Depth
}

// recompute runs one full computation cycle. Callers must hold e.mu.
//
// Source failures are recovered locally: with a cached snapshot the
// engine keeps serving it and stays stale so the next call retries; on
// the very first cycle it computes from a zero reading instead, so
// GetMetrics never errors.
func (e *Engine) recompute(now time.Time) {
	reading, err := e.sample()
	if err != nil {
		slog.Warn("engine: reading source failed", "err", err)
		if e.hasSnapshot {
			return
		}
		reading = probe.Reading{}
	}

	out := e.calc.Compute(compute.Input{
		Reading:  reading,
		Feedback: e.feedback,
		Events:   e.events.Counts(),
		Now:      now,
	})

	e.appendHistory(now, reading, out)
	e.feedback = out.NextFeedback()
	e.snapshot = Snapshot{Timestamp: now, Reading: reading, Scores: out}
	e.hasSnapshot = true
	e.lastCompute = now

	slog.Debug("engine: recomputed snapshot",
		"awareness", out.Awareness,
		"depth", out.ConsciousnessDepth,
		"emotional_state", out.EmotionalState,
	)
}

func (e *Engine) sample() (probe.Reading, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.sampleTimeout)
	defer cancel()
	return e.source.Sample(ctx)
}

func (e *Engine) appendHistory(now time.Time, r probe.Reading, out compute.Output) {
	e.histories[SeriesPerformance].Append(Sample{
		Timestamp: now,
		Values: map[string]float64{
			"cpu_usage":        r.CPUUsage,
			"memory_usage":     r.MemoryUsage,
			"gpu_utilization":  r.GPUUtilization,
			"response_time_ms": r.ResponseTimeMs,
			"error_rate":       r.ErrorRate,
			"throughput":       r.Throughput,
		},
	})
	e.histories[SeriesNeural].Append(Sample{
		Timestamp: now,
		Values: map[string]float64{
			"active_neurons":           float64(r.ActiveNeurons),
			"cross_domain_connections": float64(r.CrossDomainConnections),
			"neural_activity":          out.NeuralActivity,
		},
	})
	e.histories[SeriesConsciousness].Append(Sample{
		Timestamp: now,
		Values: map[string]float64{
			"awareness":              out.Awareness,
			"self_reflection":        out.SelfReflection,
			"consciousness_depth":    out.ConsciousnessDepth,
			"quantum_coherence":      out.QuantumCoherence,
			"stress_level":           out.StressLevel,
			"emotional_intelligence": out.EmotionalIntelligence,
			"creativity_index":       out.CreativityIndex,
			"empathy_level":          out.EmpathyLevel,
			"social_intelligence":    out.SocialIntelligence,
			"intuition_score":        out.IntuitionScore,
			"wisdom_level":           out.WisdomLevel,
		},
	})
}
