package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/neuropulse/neuropulse/internal/probe"
)

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeClock is an injectable clock advanced manually by tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// flakySource fails while failing is true, otherwise returns reading.
type flakySource struct {
	reading probe.Reading
	failing bool
	samples int
}

func (s *flakySource) Sample(context.Context) (probe.Reading, error) {
	s.samples++
	if s.failing {
		return probe.Reading{}, errors.New("probe offline")
	}
	return s.reading, nil
}

func testConfig() Config {
	return Config{
		UpdateInterval:      time.Second,
		HistoryCapacity:     100,
		InteractionCapacity: 100,
		PatternCapacity:     100,
	}
}

func testReading() probe.Reading {
	return probe.Reading{
		CPUUsage:       0.4,
		MemoryUsage:    0.3,
		GPUUtilization: 0.5,
		ActiveNeurons:  50_000,
		ResponseTimeMs: 120,
		ErrorRate:      0.01,
		Throughput:     600,
	}
}

// newTestEngine builds an engine on a fixed source and a fake clock.
func newTestEngine(t *testing.T, cfg Config, src probe.Source) (*Engine, *fakeClock) {
	t.Helper()
	e, err := New(cfg, src, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clock := &fakeClock{t: baseTime}
	e.now = clock.Now
	return e, clock
}

// --- construction -----------------------------------------------------------

func TestNew_RejectsInvalidConfig(t *testing.T) {
	src := &probe.Fixed{}
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero interval", Config{HistoryCapacity: 1, InteractionCapacity: 1, PatternCapacity: 1}},
		{"negative interval", Config{UpdateInterval: -time.Second, HistoryCapacity: 1, InteractionCapacity: 1, PatternCapacity: 1}},
		{"zero history capacity", Config{UpdateInterval: time.Second, InteractionCapacity: 1, PatternCapacity: 1}},
		{"zero interaction capacity", Config{UpdateInterval: time.Second, HistoryCapacity: 1, PatternCapacity: 1}},
		{"zero pattern capacity", Config{UpdateInterval: time.Second, HistoryCapacity: 1, InteractionCapacity: 1}},
		{"negative sample timeout", Config{UpdateInterval: time.Second, SampleTimeout: -1, HistoryCapacity: 1, InteractionCapacity: 1, PatternCapacity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, src, nil); err == nil {
				t.Error("expected construction error, got nil")
			}
		})
	}

	if _, err := New(testConfig(), nil, nil); err == nil {
		t.Error("nil source: expected construction error")
	}
}

// --- throttle behaviour -----------------------------------------------------

func TestGetMetrics_FirstReadComputes(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &probe.Fixed{Reading: testReading()})

	snap := e.GetMetrics()
	if !snap.Timestamp.Equal(baseTime) {
		t.Errorf("Timestamp = %v, want %v", snap.Timestamp, baseTime)
	}
	if snap.Reading != testReading() {
		t.Errorf("Reading = %+v, want the probe reading", snap.Reading)
	}
}

func TestGetMetrics_ThrottleIdempotence(t *testing.T) {
	src := &flakySource{reading: testReading()}
	e, clock := newTestEngine(t, testConfig(), src)

	first := e.GetMetrics()
	clock.Advance(999 * time.Millisecond)
	second := e.GetMetrics()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("snapshots within the interval differ:\n%+v\n%+v", first, second)
	}
	if src.samples != 1 {
		t.Errorf("source sampled %d times, want 1 (read inside interval has no side effects)", src.samples)
	}
}

func TestGetMetrics_FreshnessAfterInterval(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), &probe.Fixed{Reading: testReading()})

	first := e.GetMetrics()
	clock.Advance(time.Second)
	second := e.GetMetrics()

	if !second.Timestamp.After(first.Timestamp) {
		t.Errorf("second Timestamp %v not after first %v", second.Timestamp, first.Timestamp)
	}
}

func TestForceUpdate_BypassesThrottle(t *testing.T) {
	src := &flakySource{reading: testReading()}
	e, clock := newTestEngine(t, testConfig(), src)

	e.GetMetrics()
	clock.Advance(time.Millisecond)
	e.ForceUpdate()

	if src.samples != 2 {
		t.Errorf("source sampled %d times, want 2", src.samples)
	}
}

// --- history ----------------------------------------------------------------

func TestHistory_BoundedEviction(t *testing.T) {
	cfg := testConfig()
	cfg.HistoryCapacity = 3
	e, clock := newTestEngine(t, cfg, &probe.Fixed{Reading: testReading()})

	// Three forced updates land three samples in call order.
	var stamps []time.Time
	for i := 0; i < 3; i++ {
		stamps = append(stamps, clock.Now())
		e.ForceUpdate()
		clock.Advance(time.Millisecond)
	}

	samples, err := e.History(SeriesPerformance)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("len = %d, want 3", len(samples))
	}
	for i := range samples {
		if !samples[i].Timestamp.Equal(stamps[i]) {
			t.Errorf("samples[%d].Timestamp = %v, want %v", i, samples[i].Timestamp, stamps[i])
		}
	}

	// A fourth update evicts the oldest; length stays at capacity.
	e.ForceUpdate()
	samples, _ = e.History(SeriesPerformance)
	if len(samples) != 3 {
		t.Fatalf("len after 4th update = %d, want 3", len(samples))
	}
	if samples[0].Timestamp.Equal(stamps[0]) {
		t.Error("oldest sample was not evicted")
	}
	if !samples[0].Timestamp.Equal(stamps[1]) {
		t.Errorf("samples[0].Timestamp = %v, want %v", samples[0].Timestamp, stamps[1])
	}
}

func TestHistory_AllSeriesReceiveSamples(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &probe.Fixed{Reading: testReading()})
	e.ForceUpdate()

	for _, name := range e.SeriesNames() {
		samples, err := e.History(name)
		if err != nil {
			t.Fatalf("History(%s): %v", name, err)
		}
		if len(samples) != 1 {
			t.Errorf("History(%s) len = %d, want 1", name, len(samples))
		}
	}
}

func TestHistory_ReturnsDetachedCopies(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &probe.Fixed{Reading: testReading()})
	e.ForceUpdate()

	samples, err := e.History(SeriesPerformance)
	if err != nil {
		t.Fatal(err)
	}
	samples[0].Values["cpu_usage"] = 99

	again, _ := e.History(SeriesPerformance)
	if got := again[0].Values["cpu_usage"]; got != 0.4 {
		t.Errorf("stored cpu_usage = %v after caller mutation, want 0.4", got)
	}
}

func TestHistory_UnknownSeries(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &probe.Fixed{})
	if _, err := e.History("no-such-series"); err == nil {
		t.Error("expected error for unknown series")
	}
}

// --- events -----------------------------------------------------------------

func TestRecordInteraction_BiasesNextSnapshot(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &probe.Fixed{Reading: testReading()})

	e.ForceUpdate()
	base := e.GetMetrics().Scores.EmotionalIntelligence

	for i := 0; i < 10; i++ {
		id, err := e.RecordInteraction("emotional", nil)
		if err != nil {
			t.Fatalf("RecordInteraction: %v", err)
		}
		if id == "" {
			t.Fatal("RecordInteraction returned an empty event ID")
		}
	}
	e.ForceUpdate()
	boosted := e.GetMetrics().Scores.EmotionalIntelligence

	if boosted <= base {
		t.Errorf("EmotionalIntelligence after events = %.4f, want > %.4f", boosted, base)
	}
}

func TestRecordInteraction_InvalidKind(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &probe.Fixed{})
	if _, err := e.RecordInteraction("", nil); err == nil {
		t.Error("expected error for empty kind")
	}
}

// --- feedback loop ----------------------------------------------------------

func TestDepth_FeedsForwardAcrossCycles(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), &probe.Fixed{Reading: testReading()})

	if d := e.Depth(); d != 0.44 {
		t.Fatalf("initial Depth = %v, want 0.44", d)
	}

	e.ForceUpdate()
	first := e.Depth()
	clock.Advance(time.Second)
	e.ForceUpdate()
	second := e.Depth()

	// First cycle has no previous awareness; the second carries one, so
	// depth strictly grows across the first two cycles.
	if second <= first {
		t.Errorf("Depth after second cycle = %v, want > %v", second, first)
	}
}

// --- reset ------------------------------------------------------------------

func TestReset_RestoresInitialState(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), &probe.Fixed{Reading: testReading()})

	e.ForceUpdate()
	clock.Advance(time.Second)
	e.ForceUpdate()
	if _, err := e.RecordPattern("metacognition", nil); err != nil {
		t.Fatal(err)
	}

	e.Reset()

	for _, name := range e.SeriesNames() {
		samples, err := e.History(name)
		if err != nil {
			t.Fatalf("History(%s): %v", name, err)
		}
		if len(samples) != 0 {
			t.Errorf("History(%s) after Reset has %d samples, want 0", name, len(samples))
		}
	}
	if d := e.Depth(); d != 0.44 {
		t.Errorf("Depth after Reset = %v, want 0.44", d)
	}

	// The engine is stale: the next read computes immediately even though
	// the clock has not advanced past the interval.
	snap := e.GetMetrics()
	if !snap.Timestamp.Equal(clock.Now()) {
		t.Errorf("post-Reset read did not recompute: Timestamp = %v", snap.Timestamp)
	}

	// Event bonuses are gone: depth derives from the base again on the
	// first post-reset cycle.
	if got := snap.Scores.ConsciousnessDepth; got != 0.44 {
		t.Errorf("ConsciousnessDepth after Reset = %v, want 0.44", got)
	}
}

// --- source failure ---------------------------------------------------------

func TestGetMetrics_SourceFailureServesCachedSnapshot(t *testing.T) {
	src := &flakySource{reading: testReading()}
	e, clock := newTestEngine(t, testConfig(), src)

	healthy := e.GetMetrics()

	src.failing = true
	clock.Advance(2 * time.Second)
	cached := e.GetMetrics()

	if !reflect.DeepEqual(healthy, cached) {
		t.Errorf("snapshot during outage differs from cached:\n%+v\n%+v", healthy, cached)
	}

	// The engine stayed stale, so it retries as soon as the source is back.
	src.failing = false
	recovered := e.GetMetrics()
	if !recovered.Timestamp.After(healthy.Timestamp) {
		t.Error("engine did not recompute after the source recovered")
	}
}

func TestGetMetrics_FirstCycleFailureFallsBackToZeroReading(t *testing.T) {
	src := &flakySource{failing: true}
	e, _ := newTestEngine(t, testConfig(), src)

	snap := e.GetMetrics()
	if snap.Reading != (probe.Reading{}) {
		t.Errorf("Reading = %+v, want zero reading", snap.Reading)
	}
	// Scores are still fully derived and in range.
	if snap.Scores.Awareness < 0.1 || snap.Scores.Awareness > 1.0 {
		t.Errorf("Awareness = %v, want within [0.1, 1.0]", snap.Scores.Awareness)
	}
	if snap.Scores.EmotionalState == "" {
		t.Error("EmotionalState is empty")
	}
}
