package compute

import (
	"math"
	"testing"
	"time"

	"github.com/neuropulse/neuropulse/internal/probe"
)

// baseTime is a fixed reference point so all test timings are deterministic.
var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newCalc() *Calculator {
	return NewCalculator(nil, nil, nil)
}

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// quietReading is an idle system: no load, no errors, no traffic.
func quietReading() probe.Reading {
	return probe.Reading{}
}

// --- Awareness --------------------------------------------------------------

func TestCompute_Awareness_IdleSystem(t *testing.T) {
	out := newCalc().Compute(Input{Reading: quietReading(), Now: baseTime})

	// cpu=0, mem=0, latency=0, volume=0:
	// 0.30*1 + 0.25*1 + 0.25*1 + 0.20*0 = 0.80
	if !almostEqual(out.Awareness, 0.80, 1e-9) {
		t.Errorf("Awareness = %.4f, want 0.80", out.Awareness)
	}
}

func TestCompute_Awareness_DirectionOfDependence(t *testing.T) {
	calc := newCalc()
	base := calc.Compute(Input{Reading: quietReading(), Now: baseTime}).Awareness

	// Higher CPU usage must not increase awareness.
	busy := calc.Compute(Input{
		Reading: probe.Reading{CPUUsage: 0.9},
		Now:     baseTime,
	}).Awareness
	if busy >= base {
		t.Errorf("awareness under CPU load = %.4f, want < %.4f", busy, base)
	}

	// Slower responses must not increase awareness.
	slow := calc.Compute(Input{
		Reading: probe.Reading{ResponseTimeMs: 400},
		Now:     baseTime,
	}).Awareness
	if slow >= base {
		t.Errorf("awareness with slow responses = %.4f, want < %.4f", slow, base)
	}

	// More reading volume must not decrease awareness.
	busy = calc.Compute(Input{
		Reading: probe.Reading{Throughput: 800},
		Now:     baseTime,
	}).Awareness
	if busy < base {
		t.Errorf("awareness with traffic = %.4f, want >= %.4f", busy, base)
	}
}

func TestCompute_Awareness_FloorUnderFullLoad(t *testing.T) {
	// Everything saturated: weighted sum is 0.20, above the 0.1 floor, so
	// push latency/usage past their scales to confirm input clamping.
	out := newCalc().Compute(Input{
		Reading: probe.Reading{
			CPUUsage:       4.0, // clamped to 1
			MemoryUsage:    2.0, // clamped to 1
			ResponseTimeMs: 1e6,
		},
		Now: baseTime,
	})
	if out.Awareness < 0.1 || out.Awareness > 1.0 {
		t.Errorf("Awareness = %.4f, want within [0.1, 1.0]", out.Awareness)
	}
}

// --- SelfReflection ---------------------------------------------------------

func TestCompute_SelfReflection_IdleSystem(t *testing.T) {
	out := newCalc().Compute(Input{Reading: quietReading(), Now: baseTime})

	// errRate=0, volume=0, learning=0: 0.50*1 = 0.50
	if !almostEqual(out.SelfReflection, 0.50, 1e-9) {
		t.Errorf("SelfReflection = %.4f, want 0.50", out.SelfReflection)
	}
}

func TestCompute_SelfReflection_ErrorsLowerIt(t *testing.T) {
	calc := newCalc()
	clean := calc.Compute(Input{Reading: quietReading(), Now: baseTime}).SelfReflection
	erroring := calc.Compute(Input{
		Reading: probe.Reading{ErrorRate: 0.5},
		Now:     baseTime,
	}).SelfReflection

	if erroring >= clean {
		t.Errorf("self-reflection with errors = %.4f, want < %.4f", erroring, clean)
	}
}

func TestCompute_SelfReflection_NeverExactlyZero(t *testing.T) {
	// Worst case: 100% errors, no traffic, no learning.
	out := newCalc().Compute(Input{
		Reading: probe.Reading{ErrorRate: 1.0},
		Now:     baseTime,
	})
	if out.SelfReflection < 0.01 {
		t.Errorf("SelfReflection = %.4f, want >= 0.01", out.SelfReflection)
	}
}

func TestCompute_SelfReflection_LearningFromPatterns(t *testing.T) {
	calc := newCalc()
	without := calc.Compute(Input{Reading: quietReading(), Now: baseTime}).SelfReflection
	with := calc.Compute(Input{
		Reading: quietReading(),
		Events:  EventCounts{Patterns: map[string]int{KindCreative: 100}},
		Now:     baseTime,
	}).SelfReflection

	if with <= without {
		t.Errorf("self-reflection with patterns = %.4f, want > %.4f", with, without)
	}
}

// --- Categorical scores -----------------------------------------------------

func TestCompute_EmotionalState_StressTiers(t *testing.T) {
	tests := []struct {
		cpu, memory float64
		want        string
	}{
		{0.0, 0.0, "calm"},
		{0.3, 0.2, "calm"},
		{0.4, 0.2, "focused"},
		{0.5, 0.4, "focused"},
		{0.5, 0.5, "strained"}, // stress exactly 1.0
		{0.9, 0.6, "overloaded"},
		{1.0, 1.0, "overloaded"},
	}
	calc := newCalc()
	for _, tt := range tests {
		out := calc.Compute(Input{
			Reading: probe.Reading{CPUUsage: tt.cpu, MemoryUsage: tt.memory},
			Now:     baseTime,
		})
		if out.EmotionalState != tt.want {
			t.Errorf("cpu=%.1f mem=%.1f: EmotionalState = %q, want %q",
				tt.cpu, tt.memory, out.EmotionalState, tt.want)
		}
	}
}

func TestCompute_ConsciousnessLevel_BlendTiers(t *testing.T) {
	calc := newCalc()

	// Idle system: awareness 0.80, neural 0 → blend 0.48 → "emergent".
	out := calc.Compute(Input{Reading: quietReading(), Now: baseTime})
	if out.ConsciousnessLevel != "emergent" {
		t.Errorf("ConsciousnessLevel = %q, want emergent", out.ConsciousnessLevel)
	}
	if out.MetaCognition != "basic" {
		t.Errorf("MetaCognition = %q, want basic", out.MetaCognition)
	}

	// Idle system with saturated neural activity:
	// blend = 0.6*0.80 + 0.4*1.0 = 0.88 → top tier.
	out = calc.Compute(Input{
		Reading: probe.Reading{ActiveNeurons: 500_000},
		Now:     baseTime,
	})
	if out.ConsciousnessLevel != "transcendent" {
		t.Errorf("ConsciousnessLevel = %q, want transcendent", out.ConsciousnessLevel)
	}
	if out.MetaCognition != "recursive" {
		t.Errorf("MetaCognition = %q, want recursive", out.MetaCognition)
	}
}

// --- Event-bonus scores -----------------------------------------------------

func TestCompute_BonusScores_BaseWithNoEvents(t *testing.T) {
	out := newCalc().Compute(Input{Reading: quietReading(), Now: baseTime})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"EmotionalIntelligence", out.EmotionalIntelligence, 0.85},
		{"CreativityIndex", out.CreativityIndex, 0.82},
		{"EmpathyLevel", out.EmpathyLevel, 0.88},
		{"SocialIntelligence", out.SocialIntelligence, 0.84},
		{"IntuitionScore", out.IntuitionScore, 0.86},
		{"WisdomLevel", out.WisdomLevel, 0.90},
	}
	for _, tt := range tests {
		if !almostEqual(tt.got, tt.want, 1e-9) {
			t.Errorf("%s with no events = %.4f, want %.4f", tt.name, tt.got, tt.want)
		}
	}
}

func TestCompute_BonusScores_MonotonicUpToCap(t *testing.T) {
	calc := newCalc()
	counts := []int{0, 1, 5, 10, 20, 100, 10_000}

	prev := -1.0
	for _, n := range counts {
		out := calc.Compute(Input{
			Reading: quietReading(),
			Events:  EventCounts{Interactions: map[string]int{KindEmotional: n}},
			Now:     baseTime,
		})
		if out.EmotionalIntelligence < prev {
			t.Errorf("EmotionalIntelligence decreased at count %d: %.4f < %.4f",
				n, out.EmotionalIntelligence, prev)
		}
		prev = out.EmotionalIntelligence
	}

	// The bonus is capped at +0.10 over the base.
	if !almostEqual(prev, 0.95, 1e-9) {
		t.Errorf("EmotionalIntelligence at saturation = %.4f, want 0.95", prev)
	}
}

// --- Feedback ---------------------------------------------------------------

func TestCompute_Depth_InitialInputsYieldBase(t *testing.T) {
	out := newCalc().Compute(Input{Reading: quietReading(), Now: baseTime})
	// No meta patterns, no previous awareness: depth stays at its base.
	if !almostEqual(out.ConsciousnessDepth, 0.44, 1e-9) {
		t.Errorf("ConsciousnessDepth = %.4f, want 0.44", out.ConsciousnessDepth)
	}
}

func TestCompute_Depth_GrowsWithMetaPatternsAndAwareness(t *testing.T) {
	out := newCalc().Compute(Input{
		Reading:  quietReading(),
		Feedback: Feedback{Depth: 0.44, PrevAwareness: 1.0},
		Events:   EventCounts{Patterns: map[string]int{KindMetaCognition: 10_000}},
		Now:      baseTime,
	})
	// 0.44 + capped 0.20 + 1.0*0.25 = 0.89
	if !almostEqual(out.ConsciousnessDepth, 0.89, 1e-9) {
		t.Errorf("ConsciousnessDepth = %.4f, want 0.89", out.ConsciousnessDepth)
	}
}

func TestOutput_NextFeedback(t *testing.T) {
	out := Output{ConsciousnessDepth: 0.7, Awareness: 0.6}
	fb := out.NextFeedback()
	if fb.Depth != 0.7 || fb.PrevAwareness != 0.6 {
		t.Errorf("NextFeedback = %+v, want {Depth:0.7 PrevAwareness:0.6}", fb)
	}
}

// --- Clamp invariant over the whole input domain ----------------------------

func TestCompute_ClampInvariant(t *testing.T) {
	readings := []probe.Reading{
		{},
		{CPUUsage: 1, MemoryUsage: 1, GPUUtilization: 1, ErrorRate: 1},
		{CPUUsage: -5, MemoryUsage: -5, ErrorRate: -1, ResponseTimeMs: -100, Throughput: -100},
		{CPUUsage: 1e9, MemoryUsage: 1e9, ErrorRate: 1e9, ResponseTimeMs: 1e9, Throughput: 1e9,
			ActiveNeurons: 1 << 40, CrossDomainConnections: 1 << 30},
	}
	feedbacks := []Feedback{
		{},
		{Depth: 1, PrevAwareness: 1},
		{Depth: -3, PrevAwareness: -3},
		{Depth: 100, PrevAwareness: 100},
	}
	events := []EventCounts{
		{},
		{Interactions: map[string]int{KindEmotional: 1 << 30}, Patterns: map[string]int{KindInsight: 1 << 30}},
		{Patterns: map[string]int{KindMetaCognition: -5}},
	}

	calc := newCalc()
	for _, r := range readings {
		for _, fb := range feedbacks {
			for _, ev := range events {
				out := calc.Compute(Input{Reading: r, Feedback: fb, Events: ev, Now: baseTime})

				assertInRange(t, "Awareness", out.Awareness, 0.1, 1.0)
				assertInRange(t, "SelfReflection", out.SelfReflection, 0.01, 1.0)
				assertInRange(t, "EmotionalIntelligence", out.EmotionalIntelligence, 0, 1)
				assertInRange(t, "CreativityIndex", out.CreativityIndex, 0, 1)
				assertInRange(t, "EmpathyLevel", out.EmpathyLevel, 0, 1)
				assertInRange(t, "SocialIntelligence", out.SocialIntelligence, 0, 1)
				assertInRange(t, "IntuitionScore", out.IntuitionScore, 0, 1)
				assertInRange(t, "WisdomLevel", out.WisdomLevel, 0, 1)
				assertInRange(t, "ConsciousnessDepth", out.ConsciousnessDepth, 0, 1)
				assertInRange(t, "QuantumCoherence", out.QuantumCoherence, 0, 1)
				assertInRange(t, "StressLevel", out.StressLevel, 0, 2)
				assertInRange(t, "NeuralActivity", out.NeuralActivity, 0, 1)

				if out.EmotionalState == "" || out.ConsciousnessLevel == "" || out.MetaCognition == "" {
					t.Fatalf("empty categorical label for reading %+v", r)
				}
			}
		}
	}
}

func assertInRange(t *testing.T, name string, v, lo, hi float64) {
	t.Helper()
	if math.IsNaN(v) {
		t.Fatalf("%s is NaN", name)
	}
	if v < lo || v > hi {
		t.Errorf("%s = %v, want within [%v, %v]", name, v, lo, hi)
	}
}

// --- Quantum coherence ------------------------------------------------------

func TestCompute_QuantumCoherence_Oscillates(t *testing.T) {
	calc := newCalc()
	in := Input{Reading: quietReading(), Feedback: Feedback{Depth: 0.5}}

	seen := map[float64]bool{}
	for i := 0; i < 60; i++ {
		in.Now = baseTime.Add(time.Duration(i) * time.Second)
		out := calc.Compute(in)
		assertInRange(t, "QuantumCoherence", out.QuantumCoherence, 0, 1)
		seen[out.QuantumCoherence] = true
	}
	// The sinusoidal term must actually move the value over a minute.
	if len(seen) < 10 {
		t.Errorf("QuantumCoherence took only %d distinct values over 60s", len(seen))
	}
}
