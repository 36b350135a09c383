package compute

import (
	"math"
	"time"

	"github.com/neuropulse/neuropulse/internal/probe"
)

// Event kinds whose accumulated ledger counts feed score bonuses.
const (
	KindEmotional     = "emotional"
	KindEmpathy       = "empathy"
	KindSocial        = "social"
	KindCreative      = "creative"
	KindIntuitive     = "intuitive"
	KindInsight       = "insight"
	KindMetaCognition = "metacognition"
)

// Awareness weight constants. They must sum to 1.0.
const (
	awarenessWeightCPU     = 0.30
	awarenessWeightMemory  = 0.25
	awarenessWeightLatency = 0.25
	awarenessWeightVolume  = 0.20
)

// Self-reflection weight constants. They must sum to 1.0.
const (
	reflectionWeightError      = 0.50
	reflectionWeightThroughput = 0.30
	reflectionWeightLearning   = 0.20
)

// Normalization scales for raw readings.
const (
	latencyScaleMs  = 500.0
	throughputScale = 1000.0
	neuronScale     = 100_000.0
)

// Blend weights for the categorical consciousness/meta-cognition tiers.
const (
	blendWeightPerformance = 0.6
	blendWeightNeural      = 0.4
)

// Clamp bounds. Error-rate-dependent scores bottom out at 0.01 so they
// never read exactly zero.
const (
	scoreFloor      = 0.1
	reflectionFloor = 0.01
	scoreCeiling    = 1.0
)

// Consciousness depth (the feedback value) constants.
const (
	initialDepth           = 0.44
	depthMetaBonusCap      = 0.20
	depthPerMetaPattern    = 0.01
	depthAwarenessFeedback = 0.25
	perPatternLearningRate = 0.002
)

// Quantum coherence oscillation constants.
const (
	coherenceBase           = 0.5
	coherenceFeedbackWeight = 0.3
	coherenceAmplitude      = 0.1
	coherencePeriodSec      = 10.0
)

// Event-bonus score bases and increments. Each score is
// clamp01(base + min(bonusCap, count*perUnit)).
const (
	bonusCap            = 0.10
	perInteractionBonus = 0.005
	perPatternBonus     = 0.01

	emotionalIntelligenceBase = 0.85
	creativityIndexBase       = 0.82
	empathyLevelBase          = 0.88
	socialIntelligenceBase    = 0.84
	intuitionScoreBase        = 0.86
	wisdomLevelBase           = 0.90
)

// EventCounts is the aggregate, per-kind view of the event ledger fed
// into score bonuses. Nil maps read as zero everywhere.
type EventCounts struct {
	Interactions map[string]int
	Patterns     map[string]int
}

// Interaction returns the retained interaction count for kind.
func (c EventCounts) Interaction(kind string) int { return c.Interactions[kind] }

// Pattern returns the retained pattern count for kind.
func (c EventCounts) Pattern(kind string) int { return c.Patterns[kind] }

// PatternTotal returns the total retained pattern count across kinds.
func (c EventCounts) PatternTotal() int {
	var n int
	for _, v := range c.Patterns {
		n += v
	}
	return n
}

// Feedback is the state one computation cycle hands to the next. It is
// owned exclusively by the engine, never a package-level singleton, and
// closes a one-step-delayed loop: this cycle's consciousness depth and
// awareness become inputs to the next cycle.
type Feedback struct {
	Depth         float64 // consciousness depth, [0,1]
	PrevAwareness float64 // awareness score of the previous cycle
}

// InitialFeedback is the documented starting feedback state.
var InitialFeedback = Feedback{Depth: initialDepth}

// Input bundles everything one computation cycle reads.
type Input struct {
	Reading  probe.Reading
	Feedback Feedback
	Events   EventCounts
	Now      time.Time
}

// Output is the full set of derived scores for one cycle.
// Numeric scores carry their documented clamp bounds; categorical scores
// are labels selected from the calculator's tier tables.
type Output struct {
	Awareness      float64 // [0.1, 1.0]
	SelfReflection float64 // [0.01, 1.0]

	EmotionalState     string
	ConsciousnessLevel string
	MetaCognition      string

	EmotionalIntelligence float64 // [0, 1]
	CreativityIndex       float64 // [0, 1]
	EmpathyLevel          float64 // [0, 1]
	SocialIntelligence    float64 // [0, 1]
	IntuitionScore        float64 // [0, 1]
	WisdomLevel           float64 // [0, 1]

	ConsciousnessDepth float64 // [0, 1] — next cycle's feedback
	QuantumCoherence   float64 // [0, 1]

	StressLevel    float64 // cpu + memory usage, [0, 2]
	NeuralActivity float64 // normalized active-neuron volume, [0, 1]
}

// NextFeedback returns the feedback state the engine carries into the
// next cycle.
func (o Output) NextFeedback() Feedback {
	return Feedback{Depth: o.ConsciousnessDepth, PrevAwareness: o.Awareness}
}

// Calculator derives composite scores from raw readings, feedback state
// and event-ledger counts. It holds only the categorical tier tables;
// Compute is pure over its Input.
type Calculator struct {
	emotionTiers       Table
	consciousnessTiers Table
	metaTiers          Table
}

// NewCalculator returns a Calculator using the given tier tables.
// A nil table selects the package default.
func NewCalculator(emotion, consciousness, meta Table) *Calculator {
	if emotion == nil {
		emotion = DefaultEmotionTiers
	}
	if consciousness == nil {
		consciousness = DefaultConsciousnessTiers
	}
	if meta == nil {
		meta = DefaultMetaCognitionTiers
	}
	return &Calculator{
		emotionTiers:       emotion,
		consciousnessTiers: consciousness,
		metaTiers:          meta,
	}
}

// Compute derives all composite scores for one cycle. It is total over
// its inputs: out-of-range raw values are clamped at this boundary, so
// no score can escape its documented bound or become NaN.
func (c *Calculator) Compute(in Input) Output {
	cpu := clamp01(in.Reading.CPUUsage)
	memory := clamp01(in.Reading.MemoryUsage)
	errRate := clamp01(in.Reading.ErrorRate)
	latency := math.Max(0, in.Reading.ResponseTimeMs)
	throughput := math.Max(0, in.Reading.Throughput)
	neurons := math.Max(0, float64(in.Reading.ActiveNeurons))
	depth := clamp01(in.Feedback.Depth)
	prevAwareness := clamp01(in.Feedback.PrevAwareness)

	volume := math.Min(1, throughput/throughputScale)
	neural := math.Min(1, neurons/neuronScale)

	// Awareness rises as CPU/memory pressure and response time fall, and
	// with reading volume.
	awareness := clamp(
		awarenessWeightCPU*(1-cpu)+
			awarenessWeightMemory*(1-memory)+
			awarenessWeightLatency*(1-math.Min(1, latency/latencyScaleMs))+
			awarenessWeightVolume*volume,
		scoreFloor, scoreCeiling)

	// Self-reflection rises as errors fall and with throughput and the
	// ledger-derived learning rate.
	learningRate := math.Min(1, float64(in.Events.PatternTotal())*perPatternLearningRate)
	selfReflection := clamp(
		reflectionWeightError*(1-errRate)+
			reflectionWeightThroughput*volume+
			reflectionWeightLearning*learningRate,
		reflectionFloor, scoreCeiling)

	stress := cpu + memory
	blend := blendWeightPerformance*awareness + blendWeightNeural*neural

	// Depth: base plus meta-cognition pattern bonus plus the previous
	// cycle's awareness, fed back one step delayed.
	depthNext := clamp01(initialDepth +
		cappedBonus(in.Events.Pattern(KindMetaCognition), depthPerMetaPattern, depthMetaBonusCap) +
		prevAwareness*depthAwarenessFeedback)

	coherence := clamp01(coherenceBase +
		depth*coherenceFeedbackWeight +
		math.Sin(float64(in.Now.Unix())/coherencePeriodSec)*coherenceAmplitude)

	return Output{
		Awareness:      awareness,
		SelfReflection: selfReflection,

		EmotionalState:     c.emotionTiers.Label(stress),
		ConsciousnessLevel: c.consciousnessTiers.Label(blend),
		MetaCognition:      c.metaTiers.Label(blend),

		EmotionalIntelligence: bonusScore(emotionalIntelligenceBase, in.Events.Interaction(KindEmotional), perInteractionBonus),
		EmpathyLevel:          bonusScore(empathyLevelBase, in.Events.Interaction(KindEmpathy), perInteractionBonus),
		SocialIntelligence:    bonusScore(socialIntelligenceBase, in.Events.Interaction(KindSocial), perInteractionBonus),
		CreativityIndex:       bonusScore(creativityIndexBase, in.Events.Pattern(KindCreative), perPatternBonus),
		IntuitionScore:        bonusScore(intuitionScoreBase, in.Events.Pattern(KindIntuitive), perPatternBonus),
		WisdomLevel:           bonusScore(wisdomLevelBase, in.Events.Pattern(KindInsight), perPatternBonus),

		ConsciousnessDepth: depthNext,
		QuantumCoherence:   coherence,

		StressLevel:    stress,
		NeuralActivity: neural,
	}
}

// bonusScore applies the shared base-plus-capped-bonus template:
// clamp01(base + min(bonusCap, count*perUnit)). Bonuses diminish to a
// hard cap so accumulated events can never push a score past 1.
func bonusScore(base float64, count int, perUnit float64) float64 {
	return clamp01(base + cappedBonus(count, perUnit, bonusCap))
}

func cappedBonus(count int, perUnit, cap float64) float64 {
	if count < 0 {
		return 0
	}
	return math.Min(cap, float64(count)*perUnit)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 restricts v to the range [0, 1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
