package alerts

import (
	"strconv"
	"strings"

	"github.com/neuropulse/neuropulse/internal/engine"
)

// evalCondition evaluates a rule condition string against a Snapshot.
//
// Supported expressions (field operator value):
//
//	awareness < 0.3
//	self_reflection < 0.2
//	consciousness_depth > 0.9
//	quantum_coherence < 0.2
//	stress_level > 1.4
//	error_rate > 0.05
//	cpu_usage > 0.9
//	memory_usage > 0.9
//	throughput < 100
//	emotional_state == overloaded
//	consciousness_level == dormant
//	meta_cognition == reactive
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is
// unknown.
func evalCondition(cond string, snap engine.Snapshot) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if label, ok := labelField(field, snap); ok {
		if op == "==" {
			return label == rhs, 0
		}
		return false, 0
	}

	v, ok := numericField(field, snap)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// labelField maps a categorical field name to its snapshot label.
func labelField(field string, snap engine.Snapshot) (string, bool) {
	switch field {
	case "emotional_state":
		return snap.Scores.EmotionalState, true
	case "consciousness_level":
		return snap.Scores.ConsciousnessLevel, true
	case "meta_cognition":
		return snap.Scores.MetaCognition, true
	default:
		return "", false
	}
}

// numericField maps a numeric field name to its value in the snapshot.
func numericField(field string, snap engine.Snapshot) (float64, bool) {
	switch field {
	case "awareness":
		return snap.Scores.Awareness, true
	case "self_reflection":
		return snap.Scores.SelfReflection, true
	case "consciousness_depth":
		return snap.Scores.ConsciousnessDepth, true
	case "quantum_coherence":
		return snap.Scores.QuantumCoherence, true
	case "stress_level":
		return snap.Scores.StressLevel, true
	case "neural_activity":
		return snap.Scores.NeuralActivity, true
	case "error_rate":
		return snap.Reading.ErrorRate, true
	case "cpu_usage":
		return snap.Reading.CPUUsage, true
	case "memory_usage":
		return snap.Reading.MemoryUsage, true
	case "throughput":
		return snap.Reading.Throughput, true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
