// Package compute derives the composite telemetry scores from raw
// readings, feedback state and event-ledger counts.
//
// score.go provides Calculator.Compute(Input), a pure transformation:
// every numeric score follows the template
//
//	score = clamp(weighted raw components + Σ min(cap, count*perUnit), lo, hi)
//
// with weights, scales, caps and clamp bounds as named constants.
// Categorical scores (emotional state, consciousness level,
// meta-cognition) are selected from ordered (lowerBound, label) tier
// tables in tiers.go, overridable via configuration.
//
// Feedback is the one deliberate impurity, modelled explicitly: each
// cycle's consciousness depth and awareness are returned in the Output
// and handed back as next cycle's Feedback by the engine. The calculator
// itself holds no mutable state.
//
// All derivations are total: raw inputs are clamped into their legal
// domain at the top of Compute, so no in-range or out-of-range reading
// can produce a panic, NaN, or out-of-bound score.
package compute
