// Package engine implements the throttled rolling-history telemetry
// engine.
//
// Engine orchestrates the probe (raw readings), the compute calculator
// (derived scores), the event ledger (interaction/pattern bonuses) and
// the bounded history series. GetMetrics serves a cached snapshot while
// the throttle interval has not elapsed and recomputes otherwise;
// ForceUpdate bypasses the throttle; Reset restores the documented
// initial state (empty histories, feedback depth 0.44, stale).
//
// The feedback state produced by each cycle (consciousness depth and
// awareness) is owned here and handed into the next cycle's computation,
// and — via Depth() — into feedback-aware probes. The clock is an
// injectable `now func() time.Time` so throttle behavior is testable
// without sleeping.
package engine
