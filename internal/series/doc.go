// Package series provides Bounded[T], the fixed-capacity FIFO sequence
// backing every rolling history in the telemetry engine (metric samples,
// interaction events, learned patterns).
//
// Capacity is validated once at construction; Append never fails and
// never grows the series past its capacity — the oldest element is
// evicted to make room. The single eviction policy lives here so history
// bounds are enforced uniformly instead of ad hoc at each call site.
package series
