// Package probe supplies raw telemetry readings to the engine through the
// Source interface.
//
// Implemented sources, selected by config `source.type`:
//
//	synthetic  — seeded PRNG stand-in for real telemetry (the default);
//	             feedback-aware via SetBias (consciousness depth pulls the
//	             CPU/GPU baselines down on the next cycle)
//	fixed      — constant Reading, used as a deterministic test double
//	host       — real CPU/memory utilization via gopsutil; remaining
//	             fields are filled synthetically
//	prometheus — scrapes a Prometheus exposition endpoint and maps
//	             configured metric families onto Reading fields
//
// The engine never assumes which source it holds: any Source error is
// recovered by serving the last cached snapshot and retrying next tick.
package probe
