// Package config loads and watches the neuropulsed configuration file.
//
// Top-level sections:
//   - server — http_port, broadcast_interval (WebSocket push cadence)
//   - engine — update_interval (recompute throttle, default 1s),
//     sample_timeout, history/interaction/pattern capacities
//     (defaults 100/1000/500)
//   - source — type (synthetic|fixed|host|prometheus), seed, endpoint,
//     timeout, metric field mappings
//   - tiers  — overrides for the categorical score threshold tables
//   - alerts — threshold rules and webhook targets (URLs resolved from
//     environment variables, never stored in the file)
//
// Load(path) applies defaults before unmarshalling, then validates: all
// intervals and capacities must be positive, enums must be known. An
// engine cannot be built from an invalid config.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and
// calls onChange with the newly parsed Config. It handles the
// rename→create pattern used by atomic-save editors by re-adding the
// watch after the event.
package config
