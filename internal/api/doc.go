// Package api implements the HTTP REST surface for neuropulsed.
//
// New(engine, alerts) returns an http.Handler that serves:
//
//	GET  /api/v1/health            — liveness + engine state summary
//	GET  /api/v1/metrics           — current snapshot (throttled read)
//	GET  /api/v1/history/{series}  — bounded sample history; 404 if unknown
//	GET  /api/v1/alerts            — firing + recently resolved alerts
//	POST /api/v1/interactions      — record an interaction event
//	POST /api/v1/patterns          — record a learned-pattern event
//	POST /api/v1/refresh           — recompute now, bypassing the throttle
//	POST /api/v1/reset             — restore the initial engine state
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for unsupported methods
//   - Return 400 with a descriptive error for rejected events; accepted
//     events return 202 with the ID the ledger assigned
//
// JSON types are defined in types.go. No external HTTP framework is used.
// CORS is left to the reverse proxy.
package api
