// Package ws implements the WebSocket hub for neuropulsed.
//
// Hub manages a set of connected clients and broadcasts the current
// telemetry snapshot to all of them on a configurable interval (default
// 5s in production). Broadcast reads are throttled by the engine, so a
// fast hub interval does not force extra recomputation.
//
// New(engine, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker — blocks until ctx is
// cancelled, then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the
// current snapshot immediately on connect, then streams updates on each
// tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "snapshot",
//	  "data":  { /* same schema as GET /api/v1/metrics */ }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the
// reverse proxy level. The endpoint is mounted at /ws/stream.
package ws
