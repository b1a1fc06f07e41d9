// Package annunciate implements the WebSocket annunciator hub.
//
// Hub manages a set of connected clients (cockpit display repeaters, bench
// consoles) and pushes alert onsets and clears to all of them the moment
// the alert engine forwards them. A periodic status frame carries the
// master flags, the highest active level and per-engine health so clients
// can recover from missed frames.
//
// New(mgr, eng, interval) creates a Hub.
// Hub.Run(ctx) starts the status ticker and blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// status immediately on connect, then streams pushes and ticks.
// Hub.Annunciate satisfies the alert engine's sink interface.
//
// Frame formats sent to clients:
//
//	{ "event": "alert",  "data": { /* one alert, schema of /api/v1/alerts */ } }
//	{ "event": "clear",  "data": { /* same alert with active=false */ } }
//	{ "event": "status", "data": { /* masters, highest, per-engine health */ } }
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/alerts by cmd/enginewatch.
package annunciate
