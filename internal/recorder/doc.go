// Package recorder persists alert events to a local SQLite maintenance
// log so ground crews can review what fired during a flight.
//
// Each monitor run opens one session keyed by a fresh UUID; alert onsets
// insert a row and clears update it in place. Record() is non-blocking:
// events go through a bounded queue drained by Run(ctx), and when the
// queue is full the oldest event is evicted. Write failures are retried
// with exponential backoff; the acquisition cycle never waits on disk.
package recorder
