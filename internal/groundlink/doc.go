// Package groundlink publishes alert events and periodic engine summaries
// to the airline ground station over Kafka.
//
// Link implements alerts.Recorder, so it can be fanned into the alert
// engine alongside the local recorder. Outgoing messages pass through a
// bounded queue with drop-oldest eviction; the monitor loop never waits on
// the broker. Delivery is at-most-once: the producer retries internally,
// and events that still fail are dropped with a log line. Ground systems
// reconcile gaps from the recorder's session database after landing.
//
// Alert events go to one topic keyed by engine, snapshot summaries to
// another keyed as a single stream.
package groundlink
