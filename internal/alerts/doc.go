// Package alerts evaluates verified engine snapshots against the
// threshold rule table and manages the active-alert arena, the master
// caution/warning flags and the highest-severity tracker. New and cleared
// alerts are forwarded fire-and-forget to the annunciation and recording
// sinks; a sink failure never disturbs alert state.
//
// Alert identifiers are monotonic and never reused. Warning-level alerts
// latch: they survive the condition clearing and are removed only by an
// explicit acknowledgement. Lower levels clear themselves once the value
// has stayed beyond the hysteresis band for the configured number of
// cycles.
package alerts
