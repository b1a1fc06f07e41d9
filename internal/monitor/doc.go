// Package monitor drives the cyclic acquisition loop.
//
// Each Tick runs one bus cycle, feeds every engine's verified snapshot to
// the alert engine, and every Nth tick queues a digest for the ground
// station. Run paces ticks at the configured sample rate and counts an
// overrun whenever a tick outlasts its period.
package monitor
