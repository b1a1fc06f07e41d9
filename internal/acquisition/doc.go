// Package acquisition owns the per-engine telemetry state. A single
// Manager is the only writer: its RunCycle reads every monitored
// parameter through the bus driver (primary source first, backup on
// failure), applies validation, derives engine health and stamps the
// snapshot checksum. Readers get verified copies through the accessors.
//
// The Manager also tracks source health. A source that fails five reads
// in a row is deactivated and skipped until the next Init; one success in
// between resets the count. All state lives in fixed-size arenas sized by
// telemetry.MaxEngines and telemetry.MaxSources, so the cycle path does
// not allocate.
package acquisition
