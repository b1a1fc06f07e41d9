// Package telemetry defines the core vocabulary of the monitor: engine,
// parameter and source identifiers, the parameter status ladder, engine
// health levels, and the snapshot type that every cycle produces.
//
// Snapshots carry a CRC-32 checksum over their payload. The acquisition
// cycle stamps it after each update and readers verify it before use, so a
// torn or corrupted snapshot is reported instead of silently consumed.
package telemetry
