// Package config loads the monitor configuration from config.yaml.
//
// Sections:
//   - monitor: cycle rate, engine count, downlink and status cadence
//   - buses: receiver channels feeding the acquisition manager
//   - limits: optional YAML range table overriding the built-ins
//   - alerts: debounce/clear tuning and optional custom rule table
//   - server: HTTP listen address and API authentication
//   - recorder: local maintenance database path and queue depth
//   - groundlink: Kafka brokers and topics for the ground station downlink
//   - log: log level
//
// Load(path) applies defaults before unmarshalling, then validates. The
// zero config runs a two-engine bench setup on the standard four-channel
// fit with the downlink disabled.
package config
