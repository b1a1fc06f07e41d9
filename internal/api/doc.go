// Package api implements the REST and metrics surface of enginewatch.
//
// All JSON endpoints live under /api/v1/ and read live state from the
// acquisition manager and the alert engine; nothing is cached. Engine ids
// in URLs are one-based, matching the crew-facing "ENG n" naming.
//
// GET /metrics serves the same counters in Prometheus text exposition
// format for scraping by ground test equipment.
package api
