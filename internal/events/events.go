// Package events is the fault and event reporting seam. Components report
// noteworthy conditions here instead of logging directly, so the monitor
// can route them uniformly and tests can assert on them.
package events

import (
	"context"
	"log/slog"
)

// Severity ranks an event's operational impact.
type Severity uint8

const (
	SevInfo Severity = iota
	SevMinor
	SevMajor
	SevCritical
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevMinor:
		return "minor"
	case SevMajor:
		return "major"
	case SevCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Code identifies the condition class. Codes are stable across releases so
// maintenance tooling can filter on them.
type Code uint16

const (
	CodeInitFailed        Code = 0x0101
	CodeHardwareFault     Code = 0x0102
	CodeRangeViolation    Code = 0x0201
	CodeStaleData         Code = 0x0202
	CodeSourceDeactivated Code = 0x0203
	CodeChecksumMismatch  Code = 0x0301
	CodeAlertCapacity     Code = 0x0401
	CodeCycleOverrun      Code = 0x0501
)

// Reporter receives events. Implementations must be non-blocking and must
// never fail; reporting is fire and forget.
type Reporter interface {
	Report(module string, sev Severity, code Code, detail string)
}

// Log reports events through a structured logger.
type Log struct {
	L *slog.Logger
}

func (l Log) Report(module string, sev Severity, code Code, detail string) {
	lvl := slog.LevelInfo
	switch sev {
	case SevMajor:
		lvl = slog.LevelWarn
	case SevCritical:
		lvl = slog.LevelError
	}
	l.L.Log(context.Background(), lvl, "event",
		"module", module,
		"severity", sev.String(),
		"code", int(code),
		"detail", detail,
	)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Report(string, Severity, Code, string) {}
