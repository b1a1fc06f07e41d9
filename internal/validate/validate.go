// Package validate applies the data quality rules that run after every
// acquisition pass: plausibility ranges, staleness, and the derived
// per-engine health level. Violations downgrade the parameter status and
// are reported as events; they never abort the cycle.
package validate

import (
	"fmt"
	"time"

	"github.com/enginewatch/enginewatch/internal/events"
	"github.com/enginewatch/enginewatch/internal/limits"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// DefaultStaleAfter is the age at which valid data stops being trusted.
const DefaultStaleAfter = 100 * time.Millisecond

// Checker holds the validation collaborators. The zero value is not
// usable; construct with New.
type Checker struct {
	Limits     limits.Provider
	Events     events.Reporter
	StaleAfter time.Duration
}

func New(l limits.Provider, rep events.Reporter) *Checker {
	return &Checker{Limits: l, Events: rep, StaleAfter: DefaultStaleAfter}
}

// Range checks a parameter's engineering value against its plausibility
// range. Only Valid parameters are checked; a violation marks the
// parameter Failed and returns an advisory error.
func (c *Checker) Range(engine telemetry.EngineID, id telemetry.ParamID, p *telemetry.Parameter) error {
	if p == nil || !id.Valid() {
		return telemetry.ErrInvalidParameter
	}
	if p.Status != telemetry.StatusValid {
		return nil
	}
	r, ok := c.Limits.Range(id)
	if !ok {
		return nil
	}
	if r.Contains(p.Value) {
		return nil
	}
	p.Status = telemetry.StatusFailed
	c.Events.Report("validate", events.SevMinor, events.CodeRangeViolation,
		fmt.Sprintf("%s %s %.3f outside [%g, %g]", engine, id, p.Value, r.Min, r.Max))
	return fmt.Errorf("%s %s: %.3f outside [%g, %g]: %w",
		engine, id, p.Value, r.Min, r.Max, telemetry.ErrOutOfRange)
}

// Staleness downgrades Valid data strictly older than the window to
// Stale. Failed, NCD and Test parameters are left alone.
func (c *Checker) Staleness(engine telemetry.EngineID, id telemetry.ParamID, p *telemetry.Parameter, now time.Time) error {
	if p == nil || !id.Valid() {
		return telemetry.ErrInvalidParameter
	}
	if p.Status != telemetry.StatusValid {
		return nil
	}
	age := now.Sub(p.SampledAt)
	if age <= c.StaleAfter {
		return nil
	}
	p.Status = telemetry.StatusStale
	c.Events.Report("validate", events.SevMinor, events.CodeStaleData,
		fmt.Sprintf("%s %s sample age %s", engine, id, age))
	return fmt.Errorf("%s %s: sample age %s exceeds %s: %w",
		engine, id, age, c.StaleAfter, telemetry.ErrTimeout)
}

// Health derives the engine health level from parameter statuses. A
// failed primary parameter (N1, EGT, oil pressure) is critical on its
// own; otherwise the level tracks how many parameters are degraded.
func (c *Checker) Health(s *telemetry.Snapshot) telemetry.HealthStatus {
	var stale, failed int
	criticalFailed := false
	for id := telemetry.ParamID(0); id.Valid(); id++ {
		switch s.Parameters[id].Status {
		case telemetry.StatusStale:
			stale++
		case telemetry.StatusFailed:
			failed++
			if id == telemetry.ParamN1 || id == telemetry.ParamEGT || id == telemetry.ParamOilPressure {
				criticalFailed = true
			}
		}
	}
	switch {
	case criticalFailed:
		return telemetry.HealthCritical
	case failed > 1:
		return telemetry.HealthActionRequired
	case failed == 1:
		return telemetry.HealthCaution
	case stale > 0:
		return telemetry.HealthMonitor
	default:
		return telemetry.HealthNormal
	}
}
