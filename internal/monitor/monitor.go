package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/enginewatch/enginewatch/internal/acquisition"
	"github.com/enginewatch/enginewatch/internal/alerts"
	"github.com/enginewatch/enginewatch/internal/events"
	"github.com/enginewatch/enginewatch/internal/groundlink"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// Downlink receives snapshot digests. *groundlink.Link satisfies it.
type Downlink interface {
	PublishSnapshot(at time.Time, engines []groundlink.Summary) error
}

// Monitor owns the acquisition cycle. Tick is driven by Run's goroutine
// only and is not safe for concurrent use.
type Monitor struct {
	mgr  *acquisition.Manager
	eng  *alerts.Engine
	link Downlink // nil when no datalink is fitted
	rep  events.Reporter

	downlinkEvery int
	cycles        uint64
}

// New builds a Monitor. link may be nil; downlinkEvery <= 0 disables
// snapshot digests. Alert events reach the downlink through the alert
// engine's recorder fan-out, not through the monitor.
func New(mgr *acquisition.Manager, eng *alerts.Engine, link Downlink, rep events.Reporter, downlinkEvery int) *Monitor {
	return &Monitor{
		mgr:           mgr,
		eng:           eng,
		link:          link,
		rep:           rep,
		downlinkEvery: downlinkEvery,
	}
}

// Tick runs one full cycle: bus reads, per-engine snapshot verification,
// alert evaluation, and the periodic downlink digest. One bad engine must
// not stall the others.
func (m *Monitor) Tick() {
	if err := m.mgr.RunCycle(); err != nil {
		slog.Error("monitor: cycle failed", "err", err)
		return
	}
	m.cycles++

	wantDigest := m.link != nil && m.downlinkEvery > 0 && m.cycles%uint64(m.downlinkEvery) == 0
	var digest []groundlink.Summary

	st := m.mgr.Stats()
	for e := 0; e < st.Engines; e++ {
		id := telemetry.EngineID(e)
		snap, err := m.mgr.EngineSnapshot(id)
		if err != nil {
			// The manager already reported the fault; skip this engine
			// for the rest of the cycle.
			slog.Warn("monitor: snapshot rejected", "engine", id.Number(), "err", err)
			continue
		}
		if err := m.eng.Process(&snap); err != nil {
			slog.Error("monitor: alert processing failed", "engine", id.Number(), "err", err)
		}
		if wantDigest {
			digest = append(digest, summarize(&snap))
		}
	}

	if len(digest) > 0 {
		if err := m.link.PublishSnapshot(time.Now().UTC(), digest); err != nil {
			slog.Warn("monitor: downlink digest failed", "err", err)
		}
	}
}

// Run paces Tick at the configured sample rate until ctx is cancelled. A
// tick that outlasts its period counts as an overrun.
func (m *Monitor) Run(ctx context.Context) error {
	st := m.mgr.Stats()
	if !st.Initialized {
		return fmt.Errorf("monitor: run: %w", telemetry.ErrNotInitialized)
	}
	period := time.Second / time.Duration(st.SampleRateHz)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	slog.Info("monitor: cycle loop started",
		"period", period, "engines", st.Engines, "downlink_every", m.downlinkEvery)

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor: cycle loop stopped", "cycles", m.cycles)
			return nil

		case <-ticker.C:
			start := time.Now()
			m.Tick()
			if elapsed := time.Since(start); elapsed > period {
				m.mgr.RecordOverrun()
				m.rep.Report("monitor", events.SevMinor, events.CodeCycleOverrun,
					fmt.Sprintf("cycle took %v, budget %v", elapsed, period))
			}
		}
	}
}

func summarize(s *telemetry.Snapshot) groundlink.Summary {
	return groundlink.Summary{
		Engine:      s.Engine.Number(),
		Health:      s.Health.String(),
		Phase:       s.Phase.String(),
		N1:          s.Parameters[telemetry.ParamN1].Value,
		EGT:         s.Parameters[telemetry.ParamEGT].Value,
		FuelFlow:    s.Parameters[telemetry.ParamFuelFlow].Value,
		OilPressure: s.Parameters[telemetry.ParamOilPressure].Value,
		Version:     s.Version,
		SampledAt:   s.SampleTime,
	}
}
