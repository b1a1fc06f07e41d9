package acquisition

import (
	"time"

	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// SourceStats is a point-in-time view of one source's health counters.
type SourceStats struct {
	ID          telemetry.SourceID
	Name        string
	Primary     bool
	Active      bool
	Samples     uint64
	Errors      uint64
	Consecutive int
	LastUpdate  time.Time
}

// Stats is a point-in-time view of the manager's counters.
type Stats struct {
	Initialized  bool
	Engines      int
	SampleRateHz int
	Cycles       uint64
	LastCycle    time.Time
	Overruns     uint64
	Sources      []SourceStats
}

// Stats returns a copy of the current statistics.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{
		Initialized:  m.initialized,
		Engines:      m.cfg.Engines,
		SampleRateHz: m.cfg.SampleRateHz,
		Cycles:       m.stats.cycles,
		LastCycle:    m.stats.lastCycle,
		Overruns:     m.stats.overruns,
	}
	for id := telemetry.SourceID(0); id.Valid(); id++ {
		st := &m.sources[id]
		if !st.present {
			continue
		}
		s.Sources = append(s.Sources, SourceStats{
			ID:          id,
			Name:        st.name,
			Primary:     st.primary,
			Active:      st.active,
			Samples:     st.samples,
			Errors:      st.errors,
			Consecutive: st.consecutive,
			LastUpdate:  st.lastUpdate,
		})
	}
	return s
}

// RecordOverrun counts a cycle that exceeded its period budget. Called by
// the cyclic executive.
func (m *Manager) RecordOverrun() {
	m.mu.Lock()
	m.stats.overruns++
	m.mu.Unlock()
}
