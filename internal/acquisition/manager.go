package acquisition

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/enginewatch/enginewatch/internal/bus"
	"github.com/enginewatch/enginewatch/internal/events"
	"github.com/enginewatch/enginewatch/internal/telemetry"
	"github.com/enginewatch/enginewatch/internal/validate"
)

type sourceState struct {
	present     bool
	name        string
	primary     bool
	active      bool
	consecutive int
	samples     uint64
	errors      uint64
	lastUpdate  time.Time
}

type cycleStats struct {
	cycles    uint64
	lastCycle time.Time
	overruns  uint64
}

// Manager owns all acquisition state. Construct with New, then arm with
// Init; RunCycle refuses to run before a successful Init.
type Manager struct {
	driver  bus.Driver
	checker *validate.Checker
	events  events.Reporter

	// now is replaceable in tests.
	now func() time.Time

	mu          sync.RWMutex
	initialized bool
	cfg         Config
	phase       telemetry.FlightPhase
	snaps       [telemetry.MaxEngines]telemetry.Snapshot
	sources     [telemetry.MaxSources]sourceState
	stats       cycleStats
}

func New(driver bus.Driver, checker *validate.Checker, rep events.Reporter) *Manager {
	return &Manager{
		driver:  driver,
		checker: checker,
		events:  rep,
		now:     time.Now,
	}
}

// Init validates the configuration, initializes every configured source
// in order (first failure aborts and leaves the manager uninitialized)
// and resets all snapshots, source state and statistics. It may be called
// again for a full reset; that is also the only path that reactivates a
// deactivated source.
func (m *Manager) Init(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("acquisition: nil config: %w", telemetry.ErrInvalidParameter)
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.initialized = false
	m.snaps = [telemetry.MaxEngines]telemetry.Snapshot{}
	m.sources = [telemetry.MaxSources]sourceState{}
	m.stats = cycleStats{}

	for _, sc := range cfg.Sources {
		if err := m.driver.Init(sc.ID, sc.Wire); err != nil {
			m.events.Report("acquisition", events.SevCritical, events.CodeInitFailed,
				fmt.Sprintf("source %d (%s): %v", sc.ID, sc.Name, err))
			return fmt.Errorf("acquisition: init source %d (%s): %v: %w",
				sc.ID, sc.Name, err, telemetry.ErrHardware)
		}
		st := &m.sources[sc.ID]
		st.present = true
		st.name = sc.Name
		st.primary = sc.Primary
		st.active = true
	}

	for e := 0; e < cfg.Engines; e++ {
		snap := &m.snaps[e]
		snap.Engine = telemetry.EngineID(e)
		snap.Phase = m.phase
		for p := range snap.Parameters {
			snap.Parameters[p].Status = telemetry.StatusNoComputedData
		}
		snap.Stamp()
	}

	m.cfg = *cfg
	m.cfg.Sources = append([]SourceConfig(nil), cfg.Sources...)
	m.initialized = true

	slog.Info("acquisition: initialized",
		"engines", cfg.Engines,
		"sample_rate_hz", cfg.SampleRateHz,
		"sources", len(cfg.Sources))
	return nil
}

// Initialized reports whether Init has completed successfully.
func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// RunCycle executes one acquisition pass over every configured engine:
// read, scale, validate, derive health, stamp. Read failures degrade data
// quality but never fail the cycle.
func (m *Manager) RunCycle() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return fmt.Errorf("acquisition: run cycle: %w", telemetry.ErrNotInitialized)
	}

	now := m.now()
	m.stats.cycles++
	m.stats.lastCycle = now

	for e := 0; e < m.cfg.Engines; e++ {
		snap := &m.snaps[e]

		for id := telemetry.ParamID(0); id.Valid(); id++ {
			def := &paramDefs[id]
			addr := bus.Address{Label: def.label, SDI: uint8(e)}

			w, src, ok := m.readWithFallback(def, addr, now)
			if !ok {
				// Keep the previous value; staleness will downgrade it.
				continue
			}

			p := &snap.Parameters[id]
			p.Raw = w.Data
			p.Source = src
			switch w.SSM {
			case bus.SSMNormal:
				p.Value = float64(w.Data)*def.scale + def.offset
				p.Status = telemetry.StatusValid
				p.SampledAt = now
			case bus.SSMNoComputedData:
				p.Status = telemetry.StatusNoComputedData
			case bus.SSMFunctionalTest:
				p.Value = float64(w.Data)*def.scale + def.offset
				p.Status = telemetry.StatusTest
				p.SampledAt = now
			case bus.SSMFailureWarning:
				p.Status = telemetry.StatusFailed
			}
		}

		for id := telemetry.ParamID(0); id.Valid(); id++ {
			p := &snap.Parameters[id]
			_ = m.checker.Range(snap.Engine, id, p)
			_ = m.checker.Staleness(snap.Engine, id, p, now)
		}

		snap.Health = m.checker.Health(snap)
		snap.SampleTime = now
		snap.Stamp()
	}
	return nil
}

// readWithFallback reads one parameter, primary source first. A
// deactivated primary is skipped outright; the backup is attempted even
// when deactivated because it is the only remaining path. Every attempted
// read moves that source's statistics.
func (m *Manager) readWithFallback(def *paramDef, addr bus.Address, now time.Time) (bus.Word, telemetry.SourceID, bool) {
	if st := &m.sources[def.primary]; st.present && st.active {
		if w, err := m.driver.Read(def.primary, addr); err == nil {
			m.recordRead(def.primary, true, now)
			return w, def.primary, true
		}
		m.recordRead(def.primary, false, now)
	}
	if w, err := m.driver.Read(def.backup, addr); err == nil {
		m.recordRead(def.backup, true, now)
		return w, def.backup, true
	}
	m.recordRead(def.backup, false, now)
	return bus.Word{}, 0, false
}

func (m *Manager) recordRead(id telemetry.SourceID, success bool, now time.Time) {
	st := &m.sources[id]
	if !st.present {
		return
	}
	st.samples++
	if success {
		st.consecutive = 0
		st.lastUpdate = now
		return
	}
	st.errors++
	st.consecutive++
	if st.consecutive == SourceFailLimit && st.active {
		st.active = false
		m.events.Report("acquisition", events.SevMajor, events.CodeSourceDeactivated,
			fmt.Sprintf("source %d (%s) deactivated after %d consecutive failures",
				id, st.name, SourceFailLimit))
		slog.Warn("acquisition: source deactivated", "source", int(id), "name", st.name)
	}
}

// EngineSnapshot returns a verified copy of one engine's snapshot.
func (m *Manager) EngineSnapshot(id telemetry.EngineID) (telemetry.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !id.Valid() {
		return telemetry.Snapshot{}, fmt.Errorf("acquisition: engine id %d: %w",
			id, telemetry.ErrOutOfRange)
	}
	if !m.initialized {
		return telemetry.Snapshot{}, fmt.Errorf("acquisition: snapshot: %w",
			telemetry.ErrNotInitialized)
	}
	if int(id) >= m.cfg.Engines {
		return telemetry.Snapshot{}, fmt.Errorf("acquisition: engine %d not configured: %w",
			id.Number(), telemetry.ErrOutOfRange)
	}

	snap := m.snaps[id]
	if err := snap.Verify(); err != nil {
		m.events.Report("acquisition", events.SevMajor, events.CodeChecksumMismatch,
			fmt.Sprintf("engine %d snapshot", id.Number()))
		return telemetry.Snapshot{}, err
	}
	return snap, nil
}

// Parameter returns a verified copy of one parameter.
func (m *Manager) Parameter(id telemetry.EngineID, param telemetry.ParamID) (telemetry.Parameter, error) {
	if !param.Valid() {
		return telemetry.Parameter{}, fmt.Errorf("acquisition: parameter id %d: %w",
			param, telemetry.ErrOutOfRange)
	}
	snap, err := m.EngineSnapshot(id)
	if err != nil {
		return telemetry.Parameter{}, err
	}
	return snap.Parameters[param], nil
}

// SetFlightPhase updates the flight phase carried by every snapshot.
// Snapshots are restamped so readers keep verifying.
func (m *Manager) SetFlightPhase(p telemetry.FlightPhase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = p
	for e := 0; e < m.cfg.Engines; e++ {
		m.snaps[e].Phase = p
		m.snaps[e].Stamp()
	}
}

// FlightPhase returns the current flight phase.
func (m *Manager) FlightPhase() telemetry.FlightPhase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}
