package alerts

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/enginewatch/enginewatch/internal/events"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// MaxActiveAlerts bounds the active-alert arena. Candidates beyond the
// bound are dropped without disturbing existing alerts.
const MaxActiveAlerts = 32

// Tunable defaults. A debounce of one raises on the first exceedance.
const (
	DefaultDebounceCycles = 1
	DefaultClearCycles    = 3
	DefaultHysteresisPct  = 2.0
)

// maxHistory bounds the resolved-alert ring.
const maxHistory = 64

// Config tunes the engine. Zero fields take defaults; a nil rule set
// takes the built-in table. The rule set is immutable after New.
type Config struct {
	Rules          []Rule
	DebounceCycles int
	ClearCycles    int
	HysteresisPct  float64
}

func (c *Config) defaults() {
	if c.Rules == nil {
		c.Rules = DefaultRules()
	}
	if c.DebounceCycles <= 0 {
		c.DebounceCycles = DefaultDebounceCycles
	}
	if c.ClearCycles <= 0 {
		c.ClearCycles = DefaultClearCycles
	}
	if c.HysteresisPct <= 0 {
		c.HysteresisPct = DefaultHysteresisPct
	}
}

// Engine evaluates snapshots against the rule table. All state lives in
// fixed arenas; per-rule counters are allocated once at construction.
type Engine struct {
	rules       []Rule
	debounce    int
	clearCycles int
	hystPct     float64

	ann Annunciator
	rec Recorder
	rep events.Reporter

	// now is replaceable in tests.
	now func() time.Time

	mu          sync.Mutex
	table       [MaxActiveAlerts]Alert
	used        [MaxActiveAlerts]bool
	activeCount int
	nextID      uint32

	// pending and clearing count consecutive cycles per rule per engine.
	pending  [][telemetry.MaxEngines]int
	clearing [][telemetry.MaxEngines]int

	masterCaution bool
	masterWarning bool
	highest       Level

	history []Alert

	capacityReported bool
}

// New builds an engine. Sinks may be nil; a nil reporter discards events.
func New(cfg Config, ann Annunciator, rec Recorder, rep events.Reporter) *Engine {
	cfg.defaults()
	if rep == nil {
		rep = events.Nop{}
	}
	return &Engine{
		rules:       cfg.Rules,
		debounce:    cfg.DebounceCycles,
		clearCycles: cfg.ClearCycles,
		hystPct:     cfg.HysteresisPct,
		ann:         ann,
		rec:         rec,
		rep:         rep,
		now:         time.Now,
		nextID:      1,
		pending:     make([][telemetry.MaxEngines]int, len(cfg.Rules)),
		clearing:    make([][telemetry.MaxEngines]int, len(cfg.Rules)),
		history:     make([]Alert, 0, maxHistory),
	}
}

// Process evaluates one verified snapshot. Parameters that are not Valid
// are skipped entirely: their rules neither advance nor clear. The error
// reports bad input only; threshold exceedances are not errors.
func (e *Engine) Process(snap *telemetry.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("alerts: nil snapshot: %w", telemetry.ErrInvalidParameter)
	}
	if !snap.Engine.Valid() {
		return fmt.Errorf("alerts: engine id %d: %w", snap.Engine, telemetry.ErrOutOfRange)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	eng := snap.Engine
	for ri := range e.rules {
		r := &e.rules[ri]
		param := &snap.Parameters[r.Param]
		if param.Status != telemetry.StatusValid {
			continue
		}

		slot := e.findActive(eng, r.Param, r.Level)
		inhibited := r.inhibitedIn(snap.Phase)

		if r.exceeded(param.Value) {
			e.clearing[ri][eng] = 0
			if slot >= 0 {
				e.table[slot].Inhibited = inhibited
				continue
			}
			e.pending[ri][eng]++
			if e.pending[ri][eng] < e.debounce || inhibited {
				continue
			}
			e.create(r, snap, param.Value)
			continue
		}

		e.pending[ri][eng] = 0
		if slot < 0 {
			continue
		}
		a := &e.table[slot]
		a.Inhibited = inhibited
		if a.Latched {
			continue
		}
		if r.clearedBy(param.Value, e.hystPct) {
			e.clearing[ri][eng]++
			if e.clearing[ri][eng] >= e.clearCycles {
				e.clearing[ri][eng] = 0
				e.clearSlot(slot)
			}
		} else {
			// Inside the hysteresis band: hold the alert, restart the streak.
			e.clearing[ri][eng] = 0
		}
	}
	return nil
}

// findActive returns the arena slot holding the matching active alert,
// or -1. Deduplication key is (engine, parameter, level).
func (e *Engine) findActive(eng telemetry.EngineID, p telemetry.ParamID, l Level) int {
	for i := range e.table {
		if e.used[i] && e.table[i].Engine == eng && e.table[i].Param == p && e.table[i].Level == l {
			return i
		}
	}
	return -1
}

func (e *Engine) create(r *Rule, snap *telemetry.Snapshot, v float64) {
	slot := -1
	for i := range e.used {
		if !e.used[i] {
			slot = i
			break
		}
	}
	if slot < 0 {
		slog.Debug("alerts: table full, dropping candidate",
			"engine", snap.Engine.Number(), "param", r.Param.String(), "level", r.Level.String())
		if !e.capacityReported {
			e.capacityReported = true
			e.rep.Report("alerts", events.SevMinor, events.CodeAlertCapacity,
				fmt.Sprintf("active table full at %d", MaxActiveAlerts))
		}
		return
	}

	a := Alert{
		ID:      e.nextID,
		Engine:  snap.Engine,
		Param:   r.Param,
		Level:   r.Level,
		Code:    r.Code,
		Message: fmt.Sprintf(r.Message, snap.Engine.Number()),
		Value:   v,
		Onset:   snap.SampleTime,
		Active:  true,
		Latched: r.Level >= LevelWarning,
	}
	e.nextID++
	e.table[slot] = a
	e.used[slot] = true
	e.activeCount++

	if r.Level >= LevelWarning {
		e.masterWarning = true
	} else if r.Level >= LevelCaution {
		e.masterCaution = true
	}
	if r.Level > e.highest {
		e.highest = r.Level
	}

	e.forward(a)
}

func (e *Engine) clearSlot(slot int) {
	a := e.table[slot]
	a.Active = false
	a.Cleared = e.now()
	e.used[slot] = false
	e.activeCount--
	e.capacityReported = false
	e.pushHistory(a)
	e.recomputeHighest()
	e.forward(a)
}

func (e *Engine) pushHistory(a Alert) {
	e.history = append(e.history, a)
	if len(e.history) > maxHistory {
		e.history = e.history[1:]
	}
}

func (e *Engine) recomputeHighest() {
	h := LevelNone
	for i := range e.table {
		if e.used[i] && e.table[i].Level > h {
			h = e.table[i].Level
		}
	}
	e.highest = h
}

// forward hands an alert event to the sinks. Failures are logged and
// swallowed; alert state never depends on sink health.
func (e *Engine) forward(a Alert) {
	if e.ann != nil {
		if err := e.ann.Annunciate(a); err != nil {
			slog.Warn("alerts: annunciate failed", "id", a.ID, "err", err)
		}
	}
	if e.rec != nil {
		if err := e.rec.Record(a); err != nil {
			slog.Warn("alerts: record failed", "id", a.ID, "err", err)
		}
	}
}

// Acknowledge clears the master flag for the given level band: Warning
// and above clears master warning, Caution clears master caution. Active
// alerts are untouched.
func (e *Engine) Acknowledge(l Level) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l >= LevelWarning {
		e.masterWarning = false
	} else if l >= LevelCaution {
		e.masterCaution = false
	}
}

// AcknowledgeAlert clears one active alert by id. This is the only clear
// path for latched alerts.
func (e *Engine) AcknowledgeAlert(id uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.table {
		if e.used[i] && e.table[i].ID == id {
			e.clearSlot(i)
			return nil
		}
	}
	return fmt.Errorf("alerts: no active alert %d: %w", id, telemetry.ErrInvalidParameter)
}

// Active returns the active alerts ordered by id.
func (e *Engine) Active() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Alert, 0, e.activeCount)
	for i := range e.table {
		if e.used[i] {
			out = append(out, e.table[i])
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ID > out[j].ID; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// History returns the resolved alerts, oldest first.
func (e *Engine) History() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Alert, len(e.history))
	copy(out, e.history)
	return out
}

// ActiveCount returns the number of active alerts.
func (e *Engine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeCount
}

// Masters returns the master caution and master warning flags.
func (e *Engine) Masters() (caution, warning bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.masterCaution, e.masterWarning
}

// Highest returns the highest level among active alerts.
func (e *Engine) Highest() Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highest
}
