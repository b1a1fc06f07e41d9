package telemetry

import (
	"fmt"
	"strings"
	"time"
)

// MaxEngines is the largest engine count the monitor supports. Arenas are
// sized for it at compile time.
const MaxEngines = 4

// EngineID identifies one engine, zero-based. Crew-facing surfaces display
// engines one-based ("ENG 1").
type EngineID uint8

// Valid reports whether the id addresses a supported engine slot.
func (e EngineID) Valid() bool { return e < MaxEngines }

// Number is the one-based display number.
func (e EngineID) Number() int { return int(e) + 1 }

func (e EngineID) String() string { return fmt.Sprintf("ENG %d", e.Number()) }

// ParamID identifies one monitored parameter.
type ParamID uint8

const (
	ParamN1 ParamID = iota
	ParamN2
	ParamEGT
	ParamFuelFlow
	ParamOilTemp
	ParamOilPressure
	ParamOilQuantity
	ParamVibFan
	ParamVibCore
	ParamEPR
	ParamITT
	ParamThrust
	ParamBleedPressure
	ParamBleedTemp
	ParamStartValve
	ParamFuelValve
)

// ParamCount is the number of monitored parameters per engine.
const ParamCount = 16

var paramNames = [ParamCount]string{
	"N1", "N2", "EGT", "FF",
	"OIL_TEMP", "OIL_PRESS", "OIL_QTY",
	"VIB_FAN", "VIB_CORE",
	"EPR", "ITT", "THRUST",
	"BLEED_PRESS", "BLEED_TEMP",
	"START_VLV", "FUEL_VLV",
}

// Valid reports whether the id names a monitored parameter.
func (p ParamID) Valid() bool { return p < ParamCount }

func (p ParamID) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PARAM_%d", uint8(p))
	}
	return paramNames[p]
}

// ParamIDByName resolves a parameter mnemonic, case-insensitively.
func ParamIDByName(name string) (ParamID, bool) {
	for i, n := range paramNames {
		if strings.EqualFold(name, n) {
			return ParamID(i), true
		}
	}
	return 0, false
}

// SourceID identifies one data source (a bus or channel). Source state is
// owned by the acquisition manager; this is just the shared handle.
type SourceID uint8

// MaxSources bounds the source table.
const MaxSources = 8

// Valid reports whether the id addresses a source slot.
func (s SourceID) Valid() bool { return s < MaxSources }

// ParamStatus is the per-parameter data quality ladder.
type ParamStatus uint8

const (
	// StatusValid means the value was read recently and passed validation.
	StatusValid ParamStatus = iota
	// StatusStale means the last valid value is older than the staleness
	// window and must not be trusted for alerting.
	StatusStale
	// StatusFailed means the value failed validation or the source flagged
	// a failure warning.
	StatusFailed
	// StatusNoComputedData means the source is alive but has nothing to
	// report (sensor warming up, engine off).
	StatusNoComputedData
	// StatusTest means the source is in functional test and the value is
	// synthetic.
	StatusTest
)

func (s ParamStatus) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusStale:
		return "stale"
	case StatusFailed:
		return "failed"
	case StatusNoComputedData:
		return "ncd"
	case StatusTest:
		return "test"
	default:
		return "unknown"
	}
}

// HealthStatus is the derived per-engine health level.
type HealthStatus uint8

const (
	HealthNormal HealthStatus = iota
	HealthMonitor
	HealthCaution
	HealthActionRequired
	HealthCritical
)

func (h HealthStatus) String() string {
	switch h {
	case HealthNormal:
		return "normal"
	case HealthMonitor:
		return "monitor"
	case HealthCaution:
		return "caution"
	case HealthActionRequired:
		return "action_required"
	case HealthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// FlightPhase is the coarse flight regime, used for alert inhibits.
type FlightPhase uint8

const (
	PhasePreflight FlightPhase = iota
	PhaseTaxi
	PhaseTakeoff
	PhaseClimb
	PhaseCruise
	PhaseDescent
	PhaseApproach
	PhaseLanding
)

var phaseNames = [...]string{
	"preflight", "taxi", "takeoff", "climb",
	"cruise", "descent", "approach", "landing",
}

func (f FlightPhase) String() string {
	if int(f) < len(phaseNames) {
		return phaseNames[f]
	}
	return "unknown"
}

// PhaseByName resolves a flight phase name, case-insensitively.
func PhaseByName(name string) (FlightPhase, bool) {
	for i, n := range phaseNames {
		if strings.EqualFold(name, n) {
			return FlightPhase(i), true
		}
	}
	return 0, false
}

// Parameter is the latest known state of one monitored parameter.
type Parameter struct {
	// Raw is the bus word data field as received.
	Raw int32
	// Value is the engineering-unit value (raw scaled and offset).
	Value float64
	// Status qualifies how much Value can be trusted.
	Status ParamStatus
	// SampledAt is when the last successful read landed.
	SampledAt time.Time
	// Source is the source that supplied the last successful read.
	Source SourceID
}
