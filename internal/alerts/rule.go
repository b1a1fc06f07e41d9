package alerts

import (
	"fmt"
	"strings"

	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// Level ranks alert severity. Ordering matters: latching and master-flag
// behavior key off it.
type Level uint8

const (
	LevelNone Level = iota
	LevelStatus
	LevelAdvisory
	LevelCaution
	LevelWarning
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelStatus:
		return "status"
	case LevelAdvisory:
		return "advisory"
	case LevelCaution:
		return "caution"
	case LevelWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ParseLevel resolves a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for l := LevelNone; l <= LevelWarning; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return LevelNone, fmt.Errorf("unknown alert level %q", s)
}

// Direction states which side of the limit is an exceedance.
type Direction uint8

const (
	Above Direction = iota
	Below
)

func (d Direction) String() string {
	if d == Below {
		return "below"
	}
	return "above"
}

// ParseDirection resolves a direction name, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "above":
		return Above, nil
	case "below":
		return Below, nil
	default:
		return Above, fmt.Errorf("unknown alert direction %q", s)
	}
}

// Rule is one threshold. Message is a format string taking the one-based
// engine number. Inhibit lists flight phases during which new alerts from
// this rule are held back.
type Rule struct {
	Param     telemetry.ParamID
	Level     Level
	Limit     float64
	Direction Direction
	Code      uint16
	Message   string
	Inhibit   []telemetry.FlightPhase
}

func (r *Rule) exceeded(v float64) bool {
	if r.Direction == Below {
		return v <= r.Limit
	}
	return v >= r.Limit
}

// clearedBy reports whether v has crossed the hysteresis band on the safe
// side of the limit.
func (r *Rule) clearedBy(v, hystPct float64) bool {
	margin := r.Limit * hystPct / 100
	if margin < 0 {
		margin = -margin
	}
	if r.Direction == Below {
		return v > r.Limit+margin
	}
	return v < r.Limit-margin
}

func (r *Rule) inhibitedIn(p telemetry.FlightPhase) bool {
	for _, ph := range r.Inhibit {
		if ph == p {
			return true
		}
	}
	return false
}

// takeoffInhibit is the default inhibit set for caution-level rules: a
// caution during the takeoff roll would distract at the worst moment.
var takeoffInhibit = []telemetry.FlightPhase{telemetry.PhaseTakeoff}

// DefaultRules returns the built-in threshold table.
func DefaultRules() []Rule {
	return []Rule{
		{telemetry.ParamEGT, LevelCaution, 950, Above, 0x1001, "ENG %d EGT HIGH", takeoffInhibit},
		{telemetry.ParamEGT, LevelWarning, 1000, Above, 0x1002, "ENG %d EGT OVERLIMIT", nil},
		{telemetry.ParamOilPressure, LevelCaution, 25, Below, 0x2001, "ENG %d OIL PRESS LO", takeoffInhibit},
		{telemetry.ParamOilPressure, LevelWarning, 15, Below, 0x2002, "ENG %d OIL PRESS CRIT", nil},
		{telemetry.ParamOilTemp, LevelCaution, 140, Above, 0x2003, "ENG %d OIL TEMP HI", takeoffInhibit},
		{telemetry.ParamOilTemp, LevelWarning, 155, Above, 0x2004, "ENG %d OIL TEMP CRIT", nil},
		{telemetry.ParamVibFan, LevelCaution, 3.0, Above, 0x3001, "ENG %d FAN VIB HI", takeoffInhibit},
		{telemetry.ParamVibFan, LevelWarning, 5.0, Above, 0x3002, "ENG %d FAN VIB CRIT", nil},
		{telemetry.ParamVibCore, LevelCaution, 4.0, Above, 0x3003, "ENG %d CORE VIB HI", takeoffInhibit},
		{telemetry.ParamVibCore, LevelWarning, 6.0, Above, 0x3004, "ENG %d CORE VIB CRIT", nil},
		{telemetry.ParamN1, LevelWarning, 104, Above, 0x4001, "ENG %d N1 OVERLIMIT", nil},
		{telemetry.ParamN2, LevelWarning, 105, Above, 0x4002, "ENG %d N2 OVERLIMIT", nil},
	}
}
