// Package limits provides the plausibility ranges used to validate
// engineering-unit parameter values. The built-in table covers every
// monitored parameter; an optional YAML file can override entries and is
// reloaded live while the monitor runs.
package limits

import "github.com/enginewatch/enginewatch/internal/telemetry"

// Range bounds an engineering-unit value, inclusive on both ends.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Provider resolves the plausibility range for a parameter. The
// acquisition cycle queries it on every validation pass, so
// implementations must be safe for concurrent use and must not block.
type Provider interface {
	Range(p telemetry.ParamID) (Range, bool)
}

var defaultTable = [telemetry.ParamCount]Range{
	telemetry.ParamN1:            {Min: 0, Max: 120},
	telemetry.ParamN2:            {Min: 0, Max: 120},
	telemetry.ParamEGT:           {Min: -60, Max: 1200},
	telemetry.ParamFuelFlow:      {Min: 0, Max: 50000},
	telemetry.ParamOilTemp:       {Min: -55, Max: 180},
	telemetry.ParamOilPressure:   {Min: 0, Max: 100},
	telemetry.ParamOilQuantity:   {Min: 0, Max: 100},
	telemetry.ParamVibFan:        {Min: 0, Max: 10},
	telemetry.ParamVibCore:       {Min: 0, Max: 10},
	telemetry.ParamEPR:           {Min: 0, Max: 2.5},
	telemetry.ParamITT:           {Min: -60, Max: 1200},
	telemetry.ParamThrust:        {Min: 0, Max: 120000},
	telemetry.ParamBleedPressure: {Min: 0, Max: 100},
	telemetry.ParamBleedTemp:     {Min: -55, Max: 320},
	telemetry.ParamStartValve:    {Min: 0, Max: 100},
	telemetry.ParamFuelValve:     {Min: 0, Max: 100},
}

// Static serves the built-in range table.
type Static struct{}

func (Static) Range(p telemetry.ParamID) (Range, bool) {
	if !p.Valid() {
		return Range{}, false
	}
	return defaultTable[p], true
}
