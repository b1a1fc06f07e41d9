package acquisition

import (
	"github.com/enginewatch/enginewatch/internal/bus"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// paramDef is the static plumbing of one parameter: where to read it and
// how to scale the raw data field into engineering units.
type paramDef struct {
	label   bus.Label
	primary telemetry.SourceID
	backup  telemetry.SourceID
	scale   float64
	offset  float64
}

// Gas-path parameters ride sources 0/1; vibration and valve discretes
// ride sources 2/3. Engineering value = raw*scale + offset.
var paramDefs = [telemetry.ParamCount]paramDef{
	telemetry.ParamN1:            {bus.LabelN1, 0, 1, 0.1, 0},
	telemetry.ParamN2:            {bus.LabelN2, 0, 1, 0.1, 0},
	telemetry.ParamEGT:           {bus.LabelEGT, 0, 1, 1.0, 0},
	telemetry.ParamFuelFlow:      {bus.LabelFuelFlow, 0, 1, 0.1, 0},
	telemetry.ParamOilTemp:       {bus.LabelOilTemp, 0, 1, 0.5, -40},
	telemetry.ParamOilPressure:   {bus.LabelOilPress, 0, 1, 0.1, 0},
	telemetry.ParamOilQuantity:   {bus.LabelOilQty, 0, 1, 0.5, 0},
	telemetry.ParamVibFan:        {bus.LabelVibFan, 2, 3, 0.001, 0},
	telemetry.ParamVibCore:       {bus.LabelVibCore, 2, 3, 0.001, 0},
	telemetry.ParamEPR:           {bus.LabelEPR, 0, 1, 0.001, 0},
	telemetry.ParamITT:           {bus.LabelITT, 0, 1, 1.0, 0},
	telemetry.ParamThrust:        {bus.LabelThrust, 0, 1, 10.0, 0},
	telemetry.ParamBleedPressure: {bus.LabelBleedPress, 0, 1, 0.1, 0},
	telemetry.ParamBleedTemp:     {bus.LabelBleedTemp, 0, 1, 0.5, -40},
	telemetry.ParamStartValve:    {bus.LabelStartValve, 2, 3, 1.0, 0},
	telemetry.ParamFuelValve:     {bus.LabelFuelValve, 2, 3, 1.0, 0},
}
