package bus

import "fmt"

// Label addresses one data word on a source. Labels follow the avionics
// octal convention and are written as octal literals.
type Label uint16

// Canonical labels for the monitored parameter set. Sources carrying a
// parameter publish it under the same label regardless of channel.
const (
	LabelN1          Label = 0o310
	LabelN2          Label = 0o311
	LabelEGT         Label = 0o312
	LabelFuelFlow    Label = 0o313
	LabelOilTemp     Label = 0o314
	LabelOilPress    Label = 0o315
	LabelOilQty      Label = 0o316
	LabelVibFan      Label = 0o317
	LabelVibCore     Label = 0o320
	LabelEPR         Label = 0o321
	LabelITT         Label = 0o322
	LabelThrust      Label = 0o323
	LabelBleedPress  Label = 0o324
	LabelBleedTemp   Label = 0o325
	LabelStartValve  Label = 0o326
	LabelFuelValve   Label = 0o327
)

func (l Label) String() string { return fmt.Sprintf("%03o", uint16(l)) }

// SSM is the sign/status matrix accompanying a word. It qualifies whether
// the data field may be used.
type SSM uint8

const (
	// SSMNormal marks normal operation; the data field is usable.
	SSMNormal SSM = iota
	// SSMNoComputedData marks a source with nothing to report.
	SSMNoComputedData
	// SSMFunctionalTest marks synthetic self-test data.
	SSMFunctionalTest
	// SSMFailureWarning marks a source-declared failure; the data field
	// must not be trusted.
	SSMFailureWarning
)

func (s SSM) String() string {
	switch s {
	case SSMNormal:
		return "normal"
	case SSMNoComputedData:
		return "ncd"
	case SSMFunctionalTest:
		return "test"
	case SSMFailureWarning:
		return "failure"
	default:
		return "unknown"
	}
}

// Address is the full read address of one parameter on one source: the
// word label plus the SDI bits that discriminate between engines sharing
// a channel.
type Address struct {
	Label Label
	SDI   uint8
}

// Word is one raw sample as delivered by a driver. Data is the decoded
// data field; wire-level framing and parity are the driver's concern.
type Word struct {
	Label Label
	Data  int32
	SSM   SSM
}
