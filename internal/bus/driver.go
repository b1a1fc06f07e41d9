package bus

import (
	"fmt"
	"strings"

	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// Speed is the channel bit rate class.
type Speed uint8

const (
	LowSpeed Speed = iota
	HighSpeed
)

func (s Speed) String() string {
	if s == HighSpeed {
		return "high"
	}
	return "low"
}

// ParseSpeed resolves a config speed name.
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(s) {
	case "low":
		return LowSpeed, nil
	case "high":
		return HighSpeed, nil
	default:
		return 0, fmt.Errorf("unknown bus speed %q", s)
	}
}

// Parity is the channel parity setting.
type Parity uint8

const (
	OddParity Parity = iota
	EvenParity
)

func (p Parity) String() string {
	if p == EvenParity {
		return "even"
	}
	return "odd"
}

// ParseParity resolves a config parity name.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(s) {
	case "odd":
		return OddParity, nil
	case "even":
		return EvenParity, nil
	default:
		return 0, fmt.Errorf("unknown bus parity %q", s)
	}
}

// Config is the wire configuration of one source channel.
type Config struct {
	Speed  Speed
	Parity Parity
}

// Driver is implemented by anything that can act as a data source. Reads
// are bounded bus transactions on the cycle path, so implementations must
// not block; a read that cannot complete promptly returns an error and the
// caller falls back to the backup source.
//
// Init may be called again on a previously initialized source; drivers
// reset the channel.
type Driver interface {
	Init(src telemetry.SourceID, cfg Config) error
	Read(src telemetry.SourceID, addr Address) (Word, error)
}
