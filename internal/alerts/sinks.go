package alerts

import (
	"time"

	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// Alert is one entry in the active table or history. Cleared stays zero
// while the alert is active.
type Alert struct {
	ID        uint32
	Engine    telemetry.EngineID
	Param     telemetry.ParamID
	Level     Level
	Code      uint16
	Message   string
	Value     float64
	Onset     time.Time
	Cleared   time.Time
	Active    bool
	Latched   bool
	Inhibited bool
}

// Annunciator delivers alert events to the flight deck. Implementations
// must not block the caller.
type Annunciator interface {
	Annunciate(a Alert) error
}

// Recorder persists alert events. It receives both onsets and clears,
// distinguished by the Active flag. Implementations must not block the
// caller.
type Recorder interface {
	Record(a Alert) error
}

type multiRecorder []Recorder

func (m multiRecorder) Record(a Alert) error {
	var first error
	for _, r := range m {
		if err := r.Record(a); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// MultiRecorder fans one alert event out to several recorders. Every
// recorder sees the event; the first error is returned.
func MultiRecorder(rs ...Recorder) Recorder {
	out := make(multiRecorder, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
