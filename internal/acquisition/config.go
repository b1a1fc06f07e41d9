package acquisition

import (
	"fmt"

	"github.com/enginewatch/enginewatch/internal/bus"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// MaxSampleRateHz is the fastest cycle rate the manager accepts.
const MaxSampleRateHz = 100

// SourceFailLimit is the consecutive-failure count at which a source is
// deactivated.
const SourceFailLimit = 5

// SourceConfig describes one configured data source.
type SourceConfig struct {
	ID      telemetry.SourceID
	Name    string
	Wire    bus.Config
	Primary bool
}

// Config is the acquisition setup handed to Init.
type Config struct {
	SampleRateHz int
	Engines      int
	Sources      []SourceConfig
}

func (c *Config) validate() error {
	if c.SampleRateHz <= 0 || c.SampleRateHz > MaxSampleRateHz {
		return fmt.Errorf("acquisition: sample rate %d outside 1..%d: %w",
			c.SampleRateHz, MaxSampleRateHz, telemetry.ErrOutOfRange)
	}
	if c.Engines <= 0 || c.Engines > telemetry.MaxEngines {
		return fmt.Errorf("acquisition: engine count %d outside 1..%d: %w",
			c.Engines, telemetry.MaxEngines, telemetry.ErrOutOfRange)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("acquisition: no sources configured: %w",
			telemetry.ErrInvalidParameter)
	}

	var present [telemetry.MaxSources]bool
	for _, sc := range c.Sources {
		if !sc.ID.Valid() {
			return fmt.Errorf("acquisition: source id %d outside 0..%d: %w",
				sc.ID, telemetry.MaxSources-1, telemetry.ErrOutOfRange)
		}
		if present[sc.ID] {
			return fmt.Errorf("acquisition: source id %d configured twice: %w",
				sc.ID, telemetry.ErrConfig)
		}
		present[sc.ID] = true
	}

	// Every parameter's primary and backup source must exist.
	for id := telemetry.ParamID(0); id.Valid(); id++ {
		def := &paramDefs[id]
		if !present[def.primary] || !present[def.backup] {
			return fmt.Errorf("acquisition: parameter %s needs sources %d/%d: %w",
				id, def.primary, def.backup, telemetry.ErrConfig)
		}
	}
	return nil
}
