package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/enginewatch/enginewatch/internal/acquisition"
	"github.com/enginewatch/enginewatch/internal/alerts"
	"github.com/enginewatch/enginewatch/internal/bus"
	"github.com/enginewatch/enginewatch/internal/groundlink"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// Default values for the monitor configuration.
const (
	DefaultSampleRateHz   = 50
	DefaultEngines        = 2
	DefaultDownlinkEvery  = 50 // one digest per second at the default rate
	DefaultStatusInterval = time.Second
	DefaultListen         = ":8080"
	DefaultRecorderPath   = "data/enginewatch.db"
	DefaultLogLevel       = "info"
)

// Config holds the full monitor configuration parsed from config.yaml.
type Config struct {
	Monitor    MonitorConfig    `yaml:"monitor"`
	Buses      []BusConfig      `yaml:"buses"`
	Limits     LimitsConfig     `yaml:"limits"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	Server     ServerConfig     `yaml:"server"`
	Recorder   RecorderConfig   `yaml:"recorder"`
	Groundlink GroundlinkConfig `yaml:"groundlink"`
	Log        LogConfig        `yaml:"log"`
}

// MonitorConfig controls the acquisition cycle.
type MonitorConfig struct {
	// SampleRateHz is the cyclic sampling rate (default 50).
	SampleRateHz int `yaml:"sample_rate_hz"`

	// Engines is the number of monitored engines (default 2).
	Engines int `yaml:"engines"`

	// DownlinkEvery ships one snapshot digest to the ground station every
	// N cycles (default 50). Zero disables snapshot downlinks; alert
	// events still go out.
	DownlinkEvery int `yaml:"downlink_every"`

	// StatusInterval is how often the annunciator hub pushes a status
	// frame to connected displays (default 1s).
	StatusInterval time.Duration `yaml:"status_interval"`
}

// BusConfig describes one receiver channel.
type BusConfig struct {
	// ID is the source slot, zero-based.
	ID int `yaml:"id"`

	// Name is the channel label shown in stats and logs, e.g. "ARINC-L".
	Name string `yaml:"name"`

	// Speed is "high" or "low" (default high).
	Speed string `yaml:"speed"`

	// Parity is "odd" or "even" (default odd).
	Parity string `yaml:"parity"`

	// Role is "primary" or "backup" (default backup).
	Role string `yaml:"role"`
}

// LimitsConfig points at the optional range table.
type LimitsConfig struct {
	// Path is a YAML file keyed by parameter mnemonic. Empty means the
	// built-in table only. The file is watched and hot-reloaded.
	Path string `yaml:"path"`
}

// AlertsConfig tunes the alert engine.
type AlertsConfig struct {
	// DebounceCycles is how many consecutive exceedance cycles arm an
	// alert (default 1: raise on the first exceedance).
	DebounceCycles int `yaml:"debounce_cycles"`

	// ClearCycles is how many consecutive in-band cycles clear an alert
	// (default 3).
	ClearCycles int `yaml:"clear_cycles"`

	// HysteresisPct widens the clear band below the limit (default 2).
	HysteresisPct float64 `yaml:"hysteresis_pct"`

	// Rules replaces the built-in threshold table when non-empty.
	Rules []AlertRule `yaml:"rules"`
}

// AlertRule defines one threshold condition.
type AlertRule struct {
	// Param is the parameter mnemonic, e.g. "EGT".
	Param string `yaml:"param"`

	// Level is one of: warning | caution | advisory | status.
	Level string `yaml:"level"`

	// Limit is the threshold value in the parameter's engineering unit.
	Limit float64 `yaml:"limit"`

	// Direction is "above" or "below" (default above).
	Direction string `yaml:"direction"`

	// Code is the maintenance fault code reported with the alert.
	Code uint16 `yaml:"code"`

	// Message is a format string taking the one-based engine number,
	// e.g. "ENG %d EGT HIGH".
	Message string `yaml:"message"`

	// Inhibit lists flight phases during which new alerts from this rule
	// are held back.
	Inhibit []string `yaml:"inhibit"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	// Listen is the address for the REST API and annunciator hub
	// (default ":8080").
	Listen string `yaml:"listen"`

	// Auth configures how the server authenticates clients.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the
	// expected API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// RecorderConfig holds the local maintenance store settings.
type RecorderConfig struct {
	// Path is the SQLite database file (default "data/enginewatch.db").
	Path string `yaml:"path"`

	// Queue is the write queue depth (default 256).
	Queue int `yaml:"queue"`
}

// GroundlinkConfig holds the Kafka downlink settings. An empty broker list
// disables the downlink.
type GroundlinkConfig struct {
	Brokers []string `yaml:"brokers"`

	// AlertTopic receives alert events (default "ehm.alerts").
	AlertTopic string `yaml:"alert_topic"`

	// SnapshotTopic receives snapshot digests (default "ehm.snapshots").
	SnapshotTopic string `yaml:"snapshot_topic"`

	// Queue is the outgoing message queue depth (default 256).
	Queue int `yaml:"queue"`
}

// LogConfig controls logging.
type LogConfig struct {
	// LogLevel is one of: debug | info | warn | error (default info).
	LogLevel string `yaml:"level"`
}

// Level resolves the configured log level.
func (l LogConfig) Level() slog.Level {
	switch strings.ToLower(l.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("monitor config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("monitor config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("monitor config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values, including
// the standard four-channel dual-engine bench fit.
func defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			SampleRateHz:   DefaultSampleRateHz,
			Engines:        DefaultEngines,
			DownlinkEvery:  DefaultDownlinkEvery,
			StatusInterval: DefaultStatusInterval,
		},
		Buses: []BusConfig{
			{ID: 0, Name: "ARINC-L", Role: "primary"},
			{ID: 1, Name: "ARINC-R"},
			{ID: 2, Name: "VIB-A", Role: "primary"},
			{ID: 3, Name: "VIB-B"},
		},
		Server: ServerConfig{
			Listen: DefaultListen,
		},
		Recorder: RecorderConfig{
			Path: DefaultRecorderPath,
		},
		Log: LogConfig{
			LogLevel: DefaultLogLevel,
		},
	}
}

// validate checks structural constraints on the parsed configuration. The
// section converters run here so a bad bus or rule entry fails Load rather
// than startup.
func validate(cfg *Config) error {
	if cfg.Monitor.SampleRateHz <= 0 || cfg.Monitor.SampleRateHz > acquisition.MaxSampleRateHz {
		return fmt.Errorf("monitor.sample_rate_hz %d is out of range [1, %d]: %w",
			cfg.Monitor.SampleRateHz, acquisition.MaxSampleRateHz, telemetry.ErrConfig)
	}
	if cfg.Monitor.Engines <= 0 || cfg.Monitor.Engines > telemetry.MaxEngines {
		return fmt.Errorf("monitor.engines %d is out of range [1, %d]: %w",
			cfg.Monitor.Engines, telemetry.MaxEngines, telemetry.ErrConfig)
	}
	if cfg.Monitor.DownlinkEvery < 0 {
		return fmt.Errorf("monitor.downlink_every must not be negative: %w", telemetry.ErrConfig)
	}
	if cfg.Monitor.StatusInterval <= 0 {
		return fmt.Errorf("monitor.status_interval must be positive: %w", telemetry.ErrConfig)
	}
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty: %w", telemetry.ErrConfig)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none: %w",
			cfg.Server.Auth.Mode, telemetry.ErrConfig)
	}
	if cfg.Recorder.Queue < 0 {
		return fmt.Errorf("recorder.queue must not be negative: %w", telemetry.ErrConfig)
	}

	if _, err := cfg.Acquisition(); err != nil {
		return fmt.Errorf("%v: %w", err, telemetry.ErrConfig)
	}
	if _, err := cfg.AlertEngine(); err != nil {
		return fmt.Errorf("%v: %w", err, telemetry.ErrConfig)
	}
	return nil
}

// Acquisition converts the monitor and bus sections into the acquisition
// setup handed to Init.
func (c *Config) Acquisition() (acquisition.Config, error) {
	out := acquisition.Config{
		SampleRateHz: c.Monitor.SampleRateHz,
		Engines:      c.Monitor.Engines,
	}

	for i, b := range c.Buses {
		speed := bus.HighSpeed
		if b.Speed != "" {
			var err error
			if speed, err = bus.ParseSpeed(b.Speed); err != nil {
				return acquisition.Config{}, fmt.Errorf("buses[%d]: %w", i, err)
			}
		}
		parity := bus.OddParity
		if b.Parity != "" {
			var err error
			if parity, err = bus.ParseParity(b.Parity); err != nil {
				return acquisition.Config{}, fmt.Errorf("buses[%d]: %w", i, err)
			}
		}
		switch b.Role {
		case "primary", "backup", "":
		default:
			return acquisition.Config{}, fmt.Errorf("buses[%d]: unknown role %q: want primary|backup", i, b.Role)
		}

		out.Sources = append(out.Sources, acquisition.SourceConfig{
			ID:      telemetry.SourceID(b.ID),
			Name:    b.Name,
			Wire:    bus.Config{Speed: speed, Parity: parity},
			Primary: b.Role == "primary",
		})
	}

	return out, nil
}

// AlertEngine converts the alerts section into the alert engine setup. An
// empty rule list means the built-in threshold table.
func (c *Config) AlertEngine() (alerts.Config, error) {
	out := alerts.Config{
		DebounceCycles: c.Alerts.DebounceCycles,
		ClearCycles:    c.Alerts.ClearCycles,
		HysteresisPct:  c.Alerts.HysteresisPct,
	}

	for i, r := range c.Alerts.Rules {
		param, ok := telemetry.ParamIDByName(r.Param)
		if !ok {
			return alerts.Config{}, fmt.Errorf("alerts.rules[%d]: unknown parameter %q", i, r.Param)
		}
		level, err := alerts.ParseLevel(r.Level)
		if err != nil {
			return alerts.Config{}, fmt.Errorf("alerts.rules[%d]: %w", i, err)
		}
		dir := alerts.Above
		if r.Direction != "" {
			if dir, err = alerts.ParseDirection(r.Direction); err != nil {
				return alerts.Config{}, fmt.Errorf("alerts.rules[%d]: %w", i, err)
			}
		}
		if r.Message == "" {
			return alerts.Config{}, fmt.Errorf("alerts.rules[%d]: message must not be empty", i)
		}

		var inhibit []telemetry.FlightPhase
		for _, name := range r.Inhibit {
			phase, ok := telemetry.PhaseByName(name)
			if !ok {
				return alerts.Config{}, fmt.Errorf("alerts.rules[%d]: unknown flight phase %q", i, name)
			}
			inhibit = append(inhibit, phase)
		}

		out.Rules = append(out.Rules, alerts.Rule{
			Param:     param,
			Level:     level,
			Limit:     r.Limit,
			Direction: dir,
			Code:      r.Code,
			Message:   r.Message,
			Inhibit:   inhibit,
		})
	}

	return out, nil
}

// Downlink converts the groundlink section into the producer setup.
func (c *Config) Downlink() groundlink.Config {
	return groundlink.Config{
		Brokers:       c.Groundlink.Brokers,
		AlertTopic:    c.Groundlink.AlertTopic,
		SnapshotTopic: c.Groundlink.SnapshotTopic,
		QueueSize:     c.Groundlink.Queue,
	}
}
