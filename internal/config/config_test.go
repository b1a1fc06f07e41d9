package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/enginewatch/enginewatch/internal/alerts"
	"github.com/enginewatch/enginewatch/internal/bus"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	// Minimal config; everything falls back to the bench defaults.
	p := writeConfig(t, `log:
  level: info
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Monitor.SampleRateHz != DefaultSampleRateHz {
		t.Errorf("sample_rate_hz: got %d, want %d", cfg.Monitor.SampleRateHz, DefaultSampleRateHz)
	}
	if cfg.Monitor.Engines != DefaultEngines {
		t.Errorf("engines: got %d, want %d", cfg.Monitor.Engines, DefaultEngines)
	}
	if cfg.Monitor.DownlinkEvery != DefaultDownlinkEvery {
		t.Errorf("downlink_every: got %d, want %d", cfg.Monitor.DownlinkEvery, DefaultDownlinkEvery)
	}
	if cfg.Monitor.StatusInterval != DefaultStatusInterval {
		t.Errorf("status_interval: got %v, want %v", cfg.Monitor.StatusInterval, DefaultStatusInterval)
	}
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("listen: got %q, want %q", cfg.Server.Listen, DefaultListen)
	}
	if cfg.Recorder.Path != DefaultRecorderPath {
		t.Errorf("recorder.path: got %q, want %q", cfg.Recorder.Path, DefaultRecorderPath)
	}
	if len(cfg.Buses) != 4 {
		t.Errorf("buses: got %d, want the 4-channel default fit", len(cfg.Buses))
	}
	if cfg.Downlink().Enabled() {
		t.Error("downlink enabled by default, want disabled")
	}
}

func TestLoad_FullConfig(t *testing.T) {
	p := writeConfig(t, `monitor:
  sample_rate_hz: 20
  engines: 4
  downlink_every: 100
  status_interval: 500ms
buses:
  - {id: 0, name: ARINC-L, speed: high, parity: odd, role: primary}
  - {id: 1, name: ARINC-R, speed: high, parity: odd}
  - {id: 2, name: VIB-A, speed: low, parity: even, role: primary}
  - {id: 3, name: VIB-B, speed: low, parity: even}
limits:
  path: /etc/enginewatch/limits.yaml
alerts:
  debounce_cycles: 3
  clear_cycles: 5
  hysteresis_pct: 4
server:
  listen: ":9090"
  auth:
    mode: apikey
    key_env: EHM_KEY
    header: x-ehm-key
recorder:
  path: /var/lib/enginewatch/alerts.db
  queue: 64
groundlink:
  brokers: ["k1:9092", "k2:9092"]
  alert_topic: fleet.alerts
  snapshot_topic: fleet.snapshots
  queue: 128
log:
  level: debug
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Monitor.SampleRateHz != 20 {
		t.Errorf("sample_rate_hz: got %d, want 20", cfg.Monitor.SampleRateHz)
	}
	if cfg.Monitor.Engines != 4 {
		t.Errorf("engines: got %d, want 4", cfg.Monitor.Engines)
	}
	if cfg.Monitor.StatusInterval != 500*time.Millisecond {
		t.Errorf("status_interval: got %v, want 500ms", cfg.Monitor.StatusInterval)
	}
	if cfg.Limits.Path != "/etc/enginewatch/limits.yaml" {
		t.Errorf("limits.path: got %q", cfg.Limits.Path)
	}
	if cfg.Server.Listen != ":9090" {
		t.Errorf("listen: got %q, want :9090", cfg.Server.Listen)
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-ehm-key" {
		t.Errorf("header: got %q, want x-ehm-key", cfg.Server.Auth.EffectiveHeader())
	}
	if cfg.Recorder.Queue != 64 {
		t.Errorf("recorder.queue: got %d, want 64", cfg.Recorder.Queue)
	}

	dl := cfg.Downlink()
	if !dl.Enabled() || len(dl.Brokers) != 2 {
		t.Errorf("downlink brokers: got %v, want 2 brokers", dl.Brokers)
	}
	if dl.AlertTopic != "fleet.alerts" || dl.SnapshotTopic != "fleet.snapshots" {
		t.Errorf("topics: got (%q, %q)", dl.AlertTopic, dl.SnapshotTopic)
	}
	if cfg.Log.Level() != slog.LevelDebug {
		t.Errorf("log level: got %v, want debug", cfg.Log.Level())
	}
}

func TestAcquisition_BusConversion(t *testing.T) {
	p := writeConfig(t, `buses:
  - {id: 0, name: ARINC-L, speed: high, parity: odd, role: primary}
  - {id: 1, name: ARINC-R}
  - {id: 2, name: VIB-A, speed: low, parity: even, role: primary}
  - {id: 3, name: VIB-B}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	acq, err := cfg.Acquisition()
	if err != nil {
		t.Fatalf("Acquisition: %v", err)
	}
	if len(acq.Sources) != 4 {
		t.Fatalf("sources: got %d, want 4", len(acq.Sources))
	}

	left := acq.Sources[0]
	if left.ID != 0 || left.Name != "ARINC-L" || !left.Primary {
		t.Errorf("source 0 = %+v", left)
	}
	if left.Wire.Speed != bus.HighSpeed || left.Wire.Parity != bus.OddParity {
		t.Errorf("source 0 wire = %+v", left.Wire)
	}

	// Unset speed/parity fall back to high/odd, unset role to backup.
	right := acq.Sources[1]
	if right.Wire.Speed != bus.HighSpeed || right.Wire.Parity != bus.OddParity || right.Primary {
		t.Errorf("source 1 = %+v", right)
	}

	vib := acq.Sources[2]
	if vib.Wire.Speed != bus.LowSpeed || vib.Wire.Parity != bus.EvenParity {
		t.Errorf("source 2 wire = %+v", vib.Wire)
	}
}

func TestAlertEngine_CustomRules(t *testing.T) {
	p := writeConfig(t, `alerts:
  debounce_cycles: 2
  rules:
    - param: EGT
      level: warning
      limit: 1000
      direction: above
      code: 0x1101
      message: "ENG %d EGT OVERTEMP"
      inhibit: [takeoff]
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	eng, err := cfg.AlertEngine()
	if err != nil {
		t.Fatalf("AlertEngine: %v", err)
	}
	if eng.DebounceCycles != 2 {
		t.Errorf("debounce: got %d, want 2", eng.DebounceCycles)
	}
	if len(eng.Rules) != 1 {
		t.Fatalf("rules: got %d, want 1", len(eng.Rules))
	}

	r := eng.Rules[0]
	if r.Param != telemetry.ParamEGT {
		t.Errorf("param: got %v, want EGT", r.Param)
	}
	if r.Level != alerts.LevelWarning {
		t.Errorf("level: got %v, want warning", r.Level)
	}
	if r.Direction != alerts.Above {
		t.Errorf("direction: got %v, want above", r.Direction)
	}
	if r.Code != 0x1101 {
		t.Errorf("code: got %#x, want 0x1101", r.Code)
	}
	if len(r.Inhibit) != 1 || r.Inhibit[0] != telemetry.PhaseTakeoff {
		t.Errorf("inhibit: got %v, want [takeoff]", r.Inhibit)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_EHM_KEY", "supersecret")
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: TEST_EHM_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", h)
	}
}

func TestLoad_UnknownAuthMode(t *testing.T) {
	p := writeConfig(t, `server:
  auth:
    mode: oauth2
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for unknown auth mode, got nil")
	}
}

func TestLoad_BadBusSpeed(t *testing.T) {
	p := writeConfig(t, `buses:
  - {id: 0, name: ARINC-L, speed: turbo, role: primary}
  - {id: 1, name: ARINC-R}
  - {id: 2, name: VIB-A, role: primary}
  - {id: 3, name: VIB-B}
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for unknown bus speed, got nil")
	}
}

func TestLoad_UnknownRuleParam(t *testing.T) {
	p := writeConfig(t, `alerts:
  rules:
    - param: WARP_CORE
      level: warning
      limit: 9
      message: "ENG %d WARP"
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for unknown rule parameter, got nil")
	}
}

func TestLoad_SampleRateOutOfRange(t *testing.T) {
	p := writeConfig(t, `monitor:
  sample_rate_hz: 400
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for out-of-range sample rate, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLogConfig_LevelNames(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (LogConfig{LogLevel: tt.name}).Level(); got != tt.want {
			t.Errorf("Level(%q): got %v, want %v", tt.name, got, tt.want)
		}
	}
}
