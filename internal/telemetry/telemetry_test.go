package telemetry

import "testing"

func TestEngineID_Valid(t *testing.T) {
	if !EngineID(0).Valid() || !EngineID(3).Valid() {
		t.Error("engines 0..3 should be valid")
	}
	if EngineID(4).Valid() {
		t.Error("engine 4 should be invalid")
	}
}

func TestEngineID_String(t *testing.T) {
	if got := EngineID(0).String(); got != "ENG 1" {
		t.Errorf("String: got %q, want %q", got, "ENG 1")
	}
	if got := EngineID(3).Number(); got != 4 {
		t.Errorf("Number: got %d, want 4", got)
	}
}

func TestParamIDByName(t *testing.T) {
	tests := []struct {
		name string
		want ParamID
		ok   bool
	}{
		{"EGT", ParamEGT, true},
		{"egt", ParamEGT, true},
		{"oil_press", ParamOilPressure, true},
		{"VIB_FAN", ParamVibFan, true},
		{"n3", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParamIDByName(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParamIDByName(%q): got (%v, %v), want (%v, %v)",
				tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParamID_String_Unique(t *testing.T) {
	seen := map[string]bool{}
	for p := ParamID(0); p.Valid(); p++ {
		name := p.String()
		if seen[name] {
			t.Errorf("duplicate parameter name %q", name)
		}
		seen[name] = true
	}
	if len(seen) != ParamCount {
		t.Errorf("named parameters: got %d, want %d", len(seen), ParamCount)
	}
}

func TestParamID_String_OutOfRange(t *testing.T) {
	if got := ParamID(200).String(); got != "PARAM_200" {
		t.Errorf("String: got %q, want PARAM_200", got)
	}
}

func TestPhaseByName(t *testing.T) {
	p, ok := PhaseByName("takeoff")
	if !ok || p != PhaseTakeoff {
		t.Errorf("PhaseByName(takeoff): got (%v, %v)", p, ok)
	}
	if _, ok := PhaseByName("hover"); ok {
		t.Error("PhaseByName(hover): expected not found")
	}
}
