package limits

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/enginewatch/enginewatch/internal/telemetry"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "limits.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write limits file: %v", err)
	}
	return path
}

func TestStatic_CoversEveryParameter(t *testing.T) {
	var s Static
	for p := telemetry.ParamID(0); p.Valid(); p++ {
		r, ok := s.Range(p)
		if !ok {
			t.Fatalf("Range(%s): not found", p)
		}
		if r.Min >= r.Max {
			t.Errorf("Range(%s): min %g not below max %g", p, r.Min, r.Max)
		}
	}
	if _, ok := s.Range(telemetry.ParamID(99)); ok {
		t.Error("Range(99): expected not found")
	}
}

func TestRange_Contains(t *testing.T) {
	r := Range{Min: 0, Max: 100}
	if !r.Contains(0) || !r.Contains(100) || !r.Contains(50) {
		t.Error("inclusive bounds should contain endpoints")
	}
	if r.Contains(-0.1) || r.Contains(100.1) {
		t.Error("values outside bounds should not be contained")
	}
}

func TestFile_OverridesAndFallsBack(t *testing.T) {
	path := writeTable(t, "EGT: {min: -60, max: 1100}\n")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	r, ok := f.Range(telemetry.ParamEGT)
	if !ok || r.Max != 1100 {
		t.Errorf("EGT range: got (%+v, %v), want max 1100", r, ok)
	}

	// Parameters not named in the file use the built-in table.
	r, ok = f.Range(telemetry.ParamN1)
	want, _ := Static{}.Range(telemetry.ParamN1)
	if !ok || r != want {
		t.Errorf("N1 range: got (%+v, %v), want %+v", r, ok, want)
	}
}

func TestFile_UnknownParameter_Fails(t *testing.T) {
	path := writeTable(t, "N3: {min: 0, max: 1}\n")
	_, err := OpenFile(path)
	if !errors.Is(err, telemetry.ErrConfig) {
		t.Fatalf("OpenFile: got %v, want ErrConfig", err)
	}
}

func TestFile_InvertedRange_Fails(t *testing.T) {
	path := writeTable(t, "EGT: {min: 100, max: 100}\n")
	if _, err := OpenFile(path); !errors.Is(err, telemetry.ErrConfig) {
		t.Fatalf("OpenFile: got %v, want ErrConfig", err)
	}
}

func TestFile_FailedReload_KeepsPreviousTable(t *testing.T) {
	path := writeTable(t, "EGT: {min: -60, max: 1100}\n")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	if err := os.WriteFile(path, []byte("EGT: {min: 9, max: 1}\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := f.Reload(); err == nil {
		t.Fatal("Reload: got nil, want error")
	}

	r, _ := f.Range(telemetry.ParamEGT)
	if r.Max != 1100 {
		t.Errorf("EGT max after failed reload: got %g, want 1100", r.Max)
	}
}
