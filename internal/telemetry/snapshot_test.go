package telemetry

import (
	"errors"
	"math"
	"testing"
	"time"
)

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleSnapshot() Snapshot {
	s := Snapshot{
		Engine:     1,
		Phase:      PhaseCruise,
		Health:     HealthNormal,
		SampleTime: baseTime,
	}
	for i := range s.Parameters {
		s.Parameters[i] = Parameter{
			Raw:       int32(1000 + i),
			Value:     float64(i) * 1.5,
			Status:    StatusValid,
			SampledAt: baseTime,
			Source:    SourceID(i % 2),
		}
	}
	return s
}

func TestSnapshot_StampThenVerify(t *testing.T) {
	s := sampleSnapshot()
	s.Stamp()

	if err := s.Verify(); err != nil {
		t.Fatalf("Verify after Stamp: %v", err)
	}
	if s.Version != 1 {
		t.Errorf("Version: got %d, want 1", s.Version)
	}
}

func TestSnapshot_CopyVerifies(t *testing.T) {
	s := sampleSnapshot()
	s.Stamp()

	cp := s
	if err := cp.Verify(); err != nil {
		t.Fatalf("Verify on copy: %v", err)
	}
}

func TestSnapshot_CorruptedValue_FailsVerify(t *testing.T) {
	s := sampleSnapshot()
	s.Stamp()

	// Flip a single bit in one parameter's value.
	bits := math.Float64bits(s.Parameters[ParamEGT].Value)
	s.Parameters[ParamEGT].Value = math.Float64frombits(bits ^ 1)

	err := s.Verify()
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("Verify: got %v, want ErrIntegrity", err)
	}
}

func TestSnapshot_CorruptedStatus_FailsVerify(t *testing.T) {
	s := sampleSnapshot()
	s.Stamp()

	s.Parameters[ParamN1].Status = StatusFailed

	if err := s.Verify(); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("Verify: got %v, want ErrIntegrity", err)
	}
}

func TestSnapshot_CorruptedChecksum_FailsVerify(t *testing.T) {
	s := sampleSnapshot()
	s.Stamp()

	s.Checksum ^= 0x00000001

	if err := s.Verify(); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("Verify: got %v, want ErrIntegrity", err)
	}
}

func TestSnapshot_NeverStamped_FailsVerify(t *testing.T) {
	s := sampleSnapshot()
	if err := s.Verify(); err == nil {
		t.Fatal("Verify on unstamped snapshot: got nil, want error")
	}
}

func TestSnapshot_StampAdvancesVersion(t *testing.T) {
	s := sampleSnapshot()
	s.Stamp()
	first := s.Checksum
	s.Stamp()

	if s.Version != 2 {
		t.Errorf("Version: got %d, want 2", s.Version)
	}
	if s.Checksum == first {
		t.Error("Checksum unchanged across Stamp; version not covered")
	}
}
