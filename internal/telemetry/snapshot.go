package telemetry

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"time"
)

// payloadLen is the encoded size of a snapshot's checksummed payload:
// engine, phase and health bytes, sample time and version, then 22 bytes
// per parameter (raw, value bits, status, sampled-at, source).
const payloadLen = 3 + 8 + 8 + ParamCount*22

// Snapshot is the complete sampled state of one engine. The acquisition
// manager is its only writer; everyone else receives copies and must call
// Verify before trusting the contents.
type Snapshot struct {
	Engine     EngineID
	Phase      FlightPhase
	Health     HealthStatus
	SampleTime time.Time
	Parameters [ParamCount]Parameter

	// Version increases by one on every Stamp. Readers can compare versions
	// to detect that an engine has been resampled.
	Version uint64
	// Checksum is the CRC-32 (IEEE) of the encoded payload.
	Checksum uint32
}

// appendPayload encodes every checksummed field in a fixed little-endian
// layout. The encoding must be deterministic: Stamp and Verify both depend
// on byte-identical output for identical payloads.
func (s *Snapshot) appendPayload(b []byte) []byte {
	b = append(b, byte(s.Engine), byte(s.Phase), byte(s.Health))
	b = binary.LittleEndian.AppendUint64(b, uint64(s.SampleTime.UnixNano()))
	b = binary.LittleEndian.AppendUint64(b, s.Version)
	for i := range s.Parameters {
		p := &s.Parameters[i]
		b = binary.LittleEndian.AppendUint32(b, uint32(p.Raw))
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(p.Value))
		b = append(b, byte(p.Status))
		b = binary.LittleEndian.AppendUint64(b, uint64(p.SampledAt.UnixNano()))
		b = append(b, byte(p.Source))
	}
	return b
}

func (s *Snapshot) sum() uint32 {
	var buf [payloadLen]byte
	return crc32.ChecksumIEEE(s.appendPayload(buf[:0]))
}

// Stamp advances the version and stores the payload checksum. Called once
// per cycle per engine, after all fields are final.
func (s *Snapshot) Stamp() {
	s.Version++
	s.Checksum = s.sum()
}

// Verify recomputes the payload checksum and compares it with the stored
// one. A mismatch means the snapshot was corrupted or torn after its last
// Stamp. A snapshot that was never stamped does not verify.
func (s *Snapshot) Verify() error {
	if s.Version == 0 {
		return fmt.Errorf("%s snapshot never stamped: %w", s.Engine, ErrIntegrity)
	}
	if got := s.sum(); got != s.Checksum {
		return fmt.Errorf("%s snapshot checksum %08x, computed %08x: %w",
			s.Engine, s.Checksum, got, ErrIntegrity)
	}
	return nil
}
