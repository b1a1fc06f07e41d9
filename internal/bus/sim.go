package bus

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// simBaselines holds steady-state cruise raw values per label. Values are
// raw data fields; scaling into engineering units happens downstream.
var simBaselines = map[Label]int32{
	LabelN1:         952,
	LabelN2:         978,
	LabelEGT:        720,
	LabelFuelFlow:   5400,
	LabelOilTemp:    250,
	LabelOilPress:   520,
	LabelOilQty:     190,
	LabelVibFan:     800,
	LabelVibCore:    1200,
	LabelEPR:        1350,
	LabelITT:        800,
	LabelThrust:     2400,
	LabelBleedPress: 420,
	LabelBleedTemp:  540,
	LabelStartValve: 0,
	LabelFuelValve:  100,
}

type simKey struct {
	src  telemetry.SourceID
	addr Address
}

// Sim is a deterministic bench driver. It serves plausible cruise values
// with mild wander and lets callers inject failures and pin words, which
// is enough to exercise every acquisition path without hardware.
type Sim struct {
	mu        sync.Mutex
	rng       *rand.Rand
	inited    [telemetry.MaxSources]bool
	failInit  [telemetry.MaxSources]bool
	failReads [telemetry.MaxSources]int
	words     map[simKey]Word
}

// NewSim returns a simulator seeded for reproducible wander.
func NewSim(seed int64) *Sim {
	return &Sim{
		rng:   rand.New(rand.NewSource(seed)),
		words: make(map[simKey]Word),
	}
}

func (s *Sim) Init(src telemetry.SourceID, _ Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !src.Valid() {
		return fmt.Errorf("sim: source %d out of range", src)
	}
	if s.failInit[src] {
		return fmt.Errorf("sim: source %d init failure injected", src)
	}
	s.inited[src] = true
	s.failReads[src] = 0
	return nil
}

func (s *Sim) Read(src telemetry.SourceID, addr Address) (Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !src.Valid() || !s.inited[src] {
		return Word{}, fmt.Errorf("sim: source %d not initialized", src)
	}
	if n := s.failReads[src]; n != 0 {
		if n > 0 {
			s.failReads[src] = n - 1
		}
		return Word{}, fmt.Errorf("sim: source %d read failure injected", src)
	}
	if w, ok := s.words[simKey{src, addr}]; ok {
		return w, nil
	}
	base, ok := simBaselines[addr.Label]
	if !ok {
		return Word{}, fmt.Errorf("sim: no data for label %s", addr.Label)
	}
	if base == 0 {
		return Word{Label: addr.Label, Data: 0, SSM: SSMNormal}, nil
	}
	span := base / 200
	if span < 1 {
		span = 1
	}
	data := base + int32(addr.SDI) + int32(s.rng.Intn(int(2*span+1))) - span
	return Word{Label: addr.Label, Data: data, SSM: SSMNormal}, nil
}

// FailInit arranges for Init on src to fail until cleared.
func (s *Sim) FailInit(src telemetry.SourceID, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src.Valid() {
		s.failInit[src] = fail
	}
}

// FailReads makes the next n reads from src fail. n < 0 fails every read
// until FailReads(src, 0).
func (s *Sim) FailReads(src telemetry.SourceID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src.Valid() {
		s.failReads[src] = n
	}
}

// SetWord pins the word returned for one address on one source.
func (s *Sim) SetWord(src telemetry.SourceID, addr Address, w Word) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words[simKey{src, addr}] = w
}

// ClearWord removes a pinned word.
func (s *Sim) ClearWord(src telemetry.SourceID, addr Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.words, simKey{src, addr})
}
