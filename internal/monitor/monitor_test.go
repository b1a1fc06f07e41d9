package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/enginewatch/enginewatch/internal/acquisition"
	"github.com/enginewatch/enginewatch/internal/alerts"
	"github.com/enginewatch/enginewatch/internal/bus"
	"github.com/enginewatch/enginewatch/internal/events"
	"github.com/enginewatch/enginewatch/internal/groundlink"
	"github.com/enginewatch/enginewatch/internal/limits"
	"github.com/enginewatch/enginewatch/internal/telemetry"
	"github.com/enginewatch/enginewatch/internal/validate"
)

// captureLink records every digest it receives.
type captureLink struct {
	mu      sync.Mutex
	digests [][]groundlink.Summary
}

func (c *captureLink) PublishSnapshot(_ time.Time, engines []groundlink.Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]groundlink.Summary, len(engines))
	copy(cp, engines)
	c.digests = append(c.digests, cp)
	return nil
}

func (c *captureLink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.digests)
}

type system struct {
	sim    *bus.Sim
	mgr    *acquisition.Manager
	alerts *alerts.Engine
}

func newSystem(t *testing.T) *system {
	t.Helper()
	sim := bus.NewSim(11)
	mgr := acquisition.New(sim, validate.New(limits.Static{}, events.Nop{}), events.Nop{})
	cfg := &acquisition.Config{
		SampleRateHz: 50,
		Engines:      2,
		Sources: []acquisition.SourceConfig{
			{ID: 0, Name: "ARINC-L", Primary: true},
			{ID: 1, Name: "ARINC-R"},
			{ID: 2, Name: "VIB-A", Primary: true},
			{ID: 3, Name: "VIB-B"},
		},
	}
	if err := mgr.Init(cfg); err != nil {
		t.Fatalf("init: %v", err)
	}
	eng := alerts.New(alerts.Config{}, nil, nil, events.Nop{})
	return &system{sim: sim, mgr: mgr, alerts: eng}
}

func TestTick_RunsOneCycle(t *testing.T) {
	s := newSystem(t)
	m := New(s.mgr, s.alerts, nil, events.Nop{}, 0)

	m.Tick()

	if got := s.mgr.Stats().Cycles; got != 1 {
		t.Errorf("cycles: got %d, want 1", got)
	}
}

func TestTick_FeedsAlertEngine(t *testing.T) {
	s := newSystem(t)
	m := New(s.mgr, s.alerts, nil, events.Nop{}, 0)

	// Pin engine 1's EGT into the caution band on the primary source.
	addr := bus.Address{Label: bus.LabelEGT, SDI: 0}
	s.sim.SetWord(0, addr, bus.Word{Label: bus.LabelEGT, Data: 960, SSM: bus.SSMNormal})

	m.Tick()

	active := s.alerts.Active()
	if len(active) != 1 {
		t.Fatalf("active alerts: got %d, want 1", len(active))
	}
	if active[0].Message != "ENG 1 EGT HIGH" {
		t.Errorf("message: got %q, want ENG 1 EGT HIGH", active[0].Message)
	}
}

func TestTick_DownlinkCadence(t *testing.T) {
	s := newSystem(t)
	link := &captureLink{}
	m := New(s.mgr, s.alerts, link, events.Nop{}, 2)

	for i := 0; i < 5; i++ {
		m.Tick()
	}

	// Digests on ticks 2 and 4.
	if got := link.count(); got != 2 {
		t.Fatalf("digests: got %d, want 2", got)
	}

	link.mu.Lock()
	first := link.digests[0]
	link.mu.Unlock()
	if len(first) != 2 {
		t.Fatalf("digest engines: got %d, want 2", len(first))
	}
	for i, want := range []int{1, 2} {
		if first[i].Engine != want {
			t.Errorf("digest[%d].Engine = %d, want %d", i, first[i].Engine, want)
		}
	}
	if first[0].Health == "" || first[0].Version == 0 {
		t.Errorf("digest[0] incomplete: %+v", first[0])
	}
	if first[0].N1 <= 0 || first[0].EGT <= 0 {
		t.Errorf("digest[0] parameters not populated: %+v", first[0])
	}
}

func TestTick_NoDownlinkWhenDisabled(t *testing.T) {
	s := newSystem(t)
	link := &captureLink{}
	m := New(s.mgr, s.alerts, link, events.Nop{}, 0)

	for i := 0; i < 3; i++ {
		m.Tick()
	}

	if got := link.count(); got != 0 {
		t.Errorf("digests: got %d, want 0 with downlink_every=0", got)
	}
}

func TestTick_UninitializedManagerDoesNotPanic(t *testing.T) {
	mgr := acquisition.New(bus.NewSim(1), validate.New(limits.Static{}, events.Nop{}), events.Nop{})
	eng := alerts.New(alerts.Config{}, nil, nil, events.Nop{})
	m := New(mgr, eng, nil, events.Nop{}, 0)

	m.Tick() // must log and return, not panic

	if got := mgr.Stats().Cycles; got != 0 {
		t.Errorf("cycles: got %d, want 0", got)
	}
}

func TestRun_PacesCyclesUntilCancelled(t *testing.T) {
	s := newSystem(t)
	m := New(s.mgr, s.alerts, nil, events.Nop{}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// 50 Hz gives a 20ms period; a couple of cycles land quickly.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.mgr.Stats().Cycles >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}

	if got := s.mgr.Stats().Cycles; got < 2 {
		t.Errorf("cycles: got %d, want >= 2", got)
	}
}

func TestRun_NotInitialized(t *testing.T) {
	mgr := acquisition.New(bus.NewSim(1), validate.New(limits.Static{}, events.Nop{}), events.Nop{})
	eng := alerts.New(alerts.Config{}, nil, nil, events.Nop{})
	m := New(mgr, eng, nil, events.Nop{}, 0)

	err := m.Run(context.Background())
	if !errors.Is(err, telemetry.ErrNotInitialized) {
		t.Fatalf("Run error = %v, want ErrNotInitialized", err)
	}
}
