package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int) (*PerfCollector, *fakeClock) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(window)
	pc.now = clk.now
	return pc, clk
}

// step records one engine step with the given phase durations and load.
func step(pc *PerfCollector, clk *fakeClock, phases map[Phase]time.Duration, load StepLoad) {
	pc.StartStep()
	for ph := PhaseGesture; ph < NumPhases; ph++ {
		pc.StartPhase(ph)
		clk.advance(phases[ph])
	}
	pc.RecordLoad(load)
	pc.EndStep()
}

func TestPerfCollectorPhaseTiming(t *testing.T) {
	pc, clk := newTestCollector(10)

	for i := 0; i < 4; i++ {
		step(pc, clk, map[Phase]time.Duration{
			PhaseGesture:   100 * time.Microsecond,
			PhaseIntegrate: 300 * time.Microsecond,
		}, StepLoad{})
	}

	stats := pc.Stats()
	if stats.Steps != 4 {
		t.Errorf("expected 4 steps, got %d", stats.Steps)
	}
	if stats.AvgStep != 400*time.Microsecond {
		t.Errorf("expected avg step 400us, got %v", stats.AvgStep)
	}
	if stats.Phase[PhaseIntegrate] != 300*time.Microsecond {
		t.Errorf("expected integrate 300us, got %v", stats.Phase[PhaseIntegrate])
	}
	if math.Abs(stats.PhasePct[PhaseIntegrate]-75) > 1e-9 {
		t.Errorf("expected integrate share 75%%, got %f", stats.PhasePct[PhaseIntegrate])
	}
	if stats.Phase[PhaseBursts] != 0 {
		t.Errorf("expected idle bursts phase, got %v", stats.Phase[PhaseBursts])
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc, clk := newTestCollector(3)

	// Three slow steps are pushed out by three fast ones
	for i := 0; i < 3; i++ {
		step(pc, clk, map[Phase]time.Duration{PhaseBursts: 9 * time.Millisecond}, StepLoad{})
	}
	for i := 0; i < 3; i++ {
		step(pc, clk, map[Phase]time.Duration{PhaseBursts: time.Millisecond}, StepLoad{})
	}

	stats := pc.Stats()
	if stats.Steps != 3 {
		t.Errorf("expected window of 3, got %d", stats.Steps)
	}
	if stats.MaxStep != time.Millisecond {
		t.Errorf("expected old slow steps evicted, max step %v", stats.MaxStep)
	}
}

func TestPerfCollectorIntegratorLoad(t *testing.T) {
	pc, clk := newTestCollector(10)

	tests := []StepLoad{
		{Integrated: 100000, Owned: 200, Chunks: 4, SlowChunk: 6 * time.Millisecond},
		{Integrated: 100000, Owned: 400, Chunks: 4, SlowChunk: 8 * time.Millisecond},
	}
	for _, load := range tests {
		step(pc, clk, map[Phase]time.Duration{PhaseIntegrate: 10 * time.Millisecond}, load)
	}

	stats := pc.Stats()
	// 200k particles over 20ms of integrate time
	if math.Abs(stats.ParticlesPerSec-1e7) > 1 {
		t.Errorf("expected 1e7 particles/s, got %f", stats.ParticlesPerSec)
	}
	if stats.AvgOwned != 300 {
		t.Errorf("expected avg owned 300, got %f", stats.AvgOwned)
	}
	if stats.AvgChunks != 4 {
		t.Errorf("expected 4 chunks, got %f", stats.AvgChunks)
	}
	if stats.AvgSlowChunk != 7*time.Millisecond {
		t.Errorf("expected slow chunk 7ms, got %v", stats.AvgSlowChunk)
	}
	if stats.PoolOverhead != 3*time.Millisecond {
		t.Errorf("expected pool overhead 3ms, got %v", stats.PoolOverhead)
	}

	row := stats.ToCSV(20)
	if row.WindowEnd != 20 || row.SlowChunkUS != 7000 || row.PoolOverheadUS != 3000 {
		t.Errorf("unexpected csv row %+v", row)
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	pc, _ := newTestCollector(10)

	stats := pc.Stats()
	if stats.Steps != 0 || stats.AvgStep != 0 || stats.ParticlesPerSec != 0 {
		t.Errorf("expected zero stats for empty collector, got %+v", stats)
	}
}

func TestPhaseNames(t *testing.T) {
	if PhaseIntegrate.String() != "integrate" {
		t.Errorf("expected integrate, got %s", PhaseIntegrate)
	}
	if NumPhases.String() != "unknown" {
		t.Errorf("expected unknown, got %s", NumPhases)
	}
}
