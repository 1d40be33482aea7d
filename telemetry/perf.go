package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of the engine step.
type Phase uint8

// Engine step phases, in execution order.
const (
	PhaseGesture Phase = iota
	PhaseRaycast
	PhaseSpawn
	PhaseIntegrate
	PhaseBursts
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{"gesture", "raycast", "spawn", "integrate", "bursts", "telemetry"}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// StepLoad is the work one step did.
type StepLoad struct {
	Integrated int           // steady particles written by the integrator
	Owned      int           // buffer slots held by live bursts
	Chunks     int           // integrator chunks; 1 when the pass ran inline
	SlowChunk  time.Duration // longest chunk, which bounds the integrate phase
}

type stepSample struct {
	total  time.Duration
	phases [NumPhases]time.Duration
	load   StepLoad
}

// PerfCollector keeps a ring of per-step phase timings and integrator load.
type PerfCollector struct {
	ring   []stepSample
	next   int
	filled int

	cur        stepSample
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over the last window steps.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		ring: make([]stepSample, window),
		now:  time.Now,
	}
}

// StartStep begins timing a new engine step.
func (p *PerfCollector) StartStep() {
	p.cur = stepSample{}
	p.stepStart = p.now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	t := p.now()
	p.closePhase(t)
	p.phase = ph
	p.phaseStart = t
	p.inPhase = true
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += t.Sub(p.phaseStart)
	}
}

// RecordLoad attaches the step's integrator load to the current sample.
func (p *PerfCollector) RecordLoad(l StepLoad) {
	p.cur.load = l
}

// EndStep closes the step and stores it in the ring.
func (p *PerfCollector) EndStep() {
	t := p.now()
	p.closePhase(t)
	p.inPhase = false
	p.cur.total = t.Sub(p.stepStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// PerfStats aggregates the window.
type PerfStats struct {
	Steps    int
	AvgStep  time.Duration
	MaxStep  time.Duration
	Phase    [NumPhases]time.Duration // mean per step
	PhasePct [NumPhases]float64       // share of the mean step

	// ParticlesPerSec is steady particles integrated per second of integrate time.
	ParticlesPerSec float64
	AvgOwned        float64
	AvgChunks       float64
	AvgSlowChunk    time.Duration
	// PoolOverhead is the mean integrate time not spent in the slowest chunk:
	// dispatch, joins and mask rebuild.
	PoolOverhead time.Duration
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	s.Steps = p.filled
	if p.filled == 0 {
		return s
	}

	var total, slow time.Duration
	var integrated, owned, chunks int
	for _, smp := range p.ring[:p.filled] {
		total += smp.total
		s.MaxStep = max(s.MaxStep, smp.total)
		for ph, d := range smp.phases {
			s.Phase[ph] += d
		}
		integrated += smp.load.Integrated
		owned += smp.load.Owned
		chunks += smp.load.Chunks
		slow += smp.load.SlowChunk
	}

	n := time.Duration(p.filled)
	integrate := s.Phase[PhaseIntegrate]
	if integrate > 0 {
		s.ParticlesPerSec = float64(integrated) / integrate.Seconds()
	}

	s.AvgStep = total / n
	for ph := range s.Phase {
		s.Phase[ph] /= n
		if s.AvgStep > 0 {
			s.PhasePct[ph] = float64(s.Phase[ph]) / float64(s.AvgStep) * 100
		}
	}
	s.AvgOwned = float64(owned) / float64(p.filled)
	s.AvgChunks = float64(chunks) / float64(p.filled)
	s.AvgSlowChunk = slow / n
	s.PoolOverhead = max(0, s.Phase[PhaseIntegrate]-s.AvgSlowChunk)
	return s
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("steps", s.Steps),
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Float64("mparticles_per_sec", s.ParticlesPerSec/1e6),
		slog.Float64("avg_owned", s.AvgOwned),
		slog.Float64("chunks", s.AvgChunks),
		slog.Int64("slow_chunk_us", s.AvgSlowChunk.Microseconds()),
		slog.Int64("pool_overhead_us", s.PoolOverhead.Microseconds()),
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd       int64   `csv:"window_end"`
	AvgStepUS       int64   `csv:"avg_step_us"`
	MaxStepUS       int64   `csv:"max_step_us"`
	GesturePct      float64 `csv:"gesture_pct"`
	RaycastPct      float64 `csv:"raycast_pct"`
	SpawnPct        float64 `csv:"spawn_pct"`
	IntegratePct    float64 `csv:"integrate_pct"`
	BurstsPct       float64 `csv:"bursts_pct"`
	TelemetryPct    float64 `csv:"telemetry_pct"`
	ParticlesPerSec float64 `csv:"particles_per_sec"`
	AvgOwned        float64 `csv:"avg_owned"`
	AvgChunks       float64 `csv:"chunks"`
	SlowChunkUS     int64   `csv:"slow_chunk_us"`
	PoolOverheadUS  int64   `csv:"pool_overhead_us"`
}

// ToCSV flattens the stats for perf.csv.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgStepUS:       s.AvgStep.Microseconds(),
		MaxStepUS:       s.MaxStep.Microseconds(),
		GesturePct:      s.PhasePct[PhaseGesture],
		RaycastPct:      s.PhasePct[PhaseRaycast],
		SpawnPct:        s.PhasePct[PhaseSpawn],
		IntegratePct:    s.PhasePct[PhaseIntegrate],
		BurstsPct:       s.PhasePct[PhaseBursts],
		TelemetryPct:    s.PhasePct[PhaseTelemetry],
		ParticlesPerSec: s.ParticlesPerSec,
		AvgOwned:        s.AvgOwned,
		AvgChunks:       s.AvgChunks,
		SlowChunkUS:     s.AvgSlowChunk.Microseconds(),
		PoolOverheadUS:  s.PoolOverhead.Microseconds(),
	}
}
