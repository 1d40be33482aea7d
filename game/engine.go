// Package game wires the shapes, gesture machine, integrator and bursts into
// one per-frame engine step.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/bloomfield/camera"
	"github.com/pthm-cable/bloomfield/components"
	"github.com/pthm-cable/bloomfield/config"
	"github.com/pthm-cable/bloomfield/gesture"
	"github.com/pthm-cable/bloomfield/particles"
	"github.com/pthm-cable/bloomfield/shapes"
	"github.com/pthm-cable/bloomfield/systems"
	"github.com/pthm-cable/bloomfield/telemetry"
)

// ErrShapeMismatch is returned when a shape set does not cover the configured particle count.
var ErrShapeMismatch = errors.New("shape buffers do not match particle count")

// Options holds engine configuration beyond the config file.
type Options struct {
	Seed          int64 // 0 = time-based
	LogStats      bool
	OutputDir     string
	Source        gesture.Source // polled when a step carries no gesture sample
	StatsCallback func(telemetry.WindowStats)
}

// Engine owns the particle buffer and every pass that writes it.
// A single goroutine drives Step; the worker pool is internal to it.
type Engine struct {
	cfg *config.Config
	rng *rand.Rand

	set        shapes.Set
	buf        *particles.Buffer
	alloc      *particles.Allocator
	mask       *particles.OwnedMask
	integrator *systems.Integrator
	bursts     *systems.Bursts
	machine    *gesture.Machine
	source     gesture.Source

	cam      *camera.Camera
	pointer  *camera.Raycaster
	pinchRay *camera.Raycaster
	hovering bool
	pending  [][3]float32
	parallel *parallelState
	seed     int64
	frame    int64

	// Telemetry
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	output        *telemetry.OutputManager
	events        []telemetry.Event
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// NewEngine validates cfg, generates every shape and builds an engine.
func NewEngine(cfg *config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	opts.Seed = resolveSeed(opts.Seed)
	set := shapes.Generate(cfg, rand.New(rand.NewSource(opts.Seed)))
	return NewEngineWithShapes(cfg, set, opts)
}

// NewEngineWithShapes builds an engine over a caller-supplied shape set.
func NewEngineWithShapes(cfg *config.Config, set shapes.Set, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	n := cfg.Particles.Count
	for s, b := range set {
		if b == nil || b.Len() != n {
			return nil, fmt.Errorf("%w: %s", ErrShapeMismatch, shapes.Shape(s))
		}
	}

	seed := resolveSeed(opts.Seed)
	rng := rand.New(rand.NewSource(seed))

	buf := particles.NewBuffer(cfg.Derived.BufferLen)
	flower := set[shapes.ShapeFlower]
	buf.Load(flower.Positions, flower.Colors)
	for i := n; i < buf.Len(); i++ {
		buf.Park(i)
	}

	alloc := particles.NewAllocator(cfg.Derived.ReserveStart, cfg.Particles.ReserveSize)
	cam := camera.New(cfg.Camera, float32(cfg.Screen.Width), float32(cfg.Screen.Height))
	planeZ := float32(cfg.Camera.PlaneZ)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	e := &Engine{
		cfg:           cfg,
		rng:           rng,
		set:           set,
		buf:           buf,
		alloc:         alloc,
		mask:          particles.NewOwnedMask(cfg.Derived.BufferLen),
		integrator:    systems.NewIntegrator(cfg, set, rng),
		bursts:        systems.NewBursts(cfg.Burst, buf, alloc, n, rng),
		machine:       gesture.NewMachine(cfg),
		source:        opts.Source,
		cam:           cam,
		pointer:       camera.NewRaycaster(cam, planeZ),
		pinchRay:      camera.NewRaycaster(cam, planeZ),
		parallel:      newParallelState(cfg.Parallel.Workers),
		seed:          seed,
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		output:        output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	buf.MarkChanged()

	slog.Info("engine ready",
		"particles", n,
		"buffer_len", cfg.Derived.BufferLen,
		"reserve_start", cfg.Derived.ReserveStart,
		"reserve_size", cfg.Particles.ReserveSize,
		"slots_per_burst", cfg.Derived.SlotsPerBurst,
		"workers", e.parallel.numWorkers,
		"seed", seed,
	)
	return e, nil
}

func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// Buffer returns the shared particle buffer. Its slices keep their identity;
// Version changes each step.
func (e *Engine) Buffer() *particles.Buffer { return e.buf }

// Camera returns the camera used for raycasting.
func (e *Engine) Camera() *camera.Camera { return e.cam }

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Frame returns the number of completed steps.
func (e *Engine) Frame() int64 { return e.frame }

// Seed returns the resolved RNG seed.
func (e *Engine) Seed() int64 { return e.seed }

// Machine exposes the gesture state machine for inspection.
func (e *Engine) Machine() *gesture.Machine { return e.machine }

// Bursts returns the number of live fireworks.
func (e *Engine) Bursts() int { return e.bursts.Count() }

// EachBurst visits every live firework. fn must not retain fw.
func (e *Engine) EachBurst(fn func(fw *components.Firework)) { e.bursts.Each(fn) }

// ReserveOccupancy writes the held fraction of each reserve span into dst and
// returns the cursor's offset into the reserve.
func (e *Engine) ReserveOccupancy(dst []float32) int {
	e.alloc.Occupancy(dst)
	return e.alloc.Cursor()
}

// Perf returns the performance collector.
func (e *Engine) Perf() *telemetry.PerfCollector { return e.perf }

// Spawn launches a firework immediately at a world point.
func (e *Engine) Spawn(x, y, z float32) (uint32, error) {
	id, err := e.bursts.Spawn(x, y, z)
	if err != nil {
		e.recordEvent(telemetry.NewBurstRejectedEvent(e.frame, x, y, z))
		slog.Warn("burst rejected", "frame", e.frame, "error", err)
		return 0, err
	}
	e.recordEvent(telemetry.NewBurstSpawnEvent(e.frame, id, x, y, z))
	return id, nil
}

// QueueBurst schedules a firework for the spawn phase of the next step.
func (e *Engine) QueueBurst(x, y, z float32) {
	e.pending = append(e.pending, [3]float32{x, y, z})
}

// Status is a read-only summary of engine state.
type Status struct {
	Frame       int64
	Mode        gesture.Mode
	Weights     [shapes.NumShapes]float32
	Bloom       float32
	Counter     int
	LiveBursts  int
	ReserveHeld int
	Hovering    bool
	HoverPoint  [3]float32
}

// Status returns the state after the last step.
func (e *Engine) Status() Status {
	p := e.pointer.Point()
	return Status{
		Frame:       e.frame,
		Mode:        e.machine.Mode(),
		Weights:     e.machine.Weights(),
		Bloom:       e.machine.Bloom(),
		Counter:     e.machine.Counter(),
		LiveBursts:  e.bursts.Count(),
		ReserveHeld: e.alloc.Held(),
		Hovering:    e.hovering,
		HoverPoint:  [3]float32{p.X(), p.Y(), p.Z()},
	}
}

// Close stops the worker pool and flushes output files.
func (e *Engine) Close() error {
	e.parallel.stopWorkers()
	return e.output.Close()
}
