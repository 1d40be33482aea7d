package game

import (
	"log/slog"

	"github.com/pthm-cable/bloomfield/camera"
	"github.com/pthm-cable/bloomfield/gesture"
	"github.com/pthm-cable/bloomfield/systems"
	"github.com/pthm-cable/bloomfield/telemetry"
)

// Input is everything the host feeds into one frame.
type Input struct {
	// Gesture is a detection sample, or nil when none arrived this frame.
	// When nil the engine polls its Source, if any.
	Gesture *gesture.Frame

	// Pointer position in NDC. Pointer false means the pointer left the view.
	Pointer            bool
	PointerX, PointerY float32

	// Trigger requests a burst at the current hover point.
	Trigger bool
}

// Step advances the cloud by one rendered frame. The mode, the debounce
// counter and the blend targets change only when a new gesture sample
// arrives. Weights and bloom keep easing toward the held targets on every
// frame, so a late sample never makes the cloud jump.
func (e *Engine) Step(in Input) {
	e.perf.StartStep()

	e.perf.StartPhase(telemetry.PhaseGesture)
	e.observeGesture(in.Gesture)
	e.machine.Step()

	e.perf.StartPhase(telemetry.PhaseRaycast)
	e.updatePointer(in)

	e.perf.StartPhase(telemetry.PhaseSpawn)
	e.spawnPending()

	e.perf.StartPhase(telemetry.PhaseIntegrate)
	e.mask.Reset()
	e.bursts.MarkOwned(e.mask)
	hover := e.pointer.Point()
	fc := e.integrator.Prepare(systems.FrameState{
		Frame:   e.frame,
		Weights: e.machine.Weights(),
		Bloom:   e.machine.Bloom(),
		Hover:   e.hovering,
		HoverX:  hover.X(),
		HoverY:  hover.Y(),
		HoverZ:  hover.Z(),
	})
	chunks, slowest := e.integrateSteady(fc)
	n := e.integrator.Len()
	e.perf.RecordLoad(telemetry.StepLoad{
		Integrated: n - e.mask.CountBelow(n),
		Owned:      e.mask.Count(),
		Chunks:     chunks,
		SlowChunk:  slowest,
	})

	e.perf.StartPhase(telemetry.PhaseBursts)
	if n := e.bursts.Update(); n > 0 {
		e.recordEvent(telemetry.NewBurstExpiredEvent(e.frame, n))
	}
	e.buf.MarkChanged()

	e.perf.StartPhase(telemetry.PhaseTelemetry)
	e.collector.RecordFrame(e.machine.Bloom(), e.bursts.Count())
	e.frame++
	e.flushTelemetry()

	e.perf.EndStep()
}

// observeGesture feeds a sample to the state machine and queues pinch bursts.
func (e *Engine) observeGesture(f *gesture.Frame) {
	if f == nil && e.source != nil {
		if polled, ok := e.source.Poll(); ok {
			f = &polled
		}
	}
	if f == nil {
		return
	}

	res := e.machine.Observe(*f)
	if !res.Accepted {
		return
	}
	e.collector.RecordSample()

	if res.Changed {
		slog.Info("mode change", "frame", e.frame, "from", res.From, "to", res.Mode, "counter", e.machine.Counter())
		e.recordEvent(telemetry.NewModeChangeEvent(e.frame, res.From.String(), res.Mode.String()))
	}

	for _, p := range res.Pinches {
		e.recordEvent(telemetry.NewPinchEvent(e.frame, p.Hand, p.Point.X, p.Point.Y))
		nx, ny := camera.ImageToNDC(p.Point.X, p.Point.Y)
		if pt, ok := e.pinchRay.Cast(nx, ny); ok {
			e.QueueBurst(pt.X(), pt.Y(), pt.Z())
		}
	}
}

// updatePointer raycasts the pointer onto the particle plane.
func (e *Engine) updatePointer(in Input) {
	if !in.Pointer {
		e.hovering = false
		e.pointer.Reset()
		return
	}
	// A miss holds the last point on the plane, so hover stays on the held
	// point once any cast has landed.
	e.pointer.Cast(in.PointerX, in.PointerY)
	e.hovering = e.pointer.Hit()
	if in.Trigger && e.hovering {
		p := e.pointer.Point()
		e.QueueBurst(p.X(), p.Y(), p.Z())
	}
}

// spawnPending launches queued bursts. Rejections are logged and dropped.
func (e *Engine) spawnPending() {
	for _, p := range e.pending {
		_, _ = e.Spawn(p[0], p[1], p[2])
	}
	e.pending = e.pending[:0]
}
