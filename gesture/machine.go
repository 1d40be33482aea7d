package gesture

import (
	"github.com/pthm-cable/bloomfield/config"
	"github.com/pthm-cable/bloomfield/shapes"
)

// Mode is the gesture-selected display state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeFlower
	ModeSpiral
	ModeEmblem
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeFlower:
		return "flower"
	case ModeSpiral:
		return "spiral"
	case ModeEmblem:
		return "emblem"
	}
	return "unknown"
}

// Pinch is a pinch-closed rising edge at the thumb/index midpoint.
type Pinch struct {
	Hand  string
	Point Point
}

// Result describes what one sample changed.
type Result struct {
	Accepted bool // false for duplicate or stale timestamps
	Mode     Mode
	From     Mode // previous mode when Changed
	Changed  bool
	Pinches  []Pinch // valid until the next Observe
}

type pinchState struct {
	closed   bool
	cooldown int
}

// Machine is the gesture state machine. Observe consumes detection samples and
// sets targets; Step eases the blend weights and bloom toward them once per
// rendered frame. A single goroutine owns it.
type Machine struct {
	cls  Classifier
	cfg  config.GestureConfig
	wAlp float32 // weight smoothing
	bAlp float32 // bloom smoothing

	bloomClosed float32
	bloomOpen   float32
	bloomMax    float32

	counter int
	emblem  bool
	mode    Mode

	targets     [shapes.NumShapes]float32
	weights     [shapes.NumShapes]float32
	bloomTarget float32
	bloom       float32

	seen    bool
	lastTS  int64
	samples int64

	pinch   map[string]*pinchState
	usable  []*Hand
	pinches []Pinch
}

// NewMachine creates a machine in idle mode showing the flower.
func NewMachine(cfg *config.Config) *Machine {
	m := &Machine{
		cls:         NewClassifier(cfg.Gesture),
		cfg:         cfg.Gesture,
		wAlp:        float32(cfg.Blend.WeightSmoothing),
		bAlp:        float32(cfg.Bloom.Smoothing),
		bloomClosed: float32(cfg.Bloom.PinchClosed),
		bloomOpen:   float32(cfg.Bloom.PinchOpen),
		bloomMax:    float32(cfg.Bloom.Max),
		pinch:       make(map[string]*pinchState),
	}
	m.targets[shapes.ShapeFlower] = 1
	m.weights[shapes.ShapeFlower] = 1
	return m
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Counter returns the palms-merged debounce counter.
func (m *Machine) Counter() int { return m.counter }

// Weights returns the smoothed per-shape blend weights.
func (m *Machine) Weights() [shapes.NumShapes]float32 { return m.weights }

// Targets returns the weights the machine is easing toward.
func (m *Machine) Targets() [shapes.NumShapes]float32 { return m.targets }

// Bloom returns the smoothed bloom factor in [0, max].
func (m *Machine) Bloom() float32 { return m.bloom }

// Samples returns the number of accepted samples.
func (m *Machine) Samples() int64 { return m.samples }

// Observe consumes one detection sample. Samples whose timestamp does not
// advance past the last accepted one are ignored.
func (m *Machine) Observe(f Frame) Result {
	if m.seen && f.Timestamp <= m.lastTS {
		return Result{Mode: m.mode}
	}
	m.seen = true
	m.lastTS = f.Timestamp
	m.samples++

	m.usable = m.usable[:0]
	for i := range f.Hands {
		if m.cls.Usable(&f.Hands[i]) {
			m.usable = append(m.usable, &f.Hands[i])
		}
	}

	merged := len(m.usable) >= 2 && m.cls.PalmsMerged(m.usable[0], m.usable[1])
	if merged {
		m.counter = min(m.cfg.DebounceCap, m.counter+1)
	} else {
		m.counter = max(0, m.counter-1)
	}
	if !m.emblem && m.counter > m.cfg.DebounceEnter {
		m.emblem = true
	} else if m.emblem && m.counter < m.cfg.DebounceExit {
		m.emblem = false
	}

	sword := false
	if !m.emblem {
		for _, h := range m.usable {
			if m.cls.Sword(h) {
				sword = true
				break
			}
		}
	}

	prev := m.mode
	switch {
	case m.emblem:
		m.mode = ModeEmblem
	case sword:
		m.mode = ModeSpiral
	case len(m.usable) > 0:
		m.mode = ModeFlower
	default:
		m.mode = ModeIdle
	}
	m.setTargets()

	res := Result{Accepted: true, Mode: m.mode, From: prev, Changed: prev != m.mode}
	res.Pinches = m.detectPinches()
	return res
}

func (m *Machine) setTargets() {
	m.targets = [shapes.NumShapes]float32{}
	m.bloomTarget = 0
	switch m.mode {
	case ModeEmblem:
		m.targets[shapes.ShapeEmblem] = 1
	case ModeSpiral:
		m.targets[shapes.ShapeSpiral] = 1
	case ModeFlower:
		m.targets[shapes.ShapeFlower] = 1
		m.bloomTarget = m.bloomFor(m.primary())
	default:
		m.targets[shapes.ShapeFlower] = 1
	}
}

// primary returns the most confident usable hand.
func (m *Machine) primary() *Hand {
	var best *Hand
	for _, h := range m.usable {
		if best == nil || h.Score > best.Score {
			best = h
		}
	}
	return best
}

// bloomFor maps a hand's pinch distance linearly onto [0, max].
func (m *Machine) bloomFor(h *Hand) float32 {
	if h == nil {
		return 0
	}
	t := (h.PinchDistance() - m.bloomClosed) / (m.bloomOpen - m.bloomClosed)
	return clamp(t, 0, 1) * m.bloomMax
}

// detectPinches fires once per closing edge per hand, then waits out the cooldown.
func (m *Machine) detectPinches() []Pinch {
	m.pinches = m.pinches[:0]
	trigger := float32(m.cfg.PinchTrigger)

	for _, st := range m.pinch {
		if st.cooldown > 0 {
			st.cooldown--
		}
	}
	for _, h := range m.usable {
		key := h.Handedness
		st, ok := m.pinch[key]
		if !ok {
			st = &pinchState{}
			m.pinch[key] = st
		}
		closed := h.PinchDistance() < trigger
		if closed && !st.closed && st.cooldown == 0 && m.mode == ModeFlower {
			m.pinches = append(m.pinches, Pinch{Hand: key, Point: h.PinchPoint()})
			st.cooldown = m.cfg.PinchCooldown
		}
		st.closed = closed
	}
	if len(m.pinches) == 0 {
		return nil
	}
	return m.pinches
}

// Step eases weights and bloom one frame toward their targets. It runs every
// frame, sample or not; only Observe moves the targets.
func (m *Machine) Step() {
	for s := range m.weights {
		m.weights[s] = clamp(m.weights[s]+(m.targets[s]-m.weights[s])*m.wAlp, 0, 1)
	}
	m.bloom = clamp(m.bloom+(m.bloomTarget-m.bloom)*m.bAlp, 0, m.bloomMax)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
