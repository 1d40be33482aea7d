package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bloomfield/components"
	"github.com/pthm-cable/bloomfield/config"
	"github.com/pthm-cable/bloomfield/particles"
)

// ErrBurstLimit is returned when max_concurrent fireworks are already alive.
var ErrBurstLimit = errors.New("concurrent burst limit reached")

// Bursts spawns and ages fireworks on slots borrowed from the transient reserve.
// Each live firework is an entity in its own ECS world.
type Bursts struct {
	cfg    config.BurstConfig
	buf    *particles.Buffer
	alloc  *particles.Allocator
	steady int // indices at or beyond this have no shape target and are parked when free
	rng    *rand.Rand

	world    *ecs.World
	fwMap    *ecs.Map1[components.Firework]
	fwFilter *ecs.Filter1[components.Firework]

	nextID  uint32
	live    int
	expired []expiredBurst
}

type expiredBurst struct {
	entity ecs.Entity
	id     uint32
	slots  []int
}

// NewBursts creates the burst subsystem.
func NewBursts(cfg config.BurstConfig, buf *particles.Buffer, alloc *particles.Allocator, steady int, rng *rand.Rand) *Bursts {
	world := ecs.NewWorld()
	return &Bursts{
		cfg:      cfg,
		buf:      buf,
		alloc:    alloc,
		steady:   steady,
		rng:      rng,
		world:    world,
		fwMap:    ecs.NewMap1[components.Firework](world),
		fwFilter: ecs.NewFilter1[components.Firework](world),
	}
}

// SlotsPerBurst returns the number of indices one firework borrows.
func (s *Bursts) SlotsPerBurst() int {
	return s.cfg.SparkCount * (1 + s.cfg.TrailLength)
}

// Count returns the number of live fireworks.
func (s *Bursts) Count() int { return s.live }

// Spawn launches a firework at the given world point. It fails with
// ErrBurstLimit or particles.ErrReserveExhausted, leaving the buffer untouched,
// if the firework cannot be placed.
func (s *Bursts) Spawn(x, y, z float32) (uint32, error) {
	if s.live >= s.cfg.MaxConcurrent {
		return 0, fmt.Errorf("%w: %d alive", ErrBurstLimit, s.live)
	}
	s.nextID++
	if s.nextID == 0 {
		s.nextID = 1
	}
	id := s.nextID

	slots, err := s.alloc.Alloc(id, s.SlotsPerBurst())
	if err != nil {
		return 0, fmt.Errorf("spawning burst %d: %w", id, err)
	}

	base := colorful.Hsv(s.rng.Float64()*360, 0.55, 1)
	fw := components.Firework{
		ID:     id,
		R:      float32(base.R),
		G:      float32(base.G),
		B:      float32(base.B),
		Sparks: make([]components.Spark, s.cfg.SparkCount),
		Slots:  slots,
	}

	per := 1 + s.cfg.TrailLength
	for k := range fw.Sparks {
		sp := &fw.Sparks[k]
		sp.Head = slots[k*per]
		sp.Trail = slots[k*per+1 : (k+1)*per]

		// Uniform direction on the sphere
		dz := 2*s.rng.Float64() - 1
		phi := s.rng.Float64() * 2 * math.Pi
		r := math.Sqrt(1 - dz*dz)
		speed := s.cfg.MinSpeed + (s.cfg.MaxSpeed-s.cfg.MinSpeed)*s.rng.Float64()
		sp.VelX = float32(r * math.Cos(phi) * speed)
		sp.VelY = float32(r * math.Sin(phi) * speed)
		sp.VelZ = float32(dz * speed)
	}

	for _, i := range slots {
		s.buf.SetPosition(i, x, y, z)
	}
	s.paint(&fw)

	s.fwMap.NewEntity(&fw)
	s.live++
	return id, nil
}

// Update ages every live firework by one frame, moves heads, shifts trails and
// removes fireworks whose age reached the configured lifetime. It returns the
// number of fireworks removed.
func (s *Bursts) Update() int {
	gravity := float32(s.cfg.Gravity)
	drag := float32(s.cfg.Drag)
	s.expired = s.expired[:0]

	query := s.fwFilter.Query()
	for query.Next() {
		fw := query.Get()
		fw.Age++

		for k := range fw.Sparks {
			sp := &fw.Sparks[k]

			// Oldest segment first so every segment reads last frame's predecessor
			for t := len(sp.Trail) - 1; t > 0; t-- {
				x, y, z := s.buf.Position(sp.Trail[t-1])
				s.buf.SetPosition(sp.Trail[t], x, y, z)
			}
			hx, hy, hz := s.buf.Position(sp.Head)
			if len(sp.Trail) > 0 {
				s.buf.SetPosition(sp.Trail[0], hx, hy, hz)
			}

			sp.VelY -= gravity
			sp.VelX *= drag
			sp.VelY *= drag
			sp.VelZ *= drag
			s.buf.SetPosition(sp.Head, hx+sp.VelX, hy+sp.VelY, hz+sp.VelZ)
		}
		s.paint(fw)

		if int(fw.Age) >= s.cfg.Lifetime {
			s.expired = append(s.expired, expiredBurst{entity: query.Entity(), id: fw.ID, slots: fw.Slots})
		}
	}

	for _, e := range s.expired {
		s.alloc.Release(e.id, e.slots)
		for _, i := range e.slots {
			if i >= s.steady {
				s.buf.Park(i)
			}
		}
		s.world.RemoveEntity(e.entity)
		s.live--
	}
	return len(s.expired)
}

// paint writes head and trail colors. Heads fade with the square root of the
// remaining life; trail segments additionally fade with distance from the head.
func (s *Bursts) paint(fw *components.Firework) {
	life := 1 - float32(fw.Age)/float32(s.cfg.Lifetime)
	life = clamp01(life)
	head := math32.Sqrt(life)
	span := float32(s.cfg.TrailLength + 1)

	for k := range fw.Sparks {
		sp := &fw.Sparks[k]
		s.buf.SetColor(sp.Head, clamp01(fw.R*head+0.3*head), clamp01(fw.G*head+0.3*head), clamp01(fw.B*head+0.3*head))
		for t, i := range sp.Trail {
			f := life * (1 - float32(t+1)/span)
			s.buf.SetColor(i, fw.R*f, fw.G*f, fw.B*f)
		}
	}
}

// MarkOwned flags every index held by a live firework.
func (s *Bursts) MarkOwned(mask *particles.OwnedMask) {
	query := s.fwFilter.Query()
	for query.Next() {
		for _, i := range query.Get().Slots {
			mask.Mark(i)
		}
	}
}

// Each calls fn for every live firework. fn must not spawn or remove fireworks.
func (s *Bursts) Each(fn func(fw *components.Firework)) {
	query := s.fwFilter.Query()
	for query.Next() {
		fn(query.Get())
	}
}
