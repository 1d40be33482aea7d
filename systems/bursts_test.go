package systems

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/bloomfield/components"
	"github.com/pthm-cable/bloomfield/config"
	"github.com/pthm-cable/bloomfield/particles"
)

func newTestBursts(steady, reserveStart, reserveSize, sparks, trail int) (*Bursts, *particles.Buffer, *particles.Allocator) {
	cfg := config.Default().Burst
	cfg.SparkCount = sparks
	cfg.TrailLength = trail
	cfg.Lifetime = 90

	buf := particles.NewBuffer(max(steady, reserveStart+reserveSize))
	alloc := particles.NewAllocator(reserveStart, reserveSize)
	return NewBursts(cfg, buf, alloc, steady, rand.New(rand.NewSource(1))), buf, alloc
}

func TestBurstSpawnLayout(t *testing.T) {
	b, buf, _ := newTestBursts(12, 12, 6, 2, 1)

	if _, err := b.Spawn(1, 2, 3); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	heads, trails := 0, 0
	b.Each(func(fw *components.Firework) {
		for _, sp := range fw.Sparks {
			heads++
			trails += len(sp.Trail)
			for _, i := range append([]int{sp.Head}, sp.Trail...) {
				if i < 12 || i > 17 {
					t.Errorf("index %d outside reserve [12,17]", i)
				}
			}
			if x, y, z := buf.Position(sp.Head); x != 1 || y != 2 || z != 3 {
				t.Errorf("expected head at (1,2,3), got (%f,%f,%f)", x, y, z)
			}
		}
	})

	if heads != 2 || trails != 2 {
		t.Errorf("expected 2 heads and 2 trail segments, got %d and %d", heads, trails)
	}
}

func TestBurstAgesOutAfterLifetime(t *testing.T) {
	b, _, alloc := newTestBursts(12, 12, 6, 2, 1)
	b.Spawn(1, 2, 3)

	for f := 0; f < 89; f++ {
		b.Update()
	}
	if b.Count() != 1 {
		t.Fatalf("expected burst alive after 89 frames, got %d", b.Count())
	}

	b.Update()
	if b.Count() != 0 {
		t.Errorf("expected no bursts after 90 frames, got %d", b.Count())
	}
	if alloc.Held() != 0 {
		t.Errorf("expected all slots released, %d still held", alloc.Held())
	}
}

func TestBurstTightCapacity(t *testing.T) {
	// Reserve holds exactly one burst
	b, _, _ := newTestBursts(8, 8, 4, 2, 1)

	if _, err := b.Spawn(0, 0, 0); err != nil {
		t.Fatalf("tight spawn: %v", err)
	}
	if _, err := b.Spawn(0, 0, 0); !errors.Is(err, particles.ErrReserveExhausted) {
		t.Fatalf("expected ErrReserveExhausted while first burst is alive, got %v", err)
	}
	if b.Count() != 1 {
		t.Errorf("rejected spawn changed live count to %d", b.Count())
	}

	for f := 0; f < 90; f++ {
		b.Update()
	}

	if _, err := b.Spawn(0, 0, 0); err != nil {
		t.Errorf("expected slots reusable after aging out, got %v", err)
	}
}

func TestConcurrentBurstsNeverShareIndices(t *testing.T) {
	b, _, _ := newTestBursts(100, 40, 60, 3, 4)

	seen := make(map[int]uint32)
	for k := 0; k < 4; k++ {
		if _, err := b.Spawn(0, 0, 0); err != nil {
			t.Fatalf("spawn %d: %v", k, err)
		}
		for f := 0; f < 10; f++ {
			b.Update()
		}
	}

	b.Each(func(fw *components.Firework) {
		for _, i := range fw.Slots {
			if other, ok := seen[i]; ok {
				t.Errorf("index %d shared by bursts %d and %d", i, other, fw.ID)
			}
			seen[i] = fw.ID
		}
	})
	if len(seen) != 4*15 {
		t.Errorf("expected 60 distinct indices, got %d", len(seen))
	}
}

func TestTrailFollowsHeadWithOneFrameDelay(t *testing.T) {
	b, buf, _ := newTestBursts(0, 0, 3, 1, 2)
	b.Spawn(0, 0, 0)

	var sp components.Spark
	b.Each(func(fw *components.Firework) { sp = fw.Sparks[0] })

	b.Update()
	h1x, h1y, h1z := buf.Position(sp.Head)

	b.Update()
	t0x, t0y, t0z := buf.Position(sp.Trail[0])
	if t0x != h1x || t0y != h1y || t0z != h1z {
		t.Errorf("trail[0] expected previous head (%f,%f,%f), got (%f,%f,%f)", h1x, h1y, h1z, t0x, t0y, t0z)
	}

	// trail[1] holds trail[0]'s previous value, the spawn point
	if x, y, z := buf.Position(sp.Trail[1]); x != 0 || y != 0 || z != 0 {
		t.Errorf("trail[1] expected origin, got (%f,%f,%f)", x, y, z)
	}
}

func TestTrailFadesAlongChain(t *testing.T) {
	b, buf, _ := newTestBursts(0, 0, 4, 1, 3)
	b.Spawn(0, 0, 0)
	b.Update()

	var sp components.Spark
	b.Each(func(fw *components.Firework) { sp = fw.Sparks[0] })

	prev := float32(2)
	for _, i := range sp.Trail {
		r, g, bl := buf.Color(i)
		sum := r + g + bl
		if sum >= prev {
			t.Errorf("trail segment %d not dimmer than predecessor: %f >= %f", i, sum, prev)
		}
		prev = sum
	}
}

func TestExpiredSlotsBeyondSteadyAreParked(t *testing.T) {
	b, buf, _ := newTestBursts(12, 12, 6, 2, 1)
	b.Spawn(5, 5, 5)
	for f := 0; f < 90; f++ {
		b.Update()
	}

	for i := 12; i < 18; i++ {
		if r, g, bl := buf.Color(i); r != 0 || g != 0 || bl != 0 {
			t.Errorf("reserve-only index %d not parked: (%f,%f,%f)", i, r, g, bl)
		}
		if !buf.Parked(i) {
			t.Errorf("reserve-only index %d not moved off scene", i)
		}
	}
}

func TestMarkOwned(t *testing.T) {
	b, _, _ := newTestBursts(12, 12, 6, 2, 1)
	b.Spawn(0, 0, 0)

	mask := particles.NewOwnedMask(18)
	b.MarkOwned(mask)
	if mask.Count() != 4 {
		t.Errorf("expected 4 owned indices, got %d", mask.Count())
	}
	for i := 0; i < 12; i++ {
		if mask.Owned(i) {
			t.Errorf("steady index %d marked owned", i)
		}
	}
}

func TestBurstConcurrentLimit(t *testing.T) {
	b, _, alloc := newTestBursts(0, 0, 100, 2, 1)
	b.cfg.MaxConcurrent = 2

	b.Spawn(0, 0, 0)
	b.Spawn(0, 0, 0)
	if _, err := b.Spawn(0, 0, 0); !errors.Is(err, ErrBurstLimit) {
		t.Fatalf("expected ErrBurstLimit, got %v", err)
	}
	if alloc.Held() != 8 {
		t.Errorf("rejected spawn allocated slots: %d held", alloc.Held())
	}
}
