package shapes

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/bloomfield/config"
)

func generators() map[string]func(Options) *Buffer {
	cfg := config.Default()
	return map[string]func(Options) *Buffer{
		"flower": func(o Options) *Buffer { return Flower(o, cfg.Flower) },
		"spiral": func(o Options) *Buffer { return Spiral(o, cfg.Spiral) },
		"emblem": func(o Options) *Buffer { return Emblem(o, cfg.Emblem) },
	}
}

func TestSplitRemainderGoesToLast(t *testing.T) {
	regions := Split(0, 101, []Share{
		{Name: "a", Fraction: 0.3},
		{Name: "b", Fraction: 0.3},
		{Name: "c", Fraction: 0.3},
	})

	want := []int{30, 30, 41}
	for i, r := range regions {
		if r.Count != want[i] {
			t.Errorf("region %s: expected %d, got %d", r.Name, want[i], r.Count)
		}
	}
	if regions[2].Start != 60 || regions[2].End() != 101 {
		t.Errorf("expected last region [60,101), got [%d,%d)", regions[2].Start, regions[2].End())
	}
}

func TestSplitOversubscribed(t *testing.T) {
	regions := Split(10, 5, []Share{
		{Name: "a", Fraction: 0.9},
		{Name: "b", Fraction: 0.9},
		{Name: "c", Fraction: 0.1},
	})

	total := 0
	for _, r := range regions {
		if r.Count < 0 {
			t.Errorf("region %s has negative count %d", r.Name, r.Count)
		}
		total += r.Count
	}
	if total != 5 {
		t.Errorf("expected 5 particles, got %d", total)
	}
}

func TestRegionCountsSumToN(t *testing.T) {
	sizes := []int{16, 97, 1000, 12345}

	for name, gen := range generators() {
		for _, n := range sizes {
			b := gen(Options{Count: n, BackgroundFraction: 0.1, Rand: rand.New(rand.NewSource(1))})

			if b.Len() != n {
				t.Errorf("%s n=%d: expected buffer length %d, got %d", name, n, n, b.Len())
			}

			total := 0
			next := 0
			for _, r := range b.Regions {
				if r.Start != next {
					t.Errorf("%s n=%d: region %s starts at %d, expected %d", name, n, r.Name, r.Start, next)
				}
				next = r.End()
				total += r.Count
			}
			if total != n {
				t.Errorf("%s n=%d: regions cover %d particles", name, n, total)
			}

			bg, ok := b.Region(RegionBackground)
			if !ok {
				t.Fatalf("%s: missing background region", name)
			}
			if bg.Count != int(float64(n)*0.1) || bg.End() != n {
				t.Errorf("%s n=%d: background [%d,%d) unexpected", name, n, bg.Start, bg.End())
			}
		}
	}
}

func TestFlowerRegionSplit(t *testing.T) {
	cfg := config.Default()
	n := 10000
	b := Flower(Options{Count: n, BackgroundFraction: 0.1, Rand: rand.New(rand.NewSource(3))}, cfg.Flower)

	// pod + layers + background
	if len(b.Regions) != cfg.Flower.Layers+2 {
		t.Fatalf("expected %d regions, got %d", cfg.Flower.Layers+2, len(b.Regions))
	}

	head := n - int(float64(n)*0.1)
	pod, _ := b.Region("pod")
	if pod.Count != int(float64(head)*cfg.Flower.PodFraction) {
		t.Errorf("expected pod %d, got %d", int(float64(head)*cfg.Flower.PodFraction), pod.Count)
	}

	// Outer layers have longer outlines, so they get more particles
	first, _ := b.Region("petal_0")
	last, _ := b.Region("petal_4")
	if last.Count <= first.Count {
		t.Errorf("expected outer layer larger than inner, got %d <= %d", last.Count, first.Count)
	}
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	for name, gen := range generators() {
		a := gen(Options{Count: 2000, BackgroundFraction: 0.1, BackgroundSeed: 7, Rand: rand.New(rand.NewSource(42))})
		b := gen(Options{Count: 2000, BackgroundFraction: 0.1, BackgroundSeed: 7, Rand: rand.New(rand.NewSource(42))})

		if len(a.Regions) != len(b.Regions) {
			t.Fatalf("%s: region count differs", name)
		}
		for i := range a.Regions {
			if a.Regions[i] != b.Regions[i] {
				t.Errorf("%s: region %d differs: %+v vs %+v", name, i, a.Regions[i], b.Regions[i])
			}
		}
		for i := range a.Positions {
			if a.Positions[i] != b.Positions[i] {
				t.Fatalf("%s: position %d differs", name, i)
			}
		}
		for i := range a.Colors {
			if a.Colors[i] != b.Colors[i] {
				t.Fatalf("%s: color %d differs", name, i)
			}
		}
	}
}

func TestBuffersAreFiniteAndColorsInRange(t *testing.T) {
	for name, gen := range generators() {
		b := gen(Options{Count: 5000, BackgroundFraction: 0.1, Rand: rand.New(rand.NewSource(9))})
		for i, v := range b.Positions {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("%s: position %d is %f", name, i, v)
			}
		}
		for i, v := range b.Colors {
			if v < 0 || v > 1 {
				t.Fatalf("%s: color %d out of range: %f", name, i, v)
			}
		}
	}
}

func TestBackgroundSharedAcrossShapes(t *testing.T) {
	cfg := config.Default()
	cfg.Particles.Count = 3000
	cfg.ComputeDerived()

	set := Generate(cfg, rand.New(rand.NewSource(5)))
	bg, _ := set[ShapeFlower].Region(RegionBackground)

	for s := ShapeSpiral; s < NumShapes; s++ {
		other, _ := set[s].Region(RegionBackground)
		if other != bg {
			t.Fatalf("%s background %+v differs from flower %+v", s, other, bg)
		}
		for i := 3 * bg.Start; i < 3*bg.End(); i++ {
			if set[s].Positions[i] != set[ShapeFlower].Positions[i] {
				t.Fatalf("%s background position %d differs from flower", s, i)
			}
		}
	}
}

func TestEmblemRingRadii(t *testing.T) {
	cfg := config.Default()
	ec := cfg.Emblem
	b := Emblem(Options{Count: 4000, Rand: rand.New(rand.NewSource(11))}, ec)

	inner, _ := b.Region("inner_ring")
	for i := inner.Start; i < inner.End(); i++ {
		x, y := float64(b.Positions[3*i]), float64(b.Positions[3*i+1])
		r := math.Hypot(x, y)
		if math.Abs(r-ec.InnerRingRadius) > ec.RingWidth/2+1e-4 {
			t.Fatalf("inner ring particle %d at radius %f", i, r)
		}
	}
}

func TestRegionOf(t *testing.T) {
	b := &Buffer{Regions: []Region{{Name: "core", Start: 0, Count: 6}, {Name: "ring", Start: 6, Count: 6}}}

	if r, ok := b.RegionOf(5); !ok || r.Name != "core" {
		t.Errorf("expected index 5 in core, got %+v", r)
	}
	if r, ok := b.RegionOf(6); !ok || r.Name != "ring" {
		t.Errorf("expected index 6 in ring, got %+v", r)
	}
	if _, ok := b.RegionOf(12); ok {
		t.Error("expected index 12 outside all regions")
	}
}
