package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/bloomfield/config"
	"github.com/pthm-cable/bloomfield/particles"
	"github.com/pthm-cable/bloomfield/shapes"
)

// constantSet builds n-particle shapes where every particle of shape s sits at
// points[s] with color colors[s].
func constantSet(n int, points, colors [shapes.NumShapes][3]float32) shapes.Set {
	var set shapes.Set
	for s := range set {
		b := &shapes.Buffer{
			Shape:     shapes.Shape(s),
			Positions: make([]float32, 3*n),
			Colors:    make([]float32, 3*n),
			Regions:   []shapes.Region{{Name: "all", Start: 0, Count: n}},
		}
		for i := 0; i < n; i++ {
			copy(b.Positions[3*i:], points[s][:])
			copy(b.Colors[3*i:], colors[s][:])
		}
		set[s] = b
	}
	return set
}

func stillConfig() *config.Config {
	cfg := config.Default()
	cfg.Spiral.SpinRate = 0
	cfg.Emblem.InnerSpin = 0
	cfg.Emblem.MiddleSpin = 0
	cfg.Emblem.OuterSpin = 0
	cfg.Blend.IdleAmplitude = 0
	cfg.Blend.PulseAmount = 0
	cfg.Blend.ShimmerAmount = 0
	return cfg
}

var (
	testPoints = [shapes.NumShapes][3]float32{{1, 0, 0}, {0, 5, 0}, {0, 0, 9}}
	testColors = [shapes.NumShapes][3]float32{{0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 0.5}}
)

func TestBlendLaterShapeWinsExactly(t *testing.T) {
	targets := [shapes.NumShapes][3]float32{{0.1, 0.2, 0.3}, {1.7, -2.3, 4.1}, {-3.3, 7.9, 0.7}}
	weights := [shapes.NumShapes]float32{1, 1, 1}

	x, y, z := Blend(&targets, &weights)
	if x != -3.3 || y != 7.9 || z != 0.7 {
		t.Errorf("expected emblem target exactly, got (%f,%f,%f)", x, y, z)
	}

	weights = [shapes.NumShapes]float32{1, 1, 0}
	x, y, z = Blend(&targets, &weights)
	if x != 1.7 || y != -2.3 || z != 4.1 {
		t.Errorf("expected spiral target exactly, got (%f,%f,%f)", x, y, z)
	}
}

func TestBlendIsSuccessiveOverride(t *testing.T) {
	targets := [shapes.NumShapes][3]float32{{0, 0, 0}, {10, 0, 0}, {0, 10, 0}}
	weights := [shapes.NumShapes]float32{1, 0.5, 0.5}

	// Spiral pulls halfway to (5,0,0), then emblem lerps halfway over that
	x, y, _ := Blend(&targets, &weights)
	if math.Abs(float64(x-2.5)) > 1e-6 || math.Abs(float64(y-5)) > 1e-6 {
		t.Errorf("expected (2.5, 5), got (%f, %f)", x, y)
	}
}

func TestIntegratorConvergesToDominantShape(t *testing.T) {
	cfg := stillConfig()
	set := constantSet(16, testPoints, testColors)
	it := NewIntegrator(cfg, set, rand.New(rand.NewSource(1)))
	buf := particles.NewBuffer(16)
	mask := particles.NewOwnedMask(16)

	fs := FrameState{Weights: [shapes.NumShapes]float32{1, 0, 1}}
	for f := 0; f < 400; f++ {
		fs.Frame = int64(f)
		it.Run(it.Prepare(fs), 0, 16, buf, mask)
	}

	x, y, z := buf.Position(7)
	if math.Abs(float64(x)) > 1e-3 || math.Abs(float64(y)) > 1e-3 || math.Abs(float64(z-9)) > 1e-3 {
		t.Errorf("expected particle at emblem target (0,0,9), got (%f,%f,%f)", x, y, z)
	}
}

func TestIntegratorSkipsOwnedIndices(t *testing.T) {
	cfg := stillConfig()
	set := constantSet(8, testPoints, testColors)
	it := NewIntegrator(cfg, set, rand.New(rand.NewSource(1)))
	buf := particles.NewBuffer(8)
	mask := particles.NewOwnedMask(8)

	buf.SetPosition(3, 42, 42, 42)
	buf.SetColor(3, 0.9, 0.9, 0.9)
	mask.Mark(3)

	it.Run(it.Prepare(FrameState{Weights: [shapes.NumShapes]float32{1, 0, 0}}), 0, 8, buf, mask)

	if x, y, z := buf.Position(3); x != 42 || y != 42 || z != 42 {
		t.Errorf("owned particle moved to (%f,%f,%f)", x, y, z)
	}
	if x, _, _ := buf.Position(2); x == 0 {
		t.Error("steady particle did not move")
	}
}

func TestDampingStiffensWithDominantWeight(t *testing.T) {
	cfg := stillConfig()
	set := constantSet(1, testPoints, testColors)
	it := NewIntegrator(cfg, set, rand.New(rand.NewSource(1)))

	soft := it.Prepare(FrameState{Weights: [shapes.NumShapes]float32{1, 0, 0}})
	stiff := it.Prepare(FrameState{Weights: [shapes.NumShapes]float32{1, 0, 1}})

	if soft.damping != float32(cfg.Blend.BaseDamping) {
		t.Errorf("expected base damping %f, got %f", cfg.Blend.BaseDamping, soft.damping)
	}
	if math.Abs(float64(stiff.damping)-cfg.Blend.MaxDamping) > 1e-6 {
		t.Errorf("expected max damping %f, got %f", cfg.Blend.MaxDamping, stiff.damping)
	}
}

func TestPrepareClampsInputs(t *testing.T) {
	cfg := stillConfig()
	it := NewIntegrator(cfg, constantSet(1, testPoints, testColors), rand.New(rand.NewSource(1)))

	fc := it.Prepare(FrameState{
		Weights: [shapes.NumShapes]float32{3, -1, 2},
		Bloom:   99,
	})

	for s, w := range fc.weights {
		if w < 0 || w > 1 {
			t.Errorf("weight %d not clamped: %f", s, w)
		}
	}
	if fc.bloom != float32(cfg.Bloom.Max) {
		t.Errorf("expected bloom clamped to %f, got %f", cfg.Bloom.Max, fc.bloom)
	}
}

func TestBloomOnlyWithoutDominantShape(t *testing.T) {
	cfg := stillConfig()
	it := NewIntegrator(cfg, constantSet(1, testPoints, testColors), rand.New(rand.NewSource(1)))

	open := it.Prepare(FrameState{Weights: [shapes.NumShapes]float32{1, 0, 0}, Bloom: 1})
	if !open.applyBloom || open.applyIdle {
		t.Errorf("flower with bloom: expected bloom on and idle off, got bloom=%v idle=%v", open.applyBloom, open.applyIdle)
	}

	closed := it.Prepare(FrameState{Weights: [shapes.NumShapes]float32{1, 0, 0}})
	if closed.applyBloom || !closed.applyIdle {
		t.Errorf("flower at rest: expected idle motion, got bloom=%v idle=%v", closed.applyBloom, closed.applyIdle)
	}

	spiral := it.Prepare(FrameState{Weights: [shapes.NumShapes]float32{1, 1, 0}, Bloom: 1})
	if spiral.applyBloom || spiral.applyIdle {
		t.Errorf("dominant spiral: expected no bloom and no idle, got bloom=%v idle=%v", spiral.applyBloom, spiral.applyIdle)
	}
}

func TestHoverBrightensNearbyParticles(t *testing.T) {
	cfg := stillConfig()
	set := constantSet(2, testPoints, testColors)
	it := NewIntegrator(cfg, set, rand.New(rand.NewSource(1)))

	buf := particles.NewBuffer(2)
	buf.Load(set[shapes.ShapeFlower].Positions, set[shapes.ShapeFlower].Colors)
	mask := particles.NewOwnedMask(2)

	fs := FrameState{Weights: [shapes.NumShapes]float32{1, 0, 0}}
	it.Run(it.Prepare(fs), 0, 2, buf, mask)
	baseR, _, _ := buf.Color(0)

	fs.Hover = true
	fs.HoverX, fs.HoverY, fs.HoverZ = 1, 0, 0
	it.Run(it.Prepare(fs), 0, 2, buf, mask)
	r, g, bl := buf.Color(0)

	if r <= baseR {
		t.Errorf("expected hover to brighten red from %f, got %f", baseR, r)
	}
	if r > 1 || g > 1 || bl > 1 {
		t.Errorf("hover color not clamped: (%f,%f,%f)", r, g, bl)
	}
}

func TestHoverNaNIgnored(t *testing.T) {
	cfg := stillConfig()
	it := NewIntegrator(cfg, constantSet(1, testPoints, testColors), rand.New(rand.NewSource(1)))

	fc := it.Prepare(FrameState{Hover: true, HoverX: float32(math.NaN())})
	if fc.hover {
		t.Error("expected NaN hover point to be ignored")
	}
}

func TestEmblemBandsSpinIndependently(t *testing.T) {
	cfg := stillConfig()
	cfg.Emblem.InnerSpin = 0.1
	cfg.Emblem.OuterSpin = -0.1

	points := testPoints
	set := constantSet(2, points, testColors)
	// Particle 0 in the inner band, particle 1 beyond the outer band
	set[shapes.ShapeEmblem].Positions = []float32{1, 0, 0, 10, 0, 0}
	it := NewIntegrator(cfg, set, rand.New(rand.NewSource(1)))

	if it.band[0] != bandInner || it.band[1] != bandOuter {
		t.Fatalf("unexpected bands %v", it.band)
	}

	fc := it.Prepare(FrameState{Frame: 5, Weights: [shapes.NumShapes]float32{1, 0, 1}})
	if fc.bandSin[bandInner] <= 0 || fc.bandSin[bandOuter] >= 0 {
		t.Errorf("expected opposite band rotations, got sin inner=%f outer=%f",
			fc.bandSin[bandInner], fc.bandSin[bandOuter])
	}
}

func TestBandSpinContinuousOverLongRuns(t *testing.T) {
	cfg := stillConfig()
	cfg.Emblem.InnerSpin = 0.02
	set := constantSet(1, testPoints, testColors)
	it := NewIntegrator(cfg, set, rand.New(rand.NewSource(1)))
	weights := [shapes.NumShapes]float32{1, 0, 1}

	for _, frame := range []int64{1<<20 - 1, 1<<31 - 1, 1 << 40} {
		a := it.Prepare(FrameState{Frame: frame, Weights: weights})
		b := it.Prepare(FrameState{Frame: frame + 1, Weights: weights})

		// Angle between consecutive frames must equal one step of spin
		sa, ca := float64(a.bandSin[bandInner]), float64(a.bandCos[bandInner])
		sb, cb := float64(b.bandSin[bandInner]), float64(b.bandCos[bandInner])
		step := math.Atan2(sb*ca-cb*sa, cb*ca+sb*sa)
		if math.Abs(step-0.02) > 1e-4 {
			t.Errorf("frame %d: expected spin step 0.02, got %f", frame, step)
		}

		want := math.Sin(math.Mod(float64(frame)*0.02, 2*math.Pi))
		if math.Abs(sa-want) > 1e-4 {
			t.Errorf("frame %d: expected band sin %f, got %f", frame, want, sa)
		}
	}
}

func TestClockAngleRange(t *testing.T) {
	tests := []struct {
		frame int64
		rate  float64
	}{
		{0, 0.05},
		{12345, 0.9},
		{1 << 40, 0.004},
		{777, -0.008},
	}
	for _, tc := range tests {
		a := clockAngle(tc.frame, tc.rate)
		if a < 0 || a >= 2*math.Pi+1e-6 {
			t.Errorf("clockAngle(%d, %f) = %f, expected within [0, 2π)", tc.frame, tc.rate, a)
		}
	}
}

func TestHashSignedRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := hashSigned(i, int64(i*7), 3)
		if v < -1 || v > 1 {
			t.Fatalf("hash out of range: %f", v)
		}
	}
}

func TestFastSinAccuracy(t *testing.T) {
	for x := float32(-50); x < 50; x += 0.37 {
		got := fastSin(x)
		want := float32(math.Sin(float64(x)))
		if math.Abs(float64(got-want)) > 0.002 {
			t.Errorf("fastSin(%f) = %f, want %f", x, got, want)
		}
	}
}

func BenchmarkIntegratorRun(b *testing.B) {
	cfg := config.Default()
	cfg.Particles.Count = 50000
	cfg.ComputeDerived()
	set := shapes.Generate(cfg, rand.New(rand.NewSource(1)))
	it := NewIntegrator(cfg, set, rand.New(rand.NewSource(1)))
	buf := particles.NewBuffer(50000)
	mask := particles.NewOwnedMask(50000)

	fs := FrameState{Weights: [shapes.NumShapes]float32{1, 0.3, 0.1}, Bloom: 0.5}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fs.Frame = int64(i)
		it.Run(it.Prepare(fs), 0, 50000, buf, mask)
	}
}
