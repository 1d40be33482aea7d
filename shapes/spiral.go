package shapes

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/bloomfield/config"
)

var (
	spiralCore = colorful.Color{R: 1.0, G: 0.96, B: 0.84}
	spiralArm  = colorful.Color{R: 0.35, G: 0.85, B: 1.0}
	spiralTip  = colorful.Color{R: 0.55, G: 0.25, B: 0.95}
	spiralHalo = colorful.Color{R: 0.12, G: 0.16, B: 0.38}
)

// noiseScale is the spatial frequency of arm turbulence.
const noiseScale = 0.15

// SpiralShares returns the core, arm and halo shares. The halo takes the remainder.
func SpiralShares(sc config.SpiralConfig) []Share {
	return []Share{
		{Name: "core", Fraction: sc.CoreFraction},
		{Name: "arms", Fraction: sc.ArmFraction},
		{Name: "halo", Fraction: 1 - sc.CoreFraction - sc.ArmFraction},
	}
}

// Spiral generates a spiral field: a bright core, logarithmic arms displaced by
// simplex turbulence, and a sparse halo disk. Color follows normalized radius:
// core white, arms cyan to violet, halo dim blue.
func Spiral(opts Options, sc config.SpiralConfig) *Buffer {
	rng := opts.rng()
	regions := opts.layout(SpiralShares(sc))
	b := newBuffer(ShapeSpiral, opts.Count, regions)
	noise := opensimplex.New(rng.Int63())

	core := regions[0]
	for i := core.Start; i < core.End(); i++ {
		x := rng.NormFloat64() * sc.CoreRadius * 0.5
		y := rng.NormFloat64() * sc.CoreRadius * 0.5
		z := rng.NormFloat64() * sc.CoreRadius * 0.3
		rn := math.Min(1, math.Hypot(x, y)/sc.CoreRadius)
		b.set(i, x, y, z, spiralCore.BlendHcl(spiralArm, rn*0.5))
	}

	arms := regions[1]
	for i := arms.Start; i < arms.End(); i++ {
		arm := rng.Intn(max(1, sc.Arms))
		t := rng.Float64()
		r := sc.CoreRadius + (sc.Radius-sc.CoreRadius)*t
		theta := math.Log(r/sc.CoreRadius)/sc.Pitch + 2*math.Pi*float64(arm)/float64(max(1, sc.Arms))
		// Arms fray with distance
		theta += rng.NormFloat64() * 0.12 * (1 + t)

		x := r * math.Cos(theta)
		y := r * math.Sin(theta)
		x += sc.Turbulence * noise.Eval3(x*noiseScale, y*noiseScale, 0)
		y += sc.Turbulence * noise.Eval3(x*noiseScale, y*noiseScale, 10)
		z := rng.NormFloat64() * sc.Thickness * (1 - 0.6*t)

		rn := math.Min(1, math.Hypot(x, y)/sc.Radius)
		b.set(i, x, y, z, spiralArm.BlendHcl(spiralTip, rn))
	}

	halo := regions[2]
	for i := halo.Start; i < halo.End(); i++ {
		r := sc.Radius * 1.2 * math.Sqrt(rng.Float64())
		theta := rng.Float64() * 2 * math.Pi
		z := rng.NormFloat64() * sc.Thickness * 2
		rn := math.Min(1, r/(sc.Radius*1.2))
		b.set(i, r*math.Cos(theta), r*math.Sin(theta), z, spiralArm.BlendLab(spiralHalo, 0.5+0.5*rn))
	}

	fillBackground(b, regions[len(regions)-1], opts.BackgroundSeed)
	return b
}
