package shapes

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/bloomfield/config"
)

var (
	emblemCore  = colorful.Color{R: 1.0, G: 0.97, B: 0.80}
	emblemGold  = colorful.Color{R: 1.0, G: 0.72, B: 0.18}
	emblemEmber = colorful.Color{R: 1.0, G: 0.32, B: 0.08}
	emblemBlood = colorful.Color{R: 0.75, G: 0.05, B: 0.06}
)

// EmblemShares returns the core, inner ring, glyph and outer ring shares.
// The outer ring takes the remainder.
func EmblemShares(ec config.EmblemConfig) []Share {
	return []Share{
		{Name: "core", Fraction: ec.CoreFraction},
		{Name: "inner_ring", Fraction: ec.InnerRingFraction},
		{Name: "glyph", Fraction: ec.GlyphFraction},
		{Name: "outer_ring", Fraction: 1 - ec.CoreFraction - ec.InnerRingFraction - ec.GlyphFraction},
	}
}

// Emblem generates a flat sigil: a glowing disk, an inner ring, a star polygon
// glyph between the rings and an outer ring with radial ticks. Color is keyed to
// distance from center: white core, gold inner ring, ember glyph, blood-red rim.
func Emblem(opts Options, ec config.EmblemConfig) *Buffer {
	rng := opts.rng()
	regions := opts.layout(EmblemShares(ec))
	b := newBuffer(ShapeEmblem, opts.Count, regions)

	core := regions[0]
	for i := core.Start; i < core.End(); i++ {
		rn := math.Sqrt(rng.Float64())
		theta := rng.Float64() * 2 * math.Pi
		r := rn * ec.CoreRadius
		z := (rng.Float64() - 0.5) * 0.2
		b.set(i, r*math.Cos(theta), r*math.Sin(theta), z, emblemCore.BlendHcl(emblemGold, rn*rn))
	}

	inner := regions[1]
	for i := inner.Start; i < inner.End(); i++ {
		theta := rng.Float64() * 2 * math.Pi
		r := ec.InnerRingRadius + (rng.Float64()-0.5)*ec.RingWidth
		z := (rng.Float64() - 0.5) * 0.15
		b.set(i, r*math.Cos(theta), r*math.Sin(theta), z, emblemGold)
	}

	glyph := regions[2]
	points := max(3, ec.GlyphPoints)
	step := max(1, ec.GlyphStep)
	glyphR := ec.OuterRingRadius - ec.RingWidth*2
	for i := glyph.Start; i < glyph.End(); i++ {
		s := rng.Intn(points)
		a0 := 2*math.Pi*float64(s)/float64(points) + math.Pi/2
		a1 := 2*math.Pi*float64((s+step)%points)/float64(points) + math.Pi/2
		x0, y0 := glyphR*math.Cos(a0), glyphR*math.Sin(a0)
		x1, y1 := glyphR*math.Cos(a1), glyphR*math.Sin(a1)

		t := rng.Float64()
		w := (rng.Float64() - 0.5) * ec.RingWidth * 0.6
		nx, ny := -(y1 - y0), x1-x0
		nl := math.Hypot(nx, ny)
		x := x0 + (x1-x0)*t + nx/nl*w
		y := y0 + (y1-y0)*t + ny/nl*w

		rn := math.Hypot(x, y) / glyphR
		b.set(i, x, y, 0, emblemGold.BlendHcl(emblemEmber, rn))
	}

	outer := regions[3]
	const ticks = 36
	for i := outer.Start; i < outer.End(); i++ {
		var r, theta float64
		if rng.Float64() < 0.8 {
			theta = rng.Float64() * 2 * math.Pi
			r = ec.OuterRingRadius + (rng.Float64()-0.5)*ec.RingWidth
		} else {
			// Radial tick marks outside the ring
			theta = 2 * math.Pi * float64(rng.Intn(ticks)) / ticks
			r = ec.OuterRingRadius + ec.RingWidth*(0.5+2*rng.Float64())
		}
		rn := math.Min(1, (r-ec.OuterRingRadius)/(ec.RingWidth*2.5)+0.5)
		b.set(i, r*math.Cos(theta), r*math.Sin(theta), 0, emblemEmber.BlendHcl(emblemBlood, rn))
	}

	fillBackground(b, regions[len(regions)-1], opts.BackgroundSeed)
	return b
}
