package shapes

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/bloomfield/config"
)

var (
	podCenter  = colorful.Color{R: 1.0, G: 0.86, B: 0.32}
	podEdge    = colorful.Color{R: 1.0, G: 0.48, B: 0.10}
	petalInner = colorful.Color{R: 0.86, G: 0.08, B: 0.44}
	petalOuter = colorful.Color{R: 1.0, G: 0.74, B: 0.86}
	petalRim   = colorful.Color{R: 1.0, G: 1.0, B: 1.0}
)

// FlowerPetals returns the petal count of layer k.
func FlowerPetals(fc config.FlowerConfig, k int) int {
	return fc.PetalsPerLayer + k*fc.PetalStep
}

// FlowerLayerRadius returns the outer radius of layer k.
func FlowerLayerRadius(fc config.FlowerConfig, k int) float64 {
	return fc.InnerRadius * math.Pow(fc.LayerGrowth, float64(k))
}

// FlowerShares returns the region shares: a central pod, then petal layers
// sized by their outline length (petal count x layer radius).
func FlowerShares(fc config.FlowerConfig) []Share {
	shares := []Share{{Name: "pod", Fraction: fc.PodFraction}}

	var total float64
	arcs := make([]float64, fc.Layers)
	for k := range arcs {
		arcs[k] = float64(FlowerPetals(fc, k)) * FlowerLayerRadius(fc, k)
		total += arcs[k]
	}
	for k, arc := range arcs {
		shares = append(shares, Share{
			Name:     fmt.Sprintf("petal_%d", k),
			Fraction: (1 - fc.PodFraction) * arc / total,
		})
	}
	return shares
}

// Flower generates a layered flower: a golden pod and concentric cupped petal layers.
// Petal color follows (layer + position along the petal) / layers from deep magenta
// to pale pink, whitened toward the petal rim. Pod color follows normalized radius.
// Brightness jitter of +-4% is the only random color term.
func Flower(opts Options, fc config.FlowerConfig) *Buffer {
	rng := opts.rng()
	regions := opts.layout(FlowerShares(fc))
	b := newBuffer(ShapeFlower, opts.Count, regions)

	pod := regions[0]
	for i := pod.Start; i < pod.End(); i++ {
		// Denser toward the center, slightly elongated toward the viewer
		rn := math.Pow(rng.Float64(), 1.5)
		z := 2*rng.Float64() - 1
		phi := rng.Float64() * 2 * math.Pi
		s := math.Sqrt(1 - z*z)
		r := rn * fc.PodRadius
		c := podCenter.BlendHcl(podEdge, rn)
		b.set(i, r*s*math.Cos(phi), r*s*math.Sin(phi), r*z*1.3, jitterBrightness(c, rng.Float64()))
	}

	for k := 0; k < fc.Layers; k++ {
		region := regions[k+1]
		petals := FlowerPetals(fc, k)
		radius := FlowerLayerRadius(fc, k)
		slot := 2 * math.Pi / float64(petals)
		stagger := float64(k) * slot / 2
		// Inner layers cup higher
		cup := fc.Curvature * (1 - float64(k)/float64(fc.Layers+1))

		for i := region.Start; i < region.End(); i++ {
			j := rng.Intn(petals)
			u := math.Sqrt(rng.Float64())
			v := 2*rng.Float64() - 1

			half := fc.PetalWidth * slot * math.Sin(math.Pi*u)
			theta := float64(j)*slot + stagger + v*half
			r := radius * u
			z := cup*radius*u*u + 0.12*radius*v*v*u

			t := (float64(k) + u) / float64(fc.Layers)
			c := petalInner.BlendHcl(petalOuter, t).BlendRgb(petalRim, 0.25*v*v*u)
			b.set(i, r*math.Cos(theta), r*math.Sin(theta), z, jitterBrightness(c, rng.Float64()))
		}
	}

	fillBackground(b, regions[len(regions)-1], opts.BackgroundSeed)
	return b
}

// jitterBrightness scales a color by 1 +- 4% using draw in [0,1).
func jitterBrightness(c colorful.Color, draw float64) colorful.Color {
	f := 0.96 + 0.08*draw
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}
}
