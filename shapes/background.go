package shapes

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"
)

// Ambient dust shell dimensions.
const (
	backgroundInner = 22.0
	backgroundOuter = 48.0
	backgroundClump = 6.0 // noise radial displacement amplitude
)

var (
	dustNear = colorful.Color{R: 0.28, G: 0.30, B: 0.45}
	dustFar  = colorful.Color{R: 0.06, G: 0.07, B: 0.14}
)

// fillBackground scatters the background region over a clumpy spherical shell.
// Color darkens with radius; only the clump noise and draws depend on the seed.
func fillBackground(b *Buffer, r Region, seed int64) {
	if r.Count == 0 {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	noise := opensimplex.New(seed)

	for i := r.Start; i < r.End(); i++ {
		// Uniform direction on the sphere
		z := 2*rng.Float64() - 1
		phi := rng.Float64() * 2 * math.Pi
		s := math.Sqrt(1 - z*z)
		dx, dy, dz := s*math.Cos(phi), s*math.Sin(phi), z

		t := rng.Float64()
		radius := backgroundInner + (backgroundOuter-backgroundInner)*t
		radius += backgroundClump * noise.Eval3(dx*2, dy*2, dz*2)

		shade := (radius - backgroundInner) / (backgroundOuter - backgroundInner)
		shade = math.Max(0, math.Min(1, shade))
		b.set(i, dx*radius, dy*radius, dz*radius, dustNear.BlendLab(dustFar, shade))
	}
}
