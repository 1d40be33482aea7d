package systems

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/pthm-cable/bloomfield/config"
	"github.com/pthm-cable/bloomfield/particles"
	"github.com/pthm-cable/bloomfield/shapes"
)

// Emblem radial bands, each spinning at its own rate.
const (
	bandInner uint8 = iota
	bandMiddle
	bandOuter
	numBands
)

// Slow per-particle oscillators share one angle per frame each.
const (
	oscJitterX = iota
	oscJitterY
	oscJitterZ
	oscIdleX
	oscIdleY
	oscIdleZ
	oscEmblemShimmer
	oscSpiralShimmer
	numOsc
)

// clockAngle is frame*rate reduced to [0, 2π). The product is taken in float64
// so the angle stays continuous for any frame count.
func clockAngle(frame int64, rate float64) float32 {
	a := math.Mod(float64(frame)*rate, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return float32(a)
}

// FrameState is the per-frame input to the steady pass.
type FrameState struct {
	Frame   int64
	Weights [shapes.NumShapes]float32
	Bloom   float32

	Hover                  bool
	HoverX, HoverY, HoverZ float32
}

// FrameConstants holds values derived once per frame and shared by every chunk.
type FrameConstants struct {
	frame   int64
	osc     [numOsc]float32
	weights [shapes.NumShapes]float32
	bloom   float32

	spiralActive bool
	emblemActive bool
	spiralSin    float32
	spiralCos    float32
	bandSin      [numBands]float32
	bandCos      [numBands]float32

	highDominant   bool // spiral or emblem dominates
	spiralDominant bool
	emblemDominant bool
	applyBloom     bool
	applyIdle      bool
	damping        float32
	pulse          float32

	hover                  bool
	hoverX, hoverY, hoverZ float32
	hoverR2, hoverR        float32
}

// Integrator blends shape targets and springs steady particles toward them.
type Integrator struct {
	blend  config.BlendConfig
	bloom  config.BloomConfig
	spiral config.SpiralConfig
	emblem config.EmblemConfig
	shapes shapes.Set
	n      int

	// Per-particle idle motion parameters
	phase []float32
	amp   []float32

	// Emblem radial band per particle
	band []uint8
}

// NewIntegrator creates an integrator over the steady range covered by set.
// All buffers in set must have the same length.
func NewIntegrator(cfg *config.Config, set shapes.Set, rng *rand.Rand) *Integrator {
	n := set[shapes.ShapeFlower].Len()
	for s := range set {
		if set[s] == nil || set[s].Len() != n {
			panic("systems: shape buffers must all cover the same particle count")
		}
	}

	it := &Integrator{
		blend:  cfg.Blend,
		bloom:  cfg.Bloom,
		spiral: cfg.Spiral,
		emblem: cfg.Emblem,
		shapes: set,
		n:      n,
		phase:  make([]float32, n),
		amp:    make([]float32, n),
		band:   make([]uint8, n),
	}

	for i := 0; i < n; i++ {
		it.phase[i] = rng.Float32() * 2 * math.Pi
		it.amp[i] = 0.5 + rng.Float32()
	}

	pos := set[shapes.ShapeEmblem].Positions
	inner := float32(cfg.Emblem.InnerBand)
	outer := float32(cfg.Emblem.OuterBand)
	for i := 0; i < n; i++ {
		r := math32.Hypot(pos[3*i], pos[3*i+1])
		switch {
		case r < inner:
			it.band[i] = bandInner
		case r > outer:
			it.band[i] = bandOuter
		default:
			it.band[i] = bandMiddle
		}
	}

	return it
}

// Len returns the steady particle count.
func (it *Integrator) Len() int { return it.n }

// Prepare clamps the frame inputs and computes per-frame constants.
func (it *Integrator) Prepare(fs FrameState) *FrameConstants {
	fc := &FrameConstants{
		frame: fs.Frame,
		bloom: clampFloat(fs.Bloom, 0, float32(it.bloom.Max)),
	}
	for s := range fc.weights {
		fc.weights[s] = clamp01(fs.Weights[s])
	}

	wSpiral := fc.weights[shapes.ShapeSpiral]
	wEmblem := fc.weights[shapes.ShapeEmblem]
	minActive := float32(it.blend.MinActive)
	dominance := float32(it.blend.Dominance)

	fc.spiralActive = wSpiral > minActive
	fc.emblemActive = wEmblem > minActive
	fc.spiralSin, fc.spiralCos = sincos(clockAngle(fs.Frame, it.spiral.SpinRate))
	spins := [numBands]float64{it.emblem.InnerSpin, it.emblem.MiddleSpin, it.emblem.OuterSpin}
	for b := range spins {
		fc.bandSin[b], fc.bandCos[b] = sincos(clockAngle(fs.Frame, spins[b]))
	}

	idle := it.blend.IdleFrequency
	rates := [numOsc]float64{0.07, 0.05, 0.06, idle, idle * 0.8, idle * 0.6, 0.9, 0.4}
	for k, rate := range rates {
		fc.osc[k] = clockAngle(fs.Frame, rate)
	}

	fc.emblemDominant = wEmblem >= dominance
	fc.spiralDominant = wSpiral >= dominance && !fc.emblemDominant
	fc.highDominant = fc.emblemDominant || fc.spiralDominant
	fc.applyBloom = !fc.highDominant && fc.bloom > 0
	fc.applyIdle = !fc.highDominant && fc.bloom < float32(it.blend.IdleEpsilon)

	base := float32(it.blend.BaseDamping)
	fc.damping = base + (float32(it.blend.MaxDamping)-base)*max(wSpiral, wEmblem)
	fc.pulse = float32(it.blend.PulseAmount) * math32.Sin(clockAngle(fs.Frame, it.blend.PulseFrequency))

	if fs.Hover && !math32.IsNaN(fs.HoverX) && !math32.IsNaN(fs.HoverY) && !math32.IsNaN(fs.HoverZ) {
		fc.hover = true
		fc.hoverX, fc.hoverY, fc.hoverZ = fs.HoverX, fs.HoverY, fs.HoverZ
		fc.hoverR = float32(it.blend.HoverRadius)
		fc.hoverR2 = fc.hoverR * fc.hoverR
	}
	return fc
}

// Blend lerps targets in priority order: each later shape lerps over the result
// of the earlier ones by its weight, so a weight of 1 makes that shape win exactly.
func Blend(targets *[shapes.NumShapes][3]float32, weights *[shapes.NumShapes]float32) (x, y, z float32) {
	x, y, z = targets[0][0], targets[0][1], targets[0][2]
	for s := 1; s < int(shapes.NumShapes); s++ {
		w := weights[s]
		x = lerp(x, targets[s][0], w)
		y = lerp(y, targets[s][1], w)
		z = lerp(z, targets[s][2], w)
	}
	return x, y, z
}

// Run integrates steady particles in [start, end), skipping indices in owned.
// Chunks over disjoint ranges may run concurrently.
func (it *Integrator) Run(fc *FrameConstants, start, end int, buf *particles.Buffer, owned *particles.OwnedMask) {
	if end > it.n {
		end = it.n
	}
	pos := buf.Positions()
	col := buf.Colors()
	fp, fcol := it.shapes[shapes.ShapeFlower].Positions, it.shapes[shapes.ShapeFlower].Colors
	sp, scol := it.shapes[shapes.ShapeSpiral].Positions, it.shapes[shapes.ShapeSpiral].Colors
	ep, ecol := it.shapes[shapes.ShapeEmblem].Positions, it.shapes[shapes.ShapeEmblem].Colors

	wS := fc.weights[shapes.ShapeSpiral]
	wE := fc.weights[shapes.ShapeEmblem]
	spread := float32(it.bloom.Spread) * fc.bloom
	jitter := float32(it.bloom.Jitter) * fc.bloom
	idleAmp := float32(it.blend.IdleAmplitude)
	shimmer := float32(it.blend.ShimmerAmount)
	boost := float32(it.blend.HoverBoost)
	hoverJitter := float32(it.blend.HoverJitter)

	var targets [shapes.NumShapes][3]float32

	for i := start; i < end; i++ {
		if owned.Owned(i) {
			continue
		}
		j := 3 * i

		// Shape targets with post-transforms
		targets[shapes.ShapeFlower] = [3]float32{fp[j], fp[j+1], fp[j+2]}

		sx, sy := sp[j], sp[j+1]
		if fc.spiralActive {
			sx, sy = rotate2(sx, sy, fc.spiralSin, fc.spiralCos)
		}
		targets[shapes.ShapeSpiral] = [3]float32{sx, sy, sp[j+2]}

		ex, ey := ep[j], ep[j+1]
		if fc.emblemActive {
			b := it.band[i]
			ex, ey = rotate2(ex, ey, fc.bandSin[b], fc.bandCos[b])
		}
		targets[shapes.ShapeEmblem] = [3]float32{ex, ey, ep[j+2]}

		tx, ty, tz := Blend(&targets, &fc.weights)

		ph := it.phase[i]
		if fc.applyBloom {
			tx *= 1 + spread
			ty *= 1 + spread
			tz *= 1 + spread*0.5
			tx += jitter * fastSin(fc.osc[oscJitterX]+ph*3)
			ty += jitter * fastCos(fc.osc[oscJitterY]+ph*5)
			tz += jitter * fastSin(fc.osc[oscJitterZ]+ph*7)
		}
		if fc.applyIdle {
			a := idleAmp * it.amp[i]
			tx += a * fastSin(fc.osc[oscIdleX]+ph)
			ty += a * fastCos(fc.osc[oscIdleY]+ph*1.3)
			tz += a * fastSin(fc.osc[oscIdleZ]+ph*0.7)
		}

		// Velocity-implicit spring step
		cx := pos[j] + (tx-pos[j])*fc.damping
		cy := pos[j+1] + (ty-pos[j+1])*fc.damping
		cz := pos[j+2] + (tz-pos[j+2])*fc.damping

		// Colors through the same priority chain
		r := lerp(lerp(fcol[j], scol[j], wS), ecol[j], wE)
		g := lerp(lerp(fcol[j+1], scol[j+1], wS), ecol[j+1], wE)
		bl := lerp(lerp(fcol[j+2], scol[j+2], wS), ecol[j+2], wE)

		glow := float32(1)
		switch {
		case fc.emblemDominant:
			glow += fc.pulse + shimmer*fastSin(fc.osc[oscEmblemShimmer]+ph*7)
		case fc.spiralDominant:
			glow += 0.5 * shimmer * fastSin(fc.osc[oscSpiralShimmer]+ph*11)
		default:
			glow += 0.15 * fc.bloom
		}
		r, g, bl = r*glow, g*glow, bl*glow

		if fc.hover {
			d2 := distanceSq3(cx, cy, cz, fc.hoverX, fc.hoverY, fc.hoverZ)
			if d2 < fc.hoverR2 {
				k := 1 - math32.Sqrt(d2)/fc.hoverR
				r += boost * k
				g += boost * k
				bl += boost * k
				cx += hoverJitter * k * hashSigned(i, fc.frame, 1)
				cy += hoverJitter * k * hashSigned(i, fc.frame, 2)
				cz += hoverJitter * k * hashSigned(i, fc.frame, 3)
			}
		}

		pos[j], pos[j+1], pos[j+2] = cx, cy, cz
		col[j], col[j+1], col[j+2] = clamp01(r), clamp01(g), clamp01(bl)
	}
}
