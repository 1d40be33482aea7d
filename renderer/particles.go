package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/bloomfield/camera"
	"github.com/pthm-cable/bloomfield/components"
	"github.com/pthm-cable/bloomfield/particles"
)

// GlowRenderer draws a soft halo over each live spark head.
type GlowRenderer struct {
	lifetime float32
	size     float32
}

// NewGlowRenderer creates a glow renderer for bursts living lifetime frames.
func NewGlowRenderer(lifetime int, size float32) *GlowRenderer {
	if lifetime < 1 {
		lifetime = 1
	}
	return &GlowRenderer{lifetime: float32(lifetime), size: size}
}

// Draw renders halos in screen space. The each callback visits every live firework.
func (r *GlowRenderer) Draw(buf *particles.Buffer, cam *camera.Camera, each func(func(fw *components.Firework))) {
	rl.BeginBlendMode(rl.BlendAdditive)

	each(func(fw *components.Firework) {
		// Calculate life ratio for fade
		lifeRatio := 1 - float32(fw.Age)/r.lifetime
		if lifeRatio <= 0 {
			return
		}
		color := rl.Color{
			R: toByte(fw.R),
			G: toByte(fw.G),
			B: toByte(fw.B),
			A: uint8(lifeRatio * 160),
		}

		size := r.size * lifeRatio
		if size < 0.5 {
			size = 0.5
		}

		for _, sp := range fw.Sparks {
			x, y, z := buf.Position(sp.Head)
			sx, sy, ok := screenPoint(cam, x, y, z)
			if !ok {
				continue
			}
			rl.DrawCircleGradient(int32(sx), int32(sy), size, color, rl.Blank)
		}
	})

	rl.EndBlendMode()
}

// screenPoint projects a world point to pixels.
func screenPoint(cam *camera.Camera, x, y, z float32) (sx, sy float32, ok bool) {
	nx, ny, ok := cam.WorldToNDC(mgl32.Vec3{x, y, z})
	if !ok {
		return 0, 0, false
	}
	sx = (nx + 1) * 0.5 * cam.ViewportW
	sy = (1 - ny) * 0.5 * cam.ViewportH
	return sx, sy, true
}
