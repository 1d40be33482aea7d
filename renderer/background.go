package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/bloomfield/shapes"
)

// Backdrop tints per shape, blended by the current weights.
var backdropTints = [shapes.NumShapes]colorful.Color{
	shapes.ShapeFlower: {R: 0.06, G: 0.02, B: 0.05},
	shapes.ShapeSpiral: {R: 0.01, G: 0.03, B: 0.08},
	shapes.ShapeEmblem: {R: 0.07, G: 0.05, B: 0.01},
}

// BackgroundRenderer draws a vertical gradient tinted toward the dominant shape.
type BackgroundRenderer struct {
	screenW, screenH int32
	base             colorful.Color
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(screenW, screenH int32, baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: screenW,
		screenH: screenH,
		base:    colorful.Color{R: float64(baseR) / 255, G: float64(baseG) / 255, B: float64(baseB) / 255},
	}
}

// Resize updates the drawn area.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW, b.screenH = screenW, screenH
}

// Tint returns the top color for the given blend weights, following the
// same priority chain the particles use.
func (b *BackgroundRenderer) Tint(weights [shapes.NumShapes]float32) colorful.Color {
	c := backdropTints[shapes.ShapeFlower]
	for s := 1; s < int(shapes.NumShapes); s++ {
		c = c.BlendLab(backdropTints[s], float64(weights[s]))
	}
	return c.BlendRgb(b.base, 0.3).Clamped()
}

// Draw renders the gradient.
func (b *BackgroundRenderer) Draw(weights [shapes.NumShapes]float32) {
	top := b.Tint(weights)
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, toRL(top), toRL(b.base))
}

func toRL(c colorful.Color) rl.Color {
	r, g, bl := c.RGB255()
	return rl.Color{R: r, G: g, B: bl, A: 255}
}
