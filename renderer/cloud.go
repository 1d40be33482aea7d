// Package renderer draws the particle buffer with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bloomfield/camera"
	"github.com/pthm-cable/bloomfield/particles"
)

// CloudRenderer draws the particle buffer as additive points.
type CloudRenderer struct {
	stride       int // draw every stride-th steady particle
	reserveStart int
	reserveEnd   int
	lastVersion  uint64
	drawn        int
}

// NewCloudRenderer creates a renderer. Reserve slots are always drawn at full density.
func NewCloudRenderer(stride, reserveStart, reserveEnd int) *CloudRenderer {
	if stride < 1 {
		stride = 1
	}
	return &CloudRenderer{
		stride:       stride,
		reserveStart: reserveStart,
		reserveEnd:   reserveEnd,
	}
}

// Camera3D converts the raycast camera to a raylib camera.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   rl.NewVector3(c.Eye.X(), c.Eye.Y(), c.Eye.Z()),
		Target:     rl.NewVector3(c.Target.X(), c.Target.Y(), c.Target.Z()),
		Up:         rl.NewVector3(c.Up.X(), c.Up.Y(), c.Up.Z()),
		Fovy:       c.FovY,
		Projection: rl.CameraPerspective,
	}
}

// Draw renders buf from cam. Hover draws a marker at the pointer's world point.
func (r *CloudRenderer) Draw(buf *particles.Buffer, cam *camera.Camera, hover bool, hx, hy, hz float32) {
	pos := buf.Positions()
	col := buf.Colors()
	n := buf.Len()
	r.lastVersion = buf.Version()
	r.drawn = 0

	rl.BeginMode3D(Camera3D(cam))
	rl.BeginBlendMode(rl.BlendAdditive)

	for i := 0; i < n; i++ {
		inReserve := i >= r.reserveStart && i < r.reserveEnd
		if !inReserve && i%r.stride != 0 {
			continue
		}
		if inReserve && buf.Parked(i) {
			continue
		}
		j := 3 * i
		x, y, z := pos[j], pos[j+1], pos[j+2]
		rl.DrawPoint3D(rl.NewVector3(x, y, z), rl.Color{
			R: toByte(col[j]),
			G: toByte(col[j+1]),
			B: toByte(col[j+2]),
			A: 200,
		})
		r.drawn++
	}

	rl.EndBlendMode()

	if hover {
		rl.DrawSphereWires(rl.NewVector3(hx, hy, hz), 0.6, 6, 8, rl.Color{R: 255, G: 220, B: 160, A: 90})
	}

	rl.EndMode3D()
}

// Drawn returns the number of points drawn in the last frame.
func (r *CloudRenderer) Drawn() int { return r.drawn }

// Version returns the buffer version drawn in the last frame.
func (r *CloudRenderer) Version() uint64 { return r.lastVersion }

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
