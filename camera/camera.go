// Package camera provides the perspective view and the pointer raycaster that
// maps screen positions onto the interaction plane.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/bloomfield/config"
)

// Camera is a perspective camera looking from Eye toward Target.
type Camera struct {
	Eye, Target, Up mgl32.Vec3

	// Vertical field of view in degrees
	FovY float32

	Near, Far float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	viewProj mgl32.Mat4
	inverse  mgl32.Mat4
}

// New creates a camera from config for the given viewport.
func New(cfg config.CameraConfig, viewportW, viewportH float32) *Camera {
	c := &Camera{
		Eye:       vec3(cfg.Eye),
		Target:    vec3(cfg.Target),
		Up:        mgl32.Vec3{0, 1, 0},
		FovY:      float32(cfg.FovY),
		Near:      float32(cfg.Near),
		Far:       float32(cfg.Far),
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
	c.update()
	return c
}

func vec3(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Aspect returns the viewport width over height.
func (c *Camera) Aspect() float32 {
	if c.ViewportH <= 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// View returns the world to camera transform.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection returns the camera to clip transform.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect(), c.Near, c.Far)
}

// update recomputes the cached matrices. Call after changing any field.
func (c *Camera) update() {
	c.viewProj = c.Projection().Mul4(c.View())
	c.inverse = c.viewProj.Inv()
}

// LookFrom moves the eye and refreshes the cached matrices.
func (c *Camera) LookFrom(eye mgl32.Vec3) {
	c.Eye = eye
	c.update()
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.update()
}

// ScreenToNDC converts pixel coordinates to normalized device coordinates,
// x right and y up in [-1,1].
func (c *Camera) ScreenToNDC(sx, sy float32) (nx, ny float32) {
	return sx/c.ViewportW*2 - 1, -(sy/c.ViewportH*2 - 1)
}

// ImageToNDC converts normalized image coordinates ([0,1], y down) to NDC.
func ImageToNDC(x, y float32) (nx, ny float32) {
	return x*2 - 1, -(y*2 - 1)
}

// WorldToNDC projects a world point. ok is false for points behind the eye.
func (c *Camera) WorldToNDC(p mgl32.Vec3) (nx, ny float32, ok bool) {
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	return clip.X() / clip.W(), clip.Y() / clip.W(), true
}

// Ray returns the world-space ray through an NDC point. dir is unit length.
func (c *Camera) Ray(nx, ny float32) (origin, dir mgl32.Vec3) {
	near := c.inverse.Mul4x1(mgl32.Vec4{nx, ny, -1, 1})
	far := c.inverse.Mul4x1(mgl32.Vec4{nx, ny, 1, 1})
	origin = near.Vec3().Mul(1 / near.W())
	end := far.Vec3().Mul(1 / far.W())
	return origin, end.Sub(origin).Normalize()
}

// OffScene is where the raycaster parks its point before the first hit.
const OffScene = 1e4

// parallelEpsilon bounds |dir.z| below which a ray is treated as parallel to the plane.
const parallelEpsilon = 1e-6

// Raycaster intersects pointer rays with the plane z = PlaneZ. The point is
// only replaced by a valid intersection, so it never holds NaN.
type Raycaster struct {
	cam    *Camera
	planeZ float32
	point  mgl32.Vec3
	hit    bool
}

// NewRaycaster creates a raycaster whose point starts off scene.
func NewRaycaster(cam *Camera, planeZ float32) *Raycaster {
	return &Raycaster{
		cam:    cam,
		planeZ: planeZ,
		point:  mgl32.Vec3{OffScene, OffScene, planeZ},
	}
}

// Cast updates the world point from an NDC pointer position. It returns the
// current point and whether this cast hit the plane; on a miss the previous
// point is kept.
func (r *Raycaster) Cast(nx, ny float32) (mgl32.Vec3, bool) {
	if !finite(nx) || !finite(ny) {
		return r.point, false
	}
	origin, dir := r.cam.Ray(nx, ny)
	if math32.Abs(dir.Z()) < parallelEpsilon {
		return r.point, false
	}
	t := (r.planeZ - origin.Z()) / dir.Z()
	if t < 0 {
		return r.point, false
	}
	p := origin.Add(dir.Mul(t))
	if !finite(p.X()) || !finite(p.Y()) {
		return r.point, false
	}
	p[2] = r.planeZ
	r.point = p
	r.hit = true
	return p, true
}

// Point returns the last world point.
func (r *Raycaster) Point() mgl32.Vec3 { return r.point }

// Hit reports whether any cast has landed on the plane yet.
func (r *Raycaster) Hit() bool { return r.hit }

// Reset parks the point off scene.
func (r *Raycaster) Reset() {
	r.point = mgl32.Vec3{OffScene, OffScene, r.planeZ}
	r.hit = false
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
