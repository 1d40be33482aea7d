package camera

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/bloomfield/config"
)

// Orbit swings the camera around its target on a damped spring.
// Yaw and pitch are offsets in degrees from the configured eye direction.
type Orbit struct {
	cam    *Camera
	spring harmonica.Spring

	center    mgl32.Vec3
	radius    float64
	baseYaw   float64 // radians
	basePitch float64 // radians

	yaw, yawVel     float64
	pitch, pitchVel float64
	goalYaw         float64
	goalPitch       float64
	maxYaw          float64
	maxPitch        float64
}

// NewOrbit creates an orbit stepping at fps frames per second.
func NewOrbit(cam *Camera, cfg config.CameraConfig, fps int) *Orbit {
	if fps <= 0 {
		fps = 60
	}
	off := cam.Eye.Sub(cam.Target)
	r := float64(off.Len())
	o := &Orbit{
		cam:      cam,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), cfg.OrbitFrequency, cfg.OrbitDamping),
		center:   cam.Target,
		radius:   r,
		maxYaw:   cfg.MaxYaw,
		maxPitch: cfg.MaxPitch,
	}
	if r > 0 {
		o.baseYaw = math.Atan2(float64(off.X()), float64(off.Z()))
		o.basePitch = math.Asin(float64(off.Y()) / r)
	}
	return o
}

// Nudge moves the goal by the given degrees, clamped to the configured range.
func (o *Orbit) Nudge(dYaw, dPitch float64) {
	o.SetGoal(o.goalYaw+dYaw, o.goalPitch+dPitch)
}

// SetGoal sets the goal offsets in degrees, clamped to the configured range.
func (o *Orbit) SetGoal(yaw, pitch float64) {
	o.goalYaw = clampF(yaw, -o.maxYaw, o.maxYaw)
	o.goalPitch = clampF(pitch, -o.maxPitch, o.maxPitch)
}

// Recenter returns the goal to the configured eye.
func (o *Orbit) Recenter() { o.SetGoal(0, 0) }

// Goal returns the goal offsets in degrees.
func (o *Orbit) Goal() (yaw, pitch float64) { return o.goalYaw, o.goalPitch }

// Offsets returns the current offsets in degrees.
func (o *Orbit) Offsets() (yaw, pitch float64) { return o.yaw, o.pitch }

// Update advances the spring one frame and moves the camera eye.
func (o *Orbit) Update() {
	o.yaw, o.yawVel = o.spring.Update(o.yaw, o.yawVel, o.goalYaw)
	o.pitch, o.pitchVel = o.spring.Update(o.pitch, o.pitchVel, o.goalPitch)
	o.cam.LookFrom(o.eye())
}

func (o *Orbit) eye() mgl32.Vec3 {
	yaw := o.baseYaw + o.yaw*math.Pi/180
	pitch := o.basePitch + o.pitch*math.Pi/180
	cp := math.Cos(pitch)
	off := mgl32.Vec3{
		float32(o.radius * cp * math.Sin(yaw)),
		float32(o.radius * math.Sin(pitch)),
		float32(o.radius * cp * math.Cos(yaw)),
	}
	return o.center.Add(off)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
