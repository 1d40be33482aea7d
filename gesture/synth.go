package gesture

import "github.com/chewxy/math32"

// Pose is a canned hand shape for synthetic input.
type Pose int

const (
	PoseOpen Pose = iota
	PoseFist
	PoseSword
	PosePinch
)

func (p Pose) String() string {
	switch p {
	case PoseOpen:
		return "open"
	case PoseFist:
		return "fist"
	case PoseSword:
		return "sword"
	case PosePinch:
		return "pinch"
	}
	return "unknown"
}

// ParsePose converts a pose name to a Pose.
func ParsePose(name string) (Pose, bool) {
	for p := PoseOpen; p <= PosePinch; p++ {
		if p.String() == name {
			return p, true
		}
	}
	return 0, false
}

// Synth builds plausible landmark sets without a camera. Coordinates are laid
// out in hand sizes with the wrist at the origin and the middle knuckle at
// (0,1), then scaled into image space.
type Synth struct {
	Scale float32 // Hand size in normalized image units
	Score float32
}

// DefaultSynth returns a synthesizer for a hand filling about a sixth of the frame.
func DefaultSynth() Synth {
	return Synth{Scale: 0.16, Score: 0.95}
}

type fingerSpec struct {
	knuckle int
	base    [2]float32
	dir     [2]float32
	length  float32
}

var fingers = [4]fingerSpec{
	{IndexMCP, [2]float32{0.32, 0.95}, [2]float32{0.08, 1}, 0.9},
	{MiddleMCP, [2]float32{0, 1}, [2]float32{0, 1}, 0.95},
	{RingMCP, [2]float32{-0.28, 0.95}, [2]float32{-0.06, 1}, 0.88},
	{PinkyMCP, [2]float32{-0.52, 0.85}, [2]float32{-0.15, 1}, 0.78},
}

// palmCenterY is the local height of the palm center, placed at the requested point.
const palmCenterY = 0.75

// Hand builds one hand centered at (cx, cy). pinch is the thumb to index tip
// distance in hand sizes and only applies to PosePinch.
func (s Synth) Hand(pose Pose, handedness string, cx, cy, pinch float32) Hand {
	var local [NumLandmarks]Point

	thumbOpen := pose == PoseOpen || pose == PosePinch
	if thumbOpen {
		local[ThumbCMC] = Point{0.22, 0.18, 0}
		local[ThumbMCP] = Point{0.45, 0.38, 0}
		local[ThumbIP] = Point{0.62, 0.58, 0}
		local[ThumbTip] = Point{0.75, 0.78, 0}
	} else {
		local[ThumbCMC] = Point{0.2, 0.2, 0}
		local[ThumbMCP] = Point{0.35, 0.4, -0.05}
		local[ThumbIP] = Point{0.3, 0.6, -0.1}
		local[ThumbTip] = Point{0.15, 0.7, -0.12}
	}

	for k, f := range fingers {
		extended := pose == PoseOpen || pose == PosePinch ||
			(pose == PoseSword && (f.knuckle == IndexMCP || f.knuckle == MiddleMCP))
		if extended {
			setExtended(&local, f)
		} else {
			setCurled(&local, f)
		}
		if pose == PoseSword && k == 0 {
			// Lean the index toward the middle finger so the tips touch
			setToward(&local, f, [2]float32{0.1, 1.85})
		}
	}

	if pose == PosePinch {
		tip := local[ThumbTip]
		target := [2]float32{tip.X - pinch*0.6, tip.Y + pinch*0.8}
		setToward(&local, fingers[0], target)
	}

	h := Hand{Handedness: handedness, Score: s.Score}
	mirror := float32(1)
	if handedness == Left {
		mirror = -1
	}
	for i, p := range local {
		h.Landmarks[i] = Point{
			X: cx + mirror*p.X*s.Scale,
			Y: cy - (p.Y-palmCenterY)*s.Scale,
			Z: p.Z * s.Scale,
		}
	}
	return h
}

// Palms builds a right and left open hand facing each other with their
// centers gap hand sizes apart. Small gaps read as merged palms.
func (s Synth) Palms(cx, cy, gap float32) []Hand {
	half := gap * s.Scale / 2
	return []Hand{
		s.Hand(PoseOpen, Right, cx-half, cy, 0),
		s.Hand(PoseOpen, Left, cx+half, cy, 0),
	}
}

// KnownPose reports whether name is a Pose, "palms" or "none".
func KnownPose(name string) bool {
	if name == "none" || name == "palms" {
		return true
	}
	_, ok := ParsePose(name)
	return ok
}

// Hands builds the hands for a named pose at image point (cx, cy). "none"
// yields no hands and "palms" a merged pair gap hand sizes apart.
func (s Synth) Hands(name string, cx, cy, pinch, gap float32) ([]Hand, bool) {
	switch name {
	case "none":
		return nil, true
	case "palms":
		if gap == 0 {
			gap = 0.2
		}
		return s.Palms(cx, cy, gap), true
	}
	p, ok := ParsePose(name)
	if !ok {
		return nil, false
	}
	return []Hand{s.Hand(p, Right, cx, cy, pinch)}, true
}

// Frame wraps hands into a sample.
func (s Synth) Frame(ts int64, hands ...Hand) Frame {
	return Frame{Timestamp: ts, Hands: hands}
}

func unit(v [2]float32) [2]float32 {
	l := math32.Hypot(v[0], v[1])
	return [2]float32{v[0] / l, v[1] / l}
}

func setExtended(local *[NumLandmarks]Point, f fingerSpec) {
	d := unit(f.dir)
	for j, frac := range [4]float32{0, 0.45, 0.75, 1} {
		local[f.knuckle+j] = Point{
			X: f.base[0] + d[0]*f.length*frac,
			Y: f.base[1] + d[1]*f.length*frac,
		}
	}
}

func setCurled(local *[NumLandmarks]Point, f fingerSpec) {
	d := unit(f.dir)
	local[f.knuckle] = Point{f.base[0], f.base[1], 0}
	local[f.knuckle+1] = Point{f.base[0] + d[0]*0.3, f.base[1] + d[1]*0.3, -0.2}
	local[f.knuckle+2] = Point{f.base[0] + d[0]*0.15, f.base[1] + d[1]*0.1, -0.3}
	local[f.knuckle+3] = Point{f.base[0], f.base[1] - 0.12, -0.15}
}

// setToward bends a finger so its tip lands on target, joints spaced evenly.
func setToward(local *[NumLandmarks]Point, f fingerSpec, target [2]float32) {
	for j, frac := range [4]float32{0, 0.45, 0.75, 1} {
		local[f.knuckle+j] = Point{
			X: f.base[0] + (target[0]-f.base[0])*frac,
			Y: f.base[1] + (target[1]-f.base[1])*frac,
		}
	}
}
