// Package gesture turns hand landmark samples into blend targets for the shapes.
//
// Landmarks follow the common 21-joint hand layout: 0 is the wrist, then four
// joints per digit from the knuckle outward (thumb 1-4, index 5-8, middle 9-12,
// ring 13-16, pinky 17-20). Coordinates are normalized to the image: x and y in
// [0,1] with y pointing down, z a relative depth on the same scale as x.
package gesture

import "github.com/chewxy/math32"

// Landmark indices.
const (
	Wrist = 0

	ThumbCMC = 1
	ThumbMCP = 2
	ThumbIP  = 3
	ThumbTip = 4

	IndexMCP = 5
	IndexPIP = 6
	IndexDIP = 7
	IndexTip = 8

	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12

	RingMCP = 13
	RingPIP = 14
	RingDIP = 15
	RingTip = 16

	PinkyMCP = 17
	PinkyPIP = 18
	PinkyDIP = 19
	PinkyTip = 20

	NumLandmarks = 21
)

// Finger identifies one of the four non-thumb fingers by its knuckle index.
type Finger int

const (
	FingerIndex  Finger = IndexMCP
	FingerMiddle Finger = MiddleMCP
	FingerRing   Finger = RingMCP
	FingerPinky  Finger = PinkyMCP
)

// Handedness labels.
const (
	Left  = "Left"
	Right = "Right"
)

// Point is a normalized 3D landmark.
type Point struct {
	X, Y, Z float32
}

func (p Point) sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }

func (p Point) dot(q Point) float32 { return p.X*q.X + p.Y*q.Y + p.Z*q.Z }

func (p Point) cross(q Point) Point {
	return Point{
		p.Y*q.Z - p.Z*q.Y,
		p.Z*q.X - p.X*q.Z,
		p.X*q.Y - p.Y*q.X,
	}
}

func (p Point) length() float32 { return math32.Sqrt(p.dot(p)) }

// Dist returns the distance between two points.
func Dist(a, b Point) float32 { return a.sub(b).length() }

// Hand is one detected hand.
type Hand struct {
	Landmarks  [NumLandmarks]Point
	Handedness string
	Score      float32
}

// Frame is one processed video frame. Timestamp is in milliseconds and strictly
// increases between distinct samples.
type Frame struct {
	Timestamp int64
	Hands     []Hand
}

// Size returns the wrist to middle-knuckle distance, the unit for scale-free thresholds.
func (h *Hand) Size() float32 {
	return Dist(h.Landmarks[Wrist], h.Landmarks[MiddleMCP])
}

// PinchDistance returns the thumb tip to index tip distance in hand sizes.
func (h *Hand) PinchDistance() float32 {
	size := h.Size()
	if size <= 0 {
		return 0
	}
	return Dist(h.Landmarks[ThumbTip], h.Landmarks[IndexTip]) / size
}

// PinchPoint returns the midpoint between thumb tip and index tip.
func (h *Hand) PinchPoint() Point {
	a, b := h.Landmarks[ThumbTip], h.Landmarks[IndexTip]
	return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2, (a.Z + b.Z) / 2}
}

// Curled reports whether finger f is folded: its tip is closer to the wrist than
// ratio times its MCP knuckle. The reference is the MCP knuckle, not the PIP
// joint. An extended finger's tip is only about 1.4x as far from the wrist as
// its PIP joint, so a 1.6 ratio against the PIP would read every finger as curled.
func (h *Hand) Curled(f Finger, ratio float32) bool {
	wrist := h.Landmarks[Wrist]
	knuckle := h.Landmarks[int(f)]
	tip := h.Landmarks[int(f)+3]
	return Dist(tip, wrist) < ratio*Dist(knuckle, wrist)
}

// PalmCenter returns the mean of the wrist and the four finger knuckles.
func (h *Hand) PalmCenter() Point {
	var c Point
	for _, i := range [...]int{Wrist, IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		p := h.Landmarks[i]
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	return Point{c.X / 5, c.Y / 5, c.Z / 5}
}

// PalmNormal returns the unit normal of the wrist/index-knuckle/pinky-knuckle plane.
// Its sign depends on handedness; callers compare orientation with |dot|.
func (h *Hand) PalmNormal() Point {
	w := h.Landmarks[Wrist]
	n := h.Landmarks[IndexMCP].sub(w).cross(h.Landmarks[PinkyMCP].sub(w))
	l := n.length()
	if l == 0 {
		return Point{}
	}
	return Point{n.X / l, n.Y / l, n.Z / l}
}
