package gesture

import (
	"github.com/chewxy/math32"

	"github.com/pthm-cable/bloomfield/config"
)

// Classifier evaluates the geometric gesture predicates.
type Classifier struct {
	curlRatio     float32
	swordTipGap   float32
	mergeDistance float32
	palmAlignment float32
	minScore      float32
}

// NewClassifier creates a classifier from gesture thresholds.
func NewClassifier(cfg config.GestureConfig) Classifier {
	return Classifier{
		curlRatio:     float32(cfg.CurlRatio),
		swordTipGap:   float32(cfg.SwordTipGap),
		mergeDistance: float32(cfg.MergeDistance),
		palmAlignment: float32(cfg.PalmAlignment),
		minScore:      float32(cfg.MinScore),
	}
}

// Usable reports whether a hand's confidence passes the minimum score.
func (c Classifier) Usable(h *Hand) bool {
	return h.Score >= c.minScore && h.Size() > 0
}

// Sword is the two-finger blade: index and middle extended with tips together
// (gap under swordTipGap hand sizes), ring and pinky curled.
func (c Classifier) Sword(h *Hand) bool {
	if h.Curled(FingerIndex, c.curlRatio) || h.Curled(FingerMiddle, c.curlRatio) {
		return false
	}
	if !h.Curled(FingerRing, c.curlRatio) || !h.Curled(FingerPinky, c.curlRatio) {
		return false
	}
	gap := Dist(h.Landmarks[IndexTip], h.Landmarks[MiddleTip])
	return gap < c.swordTipGap*h.Size()
}

// PalmsMerged reports two palms held together: centers closer than
// mergeDistance mean hand sizes and palm planes parallel within palmAlignment
// (|cos| between normals).
func (c Classifier) PalmsMerged(a, b *Hand) bool {
	size := (a.Size() + b.Size()) / 2
	if Dist(a.PalmCenter(), b.PalmCenter()) >= c.mergeDistance*size {
		return false
	}
	return math32.Abs(a.PalmNormal().dot(b.PalmNormal())) >= c.palmAlignment
}
