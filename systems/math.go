package systems

import "github.com/chewxy/math32"

// Clamp functions for common value ranges

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// lerp blends a toward b. t = 1 returns b exactly.
func lerp(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// distanceSq3 returns the squared distance between two points.
func distanceSq3(x1, y1, z1, x2, y2, z2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	dz := z1 - z2
	return dx*dx + dy*dy + dz*dz
}

// rotate2 rotates (x, y) by the angle whose sine and cosine are given.
func rotate2(x, y, sin, cos float32) (float32, float32) {
	return x*cos - y*sin, x*sin + y*cos
}

// sincos returns sin and cos of angle.
func sincos(angle float32) (float32, float32) {
	return math32.Sin(angle), math32.Cos(angle)
}

// hashSigned maps (i, frame, salt) to a pseudo-random value in [-1, 1).
// It is stateless so parallel workers can draw jitter without sharing an RNG.
func hashSigned(i int, frame int64, salt uint32) float32 {
	h := uint32(i)*0x9E3779B1 ^ uint32(frame)*0x85EBCA77 ^ salt*0xC2B2AE3D
	h ^= h >> 15
	h *= 0x2C1B3C6D
	h ^= h >> 12
	h *= 0x297A2D39
	h ^= h >> 15
	return float32(h)/float32(1<<31) - 1
}
