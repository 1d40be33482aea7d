// Package components defines ECS components for transient burst effects.
package components

// Spark is one burst sub-particle: a head and its chain of delayed followers.
type Spark struct {
	Head  int
	Trail []int // Trail[0] follows the head; the last entry is the oldest position

	VelX, VelY, VelZ float32
}

// Firework is a live burst borrowing indices from the transient reserve.
type Firework struct {
	ID      uint32
	Age     int32
	R, G, B float32 // base color
	Sparks  []Spark
	Slots   []int // every borrowed index, in allocation order
}
