// Package particles holds the shared particle store and the index bookkeeping
// that partitions it between steady shape particles and transient bursts.
package particles

import "fmt"

// Buffer is the single shared store of current positions and colors.
// Slices are interleaved xyz / rgb and keep their identity for the buffer's lifetime.
type Buffer struct {
	positions []float32
	colors    []float32
	version   uint64
}

// NewBuffer allocates a buffer for n particles.
func NewBuffer(n int) *Buffer {
	return &Buffer{
		positions: make([]float32, 3*n),
		colors:    make([]float32, 3*n),
	}
}

// Len returns the particle count.
func (b *Buffer) Len() int { return len(b.positions) / 3 }

// Positions returns the interleaved position slice. Renderers must treat it as read-only.
func (b *Buffer) Positions() []float32 { return b.positions }

// Colors returns the interleaved color slice. Renderers must treat it as read-only.
func (b *Buffer) Colors() []float32 { return b.colors }

// Version increments each time MarkChanged is called.
func (b *Buffer) Version() uint64 { return b.version }

// MarkChanged records that the contents changed this frame.
func (b *Buffer) MarkChanged() { b.version++ }

// Load copies src positions and colors into the first len(src)/3 particles.
func (b *Buffer) Load(positions, colors []float32) {
	if len(positions) != len(colors) || len(positions) > len(b.positions) {
		panic(fmt.Sprintf("particles: load of %d/%d floats into buffer of %d",
			len(positions), len(colors), len(b.positions)))
	}
	copy(b.positions, positions)
	copy(b.colors, colors)
}

// Position returns particle i's position.
func (b *Buffer) Position(i int) (x, y, z float32) {
	return b.positions[3*i], b.positions[3*i+1], b.positions[3*i+2]
}

// SetPosition writes particle i's position.
func (b *Buffer) SetPosition(i int, x, y, z float32) {
	b.positions[3*i] = x
	b.positions[3*i+1] = y
	b.positions[3*i+2] = z
}

// Color returns particle i's color.
func (b *Buffer) Color(i int) (r, g, bl float32) {
	return b.colors[3*i], b.colors[3*i+1], b.colors[3*i+2]
}

// SetColor writes particle i's color.
func (b *Buffer) SetColor(i int, r, g, bl float32) {
	b.colors[3*i] = r
	b.colors[3*i+1] = g
	b.colors[3*i+2] = bl
}

// ParkedCoord is the coordinate a parked particle sits at on every axis.
const ParkedCoord = 1e4

// Park hides particle i off scene with zero color.
func (b *Buffer) Park(i int) {
	b.SetPosition(i, ParkedCoord, ParkedCoord, ParkedCoord)
	b.SetColor(i, 0, 0, 0)
}

// Parked reports whether particle i was parked and not written since.
func (b *Buffer) Parked(i int) bool {
	j := 3 * i
	return b.positions[j] == ParkedCoord && b.positions[j+1] == ParkedCoord && b.positions[j+2] == ParkedCoord
}
