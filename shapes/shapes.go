// Package shapes generates the static target point clouds the particles morph between.
//
// Every generator covers exactly Options.Count particles. The tail of the index
// space is the shared ambient background; the remaining head is split across the
// shape's own regions, with the last shape region absorbing rounding remainders.
package shapes

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/bloomfield/config"
)

// Shape identifies a morph target. The order is the blend priority order:
// later shapes lerp over earlier ones.
type Shape uint8

const (
	ShapeFlower Shape = iota
	ShapeSpiral
	ShapeEmblem
	NumShapes
)

func (s Shape) String() string {
	switch s {
	case ShapeFlower:
		return "flower"
	case ShapeSpiral:
		return "spiral"
	case ShapeEmblem:
		return "emblem"
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// RegionBackground is the name of the shared ambient region every shape ends with.
const RegionBackground = "background"

// Region is a contiguous named slice of the flat particle index space.
type Region struct {
	Name  string
	Start int
	Count int
}

// End returns one past the last index of the region.
func (r Region) End() int { return r.Start + r.Count }

// Share is a requested fraction of a split.
type Share struct {
	Name     string
	Fraction float64
}

// Buffer is an immutable generated target: interleaved xyz positions and rgb colors.
type Buffer struct {
	Shape     Shape
	Positions []float32
	Colors    []float32
	Regions   []Region
}

func newBuffer(shape Shape, n int, regions []Region) *Buffer {
	return &Buffer{
		Shape:     shape,
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
		Regions:   regions,
	}
}

// Len returns the number of particles covered.
func (b *Buffer) Len() int { return len(b.Positions) / 3 }

// Region returns the named region.
func (b *Buffer) Region(name string) (Region, bool) {
	for _, r := range b.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// RegionOf returns the region containing index i.
func (b *Buffer) RegionOf(i int) (Region, bool) {
	for _, r := range b.Regions {
		if i >= r.Start && i < r.End() {
			return r, true
		}
	}
	return Region{}, false
}

func (b *Buffer) set(i int, x, y, z float64, c colorful.Color) {
	c = c.Clamped()
	b.Positions[3*i] = float32(x)
	b.Positions[3*i+1] = float32(y)
	b.Positions[3*i+2] = float32(z)
	b.Colors[3*i] = float32(c.R)
	b.Colors[3*i+1] = float32(c.G)
	b.Colors[3*i+2] = float32(c.B)
}

// Split divides n particles into consecutive regions starting at start.
// Each region gets floor(n*fraction); the last share absorbs the remainder
// regardless of its own fraction.
func Split(start, n int, shares []Share) []Region {
	regions := make([]Region, len(shares))
	used := 0
	for i, s := range shares {
		count := 0
		if i == len(shares)-1 {
			count = n - used
		} else {
			count = int(float64(n) * s.Fraction)
			if count < 0 {
				count = 0
			}
			if used+count > n {
				count = n - used
			}
		}
		regions[i] = Region{Name: s.Name, Start: start + used, Count: count}
		used += count
	}
	return regions
}

// Options holds the generator inputs shared by all shapes.
type Options struct {
	Count              int
	BackgroundFraction float64

	// BackgroundSeed drives the ambient fill so background particles rest at the
	// same spot in every shape.
	BackgroundSeed int64

	// Rand supplies the random draws. Nil means an unseeded source.
	Rand *rand.Rand
}

func (o Options) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// layout splits the index space into shape regions followed by the background.
func (o Options) layout(shares []Share) []Region {
	bg := config.BackgroundCount(o.Count, o.BackgroundFraction)
	head := o.Count - bg
	regions := Split(0, head, shares)
	return append(regions, Region{Name: RegionBackground, Start: head, Count: bg})
}

// Set holds one buffer per shape, indexed by Shape.
type Set [NumShapes]*Buffer

// Generate builds every shape from config with a shared background seed.
func Generate(cfg *config.Config, rng *rand.Rand) Set {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	opts := Options{
		Count:              cfg.Particles.Count,
		BackgroundFraction: cfg.Particles.BackgroundFraction,
		BackgroundSeed:     rng.Int63(),
		Rand:               rng,
	}
	var set Set
	set[ShapeFlower] = Flower(opts, cfg.Flower)
	set[ShapeSpiral] = Spiral(opts, cfg.Spiral)
	set[ShapeEmblem] = Emblem(opts, cfg.Emblem)
	return set
}
