// Package obstacle provides static collision geometry that answers the
// swept-sphere probes of the flock package.
package obstacle

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// DefaultLayer is the layer given to shapes built without an explicit one.
const DefaultLayer uint32 = 1

// Shape is a static solid that can be tested against a swept sphere.
type Shape interface {
	// Sweep reports whether a sphere of radius moving from origin along the
	// unit direction dir for maxDistance intersects the shape.
	Sweep(origin, dir geometry.Vector3D, radius, maxDistance float64) bool
	// Layer returns the layer bitmask of the shape.
	Layer() uint32
}

// Sphere is a solid ball.
type Sphere struct {
	Center geometry.Vector3D
	Radius float64
	Layers uint32
}

// Sweep tests the distance between the center and the swept segment.
func (s Sphere) Sweep(origin, dir geometry.Vector3D, radius, maxDistance float64) bool {
	reach := s.Radius + radius
	return segmentPointDistSq(origin, dir, maxDistance, s.Center) <= reach*reach
}

// Layer implements Shape.
func (s Sphere) Layer() uint32 { return layerOrDefault(s.Layers) }

// Box is a solid axis-aligned box.
type Box struct {
	Min, Max geometry.Vector3D
	Layers   uint32
}

// Sweep grows the box by radius on every side and runs a slab test of the
// swept segment against it. Corners are treated as square, which slightly
// overestimates hits near the edges of the box.
func (b Box) Sweep(origin, dir geometry.Vector3D, radius, maxDistance float64) bool {
	lo := b.Min.Sub(geometry.Vector3D{X: radius, Y: radius, Z: radius})
	hi := b.Max.Add(geometry.Vector3D{X: radius, Y: radius, Z: radius})

	tMin, tMax := 0.0, maxDistance
	axes := [3][4]float64{
		{origin.X, dir.X, lo.X, hi.X},
		{origin.Y, dir.Y, lo.Y, hi.Y},
		{origin.Z, dir.Z, lo.Z, hi.Z},
	}
	for _, ax := range axes {
		o, d, l, h := ax[0], ax[1], ax[2], ax[3]
		if math.Abs(d) < geometry.Epsilon {
			// Parallel to the slab: must already be inside it
			if o < l || o > h {
				return false
			}
			continue
		}
		t1, t2 := (l-o)/d, (h-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Layer implements Shape.
func (b Box) Layer() uint32 { return layerOrDefault(b.Layers) }

// Set is an immutable collection of shapes. It is safe for concurrent casts.
type Set struct {
	shapes []Shape
	mask   uint32 // 0: every layer
}

var (
	_ flock.ObstacleQuery = (*Set)(nil)
	_ flock.Masker        = (*Set)(nil)
)

// NewSet copies shapes into a new set.
func NewSet(shapes ...Shape) *Set {
	return &Set{shapes: append([]Shape(nil), shapes...)}
}

// Len returns the number of shapes.
func (s *Set) Len() int { return len(s.shapes) }

// CastCapsule implements flock.ObstacleQuery with a brute force scan.
func (s *Set) CastCapsule(origin, direction geometry.Vector3D, radius, maxDistance float64) bool {
	dir := direction.Normalize()
	if dir.IsZero() {
		return false
	}
	for _, sh := range s.shapes {
		if s.mask != 0 && sh.Layer()&s.mask == 0 {
			continue
		}
		if sh.Sweep(origin, dir, radius, maxDistance) {
			return true
		}
	}
	return false
}

// Mask returns a view of the set restricted to shapes on the given layers.
func (s *Set) Mask(layers uint32) flock.ObstacleQuery {
	return &Set{shapes: s.shapes, mask: layers}
}

// segmentPointDistSq returns the squared distance between p and the segment
// origin + t*dir, t in [0, length].
func segmentPointDistSq(origin, dir geometry.Vector3D, length float64, p geometry.Vector3D) float64 {
	t := p.Sub(origin).Dot(dir)
	t = math.Max(0, math.Min(length, t))
	return origin.Add(dir.Mul(t)).DistanceSquaredTo(p)
}

func layerOrDefault(l uint32) uint32 {
	if l == 0 {
		return DefaultLayer
	}
	return l
}
