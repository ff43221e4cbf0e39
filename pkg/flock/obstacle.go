package flock

import "github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"

// ObstacleQuery answers swept-sphere casts against static obstacles.
// CastCapsule reports whether a sphere of radius moved from origin along the
// unit vector direction for maxDistance touches any obstacle.
// Implementations must be free of side effects: the parallel strategy casts
// from several goroutines at once.
type ObstacleQuery interface {
	CastCapsule(origin, direction geometry.Vector3D, radius, maxDistance float64) bool
}

// ObstacleFunc adapts an ordinary function to ObstacleQuery.
type ObstacleFunc func(origin, direction geometry.Vector3D, radius, maxDistance float64) bool

// CastCapsule calls f.
func (f ObstacleFunc) CastCapsule(origin, direction geometry.Vector3D, radius, maxDistance float64) bool {
	return f(origin, direction, radius, maxDistance)
}

// Masker is implemented by obstacle sets that can restrict casts to a
// subset of layers.
type Masker interface {
	Mask(layers uint32) ObstacleQuery
}

// NoObstacles is an empty world.
var NoObstacles ObstacleQuery = ObstacleFunc(func(_, _ geometry.Vector3D, _, _ float64) bool { return false })

// IsObstacleAhead reports whether the probe swept along forward for
// lookahead hits an obstacle.
func IsObstacleAhead(position, forward geometry.Vector3D, probeRadius, lookahead float64, obstacles ObstacleQuery) bool {
	if obstacles == nil {
		return false
	}
	return obstacles.CastCapsule(position, forward, probeRadius, lookahead)
}

// FindClearDirection walks probes in table order, maps each one into world
// space with basis and returns the first direction whose cast is clear.
// When every direction is blocked the agent keeps its forward heading.
func FindClearDirection(position, forward geometry.Vector3D, basis geometry.Basis, probes ProbeTable,
	probeRadius, lookahead float64, obstacles ObstacleQuery) geometry.Vector3D {
	if obstacles == nil {
		return forward
	}
	for _, local := range probes {
		dir := basis.TransformDirection(local)
		if !obstacles.CastCapsule(position, dir, probeRadius, lookahead) {
			return dir
		}
	}
	return forward
}
