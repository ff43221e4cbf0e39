package flock

import "github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"

// Seek returns the steering force that turns velocity towards the direction
// of target at maxSpeed, clamped to maxForce. Only the direction of target is
// used. A zero target has no direction: Seek then returns a zero force and
// false, and the caller must skip the contribution.
func Seek(target, velocity geometry.Vector3D, maxSpeed, maxForce float64) (geometry.Vector3D, bool) {
	dir := target.Normalize()
	if dir.IsZero() {
		return geometry.Zero, false
	}
	desired := dir.Mul(maxSpeed)
	return desired.Sub(velocity).ClampLen(maxForce), true
}

// steerTowards is Seek bound to the speed and force limits of s.
func (s *Settings) steerTowards(target, velocity geometry.Vector3D) (geometry.Vector3D, bool) {
	return Seek(target, velocity, s.MaximumSpeed, s.MaxSteerForce)
}
