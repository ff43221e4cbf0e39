package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// Agent is one member of a population, boid or predator alike.
// Its kinematic state is owned by the agent and only written by Move.
type Agent struct {
	ID           string
	Position     geometry.Vector3D
	Forward      geometry.Vector3D // unit heading
	Velocity     geometry.Vector3D
	Acceleration geometry.Vector3D

	// Neighborhood is the transient output of the aggregation phase.
	Neighborhood

	// Avoiding is true when an obstacle was ahead during the last Move.
	Avoiding bool
}

// NewAgent places an agent at position heading along forward, cruising at
// the middle of the speed range of s.
func NewAgent(id string, position, forward geometry.Vector3D, s *Settings) *Agent {
	f := forward.Normalize()
	if f.IsZero() {
		f = geometry.Forward
	}
	startSpeed := (s.MinimumSpeed + s.MaximumSpeed) / 2
	return &Agent{
		ID:       id,
		Position: position,
		Forward:  f,
		Velocity: f.Mul(startSpeed),
	}
}

// Snapshot returns the frozen view other agents read during aggregation.
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{Position: a.Position, Forward: a.Forward}
}

// Basis returns the current orientation of the agent, world Y being up.
func (a *Agent) Basis() geometry.Basis {
	return geometry.LookBasis(a.Forward, geometry.Up)
}

// Speed returns the magnitude of the velocity.
func (a *Agent) Speed() float64 {
	return a.Velocity.Len()
}

// Move runs one integration step of dt seconds from the current
// Neighborhood: flocking forces when neighbours were perceived, an obstacle
// avoidance force when something is ahead, explicit Euler integration and
// speed clamping to [MinimumSpeed, MaximumSpeed].
//
// A velocity of exactly zero has no direction: the heading is kept and the
// clamp skipped for this tick. Non-finite values are never propagated; Move
// repairs them and returns true so the caller can report it.
func (a *Agent) Move(dt float64, s *Settings, probes ProbeTable, obstacles ObstacleQuery) (corrected bool) {
	corrected = a.sanitize(s)

	a.Acceleration = geometry.Zero
	if a.Count > 0 {
		a.applyFlocking(s)
	}

	a.Avoiding = false
	if IsObstacleAhead(a.Position, a.Forward, s.ProbeRadius, s.CollisionAvoidDistance, obstacles) {
		a.Avoiding = true
		dir := FindClearDirection(a.Position, a.Forward, a.Basis(), probes, s.ProbeRadius, s.CollisionAvoidDistance, obstacles)
		if force, ok := s.steerTowards(dir, a.Velocity); ok {
			a.Acceleration = a.Acceleration.Add(force.Mul(s.AvoidCollisionWeight))
		}
	}

	// --- SAFETY: a corrupted force is dropped rather than integrated ---
	if !a.Acceleration.IsFinite() {
		a.Acceleration = geometry.Zero
		corrected = true
	}

	// V - m/s, a - m/s², dt - s
	a.Velocity = a.Velocity.Add(a.Acceleration.Mul(dt))
	if !a.Velocity.IsFinite() {
		a.Velocity = a.Forward.Mul(s.MinimumSpeed)
		corrected = true
	}

	direction := a.Forward
	if speed := a.Velocity.Len(); speed > 0 {
		direction = a.Velocity.Mul(1 / speed)
		speed = math.Max(s.MinimumSpeed, math.Min(speed, s.MaximumSpeed))
		a.Velocity = direction.Mul(speed)
	}

	// X - m, V - m/s, dt - s
	next := a.Position.Add(a.Velocity.Mul(dt))
	if next.IsFinite() {
		a.Position = next
	} else {
		corrected = true
	}
	a.Forward = direction
	return corrected
}

// applyFlocking adds the weighted cohesion, alignment and separation forces.
// A rule whose target vector is zero contributes nothing.
func (a *Agent) applyFlocking(s *Settings) {
	if cohesion, ok := s.steerTowards(a.Centroid.Sub(a.Position), a.Velocity); ok {
		a.Acceleration = a.Acceleration.Add(cohesion.Mul(s.CohesionWeight))
	}
	if alignment, ok := s.steerTowards(a.AvgHeading, a.Velocity); ok {
		a.Acceleration = a.Acceleration.Add(alignment.Mul(s.AlignmentWeight))
	}
	if separation, ok := s.steerTowards(a.AvgAvoidance, a.Velocity); ok {
		a.Acceleration = a.Acceleration.Add(separation.Mul(s.SeparationWeight))
	}
}

// sanitize repairs a malformed state before it is used.
func (a *Agent) sanitize(s *Settings) bool {
	fixed := false
	if !a.Position.IsFinite() {
		a.Position = geometry.Zero
		fixed = true
	}
	if !a.Velocity.IsFinite() {
		a.Velocity = geometry.Zero
		fixed = true
	}
	if !a.Forward.IsFinite() || a.Forward.IsZero() {
		a.Forward = a.Velocity.Normalize()
		if a.Forward.IsZero() {
			a.Forward = geometry.Forward
		}
		fixed = true
	}
	if fixed && a.Velocity.IsZero() {
		a.Velocity = a.Forward.Mul(s.MinimumSpeed)
	}
	if !a.Neighborhood.finite() {
		a.Neighborhood = Neighborhood{}
		fixed = true
	}
	return fixed
}
