// Package flock implements 3D flocking for a population of agents.
//
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// Every agent steers from three local rules (cohesion, alignment and
// separation) computed over the neighbours it perceives, plus an obstacle
// avoidance force found by probing a fixed table of candidate directions.
// https://en.wikipedia.org/wiki/Boids
package flock

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// ErrInvalidSettings is wrapped by every error returned from Settings.Validate.
var ErrInvalidSettings = errors.New("invalid flock settings")

// Settings controls the steering constants of one population.
// A single value is built at setup and shared by pointer between all the
// agents of the population; nothing mutates it afterwards.
type Settings struct {
	CohesionWeight       float64 `json:"cohesionWeight" toml:"cohesionWeight"`             // pull towards the neighbours centroid
	AlignmentWeight      float64 `json:"alignmentWeight" toml:"alignmentWeight"`           // match the neighbours heading
	SeparationWeight     float64 `json:"separationWeight" toml:"separationWeight"`         // push away from crowding
	AvoidCollisionWeight float64 `json:"avoidCollisionWeight" toml:"avoidCollisionWeight"` // obstacle avoidance strength

	MinimumSpeed  float64 `json:"minimumSpeed" toml:"minimumSpeed"`
	MaximumSpeed  float64 `json:"maximumSpeed" toml:"maximumSpeed"`
	MaxSteerForce float64 `json:"maxSteerForce" toml:"maxSteerForce"`

	PerceptionRadius float64 `json:"perceptionRadius" toml:"perceptionRadius"` // how far can they see?
	AvoidanceRadius  float64 `json:"avoidanceRadius" toml:"avoidanceRadius"`   // personal space radius

	// ViewAngle is the half angle (radians) of the perception cone around the
	// heading. 0 or Pi means the agent sees all around.
	ViewAngle float64 `json:"viewAngle" toml:"viewAngle"`

	CollisionAvoidDistance float64 `json:"collisionAvoidDistance" toml:"collisionAvoidDistance"` // obstacle lookahead
	ProbeRadius            float64 `json:"probeRadius" toml:"probeRadius"`                       // radius of the swept probe

	// ObstacleMask selects the obstacle layers this population collides with.
	// 0 means every layer.
	ObstacleMask uint32 `json:"obstacleMask" toml:"obstacleMask"`
}

// DefaultSettings returns the tuning used for the boid population.
func DefaultSettings() *Settings {
	return &Settings{
		CohesionWeight:         1,
		AlignmentWeight:        1,
		SeparationWeight:       1,
		AvoidCollisionWeight:   10,
		MinimumSpeed:           2,
		MaximumSpeed:           5,
		MaxSteerForce:          3,
		PerceptionRadius:       2.5,
		AvoidanceRadius:        1,
		CollisionAvoidDistance: 5,
		ProbeRadius:            0.27,
	}
}

// Validate reports every inconsistent field at once. The returned error
// wraps ErrInvalidSettings.
func (s *Settings) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil settings", ErrInvalidSettings)
	}
	var err error
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"cohesionWeight", s.CohesionWeight},
		{"alignmentWeight", s.AlignmentWeight},
		{"separationWeight", s.SeparationWeight},
		{"avoidCollisionWeight", s.AvoidCollisionWeight},
		{"collisionAvoidDistance", s.CollisionAvoidDistance},
		{"probeRadius", s.ProbeRadius},
	}
	for _, f := range nonNegative {
		if f.value < 0 || math.IsNaN(f.value) {
			err = multierr.Append(err, fmt.Errorf("%s must be >= 0, got %v", f.name, f.value))
		}
	}
	positive := []struct {
		name  string
		value float64
	}{
		{"minimumSpeed", s.MinimumSpeed},
		{"maximumSpeed", s.MaximumSpeed},
		{"maxSteerForce", s.MaxSteerForce},
		{"perceptionRadius", s.PerceptionRadius},
		{"avoidanceRadius", s.AvoidanceRadius},
	}
	for _, f := range positive {
		if !(f.value > 0) {
			err = multierr.Append(err, fmt.Errorf("%s must be > 0, got %v", f.name, f.value))
		}
	}
	if s.MaximumSpeed < s.MinimumSpeed {
		err = multierr.Append(err, fmt.Errorf("maximumSpeed (%v) must be >= minimumSpeed (%v)", s.MaximumSpeed, s.MinimumSpeed))
	}
	if s.ViewAngle < 0 || s.ViewAngle > math.Pi || math.IsNaN(s.ViewAngle) {
		err = multierr.Append(err, fmt.Errorf("viewAngle must be within [0, Pi], got %v", s.ViewAngle))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// hasViewCone reports whether the perception cone restricts neighbours.
func (s *Settings) hasViewCone() bool {
	return s.ViewAngle > 0 && s.ViewAngle < math.Pi
}
