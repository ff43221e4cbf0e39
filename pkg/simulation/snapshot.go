package simulation

import (
	"github.com/lao-tseu-is-alive/go-flocking/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// AgentState is the read-only copy of an agent handed outside the world actor.
type AgentState struct {
	ID         string
	Position   geometry.Vector3D
	Forward    geometry.Vector3D
	Velocity   geometry.Vector3D
	Neighbours int
	Avoiding   bool
}

// PopulationSnapshot describes one population after a tick.
type PopulationSnapshot struct {
	Name   string
	Agents []AgentState
	Report flock.StepReport

	MeanSpeed     float64
	MeanPerceived float64
	Centroid      geometry.Vector3D
	Spread        float64 // mean distance of the agents to Centroid
}

// WorldSnapshot is pushed by the WorldActor after every tick.
type WorldSnapshot struct {
	Tick      uint64
	Elapsed   float64 // simulated seconds
	Boids     PopulationSnapshot
	Predators PopulationSnapshot
}

func stateOf(a *flock.Agent) AgentState {
	return AgentState{
		ID:         a.ID,
		Position:   a.Position,
		Forward:    a.Forward,
		Velocity:   a.Velocity,
		Neighbours: a.Count,
		Avoiding:   a.Avoiding,
	}
}

// newPopulationSnapshot copies the population so the receiver never shares
// memory with agents the actor keeps moving.
func newPopulationSnapshot(p *flock.Population, report flock.StepReport) PopulationSnapshot {
	snap := PopulationSnapshot{
		Name:   p.Name(),
		Agents: make([]AgentState, 0, p.Len()),
		Report: report,
	}
	var speed float64
	var centroid geometry.Vector3D
	for _, a := range p.Agents() {
		snap.Agents = append(snap.Agents, stateOf(a))
		speed += a.Speed()
		centroid = centroid.Add(a.Position)
	}
	if n := float64(p.Len()); n > 0 {
		snap.MeanSpeed = speed / n
		snap.Centroid = centroid.Mul(1 / n)
		snap.MeanPerceived = float64(report.Perceived) / n
		var spread float64
		for _, a := range snap.Agents {
			spread += a.Position.DistanceTo(snap.Centroid)
		}
		snap.Spread = spread / n
	}
	return snap
}
