package flock

import "github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"

// Snapshot is the frozen, read-only view of one agent used while the
// neighbourhoods of a tick are computed.
type Snapshot struct {
	Position geometry.Vector3D
	Forward  geometry.Vector3D
}

func (s Snapshot) finite() bool {
	return s.Position.IsFinite() && s.Forward.IsFinite()
}

// Neighborhood summarises the neighbours an agent perceived during a tick.
// It is recomputed from scratch every tick.
//
// AvgHeading and Centroid are averages over the Count neighbours, while
// AvgAvoidance is the plain sum of the per-neighbour pushes
// (self - other) / distance², restricted to neighbours closer than
// Settings.AvoidanceRadius. Crowding therefore grows with the number of
// close neighbours; the separation weight is tuned against that sum.
type Neighborhood struct {
	Count        int
	AvgHeading   geometry.Vector3D
	AvgAvoidance geometry.Vector3D
	Centroid     geometry.Vector3D
}

// Aggregator computes the neighbourhood of agent self within a snapshot.
// Implementations must only read the snapshot.
type Aggregator interface {
	Aggregate(self int, snapshot []Snapshot, s *Settings) Neighborhood
}

// LinearScan is the O(n) per agent reference aggregator.
type LinearScan struct{}

// Aggregate scans the whole snapshot.
func (LinearScan) Aggregate(self int, snapshot []Snapshot, s *Settings) Neighborhood {
	return Aggregate(self, snapshot, s)
}

// Aggregate returns the neighbourhood of snapshot[self], scanning every
// other agent in index order. A malformed snapshot[self] perceives nothing.
func Aggregate(self int, snapshot []Snapshot, s *Settings) Neighborhood {
	var acc accumulator
	me := snapshot[self]
	if !me.finite() {
		return acc.result()
	}
	for j := range snapshot {
		if j == self {
			continue
		}
		acc.visit(me, snapshot[j], s)
	}
	return acc.result()
}

// accumulator holds the running sums of one neighbourhood query.
type accumulator struct {
	count     int
	heading   geometry.Vector3D
	centroid  geometry.Vector3D
	avoidance geometry.Vector3D
}

// visit folds other into the sums when it is perceived by me.
// A malformed other is never a neighbour.
func (a *accumulator) visit(me, other Snapshot, s *Settings) {
	if !other.finite() {
		return
	}
	offset := other.Position.Sub(me.Position)
	distSq := offset.LenSqr()
	// NaN fails this comparison and is rejected
	if !(distSq <= s.PerceptionRadius*s.PerceptionRadius) {
		return
	}
	if s.hasViewCone() && distSq > 0 && me.Forward.AngleTo(offset) > s.ViewAngle {
		return
	}

	a.count++
	a.heading = a.heading.Add(other.Forward)
	a.centroid = a.centroid.Add(other.Position)

	// Coincident agents have no direction to push along
	if distSq > 0 && distSq < s.AvoidanceRadius*s.AvoidanceRadius {
		a.avoidance = a.avoidance.Sub(offset.Mul(1 / distSq))
	}
}

func (a *accumulator) result() Neighborhood {
	if a.count == 0 {
		return Neighborhood{}
	}
	n := float64(a.count)
	return Neighborhood{
		Count:        a.count,
		AvgHeading:   a.heading.Mul(1 / n),
		AvgAvoidance: a.avoidance,
		Centroid:     a.centroid.Mul(1 / n),
	}
}

// finite reports whether every vector of the neighbourhood is usable.
func (n Neighborhood) finite() bool {
	return n.AvgHeading.IsFinite() && n.AvgAvoidance.IsFinite() && n.Centroid.IsFinite()
}
