package flock

import (
	"errors"
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// DefaultProbeDirections is the size of the probe table used when none is configured.
const DefaultProbeDirections = 300

// ErrEmptyProbeTable is returned when a population is given no probe directions.
var ErrEmptyProbeTable = errors.New("probe direction table is empty")

// ProbeTable holds unit directions in agent-local space (+Z is forward),
// ordered by preference: index 0 is straight ahead and later entries turn
// progressively further away from the heading, ending straight behind.
// The table is built once and shared read-only by every agent.
type ProbeTable []geometry.Vector3D

// NewProbeTable spreads n directions over the unit sphere along a golden
// angle spiral. Point i sits at inclination acos(1 - 2i/(n-1)) from +Z and
// azimuth 2*Pi*phi*i, so the order is deterministic and sweeps from the
// front pole to the back pole.
func NewProbeTable(n int) (ProbeTable, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one direction, got %d", ErrEmptyProbeTable, n)
	}
	if n == 1 {
		return ProbeTable{geometry.Forward}, nil
	}
	goldenRatio := (1 + math.Sqrt(5)) / 2
	angleIncrement := 2 * math.Pi * goldenRatio

	table := make(ProbeTable, n)
	for i := range table {
		t := float64(i) / float64(n-1)
		inclination := math.Acos(1 - 2*t)
		azimuth := angleIncrement * float64(i)
		table[i] = geometry.NewVectorSpherical(1, inclination, azimuth)
	}
	return table, nil
}

// Validate checks that the table is usable for a direction search.
func (p ProbeTable) Validate() error {
	if len(p) == 0 {
		return ErrEmptyProbeTable
	}
	return nil
}
