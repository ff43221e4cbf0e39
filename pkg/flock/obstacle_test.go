package flock

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// blockedExcept hits every cast except those going along clear.
func blockedExcept(clear geometry.Vector3D) ObstacleQuery {
	return ObstacleFunc(func(_, dir geometry.Vector3D, _, _ float64) bool {
		return !dir.EqTol(clear, 1e-9)
	})
}

var blockedEverywhere = ObstacleFunc(func(_, _ geometry.Vector3D, _, _ float64) bool { return true })

func TestIsObstacleAhead(t *testing.T) {
	var gotOrigin, gotDir geometry.Vector3D
	var gotRadius, gotDistance float64
	q := ObstacleFunc(func(origin, dir geometry.Vector3D, radius, maxDistance float64) bool {
		gotOrigin, gotDir, gotRadius, gotDistance = origin, dir, radius, maxDistance
		return true
	})

	pos := geometry.Vector3D{X: 1, Y: 2, Z: 3}
	if !IsObstacleAhead(pos, geometry.Right, 0.27, 5, q) {
		t.Fatal("IsObstacleAhead() = false; want true")
	}
	if gotOrigin != pos || gotDir != geometry.Right || gotRadius != 0.27 || gotDistance != 5 {
		t.Errorf("cast received (%v, %v, %v, %v)", gotOrigin, gotDir, gotRadius, gotDistance)
	}
	if IsObstacleAhead(pos, geometry.Right, 0.27, 5, NoObstacles) {
		t.Error("NoObstacles reported a hit")
	}
	if IsObstacleAhead(pos, geometry.Right, 0.27, 5, nil) {
		t.Error("nil query reported a hit")
	}
}

func TestFindClearDirection_AllBlockedKeepsForward(t *testing.T) {
	probes, _ := NewProbeTable(50)
	forward := geometry.Vector3D{X: 1, Y: 1, Z: 0}.Normalize()
	basis := geometry.LookBasis(forward, geometry.Up)

	got := FindClearDirection(geometry.Zero, forward, basis, probes, 0.3, 5, blockedEverywhere)
	if got != forward {
		t.Errorf("FindClearDirection() = %v; want forward %v unchanged", got, forward)
	}
}

func TestFindClearDirection_FirstClearInTableOrder(t *testing.T) {
	probes, _ := NewProbeTable(100)
	forward := geometry.Right
	basis := geometry.LookBasis(forward, geometry.Up)

	// Two clear directions: the search must stop at the earlier one.
	early := basis.TransformDirection(probes[7])
	late := basis.TransformDirection(probes[60])
	q := ObstacleFunc(func(_, dir geometry.Vector3D, _, _ float64) bool {
		return !dir.EqTol(early, 1e-9) && !dir.EqTol(late, 1e-9)
	})

	got := FindClearDirection(geometry.Zero, forward, basis, probes, 0.3, 5, q)
	if !got.EqTol(early, 1e-9) {
		t.Errorf("FindClearDirection() = %v; want %v", got, early)
	}
}

func TestFindClearDirection_LocalFrame(t *testing.T) {
	probes, _ := NewProbeTable(10)
	forward := geometry.Vector3D{Y: -1}
	basis := geometry.LookBasis(forward, geometry.Up)

	// Nothing blocks: the first probe is local forward, i.e. the heading itself.
	got := FindClearDirection(geometry.Zero, forward, basis, probes, 0.3, 5, NoObstacles)
	if !got.EqTol(forward, 1e-9) {
		t.Errorf("first probe in world space = %v; want heading %v", got, forward)
	}
}
