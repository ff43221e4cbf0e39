package geometry

import (
	"math"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestNewVector(t *testing.T) {
	v := NewVector(1, 2, 3)
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("NewVector(1, 2, 3) = %v; want (1, 2, 3)", v)
	}
}

func TestNewVectorSpherical(t *testing.T) {
	tests := []struct {
		name        string
		radius      float64
		inclination float64
		azimuth     float64
		want        Vector3D
	}{
		{"Zero radius", 0, 0, 0, Vector3D{}},
		{"Pole is forward", 2, 0, 1.234, Vector3D{0, 0, 2}},
		{"Equator X", 1, math.Pi / 2, 0, Vector3D{1, 0, 0}},
		{"Equator Y", 1, math.Pi / 2, math.Pi / 2, Vector3D{0, 1, 0}},
		{"Back pole", 3, math.Pi, 0, Vector3D{0, 0, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewVectorSpherical(tt.radius, tt.inclination, tt.azimuth)
			if !got.Eq(tt.want) {
				t.Errorf("NewVectorSpherical(%v, %v, %v) = %v; want %v", tt.radius, tt.inclination, tt.azimuth, got, tt.want)
			}
		})
	}
}

func TestVector_String(t *testing.T) {
	v := Vector3D{1.234, 5.678, -9.1}
	want := "(1.23, 5.68, -9.10)"
	if got := v.String(); got != want {
		t.Errorf("Vector3D.String() = %q; want %q", got, want)
	}
}

func TestVector_Arithmetic(t *testing.T) {
	v1 := Vector3D{1, 2, 3}
	v2 := Vector3D{4, 5, 6}

	t.Run("Add", func(t *testing.T) {
		want := Vector3D{5, 7, 9}
		if got := v1.Add(v2); !got.Eq(want) {
			t.Errorf("%v.Add(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Sub", func(t *testing.T) {
		want := Vector3D{-3, -3, -3}
		if got := v1.Sub(v2); !got.Eq(want) {
			t.Errorf("%v.Sub(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Mul", func(t *testing.T) {
		want := Vector3D{2, 4, 6}
		if got := v1.Mul(2); !got.Eq(want) {
			t.Errorf("%v.Mul(2) = %v; want %v", v1, got, want)
		}
	})

}

func TestVector_Products(t *testing.T) {
	t.Run("Dot", func(t *testing.T) {
		if got := Right.Dot(Up); got != 0 {
			t.Errorf("Dot orthogonal = %v; want 0", got)
		}
		if got := (Vector3D{1, 2, 3}).Dot(Vector3D{4, 5, 6}); got != 32 {
			t.Errorf("Dot = %v; want 32", got)
		}
	})

	t.Run("Cross right-handed", func(t *testing.T) {
		if got := Right.Cross(Up); !got.Eq(Forward) {
			t.Errorf("X × Y = %v; want %v", got, Forward)
		}
		if got := Up.Cross(Forward); !got.Eq(Right) {
			t.Errorf("Y × Z = %v; want %v", got, Right)
		}
		if got := Right.Cross(Right); !got.Eq(Zero) {
			t.Errorf("X × X = %v; want zero", got)
		}
	})
}

func TestVector_Magnitude(t *testing.T) {
	v := Vector3D{2, 3, 6}

	if got := v.LenSqr(); got != 49 {
		t.Errorf("LenSqr = %v; want 49", got)
	}
	if got := v.Len(); !floatEquals(got, 7) {
		t.Errorf("Len = %v; want 7", got)
	}

	t.Run("Normalize", func(t *testing.T) {
		n := v.Normalize()
		if !floatEquals(n.Len(), 1) {
			t.Errorf("Normalize length = %v; want 1", n.Len())
		}
		if got := Zero.Normalize(); !got.Eq(Zero) {
			t.Errorf("Zero.Normalize() = %v; want zero", got)
		}
	})

	t.Run("ClampLen", func(t *testing.T) {
		if got := v.ClampLen(14); got != v {
			t.Errorf("ClampLen above length changed the vector: %v", got)
		}
		got := v.ClampLen(3.5)
		if !floatEquals(got.Len(), 3.5) {
			t.Errorf("ClampLen(3.5) length = %v", got.Len())
		}
		if !got.Normalize().Eq(v.Normalize()) {
			t.Errorf("ClampLen changed direction: %v", got)
		}
	})
}

func TestVector_Predicates(t *testing.T) {
	if !Zero.IsZero() {
		t.Error("Zero.IsZero() = false")
	}
	if Forward.IsZero() {
		t.Error("Forward.IsZero() = true")
	}
	if !Forward.IsFinite() {
		t.Error("Forward.IsFinite() = false")
	}
	if (Vector3D{X: math.NaN()}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if (Vector3D{Z: math.Inf(-1)}).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}

func TestVector_Geometry(t *testing.T) {
	a := Vector3D{1, 1, 1}
	b := Vector3D{4, 5, 1}

	if got := a.DistanceTo(b); !floatEquals(got, 5) {
		t.Errorf("DistanceTo = %v; want 5", got)
	}
	if got := a.DistanceSquaredTo(b); !floatEquals(got, 25) {
		t.Errorf("DistanceSquaredTo = %v; want 25", got)
	}

	angles := []struct {
		name string
		a, b Vector3D
		want float64
	}{
		{"same", Forward, Forward.Mul(3), 0},
		{"perpendicular", Forward, Up, math.Pi / 2},
		{"opposite", Forward, Vector3D{Z: -1}, math.Pi},
		{"zero", Zero, Forward, 0},
	}
	for _, tt := range angles {
		t.Run("AngleTo "+tt.name, func(t *testing.T) {
			if got := tt.a.AngleTo(tt.b); !floatEquals(got, tt.want) {
				t.Errorf("AngleTo = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestVector_Eq(t *testing.T) {
	v := Vector3D{1, 2, 3}
	if !v.Eq(Vector3D{1 + Epsilon/2, 2, 3}) {
		t.Error("Eq should tolerate differences below Epsilon")
	}
	if v.Eq(Vector3D{1.1, 2, 3}) {
		t.Error("Eq should not accept 0.1 difference")
	}
	if !v.EqTol(Vector3D{1.05, 2, 3}, 0.1) {
		t.Error("EqTol(0.1) should accept 0.05 difference")
	}
}
