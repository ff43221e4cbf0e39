package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Basis is an orthonormal orientation whose columns are the local
// right (X), up (Y) and forward (Z) axes expressed in world space.
type Basis struct {
	m mgl64.Mat3
}

// IdentityBasis maps local axes onto the world axes unchanged.
func IdentityBasis() Basis {
	return Basis{m: mgl64.Ident3()}
}

// LookBasis builds the orientation whose forward axis is forward and whose
// up axis is as close as possible to up. When forward is parallel to up the
// world Z axis is used as the reference instead.
func LookBasis(forward, up Vector3D) Basis {
	f := forward.Normalize()
	if f.IsZero() {
		return IdentityBasis()
	}
	right := up.Cross(f)
	if right.LenSqr() < Epsilon {
		// forward is (anti)parallel to up
		right = Forward.Cross(f)
		if right.LenSqr() < Epsilon {
			right = Right
		}
	}
	right = right.Normalize()
	u := f.Cross(right)
	return Basis{m: mgl64.Mat3FromCols(right.Vec3(), u.Vec3(), f.Vec3())}
}

// TransformDirection maps a direction from local space into world space.
func (b Basis) TransformDirection(local Vector3D) Vector3D {
	return FromVec3(b.m.Mul3x1(local.Vec3()))
}

// Forward returns the world-space forward axis.
func (b Basis) Forward() Vector3D { return FromVec3(b.m.Col(2)) }

// Up returns the world-space up axis.
func (b Basis) Up() Vector3D { return FromVec3(b.m.Col(1)) }

// Right returns the world-space right axis.
func (b Basis) Right() Vector3D { return FromVec3(b.m.Col(0)) }

// IsOrthonormal reports whether the basis columns are unit length and
// mutually perpendicular within tol.
func (b Basis) IsOrthonormal(tol float64) bool {
	r, u, f := b.Right(), b.Up(), b.Forward()
	return math.Abs(r.Len()-1) <= tol && math.Abs(u.Len()-1) <= tol && math.Abs(f.Len()-1) <= tol &&
		math.Abs(r.Dot(u)) <= tol && math.Abs(r.Dot(f)) <= tol && math.Abs(u.Dot(f)) <= tol
}

// Vec3 converts v into an mgl64 vector.
func (v Vector3D) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromVec3 converts an mgl64 vector into a Vector3D.
func FromVec3(v mgl64.Vec3) Vector3D {
	return Vector3D{X: v[0], Y: v[1], Z: v[2]}
}
