package r3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Euler is a rotation in radians, applied in Z, Y, X order (intrinsic).
type Euler struct {
	X, Y, Z float64
}

func (e Euler) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{e.X, e.Y, e.Z}
}

func EulerFromVec3(v mgl64.Vec3) Euler {
	return Euler{X: v[0], Y: v[1], Z: v[2]}
}

// Quat returns the quaternion equal to Rz * Ry * Rx
func (e Euler) Quat() mgl64.Quat {
	return mgl64.AnglesToQuat(e.Z, e.Y, e.X, mgl64.ZYX)
}

// Mat4 builds the same rotation as Quat, from the three axis rotations
func (e Euler) Mat4() mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(e.Z).
		Mul4(mgl64.HomogRotate3DY(e.Y)).
		Mul4(mgl64.HomogRotate3DX(e.X))
}

// EulerFromMat4 extracts angles from the rotation part of m.
// Scale must already be removed.
func EulerFromMat4(m mgl64.Mat4) Euler {
	m20 := clamp(m.At(2, 0), -1, 1)
	e := Euler{Y: math.Asin(-m20)}
	if math.Abs(m20) < 0.9999999 {
		e.X = math.Atan2(m.At(2, 1), m.At(2, 2))
		e.Z = math.Atan2(m.At(1, 0), m.At(0, 0))
	} else {
		// gimbal lock, X folded into Z
		e.Z = math.Atan2(-m.At(0, 1), m.At(1, 1))
	}
	return e
}

func EulerFromQuat(q mgl64.Quat) Euler {
	return EulerFromMat4(q.Normalize().Mat4())
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Compose returns T * Rz * Ry * Rx * S
func Compose(position mgl64.Vec3, rotation Euler, scale mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(position[0], position[1], position[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// ComposeQuat is Compose with the rotation going through a quaternion.
// Results are equal to Compose within float rounding.
func ComposeQuat(position mgl64.Vec3, rotation Euler, scale mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(position[0], position[1], position[2]).
		Mul4(rotation.Quat().Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// Invert returns the inverse of m using cofactor expansion.
// When the determinant is exactly zero the zero matrix is returned.
func Invert(m mgl64.Mat4) mgl64.Mat4 {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if det == 0 {
		return mgl64.Mat4{}
	}
	det = 1 / det

	return mgl64.Mat4{
		(a11*b11 - a12*b10 + a13*b09) * det,
		(a02*b10 - a01*b11 - a03*b09) * det,
		(a31*b05 - a32*b04 + a33*b03) * det,
		(a22*b04 - a21*b05 - a23*b03) * det,
		(a12*b08 - a10*b11 - a13*b07) * det,
		(a00*b11 - a02*b08 + a03*b07) * det,
		(a32*b02 - a30*b05 - a33*b01) * det,
		(a20*b05 - a22*b02 + a23*b01) * det,
		(a10*b10 - a11*b08 + a13*b06) * det,
		(a01*b08 - a00*b10 - a03*b06) * det,
		(a30*b04 - a31*b02 + a33*b00) * det,
		(a21*b02 - a20*b04 - a23*b00) * det,
		(a11*b07 - a10*b09 - a12*b06) * det,
		(a00*b09 - a01*b07 + a02*b06) * det,
		(a31*b01 - a30*b03 - a32*b00) * det,
		(a20*b03 - a21*b01 + a22*b00) * det,
	}
}

// Normalize is mgl64.Vec3.Normalize that leaves zero vectors alone
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// Decompose splits an affine matrix built by Compose back to its parts
func Decompose(m mgl64.Mat4) (position mgl64.Vec3, rotation Euler, scale mgl64.Vec3) {
	position = m.Col(3).Vec3()
	scale = mgl64.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	if m.Det() < 0 {
		scale[0] = -scale[0]
	}

	var r mgl64.Mat4
	for col := 0; col < 3; col++ {
		s := scale[col]
		if s == 0 {
			continue
		}
		for row := 0; row < 3; row++ {
			r[col*4+row] = m[col*4+row] / s
		}
	}
	r[15] = 1
	rotation = EulerFromMat4(r)
	return
}
