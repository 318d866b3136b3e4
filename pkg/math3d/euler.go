package math3d

import "math"

// Euler holds rotation angles in radians applied in XYZ order, so the
// resulting matrix is RotateX(X) * RotateY(Y) * RotateZ(Z).
type Euler struct {
	X, Y, Z float64
}

// E creates a new Euler.
func E(x, y, z float64) Euler {
	return Euler{x, y, z}
}

// Mat4 returns the rotation matrix for the Euler angles.
func (e Euler) Mat4() Mat4 {
	return RotateX(e.X).Mul(RotateY(e.Y)).Mul(RotateZ(e.Z))
}

// EulerFromMat4 extracts XYZ Euler angles from the rotation part of m.
// The upper 3x3 block must be unscaled.
func EulerFromMat4(m Mat4) Euler {
	m11, m12, m13 := m[0], m[1], m[2]
	m22, m23 := m[5], m[6]
	m32, m33 := m[9], m[10]

	var e Euler
	e.Y = math.Asin(clamp(m13, -1, 1))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		// Gimbal lock: fold Z into X.
		e.X = math.Atan2(m32, m22)
		e.Z = 0
	}
	return e
}

// QuatToMat4 converts a unit quaternion (x, y, z, w) to a rotation matrix.
func QuatToMat4(x, y, z, w float64) Mat4 {
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	return Mat4{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy), 0,
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx), 0,
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// Compose builds T * R * S from a position, rotation and scale.
func Compose(position Vec3, rotation Euler, scale Vec3) Mat4 {
	return Translate(position).Mul(rotation.Mat4()).Mul(Scale(scale))
}

// Decompose splits an affine matrix into position, rotation and scale.
// Shear is not representable and is discarded.
func Decompose(m Mat4) (position Vec3, rotation Euler, scale Vec3) {
	position = V3(m[3], m[7], m[11])
	sx := V3(m[0], m[4], m[8]).Len()
	sy := V3(m[1], m[5], m[9]).Len()
	sz := V3(m[2], m[6], m[10]).Len()
	if m.Determinant() < 0 {
		sx = -sx
	}
	scale = V3(sx, sy, sz)

	rot := Identity()
	for r := 0; r < 3; r++ {
		if sx != 0 {
			rot[r*4+0] = m[r*4+0] / sx
		}
		if sy != 0 {
			rot[r*4+1] = m[r*4+1] / sy
		}
		if sz != 0 {
			rot[r*4+2] = m[r*4+2] / sz
		}
	}
	rotation = EulerFromMat4(rot)
	return position, rotation, scale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
