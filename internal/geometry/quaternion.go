package geometry

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// ToQuat converts a proper rotation matrix into a unit quaternion
func ToQuat(m Mat3) quat.Number {
	var q quat.Number
	if tr := m[0][0] + m[1][1] + m[2][2]; tr > 0 {
		s := 0.5 / math.Sqrt(tr+1.0)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (m[2][1] - m[1][2]) * s,
			Jmag: (m[0][2] - m[2][0]) * s,
			Kmag: (m[1][0] - m[0][1]) * s,
		}
	} else if m[0][0] > m[1][1] && m[0][0] > m[2][2] {
		s := 2.0 * math.Sqrt(1.0+m[0][0]-m[1][1]-m[2][2])
		q = quat.Number{
			Real: (m[2][1] - m[1][2]) / s,
			Imag: 0.25 * s,
			Jmag: (m[0][1] + m[1][0]) / s,
			Kmag: (m[0][2] + m[2][0]) / s,
		}
	} else if m[1][1] > m[2][2] {
		s := 2.0 * math.Sqrt(1.0+m[1][1]-m[0][0]-m[2][2])
		q = quat.Number{
			Real: (m[0][2] - m[2][0]) / s,
			Imag: (m[0][1] + m[1][0]) / s,
			Jmag: 0.25 * s,
			Kmag: (m[1][2] + m[2][1]) / s,
		}
	} else {
		s := 2.0 * math.Sqrt(1.0+m[2][2]-m[0][0]-m[1][1])
		q = quat.Number{
			Real: (m[1][0] - m[0][1]) / s,
			Imag: (m[0][2] + m[2][0]) / s,
			Jmag: (m[1][2] + m[2][1]) / s,
			Kmag: 0.25 * s,
		}
	}

	// normalize in order to guarantee a unit quaternion
	return quat.Scale(1/quat.Abs(q), q)
}

// FromQuat converts a unit quaternion into a rotation matrix
func FromQuat(q quat.Number) Mat3 {
	q = quat.Scale(1/quat.Abs(q), q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Mat3{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}

// Slerp spherically interpolates between the unit quaternions a and b.
// t = 0 returns a, t = 1 returns b. The shorter arc is always taken.
func Slerp(a, b quat.Number, t float64) quat.Number {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}

	// Nearly parallel quaternions fall back to normalized linear interpolation
	if dot > 0.9995 {
		q := quat.Add(a, quat.Scale(t, quat.Sub(b, a)))
		return quat.Scale(1/quat.Abs(q), q)
	}

	// a·(a⁻¹·b)^t, the conjugate is the inverse of a unit quaternion
	q := quat.Mul(a, quat.Pow(quat.Mul(quat.Conj(a), b), quat.Number{Real: t}))
	return quat.Scale(1/quat.Abs(q), q)
}

// InterpolateRotation interpolates between two orthogonal matrices.
// Left-handed matrices are interpolated via their negated proper rotation,
// so both inputs must share the same handedness.
func InterpolateRotation(a, b Mat3, t float64) Mat3 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}

	reflected := a.Det() < 0
	if reflected {
		a, b = a.Scale(-1), b.Scale(-1)
	}
	r := FromQuat(Slerp(ToQuat(a), ToQuat(b), t))
	if reflected {
		r = r.Scale(-1)
	}
	return r
}
