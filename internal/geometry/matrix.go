package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultTolerance is the absolute tolerance used by the orthogonality checks
const DefaultTolerance = 1e-9

var (
	// ErrShape is returned when batched operands cannot be broadcast together
	ErrShape = errors.New("non-conformable shapes")
	// ErrZeroLength is returned for operations that need a non-zero vector
	ErrZeroLength = errors.New("vector length is 0")
	// ErrInvalidSequence is returned for malformed Euler sequences
	ErrInvalidSequence = errors.New("invalid euler sequence")
)

// Mat3 is a 3x3 matrix in row-major order. m[r][c] is the element in row r, column c.
type Mat3 [3][3]float64

// Identity returns the 3x3 identity matrix
func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mat3FromColumns builds a matrix whose columns are the given vectors
func Mat3FromColumns(x, y, z r3.Vec) Mat3 {
	return Mat3{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}
}

// Mat3FromSlice builds a matrix from 9 row-major values
func Mat3FromSlice(values []float64) (Mat3, error) {
	if len(values) != 9 {
		return Mat3{}, fmt.Errorf("%w: expected 9 values, got %d", ErrShape, len(values))
	}
	var m Mat3
	for i, v := range values {
		m[i/3][i%3] = v
	}
	return m, nil
}

// Slice returns the 9 row-major values of the matrix
func (m Mat3) Slice() []float64 {
	out := make([]float64, 0, 9)
	for r := 0; r < 3; r++ {
		out = append(out, m[r][0], m[r][1], m[r][2])
	}
	return out
}

// Mul returns m·n
func (m Mat3) Mul(n Mat3) Mat3 {
	var out Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = m[r][0]*n[0][c] + m[r][1]*n[1][c] + m[r][2]*n[2][c]
		}
	}
	return out
}

// MulVec returns m·v
func (m Mat3) MulVec(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// T returns the transpose of m
func (m Mat3) T() Mat3 {
	var out Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[c][r] = m[r][c]
		}
	}
	return out
}

// Scale returns f·m
func (m Mat3) Scale(f float64) Mat3 {
	var out Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = f * m[r][c]
		}
	}
	return out
}

// Col returns column i
func (m Mat3) Col(i int) r3.Vec {
	return r3.Vec{X: m[0][i], Y: m[1][i], Z: m[2][i]}
}

// Row returns row i
func (m Mat3) Row(i int) r3.Vec {
	return r3.Vec{X: m[i][0], Y: m[i][1], Z: m[i][2]}
}

// Det returns the determinant of m
func (m Mat3) Det() float64 {
	return mat.Det(m.dense())
}

// EqualApprox reports whether all elements of m and n differ by at most tol
func (m Mat3) EqualApprox(n Mat3, tol float64) bool {
	return mat.EqualApprox(m.dense(), n.dense(), tol)
}

func (m Mat3) dense() *mat.Dense {
	return mat.NewDense(3, 3, m.Slice())
}

// MatrixIsOrthogonal reports whether M·Mᵗ equals the identity within tol
func MatrixIsOrthogonal(m Mat3, tol float64) bool {
	a := m.dense()
	var p mat.Dense
	p.Mul(a, a.T())
	return mat.EqualApprox(&p, Identity().dense(), tol)
}

// ScaleMatrix returns a diagonal scaling matrix
func ScaleMatrix(sx, sy, sz float64) Mat3 {
	return Mat3{{sx, 0, 0}, {0, sy, 0}, {0, 0, sz}}
}

// Normalize returns v scaled to unit length
func Normalize(v r3.Vec) (r3.Vec, error) {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}, ErrZeroLength
	}
	return r3.Scale(1/n, v), nil
}

// IsOrthogonal reports whether the vectors u and v are orthogonal within tol
func IsOrthogonal(u, v r3.Vec, tol float64) (bool, error) {
	if isClose(r3.Dot(u, u), 0) || isClose(r3.Dot(v, v), 0) {
		return false, fmt.Errorf("one or both vectors: %w", ErrZeroLength)
	}
	return math.Abs(r3.Dot(u, v)) <= tol, nil
}

// ReflectionSign returns -1 if the transformation contains a reflection and 1 if not
func ReflectionSign(m Mat3) (int, error) {
	det := m.Det()
	switch {
	case det > 0:
		return 1, nil
	case det < 0:
		return -1, nil
	default:
		return 0, fmt.Errorf("invalid transformation: determinant is 0")
	}
}

// isClose mirrors a relative tolerance of 1e-9 with no absolute slack
func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
