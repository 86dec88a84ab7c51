package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// BroadcastLen returns the length two batches broadcast to.
// A batch of length 1 broadcasts against any other length.
func BroadcastLen(a, b int) (int, error) {
	switch {
	case a == 0 || b == 0:
		return 0, fmt.Errorf("%w: empty batch", ErrShape)
	case a == b:
		return a, nil
	case a == 1:
		return b, nil
	case b == 1:
		return a, nil
	default:
		return 0, fmt.Errorf("%w: batch lengths %d and %d", ErrShape, a, b)
	}
}

// MatMul multiplies two batches of matrices element-wise: out[i] = a[i]·b[i]
func MatMul(a, b []Mat3) ([]Mat3, error) {
	n, err := BroadcastLen(len(a), len(b))
	if err != nil {
		return nil, err
	}
	out := make([]Mat3, n)
	for i := range out {
		out[i] = a[pick(i, len(a))].Mul(b[pick(i, len(b))])
	}
	return out, nil
}

// MatVecMul multiplies a batch of matrices with a batch of vectors: out[i] = a[i]·v[i]
func MatVecMul(a []Mat3, v []r3.Vec) ([]r3.Vec, error) {
	n, err := BroadcastLen(len(a), len(v))
	if err != nil {
		return nil, err
	}
	out := make([]r3.Vec, n)
	for i := range out {
		out[i] = a[pick(i, len(a))].MulVec(v[pick(i, len(v))])
	}
	return out, nil
}

// VecAdd adds two batches of vectors element-wise
func VecAdd(a, b []r3.Vec) ([]r3.Vec, error) {
	n, err := BroadcastLen(len(a), len(b))
	if err != nil {
		return nil, err
	}
	out := make([]r3.Vec, n)
	for i := range out {
		out[i] = r3.Add(a[pick(i, len(a))], b[pick(i, len(b))])
	}
	return out, nil
}

// VecSub subtracts two batches of vectors element-wise
func VecSub(a, b []r3.Vec) ([]r3.Vec, error) {
	n, err := BroadcastLen(len(a), len(b))
	if err != nil {
		return nil, err
	}
	out := make([]r3.Vec, n)
	for i := range out {
		out[i] = r3.Sub(a[pick(i, len(a))], b[pick(i, len(b))])
	}
	return out, nil
}

// Transpose transposes every matrix of a batch
func Transpose(a []Mat3) []Mat3 {
	out := make([]Mat3, len(a))
	for i, m := range a {
		out[i] = m.T()
	}
	return out
}

// Negate negates every vector of a batch
func Negate(v []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(v))
	for i, p := range v {
		out[i] = r3.Scale(-1, p)
	}
	return out
}

func pick(i, n int) int {
	if n == 1 {
		return 0
	}
	return i
}
