package lcs

import (
	"fmt"

	"github.com/philipparndt/goweldx/internal/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// FromEuler creates a static system from an Euler sequence (see geometry.FromEuler)
func FromEuler(sequence string, angles []float64, degrees bool, origin r3.Vec) (*LocalCoordinateSystem, error) {
	orientation, err := geometry.FromEuler(sequence, angles, degrees)
	if err != nil {
		return nil, err
	}
	return NewStatic(orientation, origin)
}

// FromXYZ creates a static system from three basis vectors. The vectors are
// normalized and must be mutually orthogonal.
func FromXYZ(x, y, z, origin r3.Vec) (*LocalCoordinateSystem, error) {
	var basis [3]r3.Vec
	for i, v := range []r3.Vec{x, y, z} {
		n, err := geometry.Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("basis vector %d: %w", i, err)
		}
		basis[i] = n
	}
	return NewStatic(geometry.Mat3FromColumns(basis[0], basis[1], basis[2]), origin)
}

// FromXYAndOrientation creates a system from the x and y axes. The z-axis is
// computed so the system is right-handed if positive is true, left-handed otherwise.
func FromXYAndOrientation(x, y r3.Vec, positive bool, origin r3.Vec) (*LocalCoordinateSystem, error) {
	z := r3.Scale(orientationSign(positive), r3.Cross(x, y))
	return FromXYZ(x, y, z, origin)
}

// FromYZAndOrientation creates a system from the y and z axes
func FromYZAndOrientation(y, z r3.Vec, positive bool, origin r3.Vec) (*LocalCoordinateSystem, error) {
	x := r3.Scale(orientationSign(positive), r3.Cross(y, z))
	return FromXYZ(x, y, z, origin)
}

// FromXZAndOrientation creates a system from the x and z axes
func FromXZAndOrientation(x, z r3.Vec, positive bool, origin r3.Vec) (*LocalCoordinateSystem, error) {
	y := r3.Scale(orientationSign(positive), r3.Cross(z, x))
	return FromXYZ(x, y, z, origin)
}

func orientationSign(positive bool) float64 {
	if positive {
		return 1
	}
	return -1
}
