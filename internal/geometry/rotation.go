package geometry

import (
	"fmt"
	"math"
	"strings"
)

// RotationMatrixX creates a matrix that rotates by angle (radians) around the x-axis
func RotationMatrixX(angle float64) Mat3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat3{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}
}

// RotationMatrixY creates a matrix that rotates by angle (radians) around the y-axis
func RotationMatrixY(angle float64) Mat3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat3{
		{c, 0, s},
		{0, 1, 0},
		{-s, 0, c},
	}
}

// RotationMatrixZ creates a matrix that rotates by angle (radians) around the z-axis
func RotationMatrixZ(angle float64) Mat3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat3{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}

// RotationMatricesX returns one x-axis rotation per angle
func RotationMatricesX(angles []float64) []Mat3 {
	return stack(angles, RotationMatrixX)
}

// RotationMatricesY returns one y-axis rotation per angle
func RotationMatricesY(angles []float64) []Mat3 {
	return stack(angles, RotationMatrixY)
}

// RotationMatricesZ returns one z-axis rotation per angle
func RotationMatricesZ(angles []float64) []Mat3 {
	return stack(angles, RotationMatrixZ)
}

func stack(angles []float64, fn func(float64) Mat3) []Mat3 {
	out := make([]Mat3, len(angles))
	for i, a := range angles {
		out[i] = fn(a)
	}
	return out
}

// FromEuler builds a rotation matrix from an Euler sequence.
// Lowercase axes ("xyz") are extrinsic rotations, uppercase axes ("XYZ") are
// intrinsic rotations. Up to 3 axes are supported and cases cannot be mixed.
func FromEuler(sequence string, angles []float64, degrees bool) (Mat3, error) {
	if len(sequence) == 0 || len(sequence) > 3 {
		return Mat3{}, fmt.Errorf("%w: %q must have 1 to 3 axes", ErrInvalidSequence, sequence)
	}
	if len(angles) != len(sequence) {
		return Mat3{}, fmt.Errorf("%w: %d angles for sequence %q", ErrInvalidSequence, len(angles), sequence)
	}

	intrinsic := strings.ToUpper(sequence) == sequence
	extrinsic := strings.ToLower(sequence) == sequence
	if !intrinsic && !extrinsic {
		return Mat3{}, fmt.Errorf("%w: %q mixes intrinsic and extrinsic axes", ErrInvalidSequence, sequence)
	}

	result := Identity()
	for i, axis := range strings.ToLower(sequence) {
		angle := angles[i]
		if degrees {
			angle = angle * math.Pi / 180.0
		}

		var r Mat3
		switch axis {
		case 'x':
			r = RotationMatrixX(angle)
		case 'y':
			r = RotationMatrixY(angle)
		case 'z':
			r = RotationMatrixZ(angle)
		default:
			return Mat3{}, fmt.Errorf("%w: unknown axis %q", ErrInvalidSequence, axis)
		}

		// Extrinsic rotations are applied about the fixed frame (pre-multiply),
		// intrinsic rotations about the rotated frame (post-multiply)
		if intrinsic {
			result = result.Mul(r)
		} else {
			result = r.Mul(result)
		}
	}
	return result, nil
}
