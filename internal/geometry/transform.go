package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// FormatTransform renders a rotation and translation as a 12-value string.
// The format is: m11 m12 m13 m21 m22 m23 m31 m32 m33 tx ty tz
func FormatTransform(m Mat3, t r3.Vec) string {
	// Use %.8f for the rotation part to keep small angles visible
	var b strings.Builder
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			b.WriteString(fmt.Sprintf("%.8f ", m[r][c]))
		}
	}
	b.WriteString(fmt.Sprintf("%.4f %.4f %.4f", t.X, t.Y, t.Z))
	return b.String()
}

// FormatVector renders a vector as "x, y, z"
func FormatVector(v r3.Vec) string {
	return fmt.Sprintf("%.4f, %.4f, %.4f", v.X, v.Y, v.Z)
}

// ParseVector parses "x,y,z" (commas or whitespace) into a vector
func ParseVector(s string) (r3.Vec, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: expected 3 components in %q, got %d", ErrShape, s, len(fields))
	}

	var v [3]float64
	for i, f := range fields {
		value, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("invalid component %q: %w", f, err)
		}
		v[i] = value
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}
