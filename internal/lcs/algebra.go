package lcs

import (
	"fmt"

	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/times"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Add treats l as being defined in parent and returns l expressed in the
// parent's own reference system:
//
//	R_n = R_p · R_l
//	T_n = R_p · T_l + T_p
//
// Time-dependent operands are resampled onto the union of both time axes.
func (l *LocalCoordinateSystem) Add(parent *LocalCoordinateSystem) (*LocalCoordinateSystem, error) {
	lhs, rhs, t, err := align(l, parent)
	if err != nil {
		return nil, fmt.Errorf("add coordinate systems: %w", err)
	}

	orientation, err := geometry.MatMul(rhs.orientation, lhs.orientation)
	if err != nil {
		return nil, err
	}
	rotated, err := geometry.MatVecMul(rhs.orientation, lhs.coordinates)
	if err != nil {
		return nil, err
	}
	coordinates, err := geometry.VecAdd(rotated, rhs.coordinates)
	if err != nil {
		return nil, err
	}
	return build(orientation, coordinates, t)
}

// Sub expresses l relative to reference, where both are defined in the same
// parent system:
//
//	R_n = R_r⁻¹ · R_l
//	T_n = R_r⁻¹ · (T_l - T_r)
func (l *LocalCoordinateSystem) Sub(reference *LocalCoordinateSystem) (*LocalCoordinateSystem, error) {
	lhs, rhs, t, err := align(l, reference)
	if err != nil {
		return nil, fmt.Errorf("subtract coordinate systems: %w", err)
	}

	inverse := geometry.Transpose(rhs.orientation)
	orientation, err := geometry.MatMul(inverse, lhs.orientation)
	if err != nil {
		return nil, err
	}
	delta, err := geometry.VecSub(lhs.coordinates, rhs.coordinates)
	if err != nil {
		return nil, err
	}
	coordinates, err := geometry.MatVecMul(inverse, delta)
	if err != nil {
		return nil, err
	}
	return build(orientation, coordinates, t)
}

// Invert returns the system that describes the parent in the child's frame:
// R_n = Rᵀ, T_n = -Rᵀ·T. The time axis is kept.
func (l *LocalCoordinateSystem) Invert() *LocalCoordinateSystem {
	orientation := geometry.Transpose(l.orientation)
	coordinates, err := geometry.MatVecMul(orientation, geometry.Negate(l.coordinates))
	if err != nil {
		// shapes were validated at construction
		panic(err)
	}
	return &LocalCoordinateSystem{
		kind:        l.kind,
		orientation: orientation,
		coordinates: coordinates,
		time:        l.time,
	}
}

// AllClose reports whether both systems have equal time axes and data that
// differs by at most tol element-wise
func (l *LocalCoordinateSystem) AllClose(other *LocalCoordinateSystem, tol float64) bool {
	if l.kind != other.kind || !l.time.Equal(other.time) {
		return false
	}
	if !floats.EqualApprox(flattenMatrices(l.Orientations()), flattenMatrices(other.Orientations()), tol) {
		return false
	}
	return floats.EqualApprox(flattenVectors(l.CoordinateSeries()), flattenVectors(other.CoordinateSeries()), tol)
}

// align resamples both operands onto a common time axis
func align(a, b *LocalCoordinateSystem) (*LocalCoordinateSystem, *LocalCoordinateSystem, times.Time, error) {
	if a.kind == Static && b.kind == Static {
		return a, b, times.Time{}, nil
	}

	t, err := times.Union(a.time, b.time)
	if err != nil {
		return nil, nil, times.Time{}, err
	}
	if a, err = a.InterpTime(t); err != nil {
		return nil, nil, times.Time{}, err
	}
	if b, err = b.InterpTime(t); err != nil {
		return nil, nil, times.Time{}, err
	}
	return a, b, t, nil
}

func flattenMatrices(ms []geometry.Mat3) []float64 {
	out := make([]float64, 0, 9*len(ms))
	for _, m := range ms {
		out = append(out, m.Slice()...)
	}
	return out
}

func flattenVectors(vs []r3.Vec) []float64 {
	out := make([]float64, 0, 3*len(vs))
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}
