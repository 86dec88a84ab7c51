package geometry

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// OrientationPointPlaneContainingOrigin determines on which side of the plane
// spanned by the origin, a and b the point lies. The side is defined by the
// winding order of the triangle origin-a-b. Returns 1 (left), -1 (right) or 0
// (on the plane, no tolerance applied).
func OrientationPointPlaneContainingOrigin(point, a, b r3.Vec) (int, error) {
	if isClose(r3.Norm(a), 0) || isClose(r3.Norm(b), 0) || isClose(r3.Norm(r3.Sub(b, a)), 0) {
		return 0, errors.New("one or more points describing the plane are identical")
	}
	det := Mat3{
		{a.X, a.Y, a.Z},
		{b.X, b.Y, b.Z},
		{point.X, point.Y, point.Z},
	}.Det()
	return sign(det), nil
}

// OrientationPointPlane determines on which side of the plane a-b-c the point lies
func OrientationPointPlane(point, a, b, c r3.Vec) (int, error) {
	return OrientationPointPlaneContainingOrigin(r3.Sub(point, a), r3.Sub(b, a), r3.Sub(c, a))
}

// VectorPointsToLeftOfVector returns 1 if vector points to the left of reference
// in the xy-plane, -1 if it points to the right and 0 if both are parallel
func VectorPointsToLeftOfVector(vector, reference r3.Vec) int {
	return sign(reference.X*vector.Y - reference.Y*vector.X)
}

// PointLeftOfLine returns 1 if the point lies left of the line from start to end,
// -1 if it lies to the right and 0 if it is located on the line
func PointLeftOfLine(point, start, end r3.Vec) int {
	return VectorPointsToLeftOfVector(r3.Sub(point, start), r3.Sub(end, start))
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
