package lcs

import (
	"fmt"
	"sort"

	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/times"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// InterpTime resamples the system onto the time axis t. Coordinates are
// interpolated linearly and orientations spherically; values outside the
// original range are clamped to the nearest boundary value. Static systems are
// returned unchanged.
func (l *LocalCoordinateSystem) InterpTime(t times.Time) (*LocalCoordinateSystem, error) {
	if l.kind == Static {
		return l, nil
	}
	if t.IsZero() {
		return nil, fmt.Errorf("interpolate: %w", ErrTimeRequired)
	}
	if t.Equal(l.time) {
		return l, nil
	}

	xs := l.time.Seconds()
	targets, err := t.SecondsRelativeTo(l.time)
	if err != nil {
		return nil, fmt.Errorf("interpolate: %w", err)
	}
	for i, x := range targets {
		targets[i] = clamp(x, xs[0], xs[len(xs)-1])
	}

	orientation := l.orientation
	if len(orientation) > 1 {
		orientation = interpolateOrientations(xs, l.orientation, targets)
	}

	coordinates := l.coordinates
	if len(coordinates) > 1 {
		if coordinates, err = interpolateCoordinates(xs, l.coordinates, targets); err != nil {
			return nil, fmt.Errorf("interpolate: %w", err)
		}
	}

	return build(orientation, coordinates, t)
}

func interpolateCoordinates(xs []float64, values []r3.Vec, targets []float64) ([]r3.Vec, error) {
	var px, py, pz interp.PiecewiseLinear
	cx := make([]float64, len(values))
	cy := make([]float64, len(values))
	cz := make([]float64, len(values))
	for i, v := range values {
		cx[i], cy[i], cz[i] = v.X, v.Y, v.Z
	}
	for _, fit := range []struct {
		p  *interp.PiecewiseLinear
		ys []float64
	}{{&px, cx}, {&py, cy}, {&pz, cz}} {
		if err := fit.p.Fit(xs, fit.ys); err != nil {
			return nil, err
		}
	}

	out := make([]r3.Vec, len(targets))
	for i, x := range targets {
		out[i] = r3.Vec{X: px.Predict(x), Y: py.Predict(x), Z: pz.Predict(x)}
	}
	return out, nil
}

func interpolateOrientations(xs []float64, values []geometry.Mat3, targets []float64) []geometry.Mat3 {
	out := make([]geometry.Mat3, len(targets))
	for i, x := range targets {
		// first index with xs[j] >= x
		j := sort.SearchFloat64s(xs, x)
		switch {
		case j == 0:
			out[i] = values[0]
		case j >= len(xs):
			out[i] = values[len(values)-1]
		case xs[j] == x:
			out[i] = values[j]
		default:
			w := (x - xs[j-1]) / (xs[j] - xs[j-1])
			out[i] = geometry.InterpolateRotation(values[j-1], values[j], w)
		}
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
