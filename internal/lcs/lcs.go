// Package lcs implements local coordinate systems: rigid transformations,
// optionally time-dependent, that describe a child frame in its parent frame.
package lcs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/times"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNotOrthogonal is returned when an orientation matrix is not orthogonal
	ErrNotOrthogonal = errors.New("orientation matrix must be orthogonal")
	// ErrTimeMismatch is returned when data lengths do not match the time axis
	ErrTimeMismatch = errors.New("data length does not match time axis")
	// ErrTimeRequired is returned when time-varying data has no time axis
	ErrTimeRequired = errors.New("time-varying data requires a time axis")
	// ErrShape is returned for empty orientation or coordinate data
	ErrShape = errors.New("orientation and coordinates must not be empty")
)

// Kind discriminates static from time-dependent coordinate systems
type Kind int

const (
	// Static systems hold exactly one orientation and one coordinate vector
	Static Kind = iota
	// TimeDependent systems hold one orientation and/or coordinate vector per time value
	TimeDependent
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case TimeDependent:
		return "time_dependent"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// LocalCoordinateSystem is an immutable rigid transformation of a child frame
// relative to its parent. Orientation and coordinates either have one entry per
// time value or a single entry that is broadcast over the whole time axis.
type LocalCoordinateSystem struct {
	kind        Kind
	orientation []geometry.Mat3
	coordinates []r3.Vec
	time        times.Time
}

type options struct {
	checks    bool
	tolerance float64
}

// Option configures construction of a LocalCoordinateSystem
type Option func(*options)

// WithoutConstructionChecks disables the orthogonality check. Only meant for
// round-trip tests of intentionally invalid data.
func WithoutConstructionChecks() Option {
	return func(o *options) {
		o.checks = false
	}
}

// WithTolerance sets the tolerance of the orthogonality check
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// New creates a coordinate system from orientation matrices, coordinates and an
// optional time axis (zero Time for static data).
func New(orientation []geometry.Mat3, coordinates []r3.Vec, t times.Time, opts ...Option) (*LocalCoordinateSystem, error) {
	o := options{checks: true, tolerance: geometry.DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}

	if o.checks {
		for i, m := range orientation {
			if !geometry.MatrixIsOrthogonal(m, o.tolerance) {
				return nil, fmt.Errorf("%w: entry %d %v", ErrNotOrthogonal, i, m)
			}
		}
	}

	return build(
		append([]geometry.Mat3(nil), orientation...),
		append([]r3.Vec(nil), coordinates...),
		t,
	)
}

// build validates shapes and assembles a system from data the caller owns
func build(orientation []geometry.Mat3, coordinates []r3.Vec, t times.Time) (*LocalCoordinateSystem, error) {
	if len(orientation) == 0 || len(coordinates) == 0 {
		return nil, ErrShape
	}

	if t.IsZero() {
		if len(orientation) > 1 || len(coordinates) > 1 {
			return nil, fmt.Errorf("%w: %d orientations, %d coordinates", ErrTimeRequired, len(orientation), len(coordinates))
		}
		return &LocalCoordinateSystem{kind: Static, orientation: orientation, coordinates: coordinates}, nil
	}

	n := t.Len()
	if len(orientation) != 1 && len(orientation) != n {
		return nil, fmt.Errorf("%w: %d orientations for %d time values", ErrTimeMismatch, len(orientation), n)
	}
	if len(coordinates) != 1 && len(coordinates) != n {
		return nil, fmt.Errorf("%w: %d coordinates for %d time values", ErrTimeMismatch, len(coordinates), n)
	}

	// Constant data does not depend on time
	if len(orientation) == 1 && len(coordinates) == 1 {
		return &LocalCoordinateSystem{kind: Static, orientation: orientation, coordinates: coordinates}, nil
	}

	return &LocalCoordinateSystem{
		kind:        TimeDependent,
		orientation: orientation,
		coordinates: coordinates,
		time:        t,
	}, nil
}

// NewStatic creates a static coordinate system
func NewStatic(orientation geometry.Mat3, coordinates r3.Vec, opts ...Option) (*LocalCoordinateSystem, error) {
	return New([]geometry.Mat3{orientation}, []r3.Vec{coordinates}, times.Time{}, opts...)
}

// Identity returns the static identity transformation
func Identity() *LocalCoordinateSystem {
	return &LocalCoordinateSystem{
		kind:        Static,
		orientation: []geometry.Mat3{geometry.Identity()},
		coordinates: []r3.Vec{{}},
	}
}

// Kind returns the representation discriminant
func (l *LocalCoordinateSystem) Kind() Kind {
	return l.kind
}

// IsTimeDependent reports whether the system varies over time
func (l *LocalCoordinateSystem) IsTimeDependent() bool {
	return l.kind == TimeDependent
}

// Time returns the time axis. Static systems return the zero Time.
func (l *LocalCoordinateSystem) Time() times.Time {
	return l.time
}

// Len returns the number of time steps (1 for static systems)
func (l *LocalCoordinateSystem) Len() int {
	if l.kind == Static {
		return 1
	}
	return l.time.Len()
}

// Orientation returns the orientation at time index i
func (l *LocalCoordinateSystem) Orientation(i int) geometry.Mat3 {
	if len(l.orientation) == 1 {
		return l.orientation[0]
	}
	return l.orientation[i]
}

// Coordinates returns the coordinates at time index i
func (l *LocalCoordinateSystem) Coordinates(i int) r3.Vec {
	if len(l.coordinates) == 1 {
		return l.coordinates[0]
	}
	return l.coordinates[i]
}

// Orientations returns one orientation per time step
func (l *LocalCoordinateSystem) Orientations() []geometry.Mat3 {
	out := make([]geometry.Mat3, l.Len())
	for i := range out {
		out[i] = l.Orientation(i)
	}
	return out
}

// CoordinateSeries returns one coordinate vector per time step
func (l *LocalCoordinateSystem) CoordinateSeries() []r3.Vec {
	out := make([]r3.Vec, l.Len())
	for i := range out {
		out[i] = l.Coordinates(i)
	}
	return out
}

// OrientationData returns the stored orientations without broadcasting
func (l *LocalCoordinateSystem) OrientationData() []geometry.Mat3 {
	return append([]geometry.Mat3(nil), l.orientation...)
}

// CoordinateData returns the stored coordinates without broadcasting
func (l *LocalCoordinateSystem) CoordinateData() []r3.Vec {
	return append([]r3.Vec(nil), l.coordinates...)
}

// Equal reports whether both systems hold identical time axes and data
func (l *LocalCoordinateSystem) Equal(other *LocalCoordinateSystem) bool {
	if l.kind != other.kind || !l.time.Equal(other.time) {
		return false
	}
	if len(l.orientation) != len(other.orientation) || len(l.coordinates) != len(other.coordinates) {
		return false
	}
	for i := range l.orientation {
		if l.orientation[i] != other.orientation[i] {
			return false
		}
	}
	for i := range l.coordinates {
		if l.coordinates[i] != other.coordinates[i] {
			return false
		}
	}
	return true
}

func (l *LocalCoordinateSystem) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("LocalCoordinateSystem(%s", l.kind))
	if l.kind == TimeDependent {
		b.WriteString(", " + l.time.String())
	}
	b.WriteString(fmt.Sprintf(", orientation=%v, coordinates=%v)", l.orientation, l.coordinates))
	return b.String()
}
