// Package times provides the time axis used by time-dependent coordinate systems.
//
// A Time is an ordered sequence of strictly increasing durations. It is either
// relative (plain durations) or absolute (durations relative to a reference
// timestamp). The zero value is an empty axis used for static data.
package times

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotMonotonic is returned when time values are not strictly increasing
	ErrNotMonotonic = errors.New("time values must be strictly increasing")
	// ErrMixedTimeKinds is returned when absolute and relative times are combined
	ErrMixedTimeKinds = errors.New("cannot combine absolute and relative times")
	// ErrEmpty is returned when a time axis with no values is constructed
	ErrEmpty = errors.New("time axis must contain at least one value")
)

// Time is an immutable time axis
type Time struct {
	deltas []time.Duration
	ref    *time.Time
}

// New creates a time axis from durations. If ref is not nil, the axis is
// absolute and each value is interpreted as an offset from ref.
func New(deltas []time.Duration, ref *time.Time) (Time, error) {
	if len(deltas) == 0 {
		return Time{}, ErrEmpty
	}
	for i := 1; i < len(deltas); i++ {
		if deltas[i] <= deltas[i-1] {
			return Time{}, fmt.Errorf("%w: %v at index %d follows %v", ErrNotMonotonic, deltas[i], i, deltas[i-1])
		}
	}

	t := Time{deltas: append([]time.Duration(nil), deltas...)}
	if ref != nil {
		r := *ref
		t.ref = &r
	}
	return t, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and literals.
func MustNew(deltas []time.Duration, ref *time.Time) Time {
	t, err := New(deltas, ref)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSeconds creates a time axis from values in seconds
func FromSeconds(seconds []float64, ref *time.Time) (Time, error) {
	deltas := make([]time.Duration, len(seconds))
	for i, s := range seconds {
		deltas[i] = time.Duration(s * float64(time.Second))
	}
	return New(deltas, ref)
}

// FromTimestamps creates an absolute time axis. The first timestamp becomes the reference.
func FromTimestamps(stamps []time.Time) (Time, error) {
	if len(stamps) == 0 {
		return Time{}, ErrEmpty
	}
	ref := stamps[0]
	deltas := make([]time.Duration, len(stamps))
	for i, s := range stamps {
		deltas[i] = s.Sub(ref)
	}
	return New(deltas, &ref)
}

// Len returns the number of values
func (t Time) Len() int {
	return len(t.deltas)
}

// IsZero reports whether the axis holds no values
func (t Time) IsZero() bool {
	return len(t.deltas) == 0
}

// IsAbsolute reports whether the axis has a reference timestamp
func (t Time) IsAbsolute() bool {
	return t.ref != nil
}

// Reference returns the reference timestamp and whether one is set
func (t Time) Reference() (time.Time, bool) {
	if t.ref == nil {
		return time.Time{}, false
	}
	return *t.ref, true
}

// Durations returns a copy of the values as offsets from the reference
func (t Time) Durations() []time.Duration {
	return append([]time.Duration(nil), t.deltas...)
}

// At returns the i-th value as an offset from the reference
func (t Time) At(i int) time.Duration {
	return t.deltas[i]
}

// Timestamps returns the absolute timestamps. It returns nil for relative axes.
func (t Time) Timestamps() []time.Time {
	if t.ref == nil {
		return nil
	}
	out := make([]time.Time, len(t.deltas))
	for i, d := range t.deltas {
		out[i] = t.ref.Add(d)
	}
	return out
}

// Seconds returns the values in seconds relative to the axis' own reference
func (t Time) Seconds() []float64 {
	out := make([]float64, len(t.deltas))
	for i, d := range t.deltas {
		out[i] = d.Seconds()
	}
	return out
}

// SecondsRelativeTo returns the values in seconds as seen from the reference of
// other. Both axes must be of the same kind.
func (t Time) SecondsRelativeTo(other Time) ([]float64, error) {
	if t.IsAbsolute() != other.IsAbsolute() {
		return nil, ErrMixedTimeKinds
	}
	var shift time.Duration
	if t.ref != nil {
		shift = t.ref.Sub(*other.ref)
	}
	out := make([]float64, len(t.deltas))
	for i, d := range t.deltas {
		out[i] = (d + shift).Seconds()
	}
	return out, nil
}

// Min returns the first value
func (t Time) Min() time.Duration {
	return t.deltas[0]
}

// Max returns the last value
func (t Time) Max() time.Duration {
	return t.deltas[len(t.deltas)-1]
}

// Equal reports whether both axes describe the same points in time with the same kind
func (t Time) Equal(other Time) bool {
	if t.Len() != other.Len() || t.IsAbsolute() != other.IsAbsolute() {
		return false
	}
	if t.ref != nil {
		a, b := t.Timestamps(), other.Timestamps()
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	}
	for i := range t.deltas {
		if t.deltas[i] != other.deltas[i] {
			return false
		}
	}
	return true
}

// String renders the axis for diagnostics
func (t Time) String() string {
	if t.IsZero() {
		return "Time(<none>)"
	}
	parts := make([]string, len(t.deltas))
	for i, d := range t.deltas {
		parts[i] = d.String()
	}
	if t.ref != nil {
		return fmt.Sprintf("Time(ref=%s, [%s])", t.ref.Format(time.RFC3339Nano), strings.Join(parts, " "))
	}
	return fmt.Sprintf("Time([%s])", strings.Join(parts, " "))
}

// Union returns the sorted, deduplicated merge of the given axes.
// Empty axes are ignored. Absolute axes are expressed relative to the earliest
// reference. Combining absolute and relative axes fails.
func Union(axes ...Time) (Time, error) {
	var nonEmpty []Time
	for _, a := range axes {
		if !a.IsZero() {
			nonEmpty = append(nonEmpty, a)
		}
	}
	if len(nonEmpty) == 0 {
		return Time{}, nil
	}

	absolute := nonEmpty[0].IsAbsolute()
	for _, a := range nonEmpty[1:] {
		if a.IsAbsolute() != absolute {
			return Time{}, ErrMixedTimeKinds
		}
	}

	var ref *time.Time
	if absolute {
		earliest := *nonEmpty[0].ref
		for _, a := range nonEmpty[1:] {
			if a.ref.Before(earliest) {
				earliest = *a.ref
			}
		}
		ref = &earliest
	}

	seen := make(map[time.Duration]struct{})
	var merged []time.Duration
	for _, a := range nonEmpty {
		var shift time.Duration
		if absolute {
			shift = a.ref.Sub(*ref)
		}
		for _, d := range a.deltas {
			v := d + shift
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			merged = append(merged, v)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })

	return New(merged, ref)
}
