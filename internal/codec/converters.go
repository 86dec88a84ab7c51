package codec

import (
	"fmt"
	"time"

	"github.com/philipparndt/goweldx/internal/csm"
	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/lcs"
	"github.com/philipparndt/goweldx/internal/times"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Tags of the built-in converters
const (
	TagTime                      = "!weldx/time/time-1.0.0"
	TagLocalCoordinateSystem     = "!weldx/core/transformations/local_coordinate_system-1.0.0"
	TagCoordinateTransformation  = "!weldx/core/transformations/coordinate_transformation-1.0.0"
	TagCoordinateSystemHierarchy = "!weldx/core/transformations/coordinate_system_hierarchy-1.0.0"
)

// timeConverter encodes times.Time as duration strings and an optional
// RFC 3339 reference timestamp:
//
//	values: [0s, 1.5s]
//	reference_time: "2020-01-01T00:00:00Z"
type timeConverter struct{}

func (timeConverter) Tag() string { return TagTime }

func (timeConverter) Handles(v any) bool {
	_, ok := v.(times.Time)
	return ok
}

func (timeConverter) Encode(_ *Registry, v any) (*yaml.Node, error) {
	t := v.(times.Time)
	values := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, d := range t.Durations() {
		values.Content = append(values.Content, scalar(d.String()))
	}

	n := mapping()
	put(n, "values", values)
	if ref, ok := t.Reference(); ok {
		put(n, "reference_time", scalar(ref.Format(time.RFC3339Nano)))
	}
	return n, nil
}

func (timeConverter) Decode(_ *Registry, n *yaml.Node) (any, error) {
	fields, err := requireFields(n, "values")
	if err != nil {
		return nil, err
	}
	raw, err := decodeStrings(fields["values"])
	if err != nil {
		return nil, err
	}
	deltas := make([]time.Duration, len(raw))
	for i, s := range raw {
		if deltas[i], err = time.ParseDuration(s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	var ref *time.Time
	if node, ok := fields["reference_time"]; ok {
		s, err := decodeString(node)
		if err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		ref = &parsed
	}
	return times.New(deltas, ref)
}

// lcsConverter encodes a coordinate system with an explicit kind. Arrays are
// stored without broadcasting, a singleton applies to every time step.
type lcsConverter struct {
	// opts are applied when decoding
	opts []lcs.Option
}

func (lcsConverter) Tag() string { return TagLocalCoordinateSystem }

func (lcsConverter) Handles(v any) bool {
	_, ok := v.(*lcs.LocalCoordinateSystem)
	return ok
}

func (lcsConverter) Encode(r *Registry, v any) (*yaml.Node, error) {
	l := v.(*lcs.LocalCoordinateSystem)

	orientations := sequence()
	for _, m := range l.OrientationData() {
		rows := sequence()
		for i := 0; i < 3; i++ {
			rows.Content = append(rows.Content, flowFloats(m[i][0], m[i][1], m[i][2]))
		}
		orientations.Content = append(orientations.Content, rows)
	}
	coordinates := sequence()
	for _, c := range l.CoordinateData() {
		coordinates.Content = append(coordinates.Content, flowFloats(c.X, c.Y, c.Z))
	}

	n := mapping()
	put(n, "kind", scalar(l.Kind().String()))
	if l.IsTimeDependent() {
		t, err := r.EncodeValue(l.Time())
		if err != nil {
			return nil, err
		}
		put(n, "time", t)
	}
	put(n, "orientations", orientations)
	put(n, "coordinates", coordinates)
	return n, nil
}

func (c lcsConverter) Decode(r *Registry, n *yaml.Node) (any, error) {
	fields, err := requireFields(n, "kind", "orientations", "coordinates")
	if err != nil {
		return nil, err
	}
	kind, err := decodeString(fields["kind"])
	if err != nil {
		return nil, err
	}

	var t times.Time
	if node, ok := fields["time"]; ok {
		v, err := r.DecodeValue(node)
		if err != nil {
			return nil, err
		}
		if t, ok = v.(times.Time); !ok {
			return nil, fmt.Errorf("%w: time is %T", ErrMalformed, v)
		}
	}

	var orientations []geometry.Mat3
	for _, m := range fields["orientations"].Content {
		if len(m.Content) != 3 {
			return nil, fmt.Errorf("%w: orientation needs 3 rows at line %d", ErrMalformed, m.Line)
		}
		var values []float64
		for _, row := range m.Content {
			v, err := decodeFloats(row, 3)
			if err != nil {
				return nil, err
			}
			values = append(values, v...)
		}
		o, err := geometry.Mat3FromSlice(values)
		if err != nil {
			return nil, err
		}
		orientations = append(orientations, o)
	}

	var coordinates []r3.Vec
	for _, c := range fields["coordinates"].Content {
		v, err := decodeFloats(c, 3)
		if err != nil {
			return nil, err
		}
		coordinates = append(coordinates, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	}

	l, err := lcs.New(orientations, coordinates, t, c.opts...)
	if err != nil {
		return nil, err
	}
	if l.Kind().String() != kind {
		return nil, fmt.Errorf("%w: kind %q does not match data (%s)", ErrMalformed, kind, l.Kind())
	}
	return l, nil
}

// transformationConverter encodes a single defined edge
type transformationConverter struct{}

func (transformationConverter) Tag() string { return TagCoordinateTransformation }

func (transformationConverter) Handles(v any) bool {
	_, ok := v.(csm.CoordinateTransformation)
	return ok
}

func (transformationConverter) Encode(r *Registry, v any) (*yaml.Node, error) {
	ct := v.(csm.CoordinateTransformation)
	l, err := r.EncodeValue(ct.Transformation)
	if err != nil {
		return nil, err
	}
	n := mapping()
	put(n, "name", scalar(ct.Name))
	put(n, "reference_system", scalar(ct.ReferenceSystem))
	put(n, "transformation", l)
	return n, nil
}

func (transformationConverter) Decode(r *Registry, n *yaml.Node) (any, error) {
	fields, err := requireFields(n, "name", "reference_system", "transformation")
	if err != nil {
		return nil, err
	}
	var ct csm.CoordinateTransformation
	if ct.Name, err = decodeString(fields["name"]); err != nil {
		return nil, err
	}
	if ct.ReferenceSystem, err = decodeString(fields["reference_system"]); err != nil {
		return nil, err
	}
	v, err := r.DecodeValue(fields["transformation"])
	if err != nil {
		return nil, err
	}
	l, ok := v.(*lcs.LocalCoordinateSystem)
	if !ok {
		return nil, fmt.Errorf("%w: transformation is %T", ErrMalformed, v)
	}
	ct.Transformation = l
	return ct, nil
}

// hierarchyConverter encodes a whole manager through csm.Export and
// csm.Import
type hierarchyConverter struct{}

func (hierarchyConverter) Tag() string { return TagCoordinateSystemHierarchy }

func (hierarchyConverter) Handles(v any) bool {
	_, ok := v.(*csm.Manager)
	return ok
}

func (hierarchyConverter) Encode(r *Registry, v any) (*yaml.Node, error) {
	data := csm.Export(v.(*csm.Manager))

	n := mapping()
	put(n, "name", scalar(data.Name))
	put(n, "root_system_name", scalar(data.RootSystemName))

	if len(data.Subsystems) > 0 {
		subsystems := sequence()
		for _, s := range data.Subsystems {
			sn := mapping()
			put(sn, "name", scalar(s.Name))
			put(sn, "root_system_name", scalar(s.RootSystemName))
			put(sn, "parent_system", scalar(s.ParentSystem))
			put(sn, "common_system", scalar(s.CommonSystem))
			put(sn, "members", stringSequence(s.Members))
			subsystems.Content = append(subsystems.Content, sn)
		}
		put(n, "subsystems", subsystems)
	}

	systems := sequence()
	for _, ct := range data.CoordinateSystems {
		cn, err := r.EncodeValue(ct)
		if err != nil {
			return nil, err
		}
		systems.Content = append(systems.Content, cn)
	}
	put(n, "coordinate_systems", systems)
	return n, nil
}

func (hierarchyConverter) Decode(r *Registry, n *yaml.Node) (any, error) {
	fields, err := requireFields(n, "name", "root_system_name", "coordinate_systems")
	if err != nil {
		return nil, err
	}

	var data csm.HierarchyData
	if data.Name, err = decodeString(fields["name"]); err != nil {
		return nil, err
	}
	if data.RootSystemName, err = decodeString(fields["root_system_name"]); err != nil {
		return nil, err
	}

	if node, ok := fields["subsystems"]; ok {
		for _, sn := range node.Content {
			sf, err := requireFields(sn, "name", "root_system_name", "parent_system", "common_system", "members")
			if err != nil {
				return nil, err
			}
			var s csm.SubsystemData
			for key, dst := range map[string]*string{
				"name":             &s.Name,
				"root_system_name": &s.RootSystemName,
				"parent_system":    &s.ParentSystem,
				"common_system":    &s.CommonSystem,
			} {
				if *dst, err = decodeString(sf[key]); err != nil {
					return nil, err
				}
			}
			if s.Members, err = decodeStrings(sf["members"]); err != nil {
				return nil, err
			}
			data.Subsystems = append(data.Subsystems, s)
		}
	}

	for _, cn := range fields["coordinate_systems"].Content {
		v, err := r.DecodeValue(cn)
		if err != nil {
			return nil, err
		}
		ct, ok := v.(csm.CoordinateTransformation)
		if !ok {
			return nil, fmt.Errorf("%w: coordinate system entry is %T", ErrMalformed, v)
		}
		data.CoordinateSystems = append(data.CoordinateSystems, ct)
	}

	return csm.Import(data)
}
