package csm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/philipparndt/goweldx/internal/lcs"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CoordinateTransformation is a flattened defined edge: Transformation
// describes Name in ReferenceSystem.
type CoordinateTransformation struct {
	Name            string
	ReferenceSystem string
	Transformation  *lcs.LocalCoordinateSystem
}

// SubsystemData describes a merged subsystem. ParentSystem is the name of the
// manager or subsystem it was merged into.
type SubsystemData struct {
	Name           string
	RootSystemName string
	ParentSystem   string
	CommonSystem   string
	Members        []string
}

// HierarchyData is the serializable state of a Manager
type HierarchyData struct {
	Name              string
	RootSystemName    string
	CoordinateSystems []CoordinateTransformation
	Subsystems        []SubsystemData
}

// Export flattens the manager into defined edges and subsystem descriptors.
// Computed edges are never exported.
func Export(m *Manager) HierarchyData {
	data := HierarchyData{
		Name:              m.name,
		RootSystemName:    m.exportRoot(),
		CoordinateSystems: m.DefinedEdges(),
	}
	for _, s := range m.subsystems {
		s.walk(m.name, func(parent string, s *subsystem) {
			data.Subsystems = append(data.Subsystems, SubsystemData{
				Name:           s.name,
				RootSystemName: s.root,
				ParentSystem:   parent,
				CommonSystem:   s.common,
				Members:        append([]string(nil), s.members...),
			})
		})
	}
	return data
}

// exportRoot returns a system without outgoing defined edge. The manager root
// is preferred, otherwise the lexicographically first candidate is used.
func (m *Manager) exportRoot() string {
	outgoing := make(map[string]bool, len(m.nodes))
	for _, k := range m.defined {
		outgoing[k.from] = true
	}
	if !outgoing[m.root] {
		return m.root
	}
	var candidates []string
	for _, n := range m.nodes {
		if !outgoing[n] {
			candidates = append(candidates, n)
		}
	}
	sort.Strings(candidates)
	return candidates[0]
}

// Import rebuilds a manager from exported data. Transformations are attached
// repeatedly until a full pass adds nothing; a transformation attaches when
// exactly one of its systems is already present. Records that never attach
// are reported instead of being dropped.
func Import(data HierarchyData, opts ...Option) (*Manager, error) {
	if data.RootSystemName == "" {
		return nil, fmt.Errorf("import: %w: missing root system", ErrIncompleteHierarchy)
	}
	if err := validateRecords(data.CoordinateSystems); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	if data.Name != "" {
		opts = append([]Option{WithName(data.Name)}, opts...)
	}
	m := New(data.RootSystemName, opts...)

	pending := append([]CoordinateTransformation(nil), data.CoordinateSystems...)
	for progress := true; progress && len(pending) > 0; {
		progress = false
		rest := pending[:0]
		for _, r := range pending {
			hasChild := m.HasCoordinateSystem(r.Name)
			hasParent := m.HasCoordinateSystem(r.ReferenceSystem)
			switch {
			case hasParent && !hasChild:
				m.addNode(r.Name)
			case hasChild && !hasParent:
				m.addNode(r.ReferenceSystem)
			default:
				rest = append(rest, r)
				continue
			}
			m.addEdge(r.Name, r.ReferenceSystem, r.Transformation)
			progress = true
		}
		pending = rest
	}

	if len(pending) > 0 {
		var closing, orphaned []string
		for _, r := range pending {
			label := r.Name + " -> " + r.ReferenceSystem
			if m.HasCoordinateSystem(r.Name) && m.HasCoordinateSystem(r.ReferenceSystem) {
				closing = append(closing, label)
			} else {
				orphaned = append(orphaned, label)
			}
		}
		if len(closing) > 0 {
			return nil, fmt.Errorf("import: %w: %s", ErrCyclicHierarchy, strings.Join(closing, ", "))
		}
		return nil, fmt.Errorf("import: %w: cannot attach %s", ErrIncompleteHierarchy, strings.Join(orphaned, ", "))
	}

	if err := m.restoreSubsystems(data.Subsystems); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return m, nil
}

// validateRecords rejects self references, duplicate edges and directed cycles
// before any system is attached
func validateRecords(records []CoordinateTransformation) error {
	ids := make(map[string]int64)
	id := func(name string) int64 {
		if v, ok := ids[name]; ok {
			return v
		}
		v := int64(len(ids))
		ids[name] = v
		return v
	}

	g := simple.NewDirectedGraph()
	seen := make(map[edgeKey]struct{}, len(records))
	for _, r := range records {
		if r.Name == "" || r.ReferenceSystem == "" {
			return fmt.Errorf("%w: transformation with empty system name", ErrIncompleteHierarchy)
		}
		if r.Transformation == nil {
			return fmt.Errorf("%w: %q has no transformation", ErrIncompleteHierarchy, r.Name)
		}
		if r.Name == r.ReferenceSystem {
			return fmt.Errorf("%w: %q references itself", ErrCyclicHierarchy, r.Name)
		}
		key := edgeKey{r.Name, r.ReferenceSystem}
		_, forward := seen[key]
		_, backward := seen[edgeKey{r.ReferenceSystem, r.Name}]
		if forward || backward {
			return fmt.Errorf("%w: %q in %q defined twice", ErrDuplicateSystem, r.Name, r.ReferenceSystem)
		}
		seen[key] = struct{}{}

		from, to := id(r.Name), id(r.ReferenceSystem)
		for _, v := range []int64{from, to} {
			if g.Node(v) == nil {
				g.AddNode(simple.Node(v))
			}
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
	}

	if _, err := topo.Sort(g); err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) {
			names := make(map[int64]string, len(ids))
			for n, v := range ids {
				names[v] = n
			}
			var parts []string
			for _, c := range cycles {
				var members []string
				for _, n := range c {
					members = append(members, names[n.ID()])
				}
				sort.Strings(members)
				parts = append(parts, "["+strings.Join(members, " ")+"]")
			}
			return fmt.Errorf("%w: %s", ErrCyclicHierarchy, strings.Join(parts, ", "))
		}
		return err
	}
	return nil
}

// restoreSubsystems rebuilds the subsystem tree from flattened descriptors
func (m *Manager) restoreSubsystems(descriptors []SubsystemData) error {
	byName := make(map[string]*subsystem, len(descriptors))
	for _, d := range descriptors {
		if _, ok := byName[d.Name]; ok || d.Name == m.name {
			return fmt.Errorf("%w: %q", ErrDuplicateSubsystem, d.Name)
		}
		for _, n := range append([]string{d.RootSystemName, d.CommonSystem}, d.Members...) {
			if !m.HasCoordinateSystem(n) {
				return fmt.Errorf("subsystem %q: %w: %q", d.Name, ErrUnknownSystem, n)
			}
		}
		byName[d.Name] = &subsystem{
			name:    d.Name,
			root:    d.RootSystemName,
			common:  d.CommonSystem,
			members: append([]string(nil), d.Members...),
		}
	}

	// descriptors are attached in order, so a parent must precede its children
	attached := map[string]struct{}{m.name: {}}
	for _, d := range descriptors {
		s := byName[d.Name]
		if d.ParentSystem == m.name {
			m.subsystems = append(m.subsystems, s)
		} else if parent, ok := byName[d.ParentSystem]; ok {
			if _, done := attached[d.ParentSystem]; !done {
				return fmt.Errorf("subsystem %q: %w: parent %q listed later", d.Name, ErrIncompleteHierarchy, d.ParentSystem)
			}
			parent.children = append(parent.children, s)
		} else {
			return fmt.Errorf("subsystem %q: %w: unknown parent %q", d.Name, ErrIncompleteHierarchy, d.ParentSystem)
		}
		attached[d.Name] = struct{}{}
	}
	return nil
}
