// Package csm implements the coordinate system manager: a named graph of
// coordinate systems connected by rigid transformations.
//
// Every system except the root is attached to an existing system through a
// defined edge (child -> parent) and its automatic inverse. Transformations
// between systems that are not neighbors are composed along the shortest path
// and cached as computed edges.
package csm

import (
	"errors"
	"fmt"
	"sort"

	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/lcs"
	"github.com/philipparndt/goweldx/internal/times"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultName is the name of a manager created without WithName
const DefaultName = "coordinate_system_manager"

var (
	// ErrDuplicateSystem is returned when a system name is already in use
	ErrDuplicateSystem = errors.New("coordinate system already exists")
	// ErrUnknownParent is returned when a reference system does not exist
	ErrUnknownParent = errors.New("reference system does not exist")
	// ErrUnknownSystem is returned when a queried system does not exist
	ErrUnknownSystem = errors.New("coordinate system does not exist")
	// ErrNameCollision is returned when a merged manager shares more than one system
	ErrNameCollision = errors.New("managers share more than one coordinate system")
	// ErrNoCommonSystem is returned when a merged manager shares no system
	ErrNoCommonSystem = errors.New("managers share no coordinate system")
	// ErrDuplicateSubsystem is returned when a subsystem name is already in use
	ErrDuplicateSubsystem = errors.New("subsystem name already in use")
	// ErrNoSubsystems is returned by Unmerge on a manager without subsystems
	ErrNoSubsystems = errors.New("manager has no subsystems")
	// ErrIncompleteHierarchy is returned when imported transformations cannot all be attached
	ErrIncompleteHierarchy = errors.New("hierarchy is incomplete")
	// ErrCyclicHierarchy is returned when imported transformations form a cycle
	ErrCyclicHierarchy = errors.New("hierarchy contains a cycle")
	// ErrProtectedSystem is returned when deleting the root or a subsystem member
	ErrProtectedSystem = errors.New("coordinate system cannot be deleted")
	// ErrHasChildren is returned when deleting a system that has children
	ErrHasChildren = errors.New("coordinate system has children")
)

// EdgeKind tells how an edge came into the graph
type EdgeKind int

const (
	// EdgeDefined edges were added explicitly (child -> parent)
	EdgeDefined EdgeKind = iota
	// EdgeInverse edges are the automatic reverse of a defined edge
	EdgeInverse
	// EdgeComputed edges cache a composed path transformation
	EdgeComputed
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeDefined:
		return "defined"
	case EdgeInverse:
		return "inverse"
	case EdgeComputed:
		return "computed"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

type edgeKey struct {
	from, to string
}

type edge struct {
	transformation *lcs.LocalCoordinateSystem
	kind           EdgeKind
}

// Manager is a graph of coordinate systems. A Manager is not safe for
// concurrent use; queries may cache computed edges.
type Manager struct {
	name   string
	root   string
	logger *zap.Logger

	// nodes in insertion order
	nodes []string
	// structural neighbors (defined and inverse edges), sorted
	neighbors map[string][]string
	edges     map[edgeKey]edge
	// defined edges in insertion order
	defined []edgeKey

	subsystems []*subsystem
}

// Option configures a Manager
type Option func(*Manager)

// WithName sets the manager name used for subsystem bookkeeping
func WithName(name string) Option {
	return func(m *Manager) {
		m.name = name
	}
}

// WithLogger sets the logger for debug diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a manager containing only the root system
func New(root string, opts ...Option) *Manager {
	m := &Manager{
		name:      DefaultName,
		root:      root,
		logger:    zap.NewNop(),
		neighbors: make(map[string][]string),
		edges:     make(map[edgeKey]edge),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.addNode(root)
	return m
}

// Name returns the manager name
func (m *Manager) Name() string {
	return m.name
}

// RootSystemName returns the name of the root system
func (m *Manager) RootSystemName() string {
	return m.root
}

// HasCoordinateSystem reports whether a system with the given name exists
func (m *Manager) HasCoordinateSystem(name string) bool {
	_, ok := m.neighbors[name]
	return ok
}

// CoordinateSystemNames returns all system names in insertion order
func (m *Manager) CoordinateSystemNames() []string {
	return append([]string(nil), m.nodes...)
}

// NumberOfCoordinateSystems returns the number of systems including the root
func (m *Manager) NumberOfCoordinateSystems() int {
	return len(m.nodes)
}

// AddCS attaches a new system name to the existing system parent. The
// transformation describes name in parent.
func (m *Manager) AddCS(name, parent string, transformation *lcs.LocalCoordinateSystem) error {
	if transformation == nil {
		return fmt.Errorf("add %q: transformation is nil", name)
	}
	if m.HasCoordinateSystem(name) {
		return fmt.Errorf("add %q: %w", name, ErrDuplicateSystem)
	}
	if !m.HasCoordinateSystem(parent) {
		return fmt.Errorf("add %q: %w: %q", name, ErrUnknownParent, parent)
	}

	m.addNode(name)
	m.addEdge(name, parent, transformation)
	m.logger.Debug("coordinate system added",
		zap.String("manager", m.name),
		zap.String("name", name),
		zap.String("parent", parent),
		zap.Stringer("kind", transformation.Kind()))
	return nil
}

// CreateCS constructs a coordinate system from raw data and adds it like AddCS
func (m *Manager) CreateCS(name, parent string, orientation []geometry.Mat3, coordinates []r3.Vec, t times.Time, opts ...lcs.Option) error {
	transformation, err := lcs.New(orientation, coordinates, t, opts...)
	if err != nil {
		return fmt.Errorf("create %q: %w", name, err)
	}
	return m.AddCS(name, parent, transformation)
}

// UpdateCS replaces the transformation of an existing defined edge. Cached
// computed edges are discarded.
func (m *Manager) UpdateCS(name, parent string, transformation *lcs.LocalCoordinateSystem) error {
	if transformation == nil {
		return fmt.Errorf("update %q: transformation is nil", name)
	}
	if err := m.requireSystems(name, parent); err != nil {
		return fmt.Errorf("update %q: %w", name, err)
	}

	key := edgeKey{name, parent}
	if e, ok := m.edges[key]; ok && e.kind == EdgeDefined {
		m.edges[key] = edge{transformation: transformation, kind: EdgeDefined}
		m.edges[edgeKey{parent, name}] = edge{transformation: transformation.Invert(), kind: EdgeInverse}
	} else if e, ok := m.edges[edgeKey{parent, name}]; ok && e.kind == EdgeDefined {
		// the edge is defined in the other direction
		m.edges[edgeKey{parent, name}] = edge{transformation: transformation.Invert(), kind: EdgeDefined}
		m.edges[key] = edge{transformation: transformation, kind: EdgeInverse}
	} else {
		return fmt.Errorf("update %q: no defined edge to %q", name, parent)
	}

	m.invalidate()
	return nil
}

// DeleteCS removes a system. Systems that are only connected to the root
// through name are its children; they are removed as well if deleteChildren
// is set, otherwise ErrHasChildren is returned. The root and systems that
// belong to a subsystem cannot be deleted.
func (m *Manager) DeleteCS(name string, deleteChildren bool) error {
	if !m.HasCoordinateSystem(name) {
		return fmt.Errorf("delete %q: %w", name, ErrUnknownSystem)
	}
	if name == m.root {
		return fmt.Errorf("delete %q: %w: root system", name, ErrProtectedSystem)
	}

	removed := m.detachedBy(name)
	if len(removed) > 1 && !deleteChildren {
		return fmt.Errorf("delete %q: %w", name, ErrHasChildren)
	}
	members := m.subsystemMembers()
	for _, n := range removed {
		if _, ok := members[n]; ok {
			return fmt.Errorf("delete %q: %w: %q belongs to a subsystem", name, ErrProtectedSystem, n)
		}
	}

	m.removeNodes(removed)
	m.invalidate()
	m.logger.Debug("coordinate system deleted",
		zap.String("manager", m.name),
		zap.String("name", name),
		zap.Int("removed", len(removed)))
	return nil
}

// ParentSystemName returns the system name is defined in. The root has no
// parent.
func (m *Manager) ParentSystemName(name string) (string, bool) {
	for _, k := range m.defined {
		if k.from == name {
			return k.to, true
		}
	}
	return "", false
}

// ChildSystemNames returns the systems defined directly in name, in the order
// they were added
func (m *Manager) ChildSystemNames(name string) []string {
	var out []string
	for _, k := range m.defined {
		if k.to == name {
			out = append(out, k.from)
		}
	}
	return out
}

// IsNeighborOf reports whether a and b are connected by a defined edge in
// either direction
func (m *Manager) IsNeighborOf(a, b string) bool {
	for _, n := range m.neighbors[a] {
		if n == b {
			return true
		}
	}
	return false
}

// DefinedEdges returns the explicitly added transformations in insertion order
func (m *Manager) DefinedEdges() []CoordinateTransformation {
	out := make([]CoordinateTransformation, len(m.defined))
	for i, k := range m.defined {
		out[i] = CoordinateTransformation{
			Name:            k.from,
			ReferenceSystem: k.to,
			Transformation:  m.edges[k].transformation,
		}
	}
	return out
}

// EdgeKindOf returns the kind of the edge from -> to, if it exists
func (m *Manager) EdgeKindOf(from, to string) (EdgeKind, bool) {
	e, ok := m.edges[edgeKey{from, to}]
	return e.kind, ok
}

// NumberOfComputedEdges returns the number of cached edges (both directions)
func (m *Manager) NumberOfComputedEdges() int {
	n := 0
	for _, e := range m.edges {
		if e.kind == EdgeComputed {
			n++
		}
	}
	return n
}

// TimeUnion returns the union of the time axes of all time-dependent defined
// edges. A manager without time-dependent systems returns the zero Time.
func (m *Manager) TimeUnion() (times.Time, error) {
	var axes []times.Time
	for _, k := range m.defined {
		if t := m.edges[k].transformation; t.IsTimeDependent() {
			axes = append(axes, t.Time())
		}
	}
	return times.Union(axes...)
}

// InterpTime returns a copy of the manager with every defined transformation
// resampled onto t. Subsystem provenance is kept.
func (m *Manager) InterpTime(t times.Time) (*Manager, error) {
	out := m.emptyCopy()
	for _, k := range m.defined {
		resampled, err := m.edges[k].transformation.InterpTime(t)
		if err != nil {
			return nil, fmt.Errorf("interpolate %q: %w", k.from, err)
		}
		out.addEdge(k.from, k.to, resampled)
	}
	return out, nil
}

// emptyCopy copies name, logger, nodes and subsystems without edges
func (m *Manager) emptyCopy() *Manager {
	out := New(m.root, WithName(m.name), WithLogger(m.logger))
	for _, n := range m.nodes[1:] {
		out.addNode(n)
	}
	for _, s := range m.subsystems {
		out.subsystems = append(out.subsystems, s.clone())
	}
	return out
}

func (m *Manager) requireSystems(names ...string) error {
	for _, n := range names {
		if !m.HasCoordinateSystem(n) {
			return fmt.Errorf("%w: %q", ErrUnknownSystem, n)
		}
	}
	return nil
}

func (m *Manager) addNode(name string) {
	m.nodes = append(m.nodes, name)
	m.neighbors[name] = nil
}

// addEdge stores a defined edge and its inverse between existing nodes
func (m *Manager) addEdge(child, parent string, transformation *lcs.LocalCoordinateSystem) {
	key := edgeKey{child, parent}
	m.edges[key] = edge{transformation: transformation, kind: EdgeDefined}
	m.edges[edgeKey{parent, child}] = edge{transformation: transformation.Invert(), kind: EdgeInverse}
	m.defined = append(m.defined, key)
	m.link(child, parent)
	m.link(parent, child)
}

func (m *Manager) link(a, b string) {
	ns := m.neighbors[a]
	i := sort.SearchStrings(ns, b)
	ns = append(ns, "")
	copy(ns[i+1:], ns[i:])
	ns[i] = b
	m.neighbors[a] = ns
}

// detachedBy returns name and every system that loses its connection to the
// root when name is removed
func (m *Manager) detachedBy(name string) []string {
	reachable := map[string]struct{}{m.root: {}}
	queue := []string{m.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, nb := range m.neighbors[n] {
			if _, seen := reachable[nb]; seen || nb == name {
				continue
			}
			reachable[nb] = struct{}{}
			queue = append(queue, nb)
		}
	}

	out := []string{name}
	for _, n := range m.nodes {
		if _, ok := reachable[n]; !ok && n != name {
			out = append(out, n)
		}
	}
	return out
}

// removeNodes deletes nodes with all incident edges
func (m *Manager) removeNodes(names []string) {
	gone := make(map[string]struct{}, len(names))
	for _, n := range names {
		gone[n] = struct{}{}
	}
	isGone := func(n string) bool {
		_, ok := gone[n]
		return ok
	}

	nodes := m.nodes[:0]
	for _, n := range m.nodes {
		if !isGone(n) {
			nodes = append(nodes, n)
		}
	}
	m.nodes = nodes

	defined := m.defined[:0]
	for _, k := range m.defined {
		if !isGone(k.from) && !isGone(k.to) {
			defined = append(defined, k)
		}
	}
	m.defined = defined

	for k := range m.edges {
		if isGone(k.from) || isGone(k.to) {
			delete(m.edges, k)
		}
	}

	for n := range gone {
		delete(m.neighbors, n)
	}
	for n, ns := range m.neighbors {
		kept := ns[:0]
		for _, nb := range ns {
			if !isGone(nb) {
				kept = append(kept, nb)
			}
		}
		m.neighbors[n] = kept
	}
}

// invalidate drops all cached computed edges
func (m *Manager) invalidate() {
	n := 0
	for k, e := range m.edges {
		if e.kind == EdgeComputed {
			delete(m.edges, k)
			n++
		}
	}
	if n > 0 {
		m.logger.Debug("computed edges invalidated", zap.String("manager", m.name), zap.Int("edges", n))
	}
}
