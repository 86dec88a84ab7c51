package csm

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// subsystem records a manager that was merged into another one
type subsystem struct {
	name string
	root string
	// common is the system shared with the parent manager
	common string
	// members in the order they were added, including common
	members  []string
	children []*subsystem
}

func (s *subsystem) clone() *subsystem {
	c := &subsystem{
		name:    s.name,
		root:    s.root,
		common:  s.common,
		members: append([]string(nil), s.members...),
	}
	for _, child := range s.children {
		c.children = append(c.children, child.clone())
	}
	return c
}

// walk visits s and all nested subsystems depth-first
func (s *subsystem) walk(parent string, fn func(parent string, s *subsystem)) {
	fn(parent, s)
	for _, child := range s.children {
		child.walk(s.name, fn)
	}
}

// NumberOfSubsystems returns the number of directly merged subsystems
func (m *Manager) NumberOfSubsystems() int {
	return len(m.subsystems)
}

// SubsystemNames returns the names of the directly merged subsystems
func (m *Manager) SubsystemNames() []string {
	out := make([]string, len(m.subsystems))
	for i, s := range m.subsystems {
		out[i] = s.name
	}
	return out
}

// Merge adds all systems of other to m. Both managers must share exactly one
// system, which joins the two graphs. The merged systems are recorded as a
// subsystem named after other and can be extracted again with Unmerge.
func (m *Manager) Merge(other *Manager) error {
	if other == m {
		return fmt.Errorf("merge %q: %w: cannot merge a manager into itself", other.name, ErrDuplicateSubsystem)
	}

	var common []string
	for _, n := range other.nodes {
		if m.HasCoordinateSystem(n) {
			common = append(common, n)
		}
	}
	switch {
	case len(common) == 0:
		return fmt.Errorf("merge %q: %w", other.name, ErrNoCommonSystem)
	case len(common) > 1:
		return fmt.Errorf("merge %q: %w: %v", other.name, ErrNameCollision, common)
	}

	used := m.subsystemNames()
	used[m.name] = struct{}{}
	incoming := []string{other.name}
	for _, s := range other.subsystems {
		s.walk(other.name, func(_ string, s *subsystem) {
			incoming = append(incoming, s.name)
		})
	}
	for _, n := range incoming {
		if _, ok := used[n]; ok {
			return fmt.Errorf("merge %q: %w: %q", other.name, ErrDuplicateSubsystem, n)
		}
	}

	for _, n := range other.nodes {
		if n != common[0] {
			m.addNode(n)
		}
	}
	for _, k := range other.defined {
		m.addEdge(k.from, k.to, other.edges[k].transformation)
	}

	record := &subsystem{
		name:    other.name,
		root:    other.root,
		common:  common[0],
		members: append([]string(nil), other.nodes...),
	}
	for _, s := range other.subsystems {
		record.children = append(record.children, s.clone())
	}
	m.subsystems = append(m.subsystems, record)

	m.logger.Debug("manager merged",
		zap.String("manager", m.name),
		zap.String("subsystem", other.name),
		zap.String("common", common[0]),
		zap.Int("systems", len(other.nodes)))
	return nil
}

// Unmerge extracts every directly merged subsystem as an independent manager,
// including its own nested subsystems, and removes the extracted systems from
// m. The systems that joined the subsystems to m are kept. Systems added to m
// after the merge that are only connected through a subsystem move with it.
func (m *Manager) Unmerge() ([]*Manager, error) {
	if len(m.subsystems) == 0 {
		return nil, fmt.Errorf("unmerge %q: %w", m.name, ErrNoSubsystems)
	}

	// Step 1: collect the members to remove and who owns them
	owner := make(map[string]*subsystem)
	var removed []string
	for _, s := range m.subsystems {
		for _, n := range s.members {
			if n != s.common {
				owner[n] = s
				removed = append(removed, n)
			}
		}
	}

	// Step 2: systems hanging off removed members follow their subsystem
	attached := make(map[*subsystem][]string)
	for n, via := range m.strandedBy(owner) {
		s := owner[via]
		attached[s] = append(attached[s], n)
	}
	for _, s := range m.subsystems {
		sortByInsertion(attached[s], m.nodes)
		removed = append(removed, attached[s]...)
	}

	// Step 3: extract everything before removing anything, a junction may
	// belong to another subsystem
	out := make([]*Manager, len(m.subsystems))
	for i, s := range m.subsystems {
		out[i] = m.extract(s, attached[s])
	}

	names := m.SubsystemNames()
	m.subsystems = nil
	m.removeNodes(removed)
	m.invalidate()

	m.logger.Debug("manager unmerged",
		zap.String("manager", m.name),
		zap.Strings("subsystems", names),
		zap.Int("removed", len(removed)))
	return out, nil
}

// strandedBy returns the systems that lose their connection to the root when
// the given systems are removed, each mapped to the removed system it hangs
// off
func (m *Manager) strandedBy(removed map[string]*subsystem) map[string]string {
	isRemoved := func(n string) bool {
		_, ok := removed[n]
		return ok
	}

	// breadth-first from the root over the full graph, remembering parents
	parent := map[string]string{m.root: ""}
	queue := []string{m.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, nb := range m.neighbors[n] {
			if _, seen := parent[nb]; seen {
				continue
			}
			parent[nb] = n
			queue = append(queue, nb)
		}
	}

	out := make(map[string]string)
	for _, n := range m.nodes {
		if isRemoved(n) {
			continue
		}
		// the nearest removed system towards the root, if any
		for p := parent[n]; p != ""; p = parent[p] {
			if isRemoved(p) {
				out[n] = p
				break
			}
		}
	}
	return out
}

// sortByInsertion orders names like they appear in nodes
func sortByInsertion(names, nodes []string) {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}
	sort.Slice(names, func(i, j int) bool {
		return index[names[i]] < index[names[j]]
	})
}

// extract builds an independent manager from the systems of s and the extra
// systems attached to them
func (m *Manager) extract(s *subsystem, extra []string) *Manager {
	members := make(map[string]struct{}, len(s.members)+len(extra))
	for _, n := range s.members {
		members[n] = struct{}{}
	}
	for _, n := range extra {
		members[n] = struct{}{}
	}

	out := New(s.root, WithName(s.name), WithLogger(m.logger))
	for _, n := range append(append([]string(nil), s.members...), extra...) {
		if n != s.root {
			out.addNode(n)
		}
	}
	for _, k := range m.defined {
		_, from := members[k.from]
		_, to := members[k.to]
		if from && to {
			out.addEdge(k.from, k.to, m.edges[k].transformation)
		}
	}
	for _, child := range s.children {
		out.subsystems = append(out.subsystems, child.clone())
	}
	return out
}

// subsystemNames returns the names of all subsystems at any depth
func (m *Manager) subsystemNames() map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range m.subsystems {
		s.walk(m.name, func(_ string, s *subsystem) {
			out[s.name] = struct{}{}
		})
	}
	return out
}

// subsystemMembers returns the systems that belong to any subsystem
func (m *Manager) subsystemMembers() map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range m.subsystems {
		for _, n := range s.members {
			out[n] = struct{}{}
		}
	}
	return out
}
