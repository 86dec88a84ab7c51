package inspect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/philipparndt/goweldx/internal/csm"
	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/times"
	"github.com/philipparndt/goweldx/internal/ui"
	"gonum.org/v1/gonum/spatial/r3"
)

// HierarchyPrinter handles printing a coordinate system hierarchy and its details
type HierarchyPrinter struct{}

// NewHierarchyPrinter creates a new HierarchyPrinter
func NewHierarchyPrinter() *HierarchyPrinter {
	return &HierarchyPrinter{}
}

// PrintHierarchy prints the tree, subsystems, time union and origins of m
func (p *HierarchyPrinter) PrintHierarchy(m *csm.Manager) error {
	p.PrintTree(m)
	p.PrintSubsystems(m)

	union, err := m.TimeUnion()
	switch {
	case errors.Is(err, times.ErrMixedTimeKinds):
		ui.PrintWarning("Time: absolute and relative time axes are mixed, no common time union")
	case err != nil:
		return err
	case union.IsZero():
		ui.PrintKeyValue("Time", "static")
	default:
		ui.PrintKeyValue("Time", union.String())
	}

	return p.PrintOrigins(m)
}

// PrintTree prints the systems as a tree starting at the root
func (p *HierarchyPrinter) PrintTree(m *csm.Manager) {
	ui.PrintTree(p.Tree(m))
}

// Tree arranges the systems of m into a tree below the root system. Systems
// the root is defined in are listed as its children as well.
func (p *HierarchyPrinter) Tree(m *csm.Manager) ui.TreeNode {
	visited := map[string]bool{}
	return p.node(m, m.RootSystemName(), "", visited)
}

func (p *HierarchyPrinter) node(m *csm.Manager, name, from string, visited map[string]bool) ui.TreeNode {
	visited[name] = true
	n := ui.TreeNode{Label: name}
	if from != "" {
		n.Detail = p.edgeDetail(m, name, from)
	}

	// Step 1: systems defined in name
	neighbors := m.ChildSystemNames(name)

	// Step 2: the system name is defined in, when it was not reached yet
	if parent, ok := m.ParentSystemName(name); ok {
		neighbors = append(neighbors, parent)
	}

	for _, next := range neighbors {
		if visited[next] {
			continue
		}
		n.Children = append(n.Children, p.node(m, next, name, visited))
	}
	return n
}

func (p *HierarchyPrinter) edgeDetail(m *csm.Manager, name, from string) string {
	var parts []string
	if parent, ok := m.ParentSystemName(from); ok && parent == name {
		parts = append(parts, "parent")
	}
	if l, err := m.GetCS(name, from); err == nil && l.IsTimeDependent() {
		parts = append(parts, fmt.Sprintf("time dependent, %d steps", l.Len()))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// PrintSubsystems lists merged subsystems including nested ones
func (p *HierarchyPrinter) PrintSubsystems(m *csm.Manager) {
	data := csm.Export(m)
	if len(data.Subsystems) == 0 {
		return
	}

	ui.PrintHeader("Subsystems")
	for _, s := range data.Subsystems {
		line := fmt.Sprintf("%s (common: %s, %d member%s)", s.Name, s.CommonSystem, len(s.Members), plural(len(s.Members)))
		if s.ParentSystem != m.Name() {
			line += " in " + s.ParentSystem
		}
		ui.PrintItem(line)
	}
}

// PrintOrigins prints where every system's origin lies in the root system and
// the extent of all origins over time
func (p *HierarchyPrinter) PrintOrigins(m *csm.Manager) error {
	root := m.RootSystemName()
	ui.PrintHeader(fmt.Sprintf("Origins in %s", root))
	ui.PrintTableHeader("System", "Reference", "Kind", "Origin")

	var points []r3.Vec
	for _, name := range m.CoordinateSystemNames() {
		l, err := m.GetCS(name, root)
		if err != nil {
			return err
		}

		reference, ok := m.ParentSystemName(name)
		if !ok {
			reference = "-"
		}
		ui.PrintTableRow(name, reference, l.Kind().String(), geometry.FormatVector(l.Coordinates(0)))
		points = append(points, l.CoordinateSeries()...)

		if ui.IsVerbose() {
			ui.PrintItem(geometry.FormatTransform(l.Orientation(0), l.Coordinates(0)))
		}
	}

	bbox, err := geometry.CalculateBoundingBox(points)
	if err != nil {
		return err
	}
	ui.PrintKeyValue("Extent min", geometry.FormatVector(bbox.Min))
	ui.PrintKeyValue("Extent max", geometry.FormatVector(bbox.Max))
	ui.PrintKeyValue("Size", fmt.Sprintf("%.4f x %.4f x %.4f", bbox.Width(), bbox.Height(), bbox.Depth()))
	return nil
}
