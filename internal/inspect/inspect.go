package inspect

import (
	"fmt"
	"os"
	"slices"

	"github.com/philipparndt/goweldx/internal/codec"
	"github.com/philipparndt/goweldx/internal/csm"
	"github.com/philipparndt/goweldx/internal/lcs"
	"github.com/philipparndt/goweldx/internal/times"
	"github.com/philipparndt/goweldx/internal/ui"
)

// TreeKey is the tree entry a built hierarchy is stored under
const TreeKey = "coordinate_systems"

// Inspector provides functionality to inspect hierarchy files
type Inspector struct {
	registry *codec.Registry
}

// NewInspector creates a new Inspector using the built-in converters
func NewInspector() *Inspector {
	return &Inspector{registry: codec.DefaultRegistry()}
}

// Inspect reads and displays the contents of a hierarchy file
func (i *Inspector) Inspect(filename string) error {
	f, err := i.ReadFile(filename)
	if err != nil {
		return err
	}

	ui.PrintHeader(fmt.Sprintf("Inspecting: %s", filename))
	ui.PrintStep(fmt.Sprintf("Version: %s", f.Version))

	keys := sortedKeys(f.Tree)
	if len(keys) == 0 {
		ui.PrintStep("File tree is empty")
		return nil
	}

	printer := NewHierarchyPrinter()
	managers := 0
	for _, key := range keys {
		switch v := f.Tree[key].(type) {
		case *csm.Manager:
			managers++
			ui.PrintHeader(fmt.Sprintf("%s: %s", key, v.Name()))
			if err := printer.PrintHierarchy(v); err != nil {
				return err
			}
		case *lcs.LocalCoordinateSystem:
			ui.PrintHeader(key)
			ui.PrintStep(fmt.Sprintf("Local coordinate system (%s, %d step%s)", v.Kind(), v.Len(), plural(v.Len())))
		case csm.CoordinateTransformation:
			ui.PrintHeader(key)
			ui.PrintStep(fmt.Sprintf("Transformation of %s in %s (%s)", v.Name, v.ReferenceSystem, v.Transformation.Kind()))
		case times.Time:
			ui.PrintHeader(key)
			ui.PrintStep(fmt.Sprintf("Time axis: %s", v))
		default:
			ui.PrintHeader(key)
			ui.PrintStep(fmt.Sprintf("%v", v))
		}
	}

	ui.PrintSeparator()
	ui.PrintHighlight(fmt.Sprintf("%d entr%s, %d coordinate system manager%s",
		len(keys), entrySuffix(len(keys)), managers, plural(managers)))
	return nil
}

func entrySuffix(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// ReadFile reads and decodes a hierarchy file
func (i *Inspector) ReadFile(filename string) (codec.File, error) {
	// Check if file exists
	if _, err := os.Stat(filename); err != nil {
		return codec.File{}, fmt.Errorf("file not found: %s", filename)
	}

	f, err := i.registry.ReadFile(filename)
	if err != nil {
		return codec.File{}, fmt.Errorf("error reading hierarchy file: %w", err)
	}
	return f, nil
}

// LoadManager reads a file and returns the manager stored under key. An empty
// key selects the only manager of the file.
func (i *Inspector) LoadManager(filename, key string) (*csm.Manager, error) {
	f, err := i.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	if key != "" {
		m, ok := f.Tree[key].(*csm.Manager)
		if !ok {
			return nil, fmt.Errorf("%s: no coordinate system manager under %q", filename, key)
		}
		return m, nil
	}

	var found []string
	for _, k := range sortedKeys(f.Tree) {
		if _, ok := f.Tree[k].(*csm.Manager); ok {
			found = append(found, k)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s: file contains no coordinate system manager", filename)
	case 1:
		return f.Tree[found[0]].(*csm.Manager), nil
	default:
		return nil, fmt.Errorf("%s: file contains %d managers %v, select one by key", filename, len(found), found)
	}
}

func sortedKeys(tree map[string]any) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// plural returns "s" if count != 1, empty string otherwise
func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
