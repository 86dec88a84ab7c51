package inspect

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/philipparndt/goweldx/internal/codec"
	"github.com/philipparndt/goweldx/internal/csm"
	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/lcs"
	"github.com/philipparndt/goweldx/internal/times"
	"github.com/philipparndt/goweldx/internal/ui"
	"gonum.org/v1/gonum/spatial/r3"
)

func cell(t *testing.T) *csm.Manager {
	t.Helper()
	m := csm.New("base", csm.WithName("cell"))
	if err := m.CreateCS("wp", "base", []geometry.Mat3{geometry.Identity()}, []r3.Vec{{X: 10}}, times.Time{}); err != nil {
		t.Fatalf("CreateCS failed: %v", err)
	}
	axis, err := times.FromSeconds([]float64{0, 1}, nil)
	if err != nil {
		t.Fatalf("FromSeconds failed: %v", err)
	}
	if err := m.CreateCS("tcp", "wp", []geometry.Mat3{geometry.Identity()}, []r3.Vec{{}, {Y: 5}}, axis); err != nil {
		t.Fatalf("CreateCS failed: %v", err)
	}

	tool := csm.New("wp", csm.WithName("tool"))
	if err := tool.AddCS("holder", "wp", lcs.Identity()); err != nil {
		t.Fatalf("AddCS failed: %v", err)
	}
	if err := m.Merge(tool); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	return m
}

func writeFile(t *testing.T, tree map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cell.csm.yaml")
	if err := codec.DefaultRegistry().WriteFile(path, codec.File{Tree: tree}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := ui.Output
	ui.Output = &buf
	t.Cleanup(func() { ui.Output = previous })
	return &buf
}

func TestLoadManager(t *testing.T) {
	single := writeFile(t, map[string]any{TreeKey: cell(t), "note": "x"})
	multiple := writeFile(t, map[string]any{"a": cell(t), "b": cell(t)})
	none := writeFile(t, map[string]any{"note": "x"})

	tests := []struct {
		name    string
		file    string
		key     string
		wantErr string
	}{
		{"only manager", single, "", ""},
		{"by key", multiple, "b", ""},
		{"ambiguous", multiple, "", "select one by key"},
		{"wrong key", single, "note", "no coordinate system manager"},
		{"no manager", none, "", "contains no coordinate system manager"},
		{"missing file", filepath.Join(t.TempDir(), "missing.yaml"), "", "file not found"},
	}

	inspector := NewInspector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := inspector.LoadManager(tt.file, tt.key)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if m.NumberOfCoordinateSystems() != 4 {
				t.Errorf("Expected 4 systems, got %v", m.CoordinateSystemNames())
			}
		})
	}
}

func TestTree(t *testing.T) {
	tree := NewHierarchyPrinter().Tree(cell(t))

	if tree.Label != "base" || len(tree.Children) != 1 {
		t.Fatalf("Expected base with one child, got %+v", tree)
	}
	wp := tree.Children[0]
	if wp.Label != "wp" || len(wp.Children) != 2 {
		t.Fatalf("Expected wp with two children, got %+v", wp)
	}
	if wp.Children[0].Label != "tcp" || !strings.Contains(wp.Children[0].Detail, "time dependent") {
		t.Errorf("Expected time dependent tcp, got %+v", wp.Children[0])
	}
	if wp.Children[1].Label != "holder" || wp.Children[1].Detail != "" {
		t.Errorf("Expected static holder, got %+v", wp.Children[1])
	}
}

func TestTreeFollowsReversedEdges(t *testing.T) {
	m, err := csm.Import(csm.HierarchyData{
		RootSystemName: "base",
		CoordinateSystems: []csm.CoordinateTransformation{
			{Name: "world", ReferenceSystem: "base", Transformation: lcs.Identity()},
			{Name: "base", ReferenceSystem: "table", Transformation: lcs.Identity()},
		},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	tree := NewHierarchyPrinter().Tree(m)
	var labels []string
	for _, c := range tree.Children {
		labels = append(labels, c.Label)
	}
	if strings.Join(labels, ",") != "world,table" {
		t.Errorf("Expected children world,table, got %v", labels)
	}
	if tree.Children[1].Detail != "(parent)" {
		t.Errorf("Expected table to be marked as parent, got %q", tree.Children[1].Detail)
	}
}

func TestInspect(t *testing.T) {
	path := writeFile(t, map[string]any{TreeKey: cell(t), "comment": "setup"})
	out := captureOutput(t)

	if err := NewInspector().Inspect(path); err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Version: 1.0.0", "cell", "tcp", "tool (common: wp, 2 members)", "Origins in base", "10.0000, 5.0000, 0.0000", "setup", "2 entries, 1 coordinate system manager"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestInspectMixedTimeKinds(t *testing.T) {
	m := csm.New("base", csm.WithName("mixed"))
	relative, err := times.FromSeconds([]float64{0, 1}, nil)
	if err != nil {
		t.Fatalf("FromSeconds failed: %v", err)
	}
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	absolute, err := times.FromSeconds([]float64{0, 2}, &start)
	if err != nil {
		t.Fatalf("FromSeconds failed: %v", err)
	}
	if err := m.CreateCS("a", "base", []geometry.Mat3{geometry.Identity()}, []r3.Vec{{}, {X: 1}}, relative); err != nil {
		t.Fatalf("CreateCS failed: %v", err)
	}
	if err := m.CreateCS("b", "base", []geometry.Mat3{geometry.Identity()}, []r3.Vec{{}, {Y: 1}}, absolute); err != nil {
		t.Fatalf("CreateCS failed: %v", err)
	}

	path := writeFile(t, map[string]any{TreeKey: m})
	out := captureOutput(t)
	if err := NewInspector().Inspect(path); err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"time axes are mixed", "Origins in base", "1 entry, 1 coordinate system manager"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, text)
		}
	}
}
