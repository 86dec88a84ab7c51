package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philipparndt/goweldx/internal/csm"
	"github.com/philipparndt/goweldx/internal/lcs"
	"github.com/philipparndt/goweldx/internal/models"
)

// writeDefinition writes a definition file into a temporary directory
func writeDefinition(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// TestValidate tests the validation rules of a definition
func TestValidate(t *testing.T) {
	identity := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	tests := []struct {
		name    string
		def     models.Definition
		wantErr string
	}{
		{
			name: "valid",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a", Parent: "base", Coordinates: models.Series{{1, 2, 3}}},
			}},
		},
		{
			name:    "missing root",
			def:     models.Definition{},
			wantErr: "root system must be specified",
		},
		{
			name:    "bad time unit",
			def:     models.Definition{Root: "base", TimeUnit: "h"},
			wantErr: "time_unit",
		},
		{
			name: "missing name",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Parent: "base"},
			}},
			wantErr: "system 0: name is required",
		},
		{
			name: "missing parent",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a"},
			}},
			wantErr: "parent is required",
		},
		{
			name: "own parent",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a", Parent: "a"},
			}},
			wantErr: "own parent",
		},
		{
			name: "duplicate",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a", Parent: "base"},
				{Name: "a", Parent: "base"},
			}},
			wantErr: "already used",
		},
		{
			name: "redefined root",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "base", Parent: "world"},
			}},
			wantErr: "already used",
		},
		{
			name: "euler and orientation",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a", Parent: "base", Orientation: identity, Euler: &models.EulerDef{Sequence: "x", Angles: models.Series{{1}}}},
			}},
			wantErr: "not both",
		},
		{
			name: "short orientation",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a", Parent: "base", Orientation: identity[:2]},
			}},
			wantErr: "3 rows",
		},
		{
			name: "angle count",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a", Parent: "base", Euler: &models.EulerDef{Sequence: "xyz", Angles: models.Series{{1, 2}}}},
			}},
			wantErr: "needs 3 angles",
		},
		{
			name: "coordinates size",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a", Parent: "base", Coordinates: models.Series{{1, 2}}},
			}},
			wantErr: "3 values",
		},
		{
			name: "series without time",
			def: models.Definition{Root: "base", Systems: []models.SystemDef{
				{Name: "a", Parent: "base", Coordinates: models.Series{{1, 2, 3}, {4, 5, 6}}},
			}},
			wantErr: "time is required",
		},
		{
			name: "missing subsystem file",
			def: models.Definition{Root: "base", Subsystems: []models.SubsystemImport{
				{File: "does-not-exist.yaml"},
			}},
			wantErr: "file not found",
		},
	}

	loader := NewLoader(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loader.Validate(&tt.def, filepath.Join(t.TempDir(), "def.yaml"))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadResolvesSubsystemPaths tests that subsystem files are resolved relative to the definition
func TestLoadResolvesSubsystemPaths(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "sub.yaml", "root: base\n")
	path := writeDefinition(t, dir, "main.yaml", "root: base\nsubsystems:\n  - file: sub.yaml\n")

	def, err := NewLoader(nil).Load(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	want := filepath.Join(dir, "sub.yaml")
	if def.Subsystems[0].File != want {
		t.Errorf("Expected subsystem path %s, got %s", want, def.Subsystems[0].File)
	}
}

// TestBuild tests the conversion of a definition into a manager
func TestBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinition(t, dir, "cell.yaml", `
name: cell
root: base
time_unit: ms
systems:
  - name: tcp
    parent: wp
    coordinates: [[0, 0, 0], [10, 0, 0]]
    time: [0, 500]
  - name: wp
    parent: base
    coordinates: [1, 2, 3]
    euler: {sequence: z, angles: [90], degrees: true}
`)

	loader := NewLoader(nil)
	def, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	m, err := loader.Build(def)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}

	if m.Name() != "cell" {
		t.Errorf("Expected name cell, got %s", m.Name())
	}
	if got := m.NumberOfCoordinateSystems(); got != 3 {
		t.Fatalf("Expected 3 systems, got %d", got)
	}

	wp, err := m.GetCS("wp", "base")
	if err != nil {
		t.Fatalf("GetCS failed: %v", err)
	}
	if o := wp.Orientation(0); math.Abs(o[1][0]-1) > 1e-9 {
		t.Errorf("Expected 90 degree rotation about z, got %v", o)
	}

	tcp, err := m.GetCS("tcp", "wp")
	if err != nil {
		t.Fatalf("GetCS failed: %v", err)
	}
	if !tcp.IsTimeDependent() {
		t.Fatalf("Expected tcp to be time dependent")
	}
	if s := tcp.Time().Seconds(); s[1] != 0.5 {
		t.Errorf("Expected milliseconds to be converted, got %v", s)
	}
}

// TestBuildErrors tests that invalid hierarchies are reported
func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "unknown parent",
			content: "root: base\nsystems:\n  - name: a\n    parent: nowhere\n",
			want:    csm.ErrIncompleteHierarchy,
		},
		{
			name:    "cycle",
			content: "root: base\nsystems:\n  - name: a\n    parent: b\n  - name: b\n    parent: a\n",
			want:    csm.ErrDuplicateSystem,
		},
		{
			name:    "not orthogonal",
			content: "root: base\nsystems:\n  - name: a\n    parent: base\n    orientation: [[1, 2, 3], [4, 5, 6], [7, 8, 9]]\n",
			want:    lcs.ErrNotOrthogonal,
		},
	}

	loader := NewLoader(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDefinition(t, t.TempDir(), "def.yaml", tt.content)
			def, err := loader.Load(path)
			if err != nil {
				t.Fatalf("Failed to load: %v", err)
			}
			if _, err := loader.Build(def); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestLoadManagerRejectsRecursiveSubsystems tests that a file cannot include itself
func TestLoadManagerRejectsRecursiveSubsystems(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinition(t, dir, "self.yaml", "root: base\nsubsystems:\n  - file: self.yaml\n")

	_, err := NewLoader(nil).LoadManager(path)
	if err == nil || !strings.Contains(err.Error(), "includes itself") {
		t.Errorf("Expected recursion error, got %v", err)
	}
}
