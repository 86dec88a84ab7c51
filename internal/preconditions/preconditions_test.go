package preconditions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "cell.yaml")
	ymlFile := filepath.Join(dir, "robot.YML")
	textFile := filepath.Join(dir, "notes.txt")
	for _, f := range []string{yamlFile, ymlFile, textFile} {
		if err := os.WriteFile(f, []byte("root: base\n"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", f, err)
		}
	}

	tests := []struct {
		name    string
		paths   []string
		wantErr string
	}{
		{"yaml files", []string{yamlFile, ymlFile}, ""},
		{"no files", nil, "no input files"},
		{"missing", []string{filepath.Join(dir, "missing.yaml")}, "cannot access"},
		{"directory", []string{dir}, "is a directory"},
		{"wrong extension", []string{textFile}, "not a supported file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFiles(tt.paths, DefinitionExtensions...)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"new file", filepath.Join(dir, "out.yaml"), false},
		{"empty", "", true},
		{"directory", dir, true},
		{"missing directory", filepath.Join(dir, "nope", "out.yaml"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
