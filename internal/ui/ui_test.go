package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatRow(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		ellipsis bool
		want     string
	}{
		{"pads", []string{"tcp"}, true, "tcp" + strings.Repeat(" ", 17)},
		{"truncates with ellipsis", []string{"a_very_long_system_name"}, true, "a_very_long_syste..."},
		{"truncates header", []string{"a_very_long_system_name"}, false, "a_very_long_system_n"},
		{"drops extra columns", []string{"a", "b", "c", "d", "e"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatRow(tt.columns, tt.ellipsis)
			if tt.want == "" {
				if n := strings.Count(got, "│"); n != len(tableWidths)-1 {
					t.Errorf("Expected %d separators, got %d in %q", len(tableWidths)-1, n, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPrintTree(t *testing.T) {
	var buf bytes.Buffer
	previous := Output
	Output = &buf
	defer func() { Output = previous }()

	PrintTree(TreeNode{Label: "base", Children: []TreeNode{
		{Label: "workpiece", Children: []TreeNode{{Label: "tcp", Detail: "(time dependent)"}}},
		{Label: "camera"},
	}})

	out := buf.String()
	for _, want := range []string{"base", "├─", "workpiece", "│  └─", "tcp", "(time dependent)", "camera"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Errorf("Expected 4 lines, got %d", lines)
	}
}
