package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10"))

	helpCommandStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("14"))

	helpCommentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8")).
				Italic(true)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

type helpExample struct {
	section  string
	commands []string
}

type helpEntry struct {
	name string
	desc string
}

// renderHelp renders examples followed by an aligned list of entries
func renderHelp(examples []helpExample, listTitle string, entries []helpEntry) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(helpTitleStyle.Render("Examples"))
	b.WriteString("\n\n")

	for _, ex := range examples {
		b.WriteString(helpSectionStyle.Render(ex.section))
		b.WriteString("\n")
		for i, c := range ex.commands {
			indent := "  "
			if i > 0 {
				indent = "    "
			}
			b.WriteString(indent + helpCommandStyle.Render(c))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(entries) == 0 {
		return b.String()
	}

	b.WriteString(helpSectionStyle.Render(listTitle))
	b.WriteString("\n")

	// Calculate max name width for alignment
	maxWidth := 0
	for _, e := range entries {
		if len(e.name) > maxWidth {
			maxWidth = len(e.name)
		}
	}
	for _, e := range entries {
		padding := strings.Repeat(" ", maxWidth-len(e.name)+2)
		b.WriteString("  " + helpFlagStyle.Render(e.name) + padding + helpCommentStyle.Render(e.desc))
		b.WriteString("\n")
	}
	return b.String()
}

// renderBuildHelp renders the help text for the build command
func renderBuildHelp() string {
	return renderHelp(
		[]helpExample{
			{"Build next to the definition (welding-cell.csm.yaml)", []string{"goweldx build welding-cell.yaml"}},
			{"Choose the output file", []string{"goweldx build welding-cell.yaml -o cell.yaml"}},
			{"Show every step and debug diagnostics", []string{"goweldx -v build welding-cell.yaml"}},
		},
		"Definition keys:",
		[]helpEntry{
			{"name", "Name of the hierarchy (used as subsystem name when merged)"},
			{"root", "Root coordinate system (required)"},
			{"time_unit", "Unit of time lists: s (default) or ms"},
			{"reference_time", "Optional absolute start time (RFC 3339)"},
			{"systems", "List of name, parent, coordinates, euler or orientation, time"},
			{"subsystems", "Definition files merged into this one"},
		},
	)
}

// renderTransformHelp renders the help text for the transform command
func renderTransformHelp() string {
	return renderHelp(
		[]helpExample{
			{"Express a point of the torch tip in the workpiece", []string{
				"goweldx transform cell.csm.yaml --from torch_tip --to workpiece 0,0,0",
			}},
			{"Negative values follow --", []string{
				"goweldx transform cell.csm.yaml --from tcp --to base -- \\",
				"-5,0,2 5,0,2 0,0,0",
			}},
		},
		"",
		nil,
	)
}
