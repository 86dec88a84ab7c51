package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4") // Purple
	secondaryColor = lipgloss.Color("#00D9FF") // Cyan
	successColor   = lipgloss.Color("#04B575") // Green
	errorColor     = lipgloss.Color("#FF5F87") // Pink/Red
	warningColor   = lipgloss.Color("#FFAF00") // Orange
	mutedColor     = lipgloss.Color("#626262") // Gray
	accentColor    = lipgloss.Color("#FFD700") // Gold

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1).
			MarginBottom(1).
			PaddingLeft(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor).
			MarginTop(1).
			PaddingLeft(1)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	checkmark = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true).
			SetString("✓")

	cross = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true).
		SetString("✗")

	arrow = lipgloss.NewStyle().
		Foreground(secondaryColor).
		SetString("→")

	dot = lipgloss.NewStyle().
		Foreground(mutedColor).
		SetString("•")

	star = lipgloss.NewStyle().
		Foreground(accentColor).
		SetString("★")

	stepStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(lipgloss.Color("#FAFAFA"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)
)

// Output is where all messages are written
var Output io.Writer = os.Stdout

var verbose bool

// SetVerbose enables or disables detailed output
func SetVerbose(v bool) {
	verbose = v
}

// IsVerbose checks if verbose output is enabled, either by flag or by a CI environment
func IsVerbose() bool {
	return verbose || os.Getenv("CI") != ""
}

func write(s string) {
	fmt.Fprintln(Output, s)
}

// PrintTitle prints a major title (for app name or major sections)
func PrintTitle(title string) {
	write(titleStyle.Render("╭─ " + title + " ─╮"))
}

// PrintHeader prints a section header
func PrintHeader(title string) {
	write(headerStyle.Render("\n▸ " + title))
}

// PrintStep prints a step with indentation
func PrintStep(step string) {
	write(stepStyle.Render(arrow.String() + " " + step))
}

// PrintItem prints an item in a list
func PrintItem(item string) {
	write(itemStyle.Render(dot.String() + " " + item))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	write(stepStyle.Render(checkmark.String() + " " + successStyle.Render(message)))
}

// PrintError prints an error message
func PrintError(message string) {
	write(stepStyle.Render(cross.String() + " " + errorStyle.Render(message)))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	write(stepStyle.Render("⚠ " + warningStyle.Render(message)))
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	write(stepStyle.Render(infoStyle.Render(message)))
}

// PrintHighlight prints highlighted text
func PrintHighlight(message string) {
	write(stepStyle.Render(star.String() + " " + highlightStyle.Render(message)))
}

// PrintBox prints text in a rounded box
func PrintBox(content string) {
	write(boxStyle.Render(content))
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	write(infoStyle.Render("─────────────────────────────────────────────"))
}

// PrintKeyValue prints a key-value pair with nice formatting
func PrintKeyValue(key, value string) {
	write(stepStyle.Render(keyStyle.Render(key+":") + " " + value))
}

// TreeNode is one entry of a printed tree
type TreeNode struct {
	Label    string
	Detail   string
	Children []TreeNode
}

// PrintTree prints a tree with box-drawing branches
func PrintTree(root TreeNode) {
	write(stepStyle.Render(highlightStyle.Render(root.Label) + detail(root.Detail)))
	printBranches(root.Children, "")
}

func printBranches(nodes []TreeNode, prefix string) {
	for i, n := range nodes {
		branch, indent := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, indent = "└─ ", "   "
		}
		write(stepStyle.Render(infoStyle.Render(prefix+branch) + n.Label + detail(n.Detail)))
		printBranches(n.Children, prefix+indent)
	}
}

func detail(s string) string {
	if s == "" {
		return ""
	}
	return " " + infoStyle.Render(s)
}

// Column widths of tables: system, reference, kind, origin
var tableWidths = []int{20, 20, 14, 36}

// PrintTableRow prints a formatted table row with columns
func PrintTableRow(columns ...string) {
	write(stepStyle.Render(formatRow(columns, true)))
}

// PrintTableHeader prints a table header
func PrintTableHeader(headers ...string) {
	write(stepStyle.Render(keyStyle.Render(formatRow(headers, false))))

	// Print separator line
	var parts []string
	for i := range headers {
		if i >= len(tableWidths) {
			break
		}
		parts = append(parts, strings.Repeat("─", tableWidths[i]))
	}
	write(stepStyle.Render(infoStyle.Render(strings.Join(parts, "─┼─"))))
}

func formatRow(columns []string, ellipsis bool) string {
	var cells []string
	for i, col := range columns {
		if i >= len(tableWidths) {
			break
		}
		w := tableWidths[i]

		// Truncate or pad the column
		switch {
		case len(col) > w && ellipsis:
			col = col[:w-3] + "..."
		case len(col) > w:
			col = col[:w]
		default:
			col += strings.Repeat(" ", w-len(col))
		}
		cells = append(cells, col)
	}
	return strings.Join(cells, " │ ")
}
