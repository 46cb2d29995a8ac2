// Package output prints styled command-line messages.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Out receives everything this package prints.
var Out io.Writer = os.Stdout

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorAccent  = lipgloss.Color("#16A34A")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	sqlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3E635")).PaddingLeft(2)
)

func line(icon lipgloss.Style, mark, format string, args ...any) {
	fmt.Fprint(Out, icon.Render(mark+" "))
	fmt.Fprintf(Out, format+"\n", args...)
}

func Success(format string, args ...any) { line(successStyle, "✓", format, args...) }
func Warning(format string, args ...any) { line(warningStyle, "⚠", format, args...) }
func Error(format string, args ...any)   { line(errorStyle, "✗", format, args...) }
func Info(format string, args ...any)    { line(infoStyle, "ℹ", format, args...) }

// Muted prints a dimmed line.
func Muted(format string, args ...any) {
	fmt.Fprintln(Out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a header underlined to its own width.
func Section(title string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, headerStyle.Render(title))
	fmt.Fprintln(Out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
	fmt.Fprintln(Out)
}

// SQL prints statements indented, separated by blank lines.
func SQL(stmts []string) {
	for i, stmt := range stmts {
		if i > 0 {
			fmt.Fprintln(Out)
		}
		fmt.Fprintln(Out, sqlStyle.Render(stmt))
	}
}

// StatusIcon returns a colored icon for a migration status.
func StatusIcon(status string) string {
	switch status {
	case "applied":
		return successStyle.Render("✓")
	case "pending":
		return warningStyle.Render("○")
	case "failed":
		return errorStyle.Render("✗")
	case "stale":
		return warningStyle.Render("≠")
	default:
		return mutedStyle.Render("•")
	}
}
