package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type choice int

const (
	undecided choice = iota
	confirmed
	cancelled
)

// confirmDialog is a yes/no prompt. No is preselected.
type confirmDialog struct {
	title   string
	message string
	yes     bool
}

func newConfirmDialog(title, message string) confirmDialog {
	return confirmDialog{title: title, message: message}
}

func (d *confirmDialog) update(msg tea.KeyMsg) choice {
	switch msg.String() {
	case "left", "h":
		d.yes = true
	case "right", "l":
		d.yes = false
	case "y":
		return confirmed
	case "n", "esc":
		return cancelled
	case "enter":
		if d.yes {
			return confirmed
		}
		return cancelled
	}
	return undecided
}

func (d confirmDialog) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.title))
	b.WriteString("\n")
	b.WriteString(d.message)
	b.WriteString("\n\n")

	yes, no := inactiveButtonStyle.Render("Yes"), activeButtonStyle.Render("No")
	if d.yes {
		yes, no = activeButtonStyle.Render("Yes"), inactiveButtonStyle.Render("No")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yes, "  ", no))
	b.WriteString("\n")
	b.WriteString(formatKeys("←/→", "choose", "enter", "confirm", "esc", "cancel"))

	return boxStyle.Render(b.String())
}
