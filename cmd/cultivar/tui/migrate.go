// Package tui is the interactive schema migration screen.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marshallshelly/cultivar/pkg/migration"
)

// Runner applies and reverts a migration. *migration.Executor satisfies it.
type Runner interface {
	Status(ctx context.Context, m migration.Migration) (migration.MigrationRecord, error)
	Apply(ctx context.Context, m migration.Migration) (bool, error)
	Rollback(ctx context.Context, m migration.Migration) (bool, error)
}

// Direction selects which half of a migration runs.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

type mode int

const (
	modeLoading mode = iota
	modePreview
	modeConfirm
	modeRunning
	modeDone
	modeError
)

type statusMsg struct {
	record migration.MigrationRecord
}

type ranMsg struct {
	changed bool
	err     error
}

type errMsg struct {
	err error
}

// Model previews a migration's statements, asks for confirmation and runs it.
type Model struct {
	ctx       context.Context
	runner    Runner
	migration migration.Migration
	direction Direction

	mode    mode
	record  migration.MigrationRecord
	sql     viewport.Model
	spinner spinner.Model
	dialog  confirmDialog
	changed bool
	err     error
	width   int
}

// NewModel builds the screen for running m in direction.
func NewModel(ctx context.Context, runner Runner, m migration.Migration, direction Direction) Model {
	stmts := m.Up
	if direction == Down {
		stmts = m.Down
	}
	vp := viewport.New(80, 16)
	vp.Style = sqlBoxStyle
	vp.SetContent(strings.Join(stmts, "\n\n"))

	return Model{
		ctx:       ctx,
		runner:    runner,
		migration: m,
		direction: direction,
		sql:       vp,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Err is the failure that ended the session, if any.
func (m Model) Err() error { return m.err }

// Changed reports whether the database schema was modified.
func (m Model) Changed() bool { return m.changed }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatus, m.spinner.Tick)
}

func (m Model) loadStatus() tea.Msg {
	record, err := m.runner.Status(m.ctx, m.migration)
	if err != nil {
		return errMsg{err: fmt.Errorf("failed to read migration status: %w", err)}
	}
	return statusMsg{record: record}
}

func (m Model) run() tea.Msg {
	var (
		changed bool
		err     error
	)
	if m.direction == Up {
		changed, err = m.runner.Apply(m.ctx, m.migration)
	} else {
		changed, err = m.runner.Rollback(m.ctx, m.migration)
	}
	return ranMsg{changed: changed, err: err}
}

// nothingToDo reports whether the recorded status already matches direction.
func (m Model) nothingToDo() bool {
	if m.direction == Up {
		return m.record.Status == migration.StatusApplied
	}
	return m.record.Status == migration.StatusPending
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.sql.Width = max(msg.Width-4, 20)
		m.sql.Height = max(msg.Height-12, 5)
		return m, nil

	case statusMsg:
		m.record = msg.record
		if m.nothingToDo() {
			m.mode = modeDone
			return m, nil
		}
		m.mode = modePreview
		return m, nil

	case ranMsg:
		if msg.err != nil {
			m.mode = modeError
			m.err = msg.err
			return m, nil
		}
		m.changed = msg.changed
		m.mode = modeDone
		return m, nil

	case errMsg:
		m.mode = modeError
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.mode != modeLoading && m.mode != modeRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modePreview:
			switch msg.String() {
			case "q", "esc":
				return m, tea.Quit
			case "enter":
				m.dialog = newConfirmDialog(
					fmt.Sprintf("Migrate %s", m.direction),
					fmt.Sprintf("Run %d statement(s) of %s - %s?", len(m.statements()), m.migration.Version, m.migration.Name),
				)
				m.mode = modeConfirm
				return m, nil
			}
			var cmd tea.Cmd
			m.sql, cmd = m.sql.Update(msg)
			return m, cmd

		case modeConfirm:
			switch m.dialog.update(msg) {
			case confirmed:
				m.mode = modeRunning
				return m, tea.Batch(m.run, m.spinner.Tick)
			case cancelled:
				m.mode = modePreview
			}
			return m, nil

		case modeDone, modeError:
			switch msg.String() {
			case "q", "enter", "esc":
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

func (m Model) statements() []string {
	if m.direction == Down {
		return m.migration.Down
	}
	return m.migration.Up
}

func (m Model) View() string {
	header := titleStyle.Render(fmt.Sprintf("Migration %s - %s", m.migration.Version, m.migration.Name))

	switch m.mode {
	case modeLoading:
		return header + "\n" + m.spinner.View() + " reading migration status..."

	case modePreview:
		status := formatStatus(string(m.record.Status), m.record.Stale(m.migration))
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			"Status: "+status,
			"",
			m.sql.View(),
			formatKeys("↑/↓", "scroll", "enter", "migrate "+string(m.direction), "q", "quit"),
		)

	case modeConfirm:
		return header + "\n" + m.dialog.view()

	case modeRunning:
		return header + "\n" + m.spinner.View() + fmt.Sprintf(" migrating %s...", m.direction)

	case modeDone:
		var msg string
		switch {
		case m.changed:
			msg = successStyle.Render(fmt.Sprintf("Migrated %s %s", m.direction, m.migration.Version))
		case m.direction == Up:
			msg = mutedStyle.Render("Schema already applied, nothing to do")
		default:
			msg = mutedStyle.Render("Schema not applied, nothing to roll back")
		}
		return boxStyle.Render(header + "\n" + msg + "\n" + formatKeys("enter/q", "exit"))

	case modeError:
		return boxStyle.Render(header + "\n" + dangerStyle.Render(m.err.Error()) + "\n" + formatKeys("enter/q", "exit"))
	}

	return ""
}

// Run shows the screen until the user exits and returns the final model.
func Run(ctx context.Context, runner Runner, m migration.Migration, direction Direction) (Model, error) {
	p := tea.NewProgram(NewModel(ctx, runner, m, direction), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
