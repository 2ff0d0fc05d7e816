// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/credguard/internal/guard"
	"github.com/jeranaias/credguard/internal/session"
	"github.com/jeranaias/credguard/internal/ui/components"
	"github.com/jeranaias/credguard/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Outcome is how the prompt ended.
type Outcome int

const (
	OutcomePending Outcome = iota // still prompting, or quit before a verdict
	OutcomeGranted
	OutcomeLocked
)

// Model is the Bubble Tea model for the interactive prompt.
type Model struct {
	ctx     context.Context
	session *session.Session
	theme   *styles.Theme

	header  *components.Header
	input   *components.SecretInput
	spinner spinner.Model

	status     string
	statusKind styles.Status
	pending    bool
	outcome    Outcome
	err        error

	width int
}

// New creates a prompt bound to s. ctx bounds every attempt.
func New(ctx context.Context, s *session.Session) Model {
	theme := styles.NewTheme()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Hint

	m := Model{
		ctx:     ctx,
		session: s,
		theme:   theme,
		header:  components.NewHeader(theme),
		input:   components.NewSecretInput(theme),
		spinner: sp,
		width:   50,
	}
	m.header.SetRemaining(s.Remaining())
	m.input.Focus()

	if s.Locked() {
		m.lock()
	}
	return m
}

// Outcome reports how the prompt ended.
func (m Model) Outcome() Outcome {
	return m.outcome
}

// Err returns the last error returned by the session, if any.
func (m Model) Err() error {
	return m.err
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width, 72)
		m.header.SetWidth(m.width)
		m.input.SetWidth(m.width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case AttemptResultMsg:
		return m.handleResult(msg)

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		if m.pending || m.outcome != OutcomePending {
			return m, nil
		}
		guess := m.input.Value()
		m.input.Reset()
		m.pending = true
		m.status = ""
		return m, tea.Batch(attemptCmd(m.ctx, m.session, guess), m.spinner.Tick)
	}

	if m.pending || m.outcome != OutcomePending {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResult(msg AttemptResultMsg) (tea.Model, tea.Cmd) {
	m.pending = false
	m.header.SetRemaining(m.session.Remaining())

	if msg.Err != nil {
		m.err = msg.Err
		m.setStatus(styles.StatusError, fmt.Sprintf("error: %v", msg.Err))
		return m, nil
	}

	res := msg.Result
	switch {
	case res.Matched:
		m.outcome = OutcomeGranted
		m.input.Blur()
		m.setStatus(styles.StatusSuccess, "access granted")
		return m, tea.Quit
	case res.Status == guard.Locked:
		m.lock()
	default:
		// A miss reads the same whatever its distance.
		m.setStatus(styles.StatusWarning, fmt.Sprintf("incorrect, %d attempt(s) left", res.Remaining))
	}
	return m, nil
}

func (m *Model) lock() {
	m.outcome = OutcomeLocked
	m.input.Blur()
	m.header.SetRemaining(0)
	m.setStatus(styles.StatusError, "locked")
}

func (m *Model) setStatus(kind styles.Status, text string) {
	m.statusKind = kind
	m.status = text
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the prompt.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.pending:
		b.WriteString(m.spinner.View() + m.theme.Hint.Render(" checking"))
	case m.status != "":
		line := m.status
		if ind := styles.StatusIndicator(m.statusKind); ind != "" {
			line = ind + " " + line
		}
		b.WriteString(m.theme.GetStatusStyle(m.statusKind).Render(line))
	}
	b.WriteString("\n")

	hint := "enter submit • esc quit"
	if m.outcome != OutcomePending {
		hint = "esc quit"
	}
	b.WriteString(lipgloss.NewStyle().Width(m.width).Render(m.theme.Hint.Render(hint)))
	b.WriteString("\n")
	return b.String()
}
