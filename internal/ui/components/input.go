// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/credguard/internal/ui/styles"
)

// =============================================================================
// SECRET INPUT COMPONENT - Masked single-line input
// =============================================================================

// DefaultCharLimit bounds how much a single guess may hold.
const DefaultCharLimit = 256

// MaskRune replaces every typed character on screen.
const MaskRune = '•'

// SecretInput is a masked text input. Typed characters are never rendered.
type SecretInput struct {
	input   textinput.Model
	width   int
	focused bool
	theme   *styles.Theme
}

// NewSecretInput creates a masked input styled with theme.
func NewSecretInput(theme *styles.Theme) *SecretInput {
	ti := textinput.New()
	ti.Placeholder = "enter secret"
	ti.CharLimit = DefaultCharLimit
	ti.Width = 40
	ti.Prompt = "> "
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = MaskRune

	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = theme.InputText
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Cursor.Style = theme.InputPrompt

	return &SecretInput{
		input: ti,
		width: 50,
		theme: theme,
	}
}

// Focus focuses the input
func (i *SecretInput) Focus() tea.Cmd {
	i.focused = true
	return i.input.Focus()
}

// Blur removes focus from the input
func (i *SecretInput) Blur() {
	i.focused = false
	i.input.Blur()
}

// Focused returns whether the input is focused
func (i *SecretInput) Focused() bool {
	return i.focused
}

// SetWidth sets the component width including its border.
func (i *SecretInput) SetWidth(width int) {
	i.width = width
	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	i.input.Width = inputWidth
}

// SetCharLimit sets the maximum number of characters accepted.
func (i *SecretInput) SetCharLimit(n int) {
	i.input.CharLimit = n
}

// Value returns the typed text.
func (i *SecretInput) Value() string {
	return i.input.Value()
}

// Reset clears the input
func (i *SecretInput) Reset() {
	i.input.Reset()
}

// Update handles input updates
func (i *SecretInput) Update(msg tea.Msg) (*SecretInput, tea.Cmd) {
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	return i, cmd
}

// View renders the bordered input.
func (i *SecretInput) View() string {
	container := i.theme.InputContainer
	if i.focused {
		container = i.theme.InputContainerFocus
	}
	return container.Width(i.width - 2).Render(i.input.View())
}
