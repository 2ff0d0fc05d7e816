// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/credguard/internal/guard"
	"github.com/jeranaias/credguard/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT - Title bar with the remaining-attempts meter
// =============================================================================

// Header is the title bar of the prompt.
type Header struct {
	Title     string // Main title (default: "credguard")
	Remaining int    // Attempts left before the guard locks
	Width     int    // Available width
	theme     *styles.Theme
}

// NewHeader creates a header with a full attempt budget.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:     "credguard",
		Remaining: guard.MaxAttempts,
		Width:     50,
		theme:     theme,
	}
}

// SetRemaining updates the meter.
func (h *Header) SetRemaining(n int) {
	h.Remaining = n
}

// SetWidth sets the available width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the title on the left and the meter on the right.
func (h *Header) View() string {
	left := h.theme.HeaderTitle.Render(h.Title)
	right := h.theme.HeaderLabel.Render("attempts ") + h.Pips()

	gap := h.Width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return h.theme.Header.Render(left + strings.Repeat(" ", gap) + right)
}

// Pips renders one glyph per attempt in the budget: filled for the ones
// left and empty for the ones used. The last remaining pip is highlighted.
func (h *Header) Pips() string {
	remaining := h.Remaining
	if remaining < 0 {
		remaining = 0
	}
	if remaining > guard.MaxAttempts {
		remaining = guard.MaxAttempts
	}

	full := h.theme.PipFull
	if remaining == 1 {
		full = h.theme.PipLast
	}

	var b strings.Builder
	for i := 0; i < guard.MaxAttempts; i++ {
		if i < remaining {
			b.WriteString(full.Render(styles.PipFull))
		} else {
			b.WriteString(h.theme.PipEmpty.Render(styles.PipEmpty))
		}
	}
	return b.String()
}
