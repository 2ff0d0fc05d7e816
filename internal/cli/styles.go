// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styles for the CLI commands.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/credguard/internal/guard"
	"github.com/jeranaias/credguard/internal/util"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for command titles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")). // Cyan
			MarginBottom(1)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(20)

	// ValueStyle is used for regular values
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Off-white

	// SuccessStyle is used for matches and OK statuses
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle is used for errors and locks
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for misses that did not lock
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Yellow/Orange

	// DimStyle is used for secondary information
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray

	// SeparatorStyle is used for visual separators
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray
)

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// RenderSeparator renders a horizontal rule of width characters (default 60).
func RenderSeparator(width ...int) string {
	w := 60
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return RenderConditional(SeparatorStyle, strings.Repeat("=", w))
}

// RenderLabel renders a label padded to the label column.
func RenderLabel(label string) string {
	if !ColorsEnabled() {
		return util.PadRight(label, 20)
	}
	return LabelStyle.Render(label)
}

// RenderConditional renders text with style if colors are enabled.
func RenderConditional(style lipgloss.Style, text string) string {
	if !ColorsEnabled() {
		return text
	}
	return style.Render(text)
}

// RenderOutcome renders the one-word verdict for an evaluation.
func RenderOutcome(res guard.Result) string {
	switch {
	case res.Matched:
		return RenderConditional(SuccessStyle, "MATCH")
	case res.Blocked:
		return RenderConditional(ErrorStyle, "BLOCKED")
	case res.Tripped != 0:
		return RenderConditional(ErrorStyle, "LOCKED")
	default:
		return RenderConditional(WarningStyle, "MISS")
	}
}

// RenderPips renders the remaining budget as filled and empty dots.
func RenderPips(remaining int) string {
	if remaining < 0 {
		remaining = 0
	}
	if remaining > guard.MaxAttempts {
		remaining = guard.MaxAttempts
	}
	filled := strings.Repeat("●", remaining)
	empty := strings.Repeat("○", guard.MaxAttempts-remaining)
	return RenderConditional(SuccessStyle, filled) + RenderConditional(DimStyle, empty)
}
