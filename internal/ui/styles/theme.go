// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the prompt.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderLabel lipgloss.Style

	// ==========================================================================
	// ATTEMPT METER
	// ==========================================================================

	PipFull  lipgloss.Style
	PipLast  lipgloss.Style
	PipEmpty lipgloss.Style

	// ==========================================================================
	// INPUT STYLES
	// ==========================================================================

	InputContainer      lipgloss.Style
	InputContainerFocus lipgloss.Style
	InputPrompt         lipgloss.Style
	InputText           lipgloss.Style
	InputPlaceholder    lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	Hint          lipgloss.Style
}

// Status identifies which status style to use.
type Status int

const (
	StatusNone Status = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.HeaderLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.PipFull = lipgloss.NewStyle().Foreground(Emerald)
	t.PipLast = lipgloss.NewStyle().Foreground(Amber)
	t.PipEmpty = lipgloss.NewStyle().Foreground(Overlay)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputContainerFocus = t.InputContainer.
		BorderForeground(FocusRing)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.InputText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.StatusSuccess = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusWarning = lipgloss.NewStyle().Foreground(Amber)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)
}

// GetStatusStyle returns the style for a status line.
func (t *Theme) GetStatusStyle(s Status) lipgloss.Style {
	switch s {
	case StatusSuccess:
		return t.StatusSuccess
	case StatusWarning:
		return t.StatusWarning
	case StatusError:
		return t.StatusError
	default:
		return t.Hint
	}
}

// StatusIndicator returns the ASCII marker for s, or "" for StatusNone.
func StatusIndicator(s Status) string {
	switch s {
	case StatusSuccess:
		return StatusIndicators.Success
	case StatusWarning:
		return StatusIndicators.Warning
	case StatusError:
		return StatusIndicators.Error
	default:
		return ""
	}
}
