// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/credguard/internal/guard"
	"github.com/jeranaias/credguard/internal/session"
)

// AttemptResultMsg carries the outcome of one submitted guess.
type AttemptResultMsg struct {
	Result guard.Result
	Err    error
}

// attemptCmd runs the guess through the session off the update loop, since
// the session may wait on its rate limiter.
func attemptCmd(ctx context.Context, s *session.Session, guess string) tea.Cmd {
	return func() tea.Msg {
		res, err := s.Attempt(ctx, guess)
		return AttemptResultMsg{Result: res, Err: err}
	}
}
