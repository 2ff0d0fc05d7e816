// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the interactive credguard prompt as a Bubble Tea
// program.
//
// The prompt reads a masked guess, submits it to a session.Session from a
// tea.Cmd and shows the verdict with the remaining-attempt meter. Misses
// are reported uniformly; the lock is only announced once it happens.
//
//	m := ui.New(ctx, sess)
//	final, err := tea.NewProgram(m).Run()
//	granted := final.(ui.Model).Outcome() == ui.OutcomeGranted
package ui
