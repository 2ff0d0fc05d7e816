// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI pieces of the credguard prompt.

SecretInput (input.go) - Bordered textinput in password echo mode.
Header (header.go) - Title bar with the remaining-attempts meter.

Components take a *styles.Theme and expose View() string. Interactive ones
follow the Bubble Tea Update(msg) pattern.
*/
package components
