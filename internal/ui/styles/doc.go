// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the color palette and theme for the credguard TUI.

# Color System (colors.go)

All colors are Lip Gloss AdaptiveColor values:

	Cyan    - Brand color, prompt, focus ring
	Emerald - Access granted, filled pips
	Amber   - Incorrect guess, the last remaining pip
	Rose    - Locked guard

# Theme System (theme.go)

	theme := styles.NewTheme()
	line := theme.GetStatusStyle(styles.StatusError).Render("locked")
*/
package styles
