// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the command handlers for
// credguard.
//
// # Key Types
//
//   - Command: enumeration of the CLI commands
//   - Args: parsed global flags and the command's own arguments
//   - ArgParser: flag/positional splitter used by each handler
//   - JSONResponse: the envelope printed by --json
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdScore:
//	    err = cli.HandleScore(args)
//	case cli.CmdCheck:
//	    err = cli.HandleCheck(args)
//	// ... other commands
//	}
//	cli.HandleErrorAndExit(err, args.JSON)
//
// # Commands Overview
//
//   - tui: interactive prompt (default)
//   - check: line-mode prompt with exit codes for scripts
//   - score: distance breakdown for one guess
//   - simulate: scripted guess sequence on a fresh guard
//   - audit: recent audit events
//   - config: show, get, path, init
//
// All commands support --json.
package cli
