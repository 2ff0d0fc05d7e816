// credguard - A single-credential guard with a three-strike budget.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/credguard/internal/cli"
	"github.com/jeranaias/credguard/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdCheck:
		err = cli.HandleCheck(args)
	case cli.CmdScore:
		err = cli.HandleScore(args)
	case cli.CmdSimulate:
		err = cli.HandleSimulate(args)
	case cli.CmdAudit:
		err = cli.HandleAudit(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		err = cli.HandleVersion(args)
	case cli.CmdHelp:
		err = cli.HandleHelp(args)
	default:
		err = cli.HandleUnknown(args)
	}

	if err == nil {
		return
	}
	if cli.IsSilent(err) {
		os.Exit(cli.GetExitCode(err))
	}
	cli.HandleErrorAndExit(err, args.JSON)
}

// runTUI runs the interactive prompt. It returns nil only when a guess matched.
func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("run the prompt"); err != nil {
		return err
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}
	s, err := cli.NewSession(cfg, "tui")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	final, runErr := tea.NewProgram(ui.New(ctx, s)).Run()

	if closeErr := s.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	if auditErr := s.LastAuditError(); auditErr != nil {
		fmt.Fprintf(os.Stderr, "warning: audit: %v\n", auditErr)
	}
	if runErr != nil {
		return cli.NewCommandError("tui", "run", "prompt failed", runErr)
	}

	m, ok := final.(ui.Model)
	if !ok {
		return cli.NewCommandError("tui", "run", "unexpected program state", nil)
	}
	switch m.Outcome() {
	case ui.OutcomeGranted:
		return nil
	case ui.OutcomeLocked:
		return &cli.DeniedError{Locked: true}
	default:
		return &cli.DeniedError{Remaining: s.Remaining()}
	}
}
