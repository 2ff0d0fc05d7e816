// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// simulate_cmd.go - Run a scripted guess sequence against a fresh guard.
//
// Command: simulate <secret> <guess>...
//
// Flags:
//   --json      Output in JSON format
//   --events    Include the audit events the run would record
//   --mask      Hide guesses in the table
//
// Examples:
//   credguard simulate Secret Secrett Secrett Secret
//   credguard simulate --json Secret Secretttt Secret
//   credguard simulate -- Secret -ecret

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/credguard/internal/audit"
	"github.com/jeranaias/credguard/internal/guard"
	"github.com/jeranaias/credguard/internal/session"
	"github.com/jeranaias/credguard/internal/util"
)

const simulateUsage = "credguard simulate <secret> <guess>..."

// HandleSimulate handles the "simulate" command.
func HandleSimulate(args Args) error {
	p := NewArgParser(args.Raw, "json", "events", "mask")
	if p.PositionalCount() < 2 {
		return ErrMissingArgument("secret and at least one guess", simulateUsage)
	}

	data, err := Simulate(p.Positional(0), p.PositionalFrom(1), p.BoolFlag("events"))
	if err != nil {
		return err
	}
	if args.JSON || p.BoolFlag("json") {
		return NewJSONResponse("simulate", data).Print()
	}
	RenderSimulation(os.Stdout, data, p.BoolFlag("mask"))
	return nil
}

// Simulate runs guesses in order through a fresh session with an in-memory
// audit sink. Events are returned only when withEvents is set.
func Simulate(secret string, guesses []string, withEvents bool) (SimulateData, error) {
	sink := &audit.MemorySink{}
	s := session.New(secret, session.WithSink(sink), session.WithMetadata("source", "simulate"))

	data := SimulateData{Steps: make([]SimulateStep, 0, len(guesses))}
	ctx := context.Background()
	for i, g := range guesses {
		res, err := s.Attempt(ctx, g)
		if err != nil {
			return SimulateData{}, fmt.Errorf("attempt %d: %w", i+1, err)
		}
		data.Steps = append(data.Steps, SimulateStep{Index: i + 1, Guess: g, Result: res})
	}
	data.Final = s.State()
	data.SecretLength = util.RuneLen(util.TruncateRunesNoEllipsis(secret, guard.MaxSecretLength))

	if err := s.Close(); err != nil {
		return SimulateData{}, err
	}
	if withEvents {
		data.Events = sink.Events
	}
	return data, nil
}

// RenderSimulation writes the trajectory table.
func RenderSimulation(w io.Writer, d SimulateData, mask bool) {
	const maxGuessWidth = 24

	guessWidth := len("guess")
	for _, step := range d.Steps {
		shown := step.Guess
		if mask {
			shown = util.Mask(shown, '*')
		}
		guessWidth = max(guessWidth, util.StringWidth(fmt.Sprintf("%q", shown)))
	}
	guessWidth = min(guessWidth, maxGuessWidth)

	fmt.Fprintln(w, RenderConditional(TitleStyle, "Simulation"))
	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		util.PadRight("#", 3),
		util.PadRight("guess", guessWidth),
		util.PadRight("dist", 4),
		util.PadRight("left", 6),
		"outcome")
	fmt.Fprintln(w, RenderSeparator(3+2+guessWidth+2+4+2+6+2+10))

	for _, step := range d.Steps {
		shown := step.Guess
		if mask {
			shown = util.Mask(step.Guess, '*')
		}
		shown = util.TruncateWidth(fmt.Sprintf("%q", shown), guessWidth)

		outcome := RenderOutcome(step.Result)
		if step.Result.Tripped != 0 {
			outcome += RenderConditional(DimStyle, " ("+step.Result.Tripped.String()+")")
		}
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			util.PadRight(fmt.Sprint(step.Index), 3),
			util.PadRight(shown, guessWidth),
			util.PadRight(fmt.Sprint(step.Result.Distance), 4),
			RenderPips(step.Result.Remaining)+"   ",
			outcome)
	}

	fmt.Fprintln(w)
	final := d.Final.Status.String()
	if d.Final.Status == guard.Locked {
		final += " by " + d.Final.LockedBy.String()
	}
	fmt.Fprintf(w, "%s%s, %d remaining\n", RenderLabel("Final state"), final, d.Final.Remaining)
}
