// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// score_cmd.go - Explain how a single guess is scored.
//
// Command: score <secret> <guess>
//
// Examples:
//   credguard score Secret Secrett
//   credguard score --json Secret secret
//   credguard score -- Secret -ecret

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/credguard/internal/guard"
	"github.com/jeranaias/credguard/internal/util"
)

const scoreUsage = "credguard score <secret> <guess>"

// HandleScore handles the "score" command.
func HandleScore(args Args) error {
	p := NewArgParser(args.Raw, "json")
	if p.PositionalCount() != 2 {
		return ErrMissingArgument("secret and guess", scoreUsage)
	}

	data := Score(p.Positional(0), p.Positional(1))
	if args.JSON || p.BoolFlag("json") {
		return NewJSONResponse("score", data).Print()
	}
	RenderScore(os.Stdout, data)
	return nil
}

// Score computes the score report for guess against secret as a fresh
// guard would see it.
func Score(secret, guess string) ScoreData {
	kept := util.TruncateRunesNoEllipsis(secret, guard.MaxSecretLength)
	b := guard.Explain(kept, guess)
	return ScoreData{
		Breakdown:     b,
		Threshold:     guard.DistanceThreshold,
		WouldLock:     guess != kept && b.Distance > guard.DistanceThreshold,
		Exact:         guess == kept,
		SecretTrimmed: kept != secret,
	}
}

// RenderScore writes a human-readable score report.
func RenderScore(w io.Writer, d ScoreData) {
	fmt.Fprintln(w, RenderConditional(TitleStyle, "Distance breakdown"))
	fmt.Fprintf(w, "%s%d\n", RenderLabel("Compared chars"), d.Overlap)
	fmt.Fprintf(w, "%s%d\n", RenderLabel("Mismatches"), d.Mismatches)
	fmt.Fprintf(w, "%s%d\n", RenderLabel("Length gap"), d.LengthGap)
	if d.Capped() {
		fmt.Fprintf(w, "%s%d (capped at %d)\n", RenderLabel("Distance"), d.Distance, d.Cap)
	} else {
		fmt.Fprintf(w, "%s%d\n", RenderLabel("Distance"), d.Distance)
	}
	if d.SecretTrimmed {
		fmt.Fprintln(w, RenderConditional(DimStyle, fmt.Sprintf("secret trimmed to %d characters", guard.MaxSecretLength)))
	}
	fmt.Fprintln(w, RenderSeparator(40))

	switch {
	case d.Exact:
		fmt.Fprintln(w, RenderConditional(SuccessStyle, "exact match"))
	case d.WouldLock:
		fmt.Fprintf(w, "%s distance %d > %d\n", RenderConditional(ErrorStyle, "would lock:"), d.Distance, d.Threshold)
	default:
		fmt.Fprintf(w, "%s costs one attempt\n", RenderConditional(WarningStyle, "near miss:"))
	}
}
