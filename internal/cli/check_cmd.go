// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// check_cmd.go - Line-mode guard prompt.
//
// Command: check
//
// Reads guesses without echo on a terminal, or one per line from a pipe,
// until a guess matches, the guard locks, or input ends.
//
// Exit codes:
//   0  a guess matched
//   4  input ended without a match
//   5  the guard is locked
//
// Examples:
//   CREDGUARD_SECRET=hunter2 credguard check
//   printf 'hunter1\nhunter2\n' | credguard check --json

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/credguard/internal/guard"
	"github.com/jeranaias/credguard/internal/session"
)

// =============================================================================
// GUESS INPUT
// =============================================================================

// GuessReader supplies guesses to the check loop. It returns io.EOF when
// there are no more.
type GuessReader interface {
	ReadGuess(prompt string) (string, error)
	Close() error
}

// linerReader reads guesses from the terminal without echo.
type linerReader struct {
	line *liner.State
}

func newLinerReader() *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &linerReader{line: line}
}

func (r *linerReader) ReadGuess(prompt string) (string, error) {
	guess, err := r.line.PasswordPrompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	return guess, err
}

func (r *linerReader) Close() error {
	return r.line.Close()
}

// lineReader reads one guess per line. A trailing "\r" is dropped. Lines
// have no length limit.
type lineReader struct {
	br *bufio.Reader
}

// NewLineReader reads guesses line by line from r.
func NewLineReader(r io.Reader) GuessReader {
	return &lineReader{br: bufio.NewReader(r)}
}

func (r *lineReader) ReadGuess(string) (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func (r *lineReader) Close() error { return nil }

// =============================================================================
// COMMAND
// =============================================================================

// HandleCheck handles the "check" command.
func HandleCheck(args Args) error {
	p := NewArgParser(args.Raw, "json")
	jsonMode := args.JSON || p.BoolFlag("json")

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	s, err := NewSession(cfg, "check")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reader GuessReader
	if IsTTY() {
		reader = newLinerReader()
	} else {
		reader = NewLineReader(os.Stdin)
	}

	// Prompts and verdicts go to stderr so --json output stays clean.
	data, runErr := RunCheck(ctx, s, reader, os.Stderr, args.Quiet || !IsTTY())
	reader.Close()

	if closeErr := s.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	if auditErr := s.LastAuditError(); auditErr != nil {
		fmt.Fprintf(os.Stderr, "%s audit: %v\n", RenderConditional(WarningStyle, "[WARN]"), auditErr)
	}

	if jsonMode {
		if runErr != nil {
			DisplayErrorJSON(runErr)
			return &silentError{runErr}
		}
		return NewJSONResponse("check", data).Print()
	}
	return runErr
}

// RunCheck reads guesses from r until one matches, the guard locks, or r
// is exhausted. It returns a *DeniedError when no guess matched.
func RunCheck(ctx context.Context, s *session.Session, r GuessReader, out io.Writer, quiet bool) (CheckData, error) {
	data := CheckData{SessionID: s.ID()}
	finish := func() {
		data.State = s.State()
		data.Attempts = s.Stats().Attempts
	}

	if s.Locked() {
		finish()
		return data, &DeniedError{Locked: true}
	}

	for {
		prompt := fmt.Sprintf("guess [%s] ", RenderPips(s.Remaining()))
		guess, err := r.ReadGuess(prompt)
		if err != nil {
			finish()
			if errors.Is(err, io.EOF) {
				return data, &DeniedError{Locked: data.State.Status == guard.Locked, Remaining: data.State.Remaining}
			}
			return data, fmt.Errorf("failed to read guess: %w", err)
		}

		res, err := s.Attempt(ctx, guess)
		if err != nil {
			finish()
			return data, err
		}

		switch {
		case res.Matched:
			finish()
			data.Matched = true
			if !quiet {
				fmt.Fprintln(out, RenderConditional(SuccessStyle, "access granted"))
			}
			return data, nil
		case res.Status == guard.Locked:
			finish()
			if !quiet {
				fmt.Fprintln(out, RenderConditional(ErrorStyle, "locked"))
			}
			return data, &DeniedError{Locked: true}
		default:
			if !quiet {
				fmt.Fprintf(out, "%s %d attempt(s) left\n", RenderConditional(WarningStyle, "incorrect,"), res.Remaining)
			}
		}
	}
}

// silentError carries an exit code for an error that was already printed.
type silentError struct {
	err error
}

func (e *silentError) Error() string { return e.err.Error() }
func (e *silentError) Unwrap() error { return e.err }

// IsSilent reports whether err has already been shown to the user.
func IsSilent(err error) bool {
	var s *silentError
	return errors.As(err, &s)
}
