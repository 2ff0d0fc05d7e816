// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// audit_cmd.go - Read back the attempt audit trail.
//
// Command: audit [subcommand]
//
// Subcommands:
//   tail [N] (default)   Show the last N events (default: 20)
//   path                 Show the audit log location
//
// Flags:
//   --json               Output in JSON format
//
// Examples:
//   credguard audit
//   credguard audit tail 50
//   credguard audit tail 5 --json

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/credguard/internal/audit"
	"github.com/jeranaias/credguard/internal/config"
	"github.com/jeranaias/credguard/internal/util"
)

// DefaultAuditTail is how many events "audit tail" shows by default.
const DefaultAuditTail = 20

// HandleAudit handles the "audit" command.
func HandleAudit(args Args) error {
	p := NewArgParser(args.Raw, "json")
	jsonMode := args.JSON || p.BoolFlag("json")

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	path, err := cfg.AuditPath()
	if err != nil {
		return NewCommandError("audit", "path", "cannot resolve audit path", err)
	}

	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "path":
		if jsonMode {
			return NewJSONResponse("audit", AuditData{Backend: cfg.Audit.Backend, Path: path}).Print()
		}
		fmt.Println(path)
		return nil

	case "", "tail":
		n := DefaultAuditTail
		if raw := p.Positional(1); raw != "" {
			if n, err = ParseIntWithValidation(raw, "count"); err != nil {
				return NewValidationErrorWithExample("count", raw, "must be a positive integer", "credguard audit tail 20")
			}
		}
		return auditTail(cfg, path, n, jsonMode)

	default:
		return NewValidationErrorWithExample("subcommand", sub, "unknown audit subcommand", "credguard audit tail 20")
	}
}

func auditTail(cfg *config.Config, path string, n int, jsonMode bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Resource: "audit log", ID: path}
		}
		return NewCommandError("audit", "tail", "cannot access audit log", err)
	}

	// Text logs cannot be parsed back into events; show the raw lines.
	if cfg.Audit.Backend == "file" && cfg.Audit.Format == "text" {
		if jsonMode {
			return NewCommandError("audit", "tail", "text audit logs cannot be exported as JSON", audit.ErrNotQueryable)
		}
		lines, err := tailLines(path, n)
		if err != nil {
			return NewCommandError("audit", "tail", "cannot read audit log", err)
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	}

	events, err := ReadEvents(cfg.Audit.Backend, path, n)
	if err != nil {
		return NewCommandError("audit", "tail", "cannot read audit events", err)
	}
	if jsonMode {
		return NewJSONResponse("audit", AuditData{Backend: cfg.Audit.Backend, Path: path, Events: events}).Print()
	}
	RenderEvents(os.Stdout, events)
	return nil
}

// ReadEvents returns up to n of the most recent events stored by backend at path.
func ReadEvents(backend, path string, n int) ([]audit.Event, error) {
	switch strings.ToLower(backend) {
	case "sqlite":
		sink, err := audit.NewSQLiteSink(path)
		if err != nil {
			return nil, err
		}
		defer sink.Close()
		return sink.Recent(n)
	case "", "file":
		return audit.ReadJSONLog(path, n)
	default:
		return nil, fmt.Errorf("%w: %s", audit.ErrUnknownBackend, backend)
	}
}

// RenderEvents writes events as an aligned table.
func RenderEvents(w io.Writer, events []audit.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, RenderConditional(DimStyle, "no audit events"))
		return
	}
	for _, e := range events {
		style := DimStyle
		switch e.EventType {
		case audit.EventLockout, audit.EventAttemptBlocked:
			style = ErrorStyle
		case audit.EventAttempt:
			if e.Success {
				style = SuccessStyle
			} else {
				style = WarningStyle
			}
		}

		detail := fmt.Sprintf("left=%d", e.Remaining)
		if e.Trigger != "" {
			detail += " trigger=" + e.Trigger
		}
		if e.Fingerprint != "" {
			detail += " fp=" + e.Fingerprint
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			RenderConditional(style, util.PadRight(e.EventType, 20)),
			util.PadRight(util.TruncateWidth(e.SessionID, 16), 16),
			detail)
	}
}

// tailLines returns the last n lines of the file at path.
func tailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return lines, nil
}
