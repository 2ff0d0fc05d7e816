// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session hosts a guard for interactive use.
//
// A guard.Guard is not safe for concurrent use. Session owns one guard and
// serializes every attempt behind a mutex, so the CLI and the TUI can share
// it freely.
//
// # Key Types
//
//   - Session: serialized guard host with audit and pacing
//   - Option: functional options for New
//   - Stats: attempt counters and timestamps
//
// # Usage
//
//	s := session.New(secret,
//	    session.WithSink(sink),
//	    session.WithLimiter(rate.NewLimiter(rate.Every(500*time.Millisecond), 1)),
//	    session.WithNormalization("nfc"),
//	)
//	defer s.Close()
//
//	res, err := s.Attempt(ctx, guess)
//	if err != nil {
//	    // context cancelled or session closed
//	}
//	if res.Matched {
//	    // access granted
//	}
//
// # Audit Trail
//
// New emits GUARD_CREATED and SESSION_START. Each attempt emits AUTH_ATTEMPT,
// followed by AUTH_LOCKOUT on the attempt that locks the guard or
// AUTH_ATTEMPT_BLOCKED when the guard was already locked. Close emits
// SESSION_END. Guesses are recorded only as keyed fingerprints.
//
// A failing sink never changes an attempt's outcome. The most recent sink
// error is available from LastAuditError.
package session
