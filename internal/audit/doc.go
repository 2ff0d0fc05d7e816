// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit records credential guard activity.
//
// Every attempt, lockout and session boundary becomes an Event written to a
// Sink. Raw guesses never reach a sink: attempts carry a Fingerprint, a keyed
// BLAKE2b digest under a per-session random key, so repeated guesses within
// one session correlate while their content stays unrecoverable.
//
// # Sinks
//
//   - FileSink: append-only JSON lines or pipe-separated text, 0600, rotated by size
//   - SQLiteSink: queryable history in an audit_events table (modernc.org/sqlite)
//   - NopSink: discards everything
//
// # Usage
//
//	sink, err := audit.Open(audit.Options{Backend: "file", Path: path})
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//	_ = sink.Write(audit.Event{EventType: audit.EventAttempt, ...})
package audit
