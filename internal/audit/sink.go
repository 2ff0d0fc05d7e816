// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"errors"
	"fmt"
	"strings"
)

// Sink receives audit events.
type Sink interface {
	Write(event Event) error
	Close() error
}

// Reader is implemented by sinks that can return recorded events.
type Reader interface {
	// Recent returns up to n of the most recent events, oldest first.
	Recent(n int) ([]Event, error)
}

var (
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown audit backend")

	// ErrSinkClosed is returned when writing to a closed sink.
	ErrSinkClosed = errors.New("audit sink closed")

	// ErrNotQueryable is returned by Recent on sinks that store opaque text.
	ErrNotQueryable = errors.New("audit sink does not support queries")
)

// Options selects and configures a sink.
type Options struct {
	Enabled bool
	Backend string // "file" or "sqlite"
	Path    string
	Format  string // "json" or "text", file backend only
}

// Open creates the sink described by opts.
// A disabled configuration yields a NopSink.
func Open(opts Options) (Sink, error) {
	if !opts.Enabled {
		return NopSink{}, nil
	}
	switch strings.ToLower(opts.Backend) {
	case "", "file":
		return NewFileSink(opts.Path, opts.Format)
	case "sqlite":
		return NewSQLiteSink(opts.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
}

// NopSink discards every event.
type NopSink struct{}

// Write discards event.
func (NopSink) Write(Event) error { return nil }

// Close does nothing.
func (NopSink) Close() error { return nil }

// MemorySink keeps events in memory. Used by tests and the simulate command.
type MemorySink struct {
	Events []Event
	closed bool
}

// Write appends event.
func (m *MemorySink) Write(event Event) error {
	if m.closed {
		return ErrSinkClosed
	}
	m.Events = append(m.Events, event)
	return nil
}

// Close marks the sink closed.
func (m *MemorySink) Close() error {
	m.closed = true
	return nil
}

// Recent returns up to n of the most recent events.
func (m *MemorySink) Recent(n int) ([]Event, error) {
	if n <= 0 || n > len(m.Events) {
		n = len(m.Events)
	}
	out := make([]Event, n)
	copy(out, m.Events[len(m.Events)-n:])
	return out, nil
}

// Types returns the event types in order.
func (m *MemorySink) Types() []string {
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.EventType
	}
	return types
}
