// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/jeranaias/credguard/internal/audit"
	"github.com/jeranaias/credguard/internal/guard"
)

// ErrSessionClosed is returned by Attempt after Close.
var ErrSessionClosed = errors.New("session closed")

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Session.
type Option func(*Session)

// WithSink sets the audit sink. The session closes it on Close.
func WithSink(sink audit.Sink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLimiter paces attempts. Attempt waits for a token before evaluating.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Session) {
		s.limiter = l
	}
}

// WithNormalization applies a Unicode normalization form ("nfc" or "nfkc")
// to the secret and to every guess. "none" or an unknown form leaves input
// untouched; config validation rejects unknown forms before they get here.
func WithNormalization(form string) Option {
	return func(s *Session) {
		s.form = strings.ToLower(form)
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithFingerprinter sets the fingerprinter used for guesses in audit events.
func WithFingerprinter(f *audit.Fingerprinter) Option {
	return func(s *Session) {
		s.fp = f
	}
}

// WithMetadata attaches fixed metadata to every event the session emits.
func WithMetadata(key, value string) Option {
	return func(s *Session) {
		if s.meta == nil {
			s.meta = make(map[string]string)
		}
		s.meta[key] = value
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Stats counts what happened in a session.
type Stats struct {
	Attempts     int       `json:"attempts"`
	Successes    int       `json:"successes"`
	Failures     int       `json:"failures"`
	Blocked      int       `json:"blocked"`
	StartTime    time.Time `json:"start_time"`
	LastActivity time.Time `json:"last_activity"`
}

// Session owns a guard and serializes access to it.
type Session struct {
	mu sync.Mutex

	id      string
	guard   *guard.Guard
	sink    audit.Sink
	limiter *rate.Limiter
	form    string
	fp      *audit.Fingerprinter
	meta    map[string]string
	now     func() time.Time

	stats    Stats
	auditErr error
	closed   bool
}

// New creates a session guarding secret and records its start.
func New(secret string, opts ...Option) *Session {
	s := &Session{
		id:   generateSessionID(),
		sink: audit.NopSink{},
		form: "none",
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fp == nil {
		// A missing fingerprinter only drops the fingerprint field.
		s.fp, _ = audit.NewFingerprinter()
	}

	s.guard = guard.New(s.normalize(secret))
	start := s.now()
	s.stats.StartTime = start
	s.stats.LastActivity = start

	s.emit(audit.Event{
		EventType: audit.EventGuardCreated,
		Success:   true,
		Remaining: s.guard.Remaining(),
		Status:    s.guard.State().Status.String(),
		Metadata: map[string]string{
			"secret_length": strconv.Itoa(s.guard.SecretLength()),
			"normalize":     s.form,
		},
	})
	s.emit(audit.Event{
		EventType: audit.EventSessionStart,
		Success:   true,
		Remaining: s.guard.Remaining(),
		Status:    s.guard.State().Status.String(),
	})
	return s
}

// Attempt evaluates guess against the guard.
// The returned error is non-nil only when ctx ends before the attempt is
// evaluated or the session is closed; a wrong guess is not an error.
func (s *Session) Attempt(ctx context.Context, guess string) (guard.Result, error) {
	if err := ctx.Err(); err != nil {
		return guard.Result{}, err
	}
	if s.isClosed() {
		return guard.Result{}, ErrSessionClosed
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return guard.Result{}, ctxErr
			}
			return guard.Result{}, fmt.Errorf("attempt throttled: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return guard.Result{}, ErrSessionClosed
	}

	res := s.guard.Evaluate(s.normalize(guess))

	s.stats.Attempts++
	s.stats.LastActivity = s.now()
	switch {
	case res.Matched:
		s.stats.Successes++
	case res.Blocked:
		s.stats.Blocked++
		s.stats.Failures++
	default:
		s.stats.Failures++
	}

	base := audit.Event{
		Success:     res.Matched,
		Distance:    res.Distance,
		Remaining:   res.Remaining,
		Status:      res.Status.String(),
		Fingerprint: s.fingerprint(guess),
	}

	attempt := base
	attempt.EventType = audit.EventAttempt
	s.emitLocked(attempt)

	switch {
	case res.Tripped != 0:
		lockout := base
		lockout.EventType = audit.EventLockout
		lockout.Trigger = res.Tripped.String()
		s.emitLocked(lockout)
	case res.Blocked:
		blocked := base
		blocked.EventType = audit.EventAttemptBlocked
		blocked.Trigger = s.guard.State().LockedBy.String()
		s.emitLocked(blocked)
	}

	return res, nil
}

// Close records the end of the session and closes the sink.
// Calling Close more than once is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	st := s.guard.State()
	s.emitLocked(audit.Event{
		EventType: audit.EventSessionEnd,
		Success:   st.Status == guard.Active,
		Remaining: st.Remaining,
		Status:    st.Status.String(),
		Trigger:   triggerName(st.LockedBy),
		Metadata: map[string]string{
			"attempts":  strconv.Itoa(s.stats.Attempts),
			"successes": strconv.Itoa(s.stats.Successes),
			"failures":  strconv.Itoa(s.stats.Failures),
			"duration":  s.now().Sub(s.stats.StartTime).Round(time.Millisecond).String(),
		},
	})
	s.closed = true

	if err := s.sink.Close(); err != nil {
		return fmt.Errorf("failed to close audit sink: %w", err)
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Remaining returns the guard's attempt budget.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.Remaining()
}

// Locked reports whether the guard is locked.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.Locked()
}

// State returns a copy of the guard state.
func (s *Session) State() guard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.State()
}

// Stats returns a copy of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Duration returns how long the session has been open.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.stats.StartTime)
}

// IdleTime returns how long since the last attempt.
func (s *Session) IdleTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.stats.LastActivity)
}

// LastAuditError returns the most recent sink failure, or nil.
func (s *Session) LastAuditError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auditErr
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) normalize(in string) string {
	switch s.form {
	case "nfc":
		return norm.NFC.String(in)
	case "nfkc":
		return norm.NFKC.String(in)
	default:
		return in
	}
}

func (s *Session) fingerprint(guess string) string {
	if s.fp == nil {
		return ""
	}
	return s.fp.Sum(s.normalize(guess))
}

func (s *Session) emit(e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitLocked(e)
}

func (s *Session) emitLocked(e audit.Event) {
	e.Timestamp = s.now()
	e.SessionID = s.id
	if len(s.meta) > 0 {
		merged := make(map[string]string, len(s.meta)+len(e.Metadata))
		for k, v := range s.meta {
			merged[k] = v
		}
		for k, v := range e.Metadata {
			merged[k] = v
		}
		e.Metadata = merged
	}
	if err := s.sink.Write(e); err != nil {
		s.auditErr = err
	}
}

func triggerName(t guard.Trigger) string {
	if t == 0 {
		return ""
	}
	return t.String()
}

// generateSessionID creates a unique session ID.
func generateSessionID() string {
	return "sess_" + uuid.NewString()
}
