// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"strings"

	"github.com/jeranaias/credguard/internal/util"
)

// =============================================================================
// POLICY CONSTANTS
// =============================================================================

const (
	// MaxAttempts is the attempt budget of a fresh or reset guard.
	MaxAttempts = 3

	// MaxSecretLength is the number of characters kept from the secret.
	MaxSecretLength = 32

	// DistanceThreshold is the largest distance a guess may have without
	// locking the guard.
	DistanceThreshold = 2
)

// =============================================================================
// STATE
// =============================================================================

// Status is the lock status of a guard.
type Status int

const (
	// Active guards accept correct guesses.
	Active Status = iota
	// Locked guards reject every guess for the rest of their lifetime.
	Locked
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Trigger is a set of lock triggers.
type Trigger uint8

const (
	// TriggerExhaustion fires when the attempt counter reaches zero.
	TriggerExhaustion Trigger = 1 << iota
	// TriggerDistance fires when a guess is further than DistanceThreshold.
	TriggerDistance
)

// Has reports whether t contains every trigger in other.
func (t Trigger) Has(other Trigger) bool {
	return other != 0 && t&other == other
}

// String returns a "+"-joined list of trigger names, or "none".
func (t Trigger) String() string {
	if t == 0 {
		return "none"
	}
	var parts []string
	if t.Has(TriggerExhaustion) {
		parts = append(parts, "exhaustion")
	}
	if t.Has(TriggerDistance) {
		parts = append(parts, "distance")
	}
	return strings.Join(parts, "+")
}

// MarshalText encodes the trigger set by name.
func (t Trigger) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// State is the mutable part of a guard.
type State struct {
	Status    Status  `json:"status"`
	Remaining int     `json:"remaining"`
	LockedBy  Trigger `json:"locked_by,omitempty"`
}

// Result describes the outcome of one evaluation.
type Result struct {
	Matched   bool   `json:"matched"`
	Distance  int    `json:"distance"`
	Remaining int    `json:"remaining"`
	Status    Status `json:"status"`

	// Tripped holds the triggers that locked the guard on this call.
	// It is empty if the guard stayed active or was already locked.
	Tripped Trigger `json:"tripped,omitempty"`

	// Blocked is true when the guard was locked before this call.
	Blocked bool `json:"blocked"`
}

// =============================================================================
// GUARD
// =============================================================================

// Guard evaluates guesses against a fixed secret.
type Guard struct {
	secret string
	chars  []char
	state  State
}

// New creates a guard for secret. Only the first MaxSecretLength characters
// are kept; the rest are discarded.
func New(secret string) *Guard {
	secret = util.TruncateRunesNoEllipsis(secret, MaxSecretLength)
	return &Guard{
		secret: secret,
		chars:  decodeChars(secret),
		state: State{
			Status:    Active,
			Remaining: MaxAttempts,
		},
	}
}

// Match reports whether guess opens the guard.
func (g *Guard) Match(guess string) bool {
	return g.Evaluate(guess).Matched
}

// Remaining returns the attempt budget left, between 0 and MaxAttempts.
func (g *Guard) Remaining() int {
	return g.state.Remaining
}

// Locked reports whether the guard is permanently locked.
func (g *Guard) Locked() bool {
	return g.state.Status == Locked
}

// State returns a copy of the current state.
func (g *Guard) State() State {
	return g.state
}

// SecretLength returns the number of characters kept from the secret.
func (g *Guard) SecretLength() int {
	return len(g.chars)
}

// Evaluate scores guess and applies the lockout transition.
func (g *Guard) Evaluate(guess string) Result {
	b := explainChars(g.chars, decodeChars(guess))
	wasLocked := g.state.Status == Locked

	if !wasLocked && guess == g.secret {
		g.state.Remaining = MaxAttempts
		return Result{
			Matched:   true,
			Distance:  b.Distance,
			Remaining: g.state.Remaining,
			Status:    g.state.Status,
		}
	}

	var fired Trigger
	if g.state.Remaining > 0 {
		g.state.Remaining--
	}
	if g.state.Remaining == 0 {
		fired |= TriggerExhaustion
	}
	if b.Distance > DistanceThreshold {
		fired |= TriggerDistance
	}

	res := Result{
		Distance: b.Distance,
		Blocked:  wasLocked,
	}
	if fired != 0 && !wasLocked {
		g.state.Status = Locked
		g.state.LockedBy = fired
		res.Tripped = fired
	}
	res.Remaining = g.state.Remaining
	res.Status = g.state.Status
	return res
}
