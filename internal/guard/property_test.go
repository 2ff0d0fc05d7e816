// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newProperties(t *testing.T, minSuccess int) *gopter.Properties {
	t.Helper()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = minSuccess
	return gopter.NewProperties(parameters)
}

// secretOfLen generates lowercase secrets with a length in [minLen, maxLen].
func secretOfLen(minLen, maxLen int) gopter.Gen {
	return gen.IntRange(minLen, maxLen).FlatMap(func(v interface{}) gopter.Gen {
		return gen.SliceOfN(v.(int), gen.AlphaLowerChar()).Map(func(r []rune) string {
			return string(r)
		})
	}, reflect.TypeOf(""))
}

// TestGuardProperties checks the lockout policy over generated secrets.
func TestGuardProperties(t *testing.T) {
	properties := newProperties(t, 200)

	properties.Property("fresh guard has full budget", prop.ForAll(
		func(secret string) bool {
			return New(secret).Remaining() == MaxAttempts
		},
		gen.AnyString(),
	))

	properties.Property("correct guess on fresh guard matches and keeps budget", prop.ForAll(
		func(secret string) bool {
			g := New(secret)
			kept := g.secret
			return g.Match(kept) && g.Remaining() == MaxAttempts && !g.Locked()
		},
		gen.AnyString(),
	))

	properties.Property("repeated success is idempotent", prop.ForAll(
		func(secret string, n uint8) bool {
			g := New(secret)
			for i := 0; i < int(n%50)+1; i++ {
				if !g.Match(g.secret) || g.Remaining() != MaxAttempts {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.UInt8(),
	))

	properties.Property("distance never exceeds secret length", prop.ForAll(
		func(secret, guess string) bool {
			g := New(secret)
			return Distance(g.secret, guess) <= g.SecretLength()
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("short secrets never distance-lock", prop.ForAll(
		func(secret, guess string) bool {
			g := New(secret)
			res := g.Evaluate(guess)
			return !res.Tripped.Has(TriggerDistance)
		},
		secretOfLen(0, 2),
		gen.AnyString(),
	))

	properties.Property("a far guess locks immediately", prop.ForAll(
		func(secret string) bool {
			g := New(secret)
			// Doubling the secret gives a length gap equal to its length.
			g.Match(g.secret + g.secret)
			return g.Locked() && g.Remaining() == MaxAttempts-1 && !g.Match(g.secret)
		},
		secretOfLen(3, 16),
	))

	properties.Property("lock is permanent", prop.ForAll(
		func(secret string, guesses []string) bool {
			g := New(secret)
			g.Match(g.secret + "!!!")
			g.Match(g.secret + "!!!")
			g.Match(g.secret + "!!!")
			if !g.Locked() {
				return false
			}
			for _, guess := range guesses {
				if g.Match(guess) || g.Match(g.secret) || !g.Locked() {
					return false
				}
			}
			return g.Remaining() == 0
		},
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("budget stays within bounds", prop.ForAll(
		func(secret string, guesses []string) bool {
			g := New(secret)
			prev := g.Remaining()
			for _, guess := range guesses {
				res := g.Evaluate(guess)
				r := g.Remaining()
				if r < 0 || r > MaxAttempts {
					return false
				}
				if r > prev && !(res.Matched && r == MaxAttempts) {
					return false
				}
				prev = r
			}
			return true
		},
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestExhaustionProperty drives three near misses through a guard.
func TestExhaustionProperty(t *testing.T) {
	properties := newProperties(t, 100)

	properties.Property("three near misses exhaust and lock", prop.ForAll(
		func(secret string) bool {
			g := New(secret)
			near := g.secret + "x"
			for want := 2; want >= 0; want-- {
				if g.Match(near) || g.Remaining() != want {
					return false
				}
				if want > 0 && g.Locked() {
					return false
				}
			}
			return g.Locked() && !g.Match(g.secret) && g.State().LockedBy.Has(TriggerExhaustion)
		},
		secretOfLen(1, MaxSecretLength-1),
	))

	properties.Property("success before lock restores the budget", prop.ForAll(
		func(secret string, misses uint8) bool {
			g := New(secret)
			near := g.secret + "x"
			for i := 0; i < int(misses%3); i++ {
				g.Match(near)
			}
			if !g.Match(g.secret) || g.Remaining() != MaxAttempts {
				return false
			}
			g.Match(near)
			g.Match(near)
			return g.Match(g.secret)
		},
		secretOfLen(1, MaxSecretLength-1),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
