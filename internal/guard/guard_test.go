// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// VALID GUESSES
// =============================================================================

func TestMatch_ValidNoLock(t *testing.T) {
	g := New("Secret")
	require.True(t, g.Match("Secret"))
}

func TestMatch_ValidAfterFailures(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		want     bool
	}{
		{"one failure", 1, true},
		{"two failures", 2, true},
		{"three failures locks", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New("Secret")
			for i := 0; i < tt.failures; i++ {
				require.False(t, g.Match("Secrett"))
			}
			require.Equal(t, tt.want, g.Match("Secret"))
		})
	}
}

func TestMatch_ValidAfterDistanceLock(t *testing.T) {
	g := New("Secret")
	require.False(t, g.Match("Secretttt"), "distance 3 guess must fail")
	require.True(t, g.Locked())
	require.False(t, g.Match("Secret"), "correct guess after distance lock must fail")
}

func TestMatch_EarlySuccessResetsBudget(t *testing.T) {
	g := New("Secret")
	g.Match("Secrett")
	require.True(t, g.Match("Secret"))
	g.Match("Secrett")
	g.Match("Secrett")
	require.True(t, g.Match("Secret"), "budget should have been reset by the earlier success")
}

func TestMatch_LateSuccessResetsBudget(t *testing.T) {
	g := New("Secret")
	g.Match("Secrett")
	g.Match("Secrett")
	require.True(t, g.Match("Secret"))
	g.Match("Secrett")
	require.True(t, g.Match("Secret"))
}

func TestMatch_SuccessAfterLockDoesNotUnlock(t *testing.T) {
	g := New("Secret")
	g.Match("Secrett")
	g.Match("Secrett")
	g.Match("Secrett")
	require.False(t, g.Match("Secret"))
	require.False(t, g.Match("Secret"))
	require.True(t, g.Locked())
}

func TestMatch_RepeatedValid(t *testing.T) {
	g := New("Secret")
	for i := 0; i < 100; i++ {
		require.True(t, g.Match("Secret"))
		require.Equal(t, MaxAttempts, g.Remaining())
	}
	require.True(t, g.Match("Secret"))
}

// =============================================================================
// INVALID GUESSES
// =============================================================================

func TestMatch_InvalidSequence(t *testing.T) {
	g := New("Secret")

	require.False(t, g.Match("Secrett"))
	require.False(t, g.Locked(), "distance 1 must not lock")

	require.False(t, g.Match("Secrett"))
	require.False(t, g.Locked())

	require.False(t, g.Match("Secrett"))
	require.True(t, g.Locked(), "third failure exhausts the budget")

	require.False(t, g.Match("Secrett"))
}

func TestMatch_InvalidAfterDistanceLock(t *testing.T) {
	g := New("Secret")
	g.Match("Secretttt")
	require.False(t, g.Match("Secrett"))
}

// =============================================================================
// SECRET LENGTH EDGE CASES
// =============================================================================

func TestMatch_EmptySecret(t *testing.T) {
	g := New("")
	require.True(t, g.Match(""))
}

func TestMatch_OneCharacterSecret(t *testing.T) {
	g := New("a")
	require.True(t, g.Match("a"))
}

func TestMatch_ThirtyTwoCharacterSecret(t *testing.T) {
	secret := "aaaaaabbbbbbccccccddddddeeeeeeff"
	require.Len(t, secret, 32)

	g := New(secret)
	require.Equal(t, 32, g.SecretLength())
	require.True(t, g.Match(secret))
}

func TestNew_TruncatesToFirst32(t *testing.T) {
	long := "aaaaaabbbbbbccccccddddddeeeeeeffffff"

	g := New(long)
	require.Equal(t, MaxSecretLength, g.SecretLength())
	require.True(t, g.Match("aaaaaabbbbbbccccccddddddeeeeeeff"), "first 32 characters must match")
}

func TestNew_TruncatedTailIsNotTheSecret(t *testing.T) {
	g := New("aaaaaabbbbbbccccccddddddeeeeeeffffff")
	require.False(t, g.Match("aabbbbbbccccccddddddeeeeeeffffff"), "suffix must not match")
}

func TestNew_ThirtySevenCharacterSecret(t *testing.T) {
	secret := "abcdefghijklmnopqrstuvwxyz0123456789!"
	require.Len(t, secret, 37)

	require.True(t, New(secret).Match(secret[:32]), "first 32 characters must match")
	for start := 1; start <= 5; start++ {
		suffix := secret[start : start+32]
		require.False(t, New(secret).Match(suffix), "suffix starting at %d must not match", start)
	}
}

func TestEvaluate_InvalidUTF8DistanceLock(t *testing.T) {
	g := New("abc\xff\xfe\xfd")
	res := g.Evaluate("abc\x80\x81\x82")

	require.False(t, res.Matched)
	require.Equal(t, 3, res.Distance)
	require.True(t, g.Locked())
	require.True(t, res.Tripped.Has(TriggerDistance))
	require.Equal(t, 6, g.SecretLength())
}

func TestNew_FullLongSecretNoLongerMatches(t *testing.T) {
	long := strings.Repeat("x", 40)
	g := New(long)
	require.False(t, g.Match(long))
	require.Equal(t, 2, g.Remaining())
	// 8 extra characters is a length gap of 8, capped at 32, above threshold.
	require.True(t, g.Locked())
}

func TestNew_TruncatesByCharacter(t *testing.T) {
	secret := strings.Repeat("é", 40)
	g := New(secret)
	require.Equal(t, MaxSecretLength, g.SecretLength())
	require.True(t, g.Match(strings.Repeat("é", 32)))
}

// =============================================================================
// REMAINING
// =============================================================================

func TestRemaining_Fresh(t *testing.T) {
	require.Equal(t, 3, New("abcdefg").Remaining())
}

func TestRemaining_AfterSuccess(t *testing.T) {
	g := New("abcdefg")
	g.Match("abcdefg")
	require.Equal(t, 3, g.Remaining())
}

func TestRemaining_CountsDown(t *testing.T) {
	g := New("abcdefg")
	for want := 2; want >= 0; want-- {
		g.Match("abcdef")
		require.Equal(t, want, g.Remaining())
	}
	g.Match("abcdef")
	require.Equal(t, 0, g.Remaining(), "counter must clamp at zero")
}

func TestRemaining_AfterDistanceLockKeepsCounting(t *testing.T) {
	g := New("abcdefg")

	g.Match("abcd")
	require.Equal(t, 2, g.Remaining())
	require.True(t, g.Locked())

	g.Match("abcd")
	require.Equal(t, 1, g.Remaining())

	g.Match("abcd")
	require.Equal(t, 0, g.Remaining())
}

func TestRemaining_ResetAfterFailures(t *testing.T) {
	for failures := 1; failures <= 2; failures++ {
		g := New("abcdefg")
		for i := 0; i < failures; i++ {
			g.Match("abcdef")
		}
		g.Match("abcdefg")
		require.Equal(t, 3, g.Remaining(), "after %d failures", failures)
	}
}

func TestRemaining_CorrectGuessWhileLockedStillConsumes(t *testing.T) {
	g := New("Secret")
	g.Match("Secretttt")
	require.Equal(t, 2, g.Remaining())
	g.Match("Secret")
	require.Equal(t, 1, g.Remaining())
}

// =============================================================================
// DISTANCE-DRIVEN LOCKING
// =============================================================================

func TestMatch_DistanceLocking(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		probe  string
		locks  bool
	}{
		{"guess 1 shorter", "abcdefg", "abcdef", false},
		{"guess 2 shorter", "abcdefg", "abcde", false},
		{"guess 3 shorter", "abcdefg", "abcd", true},
		{"guess far shorter", "abcdefghijklmnopqrstuvabcdefghijklmnopqrstuv", "abcdefg", true},
		{"guess 1 longer", "abcdefg", "abcdefgh", false},
		{"guess 2 longer", "abcdefg", "abcdefghi", false},
		{"guess 3 longer", "abcdefg", "abcdefghij", true},
		{"guess far longer", "abcdefg", "abcdefghijklmnopqrstuvabcdefghijklmnopqrstuv", true},
		{"one char differs", "aaaaaaaa", "aaaaaaab", false},
		{"two chars differ", "aaaaaaaa", "aaaaaabb", false},
		{"three chars differ", "aaaaaaaa", "aaaaabbb", true},
		{"empty secret long guess", "", "aaaaaaaaaaaaaaaa", false},
		{"one char secret long guess", "a", "zzzzzzzzzzzzzzzz", false},
		{"two char secret long guess", "ab", "zzzzzzzzzzzzzzzz", false},
		{"three char secret long guess", "abc", "zzzzzzzzzzzzzzzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.secret)
			require.False(t, g.Match(tt.probe))
			require.Equal(t, tt.locks, g.Locked())
			require.Equal(t, !tt.locks, g.Match(tt.secret))
		})
	}
}

// =============================================================================
// CONCRETE SCENARIOS
// =============================================================================

func TestScenario_NearMissThenSuccess(t *testing.T) {
	g := New("Secret")
	require.False(t, g.Match("Secrett"))
	require.Equal(t, 2, g.Remaining())
	require.False(t, g.Locked())
	require.True(t, g.Match("Secret"))
	require.Equal(t, 3, g.Remaining())
}

func TestScenario_FarMissLocks(t *testing.T) {
	g := New("Secret")
	res := g.Evaluate("Secretttt")
	require.False(t, res.Matched)
	require.Equal(t, 3, res.Distance)
	require.True(t, g.Locked())
	require.False(t, g.Match("Secret"))
}

func TestScenario_EmptySecretNeverDistanceLocks(t *testing.T) {
	g := New("")
	res := g.Evaluate("aaaaaaaaaaaaaaaa")
	require.False(t, res.Matched)
	require.Equal(t, 0, res.Distance)
	require.False(t, g.Locked())
	require.True(t, g.Match(""))
}

func TestScenario_ShortGuessLocksAndCounts(t *testing.T) {
	g := New("abcdefg")
	res := g.Evaluate("abcd")
	require.False(t, res.Matched)
	require.Equal(t, 3, res.Distance)
	require.True(t, g.Locked())
	require.Equal(t, 2, g.Remaining())

	require.False(t, g.Match("abcd"))
	require.Equal(t, 1, g.Remaining())
}

// =============================================================================
// EVALUATE RESULT
// =============================================================================

func TestEvaluate_TrippedOnlyOnTransition(t *testing.T) {
	g := New("Secret")

	res := g.Evaluate("Secrett")
	require.Equal(t, Trigger(0), res.Tripped)
	require.False(t, res.Blocked)
	require.Equal(t, Active, res.Status)

	g.Evaluate("Secrett")
	res = g.Evaluate("Secrett")
	require.Equal(t, TriggerExhaustion, res.Tripped)
	require.False(t, res.Blocked)
	require.Equal(t, Locked, res.Status)

	res = g.Evaluate("Secretttt")
	require.Equal(t, Trigger(0), res.Tripped, "already locked guards trip nothing")
	require.True(t, res.Blocked)
	require.Equal(t, TriggerExhaustion, g.State().LockedBy, "lock cause is write-once")
}

func TestEvaluate_BothTriggersAtOnce(t *testing.T) {
	g := New("Secret")
	g.Evaluate("Secrett")
	g.Evaluate("Secrett")
	res := g.Evaluate("xxxxxx")
	require.True(t, res.Tripped.Has(TriggerExhaustion))
	require.True(t, res.Tripped.Has(TriggerDistance))
	require.Equal(t, "exhaustion+distance", res.Tripped.String())
}

func TestEvaluate_BlockedCorrectGuess(t *testing.T) {
	g := New("Secret")
	g.Evaluate("Secretttt")
	res := g.Evaluate("Secret")
	require.False(t, res.Matched)
	require.True(t, res.Blocked)
	require.Equal(t, 0, res.Distance)
}

func TestResult_JSON(t *testing.T) {
	g := New("Secret")
	res := g.Evaluate("Secretttt")

	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"matched": false,
		"distance": 3,
		"remaining": 2,
		"status": "locked",
		"tripped": "distance",
		"blocked": false
	}`, string(data))
}

func TestStatusAndTriggerStrings(t *testing.T) {
	require.Equal(t, "active", Active.String())
	require.Equal(t, "locked", Locked.String())
	require.Equal(t, "unknown", Status(9).String())
	require.Equal(t, "none", Trigger(0).String())
	require.Equal(t, "distance", TriggerDistance.String())
	require.False(t, TriggerDistance.Has(0))
}
