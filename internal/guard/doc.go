// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package guard implements a single-credential guard with attempt lockout.
//
// A Guard holds one secret (at most 32 characters) and scores each guess
// against it. Two independent triggers lock the guard permanently:
//
//   - Exhaustion: three failed calls drive the attempt counter to zero.
//   - Distance: a single guess whose distance from the secret exceeds 2.
//
// A correct guess resets the counter only while the guard is still active.
// Once locked, every call returns false, including correct guesses, and the
// counter keeps counting down to zero.
//
// # Distance
//
// Distance is not an edit distance. It counts positional mismatches over the
// common prefix length, adds the length gap, and caps the sum at the length
// of the secret. Secrets of two characters or fewer can therefore only be
// locked by exhaustion.
//
// # Usage
//
//	g := guard.New(secret)
//	if g.Match(guess) {
//	    // grant
//	}
//	fmt.Println(g.Remaining())
//
// A Guard is not safe for concurrent use. Hosts that share one between
// goroutines must serialize calls; see the session package.
package guard
