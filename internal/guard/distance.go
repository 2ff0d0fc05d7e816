// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import "unicode/utf8"

// Breakdown itemizes how a distance was computed.
type Breakdown struct {
	Overlap    int `json:"overlap"`
	Mismatches int `json:"mismatches"`
	LengthGap  int `json:"length_gap"`
	Raw        int `json:"raw"`
	Cap        int `json:"cap"`
	Distance   int `json:"distance"`
}

// Capped reports whether the secret length limited the score.
func (b Breakdown) Capped() bool {
	return b.Raw > b.Cap
}

// Distance scores guess against secret in characters.
// The result never exceeds the character length of secret.
func Distance(secret, guess string) int {
	return Explain(secret, guess).Distance
}

// Explain returns the full distance computation for secret and guess.
func Explain(secret, guess string) Breakdown {
	return explainChars(decodeChars(secret), decodeChars(guess))
}

// char is one character of a string: a decoded rune, or for a byte that is
// not valid UTF-8, a negative value derived from that byte. Distinct invalid
// bytes therefore compare unequal to each other and to every rune.
type char int32

func decodeChars(s string) []char {
	out := make([]char, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			out = append(out, -1-char(s[i]))
		} else {
			out = append(out, char(r))
		}
		i += size
	}
	return out
}

func explainChars(s, g []char) Breakdown {
	b := Breakdown{
		Overlap: min(len(s), len(g)),
		Cap:     len(s),
	}
	for i := 0; i < b.Overlap; i++ {
		if s[i] != g[i] {
			b.Mismatches++
		}
	}
	b.LengthGap = len(s) - len(g)
	if b.LengthGap < 0 {
		b.LengthGap = -b.LengthGap
	}
	b.Raw = b.Mismatches + b.LengthGap
	b.Distance = min(b.Cap, b.Raw)
	return b
}
