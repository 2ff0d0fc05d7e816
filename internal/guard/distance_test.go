// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		secret string
		guess  string
		want   int
	}{
		{"Secret", "Secret", 0},
		{"Secret", "Secrett", 1},
		{"Secret", "Secretttt", 3},
		{"Secret", "secret", 1},
		{"Secret", "", 6},
		{"abcdefg", "abcd", 3},
		{"abcdefg", "xbcdefg", 1},
		{"abcdefg", "bcdefga", 7},
		{"aaaaaaaa", "aaaaabbb", 3},
		{"", "", 0},
		{"", "anything", 0},
		{"a", "bbbbbbbb", 1},
		{"ab", "zzzzzzzzzz", 2},
		{"abc", "zzzzzzzzzz", 3},
		{"héllo", "hello", 1},
		{"日本語", "日本", 1},
	}

	for _, tt := range tests {
		t.Run(tt.secret+"/"+tt.guess, func(t *testing.T) {
			require.Equal(t, tt.want, Distance(tt.secret, tt.guess))
		})
	}
}

func TestExplain(t *testing.T) {
	b := Explain("abcdefg", "abXdefghij")
	require.Equal(t, Breakdown{
		Overlap:    7,
		Mismatches: 1,
		LengthGap:  3,
		Raw:        4,
		Cap:        7,
		Distance:   4,
	}, b)
	require.False(t, b.Capped())

	b = Explain("ab", "zzzzz")
	require.Equal(t, 2, b.Overlap)
	require.Equal(t, 2, b.Mismatches)
	require.Equal(t, 3, b.LengthGap)
	require.Equal(t, 5, b.Raw)
	require.Equal(t, 2, b.Distance)
	require.True(t, b.Capped())
}

func TestDistance_PrefixRewarded(t *testing.T) {
	// A shifted guess shares no positions with the secret.
	require.Equal(t, 6, Distance("Secret", "XSecre"))
	require.Equal(t, 1, Distance("Secret", "Secre"))
}

func TestDistance_InvalidUTF8(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		guess  string
		want   int
	}{
		{"distinct invalid bytes", "abc\xff\xfe\xfd", "abc\x80\x81\x82", 3},
		{"same invalid bytes", "abc\xff\xfe", "abc\xff\xfe", 0},
		{"invalid byte vs replacement rune", "a\xff", "a\uFFFD", 1},
		{"one byte each", "\xff", "\xfe", 1},
		{"length in bytes of invalid run", "\xff\xfe\xfd", "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Distance(tt.secret, tt.guess))
		})
	}
}
