// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// FingerprintLength is the number of hex characters kept from a digest.
const FingerprintLength = 16

// Fingerprinter derives stable, non-reversible tags for guesses.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a fingerprinter with a random 32-byte key.
func NewFingerprinter() (*Fingerprinter, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate fingerprint key: %w", err)
	}
	return &Fingerprinter{key: key}, nil
}

// NewFingerprinterWithKey creates a fingerprinter with a caller-supplied key.
// The key must be at most 64 bytes.
func NewFingerprinterWithKey(key []byte) (*Fingerprinter, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("fingerprint key too long: %d bytes", len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Fingerprinter{key: k}, nil
}

// Sum returns the fingerprint of s.
func (f *Fingerprinter) Sum(s string) string {
	h, err := blake2b.New256(f.key)
	if err != nil {
		// Only reachable with an oversized key, rejected by the constructors.
		panic(err)
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))[:FingerprintLength]
}
