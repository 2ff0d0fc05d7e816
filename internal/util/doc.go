// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by credguard
// packages.
//
// String helpers count characters (runes), not bytes, and never split a
// multi-byte character. Display helpers measure terminal columns with
// go-runewidth so wide characters line up in CLI tables.
//
// AtomicWriteFile writes through a temp file, fsync and rename so a crash
// leaves either the old or the new file on disk.
package util
