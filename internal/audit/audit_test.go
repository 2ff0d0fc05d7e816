// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleEvent(eventType string) Event {
	return Event{
		Timestamp:   time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
		EventType:   eventType,
		SessionID:   "sess-1",
		Success:     false,
		Distance:    3,
		Remaining:   2,
		Status:      "locked",
		Trigger:     "distance",
		Fingerprint: "0123456789abcdef",
		Metadata:    map[string]string{"source": "test"},
	}
}

// =============================================================================
// EVENT FORMATTING
// =============================================================================

func TestEvent_ToLogLine(t *testing.T) {
	e := sampleEvent(EventLockout)
	line := e.ToLogLine()

	require.True(t, strings.HasPrefix(line, "2025-03-14 15:09:26 | AUTH_LOCKOUT | sess-1 |"))
	require.Contains(t, line, "d=3")
	require.Contains(t, line, "r=2")
	require.Contains(t, line, "FAILURE")
	require.Contains(t, line, "source=test")
}

func TestEvent_ToLogLineSingleLine(t *testing.T) {
	e := sampleEvent(EventAttempt)
	e.Metadata = map[string]string{"note": "two\nlines | piped"}
	line := e.ToLogLine()
	require.NotContains(t, line, "\n")
	require.Contains(t, line, `two\nlines \| piped`)
}

func TestEvent_ToJSON(t *testing.T) {
	e := sampleEvent(EventAttempt)
	s, err := e.ToJSON()
	require.NoError(t, err)

	var back Event
	require.NoError(t, json.Unmarshal([]byte(s), &back))
	require.Equal(t, e, back)
}

// =============================================================================
// FINGERPRINTS
// =============================================================================

func TestFingerprinter_StableWithinKey(t *testing.T) {
	fp, err := NewFingerprinter()
	require.NoError(t, err)

	a := fp.Sum("Secrett")
	require.Len(t, a, FingerprintLength)
	require.Equal(t, a, fp.Sum("Secrett"))
	require.NotEqual(t, a, fp.Sum("Secret"))
	require.NotContains(t, a, "Secret")
}

func TestFingerprinter_DiffersAcrossKeys(t *testing.T) {
	a, err := NewFingerprinterWithKey([]byte("key-one"))
	require.NoError(t, err)
	b, err := NewFingerprinterWithKey([]byte("key-two"))
	require.NoError(t, err)
	require.NotEqual(t, a.Sum("guess"), b.Sum("guess"))
}

func TestFingerprinter_KeyTooLong(t *testing.T) {
	_, err := NewFingerprinterWithKey(make([]byte, 65))
	require.Error(t, err)
}

// =============================================================================
// OPEN
// =============================================================================

func TestOpen_Disabled(t *testing.T) {
	sink, err := Open(Options{Enabled: false, Backend: "sqlite"})
	require.NoError(t, err)
	require.IsType(t, NopSink{}, sink)
	require.NoError(t, sink.Write(sampleEvent(EventAttempt)))
	require.NoError(t, sink.Close())
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(Options{Enabled: true, Backend: "kafka", Path: "x"})
	require.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()

	sink, err := Open(Options{Enabled: true, Backend: "file", Path: filepath.Join(dir, "a.log")})
	require.NoError(t, err)
	require.IsType(t, &FileSink{}, sink)
	require.NoError(t, sink.Close())

	sink, err = Open(Options{Enabled: true, Backend: "SQLite", Path: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteSink{}, sink)
	require.NoError(t, sink.Close())
}

// =============================================================================
// FILE SINK
// =============================================================================

func TestFileSink_JSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.log")
	sink, err := NewFileSink(path, "json")
	require.NoError(t, err)

	for _, typ := range []string{EventSessionStart, EventAttempt, EventLockout} {
		require.NoError(t, sink.Write(sampleEvent(typ)))
	}

	events, err := sink.Recent(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, EventAttempt, events[0].EventType)
	require.Equal(t, EventLockout, events[1].EventType)

	require.NoError(t, sink.Close())
	require.ErrorIs(t, sink.Write(sampleEvent(EventAttempt)), ErrSinkClosed)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestFileSink_TextFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	sink, err := NewFileSink(path, "text")
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write(sampleEvent(EventAttempt)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "| AUTH_ATTEMPT |")

	_, err = sink.Recent(1)
	require.ErrorIs(t, err, ErrNotQueryable)
}

func TestFileSink_InvalidArgs(t *testing.T) {
	_, err := NewFileSink("", "json")
	require.Error(t, err)

	_, err = NewFileSink(filepath.Join(t.TempDir(), "a.log"), "xml")
	require.Error(t, err)
}

func TestFileSink_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")
	sink, err := NewFileSink(path, "json")
	require.NoError(t, err)
	defer sink.Close()

	sink.SetMaxSize(1)
	require.NoError(t, sink.Write(sampleEvent(EventAttempt)))
	require.NoError(t, sink.Write(sampleEvent(EventAttempt)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "second write should have rotated the first file")

	events, err := ReadJSONLog(path, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestReadJSONLog_SkipsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	e := sampleEvent(EventAttempt)
	line, err := e.ToJSON()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not json\n"+line+"\n{\n"), 0600))

	events, err := ReadJSONLog(path, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

// =============================================================================
// SQLITE SINK
// =============================================================================

func TestSQLiteSink_WriteAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	defer sink.Close()

	types := []string{EventGuardCreated, EventSessionStart, EventAttempt, EventLockout, EventSessionEnd}
	for _, typ := range types {
		require.NoError(t, sink.Write(sampleEvent(typ)))
	}

	events, err := sink.Recent(3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, EventAttempt, events[0].EventType)
	require.Equal(t, EventSessionEnd, events[2].EventType)

	got := events[1]
	want := sampleEvent(EventLockout)
	require.True(t, want.Timestamp.Equal(got.Timestamp))
	got.Timestamp = want.Timestamp
	require.Equal(t, want, got)

	all, err := sink.Recent(0)
	require.NoError(t, err)
	require.Len(t, all, len(types))

	n, err := sink.CountBySession("sess-1")
	require.NoError(t, err)
	require.Equal(t, len(types), n)
}

func TestSQLiteSink_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Write(sampleEvent(EventAttempt)))
	require.NoError(t, sink.Close())
	require.ErrorIs(t, sink.Write(sampleEvent(EventAttempt)), ErrSinkClosed)

	sink, err = NewSQLiteSink(path)
	require.NoError(t, err)
	defer sink.Close()

	events, err := sink.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

// =============================================================================
// MEMORY SINK
// =============================================================================

func TestMemorySink(t *testing.T) {
	m := &MemorySink{}
	require.NoError(t, m.Write(sampleEvent(EventSessionStart)))
	require.NoError(t, m.Write(sampleEvent(EventAttempt)))
	require.Equal(t, []string{EventSessionStart, EventAttempt}, m.Types())

	recent, err := m.Recent(1)
	require.NoError(t, err)
	require.Equal(t, EventAttempt, recent[0].EventType)

	require.NoError(t, m.Close())
	require.ErrorIs(t, m.Write(sampleEvent(EventAttempt)), ErrSinkClosed)
}
