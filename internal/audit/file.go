// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultMaxFileSize is the default max file size before rotation (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// FileSink appends events to a log file.
type FileSink struct {
	path    string
	format  string
	file    *os.File
	mu      sync.Mutex
	maxSize int64
}

// NewFileSink opens path for appending. format is "json" (default) or "text".
func NewFileSink(path, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path is empty")
	}
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "text" {
		return nil, fmt.Errorf("invalid audit format %q", format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &FileSink{
		path:    path,
		format:  format,
		file:    file,
		maxSize: DefaultMaxFileSize,
	}, nil
}

// Path returns the log file path.
func (s *FileSink) Path() string {
	return s.path
}

// SetMaxSize sets the file size that triggers rotation. 0 disables rotation.
func (s *FileSink) SetMaxSize(size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxSize = size
}

// Write appends event as one line and syncs the file.
func (s *FileSink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return ErrSinkClosed
	}
	if err := s.checkRotationLocked(); err != nil {
		return fmt.Errorf("audit rotation failed: %w", err)
	}

	line := event.ToLogLine()
	if s.format == "json" {
		var err error
		if line, err = event.ToJSON(); err != nil {
			return fmt.Errorf("failed to encode audit event: %w", err)
		}
	}
	if _, err := fmt.Fprintln(s.file, line); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	return nil
}

// Close closes the log file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Rotate moves the current log aside with a timestamp suffix.
func (s *FileSink) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotateLocked()
}

func (s *FileSink) rotateLocked() error {
	if s.file == nil {
		return ErrSinkClosed
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log for rotation: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405.000000000")
	ext := filepath.Ext(s.path)
	base := strings.TrimSuffix(s.path, ext)
	rotatedPath := fmt.Sprintf("%s_%s%s", base, timestamp, ext)

	if err := os.Rename(s.path, rotatedPath); err != nil {
		s.file, _ = os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create new audit log after rotation: %w", err)
	}
	s.file = file
	return nil
}

func (s *FileSink) checkRotationLocked() error {
	if s.maxSize <= 0 {
		return nil
	}
	info, err := s.file.Stat()
	if err != nil {
		return nil
	}
	if info.Size() >= s.maxSize {
		return s.rotateLocked()
	}
	return nil
}

// Recent returns up to n of the most recent events in the current file.
// Only JSON logs can be read back.
func (s *FileSink) Recent(n int) ([]Event, error) {
	if s.format != "json" {
		return nil, ErrNotQueryable
	}
	return ReadJSONLog(s.path, n)
}

// ReadJSONLog parses a JSON-lines audit log and returns up to n of its most
// recent events. Lines that do not parse are skipped.
func ReadJSONLog(path string, n int) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, nil
}
