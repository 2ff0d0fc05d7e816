// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Event types.
const (
	EventGuardCreated   = "GUARD_CREATED"
	EventSessionStart   = "SESSION_START"
	EventSessionEnd     = "SESSION_END"
	EventAttempt        = "AUTH_ATTEMPT"
	EventLockout        = "AUTH_LOCKOUT"
	EventAttemptBlocked = "AUTH_ATTEMPT_BLOCKED"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp   time.Time         `json:"timestamp"`
	EventType   string            `json:"event_type"`
	SessionID   string            `json:"session_id"`
	Success     bool              `json:"success"`
	Distance    int               `json:"distance,omitempty"`
	Remaining   int               `json:"remaining"`
	Status      string            `json:"status,omitempty"`
	Trigger     string            `json:"trigger,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ToLogLine formats the event as a single pipe-separated line.
func (e *Event) ToLogLine() string {
	timestamp := e.Timestamp.Format("2006-01-02 15:04:05")

	status := "SUCCESS"
	if !e.Success {
		status = "FAILURE"
	}

	var meta []string
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		meta = append(meta, fmt.Sprintf("%s=%s", k, sanitizeField(e.Metadata[k])))
	}

	return fmt.Sprintf("%s | %s | %s | %s | d=%d | r=%d | %s | %s | %s | %s",
		timestamp,
		sanitizeField(e.EventType),
		sanitizeField(e.SessionID),
		sanitizeField(e.Fingerprint),
		e.Distance,
		e.Remaining,
		sanitizeField(e.Status),
		sanitizeField(e.Trigger),
		status,
		strings.Join(meta, " "),
	)
}

// ToJSON formats the event as JSON.
func (e *Event) ToJSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sanitizeField keeps one event on one line.
func sanitizeField(s string) string {
	return strings.NewReplacer("\n", `\n`, "\r", `\r`, "|", `\|`).Replace(s)
}
