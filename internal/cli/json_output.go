// json_output.go - JSON output envelope for scripted use.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeranaias/credguard/internal/audit"
	"github.com/jeranaias/credguard/internal/config"
	"github.com/jeranaias/credguard/internal/guard"
)

// JSONResponse is the envelope every --json command prints.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC 3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
func (r *JSONResponse) Print() error {
	return r.WriteTo(os.Stdout)
}

// WriteTo writes the indented response to w.
func (r *JSONResponse) WriteTo(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// ScoreData represents the data returned by the score command.
type ScoreData struct {
	guard.Breakdown
	Threshold     int  `json:"threshold"`
	WouldLock     bool `json:"would_lock"`
	Exact         bool `json:"exact"`
	SecretTrimmed bool `json:"secret_trimmed"`
}

// SimulateStep is one guess of a simulation.
type SimulateStep struct {
	Index  int          `json:"index"`
	Guess  string       `json:"guess"`
	Result guard.Result `json:"result"`
}

// SimulateData represents the data returned by the simulate command.
type SimulateData struct {
	SecretLength int            `json:"secret_length"`
	Steps        []SimulateStep `json:"steps"`
	Final        guard.State    `json:"final"`
	Events       []audit.Event  `json:"events,omitempty"`
}

// AuditData represents the data returned by the audit command.
type AuditData struct {
	Backend string        `json:"backend"`
	Path    string        `json:"path"`
	Events  []audit.Event `json:"events"`
}

// ConfigData represents the data returned by the config command.
type ConfigData struct {
	Path   string         `json:"config_path"`
	Exists bool           `json:"exists"`
	Config *config.Config `json:"config,omitempty"`
}

// CheckData represents the data returned by the check command.
type CheckData struct {
	SessionID string      `json:"session_id"`
	Matched   bool        `json:"matched"`
	State     guard.State `json:"state"`
	Attempts  int         `json:"attempts"`
}
