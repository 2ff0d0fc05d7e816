// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for credguard.
//
// Configuration file locations (in order of precedence):
//   - Environment variables (CREDGUARD_*)
//   - ~/.credguard/config.toml
//   - ~/.credguard/config.json
//   - Built-in defaults
package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/credguard/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete credguard configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Guard   GuardConfig   `toml:"guard" json:"guard"`
	Audit   AuditConfig   `toml:"audit" json:"audit"`
	Session SessionConfig `toml:"session" json:"session"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// GuardConfig controls where the secret comes from and how input is compared.
type GuardConfig struct {
	// SecretEnv names the environment variable holding the secret.
	SecretEnv string `toml:"secret_env" json:"secret_env"`
	// SecretFile is read when SecretEnv is unset or empty. Only the first
	// line is used.
	SecretFile string `toml:"secret_file" json:"secret_file"`
	// Normalize is the Unicode form applied to the secret and every guess:
	// "none", "nfc" or "nfkc".
	Normalize string `toml:"normalize" json:"normalize"`
}

// AuditConfig controls the attempt audit trail.
type AuditConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend" json:"backend"`
	// Path of the log file or database. Empty selects a file in ConfigDir.
	Path string `toml:"path" json:"path"`
	// Format is "json" or "text". Only used by the file backend.
	Format string `toml:"format" json:"format"`
}

// SessionConfig paces attempts made through a session.
type SessionConfig struct {
	// AttemptIntervalMs is the minimum spacing between attempts. 0 disables pacing.
	AttemptIntervalMs int `toml:"attempt_interval_ms" json:"attempt_interval_ms"`
	// AttemptBurst is how many attempts may be made back to back.
	AttemptBurst int `toml:"attempt_burst" json:"attempt_burst"`
}

// UIConfig contains terminal output settings.
type UIConfig struct {
	// Color is "auto", "always" or "never".
	Color string `toml:"color" json:"color"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// CurrentVersion is the config schema version written by Save.
	CurrentVersion = "1"

	// DefaultSecretEnv is the environment variable read for the secret.
	DefaultSecretEnv = "CREDGUARD_SECRET"

	// EnvHome overrides the configuration directory.
	EnvHome = "CREDGUARD_HOME"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Guard: GuardConfig{
			SecretEnv: DefaultSecretEnv,
			Normalize: "none",
		},
		Audit: AuditConfig{
			Enabled: true,
			Backend: "file",
			Format:  "json",
		},
		Session: SessionConfig{
			AttemptIntervalMs: 500,
			AttemptBurst:      1,
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the credguard configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".credguard"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists with 0700 permissions.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// AuditPath returns the configured audit path, or the backend default.
func (c *Config) AuditPath() (string, error) {
	if c.Audit.Path != "" {
		return c.Audit.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if c.Audit.Backend == "sqlite" {
		return filepath.Join(dir, "audit.db"), nil
	}
	return filepath.Join(dir, "audit.log"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory.
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML or JSON file.
// Missing keys keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := loadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := loadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

func loadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# credguard configuration file")
	fmt.Fprintln(&buf, "# Generated by credguard - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validNormalize = map[string]bool{"none": true, "nfc": true, "nfkc": true}
	validBackends  = map[string]bool{"file": true, "sqlite": true}
	validFormats   = map[string]bool{"json": true, "text": true}
	validColors    = map[string]bool{"auto": true, "always": true, "never": true}
)

// Validate checks the configuration and returns ValidateErrors on failure.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !validNormalize[strings.ToLower(c.Guard.Normalize)] {
		errs = append(errs, ValidationError{
			Field:   "guard.normalize",
			Message: fmt.Sprintf("invalid form '%s', must be one of: none, nfc, nfkc", c.Guard.Normalize),
		})
	}
	if c.Guard.SecretEnv != "" && strings.ContainsAny(c.Guard.SecretEnv, " =") {
		errs = append(errs, ValidationError{
			Field:   "guard.secret_env",
			Message: fmt.Sprintf("invalid environment variable name '%s'", c.Guard.SecretEnv),
		})
	}

	if !validBackends[strings.ToLower(c.Audit.Backend)] {
		errs = append(errs, ValidationError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite", c.Audit.Backend),
		})
	}
	if !validFormats[strings.ToLower(c.Audit.Format)] {
		errs = append(errs, ValidationError{
			Field:   "audit.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: json, text", c.Audit.Format),
		})
	}

	if c.Session.AttemptIntervalMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "session.attempt_interval_ms",
			Message: "must not be negative",
		})
	}
	if c.Session.AttemptBurst < 1 {
		errs = append(errs, ValidationError{
			Field:   "session.attempt_burst",
			Message: "must be at least 1",
		})
	}

	if !validColors[strings.ToLower(c.UI.Color)] {
		errs = append(errs, ValidationError{
			Field:   "ui.color",
			Message: fmt.Sprintf("invalid color mode '%s', must be one of: auto, always, never", c.UI.Color),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty string settings and lowercases enum values.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Guard.Normalize == "" {
		c.Guard.Normalize = d.Guard.Normalize
	}
	if c.Audit.Backend == "" {
		c.Audit.Backend = d.Audit.Backend
	}
	if c.Audit.Format == "" {
		c.Audit.Format = d.Audit.Format
	}
	if c.UI.Color == "" {
		c.UI.Color = d.UI.Color
	}
	c.Guard.Normalize = strings.ToLower(c.Guard.Normalize)
	c.Audit.Backend = strings.ToLower(c.Audit.Backend)
	c.Audit.Format = strings.ToLower(c.Audit.Format)
	c.UI.Color = strings.ToLower(c.UI.Color)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies CREDGUARD_* environment variables:
//
//   - CREDGUARD_SECRET_ENV: overrides guard.secret_env
//   - CREDGUARD_SECRET_FILE: overrides guard.secret_file
//   - CREDGUARD_NORMALIZE: overrides guard.normalize
//   - CREDGUARD_AUDIT: "0"/"false" disables auditing
//   - CREDGUARD_AUDIT_BACKEND: overrides audit.backend
//   - CREDGUARD_AUDIT_PATH: overrides audit.path
//   - CREDGUARD_ATTEMPT_INTERVAL_MS: overrides session.attempt_interval_ms
//   - NO_COLOR: forces ui.color = "never"
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CREDGUARD_SECRET_ENV"); v != "" {
		c.Guard.SecretEnv = v
	}
	if v := os.Getenv("CREDGUARD_SECRET_FILE"); v != "" {
		c.Guard.SecretFile = v
	}
	if v := os.Getenv("CREDGUARD_NORMALIZE"); v != "" {
		c.Guard.Normalize = v
	}
	if v := os.Getenv("CREDGUARD_AUDIT"); v != "" {
		c.Audit.Enabled = v == "1" || strings.ToLower(v) == "true"
	}
	if v := os.Getenv("CREDGUARD_AUDIT_BACKEND"); v != "" {
		c.Audit.Backend = v
	}
	if v := os.Getenv("CREDGUARD_AUDIT_PATH"); v != "" {
		c.Audit.Path = v
	}
	if v := os.Getenv("CREDGUARD_ATTEMPT_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Session.AttemptIntervalMs = ms
		}
	}
	if os.Getenv("NO_COLOR") != "" {
		c.UI.Color = "never"
	}
}

// =============================================================================
// SECRET RESOLUTION
// =============================================================================

// ErrNoSecret is returned by ResolveSecret when no source holds a secret.
var ErrNoSecret = errors.New("no secret configured")

// ResolveSecret reads the secret from guard.secret_env, then guard.secret_file.
// It returns ErrNoSecret if neither is set. An empty secret read from an
// existing file is valid.
func (c *Config) ResolveSecret() (string, error) {
	if c.Guard.SecretEnv != "" {
		if v, ok := os.LookupEnv(c.Guard.SecretEnv); ok {
			return v, nil
		}
	}
	if c.Guard.SecretFile == "" {
		return "", ErrNoSecret
	}

	f, err := os.Open(c.Guard.SecretFile)
	if err != nil {
		return "", fmt.Errorf("failed to open secret file: %w", err)
	}
	defer f.Close()

	// Only the first line counts, however long it is.
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value by its TOML key path (e.g. "audit.backend").
func (c *Config) Get(key string) (interface{}, error) {
	if key == "" {
		return nil, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return nil, fmt.Errorf("invalid key: %s", key)
}

// Keys returns every leaf key in dot notation.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.Split(f.Tag.Get("toml"), ",")[0]
			if prefix != "" {
				name = prefix + "." + name
			}
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name)
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if strings.EqualFold(name, tag) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// =============================================================================
// GLOBAL INSTANCE
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access and falls back to defaults on error.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
