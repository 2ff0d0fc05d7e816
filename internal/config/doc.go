// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for credguard.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - GuardConfig: Secret source and input normalization
//   - AuditConfig: Audit sink selection
//   - SessionConfig: Attempt pacing
//
// # Configuration Precedence
//
//   - Environment variables (CREDGUARD_*)
//   - ~/.credguard/config.toml (or $CREDGUARD_HOME/config.toml)
//   - ~/.credguard/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	secret, err := cfg.ResolveSecret()
package config
