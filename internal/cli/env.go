// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Shared setup: config loading, audit sink and session wiring.

package cli

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/credguard/internal/audit"
	"github.com/jeranaias/credguard/internal/config"
	"github.com/jeranaias/credguard/internal/session"
)

// LoadConfig loads configuration for a command and applies its color
// setting. It also installs the result as the global config.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.NoColor {
		cfg.UI.Color = "never"
	}
	SetColorMode(cfg.UI.Color)
	config.SetGlobal(cfg)
	return cfg, nil
}

// OpenSink opens the audit sink selected by cfg.
func OpenSink(cfg *config.Config) (audit.Sink, error) {
	if !cfg.Audit.Enabled {
		return audit.NopSink{}, nil
	}
	path, err := cfg.AuditPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve audit path: %w", err)
	}
	sink, err := audit.Open(audit.Options{
		Enabled: cfg.Audit.Enabled,
		Backend: cfg.Audit.Backend,
		Path:    path,
		Format:  cfg.Audit.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit sink: %w", err)
	}
	return sink, nil
}

// Limiter returns the attempt limiter described by cfg, or nil when pacing
// is disabled.
func Limiter(cfg *config.Config) *rate.Limiter {
	if cfg.Session.AttemptIntervalMs <= 0 {
		return nil
	}
	burst := cfg.Session.AttemptBurst
	if burst < 1 {
		burst = 1
	}
	interval := time.Duration(cfg.Session.AttemptIntervalMs) * time.Millisecond
	return rate.NewLimiter(rate.Every(interval), burst)
}

// NewSession resolves the configured secret and opens a session around it.
// source is recorded in every audit event ("check", "tui").
func NewSession(cfg *config.Config, source string) (*session.Session, error) {
	secret, err := cfg.ResolveSecret()
	if err != nil {
		return nil, err
	}
	sink, err := OpenSink(cfg)
	if err != nil {
		return nil, err
	}
	return session.New(secret,
		session.WithSink(sink),
		session.WithLimiter(Limiter(cfg)),
		session.WithNormalization(cfg.Guard.Normalize),
		session.WithMetadata("source", source),
	), nil
}
