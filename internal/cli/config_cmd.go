// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command implementation.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value (e.g. audit.backend)
//   path                Show the configuration file path
//   init [--force]      Write a default config.toml
//
// Flags:
//   --json              Output in JSON format
//
// Examples:
//   credguard config
//   credguard config get session.attempt_interval_ms
//   credguard config init

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/credguard/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	p := NewArgParser(args.Raw, "json", "force")
	jsonMode := args.JSON || p.BoolFlag("json")

	path := args.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ConfigPathTOML(); err != nil {
			return NewCommandError("config", "path", "cannot resolve config path", err)
		}
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil

	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "path":
		if jsonMode {
			return NewJSONResponse("config", ConfigData{Path: path, Exists: exists}).Print()
		}
		fmt.Println(path)
		return nil

	case "init":
		if exists && !p.BoolFlag("force") {
			return NewValidationErrorWithExample("config", path, "file already exists", "credguard config init --force")
		}
		cfg := config.Default()
		if err := config.SaveTOML(cfg, path); err != nil {
			return NewCommandError("config", "init", "cannot write config", err)
		}
		if jsonMode {
			return NewJSONResponse("config", ConfigData{Path: path, Exists: true, Config: cfg}).Print()
		}
		fmt.Printf("%s wrote %s\n", RenderConditional(SuccessStyle, "[OK]"), path)
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "credguard config get audit.backend")
		}
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		v, err := cfg.Get(key)
		if err != nil {
			return NewValidationErrorWithExample("key", key, err.Error(), "valid keys: "+strings.Join(config.Keys(), ", "))
		}
		if jsonMode {
			return NewJSONResponse("config", map[string]interface{}{key: v}).Print()
		}
		fmt.Println(v)
		return nil

	case "", "show":
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		if jsonMode {
			return NewJSONResponse("config", ConfigData{Path: path, Exists: exists, Config: cfg}).Print()
		}
		RenderConfig(os.Stdout, cfg, path, exists)
		return nil

	default:
		return NewValidationErrorWithExample("subcommand", sub, "unknown config subcommand", "credguard config show")
	}
}

// RenderConfig writes the effective configuration, one key per line.
// The secret itself is never shown, only where it comes from.
func RenderConfig(w io.Writer, cfg *config.Config, path string, exists bool) {
	fmt.Fprintln(w, RenderConditional(TitleStyle, "credguard configuration"))
	source := path
	if !exists {
		source += RenderConditional(DimStyle, " (not found, using defaults)")
	}
	fmt.Fprintf(w, "%s%s\n", RenderLabel("file"), source)
	fmt.Fprintln(w, RenderSeparator(40))

	for _, key := range config.Keys() {
		v, err := cfg.Get(key)
		if err != nil {
			continue
		}
		shown := fmt.Sprint(v)
		if shown == "" {
			shown = RenderConditional(DimStyle, "(unset)")
		}
		fmt.Fprintf(w, "%s%s\n", RenderLabel(key), shown)
	}
}
