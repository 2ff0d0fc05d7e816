// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing, usage text and the version/help handlers.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdCheck
	CmdScore
	CmdSimulate
	CmdAudit
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdCheck:
		return "check"
	case CmdScore:
		return "score"
	case CmdSimulate:
		return "simulate"
	case CmdAudit:
		return "audit"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool
	Quiet      bool
	NoColor    bool
	ConfigPath string

	// Name is the command word as typed, kept for error messages.
	Name string

	// Subcommand is the first argument after the command, if any.
	Subcommand string

	// Raw holds the command's arguments after global flags are removed.
	Raw []string
}

const usageText = `# credguard

Guard a single secret with a three-attempt budget and a near-miss lockout.

## Usage

    credguard [global flags] <command> [arguments]

## Commands

| Command | Description |
|---|---|
| ` + "`tui`" + ` | Interactive prompt (default) |
| ` + "`check`" + ` | Line-mode prompt, exits 0 on a match |
| ` + "`score <secret> <guess>`" + ` | Show how a guess is scored |
| ` + "`simulate <secret> <guess>...`" + ` | Run guesses against a fresh guard |
| ` + "`audit [tail N]`" + ` | Show recent audit events |
| ` + "`config [show\\|path\\|init]`" + ` | Inspect or create the config file |
| ` + "`version`" + ` | Print version information |
| ` + "`help`" + ` | Show this help |

## Global Flags

- ` + "`--json`" + ` machine-readable output
- ` + "`-q, --quiet`" + ` suppress decoration
- ` + "`--no-color`" + ` disable colors
- ` + "`--config PATH`" + ` load configuration from PATH

## Policy

- A fresh guard allows **3** attempts. A correct guess restores all 3.
- A wrong guess costs one attempt. Reaching 0 locks the guard.
- A guess more than **2** characters away from the secret locks the guard at once.
- Distance is the number of differing positions plus the length difference,
  capped at the secret's length.
- A locked guard stays locked. Correct guesses are rejected.
- Only the first 32 characters of the secret are used.

## Secret

The secret is read from ` + "`$CREDGUARD_SECRET`" + ` or the file named by
` + "`guard.secret_file`" + ` in ` + "`~/.credguard/config.toml`" + `.
Guesses that start with "-" must follow "--".

## Examples

    credguard score Secret Secrett
    credguard simulate Secret Secrett Secret Secretttt
    credguard simulate --json -- Secret -x
    CREDGUARD_SECRET=hunter2 credguard check
    credguard audit tail 20
`

// PrintUsage prints plain usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("credguard %s (commit %s, built %s, %s)\n", Version, GitCommit, BuildDate, runtime.Version())
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Name = cmd
	parsedArgs.Raw = remaining
	if len(remaining) > 0 {
		parsedArgs.Subcommand = remaining[0]
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs
	case "check", "login":
		return CmdCheck, parsedArgs
	case "score", "distance":
		return CmdScore, parsedArgs
	case "simulate", "sim":
		return CmdSimulate, parsedArgs
	case "audit":
		return CmdAudit, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "version", "-v", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags up to the command word.
// Flags after the command belong to the command.
func parseGlobalFlags(args []string) ([]string, Args) {
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "--json":
			parsedArgs.JSON = true
		case arg == "-q" || arg == "--quiet":
			parsedArgs.Quiet = true
		case arg == "--no-color":
			parsedArgs.NoColor = true
		case arg == "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		case strings.HasPrefix(arg, "--config="):
			parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			return args[i:], parsedArgs
		}
		i++
	}
	return nil, parsedArgs
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print()
	}
	PrintVersion()
	return nil
}

// HandleHelp handles the "help" command. On a color terminal the usage text
// is rendered as markdown.
func HandleHelp(args Args) error {
	if args.JSON || !ColorsEnabled() {
		PrintUsage()
		return nil
	}
	out, err := RenderHelp(GetTerminalWidth())
	if err != nil {
		PrintUsage()
		return nil
	}
	fmt.Print(out)
	return nil
}

// RenderHelp renders the usage text as styled markdown wrapped to width.
func RenderHelp(width int) (string, error) {
	if width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create help renderer: %w", err)
	}
	return r.Render(usageText)
}

// HandleUnknown reports an unknown command.
func HandleUnknown(args Args) error {
	return NewValidationErrorWithExample("command", args.Name, "unknown command", "credguard help")
}
