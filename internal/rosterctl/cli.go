package rosterctl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/inourx99/Englishcompition/pkg/logger"
)

// SetupLogging sends logs to stderr so command output stays clean.
// Only warnings and errors are shown unless verbose is set.
func SetupLogging(verbose bool) error {
	if err := logger.InitWithWriter(os.Stderr, "text"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "info"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for rosterctl.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `rosterctl
=========

Offline administration of the classroom points roster. Reads and writes the
same storage as the server, selected by ENGCOMP_* variables or ENGCOMP_CONFIG.
Stop the server before writing to file storage.

Usage:
  rosterctl [options] <command> [command options]

Options:
  -format string
        Output format: json or yaml (default "json")
  -driver string
        Storage driver override: file, sqlite or memory
  -path string
        Storage path override
  -verbose
        Enable info logging
  -help
        Show this help message

Commands:
  register -name NAME -grade 4|6
  award -id ID -kind KIND [-title TITLE] [-description TEXT]
  show -id ID
  leaderboard [-limit N]
  gallery
  catalog
  export [-format json|yaml]

Examples:
  rosterctl register -name "Sara Ali" -grade 6
  rosterctl award -id 3f0c... -kind PROJECT -title "Water cycle poster"
  rosterctl -format yaml leaderboard -limit 5
  rosterctl export -format yaml > roster.yaml
`)
}

// write encodes v to w in the requested format.
func write(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func validFormat(format string) bool {
	return format == FormatJSON || format == FormatYAML
}
