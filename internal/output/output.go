// Package output centralizes CLI output modes and exit codes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Exit codes shared by all commands.
const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitNotFound = 2
	ExitTimeout  = 3
)

var (
	jsonMode  bool
	quietMode bool
)

// SetJSON toggles machine-readable output for the process lifetime.
func SetJSON(v bool) { jsonMode = v }

// SetQuiet suppresses informational output.
func SetQuiet(v bool) { quietMode = v }

func IsJSON() bool  { return jsonMode }
func IsQuiet() bool { return quietMode }

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintError writes a structured error record for JSON consumers.
func PrintError(w io.Writer, code, message string) {
	PrintJSON(w, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
