package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Encode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes v to w as indented JSON or YAML.
func Encode(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (use json or yaml)", format)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ReadText returns the scenario text named by arg: a file path, or "-" for
// stdin. With no arg, piped stdin is read; an interactive stdin is an error.
func ReadText(arg string, stdin *os.File) (string, error) {
	switch {
	case arg == "-":
		return readAll(stdin)
	case arg != "":
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", arg, err)
		}
		return string(data), nil
	case !IsTerminal(stdin):
		return readAll(stdin)
	default:
		return "", errors.New("no input: pass a file, or pipe text on stdin")
	}
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// PrintSystemMessage writes a standardized status line to w.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
