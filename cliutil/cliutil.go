// Package cliutil provides common utilities shared by pvl-translate and
// pvl-validate: file-or-stdin input handling, styled status lines, and the
// overwrite confirmation prompt.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
)

// PrintSuccess writes a green checkmark line to w.
func PrintSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

// PrintError writes a red cross line to w.
func PrintError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

// PrintInfof writes a formatted informational line to w.
func PrintInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// PromptYesNo asks question interactively, returning false without
// prompting when stdin is not a terminal (e.g. piped input, CI).
func PromptYesNo(question string) (bool, error) {
	if !IsTerminal() {
		return false, nil
	}

	var confirm bool
	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("cliutil: read confirmation: %w", err)
	}
	return confirm, nil
}

// IsTerminal reports whether stdin is an interactive terminal.
func IsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// IsOutputTerminal reports whether w is a terminal capable of displaying
// ANSI styling, so a caller can decide between routing output through
// output.Styles or falling back to a plain, colorless rendering (a file or
// a redirected pipe must never receive escape codes).
func IsOutputTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// FileOrStdin accepts either a file path or "-" for stdin as a kong
// positional argument. For stdin, Filename is "<stdin>" and Contents is
// populated eagerly (kong.MapperValue's Decode runs during flag parsing,
// before any command body sees the value); for a real file, Contents is
// left nil so callers can choose between reading the whole file
// (LoadBytes-style, needed for the preamble's encoding fallback) and
// streaming it.
type FileOrStdin struct {
	Filename string
	Contents []byte
}

// Decode implements kong.MapperValue.
func (f *FileOrStdin) Decode(ctx *kong.DecodeContext) error {
	var filename string
	if err := ctx.Scan.PopValueInto("filename", &filename); err != nil {
		return err
	}

	if filename == "-" || filename == "" {
		contents, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("cliutil: read stdin: %w", err)
		}
		f.Filename = "<stdin>"
		f.Contents = contents
		return nil
	}

	if _, err := os.Stat(filename); err != nil {
		return err
	}
	f.Filename = filename
	return nil
}

// ReadAll returns the full contents, reading the underlying file lazily
// the first time it's needed.
func (f *FileOrStdin) ReadAll() ([]byte, error) {
	if f.Contents != nil || f.Filename == "<stdin>" {
		return f.Contents, nil
	}
	data, err := os.ReadFile(f.Filename)
	if err != nil {
		return nil, err
	}
	f.Contents = data
	return data, nil
}

// DisplayPath returns the absolute path for a real file, or "<stdin>".
func (f *FileOrStdin) DisplayPath() string {
	if f.Filename == "<stdin>" {
		return f.Filename
	}
	abs, err := filepath.Abs(f.Filename)
	if err != nil {
		return f.Filename
	}
	return abs
}
