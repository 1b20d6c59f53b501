// Package editor lets the user rewrite a list of paths in an external text
// editor and retries until the result is acceptable.
package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"

	"github.com/substantialcattle5/bulkmv/internal/constants"
)

// ErrNoTerminal is returned when the editor would run without a terminal.
var ErrNoTerminal = errors.New("an interactive terminal is required to edit names")

// Resolve picks the editor command: the configured one, then $VISUAL, then
// $EDITOR, then vi.
func Resolve(configured string) string {
	for _, candidate := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return constants.DefaultEditor
}

// Editor runs Command on a temporary file.
type Editor struct {
	// Command may carry arguments, e.g. "code --wait".
	Command string
	Stdin   *os.File
	Stdout  io.Writer
	Stderr  io.Writer
	// TempDir defaults to the system temporary directory.
	TempDir string
	// RequireTerminal refuses to start when Stdin is not a terminal.
	RequireTerminal bool
}

// New returns an editor attached to the process's standard streams.
func New(command string) *Editor {
	return &Editor{
		Command:         Resolve(command),
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		RequireTerminal: true,
	}
}

// Edit writes lines to a temporary file, waits for the editor to exit and
// returns the file's lines.
func (e *Editor) Edit(ctx context.Context, lines []string) ([]string, error) {
	if e.RequireTerminal && (e.Stdin == nil || !term.IsTerminal(int(e.Stdin.Fd()))) {
		return nil, ErrNoTerminal
	}
	args := strings.Fields(e.Command)
	if len(args) == 0 {
		return nil, errors.New("no editor configured")
	}

	file, err := os.CreateTemp(e.TempDir, "bulkmv-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create edit buffer: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	w := bufio.NewWriter(file)
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write edit buffer: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to write edit buffer: %w", err)
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("editor %q failed: %w", e.Command, err)
	}

	return readLines(path)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read edit buffer: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}
