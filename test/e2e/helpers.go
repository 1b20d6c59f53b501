// Package e2e provides end-to-end testing utilities for the bulkmv CLI
package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/substantialcattle5/bulkmv/testutil"
)

// Workspace is a temporary directory the bulkmv binary runs in
type Workspace struct {
	Path       string
	t          *testing.T
	binaryPath string
}

// NewWorkspace creates a temporary working directory for a test
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	testutil.SkipIfShort(t, "end-to-end tests build and run the binary")

	return &Workspace{
		Path:       t.TempDir(),
		t:          t,
		binaryPath: ensureBinary(t),
	}
}

// ensureBinary builds the bulkmv binary if it doesn't exist and returns its path
func ensureBinary(t *testing.T) string {
	t.Helper()

	projectRoot := getProjectRoot(t)
	binaryPath := filepath.Join(projectRoot, "bulkmv")

	if _, err := os.Stat(binaryPath); err == nil {
		return binaryPath
	}

	t.Logf("Building bulkmv binary...")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to build bulkmv binary: %v\nOutput: %s", err, output)
	}

	return binaryPath
}

// getProjectRoot finds the project root directory
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (no go.mod found)")
		}
		dir = parent
	}
}

// Apply renames from two lists written into the workspace's parent test
// directory, so the lists themselves are never renamed
func (w *Workspace) Apply(t *testing.T, oldLines, newLines []string, extraArgs ...string) (string, string, int) {
	t.Helper()

	lists := t.TempDir()
	oldPath := writeLines(t, lists, "old.txt", oldLines)
	newPath := writeLines(t, lists, "new.txt", newLines)

	args := []string{"apply", "--old", oldPath, "--new", newPath, "--no-color"}
	args = append(args, extraArgs...)
	return w.RunCommand(t, args...)
}

// RunCommand runs bulkmv in the workspace and returns its output and exit status
func (w *Workspace) RunCommand(t *testing.T, args ...string) (stdout, stderr string, status int) {
	t.Helper()

	cmd := exec.Command(w.binaryPath, args...)
	cmd.Dir = w.Path
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if exitErr, ok := err.(*exec.ExitError); ok {
		status = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("Failed to run bulkmv: %v", err)
	}

	// Log command execution for debugging
	if t.Failed() || testing.Verbose() {
		t.Logf("Command: bulkmv %s", strings.Join(args, " "))
		t.Logf("Working Dir: %s", w.Path)
		t.Logf("Exit Code: %d", status)
		if stdout != "" {
			t.Logf("Stdout:\n%s", stdout)
		}
		if stderr != "" {
			t.Logf("Stderr:\n%s", stderr)
		}
	}

	return stdout, stderr, status
}

// CreateFile creates a test file in the workspace
func (w *Workspace) CreateFile(t *testing.T, relativePath, content string) string {
	t.Helper()

	fullPath := filepath.Join(w.Path, relativePath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directories for %s: %v", relativePath, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", relativePath, err)
	}

	return fullPath
}

// AssertContent checks that relativePath holds expected
func (w *Workspace) AssertContent(t *testing.T, relativePath, expected string) {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(w.Path, relativePath))
	if err != nil {
		t.Errorf("Failed to read %s: %v", relativePath, err)
		return
	}
	if string(data) != expected {
		t.Errorf("%s: expected content %q, got %q", relativePath, expected, string(data))
	}
}

// AssertMissing checks that relativePath does not exist
func (w *Workspace) AssertMissing(t *testing.T, relativePath string) {
	t.Helper()

	if _, err := os.Lstat(filepath.Join(w.Path, relativePath)); err == nil {
		t.Errorf("%s should not exist", relativePath)
	}
}

func writeLines(t *testing.T, dir, name string, lines []string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// AssertOutputContains checks if output contains expected string
func AssertOutputContains(t *testing.T, output, expected, context string) {
	t.Helper()

	if !strings.Contains(output, expected) {
		t.Errorf("%s: output does not contain expected string.\nExpected substring: %q\nActual output:\n%s",
			context, expected, output)
	}
}

// AssertStatus checks the exit status of a command
func AssertStatus(t *testing.T, status, expected int, stderr, context string) {
	t.Helper()

	if status != expected {
		t.Fatalf("%s: expected exit status %d, got %d\nStderr: %s", context, expected, status, stderr)
	}
}
