// Package executor tests
package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRun_CapturesStdout(t *testing.T) {
	e := NewShell(5 * time.Second)

	result, err := e.Run(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Errorf("Expected 'hello' on stdout, got %q", result.Stdout)
	}
	if result.TimedOut {
		t.Error("Expected no timeout")
	}
}

func TestRun_CapturesStderr(t *testing.T) {
	e := NewShell(5 * time.Second)

	result, err := e.Run(context.Background(), "echo oops >&2; exit 3")
	if err == nil {
		t.Fatal("Expected an error for non-zero exit")
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Expected ExecutionError, got %T", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", result.ExitCode)
	}
	if strings.TrimSpace(result.Stderr) != "oops" {
		t.Errorf("Expected 'oops' on stderr, got %q", result.Stderr)
	}
}

func TestRun_Timeout(t *testing.T) {
	e := NewShell(200 * time.Millisecond)

	result, err := e.Run(context.Background(), "echo partial; sleep 2; echo never")
	if err == nil {
		t.Fatal("Expected a timeout error")
	}

	if !result.TimedOut {
		t.Error("Expected TimedOut to be set")
	}
	if result.ExitCode != TimedOutExitCode {
		t.Errorf("Expected sentinel exit code %d, got %d", TimedOutExitCode, result.ExitCode)
	}
	if !strings.Contains(result.Stdout, "partial") {
		t.Errorf("Output before the kill should be preserved, got %q", result.Stdout)
	}
	if strings.Contains(result.Stdout, "never") {
		t.Errorf("Output after the kill should not appear, got %q", result.Stdout)
	}
}

func TestRun_TempFileRemoved(t *testing.T) {
	e := NewShell(5 * time.Second)
	// The script sees its own path as $0.
	result, err := e.Run(context.Background(), "echo $0")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	path := strings.TrimSpace(result.Stdout)
	if path == "" {
		t.Fatal("Expected the script path on stdout")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Temp file %s should be removed after execution", path)
	}
}

func TestRun_TempFileRemovedOnFailure(t *testing.T) {
	e := NewShell(5 * time.Second)

	result, err := e.Run(context.Background(), "echo $0; exit 1")
	if err == nil {
		t.Fatal("Expected an error")
	}

	path := strings.TrimSpace(result.Stdout)
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("Temp file %s should be removed after a failed run", path)
	}
}

func TestRun_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	e := NewShell(5 * time.Second)
	e.Dir = dir

	result, err := e.Run(context.Background(), "pwd")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := strings.TrimSpace(result.Stdout)
	want, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != want {
		t.Errorf("Expected cwd %s, got %s", want, got)
	}
}

func TestForLanguage(t *testing.T) {
	tests := []struct {
		language    string
		interpreter string
		wantErr     bool
	}{
		{"python", "python3", false},
		{"py", "python3", false},
		{"", "python3", false},
		{"bash", "sh", false},
		{"sh", "sh", false},
		{"zsh", "sh", false},
		{"rust", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			e, err := ForLanguage(tt.language, "python3", time.Second)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected an error for unsupported language")
				}
				return
			}
			if err != nil {
				t.Fatalf("ForLanguage failed: %v", err)
			}
			if e.Interpreter != tt.interpreter {
				t.Errorf("Expected interpreter %s, got %s", tt.interpreter, e.Interpreter)
			}
		})
	}
}

func TestExecutionError_Message(t *testing.T) {
	e := NewShell(time.Second)
	_, err := e.Run(context.Background(), "exit 7")
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "exit code 7") {
		t.Errorf("Unexpected error text: %v", err)
	}
}
