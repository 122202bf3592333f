// Package executor runs generated code in a time-boxed subprocess.
//
// This is not a sandbox: the subprocess runs as the invoking user with
// full filesystem and network access, in the invocation's working
// directory so relative file references resolve. The wall-clock timeout
// is the only containment. Callers must treat generated code as
// trusted-enough-to-run.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

// DefaultTimeout bounds one code execution attempt
const DefaultTimeout = 30 * time.Second

// TimedOutExitCode is the ExitCode sentinel when the timeout fired
const TimedOutExitCode = -1

// Executor runs source text through an interpreter subprocess
type Executor struct {
	Interpreter string        // interpreter binary, e.g. "python3" or "sh"
	Args        []string      // extra interpreter args before the file path
	Suffix      string        // temp file suffix, e.g. ".py"
	Timeout     time.Duration // wall-clock budget; DefaultTimeout if zero
	Dir         string        // working directory; invocation cwd if empty
}

// ExecutionError reports that code ran and failed or exceeded the budget.
// It is never fatal to the interactive loop.
type ExecutionError struct {
	Result *types.ExecutionResult
}

func (e *ExecutionError) Error() string {
	if e.Result.TimedOut {
		return fmt.Sprintf("execution timed out after %s", e.Result.WallTime.Round(time.Millisecond))
	}
	return fmt.Sprintf("execution failed with exit code %d", e.Result.ExitCode)
}

// NewPython returns an executor for Python source
func NewPython(interpreter string, timeout time.Duration) *Executor {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &Executor{Interpreter: interpreter, Suffix: ".py", Timeout: timeout}
}

// NewShell returns an executor for shell source
func NewShell(timeout time.Duration) *Executor {
	return &Executor{Interpreter: "sh", Suffix: ".sh", Timeout: timeout}
}

// ForLanguage picks an executor for the language of a generated code block
func ForLanguage(language, pythonInterpreter string, timeout time.Duration) (*Executor, error) {
	switch language {
	case "", "python", "python3", "py":
		return NewPython(pythonInterpreter, timeout), nil
	case "sh", "bash", "shell", "zsh":
		return NewShell(timeout), nil
	default:
		return nil, fmt.Errorf("unsupported code language: %s", language)
	}
}

// Run writes source to a temporary file, executes it, and returns the
// captured result. The temporary file is removed on every exit path.
// On timeout the subprocess is forcibly terminated, TimedOut is set, and
// output captured up to the termination point is preserved.
func (e *Executor) Run(ctx context.Context, source string) (*types.ExecutionResult, error) {
	suffix := e.Suffix
	if suffix == "" {
		suffix = ".py"
	}

	tmp, err := os.CreateTemp("", "smartcli-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(source); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, e.Args...), tmpPath)
	cmd := exec.CommandContext(runCtx, e.Interpreter, args...)

	dir := e.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	result := &types.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		WallTime: elapsed,
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = TimedOutExitCode
		return result, &ExecutionError{Result: result}
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, &ExecutionError{Result: result}
		}
		// interpreter missing or failed to start
		return nil, fmt.Errorf("failed to run %s: %w", e.Interpreter, runErr)
	}

	return result, nil
}
