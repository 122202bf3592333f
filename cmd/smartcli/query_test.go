// Save rendering tests for the smartcli CLI
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/prudhvi1709/smart-cli/internal/agent"
	"github.com/prudhvi1709/smart-cli/internal/types"
)

func TestSaveOutcome_Answer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	outcome := &agent.Outcome{
		Envelope: &types.ResponseEnvelope{
			Kind:   types.KindAnswer,
			Answer: "Paris is the capital of France.",
		},
	}

	if err := saveOutcome(path, "capital of France?", outcome); err != nil {
		t.Fatalf("saveOutcome failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// The saved file must equal the answer text exactly.
	if string(data) != "Paris is the capital of France." {
		t.Errorf("Saved content must equal the answer verbatim, got %q", string(data))
	}
}

func TestSaveOutcome_CodeWithOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	outcome := &agent.Outcome{
		Envelope: &types.ResponseEnvelope{
			Kind:     types.KindCode,
			Language: "python",
			Source:   "print(55)",
		},
		Result: &types.ExecutionResult{
			ExitCode: 0,
			Stdout:   "55\n",
			WallTime: 20 * time.Millisecond,
		},
	}

	if err := saveOutcome(path, "fibonacci", outcome); err != nil {
		t.Fatalf("saveOutcome failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.Contains(content, "print(55)") {
		t.Errorf("Expected the source, got %q", content)
	}
	if !strings.Contains(content, "Output:\n55") {
		t.Errorf("Expected the captured output, got %q", content)
	}
}

func TestSaveOutcome_TimedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	outcome := &agent.Outcome{
		Envelope: &types.ResponseEnvelope{Kind: types.KindCode, Language: "python", Source: "while True: pass"},
		Result:   &types.ExecutionResult{ExitCode: -1, TimedOut: true, Stdout: "partial\n"},
	}

	if err := saveOutcome(path, "loop forever", outcome); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "(execution timed out)") {
		t.Errorf("Expected a timeout marker, got %q", string(data))
	}
}

func TestShowCode_FlagResolution(t *testing.T) {
	cmd := &cobra.Command{}
	addRootFlags(cmd)

	// Default follows config (show).
	noShowCode = false
	if !showCode(cmd) {
		t.Error("Expected show-code by default")
	}

	noShowCode = true
	if showCode(cmd) {
		t.Error("Expected --no-show-code to win")
	}
	noShowCode = false
}
