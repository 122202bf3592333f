// Package agent control loop tests
package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prudhvi1709/smart-cli/internal/ai"
	"github.com/prudhvi1709/smart-cli/internal/types"
)

type mockProvider struct {
	responses []string
	calls     int
	err       error
}

func (m *mockProvider) Name() string  { return "mock" }
func (m *mockProvider) Model() string { return "mock-1" }

func (m *mockProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	idx := m.calls
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.calls++
	return m.responses[idx], nil
}

func (m *mockProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-1"}, nil
}

type mockBridge struct {
	tools    []ai.ToolDescriptor
	result   string
	err      error
	lastName string
	lastArgs map[string]any
}

func (b *mockBridge) Tools() []ai.ToolDescriptor { return b.tools }

func (b *mockBridge) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	b.lastName = name
	b.lastArgs = args
	return b.result, b.err
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		ExecutionEnabled: true,
		Interpreter:      "python3",
		Timeout:          5 * time.Second,
		WorkDir:          t.TempDir(),
		HistoryTurns:     10,
	}
}

func TestStep_DirectAnswer(t *testing.T) {
	provider := &mockProvider{responses: []string{"DIRECT_ANSWER: Paris."}}
	session := NewSession(provider, nil, testOptions(t))

	outcome, err := session.Step(context.Background(), "capital of France?")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if outcome.Envelope.Kind != types.KindAnswer {
		t.Fatalf("Expected KindAnswer, got %v", outcome.Envelope.Kind)
	}
	if outcome.Envelope.Answer != "Paris." {
		t.Errorf("Unexpected answer: %q", outcome.Envelope.Answer)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(history))
	}
	if history[0].Role != types.RoleUser || history[1].Role != types.RoleAssistant {
		t.Errorf("Unexpected roles: %v, %v", history[0].Role, history[1].Role)
	}
}

func TestStep_CodeExecution(t *testing.T) {
	// Shell source keeps the test hermetic: no python needed.
	provider := &mockProvider{responses: []string{"CODE_EXECUTION:\n```sh\necho 55\n```"}}
	session := NewSession(provider, nil, testOptions(t))

	outcome, err := session.Step(context.Background(), "calculate the 10th fibonacci number")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if outcome.Envelope.Kind != types.KindCode {
		t.Fatalf("Expected KindCode, got %v", outcome.Envelope.Kind)
	}
	if outcome.Result == nil {
		t.Fatal("Expected an execution result")
	}
	if strings.TrimSpace(outcome.Result.Stdout) != "55" {
		t.Errorf("Expected '55' on stdout, got %q", outcome.Result.Stdout)
	}
	if outcome.Result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", outcome.Result.ExitCode)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(history))
	}
	if !strings.Contains(history[1].Content, "55") {
		t.Errorf("Execution output should fold into history, got %q", history[1].Content)
	}
}

func TestStep_NoExecute(t *testing.T) {
	provider := &mockProvider{responses: []string{"CODE_EXECUTION:\n```sh\necho 55\n```"}}
	opts := testOptions(t)
	opts.ExecutionEnabled = false
	session := NewSession(provider, nil, opts)

	outcome, err := session.Step(context.Background(), "fibonacci")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if outcome.Envelope.Kind != types.KindCode {
		t.Fatalf("Expected KindCode, got %v", outcome.Envelope.Kind)
	}
	if outcome.Result != nil {
		t.Error("Code must not run when execution is disabled")
	}
}

func TestStep_NeedContext(t *testing.T) {
	provider := &mockProvider{responses: []string{"NEED_CONTEXT: Which directory?"}}
	session := NewSession(provider, nil, testOptions(t))

	outcome, err := session.Step(context.Background(), "clean up old files")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if outcome.Envelope.Kind != types.KindNeedContext {
		t.Fatalf("Expected KindNeedContext, got %v", outcome.Envelope.Kind)
	}
	if outcome.Envelope.ContextPrompt != "Which directory?" {
		t.Errorf("Unexpected prompt: %q", outcome.Envelope.ContextPrompt)
	}
	if outcome.Result != nil {
		t.Error("Nothing should execute on a context request")
	}
	if session.State() != StateRequestingContext {
		t.Errorf("Expected requesting_context state, got %v", session.State())
	}
}

func TestStep_Timeout(t *testing.T) {
	provider := &mockProvider{responses: []string{"CODE_EXECUTION:\n```sh\necho partial; sleep 2\n```"}}
	opts := testOptions(t)
	opts.Timeout = 200 * time.Millisecond
	session := NewSession(provider, nil, opts)

	outcome, err := session.Step(context.Background(), "long computation")
	if err != nil {
		t.Fatalf("Step should not fail the loop on timeout: %v", err)
	}

	if outcome.Result == nil {
		t.Fatal("Expected a result with partial output")
	}
	if !outcome.Result.TimedOut {
		t.Error("Expected TimedOut")
	}
	if !strings.Contains(outcome.Result.Stdout, "partial") {
		t.Errorf("Partial output should be preserved, got %q", outcome.Result.Stdout)
	}
	if outcome.RunErr == nil {
		t.Error("Expected a reportable run error")
	}
}

func TestStep_ChatTimeoutSparesExecution(t *testing.T) {
	provider := &mockProvider{responses: []string{"CODE_EXECUTION:\n```sh\nsleep 1; echo done\n```"}}
	opts := testOptions(t)
	opts.ChatTimeout = 100 * time.Millisecond
	session := NewSession(provider, nil, opts)

	outcome, err := session.Step(context.Background(), "slow script")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	// The chat deadline bounds the provider call only; execution runs
	// under its own budget even when it outlasts the chat deadline.
	if outcome.Result == nil {
		t.Fatal("Expected an execution result")
	}
	if outcome.Result.TimedOut {
		t.Error("Execution must not be cut short by the chat deadline")
	}
	if outcome.Result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", outcome.Result.ExitCode)
	}
	if !strings.Contains(outcome.Result.Stdout, "done") {
		t.Errorf("Expected full output, got %q", outcome.Result.Stdout)
	}
}

func TestStep_ToolCall(t *testing.T) {
	provider := &mockProvider{responses: []string{`TOOL_CALL: {"tool": "read_file", "arguments": {"path": "/tmp/x"}}`}}
	bridge := &mockBridge{
		tools:  []ai.ToolDescriptor{{Name: "read_file", Description: "Read a file"}},
		result: "file contents",
	}
	session := NewSession(provider, bridge, testOptions(t))

	outcome, err := session.Step(context.Background(), "read /tmp/x")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if outcome.Envelope.Kind != types.KindToolCall {
		t.Fatalf("Expected KindToolCall, got %v", outcome.Envelope.Kind)
	}
	if bridge.lastName != "read_file" {
		t.Errorf("Expected read_file to be called, got %q", bridge.lastName)
	}
	if outcome.ToolResult != "file contents" {
		t.Errorf("Unexpected tool result: %q", outcome.ToolResult)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(history))
	}
	if history[1].Role != types.RoleTool {
		t.Errorf("Tool result should append a tool turn, got %v", history[1].Role)
	}
}

func TestStep_ToolCallNoBridge(t *testing.T) {
	provider := &mockProvider{responses: []string{`TOOL_CALL: {"tool": "read_file", "arguments": {}}`}}
	session := NewSession(provider, nil, testOptions(t))

	outcome, err := session.Step(context.Background(), "read something")
	if err != nil {
		t.Fatalf("A missing bridge must not end the loop: %v", err)
	}
	if outcome.ToolErr == nil {
		t.Error("Expected a tool error with no servers connected")
	}
}

func TestStep_ToolCallFailureKeepsLoopAlive(t *testing.T) {
	provider := &mockProvider{responses: []string{`TOOL_CALL: {"tool": "flaky", "arguments": {}}`}}
	bridge := &mockBridge{
		tools: []ai.ToolDescriptor{{Name: "flaky"}},
		err:   errors.New("server went away"),
	}
	session := NewSession(provider, bridge, testOptions(t))

	outcome, err := session.Step(context.Background(), "use the flaky tool")
	if err != nil {
		t.Fatalf("Tool failure must not end the loop: %v", err)
	}
	if outcome.ToolErr == nil {
		t.Error("Expected the tool error to surface in the outcome")
	}

	// Error text folds into history for the next prompt.
	history := session.History()
	if !strings.Contains(history[1].Content, "server went away") {
		t.Errorf("Tool error should fold into history, got %q", history[1].Content)
	}
}

func TestStep_MalformedRetry(t *testing.T) {
	provider := &mockProvider{responses: []string{"DIRECT_ANSWER:", "DIRECT_ANSWER: complete now"}}
	session := NewSession(provider, nil, testOptions(t))

	outcome, err := session.Step(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if provider.calls != 2 {
		t.Errorf("Expected one retry, got %d calls", provider.calls)
	}
	if outcome.Envelope.Answer != "complete now" {
		t.Errorf("Expected the retried answer, got %q", outcome.Envelope.Answer)
	}
	if outcome.ParseErr != nil {
		t.Error("A successful retry should clear the parse error")
	}
}

func TestStep_MalformedTwice(t *testing.T) {
	provider := &mockProvider{responses: []string{"TOOL_CALL:"}}
	session := NewSession(provider, nil, testOptions(t))

	outcome, err := session.Step(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if outcome.Envelope.Kind != types.KindAnswer {
		t.Errorf("Persistent malformed output should degrade to answer, got %v", outcome.Envelope.Kind)
	}
	if outcome.ParseErr == nil {
		t.Error("Expected a parse error annotation")
	}
}

func TestStep_SafetyBlock(t *testing.T) {
	provider := &mockProvider{responses: []string{"CODE_EXECUTION:\n```sh\nrm -rf /important\n```"}}
	session := NewSession(provider, nil, testOptions(t))

	outcome, err := session.Step(context.Background(), "delete everything")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if !outcome.Blocked {
		t.Error("Expected the safety scan to block execution")
	}
	if outcome.Result != nil {
		t.Error("Blocked code must not run")
	}
}

func TestStep_ProviderError(t *testing.T) {
	provider := &mockProvider{err: errors.New("connection refused")}
	session := NewSession(provider, nil, testOptions(t))

	_, err := session.Step(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected the provider error to surface")
	}
	if len(session.History()) != 0 {
		t.Error("A failed turn must not append history")
	}
}

func TestStep_MultiTurnHistory(t *testing.T) {
	provider := &mockProvider{responses: []string{"DIRECT_ANSWER: one", "DIRECT_ANSWER: two"}}
	session := NewSession(provider, nil, testOptions(t))

	ctx := context.Background()
	if _, err := session.Step(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := session.Step(ctx, "second"); err != nil {
		t.Fatal(err)
	}

	history := session.History()
	if len(history) != 4 {
		t.Fatalf("Expected 4 turns after 2 steps, got %d", len(history))
	}
	for i, turn := range history {
		wantUser := i%2 == 0
		if wantUser && turn.Role != types.RoleUser {
			t.Errorf("Turn %d: expected user, got %v", i, turn.Role)
		}
		if !wantUser && turn.Role != types.RoleAssistant {
			t.Errorf("Turn %d: expected assistant, got %v", i, turn.Role)
		}
	}
}

func TestFollowUpQuery(t *testing.T) {
	got := FollowUpQuery("the sales one", "plot the csv")
	want := "Context provided: the sales one. Original query: plot the csv"
	if got != want {
		t.Errorf("FollowUpQuery = %q, want %q", got, want)
	}
}

func TestSessionExit(t *testing.T) {
	provider := &mockProvider{responses: []string{"DIRECT_ANSWER: hi"}}
	session := NewSession(provider, nil, testOptions(t))

	session.Exit()
	if session.State() != StateExited {
		t.Errorf("Expected exited state, got %v", session.State())
	}
}
