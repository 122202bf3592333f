// Package agent owns the query-to-action control loop: it sends a query
// to the provider, dispatches on the classified response, and folds the
// outcome back into conversation history.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prudhvi1709/smart-cli/internal/ai"
	"github.com/prudhvi1709/smart-cli/internal/executor"
	"github.com/prudhvi1709/smart-cli/internal/safety"
	"github.com/prudhvi1709/smart-cli/internal/types"
	"github.com/prudhvi1709/smart-cli/internal/workspace"
)

// State tracks where the loop is within one turn.
type State int

const (
	StateAwaitingInput State = iota
	StateDispatching
	StateDisplaying
	StateExecuting
	StateToolCalling
	StateRequestingContext
	StateExited
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateDispatching:
		return "dispatching"
	case StateDisplaying:
		return "displaying"
	case StateExecuting:
		return "executing"
	case StateToolCalling:
		return "tool_calling"
	case StateRequestingContext:
		return "requesting_context"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// ToolBridge is the part of the MCP layer the loop needs. Nil means no
// tool servers were configured.
type ToolBridge interface {
	Tools() []ai.ToolDescriptor
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// Options control one session's dispatch behavior. Resolved once at
// startup and read-only afterwards.
type Options struct {
	ExecutionEnabled bool
	Force            bool
	Interpreter      string
	Timeout          time.Duration // execution budget
	ChatTimeout      time.Duration // per provider call; zero means no deadline
	WorkDir          string
	HistoryTurns     int
}

// Outcome is everything one completed turn produced. RunErr and ToolErr
// are reportable, never fatal to the loop.
type Outcome struct {
	Envelope   *types.ResponseEnvelope
	Analysis   *safety.Analysis
	Blocked    bool
	Result     *types.ExecutionResult
	RunErr     error
	ToolResult string
	ToolErr    error
	ParseErr   error
}

// Session holds the loop state for one process run. History is
// in-memory and append-only; nothing survives the process.
type Session struct {
	provider ai.Provider
	bridge   ToolBridge
	opts     Options
	history  []types.ConversationTurn
	state    State
}

func NewSession(provider ai.Provider, bridge ToolBridge, opts Options) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = executor.DefaultTimeout
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = 10
	}
	return &Session{
		provider: provider,
		bridge:   bridge,
		opts:     opts,
		state:    StateAwaitingInput,
	}
}

func (s *Session) State() State { return s.state }

// History returns a copy of the conversation so far.
func (s *Session) History() []types.ConversationTurn {
	out := make([]types.ConversationTurn, len(s.history))
	copy(out, s.history)
	return out
}

// Exit moves the session to its terminal state.
func (s *Session) Exit() { s.state = StateExited }

// Step runs one full turn: classify the query, dispatch on the result,
// and append exactly one user turn and one assistant or tool turn. A
// returned error is a provider failure; the caller decides whether it
// ends the process (single-shot) or just the turn (interactive).
func (s *Session) Step(ctx context.Context, query string) (*Outcome, error) {
	s.state = StateDispatching

	summaries := workspace.Probe(s.opts.WorkDir, query)
	var tools []ai.ToolDescriptor
	if s.bridge != nil {
		tools = s.bridge.Tools()
	}

	env, raw, err := s.classify(ctx, query, summaries, tools)
	if err != nil {
		s.state = StateAwaitingInput
		return nil, err
	}

	outcome := &Outcome{Envelope: env}
	if env.Malformed {
		outcome.ParseErr = &ParseError{Raw: raw}
	}

	switch env.Kind {
	case types.KindAnswer:
		s.state = StateDisplaying
		s.commit(query, types.RoleAssistant, env.Answer)

	case types.KindNeedContext:
		s.state = StateRequestingContext
		s.commit(query, types.RoleAssistant, env.ContextPrompt)
		// Caller gathers context and issues the follow-up query.
		return outcome, nil

	case types.KindCode:
		s.dispatchCode(ctx, query, env, raw, outcome)

	case types.KindToolCall:
		s.dispatchTool(ctx, query, env, outcome)

	default:
		s.state = StateDisplaying
		s.commit(query, types.RoleAssistant, env.Answer)
	}

	s.state = StateAwaitingInput
	return outcome, nil
}

// FollowUpQuery builds the re-query issued after the user supplies the
// context the model asked for.
func FollowUpQuery(context, original string) string {
	return fmt.Sprintf("Context provided: %s. Original query: %s", context, original)
}

// chat runs one provider call under the chat deadline. The deadline
// covers only the model round trip, never code execution, so a long
// execution budget is not truncated by the model timeout.
func (s *Session) chat(ctx context.Context, messages []ai.Message) (string, error) {
	if s.opts.ChatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ChatTimeout)
		defer cancel()
	}
	return s.provider.Chat(ctx, messages)
}

func (s *Session) classify(ctx context.Context, query string, summaries []types.FileSummary, tools []ai.ToolDescriptor) (*types.ResponseEnvelope, string, error) {
	messages := ai.BuildMessages(query, s.history, summaries, tools, s.opts.HistoryTurns)
	raw, err := s.chat(ctx, messages)
	if err != nil {
		return nil, "", err
	}

	env := ai.Parse(raw)
	if !env.Malformed {
		return env, raw, nil
	}

	// One retry for a bare tag with no body.
	retry := "Please provide a complete response. Original query: " + query
	messages = ai.BuildMessages(retry, s.history, summaries, tools, s.opts.HistoryTurns)
	raw2, err := s.chat(ctx, messages)
	if err != nil {
		return env, raw, nil
	}
	if env2 := ai.Parse(raw2); !env2.Malformed {
		return env2, raw2, nil
	}
	return env, raw, nil
}

func (s *Session) dispatchCode(ctx context.Context, query string, env *types.ResponseEnvelope, raw string, outcome *Outcome) {
	analysis := safety.Analyze(env.Language, env.Source)
	outcome.Analysis = &analysis

	if !s.opts.ExecutionEnabled {
		s.state = StateDisplaying
		s.commit(query, types.RoleAssistant, raw)
		return
	}
	if analysis.Blocked() && !s.opts.Force {
		outcome.Blocked = true
		s.state = StateDisplaying
		s.commit(query, types.RoleAssistant, raw)
		return
	}

	s.state = StateExecuting
	exec, err := executor.ForLanguage(env.Language, s.opts.Interpreter, s.opts.Timeout)
	if err != nil {
		outcome.RunErr = err
		s.commit(query, types.RoleAssistant, raw)
		return
	}
	exec.Dir = s.opts.WorkDir

	result, runErr := exec.Run(ctx, env.Source)
	outcome.Result = result
	outcome.RunErr = runErr

	content := strings.TrimSpace(raw)
	if result != nil {
		content += "\n\nExecution output:\n" + foldOutput(result)
	}
	s.commit(query, types.RoleAssistant, content)
}

func (s *Session) dispatchTool(ctx context.Context, query string, env *types.ResponseEnvelope, outcome *Outcome) {
	s.state = StateToolCalling

	if s.bridge == nil {
		outcome.ToolErr = fmt.Errorf("tool %s requested but no tool servers are connected", env.ToolName)
		s.commit(query, types.RoleTool, "Tool error: "+outcome.ToolErr.Error())
		return
	}

	result, err := s.bridge.CallTool(ctx, env.ToolName, env.ToolArgs)
	outcome.ToolResult = result
	outcome.ToolErr = err

	content := result
	if err != nil {
		content = "Tool error: " + err.Error()
		if result != "" {
			content += "\n" + result
		}
	}
	s.commit(query, types.RoleTool, content)
}

// commit appends the turn pair for one completed query.
func (s *Session) commit(query string, role types.Role, content string) {
	now := time.Now()
	s.history = append(s.history,
		types.ConversationTurn{Role: types.RoleUser, Content: query, Timestamp: now},
		types.ConversationTurn{Role: role, Content: content, Timestamp: now},
	)
}

func foldOutput(result *types.ExecutionResult) string {
	var sb strings.Builder
	if result.Stdout != "" {
		sb.WriteString(result.Stdout)
	}
	if result.Stderr != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("stderr: ")
		sb.WriteString(result.Stderr)
	}
	if result.TimedOut {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("(execution timed out)")
	}
	if sb.Len() == 0 {
		return "(no output)"
	}
	return sb.String()
}
