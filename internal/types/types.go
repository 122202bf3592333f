// Package types provides shared type definitions for smart-cli
package types

import "time"

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ConversationTurn is a single entry in the in-memory conversation history.
// Turns are append-only within a session and are discarded at process exit.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponseKind tags the variant of a parsed model response
type ResponseKind int

const (
	KindAnswer ResponseKind = iota
	KindCode
	KindNeedContext
	KindToolCall
)

func (k ResponseKind) String() string {
	switch k {
	case KindAnswer:
		return "answer"
	case KindCode:
		return "code"
	case KindNeedContext:
		return "need_context"
	case KindToolCall:
		return "tool_call"
	default:
		return "unknown"
	}
}

// ResponseEnvelope is the parsed result of one model call. Exactly one
// variant is active per turn; the dispatcher consumes it immediately.
type ResponseEnvelope struct {
	Kind ResponseKind

	// KindAnswer
	Answer string

	// KindCode
	Language    string
	Source      string
	Explanation string // surrounding prose and any extra fenced blocks

	// KindNeedContext
	ContextPrompt string

	// KindToolCall
	ToolName string
	ToolArgs map[string]any

	// Malformed is set when the response was a bare mode tag with no
	// content; the caller may re-ask once with clearer instructions.
	Malformed bool
}

// ExecutionResult describes exactly one code-execution attempt.
// Immutable once returned. TimedOut implies ExitCode is the -1 sentinel
// and stdout/stderr hold only output captured before termination.
type ExecutionResult struct {
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	TimedOut bool          `json:"timed_out"`
	WallTime time.Duration `json:"wall_time"`
}

// ProviderSelection is the provider/model choice resolved once at startup
// and read-only for the remainder of the process.
type ProviderSelection struct {
	ProviderName string `json:"provider_name"`
	ModelID      string `json:"model_id"`
	APIKeySource string `json:"api_key_source"` // flag, env var name, or config
}

// FileSummary is a lightweight textual description of a structured file,
// recomputed fresh each turn (a turn may reference a file that changed).
type FileSummary struct {
	Path             string `json:"path"`
	Format           string `json:"format"` // csv, tsv, json, jsonl, xlsx
	ShapeDescription string `json:"shape_description"`
	Sample           string `json:"sample"`
}

// RiskLevel grades generated code before execution
type RiskLevel int

const (
	RiskSafe RiskLevel = iota
	RiskCaution
	RiskDangerous
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskSafe:
		return "SAFE"
	case RiskCaution:
		return "CAUTION"
	case RiskDangerous:
		return "DANGEROUS"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// HistoryEntry records one processed query in the opt-in audit log
type HistoryEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Query      string    `json:"query"`
	Kind       string    `json:"kind"`
	Language   string    `json:"language,omitempty"`
	Executed   bool      `json:"executed"`
	ExitCode   int       `json:"exit_code"`
	TimedOut   bool      `json:"timed_out"`
	DurationMs int64     `json:"duration_ms"`
	WorkingDir string    `json:"working_dir"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
}
