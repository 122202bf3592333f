package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

// SystemPrompt is the fixed instruction preamble defining the response tags.
// The parser in parse.go depends on the exact tag spellings used here.
const SystemPrompt = `You are an intelligent assistant that handles queries in one of four modes. You MUST respond in exactly one of these formats:

FORMAT 1 - DIRECT_ANSWER: [Your explanation or answer here]
FORMAT 2 - CODE_EXECUTION: [Your Python code here]
FORMAT 3 - NEED_CONTEXT: [Your question for more information here]
FORMAT 4 - TOOL_CALL: {"tool": "<tool name>", "arguments": {...}}

RULES:
- ALWAYS start with the mode followed by a colon and space
- For CODE_EXECUTION: Generate clean, executable Python code
- For DIRECT_ANSWER: Provide explanations, facts, or analysis
- For NEED_CONTEXT: Ask specific questions when you need more information
- For TOOL_CALL: Use only tools from the available tool list, with a single JSON object
- For graphs/charts: Always save to file with descriptive names and timestamps
- Use pandas for CSV/Excel, json for JSON files, matplotlib for graphs
- Always use print() to show results and include proper error handling
- DO NOT include markdown formatting (` + "```python or ```" + `) in CODE_EXECUTION responses`

// ToolDescriptor describes one callable capability advertised to the model
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema any
}

// BuildMessages assembles the full prompt for one classification call:
// the instruction preamble, file summaries, the available tool catalog,
// the trailing historyTurns turns of conversation, and the query.
func BuildMessages(query string, history []types.ConversationTurn, summaries []types.FileSummary, tools []ToolDescriptor, historyTurns int) []Message {
	var system strings.Builder
	system.WriteString(SystemPrompt)

	if len(summaries) > 0 {
		system.WriteString("\n\nFILE CONTEXT:\n")
		for _, s := range summaries {
			system.WriteString(formatFileSummary(s))
		}
	}

	if len(tools) > 0 {
		system.WriteString("\n\nAVAILABLE TOOLS:\n")
		for _, t := range tools {
			system.WriteString("- " + t.Name)
			if t.Description != "" {
				system.WriteString(": " + t.Description)
			}
			system.WriteString("\n")
			if t.InputSchema != nil {
				if raw, err := json.Marshal(t.InputSchema); err == nil {
					system.WriteString("  input schema: " + string(raw) + "\n")
				}
			}
		}
	} else {
		system.WriteString("\n\nNo tools are available; never respond with TOOL_CALL.")
	}

	messages := []Message{{Role: "system", Content: system.String()}}

	start := 0
	if historyTurns > 0 && len(history) > historyTurns {
		start = len(history) - historyTurns
	}
	for _, turn := range history[start:] {
		role := string(turn.Role)
		if turn.Role == types.RoleTool {
			// providers without a native tool role still need the result text
			role = "user"
		}
		messages = append(messages, Message{Role: role, Content: turn.Content})
	}

	messages = append(messages, Message{Role: "user", Content: query})
	return messages
}

func formatFileSummary(s types.FileSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s (%s): %s\n", s.Path, s.Format, s.ShapeDescription)
	if s.Sample != "" {
		for _, line := range strings.Split(strings.TrimRight(s.Sample, "\n"), "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
	return b.String()
}
