package ai

import (
	"encoding/json"
	"strings"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

// Response tags recognized by the parser, matching the SystemPrompt formats.
const (
	tagAnswer      = "DIRECT_ANSWER:"
	tagCode        = "CODE_EXECUTION:"
	tagNeedContext = "NEED_CONTEXT:"
	tagToolCall    = "TOOL_CALL:"
)

// Parse classifies a raw model response into a ResponseEnvelope.
// Precedence: a leading NEED_CONTEXT marker, then a TOOL_CALL marker, then
// an explicit CODE_EXECUTION tag or fenced code block, with anything left
// over treated as a plain answer. A response that matches no recognized
// shape degrades gracefully to the Answer variant.
func Parse(raw string) *types.ResponseEnvelope {
	raw = strings.TrimSpace(raw)
	text := CleanMarkdown(raw)

	if isBareTag(text) {
		return &types.ResponseEnvelope{
			Kind:      types.KindAnswer,
			Answer:    text,
			Malformed: true,
		}
	}

	switch {
	case strings.HasPrefix(text, tagNeedContext):
		prompt := strings.TrimSpace(strings.TrimPrefix(text, tagNeedContext))
		return &types.ResponseEnvelope{
			Kind:          types.KindNeedContext,
			ContextPrompt: prompt,
			Malformed:     prompt == "",
		}

	case strings.HasPrefix(text, tagToolCall):
		body := strings.TrimSpace(strings.TrimPrefix(text, tagToolCall))
		if env := parseToolCall(body); env != nil {
			return env
		}
		// unparseable tool payload: fall back to a plain answer
		return &types.ResponseEnvelope{Kind: types.KindAnswer, Answer: text}

	case strings.HasPrefix(text, tagCode):
		body := strings.TrimSpace(strings.TrimPrefix(text, tagCode))
		return codeEnvelope(body)

	case strings.HasPrefix(text, tagAnswer):
		answer := strings.TrimSpace(strings.TrimPrefix(text, tagAnswer))
		return &types.ResponseEnvelope{
			Kind:      types.KindAnswer,
			Answer:    answer,
			Malformed: answer == "",
		}
	}

	// No explicit tag. A fenced code block still counts as generated code,
	// including a response that is nothing but one fenced block; otherwise
	// the whole response is an answer.
	if fences, prose := extractFences(raw); len(fences) > 0 {
		env := &types.ResponseEnvelope{
			Kind:     types.KindCode,
			Language: fences[0].language,
			Source:   fences[0].body,
		}
		env.Explanation = joinExplanation(prose, fences[1:])
		return env
	}

	return &types.ResponseEnvelope{Kind: types.KindAnswer, Answer: text}
}

// codeEnvelope builds the Code variant from the body of a CODE_EXECUTION
// response. If the body itself contains fenced blocks, only the first is
// executable; the rest become explanatory text.
func codeEnvelope(body string) *types.ResponseEnvelope {
	if body == "" {
		return &types.ResponseEnvelope{Kind: types.KindAnswer, Malformed: true}
	}

	if fences, prose := extractFences(body); len(fences) > 0 {
		return &types.ResponseEnvelope{
			Kind:        types.KindCode,
			Language:    fences[0].language,
			Source:      fences[0].body,
			Explanation: joinExplanation(prose, fences[1:]),
		}
	}

	return &types.ResponseEnvelope{
		Kind:     types.KindCode,
		Language: "python",
		Source:   CleanMarkdown(body),
	}
}

func parseToolCall(body string) *types.ResponseEnvelope {
	body = CleanMarkdown(body)
	var payload struct {
		Tool      string         `json:"tool"`
		Name      string         `json:"name"` // some models use "name" instead
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil
	}
	name := payload.Tool
	if name == "" {
		name = payload.Name
	}
	if name == "" {
		return nil
	}
	if payload.Arguments == nil {
		payload.Arguments = map[string]any{}
	}
	return &types.ResponseEnvelope{
		Kind:     types.KindToolCall,
		ToolName: name,
		ToolArgs: payload.Arguments,
	}
}

// CleanMarkdown removes a code fence wrapping the entire text, the way
// models often wrap an otherwise plain response.
func CleanMarkdown(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	rest := text[3:]
	// drop the info string on the opening fence
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	} else {
		rest = ""
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	return strings.TrimSpace(rest)
}

func isBareTag(text string) bool {
	switch strings.TrimSuffix(text, ":") {
	case "DIRECT_ANSWER", "CODE_EXECUTION", "NEED_CONTEXT", "TOOL_CALL":
		return true
	}
	return false
}

type fence struct {
	language string
	body     string
}

// extractFences splits text into fenced code blocks and surrounding prose
func extractFences(text string) ([]fence, string) {
	var fences []fence
	var prose strings.Builder

	lines := strings.Split(text, "\n")
	inFence := false
	var current fence
	var body strings.Builder

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				current.body = strings.TrimRight(body.String(), "\n")
				fences = append(fences, current)
				body.Reset()
				inFence = false
			} else {
				inFence = true
				lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
				if lang == "" {
					lang = "python"
				}
				current = fence{language: lang}
			}
			continue
		}
		if inFence {
			body.WriteString(line)
			body.WriteString("\n")
		} else if trimmed != "" {
			prose.WriteString(line)
			prose.WriteString("\n")
		}
	}

	// unterminated fence: treat the remainder as the block body
	if inFence {
		current.body = strings.TrimRight(body.String(), "\n")
		fences = append(fences, current)
	}

	return fences, strings.TrimSpace(prose.String())
}

func joinExplanation(prose string, extra []fence) string {
	parts := make([]string, 0, len(extra)+1)
	if prose != "" {
		parts = append(parts, prose)
	}
	for _, f := range extra {
		parts = append(parts, f.body)
	}
	return strings.Join(parts, "\n\n")
}
