package agent

import "fmt"

// ParseError marks a model response that matched no recognized format
// even after one retry. The response is still shown as a plain answer;
// the error only annotates the outcome.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("response matched no recognized format: %s", firstLine(e.Raw))
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
