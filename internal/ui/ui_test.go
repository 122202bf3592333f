// Package ui tests
package ui

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestSpinner_Cycles(t *testing.T) {
	s := NewSpinner("thinking")

	first := s.Frame()
	if !strings.Contains(first, "thinking") {
		t.Errorf("Frame should carry the message, got %q", first)
	}

	seen := map[string]bool{first: true}
	for i := 0; i < 9; i++ {
		seen[s.Frame()] = true
	}
	if len(seen) != 10 {
		t.Errorf("Expected 10 distinct frames, got %d", len(seen))
	}

	// Wraps back to the first frame.
	if wrapped := s.Frame(); wrapped != first {
		t.Errorf("Expected the cycle to wrap, got %q", wrapped)
	}
}
