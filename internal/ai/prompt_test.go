// Package ai prompt assembly tests
package ai

import (
	"strings"
	"testing"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

func TestBuildMessages_Basic(t *testing.T) {
	messages := BuildMessages("hello", nil, nil, nil, 10)

	if len(messages) != 2 {
		t.Fatalf("Expected system + user, got %d messages", len(messages))
	}
	if messages[0].Role != "system" {
		t.Errorf("Expected system first, got %s", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, "DIRECT_ANSWER:") {
		t.Error("System prompt should define the response tags")
	}
	if !strings.Contains(messages[0].Content, "never respond with TOOL_CALL") {
		t.Error("With no tools, TOOL_CALL should be forbidden")
	}
	if messages[1].Role != "user" || messages[1].Content != "hello" {
		t.Errorf("Unexpected final message: %+v", messages[1])
	}
}

func TestBuildMessages_Tools(t *testing.T) {
	tools := []ToolDescriptor{
		{Name: "read_file", Description: "Read a file"},
	}
	messages := BuildMessages("q", nil, nil, tools, 10)

	system := messages[0].Content
	if !strings.Contains(system, "AVAILABLE TOOLS:") {
		t.Error("Expected a tool catalog section")
	}
	if !strings.Contains(system, "read_file: Read a file") {
		t.Errorf("Expected the tool entry, got %q", system)
	}
	if strings.Contains(system, "never respond with TOOL_CALL") {
		t.Error("TOOL_CALL should be allowed when tools exist")
	}
}

func TestBuildMessages_FileSummaries(t *testing.T) {
	summaries := []types.FileSummary{
		{Path: "sales.csv", Format: "csv", ShapeDescription: "3 rows x 2 columns (month, amount)", Sample: "Jan,100"},
	}
	messages := BuildMessages("plot it", nil, summaries, nil, 10)

	system := messages[0].Content
	if !strings.Contains(system, "FILE CONTEXT:") {
		t.Error("Expected a file context section")
	}
	if !strings.Contains(system, "sales.csv") || !strings.Contains(system, "Jan,100") {
		t.Errorf("Expected the summary and sample, got %q", system)
	}
}

func TestBuildMessages_HistoryWindow(t *testing.T) {
	var history []types.ConversationTurn
	for i := 0; i < 20; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		history = append(history, types.ConversationTurn{Role: role, Content: "turn"})
	}

	messages := BuildMessages("q", history, nil, nil, 4)

	// system + 4 trailing turns + query
	if len(messages) != 6 {
		t.Fatalf("Expected 6 messages, got %d", len(messages))
	}
}

func TestBuildMessages_ToolRoleMapped(t *testing.T) {
	history := []types.ConversationTurn{
		{Role: types.RoleUser, Content: "read it"},
		{Role: types.RoleTool, Content: "file contents"},
	}
	messages := BuildMessages("q", history, nil, nil, 10)

	if messages[2].Role != "user" {
		t.Errorf("Tool turns should map to user for providers without a tool role, got %s", messages[2].Role)
	}
	if messages[2].Content != "file contents" {
		t.Errorf("Unexpected content: %q", messages[2].Content)
	}
}
