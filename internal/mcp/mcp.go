// Package mcp connects to Model Context Protocol servers and exposes
// their tools to the conversation loop.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/prudhvi1709/smart-cli/internal/ai"
)

const (
	protocolVersion = "2025-06-18"
	connectTimeout  = 15 * time.Second
	callTimeout     = 60 * time.Second
)

// ServerSpec describes a server given on the command line, either
// "stdio:command,arg1,arg2" or "http:https://host/mcp".
type ServerSpec struct {
	Transport string
	Command   string
	Args      []string
	URL       string
}

// ToolError wraps a failed tool invocation. Tool failures are reported
// to the user and never abort the session.
type ToolError struct {
	Server string
	Tool   string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("mcp server %s: %v", e.Server, e.Err)
	}
	return fmt.Sprintf("tool %s on %s: %v", e.Tool, e.Server, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ParseServerSpec parses one --mcp-server flag value.
func ParseServerSpec(raw string) (ServerSpec, error) {
	transport, rest, found := strings.Cut(raw, ":")
	if !found || rest == "" {
		return ServerSpec{}, fmt.Errorf("invalid mcp server spec %q: want stdio:<cmd,args...> or http:<url>", raw)
	}

	switch transport {
	case "stdio":
		parts := strings.Split(rest, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == "" {
			return ServerSpec{}, fmt.Errorf("invalid mcp server spec %q: empty command", raw)
		}
		return ServerSpec{Transport: "stdio", Command: parts[0], Args: parts[1:]}, nil
	case "http", "https":
		// Accept both "http:<url>" and a bare URL like "https://host/mcp".
		url := rest
		if strings.HasPrefix(rest, "//") {
			url = raw
		}
		return ServerSpec{Transport: "http", URL: url}, nil
	default:
		return ServerSpec{}, fmt.Errorf("unknown mcp transport %q: want stdio or http", transport)
	}
}

type connection struct {
	name   string
	client *client.Client
	tools  []mcptypes.Tool
}

// Bridge holds live connections to every configured server and routes
// tool calls by name.
type Bridge struct {
	conns []*connection
}

// Connect dials every server spec, initializes each session, and lists
// its tools. A server that fails to connect fails the whole bridge.
func Connect(ctx context.Context, specs []ServerSpec) (*Bridge, error) {
	b := &Bridge{}
	for _, spec := range specs {
		conn, err := dial(ctx, spec)
		if err != nil {
			b.Shutdown()
			return nil, err
		}
		b.conns = append(b.conns, conn)
	}
	return b, nil
}

func dial(ctx context.Context, spec ServerSpec) (*connection, error) {
	name := spec.Command
	if spec.Transport == "http" {
		name = spec.URL
	}

	var c *client.Client
	var err error
	switch spec.Transport {
	case "stdio":
		c, err = client.NewStdioMCPClient(spec.Command, nil, spec.Args...)
		if err != nil {
			return nil, &ToolError{Server: name, Err: err}
		}
	case "http":
		c, err = client.NewStreamableHttpClient(spec.URL)
		if err != nil {
			return nil, &ToolError{Server: name, Err: err}
		}
		if err := c.GetTransport().Start(ctx); err != nil {
			return nil, &ToolError{Server: name, Err: err}
		}
	default:
		return nil, fmt.Errorf("unknown mcp transport %q", spec.Transport)
	}

	initCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	initReq := mcptypes.InitializeRequest{}
	initReq.Params.ProtocolVersion = protocolVersion
	initReq.Params.Capabilities = mcptypes.ClientCapabilities{}
	initReq.Params.ClientInfo = mcptypes.Implementation{
		Name:    "smart-cli",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(initCtx, initReq); err != nil {
		c.Close()
		return nil, &ToolError{Server: name, Err: fmt.Errorf("initialize: %w", err)}
	}

	toolsResp, err := c.ListTools(initCtx, mcptypes.ListToolsRequest{})
	if err != nil {
		c.Close()
		return nil, &ToolError{Server: name, Err: fmt.Errorf("list tools: %w", err)}
	}

	return &connection{name: name, client: c, tools: toolsResp.Tools}, nil
}

// Tools returns descriptors for every tool across all servers, in
// server order, for inclusion in the system prompt.
func (b *Bridge) Tools() []ai.ToolDescriptor {
	var descriptors []ai.ToolDescriptor
	for _, conn := range b.conns {
		for _, tool := range conn.tools {
			schema, _ := json.Marshal(tool.InputSchema)
			descriptors = append(descriptors, ai.ToolDescriptor{
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: json.RawMessage(schema),
			})
		}
	}
	return descriptors
}

// CallTool routes a call to the first server advertising the named
// tool. The result text is the concatenated text content blocks; a
// non-text block is rendered as JSON. Calls are not retried.
func (b *Bridge) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	conn := b.lookup(name)
	if conn == nil {
		return "", &ToolError{Server: "(none)", Tool: name, Err: fmt.Errorf("no connected server provides this tool")}
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req := mcptypes.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := conn.client.CallTool(callCtx, req)
	if err != nil {
		return "", &ToolError{Server: conn.name, Tool: name, Err: err}
	}

	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(mcptypes.TextContent); ok {
			parts = append(parts, text.Text)
			continue
		}
		if raw, err := json.Marshal(content); err == nil {
			parts = append(parts, string(raw))
		}
	}
	text := strings.Join(parts, "\n")

	if result.IsError {
		return text, &ToolError{Server: conn.name, Tool: name, Err: fmt.Errorf("tool reported an error: %s", text)}
	}
	return text, nil
}

func (b *Bridge) lookup(name string) *connection {
	for _, conn := range b.conns {
		for _, tool := range conn.tools {
			if tool.Name == name {
				return conn
			}
		}
	}
	return nil
}

// Shutdown closes every connection. Safe on a partially connected or
// nil bridge.
func (b *Bridge) Shutdown() {
	if b == nil {
		return
	}
	for _, conn := range b.conns {
		conn.client.Close()
	}
	b.conns = nil
}
