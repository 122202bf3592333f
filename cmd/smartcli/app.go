// Shared application state and setup for the smartcli commands
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prudhvi1709/smart-cli/internal/agent"
	"github.com/prudhvi1709/smart-cli/internal/ai"
	"github.com/prudhvi1709/smart-cli/internal/config"
	"github.com/prudhvi1709/smart-cli/internal/executor"
	"github.com/prudhvi1709/smart-cli/internal/history"
	"github.com/prudhvi1709/smart-cli/internal/mcp"
	"github.com/prudhvi1709/smart-cli/internal/types"
	"github.com/prudhvi1709/smart-cli/internal/ui"
)

var (
	// Version info
	version = "0.1.0"
	commit  = "dev"

	// Flags
	noExecute      bool
	savePath       string
	noShowCode     bool
	modelFlag      string
	mcpServerFlags []string
	interactive    bool
	timeoutSecs    int
	forceExecute   bool

	// forceExecutionOn is set when -e is given explicitly, overriding a
	// config that disables execution
	forceExecutionOn bool

	// Global instances
	historyStore *history.Store
)

// initializeApp loads configuration and prepares shared state
func initializeApp() error {
	if err := config.Init(""); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cfg := config.Get()
	ui.SetColorEnabled(cfg.UI.ColorEnabled)

	if err := config.EnsureDirs(); err != nil {
		return err
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("history disabled: %v", err))
		} else {
			historyStore = store
			if err := store.Prune(cfg.History.RetentionDays); err != nil {
				ui.PrintWarning(err.Error())
			}
		}
	}

	return nil
}

// getAIProvider resolves the provider selection and constructs it
func getAIProvider() (ai.Provider, error) {
	sel, err := config.ResolveSelection(modelFlag)
	if err != nil {
		return nil, err
	}
	return ai.NewProvider(sel)
}

// connectServers dials every --mcp-server descriptor plus any servers
// from config. Returns nil when none are configured.
func connectServers(ctx context.Context) (*mcp.Bridge, error) {
	raw := append([]string{}, config.Get().MCP.Servers...)
	raw = append(raw, mcpServerFlags...)
	if len(raw) == 0 {
		return nil, nil
	}

	specs := make([]mcp.ServerSpec, 0, len(raw))
	for _, r := range raw {
		spec, err := mcp.ParseServerSpec(r)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return mcp.Connect(ctx, specs)
}

// buildSession assembles the control loop from config and flags
func buildSession(provider ai.Provider, bridge *mcp.Bridge) *agent.Session {
	cfg := config.Get()

	timeout := time.Duration(cfg.Execution.TimeoutSeconds) * time.Second
	if timeoutSecs > 0 {
		timeout = time.Duration(timeoutSecs) * time.Second
	}
	if timeout <= 0 {
		timeout = executor.DefaultTimeout
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	opts := agent.Options{
		ExecutionEnabled: (cfg.Execution.Enabled || forceExecutionOn) && !noExecute,
		Force:            forceExecute,
		Interpreter:      cfg.Execution.Interpreter,
		Timeout:          timeout,
		ChatTimeout:      time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
		WorkDir:          cwd,
		HistoryTurns:     cfg.Model.HistoryTurns,
	}

	// A nil *mcp.Bridge must stay a nil interface inside the session.
	if bridge == nil {
		return agent.NewSession(provider, nil, opts)
	}
	return agent.NewSession(provider, bridge, opts)
}

// recordHistory writes an audit entry when the opt-in log is enabled
func recordHistory(provider ai.Provider, query string, outcome *agent.Outcome) {
	if historyStore == nil || outcome == nil {
		return
	}

	entry := types.HistoryEntry{
		Query:    query,
		Kind:     outcome.Envelope.Kind.String(),
		Provider: provider.Name(),
		Model:    provider.Model(),
	}
	if cwd, err := os.Getwd(); err == nil {
		entry.WorkingDir = cwd
	}
	if outcome.Envelope.Kind == types.KindCode {
		entry.Language = outcome.Envelope.Language
	}
	if outcome.Result != nil {
		entry.Executed = true
		entry.ExitCode = outcome.Result.ExitCode
		entry.TimedOut = outcome.Result.TimedOut
		entry.DurationMs = outcome.Result.WallTime.Milliseconds()
	}

	if err := historyStore.Add(entry); err != nil {
		ui.PrintWarning(fmt.Sprintf("history write failed: %v", err))
	}
}

// closeApp releases shared resources at process exit
func closeApp() {
	if historyStore != nil {
		historyStore.Close()
	}
}
