// Single-shot and interactive query drivers
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prudhvi1709/smart-cli/internal/agent"
	"github.com/prudhvi1709/smart-cli/internal/ai"
	"github.com/prudhvi1709/smart-cli/internal/config"
	"github.com/prudhvi1709/smart-cli/internal/types"
	"github.com/prudhvi1709/smart-cli/internal/ui"
)

// runQuery handles single-shot mode: one query, one rendered outcome,
// non-zero exit on provider failure
func runQuery(cmd *cobra.Command, query string) error {
	ctx := context.Background()

	provider, err := getAIProvider()
	if err != nil {
		return err
	}

	bridge, err := connectServers(ctx)
	if err != nil {
		return err
	}
	defer bridge.Shutdown()

	session := buildSession(provider, bridge)
	reader := bufio.NewReader(os.Stdin)

	outcome, err := stepWithContext(ctx, session, reader, query)
	if err != nil {
		return err
	}
	if outcome == nil {
		return nil
	}

	renderOutcome(cmd, outcome)
	recordHistory(provider, query, outcome)

	if savePath != "" {
		if err := saveOutcome(savePath, query, outcome); err != nil {
			return err
		}
		ui.PrintSuccess("Saved to " + savePath)
	}
	return nil
}

// runInteractive starts the multi-turn loop
func runInteractive(cmd *cobra.Command) error {
	return runInteractiveWithQuery(cmd, "")
}

// runInteractiveWithQuery starts interactive mode, optionally processing
// an initial query first
func runInteractiveWithQuery(cmd *cobra.Command, initial string) error {
	ctx := context.Background()

	provider, err := getAIProvider()
	if err != nil {
		return err
	}

	bridge, err := connectServers(ctx)
	if err != nil {
		return err
	}
	defer bridge.Shutdown()

	session := buildSession(provider, bridge)
	reader := bufio.NewReader(os.Stdin)

	ui.PrintHeader(provider.Name(), provider.Model())

	if initial != "" {
		interactiveTurn(ctx, cmd, session, provider, reader, initial)
	}

	for session.State() != agent.StateExited {
		fmt.Print(ui.Cyan("❯ "))
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		query := strings.TrimSpace(line)
		switch strings.ToLower(query) {
		case "":
			continue
		case "exit", "quit", "q":
			session.Exit()
			continue
		}

		interactiveTurn(ctx, cmd, session, provider, reader, query)
	}

	fmt.Println(ui.Dim("\nGoodbye!"))
	return nil
}

// interactiveTurn runs one turn and reports errors without ending the loop
func interactiveTurn(ctx context.Context, cmd *cobra.Command, session *agent.Session, provider ai.Provider, reader *bufio.Reader, query string) {
	outcome, err := stepWithContext(ctx, session, reader, query)
	if err != nil {
		ui.PrintError(err.Error())
		return
	}
	if outcome == nil {
		return
	}
	renderOutcome(cmd, outcome)
	recordHistory(provider, query, outcome)
}

// stepWithContext runs session turns until the model stops asking for
// more context. Returns nil outcome when input ends during a context
// request.
func stepWithContext(ctx context.Context, session *agent.Session, reader *bufio.Reader, query string) (*agent.Outcome, error) {
	original := query
	for {
		outcome, err := stepWithSpinner(ctx, session, query)
		if err != nil {
			return nil, err
		}
		if outcome.Envelope.Kind != types.KindNeedContext {
			return outcome, nil
		}

		ui.PrintContextRequest(outcome.Envelope.ContextPrompt)
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			return nil, nil
		}
		query = agent.FollowUpQuery(answer, original)
	}
}

// stepWithSpinner runs one turn with a spinner on stdout while the
// provider call is in flight
func stepWithSpinner(ctx context.Context, session *agent.Session, query string) (*agent.Outcome, error) {
	spinner := ui.NewSpinner("thinking...")
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				spinner.Clear()
				return
			case <-ticker.C:
				fmt.Print(spinner.Frame())
			}
		}
	}()

	outcome, err := session.Step(ctx, query)
	close(done)
	<-finished
	return outcome, err
}

// renderOutcome displays one completed turn
func renderOutcome(cmd *cobra.Command, outcome *agent.Outcome) {
	env := outcome.Envelope

	switch env.Kind {
	case types.KindAnswer:
		ui.PrintAnswer(env.Answer)

	case types.KindCode:
		if showCode(cmd) {
			ui.PrintGeneratedCode(env.Language, env.Source)
		}
		ui.PrintExplanation(env.Explanation)
		if outcome.Analysis != nil {
			ui.PrintRiskLevel(outcome.Analysis.Level, outcome.Analysis.Reasons)
		}
		switch {
		case outcome.Blocked:
			ui.PrintWarning("Execution blocked by safety scan. Re-run with --force to override.")
		case outcome.Result != nil:
			ui.PrintExecutionResult(outcome.Result)
		case outcome.RunErr != nil:
			ui.PrintError(outcome.RunErr.Error())
		}

	case types.KindToolCall:
		ui.PrintToolCall(env.ToolName, env.ToolArgs)
		if outcome.ToolErr != nil {
			ui.PrintError(outcome.ToolErr.Error())
			if outcome.ToolResult != "" {
				ui.PrintToolResult(env.ToolName, outcome.ToolResult)
			}
		} else {
			ui.PrintToolResult(env.ToolName, outcome.ToolResult)
		}
	}
}

// showCode resolves config default against the show-code flags
func showCode(cmd *cobra.Command) bool {
	if noShowCode {
		return false
	}
	if cmd.Flags().Changed("show-code") {
		on, _ := cmd.Flags().GetBool("show-code")
		return on
	}
	return config.Get().Execution.ShowCode
}

// saveOutcome writes the turn to a file. A plain answer is saved
// verbatim so the file content equals the displayed answer text; code
// and tool outcomes get a fuller rendition with the query and output.
func saveOutcome(path, query string, outcome *agent.Outcome) error {
	env := outcome.Envelope

	if env.Kind == types.KindAnswer {
		return os.WriteFile(path, []byte(env.Answer), 0o644)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\n", query)

	switch env.Kind {
	case types.KindCode:
		fmt.Fprintf(&sb, "Generated %s:\n\n%s\n", env.Language, strings.TrimRight(env.Source, "\n"))
		if env.Explanation != "" {
			fmt.Fprintf(&sb, "\nExplanation:\n%s\n", env.Explanation)
		}
		if outcome.Result != nil {
			sb.WriteString("\nOutput:\n")
			sb.WriteString(outcome.Result.Stdout)
			if outcome.Result.Stderr != "" {
				sb.WriteString(outcome.Result.Stderr)
			}
			if outcome.Result.TimedOut {
				sb.WriteString("(execution timed out)\n")
			}
		}
	case types.KindToolCall:
		fmt.Fprintf(&sb, "Tool: %s\n\n%s\n", env.ToolName, outcome.ToolResult)
	}

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
