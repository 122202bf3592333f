// Root command definition for the smartcli CLI
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Execute runs the root command - this is the main entry point
func Execute() error {
	rootCmd := newRootCmd()
	defer closeApp()
	return rootCmd.Execute()
}

// newRootCmd creates and configures the root command
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "smartcli [query]",
		Short: "Natural language assistant with code execution",
		Long: `Smartcli sends a natural language query to an LLM, which answers it
directly, generates code to run locally, asks for more context, or calls a
connected tool.

Examples:
  smartcli "what is the capital of France"
  smartcli "calculate the 10th fibonacci number"
  smartcli "plot sales.csv by month" --no-execute
  smartcli --mcp-server stdio:mcp-filesystem,/data "list the largest files"
  smartcli -i`,
		Args:    cobra.ArbitraryArgs,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeApp()
		},
		RunE: runMain,
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// addRootFlags adds command-line flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("execute", "e", true, "Execute generated code (default)")
	cmd.Flags().BoolVarP(&noExecute, "no-execute", "n", false, "Show generated code without executing")
	cmd.Flags().StringVarP(&savePath, "save", "s", "", "Write the rendered response to a file")
	cmd.Flags().Bool("show-code", true, "Display generated code before execution (default)")
	cmd.Flags().BoolVar(&noShowCode, "no-show-code", false, "Hide generated code")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model as provider:model-id (e.g. anthropic:claude-sonnet-4-0)")
	cmd.Flags().StringArrayVar(&mcpServerFlags, "mcp-server", nil, "Tool server descriptor (stdio:cmd,arg1,... or http:<url>), repeatable")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Start an interactive session")
	cmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "Execution timeout in seconds (overrides config)")
	cmd.Flags().BoolVar(&forceExecute, "force", false, "Run code even when the safety scan blocks it")
}

// runMain handles the root command execution
func runMain(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("execute") {
		// An explicit -e overrides a config that disables execution.
		if on, _ := cmd.Flags().GetBool("execute"); on && !noExecute {
			forceExecutionOn = true
		}
	}

	if len(args) == 0 {
		if interactive {
			return runInteractive(cmd)
		}
		return cmd.Help()
	}

	query := strings.Join(args, " ")
	if interactive {
		return runInteractiveWithQuery(cmd, query)
	}
	return runQuery(cmd, query)
}
