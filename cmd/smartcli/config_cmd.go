// Config command for the smartcli CLI
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhvi1709/smart-cli/internal/config"
)

// configCmd returns the config subcommand
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			fmt.Printf("Provider: %s\n", cfg.Provider.Name)
			fmt.Printf("Model: %s\n", cfg.Model.Name)
			fmt.Printf("Endpoint: %s\n", config.GetEndpoint(cfg.Provider.Name))
			fmt.Printf("Execution Enabled: %v\n", cfg.Execution.Enabled)
			fmt.Printf("Execution Timeout: %ds\n", cfg.Execution.TimeoutSeconds)
			fmt.Printf("Interpreter: %s\n", cfg.Execution.Interpreter)
			fmt.Printf("Show Code: %v\n", cfg.Execution.ShowCode)
			fmt.Printf("History Enabled: %v\n", cfg.History.Enabled)
			if len(cfg.MCP.Servers) > 0 {
				fmt.Printf("MCP Servers: %v\n", cfg.MCP.Servers)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value by dot-notation key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := config.GetValue(args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(args[0], args[1]); err != nil {
				return err
			}
			return config.Save()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := config.GetConfigPaths()
			fmt.Printf("User:    %s\n", paths.User)
			fmt.Printf("Project: %s\n", paths.Project)
			return nil
		},
	})

	return cmd
}
