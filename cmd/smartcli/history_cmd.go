// History command for the smartcli CLI
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhvi1709/smart-cli/internal/types"
	"github.com/prudhvi1709/smart-cli/internal/ui"
)

// historyCmd returns the history subcommand
func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "View the query audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyStore == nil {
				return fmt.Errorf("history is not enabled (set history.enabled in config)")
			}
			entries, err := historyStore.Recent(limit)
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	}
	cmd.PersistentFlags().IntVar(&limit, "limit", 20, "Maximum entries to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "search [term]",
		Short: "Search past queries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyStore == nil {
				return fmt.Errorf("history is not enabled (set history.enabled in config)")
			}
			entries, err := historyStore.Search(args[0], limit)
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyStore == nil {
				return fmt.Errorf("history is not enabled (set history.enabled in config)")
			}
			if err := historyStore.Clear(); err != nil {
				return err
			}
			ui.PrintSuccess("History cleared")
			return nil
		},
	})

	return cmd
}

func printEntries(entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("No history entries.")
		return
	}
	for _, entry := range entries {
		status := "⏸"
		if entry.Executed {
			if entry.TimedOut {
				status = "⏱"
			} else if entry.ExitCode == 0 {
				status = "✓"
			} else {
				status = "✗"
			}
		}
		fmt.Printf("%s %s [%s] %s\n",
			status,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Kind,
			ui.Truncate(entry.Query, 70),
		)
	}
}
