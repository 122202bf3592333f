// Models command for the smartcli CLI
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/prudhvi1709/smart-cli/internal/ai"
)

// modelsCmd returns the models subcommand
func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models for the selected provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			provider, err := getAIProvider()
			if err != nil {
				return err
			}

			models, err := provider.ListModels(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Available models for %s:\n", provider.Name())
			for _, m := range models {
				fmt.Printf("  - %s\n", m)
			}

			fmt.Println("\nSupported providers:")
			for _, p := range ai.AvailableProviders() {
				fmt.Printf("  - %s\n", p)
			}
			return nil
		},
	}
}
