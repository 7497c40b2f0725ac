package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralph-core/ralph-core/internal/adapter"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available to an adapter that supports selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := adapter.AgentType(GetAgent())
		if a == "" {
			a = adapter.AgentGemini
		}
		models, err := adapter.FetchModels(context.Background(), a)
		if err != nil {
			return fmt.Errorf("listing models for %s: %w", a, err)
		}
		for _, m := range models {
			fmt.Println(m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
