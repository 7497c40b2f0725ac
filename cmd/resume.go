package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralph-core/ralph-core/internal/layout"
	"github.com/ralph-core/ralph-core/internal/resume"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Wake a Paused supervisor in this project directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree := layout.New(GetProjectDir())
		if err := resume.Signal(tree.ResumeSignal()); err != nil {
			return fmt.Errorf("signaling resume: %w", err)
		}
		fmt.Println("resume signal written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
