package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ralph-core/ralph-core/internal/layout"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Request a running supervisor in this project directory to pause before its next iteration",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree := layout.New(GetProjectDir())
		data, err := os.ReadFile(tree.PidFile())
		if err != nil {
			return fmt.Errorf("reading pidfile: %w (is a run active in this project directory?)", err)
		}
		pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return fmt.Errorf("parsing pidfile: %w", err)
		}
		if err := syscall.Kill(pid, syscall.SIGUSR1); err != nil {
			return fmt.Errorf("signaling pid %d: %w", pid, err)
		}
		fmt.Printf("pause requested for pid %d\n", pid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}
