package cmd

import "github.com/spf13/cobra"

// RunFunc is set by main before Execute is called; it drives the actual
// iteration loop. Keeping it as an injected function (rather than importing
// internal/looprun directly from cmd) avoids a config/looprun/cmd import
// cycle, since looprun's config comes from the same flags this package owns.
var RunFunc func() error

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the iteration loop",
	Long:  `Run the supervisor loop against the configured adapter until completion or a safety limit is hit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if RunFunc == nil {
			return nil
		}
		return RunFunc()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
