// Package cmd provides the CLI surface using Cobra, the way the teacher
// wired its root command — flags bound to package-level vars, Execute()
// called once from main.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string

	debugMode bool
	logLevel  string

	projectDir string
	agent      string
	model      string
)

var rootCmd = &cobra.Command{
	Use:   "ralph-core",
	Short: "Drive an autonomous coding agent through an iteration loop",
	Long: `ralph-core supervises an external AI coding agent CLI across
repeated invocations against a shared prompt file, stopping when the agent
signals completion or a safety limit is reached.`,
	Example: `  # Run with the default adapter and config
  ralph-core run

  # Run a specific adapter against a project directory
  ralph-core run --agent gemini --project-dir ./work

  # Show version information
  ralph-core version`,
	Version: "0.1.0",
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Path to a JSON configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"Enable debug mode with trace logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Set logging level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project-dir", ".",
		"Project directory the run operates in")
	rootCmd.PersistentFlags().StringVar(&agent, "agent", "",
		"Adapter to use: claude, gemini, qchat, acp")
	rootCmd.PersistentFlags().StringVar(&model, "model", "",
		"Model for adapters that support selection (gemini, qchat)")
}

func GetConfigFile() string { return cfgFile }
func IsDebugMode() bool     { return debugMode }

func GetLogLevel() string      { return logLevel }
func WasLogLevelSet() bool     { return rootCmd.PersistentFlags().Changed("log-level") }
func GetProjectDir() string    { return projectDir }
func WasProjectDirSet() bool   { return rootCmd.PersistentFlags().Changed("project-dir") }
func GetAgent() string         { return agent }
func WasAgentSet() bool        { return rootCmd.PersistentFlags().Changed("agent") }
func GetModel() string         { return model }
func WasModelSet() bool        { return rootCmd.PersistentFlags().Changed("model") }
