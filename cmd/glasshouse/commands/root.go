// Package commands implements glasshouse's cobra-based CLI: starting and
// stopping the honeypot daemon, writing a default configuration, and
// generating forensic reports from recorded activity.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:           "glasshouse",
	Short:         "An SSH honeypot that records everything attackers try",
	Long:          "glasshouse accepts any SSH credentials, serves a simulated filesystem over an interactive shell and SFTP, and records every authentication attempt, command, and uploaded file for later analysis.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root cobra command, for tests and completion setup.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/glasshouse/config.yaml)")

	rootCmd.AddCommand(versionCmd, startCmd, initCmd, stopCmd, reportCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the --config flag's value.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr writes a formatted error line to the root command's error stream.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints a formatted error and terminates the process with status 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
