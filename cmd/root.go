// Package cmd implements the autobot command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logDest    string
)

var rootCmd = &cobra.Command{
	Use:   "autobot",
	Short: "AI automation bot for email, social posts and files",
	Long: `autobot answers email, schedules social media posts and organizes files,
using an AI model when a credential is available.

Without a subcommand it runs every task once and prints the results.`,
	SilenceUsage: true,
	RunE:         runTasks,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logDest, "log-dest", "", "Log destination: file, console, both")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
