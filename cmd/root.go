// Package cmd is the worknest command line: the HTTP server plus the
// migrate and seed maintenance commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "worknest",
	Short: "WorkNest - multi-tenant project and task management server",
	Long: `WorkNest serves the project, task, invitation and notification API.

Configuration is read from config.yaml in the working directory, with
environment variables (and an optional .env file) taking precedence.`,
	SilenceUsage: true,
	// Running without a subcommand starts the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}
