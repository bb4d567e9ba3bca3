package cli

import "github.com/spf13/cobra"

// rootCmd is the base command. Subcommands register themselves in init.
var rootCmd = &cobra.Command{
	Use:   "uciwire",
	Short: "Bridge UCI chess engines to WebSocket clients",
	Long: `uciwire launches UCI chess engines as subprocesses and bridges them to
WebSocket clients: every engine output line is broadcast to all connected
clients, and every client command is sent to all engines.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
