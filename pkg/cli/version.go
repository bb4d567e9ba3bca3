package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uciwire/uciwire/pkg/bridge"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the uciwire version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("uciwire %s\n", bridge.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
