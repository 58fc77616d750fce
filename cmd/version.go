package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the current release version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of to8",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(currentReleaseVersion)
	},
}
