package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bennypowers.dev/csslens/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the csslens version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "csslens %s\n", version.Full())
	},
}
