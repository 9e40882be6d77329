package main

import (
	"github.com/spf13/cobra"

	"bennypowers.dev/csslens/settings"
)

var rootCmd = &cobra.Command{
	Use:   "csslens",
	Short: "Resolve and analyze CSS/SCSS color variables",
	Long: `csslens resolves CSS custom properties and SCSS variables to concrete
color values, reports how a workspace defines and uses them, and
validates reference chains for cycles, undefined names and values
that never resolve to a color.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	def := settings.Default()

	pf := rootCmd.PersistentFlags()
	pf.StringP("workspace", "w", ".", "Workspace root directory")
	pf.String("config", "", "Settings file (default: discovered .csslens.{json,jsonc,yaml,yml})")
	pf.String("log-level", def.LogLevel, "Log level: debug, info, warn, error")
	pf.Bool("no-color", false, "Disable color output")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
