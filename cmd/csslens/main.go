// Package main provides the csslens CLI: workspace reports, validation,
// one-shot variable resolution and a watch mode for CSS/SCSS color
// variables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", render(styleError, "error:", useColors(rootCmd)), err)
		os.Exit(1)
	}
}
