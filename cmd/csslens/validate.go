package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"bennypowers.dev/csslens"
	"bennypowers.dev/csslens/graph"
	"bennypowers.dev/csslens/settings"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check variable definitions for cycles, undefined references and non-color values",
	Long: `Validate every variable definition: circular reference chains and
references to undefined variables are errors, color-like values that
never resolve to a color are warnings, and naming issues are
informational. Without file arguments every style file under the
workspace root is validated.

Errors always exit 1; with --strict any issue does.`,
	RunE: runValidate,
}

func init() {
	def := settings.Default()
	f := validateCmd.Flags()
	f.StringSlice("include", def.IncludeGlobs, "Workspace glob patterns when no files are given")
	f.StringSlice("exclude", def.ExcludeGlobs, "Glob patterns to skip")
	f.Bool("strict", false, "Exit 1 on any issue (CI mode)")
	f.Bool("quiet", false, "Suppress output, exit code only")
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	files, err := targetFiles(cmd.Context(), e, args)
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	quiet, _ := cmd.Flags().GetBool("quiet")
	out := cmd.OutOrStdout()

	errorCount, warningCount, infoCount := validateFiles(cmd, e, files, quiet)

	if !quiet {
		if errorCount+warningCount+infoCount == 0 {
			fmt.Fprintln(out, render(styleSuccess, "no issues found", useColors(cmd)))
		} else {
			fmt.Fprintf(out, "\n%d errors, %d warnings, %d infos\n", errorCount, warningCount, infoCount)
		}
	}

	// Soft gate: errors always fail, strict mode fails on any issue.
	if errorCount > 0 || (strict && errorCount+warningCount+infoCount > 0) {
		e.Close()
		os.Exit(1)
	}
	return nil
}

// validateFiles validates each path, prints issues unless quiet, and
// returns counts by severity.
func validateFiles(cmd *cobra.Command, e *csslens.Engine, paths []string, quiet bool) (errorCount, warningCount, infoCount int) {
	colors := useColors(cmd)
	out := cmd.OutOrStdout()
	for _, path := range paths {
		doc, err := e.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", render(styleWarning, "skipping:", colors), err)
			continue
		}
		rel := displayPath(e.Root(), path)
		for _, issue := range e.ValidateDocument(cmd.Context(), doc) {
			switch issue.Severity {
			case graph.SeverityError:
				errorCount++
			case graph.SeverityWarning:
				warningCount++
			default:
				infoCount++
			}
			if !quiet {
				printIssue(out, rel, issue, colors)
			}
		}
	}
	return errorCount, warningCount, infoCount
}

// printIssue writes one issue as file:line:col: message, a shape
// editors and CI log matchers already understand.
func printIssue(w io.Writer, path string, issue graph.ValidationIssue, colors bool) {
	location := fmt.Sprintf("%s:%d:%d:", path, issue.Range.Start.Line+1, issue.Range.Start.Column+1)
	severity := fmt.Sprintf("(%s)", issue.Severity)
	fmt.Fprintf(w, "%s %s %s\n",
		render(styleLocation, location, colors),
		issue.Message,
		render(severityStyle(issue.Severity), severity, colors))
}

func severityStyle(s graph.Severity) lipgloss.Style {
	switch s {
	case graph.SeverityError:
		return styleError
	case graph.SeverityWarning:
		return styleWarning
	default:
		return styleHint
	}
}
