package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/csslens/graph"
	"bennypowers.dev/csslens/settings"
)

var reportCmd = &cobra.Command{
	Use:   "report [files...]",
	Short: "Summarize variable definitions and usage",
	Long: `Cross-reference each file's variable definitions against its usages:
totals, the most referenced names, definitions that are never used,
and optimization suggestions. Without file arguments every style file
under the workspace root is reported.`,
	RunE: runReport,
}

func init() {
	def := settings.Default()
	f := reportCmd.Flags()
	f.StringSlice("include", def.IncludeGlobs, "Workspace glob patterns when no files are given")
	f.StringSlice("exclude", def.ExcludeGlobs, "Glob patterns to skip")
	f.Bool("suggestions", true, "Include optimization suggestions")
	f.Bool("json", false, "Machine-readable JSON output")
}

// fileReport is the JSON shape for one reported file.
type fileReport struct {
	File        string             `json:"file"`
	Report      *graph.UsageReport `json:"report"`
	Suggestions []graph.Suggestion `json:"suggestions,omitempty"`
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	files, err := targetFiles(cmd.Context(), e, args)
	if err != nil {
		return err
	}

	withSuggestions, _ := cmd.Flags().GetBool("suggestions")
	asJSON, _ := cmd.Flags().GetBool("json")
	colors := useColors(cmd)

	var reports []fileReport
	var totalDefs, totalUsages, totalUnused int
	for _, path := range files {
		doc, err := e.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", render(styleWarning, "skipping:", colors), err)
			continue
		}
		fr := fileReport{File: displayPath(e.Root(), path), Report: e.UsageReport(doc)}
		if withSuggestions {
			fr.Suggestions = e.OptimizeVariables(doc)
		}
		reports = append(reports, fr)
		totalDefs += fr.Report.TotalDefinitions
		totalUsages += fr.Report.TotalUsages
		totalUnused += len(fr.Report.Unused)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	out := cmd.OutOrStdout()
	for _, fr := range reports {
		fmt.Fprintln(out, render(styleLocation, fr.File, colors))
		fmt.Fprintf(out, "  definitions: %d  usages: %d  unused: %d\n",
			fr.Report.TotalDefinitions, fr.Report.TotalUsages, len(fr.Report.Unused))
		if len(fr.Report.MostReferenced) > 0 {
			fmt.Fprintln(out, "  most referenced:")
			for _, vc := range fr.Report.MostReferenced {
				fmt.Fprintf(out, "    %-32s %d\n", vc.Name, vc.Count)
			}
		}
		if len(fr.Report.Unused) > 0 {
			fmt.Fprintf(out, "  unused: %s\n", render(styleWarning, strings.Join(fr.Report.Unused, ", "), colors))
		}
		if len(fr.Suggestions) > 0 {
			fmt.Fprintln(out, "  suggestions:")
			for _, s := range fr.Suggestions {
				location := fmt.Sprintf("%s:%d:%d:", fr.File, s.Range.Start.Line+1, s.Range.Start.Column+1)
				fmt.Fprintf(out, "    %s %s\n", render(styleLocation, location, colors), s.Message)
			}
		}
		fmt.Fprintln(out)
	}
	summary := fmt.Sprintf("%d files, %d definitions, %d usages, %d unused",
		len(reports), totalDefs, totalUsages, totalUnused)
	fmt.Fprintln(out, render(styleSuccess, summary, colors))
	return nil
}
