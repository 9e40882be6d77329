package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/csslens/color"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve NAME FILE",
	Short: "Resolve one variable to a concrete color",
	Long: `Resolve a CSS custom property (--name) or SCSS variable ($name,
$namespace.name) against a file, following reference chains, imports
and the workspace. Exits 1 when the variable does not resolve to a
color.`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.String("theme", "", "Prefer definitions scoped to this theme selector")
	f.String("fallback", "", "Fallback value when the variable is undefined")
	f.Bool("json", false, "Machine-readable JSON output")
}

func runResolve(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]
	if !strings.HasPrefix(name, "--") && !strings.HasPrefix(name, "$") {
		return fmt.Errorf("variable name %q must start with -- or $", name)
	}

	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	doc, err := e.LoadFile(path)
	if err != nil {
		return err
	}

	theme, _ := cmd.Flags().GetString("theme")
	fallback, _ := cmd.Flags().GetString("fallback")
	ctx := cmd.Context()

	var v *color.Value
	switch {
	case theme != "":
		v = e.ResolveWithTheme(ctx, name, doc, theme)
	case fallback != "":
		v = e.ResolveWithFallback(ctx, name, fallback, doc)
	case strings.HasPrefix(name, "$"):
		v = e.ResolveSCSSVariable(ctx, name, doc)
	default:
		v = e.ResolveCSSVariable(ctx, name, doc)
	}
	if v == nil {
		return fmt.Errorf("%s does not resolve to a color in %s", name, displayPath(e.Root(), path))
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	colors := useColors(cmd)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s %s\n", name, render(styleSuccess, v.Hex, colors), swatch(v.Hex, colors))
	fmt.Fprintf(out, "  %s\n", rgbString(v))
	fmt.Fprintf(out, "  %s\n", hslString(v))
	return nil
}

func rgbString(v *color.Value) string {
	if v.RGB.A < 1 {
		return fmt.Sprintf("rgba(%d, %d, %d, %.2g)", v.RGB.R, v.RGB.G, v.RGB.B, v.RGB.A)
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", v.RGB.R, v.RGB.G, v.RGB.B)
}

func hslString(v *color.Value) string {
	if v.HSL.A < 1 {
		return fmt.Sprintf("hsla(%.0f, %.0f%%, %.0f%%, %.2g)", v.HSL.H, v.HSL.S, v.HSL.L, v.HSL.A)
	}
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", v.HSL.H, v.HSL.S, v.HSL.L)
}
