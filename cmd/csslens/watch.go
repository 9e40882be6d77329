package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bennypowers.dev/csslens/internal/uriutil"
	"bennypowers.dev/csslens/internal/watcher"
	"bennypowers.dev/csslens/settings"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate style files as they change",
	Long: `Validate the workspace once, then watch it for changes to .css, .scss
and .sass files. Each change batch invalidates the affected caches and
re-validates the changed files. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	def := settings.Default()
	f := watchCmd.Flags()
	f.StringSlice("include", def.IncludeGlobs, "Workspace glob patterns for the initial pass")
	f.StringSlice("exclude", def.ExcludeGlobs, "Glob patterns to skip")
	f.Duration("debounce", 250*time.Millisecond, "Quiet period before a change batch is processed")
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	colors := useColors(cmd)
	out := cmd.OutOrStdout()

	// Initial pass over the whole workspace.
	files, err := targetFiles(cmd.Context(), e, args)
	if err != nil {
		return err
	}
	errorCount, warningCount, _ := validateFiles(cmd, e, files, false)
	fmt.Fprintf(out, "%s %d files, %d errors, %d warnings\n\n",
		render(styleHint, time.Now().Format("15:04:05"), colors), len(files), errorCount, warningCount)

	debounce, _ := cmd.Flags().GetDuration("debounce")
	w, err := watcher.New(debounce, func(paths []string) {
		changed := paths[:0]
		for _, path := range paths {
			e.InvalidateDocument(uriutil.PathToURI(path))
			if _, err := os.Stat(path); err == nil {
				changed = append(changed, path)
			} else {
				fmt.Fprintf(out, "%s %s removed\n",
					render(styleHint, time.Now().Format("15:04:05"), colors), displayPath(e.Root(), path))
			}
		}
		if len(changed) == 0 {
			return
		}
		errs, warns, _ := validateFiles(cmd, e, changed, false)
		fmt.Fprintf(out, "%s %d files, %d errors, %d warnings\n\n",
			render(styleHint, time.Now().Format("15:04:05"), colors), len(changed), errs, warns)
	})
	if err != nil {
		return err
	}
	if err := w.Watch(e.Root()); err != nil {
		return fmt.Errorf("watching %s: %w", e.Root(), err)
	}
	fmt.Fprintf(out, "watching %s\n", e.Root())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Fprintln(out, "\nshutting down")
	return w.Close()
}
