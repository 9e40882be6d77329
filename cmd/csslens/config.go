package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"bennypowers.dev/csslens"
	"bennypowers.dev/csslens/internal/log"
	"bennypowers.dev/csslens/internal/uriutil"
	"bennypowers.dev/csslens/settings"
	"bennypowers.dev/csslens/workspace"
)

// loadSettings merges configuration with precedence flags > env
// (CSSLENS_*) > settings file > defaults. It must be called after
// cobra has parsed the flags.
func loadSettings(cmd *cobra.Command, root string) (settings.Settings, []*settings.ValidationError, error) {
	s := settings.Default()
	k := koanf.New(".")

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path, _ = settings.Discover(root)
	} else if _, err := os.Stat(path); err != nil {
		return s, nil, fmt.Errorf("config file: %w", err)
	}

	if path != "" {
		parser, err := settings.ParserFor(path)
		if err != nil {
			return s, nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return s, nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// CSSLENS_MAX_CHAIN_DEPTH -> max-chain-depth
	if err := k.Load(env.Provider("CSSLENS_", ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "CSSLENS_")), "_", "-")
	}), nil); err != nil {
		return s, nil, fmt.Errorf("loading environment variables: %w", err)
	}

	// Only flags that were explicitly set override the earlier layers.
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return s, nil, fmt.Errorf("loading command flags: %w", err)
	}

	if err := k.Unmarshal("", &s); err != nil {
		return s, nil, fmt.Errorf("applying configuration: %w", err)
	}
	return s, s.Normalize(), nil
}

// workspaceRoot resolves the --workspace flag to an absolute directory.
func workspaceRoot(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Flags().GetString("workspace")
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving workspace %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}

// newEngine builds an Engine from the resolved workspace root and the
// merged settings, reporting each replaced settings field on stderr.
func newEngine(cmd *cobra.Command) (*csslens.Engine, error) {
	root, err := workspaceRoot(cmd)
	if err != nil {
		return nil, err
	}
	s, warnings, err := loadSettings(cmd, root)
	if err != nil {
		return nil, err
	}
	applyLogLevel(s.LogLevel)
	colors := useColors(cmd)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, render(styleWarning, w.Error(), colors))
	}
	return csslens.New(root, s), nil
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}

// targetFiles returns the explicit file arguments as absolute paths,
// or every style file the enumerator finds under the workspace root.
func targetFiles(ctx context.Context, e *csslens.Engine, args []string) ([]string, error) {
	if len(args) > 0 {
		paths := make([]string, 0, len(args))
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return nil, fmt.Errorf("resolving %q: %w", arg, err)
			}
			paths = append(paths, abs)
		}
		return paths, nil
	}

	s := e.Settings()
	ctx, cancel := context.WithTimeout(ctx, s.FileListTimeout)
	defer cancel()
	uris, err := workspace.NewEnumerator(e.Root(), s).FindFiles(ctx, s.MaxSearchFiles)
	if err != nil {
		return nil, fmt.Errorf("enumerating workspace files: %w", err)
	}
	if len(uris) == 0 {
		return nil, fmt.Errorf("no style files found under %s", e.Root())
	}
	paths := make([]string, len(uris))
	for i, uri := range uris {
		paths[i] = uriutil.URIToPath(uri)
	}
	return paths, nil
}

// displayPath shortens a path relative to the workspace root when the
// file lives inside it.
func displayPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
