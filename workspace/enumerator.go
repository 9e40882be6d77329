// Package workspace enumerates candidate style files under a root and
// opens them as documents.
package workspace

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"bennypowers.dev/csslens/internal/collections"
	"bennypowers.dev/csslens/internal/log"
	"bennypowers.dev/csslens/internal/uriutil"
	"bennypowers.dev/csslens/settings"
)

// Directories never descended into, regardless of configured excludes.
var vendorDirs = collections.NewSet("node_modules", "dist", "build")

// Enumerator walks a workspace root for files matching the configured
// include globs, filtering through .gitignore and the configured
// exclude globs.
type Enumerator struct {
	root     string
	includes []string
	excludes []glob.Glob
	ignored  *ignore.GitIgnore
}

// NewEnumerator compiles the settings' patterns for a workspace root.
// Patterns must already be normalized; invalid exclude patterns are
// dropped with a log line.
func NewEnumerator(root string, s settings.Settings) *Enumerator {
	e := &Enumerator{
		root:     root,
		includes: s.IncludeGlobs,
	}
	for _, pattern := range s.ExcludeGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			log.Warn("skipping exclude pattern %q: %s", pattern, err)
			continue
		}
		e.excludes = append(e.excludes, g)
	}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		e.ignored = gi
	}
	return e
}

// Root returns the workspace root the enumerator walks.
func (e *Enumerator) Root() string { return e.root }

// FindFiles walks the root and returns file:// URIs for matching
// files, up to maxResults when it is positive. Vendor and hidden
// directories are skipped. The walk stops early when ctx is done.
func (e *Enumerator) FindFiles(ctx context.Context, maxResults int) ([]string, error) {
	var uris []string
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug("walk error at %s: %s", path, err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			name := d.Name()
			if path != e.root && (vendorDirs.Has(name) || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(e.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !e.included(rel) || e.excluded(rel) {
			return nil
		}
		uris = append(uris, uriutil.PathToURI(path))
		if maxResults > 0 && len(uris) >= maxResults {
			return fs.SkipAll
		}
		return nil
	})
	return uris, err
}

func (e *Enumerator) included(rel string) bool {
	for _, pattern := range e.includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (e *Enumerator) excluded(rel string) bool {
	if e.ignored != nil && e.ignored.MatchesPath(rel) {
		return true
	}
	for _, g := range e.excludes {
		// The second probe lets patterns anchored with **/ match
		// top level paths.
		if g.Match(rel) || g.Match("/"+rel) {
			return true
		}
	}
	return false
}
