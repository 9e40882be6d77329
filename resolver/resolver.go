// Package resolver turns variable names into concrete color values.
// Resolution follows var() and $name reference chains with depth and
// cycle guards, honors var() fallback text, consults @import/@use'd
// files and finally searches the workspace, caching positive and
// negative outcomes alike.
//
// Every public entry point recovers from typed resolution errors and
// returns nil instead; no error crosses the package boundary.
package resolver

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"bennypowers.dev/csslens/color"
	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/internal/log"
	"bennypowers.dev/csslens/internal/lru"
	"bennypowers.dev/csslens/internal/observability"
	"bennypowers.dev/csslens/parser/common"
	"bennypowers.dev/csslens/parser/css"
	"bennypowers.dev/csslens/parser/scss"
	"bennypowers.dev/csslens/settings"
)

// Enumerator lists candidate workspace files for cross-file searches.
// *workspace.Enumerator satisfies it.
type Enumerator interface {
	Root() string
	FindFiles(ctx context.Context, maxResults int) ([]string, error)
}

// Opener opens a workspace file as a document snapshot. A failed open
// is treated as file-not-found, never as a fatal error.
// *workspace.Opener satisfies it.
type Opener interface {
	Open(uri string) (*documents.Document, error)
	Size(uri string) (int64, error)
}

// resolution is a cached workspace-search outcome. A nil value records
// a miss so repeated lookups skip the scan.
type resolution struct {
	value *color.Value
}

// contextEntry pairs an extracted variable context with the document
// version it was built from.
type contextEntry struct {
	version int32
	ctx     *common.VariableContext
}

// Resolver resolves variable references to colors. Each instance owns
// its caches; construct one per workspace. All methods are safe for
// concurrent use.
type Resolver struct {
	settings settings.Settings
	enum     Enumerator
	opener   Opener
	limiter  *rate.Limiter

	contexts    *lru.Cache[string, contextEntry] // "kind:uri" -> extraction
	resolutions *lru.Cache[string, resolution]   // "name:uri" -> search outcome
	fileLists   *lru.Cache[string, []string]     // root -> enumerated URIs

	resolved  atomic.Int64
	failed    atomic.Int64
	timeouts  atomic.Int64
	scans     atomic.Int64
	cacheHits atomic.Int64
	cacheMiss atomic.Int64
}

// Stats is a point-in-time snapshot of resolver activity.
type Stats struct {
	Resolved       int64 `json:"resolved"`
	Failed         int64 `json:"failed"`
	Timeouts       int64 `json:"timeouts"`
	WorkspaceScans int64 `json:"workspaceScans"`
	CacheHits      int64 `json:"cacheHits"`
	CacheMisses    int64 `json:"cacheMisses"`
}

// New constructs a resolver around the given collaborators. Settings
// are normalized defensively; invalid fields fall back to defaults.
func New(s settings.Settings, enum Enumerator, opener Opener) *Resolver {
	s.Normalize()
	pause := s.ChunkPause
	if pause <= 0 {
		pause = time.Millisecond
	}
	return &Resolver{
		settings:    s,
		enum:        enum,
		opener:      opener,
		limiter:     rate.NewLimiter(rate.Every(pause), 1),
		contexts:    lru.NewCache[string, contextEntry](s.CacheCapacity, 0),
		resolutions: lru.NewCache[string, resolution](s.CacheCapacity, s.CacheTTL),
		fileLists:   lru.NewCache[string, []string](8, s.FileListTTL),
	}
}

// ResolveCSSVariable resolves a `--name` custom property against the
// document, following reference chains and falling back to a
// workspace-wide search. It returns nil when the variable cannot be
// resolved to a color; failures are logged, never propagated.
func (r *Resolver) ResolveCSSVariable(ctx context.Context, name string, doc *documents.Document) *color.Value {
	return r.public(ctx, name, doc, common.KindCSSCustomProperty, r.resolveCSS)
}

// ResolveSCSSVariable resolves a `$name` variable against the
// document: local definitions first, then @import/@use'd files, then
// the workspace. It returns nil when the variable cannot be resolved.
func (r *Resolver) ResolveSCSSVariable(ctx context.Context, name string, doc *documents.Document) *color.Value {
	return r.public(ctx, name, doc, common.KindSCSSVariable, r.resolveSCSS)
}

// ResolveWithFallback resolves name, and when that fails resolves the
// raw fallback text instead: a literal color is used as-is, and any
// var() or $name references embedded in the fallback are expanded
// before re-parsing. A defined variable always wins over the fallback.
func (r *Resolver) ResolveWithFallback(ctx context.Context, name, fallback string, doc *documents.Document) *color.Value {
	return r.public(ctx, name, doc, kindOf(name), func(ctx context.Context, name string, doc *documents.Document) (*color.Value, error) {
		return r.resolveWithFallback(ctx, name, fallback, doc)
	})
}

// ResolveWithImports resolves a SCSS variable against the document and
// its @import/@use'd files, without the workspace-wide search. It
// returns nil when the variable cannot be resolved.
func (r *Resolver) ResolveWithImports(ctx context.Context, name string, doc *documents.Document) *color.Value {
	return r.public(ctx, name, doc, common.KindSCSSVariable, func(ctx context.Context, name string, doc *documents.Document) (*color.Value, error) {
		vctx := r.variableContext(doc, common.KindSCSSVariable)
		if _, base := splitNamespace(name); base == name {
			if def, ok := vctx.Definition(name); ok {
				return r.resolveSCSSDefinition(name, def, vctx)
			}
		}
		return r.lookupImports(ctx, name, doc, vctx)
	})
}

// ResolveWithTheme resolves a custom property preferring definitions
// scoped to the given theme selector. With an empty theme, or when no
// themed definition exists, it behaves like ResolveCSSVariable.
func (r *Resolver) ResolveWithTheme(ctx context.Context, name string, doc *documents.Document, theme string) *color.Value {
	return r.public(ctx, name, doc, common.KindCSSCustomProperty, func(ctx context.Context, name string, doc *documents.Document) (*color.Value, error) {
		return r.resolveThemed(ctx, name, doc, theme)
	})
}

// VariableContext returns the cached extraction of the document in its
// own language, rebuilding it when the document version has advanced.
// The same instance is returned until the version changes.
func (r *Resolver) VariableContext(doc *documents.Document) *common.VariableContext {
	return r.variableContext(doc, kindForLanguage(doc.LanguageID()))
}

// InvalidateDocument drops every cached extraction for the URI and
// clears the workspace-search cache, whose entries may derive from any
// file. Call it when a document changes on disk or closes.
func (r *Resolver) InvalidateDocument(uri string) {
	suffix := ":" + uri
	r.contexts.EvictWhere(func(key string) bool {
		return strings.HasSuffix(key, suffix)
	})
	r.resolutions.Clear()
}

// ClearCache drops every cached extraction, resolution and file list.
// Call it when settings change, since settings alter resolution
// behavior.
func (r *Resolver) ClearCache() {
	r.contexts.Clear()
	r.resolutions.Clear()
	r.fileLists.Clear()
}

// Stats returns a snapshot of resolver counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Resolved:       r.resolved.Load(),
		Failed:         r.failed.Load(),
		Timeouts:       r.timeouts.Load(),
		WorkspaceScans: r.scans.Load(),
		CacheHits:      r.cacheHits.Load(),
		CacheMisses:    r.cacheMiss.Load(),
	}
}

type resolveFunc func(ctx context.Context, name string, doc *documents.Document) (*color.Value, error)

// public wraps an internal resolution under the configured timeout and
// converts every error into a nil result plus a log line.
func (r *Resolver) public(ctx context.Context, name string, doc *documents.Document, kind common.VariableKind, fn resolveFunc) *color.Value {
	ctx, cancel := context.WithTimeout(ctx, r.settings.ResolveTimeout)
	defer cancel()

	start := time.Now()
	v, err := fn(ctx, name, doc)
	observability.ResolutionDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		r.reportFailure(kind, name, err)
		return nil
	}
	r.resolved.Add(1)
	observability.ResolutionsTotal.WithLabelValues(string(kind), "resolved").Inc()
	return v
}

func (r *Resolver) reportFailure(kind common.VariableKind, name string, err error) {
	r.failed.Add(1)
	switch {
	case errors.Is(err, ErrPerformanceTimeout):
		r.timeouts.Add(1)
		observability.ResolutionsTotal.WithLabelValues(string(kind), "timeout").Inc()
		log.Warn("resolving %s: %s", name, err)
	case errors.Is(err, ErrVariableNotFound):
		observability.ResolutionsTotal.WithLabelValues(string(kind), "not-found").Inc()
		log.Debug("resolving %s: %s", name, err)
	default:
		observability.ResolutionsTotal.WithLabelValues(string(kind), "failed").Inc()
		log.Debug("resolving %s: %s", name, err)
	}
}

// resolveCSS resolves a custom property: local definition, then chain
// expansion, then workspace search when no local definition exists.
func (r *Resolver) resolveCSS(ctx context.Context, name string, doc *documents.Document) (*color.Value, error) {
	vctx := r.variableContext(doc, common.KindCSSCustomProperty)
	def, ok := vctx.Definition(name)
	if !ok {
		return r.searchWorkspace(ctx, name, doc)
	}
	return r.resolveCSSDefinition(name, def, vctx)
}

// resolveSCSS resolves a $variable: local definition, then imported
// files, then workspace search. Namespaced names ($ns.name) are only
// looked up through a matching @use import.
func (r *Resolver) resolveSCSS(ctx context.Context, name string, doc *documents.Document) (*color.Value, error) {
	vctx := r.variableContext(doc, common.KindSCSSVariable)
	ns, _ := splitNamespace(name)
	if ns == "" {
		if def, ok := vctx.Definition(name); ok {
			return r.resolveSCSSDefinition(name, def, vctx)
		}
	}
	if v, err := r.lookupImports(ctx, name, doc, vctx); err == nil {
		return v, nil
	}
	if ns != "" {
		// A namespaced name outside its @use'd file is meaningless.
		return nil, NewNotFoundError(name, doc.URI())
	}
	return r.searchWorkspace(ctx, name, doc)
}

// resolveCSSDefinition parses a definition's value directly, expanding
// any var() reference chain first when direct parsing fails.
func (r *Resolver) resolveCSSDefinition(name string, def common.VariableDefinition, vctx *common.VariableContext) (*color.Value, error) {
	if v := color.FromString(def.Value); v.IsValid {
		return v, nil
	}
	expanded, err := r.expandCSSValue(name, def.Value, vctx)
	if err != nil {
		return nil, err
	}
	if v := color.FromString(expanded); v.IsValid {
		return v, nil
	}
	return nil, NewNotAColorError(name, expanded)
}

// resolveSCSSDefinition parses a definition's value directly (ignoring
// !default/!global flags), expanding the $reference chain when direct
// parsing fails.
func (r *Resolver) resolveSCSSDefinition(name string, def common.VariableDefinition, vctx *common.VariableContext) (*color.Value, error) {
	if v := color.FromString(stripSCSSFlags(def.Value)); v.IsValid {
		return v, nil
	}
	expanded, err := r.expandSCSSValue(name, def.Value, vctx)
	if err != nil {
		return nil, err
	}
	if v := color.FromString(expanded); v.IsValid {
		return v, nil
	}
	return nil, NewNotAColorError(name, expanded)
}

// resolveLocal resolves a name against one document only: direct value
// plus chain expansion, no cross-file steps. The workspace search uses
// it to probe candidate files.
func (r *Resolver) resolveLocal(name string, doc *documents.Document, kind common.VariableKind) (*color.Value, error) {
	vctx := r.variableContext(doc, kind)
	def, ok := vctx.Definition(name)
	if !ok {
		return nil, NewNotFoundError(name, doc.URI())
	}
	if kind == common.KindSCSSVariable {
		return r.resolveSCSSDefinition(name, def, vctx)
	}
	return r.resolveCSSDefinition(name, def, vctx)
}

// resolveWithFallback tries full resolution first; a defined variable
// always wins. On failure the fallback text is parsed as a literal,
// and failing that, its embedded references are expanded in place.
func (r *Resolver) resolveWithFallback(ctx context.Context, name, fallback string, doc *documents.Document) (*color.Value, error) {
	kind := kindOf(name)
	var v *color.Value
	var err error
	if kind == common.KindSCSSVariable {
		v, err = r.resolveSCSS(ctx, name, doc)
	} else {
		v, err = r.resolveCSS(ctx, name, doc)
	}
	if err == nil {
		return v, nil
	}
	if fallback == "" {
		return nil, err
	}
	if v := color.FromString(fallback); v.IsValid {
		return v, nil
	}
	expanded, expandErr := r.expandFallback(name, fallback, doc)
	if expandErr != nil {
		return nil, expandErr
	}
	if v := color.FromString(expanded); v.IsValid {
		return v, nil
	}
	return nil, NewNotAColorError(name, expanded)
}

// expandFallback substitutes var() and $name references inside raw
// fallback text.
func (r *Resolver) expandFallback(name, fallback string, doc *documents.Document) (string, error) {
	expanded := fallback
	var err error
	if strings.Contains(expanded, "var(") {
		vctx := r.variableContext(doc, common.KindCSSCustomProperty)
		expanded, err = r.expandCSSValue(name, expanded, vctx)
		if err != nil {
			return "", err
		}
	}
	if strings.Contains(expanded, "$") {
		vctx := r.variableContext(doc, common.KindSCSSVariable)
		expanded, err = r.expandSCSSValue(name, expanded, vctx)
		if err != nil {
			return "", err
		}
	}
	return expanded, nil
}

// variableContext returns the cached extraction of doc for the given
// variable kind, rebuilding when the version has advanced. Contexts
// are keyed by kind because a SCSS file can also define custom
// properties, and each kind uses its own extractor.
func (r *Resolver) variableContext(doc *documents.Document, kind common.VariableKind) *common.VariableContext {
	key := string(kind) + ":" + doc.URI()
	if e, ok := r.contexts.Get(key); ok && e.version == doc.Version() {
		r.cacheHits.Add(1)
		observability.CacheEventsTotal.WithLabelValues("context", observability.EventHit).Inc()
		return e.ctx
	}
	r.cacheMiss.Add(1)
	observability.CacheEventsTotal.WithLabelValues("context", observability.EventMiss).Inc()

	var vctx *common.VariableContext
	if kind == common.KindSCSSVariable {
		vctx = scss.ExtractVariableContext(doc.Content())
	} else {
		vctx = css.ExtractVariableContext(doc.Content())
	}
	r.contexts.Put(key, contextEntry{version: doc.Version(), ctx: vctx})
	return vctx
}

// yield pauses between search batches so one resolution never
// monopolizes the caller. Deadline expiry during the pause is reported
// as a performance timeout.
func (r *Resolver) yield(ctx context.Context, operation string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewPerformanceTimeoutError(operation, r.settings.ResolveTimeout)
		}
		return err
	}
	return nil
}

// kindOf infers the variable kind from a name's prefix.
func kindOf(name string) common.VariableKind {
	if strings.HasPrefix(name, "$") {
		return common.KindSCSSVariable
	}
	return common.KindCSSCustomProperty
}

// kindForLanguage maps a document language identifier to the variable
// kind its own syntax defines.
func kindForLanguage(languageID string) common.VariableKind {
	switch languageID {
	case "scss", "sass":
		return common.KindSCSSVariable
	default:
		return common.KindCSSCustomProperty
	}
}
