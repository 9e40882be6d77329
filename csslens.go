// Package csslens resolves CSS custom properties and SCSS variables to
// concrete color values and analyzes stylesheets incrementally. The
// Engine wires the document manager, resolver, and analyzer together
// and is the entry point for embedding the library; the individual
// packages remain usable on their own.
package csslens

import (
	"context"
	"path/filepath"
	"sync"

	"bennypowers.dev/csslens/analyzer"
	"bennypowers.dev/csslens/color"
	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/graph"
	"bennypowers.dev/csslens/internal/log"
	"bennypowers.dev/csslens/internal/uriutil"
	"bennypowers.dev/csslens/parser/common"
	"bennypowers.dev/csslens/resolver"
	"bennypowers.dev/csslens/settings"
	"bennypowers.dev/csslens/workspace"
)

// Engine owns one instance of every component and keeps them
// consistent: open buffers shadow their on-disk files during
// resolution, edits invalidate resolver caches, and settings changes
// rebuild the components that captured them.
type Engine struct {
	root string
	docs *documents.Manager

	mu       sync.RWMutex
	settings settings.Settings
	resolver *resolver.Resolver
	analyzer *analyzer.Analyzer
}

// Stats is a point-in-time snapshot across all components.
type Stats struct {
	OpenDocuments     int   `json:"openDocuments"`
	AnalyzedDocuments int   `json:"analyzedDocuments"`
	CompleteDocuments int   `json:"completeDocuments"`
	Resolved          int64 `json:"resolved"`
	Failed            int64 `json:"failed"`
	Timeouts          int64 `json:"timeouts"`
	WorkspaceScans    int64 `json:"workspaceScans"`
	CacheHits         int64 `json:"cacheHits"`
	CacheMisses       int64 `json:"cacheMisses"`
	RegionsAnalyzed   int64 `json:"regionsAnalyzed"`
	BackgroundChunks  int64 `json:"backgroundChunks"`
}

// New builds an Engine rooted at the given workspace directory.
// Invalid settings fields are replaced with defaults and logged.
func New(root string, s settings.Settings) *Engine {
	for _, err := range s.Normalize() {
		log.Warn("settings: %s", err)
	}
	e := &Engine{
		root:     root,
		docs:     documents.NewManager(),
		settings: s,
	}
	e.resolver = resolver.New(s, workspace.NewEnumerator(root, s), &bufferedOpener{docs: e.docs, disk: workspace.NewOpener()})
	e.analyzer = analyzer.New(s)
	return e
}

// Root returns the workspace root directory.
func (e *Engine) Root() string { return e.root }

// Settings returns the current normalized settings.
func (e *Engine) Settings() settings.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// UpdateSettings replaces the engine configuration. The resolver and
// analyzer are rebuilt because resolution limits and chunk sizes are
// captured at construction; all cached state is discarded. Open
// documents survive. The returned validation errors describe fields
// that were replaced with defaults.
func (e *Engine) UpdateSettings(s settings.Settings) []*settings.ValidationError {
	errs := s.Normalize()
	for _, err := range errs {
		log.Warn("settings: %s", err)
	}
	e.mu.Lock()
	old := e.analyzer
	e.settings = s
	e.resolver = resolver.New(s, workspace.NewEnumerator(e.root, s), &bufferedOpener{docs: e.docs, disk: workspace.NewOpener()})
	e.analyzer = analyzer.New(s)
	e.mu.Unlock()
	old.Close()
	return errs
}

// OpenDocument registers an editor buffer. The buffer shadows the file
// on disk for every subsequent resolution and workspace search, so any
// cached results derived from the disk contents are invalidated.
func (e *Engine) OpenDocument(uri, languageID string, version int32, content string) *documents.Document {
	doc := e.docs.Open(uri, languageID, version, content)
	r, a := e.components()
	r.InvalidateDocument(uri)
	a.InvalidateDocument(uri)
	return doc
}

// ChangeDocument applies incremental edits to an open buffer and
// re-analyzes the affected regions. Stale versions are ignored and the
// current analysis is returned unchanged.
func (e *Engine) ChangeDocument(uri string, version int32, changes []documents.ChangeEvent) (*analyzer.Result, error) {
	doc, err := e.docs.ApplyChanges(uri, version, changes)
	if err != nil {
		return nil, err
	}
	r, a := e.components()
	r.InvalidateDocument(uri)
	return a.ProcessIncrementalChange(doc, changes), nil
}

// CloseDocument drops an editor buffer. The file on disk becomes the
// source of truth again, so caches keyed to the buffer are invalidated.
// It reports whether the buffer was open.
func (e *Engine) CloseDocument(uri string) bool {
	ok := e.docs.Close(uri)
	r, a := e.components()
	r.InvalidateDocument(uri)
	a.InvalidateDocument(uri)
	return ok
}

// Document returns the open buffer for a URI.
func (e *Engine) Document(uri string) (*documents.Document, bool) {
	return e.docs.Get(uri)
}

// LoadFile reads a stylesheet without registering it as an open buffer.
// An open buffer for the same path shadows the disk contents. The path
// may be relative to the workspace root.
func (e *Engine) LoadFile(path string) (*documents.Document, error) {
	uri := uriutil.PathToURI(e.absolute(path))
	if doc, ok := e.docs.Get(uri); ok {
		return doc, nil
	}
	return workspace.NewOpener().Open(uri)
}

// ResolveCSSVariable resolves --name through definitions visible to doc.
func (e *Engine) ResolveCSSVariable(ctx context.Context, name string, doc *documents.Document) *color.Value {
	r, _ := e.components()
	return r.ResolveCSSVariable(ctx, name, doc)
}

// ResolveSCSSVariable resolves $name through definitions visible to doc.
func (e *Engine) ResolveSCSSVariable(ctx context.Context, name string, doc *documents.Document) *color.Value {
	r, _ := e.components()
	return r.ResolveSCSSVariable(ctx, name, doc)
}

// ResolveWithFallback resolves name, substituting fallback when the
// variable is undefined.
func (e *Engine) ResolveWithFallback(ctx context.Context, name, fallback string, doc *documents.Document) *color.Value {
	r, _ := e.components()
	return r.ResolveWithFallback(ctx, name, fallback, doc)
}

// ResolveWithImports resolves a namespaced SCSS variable through the
// document's @use and @import statements.
func (e *Engine) ResolveWithImports(ctx context.Context, name string, doc *documents.Document) *color.Value {
	r, _ := e.components()
	return r.ResolveWithImports(ctx, name, doc)
}

// ResolveWithTheme resolves name preferring definitions scoped to the
// given theme selector.
func (e *Engine) ResolveWithTheme(ctx context.Context, name string, doc *documents.Document, theme string) *color.Value {
	r, _ := e.components()
	return r.ResolveWithTheme(ctx, name, doc, theme)
}

// VariableContext returns the cached extraction context for doc.
func (e *Engine) VariableContext(doc *documents.Document) *common.VariableContext {
	r, _ := e.components()
	return r.VariableContext(doc)
}

// FindVariableDependencies returns the names referenced by the current
// definition of name.
func (e *Engine) FindVariableDependencies(name string, doc *documents.Document) []string {
	return graph.FindVariableDependencies(name, doc)
}

// FindVariableReferences returns every usage of name in the document.
func (e *Engine) FindVariableReferences(name string, doc *documents.Document) []common.VariableUsage {
	return graph.FindVariableReferences(name, doc)
}

// DetectCircularReferences returns the reference cycles among the
// document's definitions.
func (e *Engine) DetectCircularReferences(doc *documents.Document) [][]string {
	return graph.DetectCircularReferences(doc)
}

// FindAffectedVariables returns the variables whose values change,
// directly or transitively, when target changes.
func (e *Engine) FindAffectedVariables(target string, doc *documents.Document) []graph.AffectedVariable {
	return graph.FindAffectedVariables(target, doc)
}

// ValidateDocument checks every definition for cycles, undefined
// references, unresolvable color-like values, and naming issues.
func (e *Engine) ValidateDocument(ctx context.Context, doc *documents.Document) []graph.ValidationIssue {
	r, _ := e.components()
	return graph.ValidateVariableDefinitions(ctx, doc, r)
}

// UsageReport summarizes definition and usage counts for a document.
func (e *Engine) UsageReport(doc *documents.Document) *graph.UsageReport {
	return graph.GenerateUsageReport(doc)
}

// OptimizeVariables suggests removals and inlines for under-used
// definitions.
func (e *Engine) OptimizeVariables(doc *documents.Document) []graph.Suggestion {
	return graph.OptimizeVariables(doc)
}

// AnalyzeVisibleRegions parses the visible ranges synchronously and
// schedules background analysis for the rest of the document.
func (e *Engine) AnalyzeVisibleRegions(doc *documents.Document, visible []common.Range) *analyzer.Result {
	_, a := e.components()
	return a.AnalyzeVisibleRegions(doc, visible)
}

// AnalysisResult returns the current analysis snapshot for a URI, or
// nil when the document was never analyzed.
func (e *Engine) AnalysisResult(uri string) *analyzer.Result {
	_, a := e.components()
	return a.GetAnalysisResult(uri)
}

// InvalidateDocument drops all cached state for a URI, typically after
// the file changed on disk.
func (e *Engine) InvalidateDocument(uri string) {
	r, a := e.components()
	r.InvalidateDocument(uri)
	a.InvalidateDocument(uri)
}

// ClearCaches drops all cached state for every document.
func (e *Engine) ClearCaches() {
	r, a := e.components()
	r.ClearCache()
	a.ClearCache()
}

// Stats merges the component counters into one snapshot.
func (e *Engine) Stats() Stats {
	r, a := e.components()
	rs := r.Stats()
	as := a.Stats()
	return Stats{
		OpenDocuments:     e.docs.Len(),
		AnalyzedDocuments: as.Documents,
		CompleteDocuments: as.CompleteDocuments,
		Resolved:          rs.Resolved,
		Failed:            rs.Failed,
		Timeouts:          rs.Timeouts,
		WorkspaceScans:    rs.WorkspaceScans,
		CacheHits:         rs.CacheHits,
		CacheMisses:       rs.CacheMisses,
		RegionsAnalyzed:   as.RegionsAnalyzed,
		BackgroundChunks:  as.BackgroundChunks,
	}
}

// Close stops background analysis and waits for in-flight work.
func (e *Engine) Close() {
	_, a := e.components()
	a.Close()
}

func (e *Engine) components() (*resolver.Resolver, *analyzer.Analyzer) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.resolver, e.analyzer
}

func (e *Engine) absolute(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.root, path)
}

// bufferedOpener serves open editor buffers before falling back to
// disk, so unsaved edits shadow file contents during workspace search.
type bufferedOpener struct {
	docs *documents.Manager
	disk *workspace.Opener
}

func (o *bufferedOpener) Open(uri string) (*documents.Document, error) {
	if doc, ok := o.docs.Get(uri); ok {
		return doc, nil
	}
	return o.disk.Open(uri)
}

func (o *bufferedOpener) Size(uri string) (int64, error) {
	if doc, ok := o.docs.Get(uri); ok {
		return int64(len(doc.Content())), nil
	}
	return o.disk.Size(uri)
}
