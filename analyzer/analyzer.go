// Package analyzer keeps per-document extraction results current
// without re-parsing whole documents. Visible regions and edits are
// analyzed synchronously; the rest of the document is filled in by a
// cancellable background pass that works in bounded chunks with a
// cooperative pause between them.
//
// A document moves through three states: uncached (no entry), partial
// (some regions covered, background scheduled) and complete (covered
// lines equal the document's line count). Any edit or invalidation
// moves it back.
package analyzer

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/internal/log"
	"bennypowers.dev/csslens/internal/observability"
	"bennypowers.dev/csslens/parser/common"
	"bennypowers.dev/csslens/settings"
)

// entry is the analyzer's cache record for one URI. cancel stops the
// entry's background pass; it is nil when none is running.
type entry struct {
	version int32
	result  *Result
	cancel  context.CancelFunc
}

// Analyzer owns the per-document analysis cache. All methods are safe
// for concurrent use.
type Analyzer struct {
	settings settings.Settings
	limiter  *rate.Limiter

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool

	wg sync.WaitGroup

	regionsAnalyzed  atomic.Int64
	backgroundChunks atomic.Int64
}

// Stats is a point-in-time snapshot of analyzer activity.
type Stats struct {
	Documents         int   `json:"documents"`
	CompleteDocuments int   `json:"completeDocuments"`
	RegionsAnalyzed   int64 `json:"regionsAnalyzed"`
	BackgroundChunks  int64 `json:"backgroundChunks"`
}

// New constructs an analyzer. Settings are normalized defensively.
func New(s settings.Settings) *Analyzer {
	s.Normalize()
	pause := s.ChunkPause
	if pause <= 0 {
		pause = time.Millisecond
	}
	return &Analyzer{
		settings: s,
		limiter:  rate.NewLimiter(rate.Every(pause), 1),
		entries:  make(map[string]*entry),
	}
}

// AnalyzeVisibleRegions analyzes the given ranges synchronously and
// merges them into the document's cached result. When the document is
// not fully covered afterwards, a background pass over the gaps is
// scheduled. The returned result is a snapshot the caller may keep.
func (a *Analyzer) AnalyzeVisibleRegions(doc *documents.Document, visible []common.Range) *Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[doc.URI()]
	if ok && e.version > doc.Version() {
		log.Debug("ignoring stale analysis for %s: version %d < %d", doc.URI(), doc.Version(), e.version)
		return e.result.clone()
	}
	if !ok || e.version != doc.Version() {
		e = a.resetEntryLocked(doc, e)
	}

	var regions []Region
	for _, vr := range visible {
		r, ok := clampRegion(Region{StartLine: vr.Start.Line, EndLine: vr.End.Line, Priority: PriorityVisible}, doc.LineCount())
		if !ok {
			continue
		}
		regions = append(regions, r)
	}
	a.analyzeRegionsLocked(doc, e, mergeRegions(regions))
	return e.result.clone()
}

// ProcessIncrementalChange re-analyzes only the regions an edit could
// have altered: each change's line span widened by EditBufferLines on
// both sides, overlapping regions merged. Cached items outside the
// affected regions are preserved unchanged from the previous analysis.
func (a *Analyzer) ProcessIncrementalChange(doc *documents.Document, changes []documents.ChangeEvent) *Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[doc.URI()]
	switch {
	case !ok:
		e = &entry{version: doc.Version(), result: newResult(doc)}
		a.entries[doc.URI()] = e
	case e.version > doc.Version():
		log.Debug("ignoring stale change for %s: version %d < %d", doc.URI(), doc.Version(), e.version)
		return e.result.clone()
	default:
		if e.cancel != nil {
			e.cancel()
			e.cancel = nil
		}
		e.version = doc.Version()
		e.result.Version = doc.Version()
	}

	a.analyzeRegionsLocked(doc, e, a.affectedRegions(changes, doc.LineCount()))
	return e.result.clone()
}

// GetAnalysisResult returns a snapshot of the cached result for a URI,
// or nil when the document has no analysis yet.
func (a *Analyzer) GetAnalysisResult(uri string) *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[uri]
	if !ok {
		return nil
	}
	return e.result.clone()
}

// InvalidateDocument drops the cached analysis for a URI and stops its
// background pass.
func (a *Analyzer) InvalidateDocument(uri string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[uri]; ok {
		if e.cancel != nil {
			e.cancel()
		}
		delete(a.entries, uri)
	}
}

// ClearCache drops every cached analysis and stops all background
// work.
func (a *Analyzer) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for uri, e := range a.entries {
		if e.cancel != nil {
			e.cancel()
		}
		delete(a.entries, uri)
	}
}

// Stats returns a snapshot of analyzer counters.
func (a *Analyzer) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Stats{
		Documents:        len(a.entries),
		RegionsAnalyzed:  a.regionsAnalyzed.Load(),
		BackgroundChunks: a.backgroundChunks.Load(),
	}
	for _, e := range a.entries {
		if e.result.IsComplete {
			s.CompleteDocuments++
		}
	}
	return s
}

// Close cancels all background passes and waits for them to stop. The
// analyzer must not be used afterwards.
func (a *Analyzer) Close() {
	a.mu.Lock()
	a.closed = true
	for _, e := range a.entries {
		if e.cancel != nil {
			e.cancel()
		}
	}
	a.mu.Unlock()
	a.wg.Wait()
}

// resetEntryLocked discards any previous analysis of the document and
// installs a fresh entry, stopping a stale background pass first.
func (a *Analyzer) resetEntryLocked(doc *documents.Document, old *entry) *entry {
	if old != nil && old.cancel != nil {
		old.cancel()
	}
	e := &entry{version: doc.Version(), result: newResult(doc)}
	a.entries[doc.URI()] = e
	return e
}

// analyzeRegionsLocked parses each region, merges it into the entry,
// recomputes completeness and schedules background gap analysis when
// needed.
func (a *Analyzer) analyzeRegionsLocked(doc *documents.Document, e *entry, regions []Region) {
	for _, region := range regions {
		e.result.merge(parseRegion(doc, region), region)
		a.regionsAnalyzed.Add(1)
		observability.RegionsAnalyzedTotal.WithLabelValues(region.Priority.String()).Inc()
	}
	e.result.IsComplete = coveredLines(e.result.Regions, doc.LineCount()) >= doc.LineCount()
	if !e.result.IsComplete && !a.closed {
		a.scheduleBackgroundLocked(doc, e)
	}
}

// affectedRegions converts edits into merged analysis regions. A
// change's affected span is its range's lines plus any lines its new
// text inserts, widened by the edit buffer; a change without a range
// replaces the whole document.
func (a *Analyzer) affectedRegions(changes []documents.ChangeEvent, lineCount int) []Region {
	buffer := a.settings.EditBufferLines
	var regions []Region
	for _, change := range changes {
		if change.Range == nil {
			return []Region{{StartLine: 0, EndLine: lineCount - 1, Priority: PriorityVisible}}
		}
		inserted := strings.Count(change.Text, "\n")
		r, ok := clampRegion(Region{
			StartLine: change.Range.Start.Line - buffer,
			EndLine:   change.Range.End.Line + inserted + buffer,
			Priority:  PriorityVisible,
		}, lineCount)
		if !ok {
			continue
		}
		regions = append(regions, r)
	}
	return mergeRegions(regions)
}

// scheduleBackgroundLocked starts (or restarts) the gap-filling pass
// for an entry.
func (a *Analyzer) scheduleBackgroundLocked(doc *documents.Document, e *entry) {
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	a.wg.Add(1)
	go a.backgroundPass(ctx, doc)
}

// backgroundPass fills analysis gaps one bounded chunk at a time,
// pausing between chunks so synchronous work is never starved. It
// stops when the document is complete, the entry changes version or
// disappears, or its context is canceled.
func (a *Analyzer) backgroundPass(ctx context.Context, doc *documents.Document) {
	defer a.wg.Done()
	uri, version := doc.URI(), doc.Version()
	for {
		if err := a.limiter.Wait(ctx); err != nil {
			return
		}

		a.mu.Lock()
		e, ok := a.entries[uri]
		if !ok || e.version != version || e.result.IsComplete {
			a.mu.Unlock()
			return
		}
		gaps := gapRegions(e.result.Regions, doc.LineCount())
		if len(gaps) == 0 {
			e.result.IsComplete = true
			a.mu.Unlock()
			return
		}
		chunk := clampChunk(gaps[0], a.settings.MaxChunkLines)
		a.mu.Unlock()

		parsed := parseRegion(doc, chunk)

		a.mu.Lock()
		e, ok = a.entries[uri]
		if !ok || e.version != version {
			a.mu.Unlock()
			return
		}
		e.result.merge(parsed, chunk)
		e.result.IsComplete = coveredLines(e.result.Regions, doc.LineCount()) >= doc.LineCount()
		a.mu.Unlock()

		a.backgroundChunks.Add(1)
		observability.BackgroundChunksTotal.Inc()
	}
}
