package analyzer_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/csslens/analyzer"
	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/parser/common"
	"bennypowers.dev/csslens/settings"
)

const testURI = "file:///test/main.css"

func newAnalyzer() *analyzer.Analyzer {
	s := settings.Default()
	s.ChunkPause = time.Millisecond
	s.MaxChunkLines = 10
	return analyzer.New(s)
}

// defLines builds a document of n lines, line i defining --vNN with
// the given hex value.
func defLines(n int, hex string) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("--v%02d: %s;", i, hex)
	}
	return strings.Join(lines, "\n")
}

func lineRange(start, end int) common.Range {
	return common.Range{
		Start: common.Position{Line: start},
		End:   common.Position{Line: end},
	}
}

func findDef(t *testing.T, res *analyzer.Result, name string) common.VariableDefinition {
	t.Helper()
	for _, def := range res.Definitions {
		if def.Name == name {
			return def
		}
	}
	t.Fatalf("definition %s not in result", name)
	return common.VariableDefinition{}
}

func TestAnalyzeVisibleRegions(t *testing.T) {
	t.Run("visible region is analyzed synchronously", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		doc := documents.NewDocument(testURI, "css", 1, defLines(60, "#ff0000"))

		res := a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(10, 19)})
		require.Len(t, res.Definitions, 10)
		assert.Equal(t, "--v10", res.Definitions[0].Name)
		assert.Equal(t, 10, res.Definitions[0].Range.Start.Line)
		assert.False(t, res.IsComplete)
	})

	t.Run("background pass completes coverage", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		doc := documents.NewDocument(testURI, "css", 1, defLines(60, "#ff0000"))

		a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(10, 19)})
		assert.Eventually(t, func() bool {
			return a.GetAnalysisResult(testURI).IsComplete
		}, 2*time.Second, 5*time.Millisecond)

		res := a.GetAnalysisResult(testURI)
		assert.Len(t, res.Definitions, 60)
		assert.Equal(t, "--v00", res.Definitions[0].Name, "results are position sorted")
		assert.Greater(t, a.Stats().BackgroundChunks, int64(0))
	})

	t.Run("full visibility completes without background", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		doc := documents.NewDocument(testURI, "css", 1, defLines(8, "#ff0000"))

		res := a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(0, 7)})
		assert.True(t, res.IsComplete)
		assert.Len(t, res.Definitions, 8)
	})

	t.Run("re-analyzing the same region does not duplicate items", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		doc := documents.NewDocument(testURI, "css", 1, defLines(8, "#ff0000"))

		a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(0, 7)})
		res := a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(0, 7)})
		assert.Len(t, res.Definitions, 8)
	})

	t.Run("new version resets the cached analysis", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		v1 := documents.NewDocument(testURI, "css", 1, defLines(8, "#ff0000"))
		a.AnalyzeVisibleRegions(v1, []common.Range{lineRange(0, 7)})

		v2 := documents.NewDocument(testURI, "css", 2, defLines(8, "#00ff00"))
		res := a.AnalyzeVisibleRegions(v2, []common.Range{lineRange(0, 3)})
		assert.Equal(t, int32(2), res.Version)
		assert.Len(t, res.Definitions, 4, "old version's items are gone")
	})
}

func TestProcessIncrementalChange(t *testing.T) {
	editLine := func(doc *documents.Document, line int, text string) []documents.ChangeEvent {
		return []documents.ChangeEvent{{
			Range: &common.Range{
				Start: common.Position{Line: line, Column: 0},
				End:   common.Position{Line: line, Column: len(doc.Line(line))},
			},
			Text: text,
		}}
	}

	t.Run("only the affected region is re-analyzed", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		v1 := documents.NewDocument(testURI, "css", 1, defLines(21, "#111111"))
		res := a.AnalyzeVisibleRegions(v1, []common.Range{lineRange(0, 20)})
		require.True(t, res.IsComplete)

		// v2 changes line 0 and line 10, but only line 10 is reported:
		// line 0 is outside the affected region and must keep its old
		// extraction.
		lines := strings.Split(defLines(21, "#111111"), "\n")
		lines[0] = "--v00: #333333;"
		lines[10] = "--v10: #222222;"
		v2 := documents.NewDocument(testURI, "css", 2, strings.Join(lines, "\n"))

		res = a.ProcessIncrementalChange(v2, editLine(v2, 10, "--v10: #222222;"))
		assert.Equal(t, int32(2), res.Version)
		assert.Equal(t, "#222222", findDef(t, res, "--v10").Value)
		assert.Equal(t, "#111111", findDef(t, res, "--v00").Value, "outside the region the old analysis is preserved")
		assert.True(t, res.IsComplete, "coverage is unchanged by an in-place edit")
	})

	t.Run("region spans the edit buffer on both sides", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		v1 := documents.NewDocument(testURI, "css", 1, defLines(21, "#111111"))
		require.True(t, a.AnalyzeVisibleRegions(v1, []common.Range{lineRange(0, 20)}).IsComplete)

		v2 := documents.NewDocument(testURI, "css", 2, defLines(21, "#222222"))
		res := a.ProcessIncrementalChange(v2, editLine(v2, 10, "--v10: #222222;"))

		assert.Equal(t, "#222222", findDef(t, res, "--v05").Value, "five lines above the edit")
		assert.Equal(t, "#222222", findDef(t, res, "--v15").Value, "five lines below the edit")
		assert.Equal(t, "#111111", findDef(t, res, "--v04").Value)
		assert.Equal(t, "#111111", findDef(t, res, "--v16").Value)
	})

	t.Run("uncached document analyzes the affected region only", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		doc := documents.NewDocument(testURI, "css", 3, defLines(60, "#ff0000"))

		res := a.ProcessIncrementalChange(doc, editLine(doc, 30, "--v30: #ff0000;"))
		assert.False(t, res.IsComplete)
		assert.Len(t, res.Definitions, 11)

		assert.Eventually(t, func() bool {
			return a.GetAnalysisResult(testURI).IsComplete
		}, 2*time.Second, 5*time.Millisecond)
		assert.Len(t, a.GetAnalysisResult(testURI).Definitions, 60)
	})

	t.Run("whole document change without a range", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		v1 := documents.NewDocument(testURI, "css", 1, defLines(8, "#111111"))
		a.AnalyzeVisibleRegions(v1, []common.Range{lineRange(0, 7)})

		v2 := documents.NewDocument(testURI, "css", 2, defLines(8, "#222222"))
		res := a.ProcessIncrementalChange(v2, []documents.ChangeEvent{{Text: defLines(8, "#222222")}})
		assert.True(t, res.IsComplete)
		assert.Equal(t, "#222222", findDef(t, res, "--v00").Value)
	})

	t.Run("stale version is ignored", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		v2 := documents.NewDocument(testURI, "css", 2, defLines(8, "#222222"))
		a.AnalyzeVisibleRegions(v2, []common.Range{lineRange(0, 7)})

		v1 := documents.NewDocument(testURI, "css", 1, defLines(8, "#111111"))
		res := a.ProcessIncrementalChange(v1, editLine(v1, 0, "--v00: #111111;"))
		assert.Equal(t, int32(2), res.Version)
		assert.Equal(t, "#222222", findDef(t, res, "--v00").Value)
	})
}

func TestGetAnalysisResult(t *testing.T) {
	t.Run("unknown uri yields nil", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		assert.Nil(t, a.GetAnalysisResult("file:///nope.css"))
	})

	t.Run("returned result is a snapshot", func(t *testing.T) {
		a := newAnalyzer()
		defer a.Close()
		doc := documents.NewDocument(testURI, "css", 1, defLines(4, "#ff0000"))
		a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(0, 3)})

		res := a.GetAnalysisResult(testURI)
		res.Definitions[0].Value = "mutated"
		assert.Equal(t, "#ff0000", a.GetAnalysisResult(testURI).Definitions[0].Value)
	})
}

func TestInvalidateDocument(t *testing.T) {
	a := newAnalyzer()
	defer a.Close()
	doc := documents.NewDocument(testURI, "css", 1, defLines(4, "#ff0000"))
	a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(0, 3)})
	require.NotNil(t, a.GetAnalysisResult(testURI))

	a.InvalidateDocument(testURI)
	assert.Nil(t, a.GetAnalysisResult(testURI))
	assert.Equal(t, 0, a.Stats().Documents)
}

func TestClearCache(t *testing.T) {
	a := newAnalyzer()
	defer a.Close()
	for i := 0; i < 3; i++ {
		uri := fmt.Sprintf("file:///test/%d.css", i)
		doc := documents.NewDocument(uri, "css", 1, defLines(4, "#ff0000"))
		a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(0, 3)})
	}
	assert.Equal(t, 3, a.Stats().Documents)

	a.ClearCache()
	assert.Equal(t, 0, a.Stats().Documents)
}

func TestCloseStopsBackgroundWork(t *testing.T) {
	a := newAnalyzer()
	doc := documents.NewDocument(testURI, "css", 1, defLines(500, "#ff0000"))
	a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(0, 0)})

	done := make(chan struct{})
	go func() {
		a.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not stop the background pass")
	}
}

func TestStats(t *testing.T) {
	a := newAnalyzer()
	defer a.Close()
	doc := documents.NewDocument(testURI, "css", 1, defLines(4, "#ff0000"))
	a.AnalyzeVisibleRegions(doc, []common.Range{lineRange(0, 3)})

	stats := a.Stats()
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, stats.CompleteDocuments)
	assert.Equal(t, int64(1), stats.RegionsAnalyzed)
}
