package analyzer

import (
	"sort"
	"strings"

	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/parser/common"
	"bennypowers.dev/csslens/parser/css"
	"bennypowers.dev/csslens/parser/scss"
)

// Priority ranks analysis regions. Visible regions and fresh edits are
// analyzed synchronously; background fills the gaps afterwards.
type Priority int

const (
	PriorityBackground Priority = iota
	PriorityVisible
)

func (p Priority) String() string {
	if p == PriorityVisible {
		return "visible"
	}
	return "background"
}

// Region is an inclusive line interval of one document.
type Region struct {
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Priority  Priority `json:"priority"`
}

func (r Region) lineCount() int {
	return r.EndLine - r.StartLine + 1
}

func (r Region) contains(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// clampRegion bounds a region to the document, returning false for
// regions entirely outside it.
func clampRegion(r Region, lineCount int) (Region, bool) {
	if r.StartLine < 0 {
		r.StartLine = 0
	}
	if r.EndLine > lineCount-1 {
		r.EndLine = lineCount - 1
	}
	return r, r.StartLine <= r.EndLine
}

// mergeRegions sorts regions and coalesces overlapping or adjacent
// ones. A merged region takes the highest priority of its parts.
func mergeRegions(regions []Region) []Region {
	if len(regions) < 2 {
		return regions
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].StartLine < regions[j].StartLine
	})
	merged := regions[:1]
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if r.StartLine <= last.EndLine+1 {
			if r.EndLine > last.EndLine {
				last.EndLine = r.EndLine
			}
			if r.Priority > last.Priority {
				last.Priority = r.Priority
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// gapRegions returns the complement of the covered regions within the
// document, as background-priority regions. Covered must already be
// merged and sorted.
func gapRegions(covered []Region, lineCount int) []Region {
	var gaps []Region
	next := 0
	for _, r := range covered {
		if r.StartLine > next {
			end := min(r.StartLine-1, lineCount-1)
			if end >= next {
				gaps = append(gaps, Region{StartLine: next, EndLine: end})
			}
		}
		if r.EndLine+1 > next {
			next = r.EndLine + 1
		}
	}
	if next < lineCount {
		gaps = append(gaps, Region{StartLine: next, EndLine: lineCount - 1})
	}
	return gaps
}

// coveredLines counts the document lines the merged regions span.
func coveredLines(regions []Region, lineCount int) int {
	total := 0
	for _, r := range regions {
		start := max(r.StartLine, 0)
		end := min(r.EndLine, lineCount-1)
		if end >= start {
			total += end - start + 1
		}
	}
	return total
}

// clampChunk bounds a region to at most maxLines lines, taking its
// head.
func clampChunk(r Region, maxLines int) Region {
	if r.lineCount() <= maxLines {
		return r
	}
	return Region{StartLine: r.StartLine, EndLine: r.StartLine + maxLines - 1}
}

// parseRegion extracts exactly the region's lines. Every emitted range
// is offset by the region's start line so it addresses the document,
// not the substring.
func parseRegion(doc *documents.Document, region Region) *common.ParseResult {
	var sb strings.Builder
	for i := region.StartLine; i <= region.EndLine; i++ {
		if i > region.StartLine {
			sb.WriteByte('\n')
		}
		sb.WriteString(doc.Line(i))
	}
	text := sb.String()

	defs := css.ExtractVariableDefinitions(text)
	usages := css.ExtractVariableUsages(text)
	var imports []common.ImportStatement
	if isSCSS(doc.LanguageID()) {
		defs = append(defs, scss.ExtractVariableDefinitions(text)...)
		usages = append(usages, scss.ExtractVariableUsages(text)...)
		imports = scss.ExtractImports(text)
	} else {
		imports = css.ExtractImports(text)
	}
	parsed := &common.ParseResult{
		Definitions: defs,
		Usages:      usages,
		Colors:      common.FindColors(text),
		Imports:     imports,
	}
	offsetResult(parsed, region.StartLine)
	return parsed
}

func offsetResult(parsed *common.ParseResult, lines int) {
	for i := range parsed.Definitions {
		offsetRange(&parsed.Definitions[i].Range, lines)
	}
	for i := range parsed.Usages {
		offsetRange(&parsed.Usages[i].Range, lines)
	}
	for i := range parsed.Colors {
		offsetRange(&parsed.Colors[i].Range, lines)
	}
	for i := range parsed.Imports {
		offsetRange(&parsed.Imports[i].Range, lines)
	}
}

func offsetRange(r *common.Range, lines int) {
	r.Start.Line += lines
	r.End.Line += lines
}

func isSCSS(languageID string) bool {
	return languageID == "scss" || languageID == "sass"
}
