package analyzer

import (
	"sort"

	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/parser/common"
)

// Result is the cached analysis of one document. Items are sorted by
// position. IsComplete reports whether the analyzed regions cover the
// whole document; until then the result reflects only the regions in
// Regions.
type Result struct {
	URI         string                      `json:"uri"`
	Version     int32                       `json:"version"`
	Definitions []common.VariableDefinition `json:"definitions"`
	Usages      []common.VariableUsage      `json:"usages"`
	Colors      []common.ColorMatch         `json:"colors"`
	Imports     []common.ImportStatement    `json:"imports"`
	Regions     []Region                    `json:"regions"`
	IsComplete  bool                        `json:"isComplete"`
}

func newResult(doc *documents.Document) *Result {
	return &Result{URI: doc.URI(), Version: doc.Version()}
}

// merge replaces the result's items inside the region with the freshly
// parsed ones and records the region as covered. Items outside the
// region are preserved as-is.
func (r *Result) merge(parsed *common.ParseResult, region Region) {
	r.Definitions = mergeItems(r.Definitions, parsed.Definitions, region, func(d common.VariableDefinition) common.Range { return d.Range })
	r.Usages = mergeItems(r.Usages, parsed.Usages, region, func(u common.VariableUsage) common.Range { return u.Range })
	r.Colors = mergeItems(r.Colors, parsed.Colors, region, func(c common.ColorMatch) common.Range { return c.Range })
	r.Imports = mergeItems(r.Imports, parsed.Imports, region, func(i common.ImportStatement) common.Range { return i.Range })
	r.Regions = mergeRegions(append(r.Regions, region))
}

// mergeItems drops old items starting inside the region, appends the
// fresh ones and restores position order.
func mergeItems[T any](old, fresh []T, region Region, rangeOf func(T) common.Range) []T {
	out := make([]T, 0, len(old)+len(fresh))
	for _, item := range old {
		if region.contains(rangeOf(item).Start.Line) {
			continue
		}
		out = append(out, item)
	}
	out = append(out, fresh...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := rangeOf(out[i]).Start, rangeOf(out[j]).Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// clone returns a copy whose slices the caller may hold across later
// merges.
func (r *Result) clone() *Result {
	c := *r
	c.Definitions = append([]common.VariableDefinition(nil), r.Definitions...)
	c.Usages = append([]common.VariableUsage(nil), r.Usages...)
	c.Colors = append([]common.ColorMatch(nil), r.Colors...)
	c.Imports = append([]common.ImportStatement(nil), r.Imports...)
	c.Regions = append([]Region(nil), r.Regions...)
	return &c
}
