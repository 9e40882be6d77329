package graph

import (
	"fmt"
	"sort"

	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/parser/common"
)

// VariableCount pairs a variable name with its usage count.
type VariableCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UsageReport cross-references a document's definitions against its
// usages.
type UsageReport struct {
	TotalDefinitions int             `json:"totalDefinitions"`
	TotalUsages      int             `json:"totalUsages"`
	Unused           []string        `json:"unused"`
	MostReferenced   []VariableCount `json:"mostReferenced"`
}

// mostReferencedLimit bounds the ranked list in a usage report.
const mostReferencedLimit = 10

// GenerateUsageReport counts how often each defined variable is
// referenced. Unused lists definitions with zero references in
// declaration order; MostReferenced ranks the rest by count, ties
// broken by name.
func GenerateUsageReport(doc *documents.Document) *UsageReport {
	g := Build(doc)
	counts := g.usageCounts()

	report := &UsageReport{
		TotalDefinitions: len(g.names),
		TotalUsages:      len(g.usages),
	}
	var ranked []VariableCount
	for _, name := range g.names {
		n := counts[name]
		if n == 0 {
			report.Unused = append(report.Unused, name)
			continue
		}
		ranked = append(ranked, VariableCount{Name: name, Count: n})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > mostReferencedLimit {
		ranked = ranked[:mostReferencedLimit]
	}
	report.MostReferenced = ranked
	return report
}

// SuggestionKind labels an optimization suggestion.
type SuggestionKind string

const (
	SuggestionRemoveUnused    SuggestionKind = "remove-unused"
	SuggestionInlineSingleUse SuggestionKind = "inline-single-use"
)

// Suggestion is one actionable optimization derived from usage
// analysis. Range points at the definition it concerns.
type Suggestion struct {
	Kind    SuggestionKind `json:"kind"`
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Range   common.Range   `json:"range"`
}

// OptimizeVariables turns usage analysis into suggestions: definitions
// never referenced can be removed, and definitions referenced exactly
// once can be inlined at their single use site.
func OptimizeVariables(doc *documents.Document) []Suggestion {
	g := Build(doc)
	counts := g.usageCounts()

	var suggestions []Suggestion
	for _, name := range g.names {
		def := g.definitions[name]
		switch counts[name] {
		case 0:
			suggestions = append(suggestions, Suggestion{
				Kind:    SuggestionRemoveUnused,
				Name:    name,
				Message: fmt.Sprintf("%s is never used and can be removed", name),
				Range:   def.Range,
			})
		case 1:
			suggestions = append(suggestions, Suggestion{
				Kind:    SuggestionInlineSingleUse,
				Name:    name,
				Message: fmt.Sprintf("%s is used once; consider inlining %q", name, def.Value),
				Range:   def.Range,
			})
		}
	}
	return suggestions
}

// usageCounts tallies references per defined name.
func (g *Graph) usageCounts() map[string]int {
	counts := make(map[string]int, len(g.names))
	for _, u := range g.usages {
		counts[u.Name]++
	}
	return counts
}
