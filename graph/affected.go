package graph

import (
	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/internal/collections"
)

// AffectedVariable is one variable reachable from a changed variable
// through reverse dependency edges. Chain records the path from the
// changed variable to this one.
type AffectedVariable struct {
	Name  string   `json:"name"`
	Chain []string `json:"chain"`
}

// FindAffectedVariables computes the transitive set of variables whose
// resolved value could change when target changes.
func FindAffectedVariables(target string, doc *documents.Document) []AffectedVariable {
	return Build(doc).AffectedBy(target)
}

// AffectedBy walks reverse dependency edges from target. A global
// visited set keeps the walk finite on cyclic graphs; each variable is
// reported once, with the chain that first reached it.
func (g *Graph) AffectedBy(target string) []AffectedVariable {
	visited := collections.NewSet(target)
	var affected []AffectedVariable
	g.collectAffected(target, []string{target}, visited, &affected)
	return affected
}

func (g *Graph) collectAffected(name string, chain []string, visited collections.Set[string], out *[]AffectedVariable) {
	for _, dependent := range g.dependents[name] {
		if visited.Has(dependent) {
			continue
		}
		visited.Add(dependent)
		next := make([]string, len(chain), len(chain)+1)
		copy(next, chain)
		next = append(next, dependent)
		*out = append(*out, AffectedVariable{Name: dependent, Chain: next})
		g.collectAffected(dependent, next, visited, out)
	}
}
