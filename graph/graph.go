// Package graph derives dependency relationships between the
// variables of one document: one-hop dependency lists, cycle
// detection, reverse impact analysis, and validation/usage reports
// built on top of them.
//
// The graph is never persisted. Source text changes under the caller,
// so every entry point rebuilds it from a fresh extraction pass.
package graph

import (
	"fmt"
	"sort"

	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/parser/common"
	"bennypowers.dev/csslens/parser/css"
	"bennypowers.dev/csslens/parser/scss"
)

// Graph is a directed dependency graph over one document's variable
// definitions: an edge a -> b means the definition of a references b.
type Graph struct {
	// names holds every defined variable once, in declaration order.
	names []string
	// definitions is keyed by name; the last definition of a name wins,
	// matching resolution semantics.
	definitions map[string]common.VariableDefinition
	// dependencies maps a name to the names its value references.
	dependencies map[string][]string
	// dependents is the reverse adjacency: names whose values reference
	// the key.
	dependents map[string][]string
	// usages are every variable reference in the document, both kinds.
	usages []common.VariableUsage
}

// Build extracts the document and assembles its dependency graph. CSS
// custom properties are always scanned; $variables only for SCSS and
// Sass documents.
func Build(doc *documents.Document) *Graph {
	content := doc.Content()
	defs := css.ExtractVariableDefinitions(content)
	usages := css.ExtractVariableUsages(content)
	if isSCSS(doc.LanguageID()) {
		defs = append(defs, scss.ExtractVariableDefinitions(content)...)
		usages = append(usages, scss.ExtractVariableUsages(content)...)
		sortByPosition(defs)
	}

	g := &Graph{
		definitions:  make(map[string]common.VariableDefinition, len(defs)),
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
		usages:       usages,
	}
	for _, def := range defs {
		if _, seen := g.definitions[def.Name]; !seen {
			g.names = append(g.names, def.Name)
		}
		g.definitions[def.Name] = def
	}
	for _, name := range g.names {
		deps := referencedNames(g.definitions[name])
		if len(deps) == 0 {
			continue
		}
		g.dependencies[name] = deps
		for _, dep := range deps {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}
	return g
}

// Names returns the defined variable names in declaration order.
func (g *Graph) Names() []string {
	return g.names
}

// Definition looks up the winning definition of a name.
func (g *Graph) Definition(name string) (common.VariableDefinition, bool) {
	def, ok := g.definitions[name]
	return def, ok
}

// Dependencies returns the names the definition of name references,
// one hop only.
func (g *Graph) Dependencies(name string) []string {
	return g.dependencies[name]
}

// Dependents returns the names whose definitions reference name, one
// hop only, in declaration order.
func (g *Graph) Dependents(name string) []string {
	return g.dependents[name]
}

// Usages returns every variable reference in the document.
func (g *Graph) Usages() []common.VariableUsage {
	return g.usages
}

// Cycles detects circular reference chains. Each returned cycle starts
// and ends with the same name ("--a", "--b", "--a"). Traversal starts
// from each definition in declaration order, so disjoint cycles are
// each reported once; multiple cycles sharing nodes collapse into one
// report.
func (g *Graph) Cycles() [][]string {
	visited := make(map[string]bool)
	var cycles [][]string
	for _, node := range g.names {
		recStack := make(map[string]bool)
		if cycle := g.findCycleDFS(node, visited, recStack, nil); cycle != nil {
			cycles = append(cycles, cycle)
		}
	}
	return cycles
}

// findCycleDFS walks dependencies depth-first. Revisiting a node on
// the current recursion stack closes a cycle: the cycle is the suffix
// of path from that node, with the node appended again.
func (g *Graph) findCycleDFS(node string, visited, recStack map[string]bool, path []string) []string {
	if recStack[node] {
		cycleStart := -1
		for i, n := range path {
			if n == node {
				cycleStart = i
				break
			}
		}
		if cycleStart == -1 {
			panic(fmt.Sprintf("node %q on recursion stack but not on path %v", node, path))
		}
		return append(path[cycleStart:], node)
	}
	if visited[node] {
		return nil
	}

	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, recStack, path); cycle != nil {
			return cycle
		}
	}

	recStack[node] = false
	return nil
}

// FindVariableDependencies returns the names referenced by the
// definition of name in doc, one hop only. An undefined name has no
// dependencies.
func FindVariableDependencies(name string, doc *documents.Document) []string {
	return Build(doc).Dependencies(name)
}

// FindVariableReferences returns every usage of name in doc.
func FindVariableReferences(name string, doc *documents.Document) []common.VariableUsage {
	var refs []common.VariableUsage
	for _, u := range Build(doc).usages {
		if u.Name == name {
			refs = append(refs, u)
		}
	}
	return refs
}

// DetectCircularReferences reports the document's circular reference
// chains.
func DetectCircularReferences(doc *documents.Document) [][]string {
	return Build(doc).Cycles()
}

// referencedNames scans a definition's raw value for references of the
// definition's own kind, deduplicated in first-seen order.
func referencedNames(def common.VariableDefinition) []string {
	var usages []common.VariableUsage
	if def.Kind == common.KindSCSSVariable {
		usages = scss.ExtractVariableUsages(def.Value)
	} else {
		usages = css.ExtractVariableUsages(def.Value)
	}
	seen := make(map[string]bool, len(usages))
	var names []string
	for _, u := range usages {
		if seen[u.Name] {
			continue
		}
		seen[u.Name] = true
		names = append(names, u.Name)
	}
	return names
}

func sortByPosition(defs []common.VariableDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		a, b := defs[i].Range.Start, defs[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

func isSCSS(languageID string) bool {
	return languageID == "scss" || languageID == "sass"
}
