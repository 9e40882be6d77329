package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/graph"
)

func cssDoc(content string) *documents.Document {
	return documents.NewDocument("file:///test/main.css", "css", 1, content)
}

func scssDoc(content string) *documents.Document {
	return documents.NewDocument("file:///test/main.scss", "scss", 1, content)
}

func TestFindVariableDependencies(t *testing.T) {
	t.Run("one hop only", func(t *testing.T) {
		doc := cssDoc("--base: #ff0000;\n--mid: var(--base);\n--top: var(--mid);")

		assert.Equal(t, []string{"--mid"}, graph.FindVariableDependencies("--top", doc))
		assert.Equal(t, []string{"--base"}, graph.FindVariableDependencies("--mid", doc))
		assert.Empty(t, graph.FindVariableDependencies("--base", doc))
	})

	t.Run("fallback references count", func(t *testing.T) {
		doc := cssDoc("--x: var(--a, var(--b));")
		assert.Equal(t, []string{"--a", "--b"}, graph.FindVariableDependencies("--x", doc))
	})

	t.Run("duplicate references deduplicated", func(t *testing.T) {
		doc := cssDoc("--x: var(--a) var(--a);")
		assert.Equal(t, []string{"--a"}, graph.FindVariableDependencies("--x", doc))
	})

	t.Run("scss dependencies", func(t *testing.T) {
		doc := scssDoc("$base: #ff0000;\n$shadow: rgba($base, 0.5);")
		assert.Equal(t, []string{"$base"}, graph.FindVariableDependencies("$shadow", doc))
	})

	t.Run("undefined name has none", func(t *testing.T) {
		doc := cssDoc("--a: red;")
		assert.Empty(t, graph.FindVariableDependencies("--nope", doc))
	})
}

func TestFindVariableReferences(t *testing.T) {
	doc := cssDoc("--base: #ff0000;\n.a { color: var(--base); }\n.b { border-color: var(--base); }")

	refs := graph.FindVariableReferences("--base", doc)
	require.Len(t, refs, 2)
	assert.Equal(t, 1, refs[0].Range.Start.Line)
	assert.Equal(t, 2, refs[1].Range.Start.Line)
}

func TestDetectCircularReferences(t *testing.T) {
	t.Run("two variable cycle", func(t *testing.T) {
		doc := scssDoc("$a: $b;\n$b: $a;")

		cycles := graph.DetectCircularReferences(doc)
		require.Len(t, cycles, 1)
		assert.Contains(t, cycles[0], "$a")
		assert.Contains(t, cycles[0], "$b")
		assert.Equal(t, cycles[0][0], cycles[0][len(cycles[0])-1], "cycle closes on its first name")
	})

	t.Run("self reference", func(t *testing.T) {
		doc := cssDoc("--a: var(--a);")

		cycles := graph.DetectCircularReferences(doc)
		require.Len(t, cycles, 1)
		assert.Equal(t, []string{"--a", "--a"}, cycles[0])
	})

	t.Run("disjoint cycles each reported", func(t *testing.T) {
		doc := cssDoc("--a: var(--b);\n--b: var(--a);\n--x: var(--y);\n--y: var(--x);")

		cycles := graph.DetectCircularReferences(doc)
		assert.Len(t, cycles, 2)
	})

	t.Run("acyclic chain", func(t *testing.T) {
		doc := cssDoc("--base: #ff0000;\n--mid: var(--base);\n--top: var(--mid);")
		assert.Empty(t, graph.DetectCircularReferences(doc))
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		doc := cssDoc("--base: #ff0000;\n--l: var(--base);\n--r: var(--base);\n--tip: var(--l) var(--r);")
		assert.Empty(t, graph.DetectCircularReferences(doc))
	})

	t.Run("reference to undefined is not a cycle", func(t *testing.T) {
		doc := cssDoc("--a: var(--ghost);")
		assert.Empty(t, graph.DetectCircularReferences(doc))
	})
}

func TestFindAffectedVariables(t *testing.T) {
	t.Run("transitive dependents with chains", func(t *testing.T) {
		doc := cssDoc("--base: #ff0000;\n--mid: var(--base);\n--top: var(--mid);")

		affected := graph.FindAffectedVariables("--base", doc)
		require.Len(t, affected, 2)
		assert.Equal(t, "--mid", affected[0].Name)
		assert.Equal(t, []string{"--base", "--mid"}, affected[0].Chain)
		assert.Equal(t, "--top", affected[1].Name)
		assert.Equal(t, []string{"--base", "--mid", "--top"}, affected[1].Chain)
	})

	t.Run("diamond reports each variable once", func(t *testing.T) {
		doc := cssDoc("--base: #ff0000;\n--l: var(--base);\n--r: var(--base);\n--tip: var(--l) var(--r);")

		affected := graph.FindAffectedVariables("--base", doc)
		names := make([]string, len(affected))
		for i, a := range affected {
			names[i] = a.Name
		}
		assert.ElementsMatch(t, []string{"--l", "--r", "--tip"}, names)
	})

	t.Run("terminates on cycles", func(t *testing.T) {
		doc := scssDoc("$a: $b;\n$b: $a;")

		affected := graph.FindAffectedVariables("$a", doc)
		require.Len(t, affected, 1)
		assert.Equal(t, "$b", affected[0].Name)
	})

	t.Run("leaf variable affects nothing", func(t *testing.T) {
		doc := cssDoc("--base: #ff0000;\n--mid: var(--base);")
		assert.Empty(t, graph.FindAffectedVariables("--mid", doc))
	})
}

func TestMixedKindGraph(t *testing.T) {
	doc := scssDoc("$brand: #ff0000;\n--brand: #00ff00;\n.x { color: var(--brand); border-color: $brand; }")

	g := graph.Build(doc)
	assert.Equal(t, []string{"$brand", "--brand"}, g.Names())

	refs := graph.FindVariableReferences("$brand", doc)
	assert.Len(t, refs, 1)
	refs = graph.FindVariableReferences("--brand", doc)
	assert.Len(t, refs, 1)
}
