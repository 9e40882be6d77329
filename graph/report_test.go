package graph_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/csslens/graph"
)

func TestGenerateUsageReport(t *testing.T) {
	t.Run("unused and referenced variables", func(t *testing.T) {
		doc := cssDoc("--used: #ff0000;\n--unused: #00ff00;\n.a { color: var(--used); }\n.b { color: var(--used); }")

		report := graph.GenerateUsageReport(doc)
		assert.Equal(t, 2, report.TotalDefinitions)
		assert.Equal(t, 2, report.TotalUsages)
		assert.Equal(t, []string{"--unused"}, report.Unused)
		require.Len(t, report.MostReferenced, 1)
		assert.Equal(t, graph.VariableCount{Name: "--used", Count: 2}, report.MostReferenced[0])
	})

	t.Run("ranking is by count then name", func(t *testing.T) {
		doc := cssDoc("--a: #111111;\n--b: #222222;\n--c: #333333;\n" +
			".x { color: var(--b); border-color: var(--b); outline-color: var(--c); background: var(--a); }")

		report := graph.GenerateUsageReport(doc)
		require.Len(t, report.MostReferenced, 3)
		assert.Equal(t, "--b", report.MostReferenced[0].Name)
		assert.Equal(t, "--a", report.MostReferenced[1].Name, "ties break by name")
		assert.Equal(t, "--c", report.MostReferenced[2].Name)
	})

	t.Run("ranking is capped at ten", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 12; i++ {
			fmt.Fprintf(&sb, "--v%02d: #ff0000;\n", i)
		}
		for i := 0; i < 12; i++ {
			for n := 0; n <= i; n++ {
				fmt.Fprintf(&sb, ".x { color: var(--v%02d); }\n", i)
			}
		}
		report := graph.GenerateUsageReport(cssDoc(sb.String()))

		require.Len(t, report.MostReferenced, 10)
		assert.Equal(t, "--v11", report.MostReferenced[0].Name)
		assert.Equal(t, 12, report.MostReferenced[0].Count)
		assert.Empty(t, report.Unused)
	})

	t.Run("scss definitions referencing each other count as usages", func(t *testing.T) {
		doc := scssDoc("$base: #ff0000;\n$alias: $base;")

		report := graph.GenerateUsageReport(doc)
		assert.Equal(t, []string{"$alias"}, report.Unused)
		require.Len(t, report.MostReferenced, 1)
		assert.Equal(t, "$base", report.MostReferenced[0].Name)
	})
}

func TestOptimizeVariables(t *testing.T) {
	doc := cssDoc("--never: #111111;\n--once: #222222;\n--often: #333333;\n" +
		".a { color: var(--once); }\n.b { color: var(--often); }\n.c { color: var(--often); }")

	suggestions := graph.OptimizeVariables(doc)
	require.Len(t, suggestions, 2)

	assert.Equal(t, graph.SuggestionRemoveUnused, suggestions[0].Kind)
	assert.Equal(t, "--never", suggestions[0].Name)

	assert.Equal(t, graph.SuggestionInlineSingleUse, suggestions[1].Kind)
	assert.Equal(t, "--once", suggestions[1].Name)
	assert.Contains(t, suggestions[1].Message, "#222222")
}
