package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/csslens/graph"
	"bennypowers.dev/csslens/resolver"
	"bennypowers.dev/csslens/settings"
	"bennypowers.dev/csslens/workspace"
)

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	s := settings.Default()
	return resolver.New(s, workspace.NewEnumerator(t.TempDir(), s), workspace.NewOpener())
}

func TestValidateVariableDefinitions(t *testing.T) {
	ctx := context.Background()

	t.Run("clean document has no issues", func(t *testing.T) {
		doc := cssDoc("--brand-primary: #ff0000;\n--accent: var(--brand-primary);")
		assert.Empty(t, graph.ValidateVariableDefinitions(ctx, doc, newResolver(t)))
	})

	t.Run("cycle members are errors", func(t *testing.T) {
		doc := scssDoc("$a: $b;\n$b: $a;")

		issues := graph.ValidateVariableDefinitions(ctx, doc, newResolver(t))
		require.Len(t, issues, 2)
		for _, issue := range issues {
			assert.Equal(t, graph.SeverityError, issue.Severity)
			assert.Contains(t, issue.Message, "circular")
		}
	})

	t.Run("undefined dependency is an error", func(t *testing.T) {
		doc := cssDoc("--a: var(--ghost);")

		issues := graph.ValidateVariableDefinitions(ctx, doc, newResolver(t))
		require.Len(t, issues, 1)
		assert.Equal(t, graph.SeverityError, issues[0].Severity)
		assert.Equal(t, "--a", issues[0].Name)
		assert.Contains(t, issues[0].Message, "--ghost")
	})

	t.Run("color-like value that cannot resolve is a warning", func(t *testing.T) {
		doc := scssDoc("$base: #ff0000;\n$shadow: rgba($base, 0.5);")

		issues := graph.ValidateVariableDefinitions(ctx, doc, newResolver(t))
		require.Len(t, issues, 1)
		assert.Equal(t, graph.SeverityWarning, issues[0].Severity)
		assert.Equal(t, "$shadow", issues[0].Name)
	})

	t.Run("non color values are never warned about", func(t *testing.T) {
		doc := cssDoc("--pad: 4px;\n--stack: var(--pad);")
		assert.Empty(t, graph.ValidateVariableDefinitions(ctx, doc, newResolver(t)))
	})

	t.Run("naming convention violations are info", func(t *testing.T) {
		doc := cssDoc("--BrandColor: #ffffff;")

		issues := graph.ValidateVariableDefinitions(ctx, doc, newResolver(t))
		require.Len(t, issues, 1)
		assert.Equal(t, graph.SeverityInfo, issues[0].Severity)
		assert.Contains(t, issues[0].Message, "kebab-case")
	})

	t.Run("underscored scss name is info", func(t *testing.T) {
		doc := scssDoc("$snake_case: #ffffff;")

		issues := graph.ValidateVariableDefinitions(ctx, doc, newResolver(t))
		require.Len(t, issues, 1)
		assert.Equal(t, graph.SeverityInfo, issues[0].Severity)
	})

	t.Run("issue ranges point at the definition", func(t *testing.T) {
		doc := cssDoc("--ok: #ffffff;\n--b: var(--ghost);")

		issues := graph.ValidateVariableDefinitions(ctx, doc, newResolver(t))
		require.Len(t, issues, 1)
		assert.Equal(t, 1, issues[0].Range.Start.Line)
	})
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", graph.SeverityError.String())
	assert.Equal(t, "warning", graph.SeverityWarning.String())
	assert.Equal(t, "info", graph.SeverityInfo.String())
}
