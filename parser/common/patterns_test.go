package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bennypowers.dev/csslens/parser/common"
)

func TestIsCommentLine(t *testing.T) {
	t.Run("line comment", func(t *testing.T) {
		assert.True(t, common.IsCommentLine("// scss comment"))
		assert.True(t, common.IsCommentLine("   // indented"))
	})

	t.Run("block comment", func(t *testing.T) {
		assert.True(t, common.IsCommentLine("/* block */"))
		assert.True(t, common.IsCommentLine("\t/* open only"))
	})

	t.Run("code lines", func(t *testing.T) {
		assert.False(t, common.IsCommentLine("--primary: #ff0000;"))
		assert.False(t, common.IsCommentLine("color: red; // trailing"))
		assert.False(t, common.IsCommentLine(""))
	})
}

func TestNormalizeLineEndings(t *testing.T) {
	t.Run("crlf", func(t *testing.T) {
		assert.Equal(t, "a\nb", common.NormalizeLineEndings("a\r\nb"))
	})

	t.Run("bare cr", func(t *testing.T) {
		assert.Equal(t, "a\nb", common.NormalizeLineEndings("a\rb"))
	})

	t.Run("lines", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", ""}, common.Lines("a\r\nb\n"))
	})
}

func TestBalancedParens(t *testing.T) {
	assert.True(t, common.BalancedParens("rgb(1, 2, 3)"))
	assert.True(t, common.BalancedParens("var(--a, var(--b))"))
	assert.False(t, common.BalancedParens("rgb(1, 2"))
	assert.False(t, common.BalancedParens("a) ("))
}

func TestRangeContains(t *testing.T) {
	r := common.NewRange(2, 4, 10)

	assert.True(t, r.Contains(common.Position{Line: 2, Column: 4}))
	assert.True(t, r.Contains(common.Position{Line: 2, Column: 9}))
	assert.False(t, r.Contains(common.Position{Line: 2, Column: 10}))
	assert.False(t, r.Contains(common.Position{Line: 1, Column: 5}))
	assert.False(t, r.Contains(common.Position{Line: 3, Column: 5}))
}

func TestVariableContext(t *testing.T) {
	t.Run("last definition wins", func(t *testing.T) {
		ctx := common.NewVariableContext()
		ctx.Definitions["--a"] = common.VariableDefinition{Name: "--a", Value: "red"}
		ctx.Definitions["--a"] = common.VariableDefinition{Name: "--a", Value: "blue"}

		def, ok := ctx.Definition("--a")
		assert.True(t, ok)
		assert.Equal(t, "blue", def.Value)
	})

	t.Run("missing definition", func(t *testing.T) {
		ctx := common.NewVariableContext()
		_, ok := ctx.Definition("--missing")
		assert.False(t, ok)
	})
}
