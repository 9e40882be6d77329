package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/csslens/parser/common"
)

func TestFindColors(t *testing.T) {
	t.Run("hex literal", func(t *testing.T) {
		matches := common.FindColors("a { color: #ff0000; }")
		require.Len(t, matches, 1)
		assert.Equal(t, "#ff0000", matches[0].Raw)
		assert.Equal(t, "#ff0000", matches[0].Value.Hex)
		assert.Equal(t, 11, matches[0].Range.Start.Column)
		assert.Equal(t, 18, matches[0].Range.End.Column)
	})

	t.Run("short hex", func(t *testing.T) {
		matches := common.FindColors("border-color: #f00;")
		require.Len(t, matches, 1)
		assert.Equal(t, "#f00", matches[0].Raw)
		assert.Equal(t, "#ff0000", matches[0].Value.Hex)
	})

	t.Run("rgb function", func(t *testing.T) {
		matches := common.FindColors("background: rgb(0, 128, 255);")
		require.Len(t, matches, 1)
		assert.Equal(t, "rgb(0, 128, 255)", matches[0].Raw)
		assert.Equal(t, 128, matches[0].Value.RGB.G)
	})

	t.Run("hsl function", func(t *testing.T) {
		matches := common.FindColors("background: hsl(120, 100%, 50%);")
		require.Len(t, matches, 1)
		assert.Equal(t, "#00ff00", matches[0].Value.Hex)
	})

	t.Run("named color", func(t *testing.T) {
		matches := common.FindColors("color: rebeccapurple;")
		require.Len(t, matches, 1)
		assert.Equal(t, "rebeccapurple", matches[0].Raw)
		assert.Equal(t, "#663399", matches[0].Value.Hex)
	})

	t.Run("multiple on one line", func(t *testing.T) {
		matches := common.FindColors("gradient: #fff, rgba(0,0,0,0.5), red;")
		require.Len(t, matches, 3)
		assert.Equal(t, "#fff", matches[0].Raw)
		assert.Equal(t, "rgba(0,0,0,0.5)", matches[1].Raw)
		assert.Equal(t, "red", matches[2].Raw)
	})

	t.Run("comment lines skipped", func(t *testing.T) {
		content := "// #ff0000\n/* red */\ncolor: #00ff00;"
		matches := common.FindColors(content)
		require.Len(t, matches, 1)
		assert.Equal(t, "#00ff00", matches[0].Raw)
		assert.Equal(t, 2, matches[0].Range.Start.Line)
	})

	t.Run("variable names are not named colors", func(t *testing.T) {
		matches := common.FindColors("--red: #ff0000;\n$red: blue;")
		require.Len(t, matches, 2)
		assert.Equal(t, "#ff0000", matches[0].Raw)
		assert.Equal(t, "blue", matches[1].Raw)
	})

	t.Run("function arguments not rematched", func(t *testing.T) {
		matches := common.FindColors("color: rgb(255, 0, 0);")
		require.Len(t, matches, 1)
	})

	t.Run("invalid function literal dropped", func(t *testing.T) {
		matches := common.FindColors("width: calc(100% - rgb(nope));")
		assert.Empty(t, matches)
	})

	t.Run("compound identifiers skipped", func(t *testing.T) {
		matches := common.FindColors("background: red-ish;")
		assert.Empty(t, matches)
	})
}
