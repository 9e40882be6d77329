package resolver_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/internal/uriutil"
	"bennypowers.dev/csslens/settings"
)

// docAt builds an in-memory document whose URI points inside root, the
// way an open editor buffer would.
func docAt(t *testing.T, root, rel, languageID, content string) *documents.Document {
	t.Helper()
	uri := uriutil.PathToURI(filepath.Join(root, filepath.FromSlash(rel)))
	return documents.NewDocument(uri, languageID, 1, content)
}

func TestWorkspaceSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("css definition found in another file", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "theme.css", ":root { --shared: #aabbcc; }")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.css", "css", ".x { color: var(--shared); }")
		v := r.ResolveCSSVariable(ctx, "--shared", doc)
		require.NotNil(t, v)
		assert.Equal(t, "#aabbcc", v.Hex)
	})

	t.Run("scss definition found in a partial", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "_vars.scss", "$shared: #112233;")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.scss", "scss", ".x { color: $shared; }")
		v := r.ResolveSCSSVariable(ctx, "$shared", doc)
		require.NotNil(t, v)
		assert.Equal(t, "#112233", v.Hex)
	})

	t.Run("chain inside the found file is followed", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "theme.css", ":root { --base: #ff0000; --shared: var(--base); }")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.css", "css", "")
		v := r.ResolveCSSVariable(ctx, "--shared", doc)
		require.NotNil(t, v)
		assert.Equal(t, "#ff0000", v.Hex)
	})

	t.Run("first file in walk order wins", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "a.css", ":root { --dup: #111111; }")
		writeFile(t, root, "b.css", ":root { --dup: #222222; }")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.css", "css", "")
		v := r.ResolveCSSVariable(ctx, "--dup", doc)
		require.NotNil(t, v)
		assert.Equal(t, "#111111", v.Hex)
	})

	t.Run("negative outcome is cached", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "theme.css", ":root { --other: #aabbcc; }")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.css", "css", "")
		assert.Nil(t, r.ResolveCSSVariable(ctx, "--missing", doc))
		assert.Nil(t, r.ResolveCSSVariable(ctx, "--missing", doc))
		assert.Equal(t, int64(1), r.Stats().WorkspaceScans, "second lookup served from cache")
	})

	t.Run("positive outcome is cached", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "theme.css", ":root { --shared: #aabbcc; }")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.css", "css", "")
		require.NotNil(t, r.ResolveCSSVariable(ctx, "--shared", doc))
		require.NotNil(t, r.ResolveCSSVariable(ctx, "--shared", doc))
		assert.Equal(t, int64(1), r.Stats().WorkspaceScans)
	})

	t.Run("oversized files are skipped", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "big.css", ":root { --shared: #aabbcc; }")
		s := settings.Default()
		s.MaxFileBytes = 8
		r := newResolver(t, root, s)

		doc := docAt(t, root, "main.css", "css", "")
		assert.Nil(t, r.ResolveCSSVariable(ctx, "--shared", doc))
	})

	t.Run("open buffer shadows its own file on disk", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "main.css", ":root { --only-on-disk: #aabbcc; }")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.css", "css", ".x {}")
		assert.Nil(t, r.ResolveCSSVariable(ctx, "--only-on-disk", doc))
	})

	t.Run("invalidation picks up a disk change", func(t *testing.T) {
		root := t.TempDir()
		themePath := writeFile(t, root, "theme.css", ":root { --shared: #aabbcc; }")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.css", "css", "")
		v := r.ResolveCSSVariable(ctx, "--shared", doc)
		require.NotNil(t, v)
		assert.Equal(t, "#aabbcc", v.Hex)

		writeFile(t, root, "theme.css", ":root { --shared: #ddeeff; }")
		v = r.ResolveCSSVariable(ctx, "--shared", doc)
		require.NotNil(t, v)
		assert.Equal(t, "#aabbcc", v.Hex, "stale cache until invalidated")

		r.InvalidateDocument(uriutil.PathToURI(themePath))
		v = r.ResolveCSSVariable(ctx, "--shared", doc)
		require.NotNil(t, v)
		assert.Equal(t, "#ddeeff", v.Hex)
	})

	t.Run("namespaced scss names never hit the workspace", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "_vars.scss", "$brand: #112233;")
		r := newResolver(t, root, settings.Default())

		doc := docAt(t, root, "main.scss", "scss", "")
		assert.Nil(t, r.ResolveSCSSVariable(ctx, "$vars.brand", doc))
		assert.Equal(t, int64(0), r.Stats().WorkspaceScans)
	})
}
