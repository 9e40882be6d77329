package resolver

import (
	"context"
	"path/filepath"
	"strings"

	"bennypowers.dev/csslens/color"
	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/internal/uriutil"
	"bennypowers.dev/csslens/parser/common"
)

// importExtensions are tried in order when an import path omits its
// extension.
var importExtensions = []string{"", ".scss", ".sass", ".css"}

// lookupImports resolves name through the document's @import and @use
// statements, in declaration order. A namespaced name ($ns.foo) is
// rewritten to $foo and searched only in @use imports whose alias is
// ns; a plain name is searched in @import'd files and in @use imports
// with a wildcard alias. The first import with a resolvable definition
// wins; imports are not followed transitively.
func (r *Resolver) lookupImports(ctx context.Context, name string, doc *documents.Document, vctx *common.VariableContext) (*color.Value, error) {
	ns, base := splitNamespace(name)
	for _, imp := range vctx.Imports {
		if err := ctx.Err(); err != nil {
			return nil, NewPerformanceTimeoutError("import resolution", r.settings.ResolveTimeout)
		}
		if ns != "" {
			if !imp.Use || imp.Alias != ns {
				continue
			}
		} else if imp.Use && imp.Alias != "*" {
			// @use members are only reachable through their namespace.
			continue
		}
		imported, ok := r.openImport(doc, imp.Path)
		if !ok {
			continue
		}
		impCtx := r.variableContext(imported, common.KindSCSSVariable)
		def, ok := impCtx.Definition(base)
		if !ok {
			continue
		}
		if v, err := r.resolveSCSSDefinition(base, def, impCtx); err == nil {
			return v, nil
		}
	}
	return nil, NewNotFoundError(name, doc.URI())
}

// openImport resolves an import path to a document, trying the literal
// path and then the `.scss`, `.sass` and `.css` extensions, each also
// with the partial `_` prefix on the file name. Relative paths resolve
// against the importing file's directory, bare paths against the
// workspace root.
func (r *Resolver) openImport(doc *documents.Document, importPath string) (*documents.Document, bool) {
	baseDir := r.enum.Root()
	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		baseDir = filepath.Dir(uriutil.URIToPath(doc.URI()))
	}
	for _, candidate := range importCandidates(baseDir, importPath) {
		imported, err := r.opener.Open(uriutil.PathToURI(candidate))
		if err != nil {
			continue
		}
		return imported, true
	}
	return nil, false
}

// importCandidates lists the concrete paths an import statement may
// refer to, in resolution order.
func importCandidates(baseDir, importPath string) []string {
	cleaned := filepath.FromSlash(importPath)
	candidates := make([]string, 0, 2*len(importExtensions))
	for _, ext := range importExtensions {
		candidates = append(candidates, filepath.Join(baseDir, cleaned+ext))
	}
	dir, base := filepath.Split(cleaned)
	for _, ext := range importExtensions {
		candidates = append(candidates, filepath.Join(baseDir, dir, "_"+base+ext))
	}
	return candidates
}

// splitNamespace divides a namespaced SCSS name into its namespace and
// the bare variable name: "$ns.foo" yields ("ns", "$foo"). Names
// without a namespace yield ("", name).
func splitNamespace(name string) (ns, base string) {
	trimmed := strings.TrimPrefix(name, "$")
	dot := strings.Index(trimmed, ".")
	if !strings.HasPrefix(name, "$") || dot <= 0 || dot == len(trimmed)-1 {
		return "", name
	}
	return trimmed[:dot], "$" + trimmed[dot+1:]
}
