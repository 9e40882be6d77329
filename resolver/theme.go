package resolver

import (
	"context"
	"strings"

	"bennypowers.dev/csslens/color"
	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/parser/common"
	"bennypowers.dev/csslens/parser/css"
)

// resolveThemed prefers a definition inside a block whose selector
// mentions the theme over the document's unscoped definition, falling
// back to plain resolution when no themed definition exists.
func (r *Resolver) resolveThemed(ctx context.Context, name string, doc *documents.Document, theme string) (*color.Value, error) {
	if theme != "" {
		if def, ok := themedDefinition(doc.Content(), name, theme); ok {
			vctx := r.variableContext(doc, common.KindCSSCustomProperty)
			return r.resolveCSSDefinition(name, def, vctx)
		}
	}
	return r.resolveCSS(ctx, name, doc)
}

// themedDefinition finds the last definition of name inside a block
// scoped to the theme. Block tracking is line granular, like the
// extractors: a selector line must open its block with `{` on the same
// line.
func themedDefinition(content, name, theme string) (common.VariableDefinition, bool) {
	var (
		found    common.VariableDefinition
		ok       bool
		selector []string
	)
	for lineNo, line := range common.Lines(content) {
		if common.IsCommentLine(line) {
			continue
		}
		if brace := strings.Index(line, "{"); brace >= 0 {
			selector = append(selector, strings.TrimSpace(line[:brace]))
		}
		for _, def := range css.ExtractVariableDefinitions(line) {
			if def.Name != name {
				continue
			}
			if anyMentionsTheme(selector, theme) {
				def.Range.Start.Line = lineNo
				def.Range.End.Line = lineNo
				found, ok = def, true
			}
		}
		for i := strings.Count(line, "}"); i > 0 && len(selector) > 0; i-- {
			selector = selector[:len(selector)-1]
		}
	}
	return found, ok
}

func anyMentionsTheme(selectors []string, theme string) bool {
	for _, sel := range selectors {
		if selectorMentionsTheme(sel, theme) {
			return true
		}
	}
	return false
}

// selectorMentionsTheme reports whether a selector scopes its block to
// the theme: [data-theme="X"], a .X class, or :root.X.
func selectorMentionsTheme(selector, theme string) bool {
	if strings.Contains(selector, `[data-theme="`+theme+`"]`) ||
		strings.Contains(selector, `[data-theme='`+theme+`']`) {
		return true
	}
	for search := selector; ; {
		i := strings.Index(search, "."+theme)
		if i < 0 {
			return false
		}
		rest := search[i+len(theme)+1:]
		if rest == "" || !isIdentRune(rune(rest[0])) {
			return true
		}
		search = rest
	}
}

func isIdentRune(r rune) bool {
	return r == '-' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
