package resolver

import (
	"regexp"
	"strings"

	"bennypowers.dev/csslens/internal/collections"
	"bennypowers.dev/csslens/parser/common"
	"bennypowers.dev/csslens/parser/css"
	"bennypowers.dev/csslens/parser/scss"
)

var (
	scssAliasPattern = regexp.MustCompile(`^(\$[\w-]+)(?:\s+!default)?$`)
	scssFlagPattern  = regexp.MustCompile(`\s+!(?:default|global)\b`)
	interpolation    = regexp.MustCompile(`^#\{(.+)\}$`)
)

// expandCSSValue substitutes var() references in value until none
// remain. Substitution is iterative rather than recursive: each pass
// replaces every top level call with its referenced definition value
// (or its own fallback text when the reference is undefined), and the
// pass counter doubles as the chain depth guard. Revisiting a name
// already expanded on this chain is a circular reference.
func (r *Resolver) expandCSSValue(rootName, value string, vctx *common.VariableContext) (string, error) {
	visited := collections.NewSet(rootName)
	for depth := 0; strings.Contains(value, "var("); depth++ {
		if depth >= r.settings.MaxChainDepth {
			return "", NewMaxDepthError(rootName, depth, visited.Members())
		}
		calls := topLevelCalls(css.ExtractVariableUsages(value))
		if len(calls) == 0 {
			// var( without a complete call; nothing left to expand.
			break
		}

		// One replacement per distinct name per pass, so a value that
		// references the same variable twice is not a false cycle.
		replacements := make(map[string]string, len(calls))
		for _, call := range calls {
			if _, done := replacements[call.Name]; done {
				continue
			}
			if visited.Has(call.Name) {
				return "", NewCircularReferenceError(rootName, append(visited.Members(), call.Name))
			}
			visited.Add(call.Name)
			text, err := r.cssReferenceValue(call, vctx)
			if err != nil {
				return "", err
			}
			replacements[call.Name] = text
		}

		var sb strings.Builder
		last := 0
		for _, call := range calls {
			sb.WriteString(value[last:call.Range.Start.Column])
			sb.WriteString(replacements[call.Name])
			last = call.Range.End.Column
		}
		sb.WriteString(value[last:])
		value = sb.String()
	}
	return strings.TrimSpace(value), nil
}

// cssReferenceValue produces the substitution text for one var() call:
// the referenced definition's value, or the call's own fallback text
// when the reference is undefined.
func (r *Resolver) cssReferenceValue(call common.VariableUsage, vctx *common.VariableContext) (string, error) {
	if def, ok := vctx.Definition(call.Name); ok {
		return def.Value, nil
	}
	if call.FallbackValue != "" {
		return call.FallbackValue, nil
	}
	return "", NewNotFoundError(call.Name, "")
}

// topLevelCalls filters the flat usage list down to the outermost
// var() calls. The extractor reports nested fallback usages too, but
// substituting an outer call carries its nested calls along with it.
func topLevelCalls(usages []common.VariableUsage) []common.VariableUsage {
	var top []common.VariableUsage
	end := -1
	for _, u := range usages {
		if u.Range.Start.Column < end {
			continue
		}
		top = append(top, u)
		end = u.Range.End.Column
	}
	return top
}

// expandSCSSValue substitutes $name references in value until none
// remain, under the same depth and cycle guards as the CSS expansion.
// A value that is exactly one $other reference is followed as an
// alias, so flags like !default on the alias do not leak into the
// resolved string.
func (r *Resolver) expandSCSSValue(rootName, value string, vctx *common.VariableContext) (string, error) {
	visited := collections.NewSet(rootName)
	for depth := 0; ; depth++ {
		if depth >= r.settings.MaxChainDepth {
			return "", NewMaxDepthError(rootName, depth, visited.Members())
		}

		if ref := scssAlias(value); ref != "" {
			if visited.Has(ref) {
				return "", NewCircularReferenceError(rootName, append(visited.Members(), ref))
			}
			visited.Add(ref)
			def, ok := vctx.Definition(ref)
			if !ok {
				return "", NewNotFoundError(ref, "")
			}
			value = def.Value
			continue
		}

		refs := scss.ExtractVariableUsages(value)
		if len(refs) == 0 {
			break
		}

		replacements := make(map[string]string, len(refs))
		for _, ref := range refs {
			if _, done := replacements[ref.Name]; done {
				continue
			}
			if visited.Has(ref.Name) {
				return "", NewCircularReferenceError(rootName, append(visited.Members(), ref.Name))
			}
			visited.Add(ref.Name)
			def, ok := vctx.Definition(ref.Name)
			if !ok {
				return "", NewNotFoundError(ref.Name, "")
			}
			replacements[ref.Name] = stripSCSSFlags(def.Value)
		}

		var sb strings.Builder
		last := 0
		for _, ref := range refs {
			sb.WriteString(value[last:ref.Range.Start.Column])
			sb.WriteString(replacements[ref.Name])
			last = ref.Range.End.Column
		}
		sb.WriteString(value[last:])
		value = sb.String()
	}
	return stripSCSSFlags(unwrapInterpolation(value)), nil
}

// scssAlias returns the referenced name when value is exactly one
// $reference, optionally flagged !default, or "" otherwise.
func scssAlias(value string) string {
	m := scssAliasPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return ""
	}
	return m[1]
}

// stripSCSSFlags removes !default and !global flags and surrounding
// whitespace from a SCSS value.
func stripSCSSFlags(value string) string {
	return strings.TrimSpace(scssFlagPattern.ReplaceAllString(value, ""))
}

// unwrapInterpolation reduces a value that is one whole #{...} block
// to its interior, which is how interpolation-only values read once
// their references are substituted.
func unwrapInterpolation(value string) string {
	m := interpolation.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return value
	}
	return m[1]
}
