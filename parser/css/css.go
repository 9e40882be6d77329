// Package css extracts custom property definitions, var() usages,
// import statements and color literals from CSS text. Extraction is
// pattern based and line oriented; declarations that span multiple
// lines are not detected.
package css

import (
	"regexp"
	"strings"

	"bennypowers.dev/csslens/parser/common"
)

var (
	definitionPattern = regexp.MustCompile(`(--[\w-]+)\s*:\s*([^;]+);`)
	importPattern     = regexp.MustCompile(`@import\s+(?:url\(\s*)?['"]([^'"]+)['"]`)
)

// ExtractVariableDefinitions finds `--name: value;` declarations.
// Values with unbalanced parens on their line are skipped, as are
// comment lines.
func ExtractVariableDefinitions(content string) []common.VariableDefinition {
	var defs []common.VariableDefinition
	for lineNo, line := range common.Lines(content) {
		if common.IsCommentLine(line) {
			continue
		}
		for _, m := range definitionPattern.FindAllStringSubmatchIndex(line, -1) {
			name := line[m[2]:m[3]]
			value := strings.TrimSpace(line[m[4]:m[5]])
			if !common.BalancedParens(value) {
				continue
			}
			defs = append(defs, common.VariableDefinition{
				Name:  name,
				Value: value,
				Kind:  common.KindCSSCustomProperty,
				Range: common.NewRange(lineNo, m[2], m[5]),
			})
		}
	}
	return defs
}

// ExtractVariableUsages finds var() calls, including calls nested
// inside the fallback of an enclosing call. Each usage's FallbackValue
// carries the raw text after the first top level comma, or the empty
// string when the call has no fallback.
func ExtractVariableUsages(content string) []common.VariableUsage {
	var usages []common.VariableUsage
	for lineNo, line := range common.Lines(content) {
		if common.IsCommentLine(line) {
			continue
		}
		usages = append(usages, scanVarCalls(line, lineNo)...)
	}
	return usages
}

// scanVarCalls walks one line for var() calls. After reporting a call
// the scan resumes just inside it, so usages in fallback text are
// reported as well.
func scanVarCalls(line string, lineNo int) []common.VariableUsage {
	var usages []common.VariableUsage
	search := 0
	for {
		rel := strings.Index(line[search:], "var(")
		if rel < 0 {
			break
		}
		start := search + rel
		inner := start + len("var(")
		if start > 0 && isIdentByte(line[start-1]) {
			search = inner
			continue
		}
		name, nameEnd := scanVarName(line, inner)
		if name == "" {
			search = inner
			continue
		}

		depth := 1
		commaAt := -1
		end := -1
		for i := nameEnd; i < len(line) && end < 0; i++ {
			switch line[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					end = i
				}
			case ',':
				if depth == 1 && commaAt < 0 {
					commaAt = i
				}
			}
		}
		if end < 0 {
			// Call does not close on this line.
			search = inner
			continue
		}

		fallback := ""
		if commaAt >= 0 {
			fallback = strings.TrimSpace(line[commaAt+1 : end])
		}
		usages = append(usages, common.VariableUsage{
			Name:          name,
			Kind:          common.KindCSSCustomProperty,
			FallbackValue: fallback,
			Range:         common.NewRange(lineNo, start, end+1),
		})
		search = inner
	}
	return usages
}

// scanVarName reads the `--name` argument of a var() call starting at
// from, skipping leading whitespace. It returns the empty string when
// no custom property name is present.
func scanVarName(line string, from int) (name string, end int) {
	i := from
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if !strings.HasPrefix(line[i:], "--") {
		return "", from
	}
	tail := common.IdentTail.FindString(line[i+2:])
	if tail == "" {
		return "", from
	}
	end = i + 2 + len(tail)
	return line[i:end], end
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// FindColorValues locates color literals in CSS text.
func FindColorValues(content string) []common.ColorMatch {
	return common.FindColors(content)
}

// ExtractImports finds @import rules. CSS imports carry no namespace.
func ExtractImports(content string) []common.ImportStatement {
	var imports []common.ImportStatement
	for lineNo, line := range common.Lines(content) {
		if common.IsCommentLine(line) {
			continue
		}
		for _, m := range importPattern.FindAllStringSubmatchIndex(line, -1) {
			imports = append(imports, common.ImportStatement{
				Path:  line[m[2]:m[3]],
				Range: common.NewRange(lineNo, m[0], m[1]),
			})
		}
	}
	return imports
}

// ExtractVariableContext runs every extraction pass and aggregates the
// results. Later definitions of a name shadow earlier ones.
func ExtractVariableContext(content string) *common.VariableContext {
	ctx := common.NewVariableContext()
	for _, def := range ExtractVariableDefinitions(content) {
		ctx.Definitions[def.Name] = def
	}
	ctx.Usages = ExtractVariableUsages(content)
	ctx.Imports = ExtractImports(content)
	return ctx
}

// Parse runs a full extraction pass over a document.
func Parse(content string) *common.ParseResult {
	return &common.ParseResult{
		Definitions: ExtractVariableDefinitions(content),
		Usages:      ExtractVariableUsages(content),
		Colors:      FindColorValues(content),
		Imports:     ExtractImports(content),
	}
}
