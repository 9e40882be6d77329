// Package scss extracts variable definitions, $variable usages,
// @import/@use statements and color literals from SCSS text. Like the
// css package it is pattern based and line oriented.
package scss

import (
	"path"
	"regexp"
	"strings"

	"bennypowers.dev/csslens/parser/common"
)

var (
	definitionPattern = regexp.MustCompile(`(\$[\w-]+)\s*:\s*([^;]+);`)
	usagePattern      = regexp.MustCompile(`\$[\w-]+`)
	usePattern        = regexp.MustCompile(`@use\s+['"]([^'"]+)['"](?:\s+as\s+([\w*-]+))?`)
	importPattern     = regexp.MustCompile(`@import\s+([^;]+)`)
	quotedPathPattern = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// ExtractVariableDefinitions finds `$name: value;` declarations. The
// raw value retains flags such as `!default`. Values with unbalanced
// parens on their line are skipped, as are comment lines.
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
				Kind:  common.KindSCSSVariable,
				Range: common.NewRange(lineNo, m[2], m[5]),
			})
		}
	}
	return defs
}

// ExtractVariableUsages finds $name references, including references
// inside #{...} interpolation. An occurrence immediately followed by a
// colon is the left hand side of a definition and is not a usage.
func ExtractVariableUsages(content string) []common.VariableUsage {
	var usages []common.VariableUsage
	for lineNo, line := range common.Lines(content) {
		if common.IsCommentLine(line) {
			continue
		}
		for _, loc := range usagePattern.FindAllStringIndex(line, -1) {
			if loc[1] < len(line) && line[loc[1]] == ':' {
				continue
			}
			usages = append(usages, common.VariableUsage{
				Name:  line[loc[0]:loc[1]],
				Kind:  common.KindSCSSVariable,
				Range: common.NewRange(lineNo, loc[0], loc[1]),
			})
		}
	}
	return usages
}

// ExtractImports finds @use and @import statements. A @use statement
// carries its `as` namespace, or a default namespace derived from the
// last path segment with any extension and partial underscore removed.
func ExtractImports(content string) []common.ImportStatement {
	var imports []common.ImportStatement
	for lineNo, line := range common.Lines(content) {
		if common.IsCommentLine(line) {
			continue
		}
		for _, m := range usePattern.FindAllStringSubmatchIndex(line, -1) {
			importPath := line[m[2]:m[3]]
			alias := DefaultNamespace(importPath)
			if m[4] >= 0 {
				alias = line[m[4]:m[5]]
			}
			imports = append(imports, common.ImportStatement{
				Path:  importPath,
				Alias: alias,
				Use:   true,
				Range: common.NewRange(lineNo, m[0], m[1]),
			})
		}
		for _, m := range importPattern.FindAllStringSubmatchIndex(line, -1) {
			segment := line[m[2]:m[3]]
			for _, q := range quotedPathPattern.FindAllStringSubmatchIndex(segment, -1) {
				imports = append(imports, common.ImportStatement{
					Path:  segment[q[2]:q[3]],
					Range: common.NewRange(lineNo, m[2]+q[0], m[2]+q[1]),
				})
			}
		}
	}
	return imports
}

// DefaultNamespace derives the namespace a bare @use introduces from
// its import path.
func DefaultNamespace(importPath string) string {
	base := path.Base(importPath)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimPrefix(base, "_")
}

// FindColorValues locates color literals in SCSS text.
func FindColorValues(content string) []common.ColorMatch {
	return common.FindColors(content)
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
