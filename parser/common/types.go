// Package common defines the value types shared by the CSS and SCSS
// extractors and the downstream resolver and analyzer packages.
package common

import (
	"fmt"

	"bennypowers.dev/csslens/color"
)

// VariableKind discriminates the two variable syntaxes the extractors
// recognize.
type VariableKind string

const (
	// KindCSSCustomProperty marks a `--name` custom property.
	KindCSSCustomProperty VariableKind = "css"
	// KindSCSSVariable marks a `$name` SCSS variable.
	KindSCSSVariable VariableKind = "scss"
)

// Position is a zero-based line and column. Columns are byte offsets
// within the line.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a half-open [Start, End) span within a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NewRange constructs a single-line range from a line number and a pair
// of column offsets.
func NewRange(line, startCol, endCol int) Range {
	return Range{
		Start: Position{Line: line, Column: startCol},
		End:   Position{Line: line, Column: endCol},
	}
}

// Contains reports whether the position falls inside the range.
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if p.Line == r.Start.Line && p.Column < r.Start.Column {
		return false
	}
	if p.Line == r.End.Line && p.Column >= r.End.Column {
		return false
	}
	return true
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}

// VariableDefinition is a single `--name: value;` or `$name: value;`
// declaration. Name retains its `--` or `$` prefix. Value is the raw
// declaration value with surrounding whitespace trimmed, excluding the
// terminating semicolon.
type VariableDefinition struct {
	Name  string       `json:"name"`
	Value string       `json:"value"`
	Range Range        `json:"range"`
	Kind  VariableKind `json:"kind"`
}

// VariableUsage is a single `var(--name)` call or `$name` reference.
// FallbackValue carries the raw, unresolved fallback text of a var()
// call, or the empty string when the call has none.
type VariableUsage struct {
	Name          string       `json:"name"`
	Range         Range        `json:"range"`
	Kind          VariableKind `json:"kind"`
	FallbackValue string       `json:"fallbackValue,omitempty"`
}

// ColorMatch is a literal color value found in document text, paired
// with its parsed normalized forms.
type ColorMatch struct {
	Raw   string      `json:"raw"`
	Value color.Value `json:"value"`
	Range Range       `json:"range"`
}

// ImportStatement is an `@import` or `@use` rule. Alias is the `as`
// namespace of a @use rule, or its default namespace derived from the
// path when no `as` clause is present; it is empty for @import.
type ImportStatement struct {
	Path  string `json:"path"`
	Alias string `json:"alias,omitempty"`
	Use   bool   `json:"use"`
	Range Range  `json:"range"`
}

// VariableContext aggregates everything extracted from one document.
// Definitions is keyed by variable name; when a document defines the
// same name more than once the later definition wins.
type VariableContext struct {
	Definitions map[string]VariableDefinition `json:"definitions"`
	Usages      []VariableUsage               `json:"usages"`
	Imports     []ImportStatement             `json:"imports"`
}

// NewVariableContext returns an empty context with an allocated
// definition map.
func NewVariableContext() *VariableContext {
	return &VariableContext{
		Definitions: make(map[string]VariableDefinition),
	}
}

// Definition looks up a definition by name.
func (c *VariableContext) Definition(name string) (VariableDefinition, bool) {
	def, ok := c.Definitions[name]
	return def, ok
}

// ParseResult is the combined output of a full-document extraction
// pass.
type ParseResult struct {
	Definitions []VariableDefinition `json:"definitions"`
	Usages      []VariableUsage      `json:"usages"`
	Colors      []ColorMatch         `json:"colors"`
	Imports     []ImportStatement    `json:"imports"`
}
