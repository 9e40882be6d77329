package graph

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bennypowers.dev/csslens/color"
	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/internal/collections"
	"bennypowers.dev/csslens/parser/common"
)

// Severity ranks a validation issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// ValidationIssue is one finding against a variable definition.
type ValidationIssue struct {
	Name     string       `json:"name"`
	Severity Severity     `json:"severity"`
	Message  string       `json:"message"`
	Range    common.Range `json:"range"`
}

// Resolver is the resolution capability validation needs.
// *resolver.Resolver satisfies it.
type Resolver interface {
	ResolveCSSVariable(ctx context.Context, name string, doc *documents.Document) *color.Value
	ResolveSCSSVariable(ctx context.Context, name string, doc *documents.Document) *color.Value
}

// kebabCasePattern is the expected shape of a variable name once the
// `--` or `$` prefix is removed.
var kebabCasePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(?:-[a-z0-9]+)*$`)

// ValidateVariableDefinitions checks every definition in the document:
// membership in a reference cycle and dependencies on undefined
// variables are errors, a color-looking value that fails to resolve is
// a warning, and a name outside the lowercase kebab-case convention is
// informational. Issues are reported in declaration order.
func ValidateVariableDefinitions(ctx context.Context, doc *documents.Document, res Resolver) []ValidationIssue {
	g := Build(doc)

	inCycle := collections.NewSet[string]()
	for _, cycle := range g.Cycles() {
		inCycle.Add(cycle...)
	}

	var issues []ValidationIssue
	for _, name := range g.names {
		def := g.definitions[name]

		if inCycle.Has(name) {
			issues = append(issues, ValidationIssue{
				Name:     name,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s is part of a circular reference chain", name),
				Range:    def.Range,
			})
		}
		for _, dep := range g.dependencies[name] {
			if _, defined := g.definitions[dep]; !defined {
				issues = append(issues, ValidationIssue{
					Name:     name,
					Severity: SeverityError,
					Message:  fmt.Sprintf("%s depends on undefined variable %s", name, dep),
					Range:    def.Range,
				})
			}
		}
		if !inCycle.Has(name) && looksColorLike(def.Value) && resolve(ctx, res, name, def.Kind, doc) == nil {
			issues = append(issues, ValidationIssue{
				Name:     name,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s looks like a color but does not resolve to one", name),
				Range:    def.Range,
			})
		}
		if !wellNamed(name) {
			issues = append(issues, ValidationIssue{
				Name:     name,
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("%s is not lowercase kebab-case", name),
				Range:    def.Range,
			})
		}
	}
	return issues
}

func resolve(ctx context.Context, res Resolver, name string, kind common.VariableKind, doc *documents.Document) *color.Value {
	if kind == common.KindSCSSVariable {
		return res.ResolveSCSSVariable(ctx, name, doc)
	}
	return res.ResolveCSSVariable(ctx, name, doc)
}

// looksColorLike reports whether a raw value contains anything shaped
// like a color: a hex literal, an rgb/hsl call (with any arguments,
// resolvable or not), or a named color word.
func looksColorLike(value string) bool {
	if common.HexColorPattern.MatchString(value) || common.FuncColorPattern.MatchString(value) {
		return true
	}
	for _, word := range common.WordPattern.FindAllString(value, -1) {
		if common.NamedColors.Has(strings.ToLower(word)) {
			return true
		}
	}
	return false
}

func wellNamed(name string) bool {
	bare := strings.TrimPrefix(strings.TrimPrefix(name, "--"), "$")
	return kebabCasePattern.MatchString(bare)
}
