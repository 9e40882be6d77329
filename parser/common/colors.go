package common

import (
	"sort"
	"strings"

	"bennypowers.dev/csslens/color"
)

// FindColors scans content for color literals. Hex literals, rgb/rgba
// and hsl/hsla function calls, and CSS named colors are all reported.
// Candidates that fail to parse as colors are dropped, so every
// returned match carries a valid parsed value. Comment lines are
// skipped.
func FindColors(content string) []ColorMatch {
	var matches []ColorMatch
	for lineNo, line := range Lines(content) {
		if IsCommentLine(line) {
			continue
		}
		matches = append(matches, findColorsInLine(line, lineNo)...)
	}
	return matches
}

func findColorsInLine(line string, lineNo int) []ColorMatch {
	var matches []ColorMatch
	claimed := make([]bool, len(line))

	claim := func(start, end int) {
		for i := start; i < end && i < len(claimed); i++ {
			claimed[i] = true
		}
	}
	overlaps := func(start, end int) bool {
		for i := start; i < end && i < len(claimed); i++ {
			if claimed[i] {
				return true
			}
		}
		return false
	}

	add := func(start, end int) {
		raw := line[start:end]
		parsed := color.FromString(raw)
		if !parsed.IsValid {
			return
		}
		claim(start, end)
		matches = append(matches, ColorMatch{
			Raw:   raw,
			Value: *parsed,
			Range: NewRange(lineNo, start, end),
		})
	}

	// Function literals first so their arguments cannot be re-matched
	// as standalone words or hex digits.
	for _, loc := range FuncColorPattern.FindAllStringIndex(line, -1) {
		add(loc[0], loc[1])
	}
	for _, loc := range HexColorPattern.FindAllStringIndex(line, -1) {
		if overlaps(loc[0], loc[1]) {
			continue
		}
		add(loc[0], loc[1])
	}
	for _, loc := range WordPattern.FindAllStringIndex(line, -1) {
		if overlaps(loc[0], loc[1]) {
			continue
		}
		word := strings.ToLower(line[loc[0]:loc[1]])
		if !NamedColors.Has(word) {
			continue
		}
		// Identifier context such as --red or $red is a variable name,
		// not a color literal.
		if loc[0] > 0 {
			prev := line[loc[0]-1]
			if prev == '-' || prev == '$' || prev == '_' {
				continue
			}
		}
		if loc[1] < len(line) && line[loc[1]] == '-' {
			continue
		}
		add(loc[0], loc[1])
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Range.Start.Column < matches[j].Range.Start.Column
	})
	return matches
}
