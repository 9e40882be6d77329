package common

import (
	"regexp"
	"strings"

	"bennypowers.dev/csslens/internal/collections"
)

// Shared lexical patterns. Both extractors scan line-by-line, so none
// of these patterns needs to consider newlines.
var (
	// HexColorPattern matches 3, 4, 6 and 8 digit hex literals.
	HexColorPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{4}|[0-9a-fA-F]{3})\b`)

	// FuncColorPattern matches rgb/rgba/hsl/hsla function literals.
	// The argument list is approximated as everything up to the first
	// closing paren, which is exact for literal arguments.
	FuncColorPattern = regexp.MustCompile(`\b(?:rgba?|hsla?)\([^)]*\)`)

	// WordPattern yields candidate named-color identifiers.
	WordPattern = regexp.MustCompile(`\b[a-zA-Z]+\b`)

	// IdentTail matches the characters allowed after the prefix of a
	// variable name.
	IdentTail = regexp.MustCompile(`^[\w-]+`)
)

// NamedColors is the set of CSS named colors recognized as standalone
// color literals.
var NamedColors = collections.NewSet(
	"aliceblue", "antiquewhite", "aqua", "aquamarine", "azure",
	"beige", "bisque", "black", "blanchedalmond", "blue",
	"blueviolet", "brown", "burlywood", "cadetblue", "chartreuse",
	"chocolate", "coral", "cornflowerblue", "cornsilk", "crimson",
	"cyan", "darkblue", "darkcyan", "darkgoldenrod", "darkgray",
	"darkgreen", "darkgrey", "darkkhaki", "darkmagenta",
	"darkolivegreen", "darkorange", "darkorchid", "darkred",
	"darksalmon", "darkseagreen", "darkslateblue", "darkslategray",
	"darkslategrey", "darkturquoise", "darkviolet", "deeppink",
	"deepskyblue", "dimgray", "dimgrey", "dodgerblue", "firebrick",
	"floralwhite", "forestgreen", "fuchsia", "gainsboro",
	"ghostwhite", "gold", "goldenrod", "gray", "green",
	"greenyellow", "grey", "honeydew", "hotpink", "indianred",
	"indigo", "ivory", "khaki", "lavender", "lavenderblush",
	"lawngreen", "lemonchiffon", "lightblue", "lightcoral",
	"lightcyan", "lightgoldenrodyellow", "lightgray", "lightgreen",
	"lightgrey", "lightpink", "lightsalmon", "lightseagreen",
	"lightskyblue", "lightslategray", "lightslategrey",
	"lightsteelblue", "lightyellow", "lime", "limegreen", "linen",
	"magenta", "maroon", "mediumaquamarine", "mediumblue",
	"mediumorchid", "mediumpurple", "mediumseagreen",
	"mediumslateblue", "mediumspringgreen", "mediumturquoise",
	"mediumvioletred", "midnightblue", "mintcream", "mistyrose",
	"moccasin", "navajowhite", "navy", "oldlace", "olive",
	"olivedrab", "orange", "orangered", "orchid", "palegoldenrod",
	"palegreen", "paleturquoise", "palevioletred", "papayawhip",
	"peachpuff", "peru", "pink", "plum", "powderblue", "purple",
	"rebeccapurple", "red", "rosybrown", "royalblue", "saddlebrown",
	"salmon", "sandybrown", "seagreen", "seashell", "sienna",
	"silver", "skyblue", "slateblue", "slategray", "slategrey",
	"snow", "springgreen", "steelblue", "tan", "teal", "thistle",
	"tomato", "transparent", "turquoise", "violet", "wheat", "white",
	"whitesmoke", "yellow", "yellowgreen",
)

// IsCommentLine reports whether a line is skipped by the extractors.
// A line counts as a comment when its trimmed form starts a line
// comment or a block comment. Lines inside an unclosed block comment
// that do not themselves start with a comment token are still scanned;
// this keeps extraction single-pass and stateless per line.
func IsCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*")
}

// NormalizeLineEndings converts CRLF and bare CR line endings to LF.
func NormalizeLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// Lines splits normalized content into lines without their
// terminators.
func Lines(content string) []string {
	return strings.Split(NormalizeLineEndings(content), "\n")
}

// BalancedParens reports whether opening and closing parens pair up
// within s, ignoring nesting order errors other than depth.
func BalancedParens(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
