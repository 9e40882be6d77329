package color

import (
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// RGBA holds 8-bit color channels plus an alpha component in [0, 1].
type RGBA struct {
	R int     `json:"r"`
	G int     `json:"g"`
	B int     `json:"b"`
	A float64 `json:"a"`
}

// HSLA holds hue in degrees [0, 360), saturation and lightness in percent
// [0, 100], plus an alpha component in [0, 1].
type HSLA struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
	A float64 `json:"a"`
}

// Value is the canonical representation of a parsed color literal.
// It is immutable once constructed: callers treat it as a value object.
//
// Invalid input never produces an error — FromString returns a Value with
// IsValid=false and zeroed channels so that downstream code can carry the
// original text around without special-casing parse failures.
type Value struct {
	Hex      string `json:"hex"`
	RGB      RGBA   `json:"rgb"`
	HSL      HSLA   `json:"hsl"`
	Original string `json:"original"`
	IsValid  bool   `json:"isValid"`
}

// FromString parses a CSS color literal (hex, rgb/rgba, hsl/hsla, named
// colors, and the other formats csscolorparser understands) into a Value.
// Parsing never fails: unparseable input yields IsValid=false.
func FromString(s string) *Value {
	original := s
	trimmed := strings.TrimSpace(s)

	parsed, err := csscolorparser.Parse(trimmed)
	if err != nil || trimmed == "" {
		return &Value{Original: original}
	}

	r := int(math.Round(parsed.R * 255))
	g := int(math.Round(parsed.G * 255))
	b := int(math.Round(parsed.B * 255))
	h, sat, l := rgbToHSL(parsed.R, parsed.G, parsed.B)

	return &Value{
		Hex:      parsed.HexString(),
		RGB:      RGBA{R: r, G: g, B: b, A: round2(parsed.A)},
		HSL:      HSLA{H: math.Round(h), S: math.Round(sat * 100), L: math.Round(l * 100), A: round2(parsed.A)},
		Original: original,
		IsValid:  true,
	}
}

// IsValidColor reports whether s parses as a CSS color literal.
func IsValidColor(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := csscolorparser.Parse(s)
	return err == nil
}

// String returns the canonical hex form for valid colors and the original
// text otherwise.
func (v *Value) String() string {
	if v.IsValid {
		return v.Hex
	}
	return v.Original
}

// Equal reports whether two values denote the same color. Invalid values
// compare by their original text.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.IsValid != other.IsValid {
		return false
	}
	if !v.IsValid {
		return v.Original == other.Original
	}
	return v.Hex == other.Hex
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
