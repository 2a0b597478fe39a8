package inspection

import "fmt"

// Acceptance bounds. All intervals are closed.
const (
	MinWeight = 95.0
	MaxWeight = 105.0
	MinLength = 10.0
	MaxLength = 20.0
)

// acceptedColors holds the approved colors and their Portuguese equivalents.
var acceptedColors = map[string]struct{}{
	"blue":  {},
	"green": {},
	"azul":  {},
	"verde": {},
}

// Violations evaluates the acceptance criteria in the order weight, color,
// length and returns one description per failed criterion.
func Violations(p Piece) []string {
	var out []string

	if !inRange(p.Weight, MinWeight, MaxWeight) {
		out = append(out, fmt.Sprintf("Weight (%sg) out of range (%sg-%sg).",
			FormatMeasure(p.Weight), FormatMeasure(MinWeight), FormatMeasure(MaxWeight)))
	}

	color := normalizeColor(p.Color)
	if _, ok := acceptedColors[color]; !ok {
		out = append(out, fmt.Sprintf("Color (%s) is not Blue or Green.", DisplayColor(color)))
	}

	if !inRange(p.Length, MinLength, MaxLength) {
		out = append(out, fmt.Sprintf("Length (%scm) out of range (%scm-%scm).",
			FormatMeasure(p.Length), FormatMeasure(MinLength), FormatMeasure(MaxLength)))
	}

	return out
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
