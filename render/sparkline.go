package render

import (
	"strings"
)

// SparklineChars provides 8-level vertical resolution
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SparklineRunes maps the last width values to block characters
// Range is auto-scaled when min and max are both 0, shorter histories are padded with the lowest level
func SparklineRunes(values []float64, width int, min, max float64) []rune {
	if width <= 0 {
		return nil
	}
	out := make([]rune, 0, width)
	if len(values) > width {
		values = values[len(values)-width:]
	}

	if min == 0 && max == 0 && len(values) > 0 {
		min, max = values[0], values[0]
		for _, v := range values {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	// Handle flat line
	rangeV := max - min
	if rangeV == 0 {
		rangeV = 1
	}

	for _, v := range values {
		norm := (v - min) / rangeV
		if norm < 0 || norm != norm {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}
		idx := int(norm * 7.99)
		if idx > 7 {
			idx = 7
		}
		out = append(out, SparklineChars[idx])
	}

	for len(out) < width {
		out = append(out, SparklineChars[0])
	}
	return out
}

// Sparkline is SparklineRunes as a string
func Sparkline(values []float64, width int, min, max float64) string {
	var sb strings.Builder
	for _, r := range SparklineRunes(values, width, min, max) {
		sb.WriteRune(r)
	}
	return sb.String()
}
