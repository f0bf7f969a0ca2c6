package theme

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MinContrastRatio is the WCAG AA ratio for normal text
const MinContrastRatio = 4.5

// ContrastWarning describes a role pair that falls below MinContrastRatio
type ContrastWarning struct {
	Foreground Role
	Background Role
	Ratio      float64
}

var contrastPairs = [][2]Role{
	{RoleText, RoleBackground},
	{RoleText, RoleSurface},
	{RoleTextSecondary, RoleSurface},
}

// CheckContrast reports text/background pairs of p that are hard to read
func CheckContrast(p Palette) []ContrastWarning {
	var warnings []ContrastWarning
	for _, pair := range contrastPairs {
		ratio, err := ContrastRatio(p[pair[0]], p[pair[1]])
		if err != nil {
			continue
		}
		if ratio < MinContrastRatio {
			warnings = append(warnings, ContrastWarning{
				Foreground: pair[0],
				Background: pair[1],
				Ratio:      ratio,
			})
		}
	}
	return warnings
}

// ContrastRatio returns the WCAG contrast ratio between two colors
func ContrastRatio(a, b HexColor) (float64, error) {
	ca, err := colorful.Hex(string(a))
	if err != nil || !a.Valid() {
		return 0, &InvalidColorError{Value: string(a)}
	}
	cb, err := colorful.Hex(string(b))
	if err != nil || !b.Valid() {
		return 0, &InvalidColorError{Value: string(b)}
	}

	l1 := relativeLuminance(ca)
	l2 := relativeLuminance(cb)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05), nil
}

func relativeLuminance(c colorful.Color) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(component float64) float64 {
	if component <= 0.04045 {
		return component / 12.92
	}
	return math.Pow((component+0.055)/1.055, 2.4)
}
