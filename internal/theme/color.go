package theme

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// HexColor is a 6-digit RGB color in the form #rrggbb
type HexColor string

// ErrInvalidColor is returned when a string is not a 6-digit hex color
var ErrInvalidColor = errors.New("invalid hex color")

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// InvalidColorError reports the offending value
type InvalidColorError struct {
	Value string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidColor, e.Value)
}

func (e *InvalidColorError) Unwrap() error {
	return ErrInvalidColor
}

// Valid reports whether c is # followed by exactly six hex digits
func (c HexColor) Valid() bool {
	return hexColorRegex.MatchString(string(c))
}

// String returns the color as a plain string
func (c HexColor) String() string {
	return string(c)
}

// ParseHex validates hand-typed input and normalizes it to lowercase.
func ParseHex(s string) (HexColor, error) {
	c := HexColor(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &InvalidColorError{Value: s}
	}
	return c, nil
}

// Adjust brightens (positive percent) or darkens (negative percent) every
// channel of color by the same absolute amount, round(2.55 * percent),
// clamping each channel to [0, 255]. Percent is clamped to [-100, 100].
// A zero percent returns color as given; otherwise the result is lowercase.
func Adjust(color HexColor, percent int) (HexColor, error) {
	if !color.Valid() {
		return "", &InvalidColorError{Value: string(color)}
	}
	if percent == 0 {
		return color, nil
	}

	c, err := colorful.Hex(string(color))
	if err != nil {
		return "", &InvalidColorError{Value: string(color)}
	}

	amount := adjustAmount(percent)
	r, g, b := c.RGB255()

	adjusted := colorful.Color{
		R: float64(clampChannel(int(r)+amount)) / 255.0,
		G: float64(clampChannel(int(g)+amount)) / 255.0,
		B: float64(clampChannel(int(b)+amount)) / 255.0,
	}

	return HexColor(adjusted.Hex()), nil
}

// adjustAmount computes round(2.55 * percent) with halves rounded up, in
// integer arithmetic so 25.5 and -76.5 land on 26 and -76.
func adjustAmount(percent int) int {
	if percent > 100 {
		percent = 100
	}
	if percent < -100 {
		percent = -100
	}
	return int(math.Floor(float64(255*percent+50) / 100))
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
