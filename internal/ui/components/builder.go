package components

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/john/themer/internal/theme"
)

// BuilderForm collects the four seed colors of a custom theme
type BuilderForm struct {
	primary    string
	background string
	surface    string
	text       string
	confirmed  bool

	form *huh.Form
}

// NewBuilderForm creates a form prefilled with seeds
func NewBuilderForm(seeds theme.SeedColors) *BuilderForm {
	bf := &BuilderForm{
		primary:    string(seeds.Primary),
		background: string(seeds.Background),
		surface:    string(seeds.Surface),
		text:       string(seeds.Text),
		confirmed:  true,
	}

	bf.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Custom Theme").
				Description("Pick four seed colors. Hover, secondary text and border colors are derived from them."),

			bf.colorInput(theme.RolePrimary, "Buttons, links and highlights", &bf.primary),
			bf.colorInput(theme.RoleBackground, "Page background", &bf.background),
			bf.colorInput(theme.RoleSurface, "Cards and panels", &bf.surface),
			bf.colorInput(theme.RoleText, "Body text", &bf.text),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Apply custom theme?").
				Affirmative("Apply").
				Negative("Cancel").
				Value(&bf.confirmed),
		),
	).WithTheme(huh.ThemeCharm())

	return bf
}

func (bf *BuilderForm) colorInput(role theme.Role, description string, value *string) *huh.Input {
	return huh.NewInput().
		Title(string(role)).
		Description(description).
		Placeholder("#rrggbb").
		CharLimit(7).
		Validate(ValidateHexInput).
		Value(value)
}

// ValidateHexInput accepts #rrggbb in any case, with surrounding spaces
func ValidateHexInput(s string) error {
	if _, err := theme.ParseHex(s); err != nil {
		return fmt.Errorf("use a 6-digit hex color like #1e293b")
	}
	return nil
}

// Form returns the underlying huh form
func (bf *BuilderForm) Form() *huh.Form {
	return bf.form
}

// Confirmed reports whether the user chose to apply the colors
func (bf *BuilderForm) Confirmed() bool {
	return bf.confirmed
}

// Seeds parses the entered values
func (bf *BuilderForm) Seeds() (theme.SeedColors, error) {
	return theme.ParseSeeds(bf.primary, bf.background, bf.surface, bf.text)
}

// RunBuilderForm runs the form in the terminal. ok is false when the user
// cancelled.
func RunBuilderForm(seeds theme.SeedColors) (result theme.SeedColors, ok bool, err error) {
	bf := NewBuilderForm(seeds)
	if err := bf.form.Run(); err != nil {
		return theme.SeedColors{}, false, err
	}
	if !bf.Confirmed() {
		return theme.SeedColors{}, false, nil
	}

	result, err = bf.Seeds()
	if err != nil {
		return theme.SeedColors{}, false, err
	}
	return result, true, nil
}
