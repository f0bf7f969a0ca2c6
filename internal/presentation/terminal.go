package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/john/themer/internal/theme"
)

// ColorSupport represents terminal color capabilities
type ColorSupport struct {
	HasTrueColor bool
	Has256Color  bool
	HasColor     bool
	IsMonochrome bool
}

// DetectColorSupport maps a termenv profile to color capabilities
func DetectColorSupport(profile termenv.Profile) ColorSupport {
	// termenv orders profiles from richest (TrueColor) to poorest (Ascii)
	return ColorSupport{
		HasTrueColor: profile == termenv.TrueColor,
		Has256Color:  profile <= termenv.ANSI256,
		HasColor:     profile <= termenv.ANSI,
		IsMonochrome: profile == termenv.Ascii,
	}
}

// TerminalRenderer draws palettes in a terminal, the way a consumer of the
// presentation variables would
type TerminalRenderer struct {
	renderer *lipgloss.Renderer
	support  ColorSupport
}

// NewTerminalRenderer detects the color profile of w
func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	r := lipgloss.NewRenderer(w)
	return &TerminalRenderer{
		renderer: r,
		support:  DetectColorSupport(r.ColorProfile()),
	}
}

// NewTerminalRendererWithProfile forces a color profile
func NewTerminalRendererWithProfile(w io.Writer, profile termenv.Profile) *TerminalRenderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return &TerminalRenderer{
		renderer: r,
		support:  DetectColorSupport(profile),
	}
}

// Support returns the detected color capabilities
func (tr *TerminalRenderer) Support() ColorSupport {
	return tr.support
}

// Swatches renders one line per role: a color block, the role and its hex
func (tr *TerminalRenderer) Swatches(p theme.Palette) string {
	lines := make([]string, 0, len(theme.Roles))
	for _, role := range theme.Roles {
		color, ok := p[role]
		if !ok {
			continue
		}

		block := tr.renderer.NewStyle().
			Background(lipgloss.Color(color)).
			Render("    ")
		if tr.support.IsMonochrome {
			block = "[  ]"
		}

		lines = append(lines, fmt.Sprintf("%s %-14s %s", block, role, color))
	}
	return strings.Join(lines, "\n")
}

// Card renders a small mock screen painted with the definition's palette
func (tr *TerminalRenderer) Card(def theme.Definition) string {
	c := def.Colors
	style := tr.renderer.NewStyle

	title := style().
		Foreground(lipgloss.Color(c[theme.RoleText])).
		Background(lipgloss.Color(c[theme.RoleSurface])).
		Bold(true).
		Render(def.DisplayName)

	description := style().
		Foreground(lipgloss.Color(c[theme.RoleTextSecondary])).
		Background(lipgloss.Color(c[theme.RoleSurface])).
		Render(def.Description)

	button := style().
		Foreground(lipgloss.Color(c[theme.RoleBackground])).
		Background(lipgloss.Color(c[theme.RolePrimary])).
		Padding(0, 1).
		Render("Save")

	hover := style().
		Foreground(lipgloss.Color(c[theme.RoleBackground])).
		Background(lipgloss.Color(c[theme.RolePrimaryHover])).
		Padding(0, 1).
		Render("Hover")

	accent := style().
		Foreground(lipgloss.Color(c[theme.RoleAccent])).
		Background(lipgloss.Color(c[theme.RoleSurface])).
		Render("● accent")

	gap := style().Background(lipgloss.Color(c[theme.RoleSurface])).Render(" ")

	panel := style().
		Background(lipgloss.Color(c[theme.RoleSurface])).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(c[theme.RoleBorder])).
		BorderBackground(lipgloss.Color(c[theme.RoleBackground])).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			description,
			lipgloss.JoinHorizontal(lipgloss.Center, button, gap, hover, gap, accent),
		))

	return style().
		Background(lipgloss.Color(c[theme.RoleBackground])).
		Padding(1, 2).
		Render(panel)
}

// DocumentCard renders a card from whatever palette is currently published
// on the document, or an empty string if nothing has been painted yet
func (tr *TerminalRenderer) DocumentCard(doc *Document) string {
	palette := doc.Palette()
	if palette.Validate() != nil {
		return ""
	}

	id, _ := doc.RootElement().Attribute(theme.ThemeAttribute)
	return tr.Card(theme.Definition{
		ID:          id,
		DisplayName: id,
		Description: "active theme",
		Colors:      palette,
	})
}
