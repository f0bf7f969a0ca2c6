package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/john/themer/internal/theme"
)

// Theme is the terminal rendition of an engine theme
type Theme struct {
	ID          string
	DisplayName string
	Description string

	Colors ColorPalette

	IsDark bool
}

// ColorPalette maps the palette roles onto lipgloss colors, plus the fixed
// state colors the terminal UI needs
type ColorPalette struct {
	Primary       lipgloss.Color
	PrimaryHover  lipgloss.Color
	Background    lipgloss.Color
	Surface       lipgloss.Color
	SurfaceHover  lipgloss.Color
	Text          lipgloss.Color
	TextSecondary lipgloss.Color
	Border        lipgloss.Color
	Accent        lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// State colors shared by every theme
const (
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
)

// FromDefinition converts an engine definition for terminal use
func FromDefinition(def theme.Definition) *Theme {
	c := def.Colors
	color := func(r theme.Role) lipgloss.Color { return lipgloss.Color(c[r]) }

	return &Theme{
		ID:          def.ID,
		DisplayName: def.DisplayName,
		Description: def.Description,
		Colors: ColorPalette{
			Primary:       color(theme.RolePrimary),
			PrimaryHover:  color(theme.RolePrimaryHover),
			Background:    color(theme.RoleBackground),
			Surface:       color(theme.RoleSurface),
			SurfaceHover:  color(theme.RoleSurfaceHover),
			Text:          color(theme.RoleText),
			TextSecondary: color(theme.RoleTextSecondary),
			Border:        color(theme.RoleBorder),
			Accent:        color(theme.RoleAccent),
			Success:       successColor,
			Warning:       warningColor,
			Error:         errorColor,
		},
		IsDark: IsDarkColor(c[theme.RoleBackground]),
	}
}

// IsDarkColor reports whether a background is dark enough to want light
// text. Unparseable colors count as dark.
func IsDarkColor(hex theme.HexColor) bool {
	c, err := colorful.Hex(string(hex))
	if err != nil {
		return true
	}
	l, _, _ := c.Lab()
	return l < 0.5
}

// GetStateColor returns the color for a named state
func (t *Theme) GetStateColor(state string) lipgloss.Color {
	switch strings.ToLower(state) {
	case "success", "ok", "idle":
		return t.Colors.Success
	case "error", "fail", "failure", "failed":
		return t.Colors.Error
	case "warning", "warn", "skipped", "changing":
		return t.Colors.Warning
	case "primary":
		return t.Colors.Primary
	case "accent":
		return t.Colors.Accent
	default:
		return t.Colors.Text
	}
}

// Styles is the set of lipgloss styles the CLI and picker render with
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Muted       lipgloss.Style
	Selected    lipgloss.Style
	Active      lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Label       lipgloss.Style
	Panel       lipgloss.Style
	CodeBlock   lipgloss.Style
	HelpSection lipgloss.Style
}

// NewStyles builds styles painted with t on the given renderer. A nil
// renderer means the default one.
func NewStyles(t *Theme, r *lipgloss.Renderer) *Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	c := t.Colors

	return &Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(c.Primary).
			MarginBottom(1),
		Subtitle: r.NewStyle().
			Foreground(c.TextSecondary).
			Italic(true),
		Muted: r.NewStyle().
			Foreground(c.TextSecondary),
		Selected: r.NewStyle().
			Bold(true).
			Foreground(c.Accent),
		Active: r.NewStyle().
			Foreground(c.Primary).
			Bold(true),
		Success: r.NewStyle().Foreground(c.Success),
		Warning: r.NewStyle().Foreground(c.Warning),
		Error: r.NewStyle().
			Foreground(c.Error).
			Bold(true),
		Label: r.NewStyle().
			Foreground(c.TextSecondary).
			Width(16),
		Panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(0, 1),
		CodeBlock: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(1, 2),
		HelpSection: r.NewStyle().
			Foreground(c.TextSecondary).
			MarginTop(1),
	}
}
