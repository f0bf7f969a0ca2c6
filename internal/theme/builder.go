package theme

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Derivation offsets applied to seed colors, in percent
const (
	PrimaryHoverOffset  = -20
	SurfaceHoverOffset  = 10
	TextSecondaryOffset = -30
	BorderOffset        = 20
)

// SeedColors are the four user-chosen colors a custom palette is built from
type SeedColors struct {
	Primary    HexColor `json:"primary"`
	Background HexColor `json:"background"`
	Surface    HexColor `json:"surface"`
	Text       HexColor `json:"text"`
}

// InvalidSeedError reports a seed color that is not #rrggbb
type InvalidSeedError struct {
	Role  Role
	Value string
}

func (e *InvalidSeedError) Error() string {
	return fmt.Sprintf("invalid %s seed color %q: expected #rrggbb", e.Role, e.Value)
}

func (e *InvalidSeedError) Unwrap() error {
	return ErrInvalidColor
}

// ParseSeeds validates and normalizes hand-typed seed colors
func ParseSeeds(primary, background, surface, text string) (SeedColors, error) {
	var seeds SeedColors
	fields := []struct {
		role  Role
		value string
		dst   *HexColor
	}{
		{RolePrimary, primary, &seeds.Primary},
		{RoleBackground, background, &seeds.Background},
		{RoleSurface, surface, &seeds.Surface},
		{RoleText, text, &seeds.Text},
	}

	for _, f := range fields {
		c, err := ParseHex(f.value)
		if err != nil {
			return SeedColors{}, &InvalidSeedError{Role: f.role, Value: f.value}
		}
		*f.dst = c
	}
	return seeds, nil
}

// Validate rejects seeds that are not all #rrggbb
func (s SeedColors) Validate() error {
	checks := []struct {
		role  Role
		color HexColor
	}{
		{RolePrimary, s.Primary},
		{RoleBackground, s.Background},
		{RoleSurface, s.Surface},
		{RoleText, s.Text},
	}
	for _, c := range checks {
		if !c.color.Valid() {
			return &InvalidSeedError{Role: c.role, Value: string(c.color)}
		}
	}
	return nil
}

// SeedsFromPalette extracts the seed roles of a palette
func SeedsFromPalette(p Palette) SeedColors {
	return SeedColors{
		Primary:    p[RolePrimary],
		Background: p[RoleBackground],
		Surface:    p[RoleSurface],
		Text:       p[RoleText],
	}
}

// Derive expands four seed colors into a full palette. The seeds pass
// through unchanged and accent mirrors primary exactly.
func Derive(seeds SeedColors) (Palette, error) {
	if err := seeds.Validate(); err != nil {
		return nil, err
	}

	primaryHover, err := Adjust(seeds.Primary, PrimaryHoverOffset)
	if err != nil {
		return nil, err
	}
	surfaceHover, err := Adjust(seeds.Surface, SurfaceHoverOffset)
	if err != nil {
		return nil, err
	}
	textSecondary, err := Adjust(seeds.Text, TextSecondaryOffset)
	if err != nil {
		return nil, err
	}
	border, err := Adjust(seeds.Surface, BorderOffset)
	if err != nil {
		return nil, err
	}

	return Palette{
		RolePrimary:       seeds.Primary,
		RolePrimaryHover:  primaryHover,
		RoleBackground:    seeds.Background,
		RoleSurface:       seeds.Surface,
		RoleSurfaceHover:  surfaceHover,
		RoleText:          seeds.Text,
		RoleTextSecondary: textSecondary,
		RoleBorder:        border,
		RoleAccent:        seeds.Primary,
	}, nil
}

// BuildResult is what Build produced
type BuildResult struct {
	Palette  Palette
	Warnings []ContrastWarning
}

// Builder derives custom palettes, persists them and activates them
type Builder struct {
	resolver *Resolver
	store    Store
	session  *Session
	logger   *log.Logger
}

// NewBuilder creates a builder that stores palettes in store and activates
// them through session
func NewBuilder(resolver *Resolver, store Store, session *Session, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Builder{
		resolver: resolver,
		store:    store,
		session:  session,
		logger:   logger,
	}
}

// Build validates seeds, derives the palette, stores it as the custom
// palette and selects the custom theme. Only invalid seeds are reported as
// errors; a failed write is logged and the theme is selected anyway.
func (b *Builder) Build(seeds SeedColors) (*BuildResult, error) {
	palette, err := Derive(seeds)
	if err != nil {
		return nil, err
	}

	warnings := CheckContrast(palette)
	for _, w := range warnings {
		b.logger.Warn("Low contrast in custom palette", "foreground", w.Foreground, "background", w.Background, "ratio", fmt.Sprintf("%.2f", w.Ratio))
	}

	data, err := MarshalPalette(palette)
	if err != nil {
		return nil, err
	}
	if b.store != nil {
		if err := b.store.Set(KeyCustomColors, string(data)); err != nil {
			b.logger.Warn("Failed to persist custom palette", "error", err)
		}
	}

	if b.session != nil {
		b.session.Select(CustomID)
	}

	return &BuildResult{Palette: palette, Warnings: warnings}, nil
}

// CurrentSeeds returns the seeds of the custom palette as it resolves now
func (b *Builder) CurrentSeeds() SeedColors {
	return SeedsFromPalette(b.resolver.Resolve(CustomID).Colors)
}
