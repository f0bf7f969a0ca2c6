package theme

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role is one of the nine semantic color slots a palette must fill
type Role string

const (
	RolePrimary       Role = "primary"
	RolePrimaryHover  Role = "primaryHover"
	RoleBackground    Role = "background"
	RoleSurface       Role = "surface"
	RoleSurfaceHover  Role = "surfaceHover"
	RoleText          Role = "text"
	RoleTextSecondary Role = "textSecondary"
	RoleBorder        Role = "border"
	RoleAccent        Role = "accent"
)

// Roles lists every color role in presentation order
var Roles = []Role{
	RolePrimary,
	RolePrimaryHover,
	RoleBackground,
	RoleSurface,
	RoleSurfaceHover,
	RoleText,
	RoleTextSecondary,
	RoleBorder,
	RoleAccent,
}

// IsRole reports whether r is one of the nine known roles
func IsRole(r Role) bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// VariableName returns the presentation variable a role is published under
func (r Role) VariableName() string {
	return "color-" + string(r)
}

// ErrMalformedPalette is returned when a palette is missing roles, carries
// unknown roles or holds colors that are not #rrggbb
var ErrMalformedPalette = errors.New("malformed palette")

// Palette maps every role to a color
type Palette map[Role]HexColor

// Validate checks that p holds exactly the nine roles with valid colors
func (p Palette) Validate() error {
	if len(p) != len(Roles) {
		return fmt.Errorf("%w: expected %d roles, got %d", ErrMalformedPalette, len(Roles), len(p))
	}
	for _, role := range Roles {
		color, ok := p[role]
		if !ok {
			return fmt.Errorf("%w: missing role %s", ErrMalformedPalette, role)
		}
		if !color.Valid() {
			return fmt.Errorf("%w: role %s has invalid color %q", ErrMalformedPalette, role, color)
		}
	}
	return nil
}

// Clone returns an independent copy of the palette
func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	for role, color := range p {
		out[role] = color
	}
	return out
}

// Equal reports whether both palettes map every role to the same color
func (p Palette) Equal(other Palette) bool {
	if len(p) != len(other) {
		return false
	}
	for role, color := range p {
		if other[role] != color {
			return false
		}
	}
	return true
}

// MarshalPalette encodes a palette as the JSON object persisted under
// KeyCustomColors
func MarshalPalette(p Palette) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal palette: %w", err)
	}
	return data, nil
}

// ParsePalette decodes and validates a persisted palette record
func ParsePalette(data []byte) (Palette, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPalette, err)
	}

	p := make(Palette, len(raw))
	for key, value := range raw {
		role := Role(key)
		if !IsRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrMalformedPalette, key)
		}
		p[role] = HexColor(value)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Definition is a named theme and its palette
type Definition struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Description string  `json:"description"`
	Preview     string  `json:"preview"`
	Colors      Palette `json:"colors"`
}

// Clone returns a copy whose palette can be modified freely
func (d Definition) Clone() Definition {
	d.Colors = d.Colors.Clone()
	return d
}

// Summary is the list view of a definition used for enumeration
type Summary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Preview     string `json:"preview"`
}

// Summary returns the list view of d
func (d Definition) Summary() Summary {
	return Summary{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		Description: d.Description,
		Preview:     d.Preview,
	}
}
