package theme

// Built-in theme identifiers
const (
	LightID  = "light"
	DarkID   = "dark"
	BlueID   = "blue"
	GreenID  = "green"
	PurpleID = "purple"
	OrangeID = "orange"
	RedID    = "red"
	TealID   = "teal"
	GreyID   = "grey"
	CustomID = "custom"

	// DefaultID is used when no usable preference exists
	DefaultID = DarkID
)

var builtinDefinitions = []Definition{
	{
		ID:          LightID,
		DisplayName: "Light",
		Description: "Clean light workspace with indigo highlights",
		Preview:     "linear-gradient(135deg, #ffffff 0%, #4f46e5 100%)",
		Colors: Palette{
			RolePrimary:       "#4f46e5",
			RolePrimaryHover:  "#4338ca",
			RoleBackground:    "#f8fafc",
			RoleSurface:       "#ffffff",
			RoleSurfaceHover:  "#f1f5f9",
			RoleText:          "#0f172a",
			RoleTextSecondary: "#64748b",
			RoleBorder:        "#e2e8f0",
			RoleAccent:        "#0ea5e9",
		},
	},
	{
		ID:          DarkID,
		DisplayName: "Dark",
		Description: "Low-glare slate palette for long sessions",
		Preview:     "linear-gradient(135deg, #0f172a 0%, #6366f1 100%)",
		Colors: Palette{
			RolePrimary:       "#6366f1",
			RolePrimaryHover:  "#4f46e5",
			RoleBackground:    "#0f172a",
			RoleSurface:       "#1e293b",
			RoleSurfaceHover:  "#334155",
			RoleText:          "#f1f5f9",
			RoleTextSecondary: "#94a3b8",
			RoleBorder:        "#334155",
			RoleAccent:        "#22d3ee",
		},
	},
	{
		ID:          BlueID,
		DisplayName: "Ocean Blue",
		Description: "Deep navy surfaces with bright blue actions",
		Preview:     "linear-gradient(135deg, #0b1e3a 0%, #3b82f6 100%)",
		Colors: Palette{
			RolePrimary:       "#3b82f6",
			RolePrimaryHover:  "#2563eb",
			RoleBackground:    "#0b1e3a",
			RoleSurface:       "#12305a",
			RoleSurfaceHover:  "#1a3d6e",
			RoleText:          "#e6f0ff",
			RoleTextSecondary: "#9db7de",
			RoleBorder:        "#23497f",
			RoleAccent:        "#60a5fa",
		},
	},
	{
		ID:          GreenID,
		DisplayName: "Forest Green",
		Description: "Calm evergreen tones with emerald accents",
		Preview:     "linear-gradient(135deg, #0b2418 0%, #10b981 100%)",
		Colors: Palette{
			RolePrimary:       "#10b981",
			RolePrimaryHover:  "#059669",
			RoleBackground:    "#0b2418",
			RoleSurface:       "#123524",
			RoleSurfaceHover:  "#1a4530",
			RoleText:          "#e7f8ef",
			RoleTextSecondary: "#9ccfb4",
			RoleBorder:        "#235a3e",
			RoleAccent:        "#34d399",
		},
	},
	{
		ID:          PurpleID,
		DisplayName: "Royal Purple",
		Description: "Rich violet surfaces with lilac highlights",
		Preview:     "linear-gradient(135deg, #1e1033 0%, #8b5cf6 100%)",
		Colors: Palette{
			RolePrimary:       "#8b5cf6",
			RolePrimaryHover:  "#7c3aed",
			RoleBackground:    "#1e1033",
			RoleSurface:       "#2a1748",
			RoleSurfaceHover:  "#361f5c",
			RoleText:          "#f3ecff",
			RoleTextSecondary: "#bba8dd",
			RoleBorder:        "#452a70",
			RoleAccent:        "#c084fc",
		},
	},
	{
		ID:          OrangeID,
		DisplayName: "Sunset Orange",
		Description: "Warm charcoal base with amber actions",
		Preview:     "linear-gradient(135deg, #24160c 0%, #f97316 100%)",
		Colors: Palette{
			RolePrimary:       "#f97316",
			RolePrimaryHover:  "#ea580c",
			RoleBackground:    "#24160c",
			RoleSurface:       "#332013",
			RoleSurfaceHover:  "#422b1a",
			RoleText:          "#fff3e8",
			RoleTextSecondary: "#d9b79a",
			RoleBorder:        "#553823",
			RoleAccent:        "#fbbf24",
		},
	},
	{
		ID:          RedID,
		DisplayName: "Crimson",
		Description: "Dark burgundy surfaces with crimson emphasis",
		Preview:     "linear-gradient(135deg, #2a0d12 0%, #ef4444 100%)",
		Colors: Palette{
			RolePrimary:       "#ef4444",
			RolePrimaryHover:  "#dc2626",
			RoleBackground:    "#2a0d12",
			RoleSurface:       "#3a131a",
			RoleSurfaceHover:  "#4a1a23",
			RoleText:          "#ffecee",
			RoleTextSecondary: "#d9a3aa",
			RoleBorder:        "#5e2430",
			RoleAccent:        "#fb7185",
		},
	},
	{
		ID:          TealID,
		DisplayName: "Teal",
		Description: "Cool lagoon palette with teal actions",
		Preview:     "linear-gradient(135deg, #08221f 0%, #14b8a6 100%)",
		Colors: Palette{
			RolePrimary:       "#14b8a6",
			RolePrimaryHover:  "#0d9488",
			RoleBackground:    "#08221f",
			RoleSurface:       "#0f302c",
			RoleSurfaceHover:  "#163f3a",
			RoleText:          "#e6fbf8",
			RoleTextSecondary: "#97cdc6",
			RoleBorder:        "#1f524b",
			RoleAccent:        "#2dd4bf",
		},
	},
	{
		ID:          GreyID,
		DisplayName: "Graphite",
		Description: "Neutral greys for distraction-free work",
		Preview:     "linear-gradient(135deg, #18181b 0%, #71717a 100%)",
		Colors: Palette{
			RolePrimary:       "#71717a",
			RolePrimaryHover:  "#52525b",
			RoleBackground:    "#18181b",
			RoleSurface:       "#27272a",
			RoleSurfaceHover:  "#3f3f46",
			RoleText:          "#fafafa",
			RoleTextSecondary: "#a1a1aa",
			RoleBorder:        "#3f3f46",
			RoleAccent:        "#d4d4d8",
		},
	},
	{
		// Default custom colors are Derive(#6366f1, #0f172a, #1e293b, #f1f5f9).
		ID:          CustomID,
		DisplayName: "Custom",
		Description: "Your own palette built from four seed colors",
		Preview:     "linear-gradient(135deg, #0f172a 0%, #6366f1 50%, #f1f5f9 100%)",
		Colors: Palette{
			RolePrimary:       "#6366f1",
			RolePrimaryHover:  "#3033be",
			RoleBackground:    "#0f172a",
			RoleSurface:       "#1e293b",
			RoleSurfaceHover:  "#384355",
			RoleText:          "#f1f5f9",
			RoleTextSecondary: "#a5a9ad",
			RoleBorder:        "#515c6e",
			RoleAccent:        "#6366f1",
		},
	},
}

// Catalog is the read-only registry of built-in themes
type Catalog struct {
	definitions []Definition
	index       map[string]int
}

// NewCatalog returns a catalog of the built-in themes
func NewCatalog() *Catalog {
	c := &Catalog{
		definitions: builtinDefinitions,
		index:       make(map[string]int, len(builtinDefinitions)),
	}
	for i, def := range builtinDefinitions {
		c.index[def.ID] = i
	}
	return c
}

// Definitions returns copies of every built-in definition in catalog order
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.definitions))
	for i, def := range c.definitions {
		out[i] = def.Clone()
	}
	return out
}

// IDs returns the known theme identifiers in catalog order
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.definitions))
	for i, def := range c.definitions {
		ids[i] = def.ID
	}
	return ids
}

// List returns the enumeration view of every theme
func (c *Catalog) List() []Summary {
	out := make([]Summary, len(c.definitions))
	for i, def := range c.definitions {
		out[i] = def.Summary()
	}
	return out
}

// Lookup returns a copy of the definition with the given id
func (c *Catalog) Lookup(id string) (Definition, bool) {
	i, ok := c.index[id]
	if !ok {
		return Definition{}, false
	}
	return c.definitions[i].Clone(), true
}

// Has reports whether id names a built-in theme
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IsLegacyDarkFlavor reports whether the legacy dark-mode class applies to
// a theme. Every theme except light counts, including colored ones.
func IsLegacyDarkFlavor(id string) bool {
	return id != LightID
}
