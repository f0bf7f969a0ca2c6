package theme

import (
	"os"

	"github.com/charmbracelet/log"
)

const (
	// ThemeAttribute marks the root scope with the active theme id
	ThemeAttribute = "theme"
	// LegacyDarkClass is the compatibility class older consumers key off
	LegacyDarkClass = "dark-mode"
)

// Scope is one element of the presentation layer
type Scope interface {
	SetVariable(name, value string)
	SetStyle(property, value string)
	SetAttribute(name, value string)
	SetClass(name string, on bool)
}

// Document is the live presentation layer a theme is painted onto. Root holds
// the presentation variables; Body is the outermost rendered surface.
type Document interface {
	Root() Scope
	Body() Scope
}

// Applier pushes resolved palettes into a document
type Applier struct {
	resolver *Resolver
	document Document
	logger   *log.Logger
}

// NewApplier creates an applier painting onto document
func NewApplier(resolver *Resolver, document Document, logger *log.Logger) *Applier {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Applier{
		resolver: resolver,
		document: document,
		logger:   logger,
	}
}

// Apply resolves id and paints it, returning the definition actually applied
func (a *Applier) Apply(id string) Definition {
	def := a.resolver.Resolve(id)

	root := a.document.Root()
	body := a.document.Body()

	for _, role := range Roles {
		root.SetVariable(role.VariableName(), string(def.Colors[role]))
	}

	// Paint the body directly so the background changes in the same call
	// instead of waiting for variable consumers to restyle.
	body.SetStyle("background-color", string(def.Colors[RoleBackground]))
	body.SetStyle("color", string(def.Colors[RoleText]))

	root.SetAttribute(ThemeAttribute, def.ID)

	legacyDark := IsLegacyDarkFlavor(def.ID)
	root.SetClass(LegacyDarkClass, legacyDark)
	body.SetClass(LegacyDarkClass, legacyDark)

	a.logger.Debug("Applied theme", "requested", id, "theme", def.ID)
	return def
}
