package theme

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Local store keys
const (
	KeyTheme        = "theme"
	KeyCustomColors = "customThemeColors"
	KeyUser         = "user"
)

// Store is the local key-value persistence the engine reads and writes
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// ErrNoCustomPalette is returned when no custom palette has been persisted
var ErrNoCustomPalette = errors.New("no custom palette stored")

// Resolver turns a theme id into a complete definition
type Resolver struct {
	catalog *Catalog
	store   Store
	logger  *log.Logger
}

// NewResolver creates a resolver backed by the catalog and local store
func NewResolver(catalog *Catalog, store Store, logger *log.Logger) *Resolver {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Resolver{
		catalog: catalog,
		store:   store,
		logger:  logger,
	}
}

// Catalog returns the catalog the resolver falls back to
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve never fails: a missing or corrupted custom record yields the
// default custom palette and an unknown id yields the dark theme.
func (r *Resolver) Resolve(id string) Definition {
	if id == CustomID {
		palette, err := r.CustomPalette()
		switch {
		case err == nil:
			def, _ := r.catalog.Lookup(CustomID)
			def.Colors = palette
			return def
		case errors.Is(err, ErrNoCustomPalette):
			r.logger.Debug("No custom palette stored, using default custom colors")
		default:
			r.logger.Warn("Ignoring stored custom palette", "error", err)
		}
	}

	if def, ok := r.catalog.Lookup(id); ok {
		return def
	}

	r.logger.Debug("Unknown theme, falling back", "theme", id, "fallback", DefaultID)
	def, _ := r.catalog.Lookup(DefaultID)
	return def
}

// CustomPalette loads and validates the persisted custom palette
func (r *Resolver) CustomPalette() (Palette, error) {
	if r.store == nil {
		return nil, ErrNoCustomPalette
	}

	raw, ok, err := r.store.Get(KeyCustomColors)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom palette: %w", err)
	}
	if !ok || raw == "" {
		return nil, ErrNoCustomPalette
	}

	return ParsePalette([]byte(raw))
}
