package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIDs(t *testing.T) {
	catalog := NewCatalog()

	assert.Equal(t, []string{
		"light", "dark", "blue", "green", "purple",
		"orange", "red", "teal", "grey", "custom",
	}, catalog.IDs())
}

func TestCatalogDefinitionsAreComplete(t *testing.T) {
	catalog := NewCatalog()

	seen := make(map[string]bool)
	for _, def := range catalog.Definitions() {
		assert.False(t, seen[def.ID], "duplicate id %s", def.ID)
		seen[def.ID] = true

		assert.NotEmpty(t, def.DisplayName)
		assert.NotEmpty(t, def.Description)
		assert.NotEmpty(t, def.Preview)
		require.NoError(t, def.Colors.Validate(), "theme %s", def.ID)
	}
}

func TestCatalogList(t *testing.T) {
	catalog := NewCatalog()
	list := catalog.List()

	require.Len(t, list, len(catalog.IDs()))
	for i, summary := range list {
		def, ok := catalog.Lookup(summary.ID)
		require.True(t, ok)
		assert.Equal(t, catalog.IDs()[i], summary.ID)
		assert.Equal(t, def.DisplayName, summary.DisplayName)
		assert.Equal(t, def.Description, summary.Description)
		assert.Equal(t, def.Preview, summary.Preview)
	}
}

func TestCatalogLookupReturnsCopies(t *testing.T) {
	catalog := NewCatalog()

	def, ok := catalog.Lookup(BlueID)
	require.True(t, ok)
	def.Colors[RolePrimary] = "#000000"

	again, _ := catalog.Lookup(BlueID)
	assert.Equal(t, HexColor("#3b82f6"), again.Colors[RolePrimary])

	_, ok = catalog.Lookup("nope")
	assert.False(t, ok)
}

func TestIsLegacyDarkFlavor(t *testing.T) {
	for _, id := range NewCatalog().IDs() {
		assert.Equal(t, id != LightID, IsLegacyDarkFlavor(id), id)
	}
}

func TestParsePalette(t *testing.T) {
	def, _ := NewCatalog().Lookup(TealID)
	data, err := MarshalPalette(def.Colors)
	require.NoError(t, err)

	parsed, err := ParsePalette(data)
	require.NoError(t, err)
	assert.True(t, def.Colors.Equal(parsed))

	bad := []string{
		`not json`,
		`null`,
		`[]`,
		`{"primary":"#ffffff"}`,
		`{"primary":"#fff","primaryHover":"#000000","background":"#000000","surface":"#000000","surfaceHover":"#000000","text":"#000000","textSecondary":"#000000","border":"#000000","accent":"#000000"}`,
		`{"primary":"#ffffff","primaryHover":"#000000","background":"#000000","surface":"#000000","surfaceHover":"#000000","text":"#000000","textSecondary":"#000000","border":"#000000","highlight":"#000000"}`,
		`{"primary":1,"primaryHover":"#000000","background":"#000000","surface":"#000000","surfaceHover":"#000000","text":"#000000","textSecondary":"#000000","border":"#000000","accent":"#000000"}`,
	}
	for _, raw := range bad {
		_, err := ParsePalette([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedPalette, raw)
	}
}
