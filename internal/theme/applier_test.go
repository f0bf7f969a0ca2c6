package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestApplier() (*Applier, *testDocument) {
	doc := newTestDocument()
	resolver := NewResolver(nil, newMemStore(), quietLogger())
	return NewApplier(resolver, doc, quietLogger()), doc
}

func TestApplySetsVariablesAndMarkers(t *testing.T) {
	applier, doc := newTestApplier()

	def := applier.Apply(GreenID)

	assert.Equal(t, GreenID, def.ID)
	assert.Len(t, doc.root.variables, len(Roles))
	for _, role := range Roles {
		assert.Equal(t, string(def.Colors[role]), doc.root.variables["color-"+string(role)])
	}
	assert.Equal(t, GreenID, doc.root.attributes["theme"])
	assert.Equal(t, string(def.Colors[RoleBackground]), doc.body.styles["background-color"])
	assert.Equal(t, string(def.Colors[RoleText]), doc.body.styles["color"])
}

func TestApplyLegacyDarkClass(t *testing.T) {
	applier, doc := newTestApplier()

	applier.Apply(LightID)
	assert.False(t, doc.root.classes[LegacyDarkClass])
	assert.False(t, doc.body.classes[LegacyDarkClass])

	// Every non-light theme carries the class, colored ones included.
	for _, id := range []string{DarkID, BlueID, GreenID, PurpleID, OrangeID, RedID, TealID, GreyID, CustomID} {
		applier.Apply(id)
		assert.True(t, doc.root.classes[LegacyDarkClass], id)
		assert.True(t, doc.body.classes[LegacyDarkClass], id)

		applier.Apply(LightID)
		assert.False(t, doc.root.classes[LegacyDarkClass], id)
		assert.False(t, doc.body.classes[LegacyDarkClass], id)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	once, onceDoc := newTestApplier()
	once.Apply(PurpleID)

	twice, twiceDoc := newTestApplier()
	twice.Apply(PurpleID)
	twice.Apply(OrangeID)
	twice.Apply(PurpleID)

	assert.Equal(t, onceDoc.root.variables, twiceDoc.root.variables)
	assert.Equal(t, onceDoc.root.attributes, twiceDoc.root.attributes)
	assert.Equal(t, onceDoc.root.classes, twiceDoc.root.classes)
	assert.Equal(t, onceDoc.body.styles, twiceDoc.body.styles)
	assert.Equal(t, onceDoc.body.classes, twiceDoc.body.classes)
}

func TestApplyUnknownPaintsDark(t *testing.T) {
	applier, doc := newTestApplier()

	def := applier.Apply("doesnotexist")

	assert.Equal(t, DarkID, def.ID)
	assert.Equal(t, DarkID, doc.root.attributes["theme"])
	assert.Equal(t, "#0f172a", doc.root.variables["color-background"])
}
