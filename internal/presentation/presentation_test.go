package presentation

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/john/themer/internal/theme"
)

func paint(t *testing.T, doc *Document, ids ...string) theme.Definition {
	t.Helper()
	logger := log.New(io.Discard)
	applier := theme.NewApplier(theme.NewResolver(nil, nil, logger), doc, logger)
	var def theme.Definition
	for _, id := range ids {
		def = applier.Apply(id)
	}
	return def
}

func TestDocumentReflectsAppliedTheme(t *testing.T) {
	doc := NewDocument()
	def := paint(t, doc, theme.BlueID)

	snap := doc.Snapshot()
	assert.Equal(t, "html", snap.Root.Name)
	assert.Equal(t, "body", snap.Body.Name)
	assert.Equal(t, theme.BlueID, snap.Root.Attributes["theme"])
	assert.Equal(t, []string{"dark-mode"}, snap.Root.Classes)
	assert.Equal(t, []string{"dark-mode"}, snap.Body.Classes)
	assert.True(t, def.Colors.Equal(doc.Palette()))

	paint(t, doc, theme.LightID)
	assert.False(t, doc.RootElement().HasClass("dark-mode"))
	assert.False(t, doc.BodyElement().HasClass("dark-mode"))
	bg, ok := doc.BodyElement().Style("background-color")
	require.True(t, ok)
	assert.Equal(t, "#f8fafc", bg)
}

func TestSnapshotIsACopy(t *testing.T) {
	doc := NewDocument()
	paint(t, doc, theme.DarkID)

	snap := doc.Snapshot()
	snap.Root.Variables["color-primary"] = "#000000"

	v, _ := doc.RootElement().Variable("color-primary")
	assert.Equal(t, "#6366f1", v)
}

func TestStylesheet(t *testing.T) {
	doc := NewDocument()
	paint(t, doc, theme.TealID)

	css := doc.Stylesheet()

	assert.True(t, strings.HasPrefix(css, "/* theme: teal */\n:root {\n  --color-primary: #14b8a6;\n  --color-primaryHover: #0d9488;\n"))
	assert.Contains(t, css, "  --color-accent: #2dd4bf;\n}\n")
	assert.Contains(t, css, "body {\n  background-color: #08221f;\n  color: #e6fbf8;\n}\n")
	assert.Equal(t, 9, strings.Count(css, "--color-"))
}

func TestStylesheetOfEmptyDocument(t *testing.T) {
	assert.Equal(t, ":root {\n}\n", NewDocument().Stylesheet())
}

func TestRootAttributes(t *testing.T) {
	doc := NewDocument()
	paint(t, doc, theme.GreenID)
	assert.Equal(t, `theme="green" class="dark-mode"`, doc.RootAttributes())

	paint(t, doc, theme.LightID)
	assert.Equal(t, `theme="light"`, doc.RootAttributes())
}

func TestConcurrentPaintAndRead(t *testing.T) {
	doc := NewDocument()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			paint(t, doc, theme.RedID, theme.GreyID)
		}()
		go func() {
			defer wg.Done()
			_ = doc.Stylesheet()
		}()
	}
	wg.Wait()
	assert.NoError(t, doc.Palette().Validate())
}

func TestDetectColorSupport(t *testing.T) {
	assert.Equal(t, ColorSupport{HasTrueColor: true, Has256Color: true, HasColor: true}, DetectColorSupport(termenv.TrueColor))
	assert.Equal(t, ColorSupport{Has256Color: true, HasColor: true}, DetectColorSupport(termenv.ANSI256))
	assert.Equal(t, ColorSupport{HasColor: true}, DetectColorSupport(termenv.ANSI))
	assert.Equal(t, ColorSupport{IsMonochrome: true}, DetectColorSupport(termenv.Ascii))
}

func TestTerminalSwatches(t *testing.T) {
	tr := NewTerminalRendererWithProfile(&bytes.Buffer{}, termenv.Ascii)
	def, _ := theme.NewCatalog().Lookup(theme.OrangeID)

	out := tr.Swatches(def.Colors)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, len(theme.Roles))
	assert.Equal(t, "[  ] primary        #f97316", lines[0])
	assert.Contains(t, out, "textSecondary  #d9b79a")
}

func TestTerminalCard(t *testing.T) {
	tr := NewTerminalRendererWithProfile(&bytes.Buffer{}, termenv.Ascii)

	doc := NewDocument()
	assert.Empty(t, tr.DocumentCard(doc))

	paint(t, doc, theme.PurpleID)
	card := tr.DocumentCard(doc)
	assert.Contains(t, card, "purple")
	assert.Contains(t, card, "Save")

	def, _ := theme.NewCatalog().Lookup(theme.PurpleID)
	assert.Contains(t, tr.Card(def), "Royal Purple")
}
