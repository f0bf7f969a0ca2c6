package styles

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/john/themer/internal/presentation"
	"github.com/john/themer/internal/theme"
)

// CodeLanguage is a language chroma can highlight
type CodeLanguage string

const (
	LangCSS       CodeLanguage = "css"
	LangJSON      CodeLanguage = "json"
	LangPlainText CodeLanguage = "text"
)

// TextFormatter renders markdown and highlights code for the active theme
type TextFormatter struct {
	theme       *Theme
	support     presentation.ColorSupport
	width       int
	glamour     *glamour.TermRenderer
	chromaStyle *chroma.Style
}

// NewTextFormatter creates a formatter for t at the given width
func NewTextFormatter(t *Theme, width int, support presentation.ColorSupport) *TextFormatter {
	tf := &TextFormatter{
		theme:   t,
		support: support,
		width:   width,
	}

	tf.initGlamourRenderer()
	tf.initChromaStyle()

	return tf
}

// initGlamourRenderer picks the glamour standard style matching the theme
func (tf *TextFormatter) initGlamourRenderer() {
	style := "dark"
	switch {
	case tf.support.IsMonochrome:
		style = "notty"
	case !tf.theme.IsDark:
		style = "light"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(tf.wrapWidth()),
	)
	if err != nil {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithWordWrap(tf.wrapWidth()),
		)
	}

	tf.glamour = renderer
}

func (tf *TextFormatter) initChromaStyle() {
	if tf.theme.IsDark {
		tf.chromaStyle = chromastyles.Get("monokai")
	} else {
		tf.chromaStyle = chromastyles.Get("github")
	}

	if tf.chromaStyle == nil {
		tf.chromaStyle = chromastyles.Fallback
	}
}

func (tf *TextFormatter) wrapWidth() int {
	if tf.width <= 8 {
		return 80
	}
	return tf.width - 4
}

// formatterName picks the richest chroma terminal formatter the terminal
// supports
func (tf *TextFormatter) formatterName() string {
	switch {
	case tf.support.IsMonochrome:
		return "noop"
	case tf.support.HasTrueColor:
		return "terminal16m"
	case tf.support.Has256Color:
		return "terminal256"
	default:
		return "terminal"
	}
}

// RenderMarkdown renders markdown with glamour. On failure the source is
// returned along with the error.
func (tf *TextFormatter) RenderMarkdown(markdown string) (string, error) {
	if tf.glamour == nil {
		return markdown, fmt.Errorf("glamour renderer not initialized")
	}

	rendered, err := tf.glamour.Render(markdown)
	if err != nil {
		return markdown, err
	}

	return strings.TrimSpace(rendered), nil
}

// HighlightCode applies syntax highlighting to code
func (tf *TextFormatter) HighlightCode(code string, language CodeLanguage) (string, error) {
	lexer := lexers.Get(string(language))
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get(tf.formatterName())
	if formatter == nil {
		return code, fmt.Errorf("formatter %q not available", tf.formatterName())
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var highlighted strings.Builder
	if err := formatter.Format(&highlighted, tf.chromaStyle, iterator); err != nil {
		return code, err
	}

	return highlighted.String(), nil
}

// HighlightCodeBlock highlights code and frames it, labelled with its
// language
func (tf *TextFormatter) HighlightCodeBlock(code string, language CodeLanguage) string {
	highlighted, err := tf.HighlightCode(code, language)
	if err != nil {
		highlighted = code
	}

	block := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tf.theme.Colors.Border).
		Padding(0, 1).
		Render(strings.TrimRight(highlighted, "\n"))

	if language == LangPlainText || language == "" {
		return block
	}

	label := lipgloss.NewStyle().
		Foreground(tf.theme.Colors.TextSecondary).
		Italic(true).
		Render("# " + string(language))
	return label + "\n" + block
}

// ThemeMarkdown describes a definition as a markdown document: name,
// description and a table of its palette
func ThemeMarkdown(def theme.Definition, active bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", def.DisplayName)
	if def.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", def.Description)
	}

	fmt.Fprintf(&b, "- **id:** `%s`\n", def.ID)
	if def.Preview != "" {
		fmt.Fprintf(&b, "- **preview:** `%s`\n", def.Preview)
	}
	if active {
		b.WriteString("- **active**\n")
	}

	b.WriteString("\n| Role | Variable | Color |\n|---|---|---|\n")
	for _, role := range theme.Roles {
		color, ok := def.Colors[role]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | `%s` | `%s` |\n", role, role.VariableName(), color)
	}

	return b.String()
}

// TruncateText shortens text to maxLength cells with an ellipsis. Escape
// sequences do not count towards the width.
func TruncateText(text string, maxLength int) string {
	if maxLength <= 0 || ansi.StringWidth(text) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return ansi.Truncate(text, maxLength, "")
	}
	return ansi.Truncate(text, maxLength, "...")
}
