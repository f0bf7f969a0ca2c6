package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/john/themer/internal/presentation"
	"github.com/john/themer/internal/theme"
	"github.com/john/themer/internal/ui/styles"
)

// transitionFPS is the frame rate of the transition bar; each frame also
// polls the engine state
const transitionFPS = 60

const transitionBarWidth = 24

// Engine is what the picker drives
type Engine interface {
	Select(id string) (theme.Definition, bool)
	Toggle() theme.Definition
	Current() theme.Definition
	IsChanging() bool
}

// frameMsg advances the transition animation
type frameMsg struct{}

// ThemeItem is a catalog entry in the picker list
type ThemeItem struct {
	def    theme.Definition
	active bool
}

// Implement list.Item interface
func (ti ThemeItem) FilterValue() string {
	return ti.def.ID + " " + ti.def.DisplayName
}

func (ti ThemeItem) Title() string {
	if ti.active {
		return "● " + ti.def.DisplayName
	}
	return ti.def.DisplayName
}

func (ti ThemeItem) Description() string {
	return fmt.Sprintf("%s • %s", ti.def.ID, styles.TruncateText(ti.def.Description, 48))
}

// Definition returns the theme behind the item
func (ti ThemeItem) Definition() theme.Definition {
	return ti.def
}

// pickerKeyMap holds the picker key bindings
type pickerKeyMap struct {
	Select  key.Binding
	Toggle  key.Binding
	Preview key.Binding
	Quit    key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Toggle, k.Preview, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultPickerKeys() pickerKeyMap {
	return pickerKeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "dark/light"),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preview"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ThemePicker lists the catalog, previews the highlighted theme and applies
// the chosen one through the engine
type ThemePicker struct {
	engine   Engine
	catalog  *theme.Catalog
	renderer *presentation.TerminalRenderer

	list    list.Model
	spinner spinner.Model
	help    help.Model
	keys    pickerKeyMap

	// spring eases the transition bar towards full while the engine
	// reports a change in progress
	spring   harmonica.Spring
	progress float64
	velocity float64

	styles      *styles.Styles
	changing    bool
	showPreview bool
	message     string
	width       int
	height      int
}

// NewThemePicker creates a picker over every catalog theme
func NewThemePicker(engine Engine, catalog *theme.Catalog, renderer *presentation.TerminalRenderer, width, height int) *ThemePicker {
	current := engine.Current()

	l := list.New(nil, newThemeDelegate(), listWidth(width), height-6)
	l.Title = "Themes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot

	tp := &ThemePicker{
		engine:      engine,
		catalog:     catalog,
		renderer:    renderer,
		list:        l,
		spinner:     s,
		help:        help.New(),
		keys:        defaultPickerKeys(),
		spring:      harmonica.NewSpring(harmonica.FPS(transitionFPS), 6.0, 0.9),
		showPreview: true,
		width:       width,
		height:      height,
	}
	tp.restyle(current)
	tp.refreshItems(current.ID)
	tp.selectIndex(current.ID)
	return tp
}

func newThemeDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.SetHeight(2)
	d.SetSpacing(1)
	return d
}

func listWidth(width int) int {
	if width < 40 {
		return width
	}
	return width / 2
}

// Init initializes the picker
func (tp *ThemePicker) Init() tea.Cmd {
	return nil
}

// Update handles picker updates
func (tp *ThemePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tp.width = msg.Width
		tp.height = msg.Height
		tp.list.SetSize(listWidth(msg.Width), msg.Height-6)
		tp.help.Width = msg.Width

	case frameMsg:
		if !tp.changing {
			return tp, nil
		}
		tp.progress, tp.velocity = tp.spring.Update(tp.progress, tp.velocity, 1.0)
		if tp.engine.IsChanging() {
			return tp, tp.nextFrame()
		}
		tp.changing = false
		tp.progress, tp.velocity = 0, 0
		return tp, nil

	case spinner.TickMsg:
		if !tp.changing {
			return tp, nil
		}
		var cmd tea.Cmd
		tp.spinner, cmd = tp.spinner.Update(msg)
		return tp, cmd

	case tea.KeyMsg:
		if tp.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, tp.keys.Quit):
			return tp, tea.Quit
		case key.Matches(msg, tp.keys.Preview):
			tp.showPreview = !tp.showPreview
			return tp, nil
		case key.Matches(msg, tp.keys.Toggle):
			return tp, tp.applied(tp.engine.Toggle(), true)
		case key.Matches(msg, tp.keys.Select):
			item, ok := tp.list.SelectedItem().(ThemeItem)
			if !ok {
				return tp, nil
			}
			def, known := tp.engine.Select(item.def.ID)
			return tp, tp.applied(def, known)
		}
	}

	var cmd tea.Cmd
	tp.list, cmd = tp.list.Update(msg)
	cmds = append(cmds, cmd)

	return tp, tea.Batch(cmds...)
}

// applied refreshes the picker after the engine painted def and starts
// watching the transition
func (tp *ThemePicker) applied(def theme.Definition, known bool) tea.Cmd {
	tp.restyle(def)
	tp.refreshItems(def.ID)
	tp.selectIndex(def.ID)

	if known {
		tp.message = fmt.Sprintf("Applied %s", def.DisplayName)
	} else {
		tp.message = fmt.Sprintf("Unknown theme, fell back to %s", def.DisplayName)
	}

	if !tp.engine.IsChanging() {
		return nil
	}
	tp.changing = true
	tp.progress, tp.velocity = 0, 0
	return tea.Batch(tp.spinner.Tick, tp.nextFrame())
}

func (tp *ThemePicker) nextFrame() tea.Cmd {
	return tea.Tick(time.Second/transitionFPS, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// Progress returns how far the transition bar has filled, in [0, 1]
func (tp *ThemePicker) Progress() float64 {
	return min(max(tp.progress, 0), 1)
}

func (tp *ThemePicker) transitionBar() string {
	filled := int(tp.Progress()*transitionBarWidth + 0.5)
	return tp.styles.Active.Render(strings.Repeat("█", filled)) +
		tp.styles.Muted.Render(strings.Repeat("░", transitionBarWidth-filled))
}

// restyle repaints the picker chrome with the active palette
func (tp *ThemePicker) restyle(def theme.Definition) {
	t := styles.FromDefinition(def)
	tp.styles = styles.NewStyles(t, nil)
	tp.list.Styles.Title = tp.styles.Title.MarginBottom(0)
	tp.spinner.Style = lipgloss.NewStyle().Foreground(t.Colors.Accent)
}

func (tp *ThemePicker) refreshItems(activeID string) {
	defs := tp.catalog.Definitions()
	items := make([]list.Item, 0, len(defs))
	for _, def := range defs {
		items = append(items, ThemeItem{def: def, active: def.ID == activeID})
	}
	tp.list.SetItems(items)
}

func (tp *ThemePicker) selectIndex(id string) {
	for i, item := range tp.list.Items() {
		if ti, ok := item.(ThemeItem); ok && ti.def.ID == id {
			tp.list.Select(i)
			return
		}
	}
}

// Changing reports whether the picker is waiting for a transition to settle
func (tp *ThemePicker) Changing() bool {
	return tp.changing
}

// Message returns the last status line
func (tp *ThemePicker) Message() string {
	return tp.message
}

// Highlighted returns the theme under the cursor
func (tp *ThemePicker) Highlighted() (theme.Definition, bool) {
	item, ok := tp.list.SelectedItem().(ThemeItem)
	if !ok {
		return theme.Definition{}, false
	}
	return item.def, true
}

// View renders the picker
func (tp *ThemePicker) View() string {
	body := tp.list.View()

	if tp.showPreview && tp.renderer != nil {
		if def, ok := tp.Highlighted(); ok {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, tp.renderer.Card(def))
		}
	}

	var status strings.Builder
	if tp.changing {
		status.WriteString(tp.spinner.View())
		status.WriteString(" ")
		status.WriteString(tp.styles.Warning.Render("changing theme... "))
		status.WriteString(tp.transitionBar())
	} else if tp.message != "" {
		status.WriteString(tp.styles.Success.Render(tp.message))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		status.String(),
		tp.styles.HelpSection.Render(tp.help.View(tp.keys)),
	)
}

// RunPicker runs the picker full screen until the user quits
func RunPicker(engine Engine, catalog *theme.Catalog, renderer *presentation.TerminalRenderer) error {
	picker := NewThemePicker(engine, catalog, renderer, 100, 30)
	_, err := tea.NewProgram(picker, tea.WithAltScreen()).Run()
	return err
}
