package presentation

import (
	"sort"
	"sync"

	"github.com/john/themer/internal/theme"
)

// Element is one node of the in-memory presentation layer. It is safe for
// concurrent use so readers (HTTP handlers, the picker) can render while a
// session repaints.
type Element struct {
	mu         sync.RWMutex
	name       string
	variables  map[string]string
	styles     map[string]string
	attributes map[string]string
	classes    map[string]bool
}

// NewElement creates an empty element
func NewElement(name string) *Element {
	return &Element{
		name:       name,
		variables:  make(map[string]string),
		styles:     make(map[string]string),
		attributes: make(map[string]string),
		classes:    make(map[string]bool),
	}
}

func (e *Element) SetVariable(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.variables[name] = value
}

func (e *Element) SetStyle(property, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.styles[property] = value
}

func (e *Element) SetAttribute(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attributes[name] = value
}

func (e *Element) SetClass(name string, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if on {
		e.classes[name] = true
		return
	}
	delete(e.classes, name)
}

// Variable returns a presentation variable
func (e *Element) Variable(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.variables[name]
	return v, ok
}

// Style returns an inline style property
func (e *Element) Style(property string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.styles[property]
	return v, ok
}

// Attribute returns an attribute value
func (e *Element) Attribute(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.attributes[name]
	return v, ok
}

// HasClass reports whether the class is set
func (e *Element) HasClass(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.classes[name]
}

// ElementSnapshot is a point-in-time copy of an element
type ElementSnapshot struct {
	Name       string            `json:"name"`
	Variables  map[string]string `json:"variables"`
	Styles     map[string]string `json:"styles"`
	Attributes map[string]string `json:"attributes"`
	Classes    []string          `json:"classes"`
}

// Snapshot copies the element state
func (e *Element) Snapshot() ElementSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	classes := make([]string, 0, len(e.classes))
	for name := range e.classes {
		classes = append(classes, name)
	}
	sort.Strings(classes)

	return ElementSnapshot{
		Name:       e.name,
		Variables:  copyMap(e.variables),
		Styles:     copyMap(e.styles),
		Attributes: copyMap(e.attributes),
		Classes:    classes,
	}
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Document is an in-memory root scope with its body surface
type Document struct {
	root *Element
	body *Element
}

var _ theme.Document = (*Document)(nil)

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{
		root: NewElement("html"),
		body: NewElement("body"),
	}
}

// Root returns the scope presentation variables are published on
func (d *Document) Root() theme.Scope { return d.root }

// Body returns the outermost rendered surface
func (d *Document) Body() theme.Scope { return d.body }

// RootElement gives read access to the root scope
func (d *Document) RootElement() *Element { return d.root }

// BodyElement gives read access to the body surface
func (d *Document) BodyElement() *Element { return d.body }

// Snapshot is a point-in-time copy of a document
type Snapshot struct {
	Root ElementSnapshot `json:"root"`
	Body ElementSnapshot `json:"body"`
}

// Snapshot copies the document state
func (d *Document) Snapshot() Snapshot {
	return Snapshot{
		Root: d.root.Snapshot(),
		Body: d.body.Snapshot(),
	}
}

// Palette reads the palette currently published on the root scope. Roles
// that have not been painted yet are left out.
func (d *Document) Palette() theme.Palette {
	p := make(theme.Palette, len(theme.Roles))
	for _, role := range theme.Roles {
		if v, ok := d.root.Variable(role.VariableName()); ok {
			p[role] = theme.HexColor(v)
		}
	}
	return p
}
