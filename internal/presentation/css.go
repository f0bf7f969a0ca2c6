package presentation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/john/themer/internal/theme"
)

// Stylesheet renders the document as CSS: presentation variables as custom
// properties on :root and the inline body styles.
func (d *Document) Stylesheet() string {
	snap := d.Snapshot()
	var b strings.Builder

	if id, ok := snap.Root.Attributes[theme.ThemeAttribute]; ok {
		fmt.Fprintf(&b, "/* theme: %s */\n", id)
	}

	b.WriteString(":root {\n")
	for _, name := range variableOrder(snap.Root.Variables) {
		fmt.Fprintf(&b, "  --%s: %s;\n", name, snap.Root.Variables[name])
	}
	b.WriteString("}\n")

	if len(snap.Body.Styles) > 0 {
		b.WriteString("\nbody {\n")
		for _, prop := range sortedKeys(snap.Body.Styles) {
			fmt.Fprintf(&b, "  %s: %s;\n", prop, snap.Body.Styles[prop])
		}
		b.WriteString("}\n")
	}

	return b.String()
}

// RootAttributes renders the root element's attributes and classes as they
// would appear on the opening html tag
func (d *Document) RootAttributes() string {
	snap := d.root.Snapshot()
	var parts []string
	for _, name := range sortedKeys(snap.Attributes) {
		parts = append(parts, fmt.Sprintf("%s=%q", name, snap.Attributes[name]))
	}
	if len(snap.Classes) > 0 {
		parts = append(parts, fmt.Sprintf("class=%q", strings.Join(snap.Classes, " ")))
	}
	return strings.Join(parts, " ")
}

// variableOrder lists role variables in role order, then anything else
// sorted by name
func variableOrder(vars map[string]string) []string {
	order := make([]string, 0, len(vars))
	seen := make(map[string]bool, len(vars))
	for _, role := range theme.Roles {
		name := role.VariableName()
		if _, ok := vars[name]; ok {
			order = append(order, name)
			seen[name] = true
		}
	}
	for _, name := range sortedKeys(vars) {
		if !seen[name] {
			order = append(order, name)
		}
	}
	return order
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
