// Package insert synthesizes markup for named component archetypes and
// places it in the preview relative to whatever element sits under the
// drop coordinate.
package insert

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ArchetypeAttr is the data attribute stamped on every node this engine
// produces, carrying the archetype name. The anchor policy reads it back
// on later drops to recognize its own layout containers.
const ArchetypeAttr = "data-vizedit-archetype"

// Archetype is one insertable building block.
type Archetype struct {
	Name      string
	Container bool
	// Layout marks the structural family (container, section, grid,
	// columns). Non-empty layout containers receive siblings, not
	// children, to avoid runaway nesting.
	Layout   bool
	template string
}

// Markup renders the archetype's template with the given test id.
func (a Archetype) Markup(testID string) string {
	return fmt.Sprintf(a.template, testID)
}

var registry = map[string]Archetype{
	"container": {
		Name:      "container",
		Container: true,
		Layout:    true,
		template:  `<div data-testid="%s" ` + ArchetypeAttr + `="container" style="padding: 16px; min-height: 48px;"></div>`,
	},
	"section": {
		Name:      "section",
		Container: true,
		Layout:    true,
		template:  `<section data-testid="%s" ` + ArchetypeAttr + `="section" style="padding: 32px 16px;"></section>`,
	},
	"grid": {
		Name:      "grid",
		Container: true,
		Layout:    true,
		template:  `<div data-testid="%s" ` + ArchetypeAttr + `="grid" style="display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; min-height: 48px;"></div>`,
	},
	"columns": {
		Name:      "columns",
		Container: true,
		Layout:    true,
		template: `<div data-testid="%s" ` + ArchetypeAttr + `="columns" style="display: flex; gap: 16px;">` +
			`<div style="flex: 1; min-height: 48px;"></div>` +
			`<div style="flex: 1; min-height: 48px;"></div>` +
			`</div>`,
	},
	"heading": {
		Name:     "heading",
		template: `<h2 data-testid="%s" ` + ArchetypeAttr + `="heading">Heading</h2>`,
	},
	"text": {
		Name:     "text",
		template: `<p data-testid="%s" ` + ArchetypeAttr + `="text">Add your text here.</p>`,
	},
	"button": {
		Name:     "button",
		template: `<button data-testid="%s" ` + ArchetypeAttr + `="button" type="button">Button</button>`,
	},
	"image": {
		Name:     "image",
		template: `<img data-testid="%s" ` + ArchetypeAttr + `="image" src="https://placehold.co/300x200" alt="Placeholder image" style="max-width: 100%%;">`,
	},
	"link": {
		Name:     "link",
		template: `<a data-testid="%s" ` + ArchetypeAttr + `="link" href="#">Link</a>`,
	},
	"list": {
		Name:     "list",
		template: `<ul data-testid="%s" ` + ArchetypeAttr + `="list"><li>First item</li><li>Second item</li><li>Third item</li></ul>`,
	},
}

// Lookup resolves an archetype by name. Unknown names resolve to an empty
// placeholder div with a diagnostic test id instead of failing the drop.
func Lookup(name string) Archetype {
	if a, ok := registry[name]; ok {
		return a
	}
	return Archetype{
		Name:      name,
		Container: true,
		template:  `<div data-testid="%s" ` + ArchetypeAttr + `="` + sanitize(name) + `"></div>`,
	}
}

// Known reports whether name is a registered archetype.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns the registered archetype names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// NewTestID generates a test id for an inserted node.
func NewTestID(archetype string) string {
	return fmt.Sprintf("vizedit-%s-%s", sanitize(archetype), uuid.NewString()[:8])
}

// sanitize strips characters that would break an HTML attribute value.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
