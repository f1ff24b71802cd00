package widget

import "fmt"

// Catalog is an immutable set of widgets with derived lookup indices by ID
// and by template URI. It is built once at startup and is safe for
// unsynchronized concurrent reads.
type Catalog struct {
	widgets []Widget
	byID    map[string]*Widget
	byURI   map[string]*Widget
}

// NewCatalog builds a catalog from the given widgets. Construction fails on
// a duplicate ID or template URI rather than silently overwriting an
// earlier entry.
func NewCatalog(widgets ...Widget) (*Catalog, error) {
	c := &Catalog{
		widgets: make([]Widget, len(widgets)),
		byID:    make(map[string]*Widget, len(widgets)),
		byURI:   make(map[string]*Widget, len(widgets)),
	}
	copy(c.widgets, widgets)
	for i := range c.widgets {
		w := &c.widgets[i]
		if w.ID == "" {
			return nil, fmt.Errorf("widget %d has an empty id", i)
		}
		if w.TemplateURI == "" {
			return nil, fmt.Errorf("widget %q has an empty template URI", w.ID)
		}
		if _, exists := c.byID[w.ID]; exists {
			return nil, fmt.Errorf("duplicate widget id %q", w.ID)
		}
		if _, exists := c.byURI[w.TemplateURI]; exists {
			return nil, fmt.Errorf("duplicate widget template URI %q", w.TemplateURI)
		}
		c.byID[w.ID] = w
		c.byURI[w.TemplateURI] = w
	}
	return c, nil
}

// ByID returns the widget whose ID (tool name) matches.
func (c *Catalog) ByID(id string) (*Widget, bool) {
	w, ok := c.byID[id]
	return w, ok
}

// ByTemplateURI returns the widget whose template URI (resource key) matches.
func (c *Catalog) ByTemplateURI(uri string) (*Widget, bool) {
	w, ok := c.byURI[uri]
	return w, ok
}

// All returns the widgets in catalog order. The returned slice is a copy;
// callers may not mutate catalog state through it.
func (c *Catalog) All() []Widget {
	out := make([]Widget, len(c.widgets))
	copy(out, c.widgets)
	return out
}

// Len returns the number of widgets in the catalog.
func (c *Catalog) Len() int {
	return len(c.widgets)
}
