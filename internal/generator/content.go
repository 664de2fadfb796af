package generator

import (
	"strings"

	"wolfwave-builder/internal/model"
)

// contentNodes emits the type-specific body for a static leaf. The
// second return is false when the type has no emission rule, which
// callers treat like an unknown type. Every type added to the built-in
// catalogue needs a case here.
func contentNodes(def model.ComponentDefinition, c *model.ComponentInstance) ([]node, bool) {
	p := func(key string) string { return property(def, c, key) }

	switch def.Type {
	case "hero":
		var nodes []node
		if bg := p("backgroundImage"); bg != "" {
			nodes = append(nodes, &element{
				tag:  "img",
				void: true,
				attrs: []attr{
					{"class", "hero-background"},
					{"src", bg},
					{"alt", ""},
				},
			})
		}
		nodes = append(nodes, &element{
			tag:   "div",
			attrs: []attr{{"class", "hero-copy"}},
			children: []node{
				&element{tag: "h1", children: []node{text(p("title"))}},
				&element{tag: "p", children: []node{text(p("subtitle"))}},
			},
		})
		return nodes, true

	case "textBlock":
		el := &element{tag: "p", children: []node{text(p("text"))}}
		var decls []string
		if size := p("fontSize"); size != "" {
			decls = append(decls, "font-size: "+size)
		}
		if color := p("color"); color != "" {
			decls = append(decls, "color: "+color)
		}
		if len(decls) > 0 {
			el.attrs = []attr{{"style", strings.Join(decls, "; ")}}
		}
		return []node{el}, true

	case "imageBlock":
		src := p("src")
		if src == "" {
			// A visible blank beats silently rendering nothing, so the
			// designer can see the slot is still empty.
			return []node{&element{
				tag:      "div",
				attrs:    []attr{{"class", "image-placeholder"}},
				children: []node{text("No image selected")},
			}}, true
		}
		el := &element{
			tag:  "img",
			void: true,
			attrs: []attr{
				{"src", src},
				{"alt", p("alt")},
			},
		}
		if width := p("width"); width != "" {
			el.attrs = append(el.attrs, attr{"style", "width: " + width})
		}
		return []node{el}, true

	case "button":
		el := &element{
			tag: "a",
			attrs: []attr{
				{"class", "wolfwave-button-link"},
				{"href", p("link")},
			},
			children: []node{text(p("text"))},
		}
		if color := p("color"); color != "" {
			el.attrs = append(el.attrs, attr{"style", "background-color: " + color})
		}
		return []node{el}, true

	case "card":
		var nodes []node
		if img := p("image"); img != "" {
			nodes = append(nodes, &element{
				tag:  "img",
				void: true,
				attrs: []attr{
					{"class", "card-image"},
					{"src", img},
					{"alt", p("title")},
				},
			})
		}
		nodes = append(nodes, &element{
			tag:   "div",
			attrs: []attr{{"class", "card-body"}},
			children: []node{
				&element{tag: "h3", children: []node{text(p("title"))}},
				&element{tag: "p", children: []node{text(p("description"))}},
			},
		})
		return nodes, true
	}

	return nil, false
}

// property reads from the instance's bag first and falls back to the
// definition's defaults. Instances normally carry every default key,
// but documents arriving over the wire may not.
func property(def model.ComponentDefinition, c *model.ComponentInstance, key string) string {
	if v, ok := c.Properties[key]; ok {
		return v
	}
	return def.DefaultProperties[key]
}
