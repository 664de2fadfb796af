// Package generator serializes a template document into markup for
// the external WolfWave rendering engine. The walk is deterministic:
// the same document always produces byte-identical output.
package generator

import (
	"fmt"
	"regexp"
	"strings"

	"wolfwave-builder/internal/model"
	"wolfwave-builder/internal/registry"
	"wolfwave-builder/pkg/fsutils"
)

// Namespace prefixes every CMS region token in generated markup, e.g.
// {{ wolfwave.headline }}.
const Namespace = "wolfwave"

// header is fixed text, never a timestamp; regeneration of an
// unchanged document must be byte-identical.
const header = "<!-- Generated by the WolfWave template builder. Do not edit by hand. -->"

// Generator walks template documents and emits markup. The registry
// is injected so tests can run against a fake catalogue.
type Generator struct {
	registry *registry.Registry
}

func New(reg *registry.Registry) *Generator {
	return &Generator{registry: reg}
}

// Result is one successful generation. Warnings list instances that
// degraded to placeholders; the document as a whole still rendered.
type Result struct {
	Slug     string
	Markup   string
	Warnings []*UnknownTypeWarning
}

// Generate validates and serializes the document. Document-level
// problems (duplicate region names, broken geometry) fail the whole
// call before any markup is produced; unknown component types degrade
// per-instance and are reported as warnings.
func (g *Generator) Generate(doc *model.TemplateDocument) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	res := &Result{Slug: fsutils.Slugify(doc.Name)}

	root := &element{
		tag: "div",
		attrs: []attr{
			{"class", "template-root"},
			{"data-template", "template-" + res.Slug},
		},
	}
	for _, c := range doc.Components {
		root.children = append(root.children, g.instanceNode(c, res))
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	root.render(&b, 0)
	res.Markup = b.String()
	return res, nil
}

// regionName constrains CMS region names to identifier shape. Names go
// verbatim into {{ wolfwave.<name> }} and {% for %} tokens; the preview
// tokenizer matches the same alphabet.
var regionName = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)

// validateDocument walks the whole tree once, checking geometry values,
// CMS region name syntax and region name uniqueness before anything is
// emitted.
func validateDocument(doc *model.TemplateDocument) error {
	seen := make(map[string]string) // region name -> first claiming instance ID
	var walk func(c *model.ComponentInstance) error
	walk = func(c *model.ComponentInstance) error {
		if err := validateGeometry(c); err != nil {
			return err
		}
		if c.Binding != model.BindingNone && c.Region != nil {
			if !regionName.MatchString(c.Region.Name) {
				return &InvalidRegionNameError{InstanceID: c.ID, Name: c.Region.Name}
			}
			if firstID, dup := seen[c.Region.Name]; dup {
				return &DuplicateRegionError{Name: c.Region.Name, FirstID: firstID, SecondID: c.ID}
			}
			seen[c.Region.Name] = c.ID
		}
		for _, child := range c.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, c := range doc.Components {
		if err := walk(c); err != nil {
			return err
		}
	}
	return nil
}

func validateGeometry(c *model.ComponentInstance) error {
	check := func(d *model.Dimension, field string) error {
		if d != nil && !d.IsValid() {
			return &GeometryError{InstanceID: c.ID, Field: field}
		}
		return nil
	}
	if err := check(c.Geometry.Position.X, "position.x"); err != nil {
		return err
	}
	if err := check(c.Geometry.Position.Y, "position.y"); err != nil {
		return err
	}
	if err := check(c.Geometry.Size.Width, "size.width"); err != nil {
		return err
	}
	return check(c.Geometry.Size.Height, "size.height")
}

// instanceNode serializes one instance. Branch precedence: editable
// binding, then repeating, then container, then static leaf. An
// editable/repeating binding without a region falls through to the
// structural branches.
func (g *Generator) instanceNode(c *model.ComponentInstance, res *Result) node {
	if c.Binding == model.BindingEditable && c.Region != nil {
		return g.editableNode(c)
	}
	if c.Binding == model.BindingRepeating && c.Region != nil {
		return g.repeaterNode(c, res)
	}

	def, known := g.registry.Lookup(c.Type)
	if known && def.IsContainer {
		return g.containerNode(c, res)
	}
	if known {
		if content, ok := contentNodes(def, c); ok {
			return g.staticNode(c, content)
		}
		// Registered but without an emission rule: same degradation
		// as a type missing from the registry entirely.
	}
	res.Warnings = append(res.Warnings, &UnknownTypeWarning{InstanceID: c.ID, Type: c.Type})
	return unknownNode(c)
}

func (g *Generator) editableNode(c *model.ComponentInstance) node {
	regionType := c.Region.Type
	if regionType == "" {
		regionType = "text"
	}
	el := &element{tag: "div"}
	el.attrs = appendIdentity(el.attrs, c)
	el.attrs = append(el.attrs,
		attr{"data-cms-region", c.Region.Name},
		attr{"data-cms-type", regionType},
	)
	el.attrs = appendStyle(el.attrs, c)
	el.children = []node{raw(fmt.Sprintf("{{ %s.%s }}", Namespace, c.Region.Name))}
	return el
}

func (g *Generator) repeaterNode(c *model.ComponentInstance, res *Result) node {
	el := &element{tag: "div"}
	el.attrs = appendIdentity(el.attrs, c)
	el.attrs = append(el.attrs,
		attr{"data-cms-region", c.Region.Name},
		attr{"data-cms-type", "repeater"},
	)
	el.attrs = appendStyle(el.attrs, c)

	// The children describe the per-item template and appear in the
	// loop body exactly once, not once per expected iteration.
	el.children = append(el.children, raw(fmt.Sprintf("{%% for item in %s.%s %%}", Namespace, c.Region.Name)))
	for _, child := range c.Children {
		el.children = append(el.children, g.instanceNode(child, res))
	}
	el.children = append(el.children, raw("{% endfor %}"))
	return el
}

func (g *Generator) containerNode(c *model.ComponentInstance, res *Result) node {
	el := &element{tag: "div", attrs: []attr{{"class", componentClass(c.Type)}}}
	el.attrs = appendIdentity(el.attrs, c)
	el.attrs = appendStyle(el.attrs, c)
	for _, child := range c.Children {
		el.children = append(el.children, g.instanceNode(child, res))
	}
	return el
}

func (g *Generator) staticNode(c *model.ComponentInstance, content []node) node {
	el := &element{tag: "div", attrs: []attr{{"class", componentClass(c.Type)}}}
	el.attrs = appendIdentity(el.attrs, c)
	el.attrs = appendStyle(el.attrs, c)
	el.children = content
	return el
}

// unknownNode is the inert, visibly broken placeholder for a type the
// registry cannot resolve. Siblings keep rendering around it.
func unknownNode(c *model.ComponentInstance) node {
	el := &element{tag: "div", attrs: []attr{{"class", "wolfwave-unknown"}}}
	el.attrs = appendIdentity(el.attrs, c)
	el.children = []node{comment(fmt.Sprintf("unknown component type %q", c.Type))}
	return el
}

func componentClass(componentType string) string {
	return "wolfwave-" + fsutils.Slugify(componentType)
}

func appendIdentity(attrs []attr, c *model.ComponentInstance) []attr {
	return append(attrs,
		attr{"data-component-id", c.ID},
		attr{"data-component-type", c.Type},
	)
}

// appendStyle renders geometry as an inline style attribute. Unset
// axes are omitted entirely; a fully unset geometry emits no style
// attribute at all.
func appendStyle(attrs []attr, c *model.ComponentInstance) []attr {
	style := geometryStyle(c.Geometry)
	if style == "" {
		return attrs
	}
	return append(attrs, attr{"style", style})
}

func geometryStyle(g model.Geometry) string {
	var decls []string
	add := func(prop string, d *model.Dimension) {
		if d != nil {
			decls = append(decls, prop+": "+d.String())
		}
	}
	add("margin-left", g.Position.X)
	add("margin-top", g.Position.Y)
	add("width", g.Size.Width)
	add("height", g.Size.Height)
	return strings.Join(decls, "; ")
}
