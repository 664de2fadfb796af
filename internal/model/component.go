package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Unit is the measurement unit of a single geometry axis.
type Unit string

const (
	UnitPx      Unit = "px"
	UnitPercent Unit = "%"
)

// Dimension is one geometry value, e.g. "600px" or "42.5%".
// A nil *Dimension means the axis is unset and must not be emitted.
type Dimension struct {
	Value float64
	Unit  Unit
}

// ParseDimension parses "600px", "42.5%" or a bare number (treated as px).
func ParseDimension(s string) (Dimension, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Dimension{}, fmt.Errorf("empty dimension")
	}

	unit := UnitPx
	switch {
	case strings.HasSuffix(raw, string(UnitPercent)):
		unit = UnitPercent
		raw = strings.TrimSuffix(raw, string(UnitPercent))
	case strings.HasSuffix(raw, string(UnitPx)):
		raw = strings.TrimSuffix(raw, string(UnitPx))
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("invalid dimension %q: %w", s, err)
	}
	d := Dimension{Value: value, Unit: unit}
	if !d.IsValid() {
		return Dimension{}, fmt.Errorf("invalid dimension %q: value is not finite", s)
	}
	return d, nil
}

// Px and Percent are convenience constructors used heavily in tests.
func Px(v float64) *Dimension      { return &Dimension{Value: v, Unit: UnitPx} }
func Percent(v float64) *Dimension { return &Dimension{Value: v, Unit: UnitPercent} }

// IsValid reports whether the value can appear in a style declaration.
func (d Dimension) IsValid() bool {
	return !math.IsNaN(d.Value) && !math.IsInf(d.Value, 0)
}

// String renders the dimension the way it appears in generated CSS,
// trimming insignificant trailing zeros ("600px", "42.5%").
func (d Dimension) String() string {
	num := strconv.FormatFloat(d.Value, 'f', -1, 64)
	return num + string(d.Unit)
}

func (d Dimension) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Dimension) UnmarshalJSON(data []byte) error {
	// Accept both "600px" and a bare number for editor compatibility.
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n float64
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return fmt.Errorf("dimension must be a string or number: %w", err)
		}
		s = strconv.FormatFloat(n, 'f', -1, 64)
	}
	parsed, err := ParseDimension(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Position is the offset of an instance within its reference box.
type Position struct {
	X *Dimension `json:"x,omitempty"`
	Y *Dimension `json:"y,omitempty"`
}

// Size is the rendered extent of an instance.
type Size struct {
	Width  *Dimension `json:"width,omitempty"`
	Height *Dimension `json:"height,omitempty"`
}

// Geometry groups position and size. Any axis may be unset.
type Geometry struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// IsZero reports whether no axis is set at all.
func (g Geometry) IsZero() bool {
	return g.Position.X == nil && g.Position.Y == nil &&
		g.Size.Width == nil && g.Size.Height == nil
}

// BindingKind says how an instance is bound to CMS content. The enum
// makes the editable/repeating exclusivity structural instead of a
// pair of booleans that could drift apart.
type BindingKind int

const (
	BindingNone BindingKind = iota
	BindingEditable
	BindingRepeating
)

func (k BindingKind) String() string {
	switch k {
	case BindingEditable:
		return "editable"
	case BindingRepeating:
		return "repeating"
	default:
		return "none"
	}
}

// CMSRegion names a placeholder the external CMS later fills.
type CMSRegion struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

// ComponentDefinition is one registry catalogue entry. Immutable after
// process start; instances copy its defaults rather than reference them.
type ComponentDefinition struct {
	Type              string            `json:"type"`
	Label             string            `json:"label"`
	DefaultProperties map[string]string `json:"defaultProperties,omitempty"`
	EditableFields    []string          `json:"editableFields,omitempty"`
	IsContainer       bool              `json:"isContainer,omitempty"`
}

// ComponentInstance is one placed occurrence of a component type.
type ComponentInstance struct {
	ID         string
	Type       string
	Properties map[string]string
	Geometry   Geometry
	Binding    BindingKind
	Region     *CMSRegion
	Children   []*ComponentInstance
}

// NewInstance creates an instance of the given definition with a fresh
// ID and a private copy of the default properties.
func NewInstance(def ComponentDefinition) *ComponentInstance {
	props := make(map[string]string, len(def.DefaultProperties))
	for k, v := range def.DefaultProperties {
		props[k] = v
	}
	return &ComponentInstance{
		ID:         uuid.New().String(),
		Type:       def.Type,
		Properties: props,
	}
}

// SetBinding switches the CMS binding of the instance. Passing
// BindingNone clears the region; any other kind requires one. The
// region name defaults to <type>-<id prefix> when left empty.
func (c *ComponentInstance) SetBinding(kind BindingKind, region *CMSRegion) error {
	if kind == BindingNone {
		c.Binding = BindingNone
		c.Region = nil
		return nil
	}
	if region == nil {
		return fmt.Errorf("binding %s requires a cms region", kind)
	}
	if region.Name == "" {
		region.Name = DeriveRegionName(c.Type, c.ID)
	}
	c.Binding = kind
	c.Region = region
	return nil
}

// DeriveRegionName builds the deterministic default region name.
func DeriveRegionName(componentType, id string) string {
	short := id
	if i := strings.IndexByte(id, '-'); i > 0 {
		short = id[:i]
	}
	return componentType + "-" + short
}

// Clone returns a deep copy of the instance and its subtree.
func (c *ComponentInstance) Clone() *ComponentInstance {
	if c == nil {
		return nil
	}
	out := &ComponentInstance{
		ID:      c.ID,
		Type:    c.Type,
		Binding: c.Binding,
	}
	if c.Properties != nil {
		out.Properties = make(map[string]string, len(c.Properties))
		for k, v := range c.Properties {
			out.Properties[k] = v
		}
	}
	out.Geometry = Geometry{
		Position: Position{X: cloneDim(c.Geometry.Position.X), Y: cloneDim(c.Geometry.Position.Y)},
		Size:     Size{Width: cloneDim(c.Geometry.Size.Width), Height: cloneDim(c.Geometry.Size.Height)},
	}
	if c.Region != nil {
		region := *c.Region
		out.Region = &region
	}
	if len(c.Children) > 0 {
		out.Children = make([]*ComponentInstance, len(c.Children))
		for i, child := range c.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

func cloneDim(d *Dimension) *Dimension {
	if d == nil {
		return nil
	}
	copied := *d
	return &copied
}

// TemplateDocument is the unit handed to the generator: a named,
// ordered tree of component instances.
type TemplateDocument struct {
	Name       string               `json:"name"`
	Components []*ComponentInstance `json:"components"`
}

// Clone deep-copies the document so transforms never touch the
// caller's tree.
func (d *TemplateDocument) Clone() *TemplateDocument {
	out := &TemplateDocument{Name: d.Name}
	if len(d.Components) > 0 {
		out.Components = make([]*ComponentInstance, len(d.Components))
		for i, c := range d.Components {
			out.Components[i] = c.Clone()
		}
	}
	return out
}

// instanceJSON is the wire shape shared with the editor shell. The
// editor still speaks isEditable/isRepeating booleans; the enum is an
// internal invariant only.
type instanceJSON struct {
	ID          string               `json:"id"`
	Type        string               `json:"type"`
	Properties  map[string]string    `json:"properties,omitempty"`
	Geometry    *Geometry            `json:"geometry,omitempty"`
	IsEditable  bool                 `json:"isEditable,omitempty"`
	IsRepeating bool                 `json:"isRepeating,omitempty"`
	CMSRegion   *CMSRegion           `json:"cmsRegion,omitempty"`
	Children    []*ComponentInstance `json:"children,omitempty"`
}

func (c ComponentInstance) MarshalJSON() ([]byte, error) {
	wire := instanceJSON{
		ID:          c.ID,
		Type:        c.Type,
		Properties:  c.Properties,
		IsEditable:  c.Binding == BindingEditable,
		IsRepeating: c.Binding == BindingRepeating,
		CMSRegion:   c.Region,
		Children:    c.Children,
	}
	if !c.Geometry.IsZero() {
		geo := c.Geometry
		wire.Geometry = &geo
	}
	return json.Marshal(wire)
}

func (c *ComponentInstance) UnmarshalJSON(data []byte) error {
	var wire instanceJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.ID = wire.ID
	if c.ID == "" {
		// Hand-written documents may omit IDs; mint one so every
		// instance is addressable in the generated markup.
		c.ID = uuid.New().String()
	}
	c.Type = wire.Type
	c.Properties = wire.Properties
	if wire.Geometry != nil {
		c.Geometry = *wire.Geometry
	} else {
		c.Geometry = Geometry{}
	}
	c.Region = wire.CMSRegion
	c.Children = wire.Children

	// Documents produced outside the editor can carry both flags;
	// editable wins, matching the generator's branch precedence.
	switch {
	case wire.IsEditable:
		c.Binding = BindingEditable
	case wire.IsRepeating:
		c.Binding = BindingRepeating
	default:
		c.Binding = BindingNone
	}
	return nil
}
