// Package layout converts between as-designed screen-pixel geometry
// and the responsive form stored in templates: horizontal axes as
// percentages of their reference box, vertical axes as fixed pixels.
//
// Both transforms are pure functions over a deep copy of the input
// document; the caller's tree is never mutated.
package layout

import (
	"fmt"
	"math"

	"wolfwave-builder/internal/model"
)

// CanvasMetrics is the pixel size of the editing canvas at transform
// time. It is the reference box for top-level instances.
type CanvasMetrics struct {
	Width  float64
	Height float64
}

// refBox is the bounding box geometry resolves against. Nested
// instances resolve against their nearest container ancestor, not the
// page.
type refBox struct {
	width  float64
	height float64
}

// Absolutify resolves every geometry axis into absolute pixels
// relative to the instance's reference box, so a later Relativize (or
// the generator) works from one consistent unit.
func Absolutify(doc *model.TemplateDocument, canvas CanvasMetrics) (*model.TemplateDocument, error) {
	if err := validateCanvas(canvas); err != nil {
		return nil, err
	}
	out := doc.Clone()
	box := refBox{width: canvas.Width, height: canvas.Height}
	for _, c := range out.Components {
		if err := absolutifyInstance(c, box); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Relativize converts absolute pixel geometry into storage form:
// horizontal position and width become percentages of the reference
// box width, vertical position and height stay in pixels. Vertical
// percentages left over from hand-edited documents are resolved to
// pixels here so the stored form is uniform.
func Relativize(doc *model.TemplateDocument, canvas CanvasMetrics) (*model.TemplateDocument, error) {
	if err := validateCanvas(canvas); err != nil {
		return nil, err
	}
	out := doc.Clone()
	box := refBox{width: canvas.Width, height: canvas.Height}
	for _, c := range out.Components {
		if err := relativizeInstance(c, box); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func validateCanvas(canvas CanvasMetrics) error {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return fmt.Errorf("canvas metrics must be positive, got %.0fx%.0f", canvas.Width, canvas.Height)
	}
	if math.IsNaN(canvas.Width) || math.IsInf(canvas.Width, 0) ||
		math.IsNaN(canvas.Height) || math.IsInf(canvas.Height, 0) {
		return fmt.Errorf("canvas metrics must be finite")
	}
	return nil
}

func absolutifyInstance(c *model.ComponentInstance, box refBox) error {
	var err error
	if c.Geometry.Position.X, err = toPixels(c.Geometry.Position.X, box.width, c.ID, "position.x"); err != nil {
		return err
	}
	if c.Geometry.Position.Y, err = toPixels(c.Geometry.Position.Y, box.height, c.ID, "position.y"); err != nil {
		return err
	}
	if c.Geometry.Size.Width, err = toPixels(c.Geometry.Size.Width, box.width, c.ID, "size.width"); err != nil {
		return err
	}
	if c.Geometry.Size.Height, err = toPixels(c.Geometry.Size.Height, box.height, c.ID, "size.height"); err != nil {
		return err
	}

	childBox := childReference(c, box)
	for _, child := range c.Children {
		if err := absolutifyInstance(child, childBox); err != nil {
			return err
		}
	}
	return nil
}

func relativizeInstance(c *model.ComponentInstance, box refBox) error {
	// The children's reference box needs this instance's extent in
	// pixels, so both size axes resolve before anything turns into a
	// percentage.
	var err error
	if c.Geometry.Size.Width, err = toPixels(c.Geometry.Size.Width, box.width, c.ID, "size.width"); err != nil {
		return err
	}
	if c.Geometry.Size.Height, err = toPixels(c.Geometry.Size.Height, box.height, c.ID, "size.height"); err != nil {
		return err
	}
	childBox := childReference(c, box)

	c.Geometry.Position.X, err = toPercent(c.Geometry.Position.X, box.width, c.ID, "position.x")
	if err != nil {
		return err
	}
	c.Geometry.Size.Width, err = toPercent(c.Geometry.Size.Width, box.width, c.ID, "size.width")
	if err != nil {
		return err
	}
	if c.Geometry.Position.Y, err = toPixels(c.Geometry.Position.Y, box.height, c.ID, "position.y"); err != nil {
		return err
	}

	for _, child := range c.Children {
		if err := relativizeInstance(child, childBox); err != nil {
			return err
		}
	}
	return nil
}

// childReference computes the box the instance's children resolve
// against: the instance's own resolved extent where set, the parent
// box otherwise. Requires pixel units, so callers resolve first.
func childReference(c *model.ComponentInstance, parent refBox) refBox {
	box := parent
	if w := c.Geometry.Size.Width; w != nil && w.Unit == model.UnitPx {
		box.width = w.Value
	}
	if h := c.Geometry.Size.Height; h != nil && h.Unit == model.UnitPx {
		box.height = h.Value
	}
	return box
}

func toPixels(d *model.Dimension, ref float64, id, field string) (*model.Dimension, error) {
	if d == nil {
		return nil, nil
	}
	if !d.IsValid() {
		return nil, fmt.Errorf("instance %s: %s has non-finite value", id, field)
	}
	if d.Unit == model.UnitPx {
		return d, nil
	}
	return model.Px(d.Value / 100 * ref), nil
}

func toPercent(d *model.Dimension, ref float64, id, field string) (*model.Dimension, error) {
	if d == nil {
		return nil, nil
	}
	if !d.IsValid() {
		return nil, fmt.Errorf("instance %s: %s has non-finite value", id, field)
	}
	if d.Unit == model.UnitPercent {
		return d, nil
	}
	// Four decimal places keeps the round-trip error well under the
	// 0.01% tolerance while the emitted CSS stays readable.
	pct := d.Value / ref * 100
	return model.Percent(math.Round(pct*10000) / 10000), nil
}
