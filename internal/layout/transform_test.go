package layout

import (
	"math"
	"testing"

	"wolfwave-builder/internal/model"
)

var canvas = CanvasMetrics{Width: 1280, Height: 800}

// tolerance is 0.01% of the canvas width, the round-trip guarantee.
const tolerance = 0.0001

func approxEqual(a, b, ref float64) bool {
	return math.Abs(a-b) <= ref*tolerance
}

func TestAbsolutifyResolvesPercentages(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "T",
		Components: []*model.ComponentInstance{
			{
				ID:   "a",
				Type: "hero",
				Geometry: model.Geometry{
					Position: model.Position{X: model.Percent(25), Y: model.Px(40)},
					Size:     model.Size{Width: model.Percent(50), Height: model.Px(200)},
				},
			},
		},
	}

	out, err := Absolutify(doc, canvas)
	if err != nil {
		t.Fatalf("Absolutify failed: %v", err)
	}

	geo := out.Components[0].Geometry
	if geo.Position.X.Unit != model.UnitPx || geo.Position.X.Value != 320 {
		t.Errorf("position.x = %v, want 320px", geo.Position.X)
	}
	if geo.Size.Width.Unit != model.UnitPx || geo.Size.Width.Value != 640 {
		t.Errorf("size.width = %v, want 640px", geo.Size.Width)
	}
	if geo.Position.Y.Value != 40 || geo.Size.Height.Value != 200 {
		t.Errorf("vertical axes changed: y=%v h=%v", geo.Position.Y, geo.Size.Height)
	}
}

func TestAbsolutifyDoesNotMutateInput(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "T",
		Components: []*model.ComponentInstance{
			{ID: "a", Type: "hero", Geometry: model.Geometry{
				Size: model.Size{Width: model.Percent(50)},
			}},
		},
	}

	if _, err := Absolutify(doc, canvas); err != nil {
		t.Fatalf("Absolutify failed: %v", err)
	}
	if got := doc.Components[0].Geometry.Size.Width; got.Unit != model.UnitPercent || got.Value != 50 {
		t.Errorf("Input document mutated: width = %v", got)
	}
}

func TestRelativizeConvertsHorizontalOnly(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "T",
		Components: []*model.ComponentInstance{
			{ID: "a", Type: "hero", Geometry: model.Geometry{
				Position: model.Position{X: model.Px(320), Y: model.Px(40)},
				Size:     model.Size{Width: model.Px(640), Height: model.Px(200)},
			}},
		},
	}

	out, err := Relativize(doc, canvas)
	if err != nil {
		t.Fatalf("Relativize failed: %v", err)
	}

	geo := out.Components[0].Geometry
	if geo.Position.X.Unit != model.UnitPercent || !approxEqual(geo.Position.X.Value, 25, 100) {
		t.Errorf("position.x = %v, want 25%%", geo.Position.X)
	}
	if geo.Size.Width.Unit != model.UnitPercent || !approxEqual(geo.Size.Width.Value, 50, 100) {
		t.Errorf("size.width = %v, want 50%%", geo.Size.Width)
	}
	if geo.Position.Y.Unit != model.UnitPx || geo.Position.Y.Value != 40 {
		t.Errorf("position.y = %v, want 40px", geo.Position.Y)
	}
	if geo.Size.Height.Unit != model.UnitPx || geo.Size.Height.Value != 200 {
		t.Errorf("size.height = %v, want 200px", geo.Size.Height)
	}
}

// Round-trip: relativize(absolutify(tree)) must not visibly move or
// resize anything, including nested children that resolve against
// their container's box rather than the canvas.
func TestRoundTripNested(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "T",
		Components: []*model.ComponentInstance{
			{
				ID:   "grid",
				Type: "cardGrid",
				Geometry: model.Geometry{
					Position: model.Position{X: model.Percent(10), Y: model.Px(100)},
					Size:     model.Size{Width: model.Percent(80), Height: model.Px(400)},
				},
				Children: []*model.ComponentInstance{
					{
						ID:   "card",
						Type: "card",
						Geometry: model.Geometry{
							Position: model.Position{X: model.Percent(5), Y: model.Px(16)},
							Size:     model.Size{Width: model.Percent(30), Height: model.Px(180)},
						},
					},
				},
			},
		},
	}

	absolute, err := Absolutify(doc, canvas)
	if err != nil {
		t.Fatalf("Absolutify failed: %v", err)
	}

	// The child's reference is the grid's resolved width (1024px), not
	// the canvas.
	child := absolute.Components[0].Children[0]
	if got := child.Geometry.Size.Width; got.Unit != model.UnitPx || !approxEqual(got.Value, 307.2, canvas.Width) {
		t.Errorf("child width = %v, want 307.2px (30%% of 1024px)", got)
	}

	back, err := Relativize(absolute, canvas)
	if err != nil {
		t.Fatalf("Relativize failed: %v", err)
	}

	assertDim := func(name string, got, want *model.Dimension, ref float64) {
		t.Helper()
		if got == nil || want == nil {
			if got != want {
				t.Errorf("%s = %v, want %v", name, got, want)
			}
			return
		}
		if got.Unit != want.Unit || !approxEqual(got.Value, want.Value, ref) {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	grid := back.Components[0]
	orig := doc.Components[0]
	assertDim("grid position.x", grid.Geometry.Position.X, orig.Geometry.Position.X, 100)
	assertDim("grid size.width", grid.Geometry.Size.Width, orig.Geometry.Size.Width, 100)
	assertDim("grid position.y", grid.Geometry.Position.Y, orig.Geometry.Position.Y, canvas.Height)
	assertDim("grid size.height", grid.Geometry.Size.Height, orig.Geometry.Size.Height, canvas.Height)

	backChild := grid.Children[0]
	origChild := orig.Children[0]
	assertDim("child position.x", backChild.Geometry.Position.X, origChild.Geometry.Position.X, 100)
	assertDim("child size.width", backChild.Geometry.Size.Width, origChild.Geometry.Size.Width, 100)
	assertDim("child position.y", backChild.Geometry.Position.Y, origChild.Geometry.Position.Y, canvas.Height)
	assertDim("child size.height", backChild.Geometry.Size.Height, origChild.Geometry.Size.Height, canvas.Height)
}

// A container arriving with a percentage height must resolve to pixels
// before its children's vertical axes resolve, otherwise the children
// measure against the canvas instead of the container.
func TestRelativizeResolvesContainerHeightFirst(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "T",
		Components: []*model.ComponentInstance{
			{
				ID:   "grid",
				Type: "cardGrid",
				Geometry: model.Geometry{
					Size: model.Size{Width: model.Px(1024), Height: model.Percent(50)},
				},
				Children: []*model.ComponentInstance{
					{
						ID:   "card",
						Type: "card",
						Geometry: model.Geometry{
							Position: model.Position{Y: model.Percent(25)},
						},
					},
				},
			},
		},
	}

	out, err := Relativize(doc, canvas)
	if err != nil {
		t.Fatalf("Relativize failed: %v", err)
	}

	grid := out.Components[0]
	if got := grid.Geometry.Size.Height; got.Unit != model.UnitPx || got.Value != 400 {
		t.Errorf("grid height = %v, want 400px (50%% of %.0fpx canvas)", got, canvas.Height)
	}
	// 25% of the grid's 400px, not of the 800px canvas.
	child := grid.Children[0]
	if got := child.Geometry.Position.Y; got.Unit != model.UnitPx || got.Value != 100 {
		t.Errorf("child position.y = %v, want 100px", got)
	}
}

func TestTransformsKeepUnsetAxesUnset(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "T",
		Components: []*model.ComponentInstance{
			{ID: "a", Type: "hero"},
		},
	}

	absolute, err := Absolutify(doc, canvas)
	if err != nil {
		t.Fatalf("Absolutify failed: %v", err)
	}
	back, err := Relativize(absolute, canvas)
	if err != nil {
		t.Fatalf("Relativize failed: %v", err)
	}

	if !back.Components[0].Geometry.IsZero() {
		t.Errorf("Unset geometry gained values: %+v", back.Components[0].Geometry)
	}
}

func TestInvalidCanvasRejected(t *testing.T) {
	doc := &model.TemplateDocument{Name: "T"}
	cases := []CanvasMetrics{
		{Width: 0, Height: 800},
		{Width: 1280, Height: -1},
		{Width: math.NaN(), Height: 800},
	}
	for _, c := range cases {
		if _, err := Absolutify(doc, c); err == nil {
			t.Errorf("Absolutify accepted invalid canvas %+v", c)
		}
		if _, err := Relativize(doc, c); err == nil {
			t.Errorf("Relativize accepted invalid canvas %+v", c)
		}
	}
}

func TestNonFiniteGeometryRejected(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "T",
		Components: []*model.ComponentInstance{
			{ID: "a", Type: "hero", Geometry: model.Geometry{
				Size: model.Size{Width: model.Percent(math.Inf(1))},
			}},
		},
	}
	if _, err := Absolutify(doc, canvas); err == nil {
		t.Error("Absolutify accepted non-finite geometry")
	}
}
