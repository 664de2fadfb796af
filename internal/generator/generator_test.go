package generator

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"wolfwave-builder/internal/model"
	"wolfwave-builder/internal/registry"
)

func testGenerator() *Generator {
	return New(registry.Default(nil))
}

func hero(id, title, subtitle string) *model.ComponentInstance {
	return &model.ComponentInstance{
		ID:   id,
		Type: "hero",
		Properties: map[string]string{
			"title":           title,
			"subtitle":        subtitle,
			"backgroundImage": "",
		},
	}
}

func card(id, title string) *model.ComponentInstance {
	return &model.ComponentInstance{
		ID:   id,
		Type: "card",
		Properties: map[string]string{
			"image":       "",
			"title":       title,
			"description": "A card",
		},
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "Homepage",
		Components: []*model.ComponentInstance{
			func() *model.ComponentInstance {
				h := hero("hero-1", "Welcome", "Hi")
				h.Geometry.Size.Width = model.Px(600)
				return h
			}(),
		},
	}

	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if res.Slug != "homepage" {
		t.Errorf("Slug = %q, want %q", res.Slug, "homepage")
	}

	checks := []string{
		`data-template="template-homepage"`,
		`data-component-type="hero"`,
		`data-component-id="hero-1"`,
		`<h1>Welcome</h1>`,
		`<p>Hi</p>`,
		`style="width: 600px"`,
	}
	for _, want := range checks {
		if !strings.Contains(res.Markup, want) {
			t.Errorf("Markup missing %q.\nMarkup:\n%s", want, res.Markup)
		}
	}
	if strings.Contains(res.Markup, "margin-left") {
		t.Errorf("Markup contains margin-left for unset position.x.\nMarkup:\n%s", res.Markup)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", res.Warnings)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "Stable",
		Components: []*model.ComponentInstance{
			hero("a", "One", "Two"),
			card("b", "Card"),
		},
	}

	gen := testGenerator()
	first, err := gen.Generate(doc)
	if err != nil {
		t.Fatalf("First Generate failed: %v", err)
	}
	second, err := gen.Generate(doc)
	if err != nil {
		t.Fatalf("Second Generate failed: %v", err)
	}
	if first.Markup != second.Markup {
		t.Errorf("Generation is not idempotent.\nFirst:\n%s\nSecond:\n%s", first.Markup, second.Markup)
	}
}

func TestGenerateUnknownTypeResilience(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "Mixed",
		Components: []*model.ComponentInstance{
			hero("a", "Before", "x"),
			{ID: "bad", Type: "holograph"},
			hero("c", "After", "y"),
		},
	}

	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, want := range []string{"Before", "After", `unknown component type "holograph"`, `data-component-id="bad"`} {
		if !strings.Contains(res.Markup, want) {
			t.Errorf("Markup missing %q.\nMarkup:\n%s", want, res.Markup)
		}
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(res.Warnings))
	}
	if res.Warnings[0].Type != "holograph" || res.Warnings[0].InstanceID != "bad" {
		t.Errorf("Unexpected warning: %+v", res.Warnings[0])
	}
}

// The placeholder comment interpolates the untrusted type name; a name
// containing --> must not terminate the comment and leak live markup.
func TestUnknownTypeCommentCannotBreakOut(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "Hostile",
		Components: []*model.ComponentInstance{
			{ID: "bad", Type: `evil--><script>alert(1)</script>`},
		},
	}

	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(res.Markup, "--><script>") {
		t.Errorf("Comment body terminated early.\nMarkup:\n%s", res.Markup)
	}
	if !strings.Contains(res.Markup, `class="wolfwave-unknown"`) {
		t.Errorf("Expected unknown placeholder.\nMarkup:\n%s", res.Markup)
	}
}

func TestGenerateContainerNesting(t *testing.T) {
	grid := &model.ComponentInstance{
		ID:   "grid",
		Type: "cardGrid",
		Children: []*model.ComponentInstance{
			card("c1", "First"),
			card("c2", "Second"),
			card("c3", "Third"),
		},
	}
	doc := &model.TemplateDocument{Name: "Grid Page", Components: []*model.ComponentInstance{grid}}

	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got := strings.Count(res.Markup, `class="wolfwave-cardgrid"`); got != 1 {
		t.Errorf("Expected exactly 1 grid wrapper, found %d.\nMarkup:\n%s", got, res.Markup)
	}
	if got := strings.Count(res.Markup, `data-component-type="card"`); got != 3 {
		t.Errorf("Expected 3 card blocks, found %d.\nMarkup:\n%s", got, res.Markup)
	}

	// Cards appear in document order.
	first := strings.Index(res.Markup, "First")
	second := strings.Index(res.Markup, "Second")
	third := strings.Index(res.Markup, "Third")
	if !(first < second && second < third) {
		t.Errorf("Cards out of document order: %d, %d, %d", first, second, third)
	}
}

func TestGenerateRepeaterEmission(t *testing.T) {
	repeater := &model.ComponentInstance{
		ID:      "list",
		Type:    "cardGrid",
		Binding: model.BindingRepeating,
		Region:  &model.CMSRegion{Name: "products", Type: "repeater"},
		Children: []*model.ComponentInstance{
			card("c1", "Item title"),
			{ID: "c2", Type: "textBlock", Properties: map[string]string{"text": "Item body"}},
		},
	}
	doc := &model.TemplateDocument{Name: "Shop", Components: []*model.ComponentInstance{repeater}}

	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got := strings.Count(res.Markup, "{% for item in wolfwave.products %}"); got != 1 {
		t.Errorf("Expected exactly 1 loop open, found %d", got)
	}
	if got := strings.Count(res.Markup, "{% endfor %}"); got != 1 {
		t.Errorf("Expected exactly 1 loop close, found %d", got)
	}
	// Each child serialized exactly once, not per anticipated iteration.
	if got := strings.Count(res.Markup, "Item title"); got != 1 {
		t.Errorf("Repeater child duplicated: found title %d times", got)
	}
	if got := strings.Count(res.Markup, "Item body"); got != 1 {
		t.Errorf("Repeater child duplicated: found body %d times", got)
	}
	if !strings.Contains(res.Markup, `data-cms-type="repeater"`) {
		t.Errorf("Repeater wrapper missing data-cms-type.\nMarkup:\n%s", res.Markup)
	}
}

func TestGenerateEditableRegion(t *testing.T) {
	editable := &model.ComponentInstance{
		ID:      "headline",
		Type:    "textBlock",
		Binding: model.BindingEditable,
		Region:  &model.CMSRegion{Name: "headline", Type: "text"},
	}
	doc := &model.TemplateDocument{Name: "Landing", Components: []*model.ComponentInstance{editable}}

	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, want := range []string{
		"{{ wolfwave.headline }}",
		`data-cms-region="headline"`,
		`data-cms-type="text"`,
	} {
		if !strings.Contains(res.Markup, want) {
			t.Errorf("Markup missing %q.\nMarkup:\n%s", want, res.Markup)
		}
	}
}

// A document edited outside the UI can arrive with both flags set; the
// wire decoder resolves it to editable, and the generator must treat
// it as a single-value binding.
func TestBothFlagsSetTreatedAsEditable(t *testing.T) {
	payload := `{
		"name": "Imported",
		"components": [{
			"id": "x",
			"type": "textBlock",
			"isEditable": true,
			"isRepeating": true,
			"cmsRegion": {"name": "body", "type": "text"},
			"children": [{"id": "y", "type": "card"}]
		}]
	}`
	var doc model.TemplateDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	res, err := testGenerator().Generate(&doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(res.Markup, "{{ wolfwave.body }}") {
		t.Errorf("Expected single-value placeholder.\nMarkup:\n%s", res.Markup)
	}
	if strings.Contains(res.Markup, "{% for") {
		t.Errorf("Both-flags instance emitted a loop construct.\nMarkup:\n%s", res.Markup)
	}
}

func TestGenerateDuplicateRegionName(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "Broken",
		Components: []*model.ComponentInstance{
			{ID: "a", Type: "textBlock", Binding: model.BindingEditable, Region: &model.CMSRegion{Name: "body"}},
			{ID: "b", Type: "textBlock", Binding: model.BindingEditable, Region: &model.CMSRegion{Name: "body"}},
		},
	}

	_, err := testGenerator().Generate(doc)
	if err == nil {
		t.Fatal("Generate succeeded with duplicate region names, expected error")
	}
	var dup *DuplicateRegionError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateRegionError, got %T: %v", err, err)
	}
	if dup.Name != "body" || dup.FirstID != "a" || dup.SecondID != "b" {
		t.Errorf("Unexpected error detail: %+v", dup)
	}
}

// Region names go verbatim into engine tokens, so anything beyond
// identifier shape must fail validation instead of producing a token
// the renderer (and the preview) cannot match.
func TestGenerateRejectsMalformedRegionName(t *testing.T) {
	bad := []string{"hero section", "", "1st", "a.b", "x}}{{y"}
	for _, name := range bad {
		doc := &model.TemplateDocument{
			Name: "Landing",
			Components: []*model.ComponentInstance{
				{ID: "a", Type: "textBlock", Binding: model.BindingEditable, Region: &model.CMSRegion{Name: name, Type: "text"}},
			},
		}
		_, err := testGenerator().Generate(doc)
		if err == nil {
			t.Errorf("Generate accepted region name %q, expected error", name)
			continue
		}
		var invalid *InvalidRegionNameError
		if !errors.As(err, &invalid) {
			t.Errorf("Region name %q: expected InvalidRegionNameError, got %T: %v", name, err, err)
			continue
		}
		if invalid.Name != name || invalid.InstanceID != "a" {
			t.Errorf("Unexpected error detail: %+v", invalid)
		}
	}

	for _, name := range []string{"headline", "_private", "hero-copy", "items2"} {
		doc := &model.TemplateDocument{
			Name: "Landing",
			Components: []*model.ComponentInstance{
				{ID: "a", Type: "textBlock", Binding: model.BindingEditable, Region: &model.CMSRegion{Name: name, Type: "text"}},
			},
		}
		if _, err := testGenerator().Generate(doc); err != nil {
			t.Errorf("Generate rejected region name %q: %v", name, err)
		}
	}
}

func TestGenerateInvalidGeometry(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "NaN Page",
		Components: []*model.ComponentInstance{
			{ID: "a", Type: "textBlock", Geometry: model.Geometry{
				Size: model.Size{Width: model.Px(math.NaN())},
			}},
		},
	}

	_, err := testGenerator().Generate(doc)
	if err == nil {
		t.Fatal("Generate succeeded with NaN geometry, expected error")
	}
	var geo *GeometryError
	if !errors.As(err, &geo) {
		t.Fatalf("Expected GeometryError, got %T: %v", err, err)
	}
	if geo.Field != "size.width" {
		t.Errorf("GeometryError field = %q, want size.width", geo.Field)
	}
}

func TestGeometryStyleOmission(t *testing.T) {
	tests := []struct {
		name string
		geo  model.Geometry
		want string
	}{
		{
			name: "all unset",
			geo:  model.Geometry{},
			want: "",
		},
		{
			name: "height unset",
			geo: model.Geometry{
				Position: model.Position{X: model.Px(10), Y: model.Px(20)},
				Size:     model.Size{Width: model.Percent(50)},
			},
			want: "margin-left: 10px; margin-top: 20px; width: 50%",
		},
		{
			name: "only height",
			geo:  model.Geometry{Size: model.Size{Height: model.Px(120)}},
			want: "height: 120px",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := geometryStyle(tc.geo); got != tc.want {
				t.Errorf("geometryStyle() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateNoStyleAttrWhenGeometryUnset(t *testing.T) {
	doc := &model.TemplateDocument{
		Name:       "Plain",
		Components: []*model.ComponentInstance{hero("a", "T", "S")},
	}
	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(res.Markup, "style=") {
		t.Errorf("Markup contains a style attribute for unset geometry.\nMarkup:\n%s", res.Markup)
	}
}

func TestGenerateEscapesPropertyValues(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "Escapes",
		Components: []*model.ComponentInstance{
			hero("a", `<script>alert("x")</script>`, "ok"),
		},
	}
	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(res.Markup, "<script>") {
		t.Errorf("Property value not escaped.\nMarkup:\n%s", res.Markup)
	}
	if !strings.Contains(res.Markup, "&lt;script&gt;") {
		t.Errorf("Expected escaped script tag.\nMarkup:\n%s", res.Markup)
	}
}

func TestGenerateImagePlaceholderWhenSrcEmpty(t *testing.T) {
	doc := &model.TemplateDocument{
		Name: "Images",
		Components: []*model.ComponentInstance{
			{ID: "img1", Type: "imageBlock", Properties: map[string]string{"src": "", "alt": "", "width": "100%"}},
		},
	}
	res, err := testGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(res.Markup, `class="image-placeholder"`) {
		t.Errorf("Expected visible placeholder for empty image src.\nMarkup:\n%s", res.Markup)
	}
}
