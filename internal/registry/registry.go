// Package registry holds the catalogue of component definitions the
// builder knows how to place and serialize. The registry is an
// explicit value handed to the generator, not a package global, so
// tests can substitute their own catalogue.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"wolfwave-builder/internal/model"
)

// Registry maps a component type name to its definition. Read-only at
// generation time; mutated only during process startup.
type Registry struct {
	defs   map[string]model.ComponentDefinition
	logger *slog.Logger
}

// New creates an empty registry. A nil logger disables merge logging.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		defs:   make(map[string]model.ComponentDefinition),
		logger: logger,
	}
}

// Default returns the built-in catalogue of WolfWave components.
func Default(logger *slog.Logger) *Registry {
	r := New(logger)
	for _, def := range builtinDefinitions() {
		r.Register(def)
	}
	return r
}

// Register adds or replaces a definition. Replacing an existing type
// is legal (catalogue overlays do it) but logged, never silent.
func (r *Registry) Register(def model.ComponentDefinition) {
	if _, exists := r.defs[def.Type]; exists {
		r.logger.Info("Overriding component definition", "type", def.Type)
	}
	r.defs[def.Type] = def
}

// Lookup resolves a type name. The second return is false for unknown
// types; callers degrade to a placeholder rather than aborting.
func (r *Registry) Lookup(componentType string) (model.ComponentDefinition, bool) {
	def, ok := r.defs[componentType]
	return def, ok
}

// Definitions returns the catalogue sorted by type name, for stable
// palette listings.
func (r *Registry) Definitions() []model.ComponentDefinition {
	out := make([]model.ComponentDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// catalogueFile is the TOML shape of a user-supplied component
// catalogue overlay.
type catalogueFile struct {
	Components []catalogueEntry `toml:"component"`
}

type catalogueEntry struct {
	Type           string            `toml:"type"`
	Label          string            `toml:"label"`
	IsContainer    bool              `toml:"isContainer"`
	EditableFields []string          `toml:"editableFields"`
	Defaults       map[string]string `toml:"defaults"`
}

// LoadFile merges component definitions from a TOML catalogue file
// into the registry. Entries with an empty type are rejected.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalogue file %q: %w", path, err)
	}

	var file catalogueFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse catalogue file %q: %w", path, err)
	}

	for i, entry := range file.Components {
		if entry.Type == "" {
			return fmt.Errorf("catalogue file %q: component %d has no type", path, i)
		}
		label := entry.Label
		if label == "" {
			label = entry.Type
		}
		r.Register(model.ComponentDefinition{
			Type:              entry.Type,
			Label:             label,
			DefaultProperties: entry.Defaults,
			EditableFields:    entry.EditableFields,
			IsContainer:       entry.IsContainer,
		})
	}
	r.logger.Info("Loaded component catalogue", "path", path, "components", len(file.Components))
	return nil
}

// builtinDefinitions is the standard WolfWave palette. Changing a
// default here never retroactively affects already-created instances;
// instances copy defaults at creation time.
func builtinDefinitions() []model.ComponentDefinition {
	return []model.ComponentDefinition{
		{
			Type:  "hero",
			Label: "Hero Banner",
			DefaultProperties: map[string]string{
				"title":           "Welcome",
				"subtitle":        "Your story starts here",
				"backgroundImage": "",
			},
			EditableFields: []string{"title", "subtitle", "backgroundImage"},
		},
		{
			Type:  "textBlock",
			Label: "Text Block",
			DefaultProperties: map[string]string{
				"text":     "Lorem ipsum dolor sit amet.",
				"fontSize": "16px",
				"color":    "#333333",
			},
			EditableFields: []string{"text", "fontSize", "color"},
		},
		{
			Type:  "imageBlock",
			Label: "Image",
			DefaultProperties: map[string]string{
				"src":   "",
				"alt":   "",
				"width": "100%",
			},
			EditableFields: []string{"src", "alt", "width"},
		},
		{
			Type:  "button",
			Label: "Button",
			DefaultProperties: map[string]string{
				"text":  "Click me",
				"link":  "#",
				"color": "#2563eb",
			},
			EditableFields: []string{"text", "link", "color"},
		},
		{
			Type:  "card",
			Label: "Card",
			DefaultProperties: map[string]string{
				"image":       "",
				"title":       "Card title",
				"description": "Card description",
			},
			EditableFields: []string{"image", "title", "description"},
		},
		{
			Type:  "cardGrid",
			Label: "Card Grid",
			DefaultProperties: map[string]string{
				"columns": "3",
				"gap":     "16px",
			},
			EditableFields: []string{"columns", "gap"},
			IsContainer:    true,
		},
	}
}
