// Package templating renders saved template artifacts into previewable
// HTML by substituting sample content for CMS region tokens. The real
// rendering engine lives outside this repo; this is only good enough
// for a designer to eyeball a generated template.
package templating

import (
	"fmt"
	"regexp"
	"strings"

	"wolfwave-builder/internal/storage"
)

// sampleIterations controls how many copies of a repeater body the
// preview shows.
const sampleIterations = 2

// Engine fills CMS regions in stored artifacts with sample content.
type Engine struct {
	store storage.TemplateStore
}

func NewEngine(store storage.TemplateStore) *Engine {
	return &Engine{store: store}
}

// PreviewArtifact loads a saved artifact by name or path and returns
// it with every region token replaced by sample content.
func (e *Engine) PreviewArtifact(name string) (string, error) {
	markup, err := e.store.Read(name)
	if err != nil {
		return "", fmt.Errorf("failed to load artifact %q for preview: %w", name, err)
	}
	return FillSample(markup), nil
}

var valueToken = regexp.MustCompile(`\{\{ (\w+)\.([\w-]+) \}\}`)

const (
	forPrefix = "{% for "
	endToken  = "{% endfor %}"
)

// FillSample replaces repeater loop constructs with a fixed number of
// copies of their body and single-value tokens with labelled sample
// spans. The output contains no remaining template-engine tokens.
func FillSample(markup string) string {
	lines := strings.Split(markup, "\n")
	expanded, _ := expandLines(lines, 0, false)
	out := strings.Join(expanded, "\n")
	return valueToken.ReplaceAllString(out, `<span class="cms-sample">Sample content ($2)</span>`)
}

// expandLines expands loop blocks recursively so nested repeaters
// unroll correctly. The generator always places loop tokens on their
// own lines. Returns the expanded lines and the index of the line
// after the consumed range.
func expandLines(lines []string, i int, inLoop bool) ([]string, int) {
	var out []string
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(trimmed, forPrefix):
			body, next := expandLines(lines, i+1, true)
			for n := 0; n < sampleIterations; n++ {
				out = append(out, body...)
			}
			i = next
		case trimmed == endToken:
			if inLoop {
				return out, i + 1
			}
			// Stray endfor without a matching for; drop it.
			i++
		default:
			out = append(out, lines[i])
			i++
		}
	}
	return out, i
}
