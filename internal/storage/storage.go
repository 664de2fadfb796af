package storage

import "fmt"

// Artifact is the location of one saved template markup file.
type Artifact struct {
	Name     string `json:"name"`     // slugified template name
	Filename string `json:"filename"` // slug + extension
	Path     string `json:"path"`     // full path on disk
}

// TemplateStore defines the operations needed for persisting generated
// template artifacts. This allows swapping implementations (e.g. local
// files vs. object storage) later.
type TemplateStore interface {
	// Save writes markup under a name-derived filename, atomically.
	Save(templateName, markup string) (*Artifact, error)

	// Read returns a previously saved artifact's content verbatim.
	Read(path string) (string, error)

	// Remove deletes an artifact. Missing files are not an error.
	Remove(path string) error

	// List enumerates the template artifacts in the store.
	List() ([]Artifact, error)

	// BasePath returns the store's root directory.
	BasePath() string
}

// StorageError wraps every I/O failure the store can surface, so
// callers can distinguish persistence problems from validation or
// generation errors with a single errors.As.
type StorageError struct {
	Op   string // "save", "read", "remove", "list"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
