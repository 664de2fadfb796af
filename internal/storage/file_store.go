package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wolfwave-builder/pkg/fsutils"
)

// Ext is the artifact extension the external rendering engine expects.
const Ext = ".tpl"

// FileStore implements TemplateStore on the local filesystem, rooted
// at a caller-supplied directory. Saves are last-writer-wins with no
// versioning; callers needing stronger guarantees serialize their own
// calls.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a store rooted at baseDir, creating the
// directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, &StorageError{Op: "init", Path: baseDir, Err: err}
	}
	if err := fsutils.CreateDir(abs); err != nil {
		return nil, &StorageError{Op: "init", Path: abs, Err: err}
	}
	return &FileStore{baseDir: abs}, nil
}

func (s *FileStore) BasePath() string {
	return s.baseDir
}

// Save derives a filesystem-safe filename from templateName and writes
// the markup atomically (temp file + rename), so a concurrent reader
// never sees a partial artifact. An existing artifact with the same
// derived name is overwritten silently.
func (s *FileStore) Save(templateName, markup string) (*Artifact, error) {
	if strings.TrimSpace(templateName) == "" {
		return nil, &StorageError{Op: "save", Path: s.baseDir, Err: errors.New("template name cannot be empty")}
	}
	slug := fsutils.Slugify(templateName)
	filename := slug + Ext
	path := filepath.Join(s.baseDir, filename)

	if err := fsutils.AtomicWriteFile(path, []byte(markup)); err != nil {
		return nil, &StorageError{Op: "save", Path: path, Err: err}
	}
	return &Artifact{Name: slug, Filename: filename, Path: path}, nil
}

// Read returns the artifact content verbatim. Paths outside the store
// root are rejected before touching the filesystem.
func (s *FileStore) Read(path string) (string, error) {
	resolved, err := s.resolve("read", path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", &StorageError{Op: "read", Path: resolved, Err: err}
	}
	return string(data), nil
}

// Remove deletes the artifact. A missing file is treated as already
// deleted.
func (s *FileStore) Remove(path string) error {
	resolved, err := s.resolve("remove", path)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &StorageError{Op: "remove", Path: resolved, Err: err}
	}
	return nil
}

// List enumerates recognized template artifacts in the store root,
// filtered by extension. Stray files are ignored, not errors.
func (s *FileStore) List() ([]Artifact, error) {
	entries, err := fsutils.ScanDir(s.baseDir)
	if err != nil {
		return nil, &StorageError{Op: "list", Path: s.baseDir, Err: err}
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:     strings.TrimSuffix(entry.Name(), Ext),
			Filename: entry.Name(),
			Path:     filepath.Join(s.baseDir, entry.Name()),
		})
	}
	return artifacts, nil
}

// resolve normalizes a caller-supplied path and confirms it stays
// inside the store root. Bare artifact names (with or without the
// extension) are accepted as a convenience.
func (s *FileStore) resolve(op, path string) (string, error) {
	candidate := path
	if !strings.ContainsRune(candidate, os.PathSeparator) {
		if !strings.HasSuffix(candidate, Ext) {
			candidate += Ext
		}
		candidate = filepath.Join(s.baseDir, candidate)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", &StorageError{Op: op, Path: path, Err: err}
	}
	if abs != s.baseDir && !strings.HasPrefix(abs, s.baseDir+string(os.PathSeparator)) {
		return "", &StorageError{Op: op, Path: path, Err: fmt.Errorf("path escapes store root %q", s.baseDir)}
	}
	return abs, nil
}
