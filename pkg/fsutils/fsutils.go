package fsutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CreateDir creates a directory (and any parents) if it doesn't exist.
func CreateDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ScanDir lists files and directories directly under the given path.
func ScanDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// AtomicWriteFile writes content to path so that a concurrent reader
// never observes a half-written file: content goes to a temp file in
// the same directory first, which then replaces the target via rename.
func AtomicWriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	// The temp file must not be left behind on any failure below.
	fail := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return cause
	}

	if _, err := tmp.Write(content); err != nil {
		return fail(fmt.Errorf("failed to write temp file %q: %w", tmpName, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("failed to flush temp file %q: %w", tmpName, err))
	}
	if err := tmp.Close(); err != nil {
		return fail(fmt.Errorf("failed to close temp file %q: %w", tmpName, err))
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fail(fmt.Errorf("failed to set permissions on %q: %w", tmpName, err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fail(fmt.Errorf("failed to rename %q to %q: %w", tmpName, path, err))
	}
	return nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`) // slugs allow only lowercase alphanum and hyphen
var multiHyphen = regexp.MustCompile(`-+`)             // collapse runs of hyphens

// Slugify converts a human-readable name into a filesystem- and
// URL-safe slug: lowercase, runs of non-alphanumeric characters become
// a single hyphen, leading/trailing hyphens are trimmed.
// "My Landing Page!" -> "my-landing-page".
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = multiHyphen.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "template"
	}
	return slug
}
