package generator

import "fmt"

// DuplicateRegionError is a document-level validation failure: two
// instances in one document claim the same CMS region name. The
// external rendering engine would resolve the collision last-wins, so
// it is caught here before anything is written.
type DuplicateRegionError struct {
	Name     string
	FirstID  string
	SecondID string
}

func (e *DuplicateRegionError) Error() string {
	return fmt.Sprintf("duplicate cms region %q: claimed by instances %s and %s", e.Name, e.FirstID, e.SecondID)
}

// InvalidRegionNameError is a document-level validation failure: a CMS
// region name that cannot form a well-formed engine token. Region names
// are emitted verbatim into {{ }} and {% %} constructs, so anything
// beyond identifier characters would corrupt the artifact.
type InvalidRegionNameError struct {
	InstanceID string
	Name       string
}

func (e *InvalidRegionNameError) Error() string {
	return fmt.Sprintf("instance %s: invalid cms region name %q, must start with a letter or underscore and contain only letters, digits, underscores and hyphens", e.InstanceID, e.Name)
}

// GeometryError means an instance carries a geometry value that would
// produce nonsensical CSS (non-finite numbers). Fatal to the whole
// generation rather than degraded, since garbage styles corrupt the
// artifact silently.
type GeometryError struct {
	InstanceID string
	Field      string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("instance %s: geometry field %s has a non-finite value", e.InstanceID, e.Field)
}

// UnknownTypeWarning records an instance whose type is absent from the
// registry. Non-fatal: the instance degrades to an inert placeholder
// and generation of the rest of the document continues.
type UnknownTypeWarning struct {
	InstanceID string
	Type       string
}

func (w *UnknownTypeWarning) Error() string {
	return fmt.Sprintf("instance %s: unknown component type %q, emitted placeholder", w.InstanceID, w.Type)
}
