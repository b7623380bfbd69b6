package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateElementID validates a caller-supplied node or edge id.
// The model replaces ids failing these checks with generated ones.
//
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "element id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidID, "element id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "element id contains invalid control characters")
		}
	}

	return nil
}

// typeNameRegex matches registrable element type names: "rect", "bpmn:task", "my-node".
var typeNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.-]*$`)

// ValidateTypeName validates an element type key for the type registry.
func ValidateTypeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidType, "type name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidType, "type name too long (max 128 characters)")
	}
	if !typeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidType, "invalid type name: %q", name)
	}
	return nil
}

// snapshotNameRegex matches names accepted by snapshot stores.
var snapshotNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateSnapshotName validates the name a snapshot is stored under.
// Names double as file names in the file store, so path characters are rejected.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "snapshot name cannot be empty")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "snapshot name cannot contain ..")
	}
	if !snapshotNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid snapshot name: %q", name)
	}
	return nil
}
