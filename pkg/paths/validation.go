package paths

import (
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
)

// IsMaintenance reports whether name designates the maintenance
// pseudo-release (case-insensitive)
func IsMaintenance(name string) bool {
	return strings.EqualFold(name, MaintenanceDir)
}

// IsCurrent reports whether name designates the current pointer
// (case-insensitive)
func IsCurrent(name string) bool {
	return strings.EqualFold(name, CurrentLink)
}

// ValidateReleaseName ensures a release name is usable as a directory name.
// Release names must:
// - Not be empty
// - Not contain path separators
// - Not be . or .. or start with a dot
// - Not be maintenance or current, in any case
func ValidateReleaseName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "release name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return errors.Newf(errors.ErrInvalidInput, "release name %q cannot contain path separators", name).
			WithDetail("release", name)
	}

	if name == "." || name == ".." {
		return errors.New(errors.ErrInvalidInput, "release name cannot be '.' or '..'")
	}

	// dot-entries are not listed as releases
	if strings.HasPrefix(name, ".") {
		return errors.Newf(errors.ErrInvalidInput, "release name %q cannot start with a dot", name).
			WithDetail("release", name)
	}

	if IsMaintenance(name) || IsCurrent(name) {
		return errors.Newf(errors.ErrInvalidInput, "%q is a reserved name", name).
			WithDetail("release", name)
	}

	// Check for control characters
	for _, r := range name {
		if r < 32 {
			return errors.New(errors.ErrInvalidInput, "release name contains control characters")
		}
	}

	return nil
}
