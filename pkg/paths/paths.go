package paths

import (
	"path"
	"strings"
)

// Layout directory names
const (
	// ReleasesDir holds one directory per release
	ReleasesDir = "releases"

	// SharedDir holds resources linked into every release
	SharedDir = "shared"

	// MaintenanceDir is the maintenance pseudo-release
	MaintenanceDir = "maintenance"

	// CurrentLink selects the live release
	CurrentLink = "current"
)

// Layout maps deployment concepts to remote paths under a base path.
// Remote paths are always POSIX, whatever the local OS.
type Layout struct {
	base string
}

// New returns the layout rooted at base
func New(base string) Layout {
	return Layout{base: path.Clean(base)}
}

// Base returns the base path
func (l Layout) Base() string { return l.base }

// ReleasesPath returns <base>/releases
func (l Layout) ReleasesPath() string { return path.Join(l.base, ReleasesDir) }

// ReleasePath returns <base>/releases/<name>. The name is not validated.
func (l Layout) ReleasePath(name string) string {
	return path.Join(l.base, ReleasesDir, name)
}

// SharedPath returns <base>/shared
func (l Layout) SharedPath() string { return path.Join(l.base, SharedDir) }

// MaintenancePath returns <base>/maintenance
func (l Layout) MaintenancePath() string { return path.Join(l.base, MaintenanceDir) }

// CurrentPath returns <base>/current
func (l Layout) CurrentPath() string { return path.Join(l.base, CurrentLink) }

// ResolveTarget makes a link target read from <base>/current absolute and
// clean. Relative targets are relative to the directory holding the link.
func (l Layout) ResolveTarget(target string) string {
	if !path.IsAbs(target) {
		target = path.Join(l.base, target)
	}
	return path.Clean(target)
}

// ReleaseName returns the release a path designates, if it is a direct
// child of the releases directory.
func (l Layout) ReleaseName(p string) (string, bool) {
	p = path.Clean(p)
	if path.Dir(p) != l.ReleasesPath() {
		return "", false
	}
	name := path.Base(p)
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}
