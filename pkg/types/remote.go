package types

import (
	"io"
	"io/fs"
)

// EntryType classifies a remote directory entry without following links.
type EntryType int

const (
	EntryOther EntryType = iota
	EntryFile
	EntryDir
	EntryLink
)

// String returns the lowercase name of the entry type
func (t EntryType) String() string {
	switch t {
	case EntryFile:
		return "file"
	case EntryDir:
		return "dir"
	case EntryLink:
		return "link"
	default:
		return "other"
	}
}

// EntryTypeOf maps a file mode to an EntryType
func EntryTypeOf(mode fs.FileMode) EntryType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return EntryLink
	case mode.IsDir():
		return EntryDir
	case mode.IsRegular():
		return EntryFile
	default:
		return EntryOther
	}
}

// Remote is the filesystem and command capability of a deployment host.
// Paths are POSIX paths on the host. Every call is a blocking round trip.
type Remote interface {
	// Exists reports whether path exists, without following a final link.
	Exists(path string) (bool, error)
	// IsDir and IsFile follow links; a missing path is false, not an error.
	IsDir(path string) (bool, error)
	IsFile(path string) (bool, error)
	// IsLink reports whether path itself is a symbolic link.
	IsLink(path string) (bool, error)

	Mkdir(path string, recursive bool) error
	// Delete removes path. Recursive deletes never follow links.
	Delete(path string, recursive bool) error
	Rename(oldpath, newpath string) error
	// Symlink creates link pointing at target. With force an existing link
	// (or file) is removed first.
	Symlink(target, link string, force bool) error
	Readlink(path string) (string, error)
	Realpath(path string) (string, error)
	Chmod(mode fs.FileMode, path string, recursive bool) error

	// List returns the immediate children of dir keyed by name.
	List(dir string) (map[string]EntryType, error)

	// Upload writes content to remotePath, replacing any existing file.
	Upload(remotePath string, content io.Reader) (int64, error)

	// Exec runs command with cwd as working directory (empty for the login
	// directory). A non-zero exit status is an error.
	Exec(command, cwd string) ([]string, error)

	Close() error
}
