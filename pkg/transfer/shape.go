package transfer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/remote"
)

// Kind is the declared structure of an artifact
type Kind int

const (
	// KindFile uploads a file or directory tree as-is under its base name
	KindFile Kind = iota
	// KindDir uploads every immediate child of a directory individually
	KindDir
	// KindArchive uploads a compressed file and extracts it remotely
	KindArchive
)

// String returns the name used on the command line
func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindArchive:
		return "archive"
	default:
		return "file"
	}
}

// Shape is a Kind plus, for archives, the extension that selects the
// extraction command.
type Shape struct {
	Kind Kind
	Ext  string
}

var (
	File = Shape{Kind: KindFile}
	Dir  = Shape{Kind: KindDir}
)

// Archive returns the archive shape for localPath
func Archive(localPath string) Shape {
	return Shape{Kind: KindArchive, Ext: ArchiveExt(localPath)}
}

func (s Shape) String() string {
	if s.Kind == KindArchive && s.Ext != "" {
		return fmt.Sprintf("archive(%s)", s.Ext)
	}
	return s.Kind.String()
}

// ParseShape maps a shape name to a Shape. An empty name is a file.
func ParseShape(name, localPath string) (Shape, error) {
	switch strings.ToLower(name) {
	case "", "file":
		return File, nil
	case "dir", "directory":
		return Dir, nil
	case "archive":
		return Archive(localPath), nil
	default:
		return Shape{}, errors.Newf(errors.ErrInvalidInput, "unknown artifact shape %q, expected file, dir or archive", name).
			WithDetail("shape", name)
	}
}

// ArchiveExt returns the archive extension of p: "tar.gz" for .tar.gz files,
// otherwise whatever trails the final dot, lowercased.
func ArchiveExt(p string) string {
	base := strings.ToLower(filepath.Base(p))
	if strings.HasSuffix(base, ".tar.gz") {
		return "tar.gz"
	}
	ext := filepath.Ext(base)
	return strings.TrimPrefix(ext, ".")
}

// ExtractCommand returns the shell command that unpacks archive into dest
func ExtractCommand(ext, archive, dest string) (string, error) {
	switch strings.ToLower(ext) {
	case "tar.gz", "tgz":
		return fmt.Sprintf("tar -xf %s -C %s", remote.Quote(archive), remote.Quote(dest)), nil
	case "zip":
		return fmt.Sprintf("unzip -o %s -d %s", remote.Quote(archive), remote.Quote(dest)), nil
	default:
		return "", errors.Newf(errors.ErrUnsupportedArchiveType, "unsupported archive type %q, expected tar.gz, tgz or zip", ext).
			WithDetail("extension", ext)
	}
}
