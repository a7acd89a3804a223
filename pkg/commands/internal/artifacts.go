// Package internal holds helpers shared by the command implementations.
package internal

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/transfer"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/spf13/afero"
)

// Artifact is a local path with its declared shape
type Artifact struct {
	Path  string
	Shape transfer.Shape
}

// ParseArtifact reads a "[shape:]path" argument. Without a known shape
// prefix the whole argument is a path of shape file.
func ParseArtifact(arg string) (string, string) {
	if i := strings.Index(arg, ":"); i > 0 {
		switch strings.ToLower(arg[:i]) {
		case "file", "dir", "directory", "archive":
			return arg[:i], arg[i+1:]
		}
	}
	return "", arg
}

// ExpandArtifacts parses every argument and expands glob patterns. A
// pattern matching nothing, or a plain path that does not exist, is an
// error.
func ExpandArtifacts(fs afero.Fs, args []string) ([]Artifact, error) {
	var artifacts []Artifact
	for _, arg := range args {
		shapeName, pattern := ParseArtifact(arg)
		if pattern == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "artifact %q has no path", arg)
		}

		matches := []string{pattern}
		if !hasMeta(pattern) {
			if _, err := fs.Stat(pattern); err != nil {
				return nil, errors.Wrapf(err, errors.ErrArtifactMissing, "artifact %s does not exist", pattern).
					WithDetail("path", pattern)
			}
		} else {
			found, err := afero.Glob(fs, pattern)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid artifact pattern %q", pattern)
			}
			if len(found) == 0 {
				return nil, errors.Newf(errors.ErrArtifactMissing, "no artifact matches %q", pattern).
					WithDetail("path", pattern)
			}
			sort.Strings(found)
			matches = found
		}

		for _, m := range matches {
			shape, err := transfer.ParseShape(shapeName, m)
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, Artifact{Path: filepath.Clean(m), Shape: shape})
		}
	}
	return artifacts, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, `*?[`)
}

// UploadInfo converts a placement result for display
func UploadInfo(a Artifact, res transfer.Result) types.UploadInfo {
	return types.UploadInfo{
		Artifact:   a.Path,
		Shape:      a.Shape.String(),
		RemotePath: res.RemotePath,
		Files:      res.Files,
		Dirs:       res.Dirs,
		Bytes:      res.Bytes,
	}
}
