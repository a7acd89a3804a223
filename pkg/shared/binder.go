// Package shared links persistent resources from the shared area into
// release directories.
//
// The first bind of a path promotes the release's own copy into the shared
// area; every later bind only creates the link.
package shared

import (
	"path"
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/rs/zerolog"
)

// Binder binds paths under root into release directories
type Binder struct {
	remote types.Remote
	root   string
	logger zerolog.Logger
}

// New creates a binder for the shared area at root
func New(remote types.Remote, root string) *Binder {
	return &Binder{
		remote: remote,
		root:   root,
		logger: logging.GetLogger("shared"),
	}
}

// CleanRelPath validates a shared resource path. It must be relative and
// stay inside the directory it is joined to.
func CleanRelPath(relPath string) (string, error) {
	if relPath == "" || path.IsAbs(relPath) {
		return "", errors.Newf(errors.ErrInvalidInput, "shared path %q must be a non-empty relative path", relPath).
			WithDetail("path", relPath)
	}
	cleaned := path.Clean(relPath)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.Newf(errors.ErrInvalidInput, "shared path %q escapes its directory", relPath).
			WithDetail("path", relPath)
	}
	return cleaned, nil
}

// Bind makes <releasePath>/<relPath> a link to <root>/<relPath> and returns
// the link path.
func (b *Binder) Bind(releasePath, relPath string, ignoreMissing bool) (string, error) {
	rel, err := CleanRelPath(relPath)
	if err != nil {
		return "", err
	}
	source := path.Join(b.root, rel)
	dest := path.Join(releasePath, rel)

	logger := b.logger.With().Str("source", source).Str("dest", dest).Logger()

	// dest reached through an already bound parent lives in the shared area
	inside, resolved, err := b.insideShared(dest)
	if err != nil {
		return "", err
	}
	if inside {
		if resolved != source {
			return "", errors.Newf(errors.ErrInvalidInput, "%s resolves to %s inside the shared area", dest, resolved).
				WithDetail("path", dest).
				WithDetail("resolved", resolved)
		}
		exists, err := b.remote.Exists(source)
		if err != nil {
			return "", err
		}
		if !exists {
			return b.missing(dest, source, ignoreMissing)
		}
		logger.Debug().Msg("Already bound through a parent link")
		return dest, nil
	}

	sourceExists, err := b.remote.Exists(source)
	if err != nil {
		return "", err
	}
	destExists, err := b.remote.Exists(dest)
	if err != nil {
		return "", err
	}

	switch {
	case sourceExists:
		if destExists {
			if err := b.remote.Delete(dest, true); err != nil {
				return "", err
			}
		}
		if err := b.remote.Mkdir(path.Dir(dest), true); err != nil {
			return "", err
		}
		logger.Debug().Msg("Linking existing shared resource")

	case destExists:
		// a leftover link has no content to promote
		isLink, err := b.remote.IsLink(dest)
		if err != nil {
			return "", err
		}
		if isLink {
			return b.missing(dest, source, ignoreMissing)
		}
		if err := b.remote.Mkdir(path.Dir(source), true); err != nil {
			return "", err
		}
		if err := b.remote.Rename(dest, source); err != nil {
			return "", err
		}
		logger.Info().Msg("Promoted release content to shared resource")

	default:
		return b.missing(dest, source, ignoreMissing)
	}

	if err := b.remote.Symlink(source, dest, false); err != nil {
		return "", err
	}
	return dest, nil
}

// insideShared reports whether the parent of dest resolves into the shared
// root, along with the path dest designates there.
func (b *Binder) insideShared(dest string) (bool, string, error) {
	dir := path.Dir(dest)
	isDir, err := b.remote.IsDir(dir)
	if err != nil || !isDir {
		return false, "", err
	}
	realDir, err := b.remote.Realpath(dir)
	if err != nil {
		return false, "", err
	}

	root := path.Clean(b.root)
	rootIsDir, err := b.remote.IsDir(root)
	if err != nil {
		return false, "", err
	}
	if rootIsDir {
		if root, err = b.remote.Realpath(root); err != nil {
			return false, "", err
		}
	}

	if realDir != root && !strings.HasPrefix(realDir, root+"/") {
		return false, "", nil
	}
	resolved := path.Join(path.Clean(b.root), strings.TrimPrefix(realDir, root), path.Base(dest))
	return true, resolved, nil
}

func (b *Binder) missing(dest, source string, ignoreMissing bool) (string, error) {
	if ignoreMissing {
		b.logger.Debug().Str("source", source).Msg("Shared resource missing, ignored")
		return dest, nil
	}
	return "", errors.Newf(errors.ErrSharedResourceMissing, "shared resource %s does not exist and the release has no copy to promote", source).
		WithDetail("path", source).
		WithDetail("release_path", dest)
}
