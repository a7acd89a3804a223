// Package transfer places local artifacts into remote release directories.
package transfer

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// archivePrefix keeps uploaded archives from colliding with release content
const archivePrefix = "___"

// Result summarizes one Place call
type Result struct {
	RemotePath string
	Files      int
	Dirs       int
	Bytes      int64
	// Skipped counts symbolic links left out of directory artifacts
	Skipped int
}

func (r *Result) add(other Result) {
	r.Files += other.Files
	r.Dirs += other.Dirs
	r.Bytes += other.Bytes
	r.Skipped += other.Skipped
}

// Dispatcher uploads artifacts according to their shape
type Dispatcher struct {
	remote          types.Remote
	local           afero.Fs
	now             func() time.Time
	keepPermissions bool
	logger          zerolog.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithClock sets the clock used to name uploaded archives
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithKeepPermissions propagates local permission bits to uploaded files
// and created directories.
func WithKeepPermissions(keep bool) Option {
	return func(d *Dispatcher) { d.keepPermissions = keep }
}

// New creates a dispatcher reading artifacts from local
func New(remote types.Remote, local afero.Fs, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		remote: remote,
		local:  local,
		now:    time.Now,
		logger: logging.GetLogger("transfer"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Place uploads localPath into releasePath. The release path must exist
// remotely and the artifact locally.
func (d *Dispatcher) Place(releasePath, localPath string, shape Shape, overwrite bool) (Result, error) {
	logger := d.logger.With().
		Str("release_path", releasePath).
		Str("artifact", localPath).
		Str("shape", shape.String()).
		Logger()

	isDir, err := d.remote.IsDir(releasePath)
	if err != nil {
		return Result{}, err
	}
	if !isDir {
		return Result{}, errors.Newf(errors.ErrNotFound, "release path %s does not exist", releasePath).
			WithDetail("path", releasePath)
	}

	info, err := d.local.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, errors.Newf(errors.ErrArtifactMissing, "artifact %s does not exist", localPath).
				WithDetail("path", localPath)
		}
		return Result{}, errors.Wrapf(err, errors.ErrArtifactMissing, "unable to read artifact %s", localPath).
			WithDetail("path", localPath)
	}

	var res Result
	switch shape.Kind {
	case KindFile:
		res, err = d.placeFile(releasePath, localPath, info, overwrite)
	case KindDir:
		res, err = d.placeDirContents(releasePath, localPath, info, overwrite)
	case KindArchive:
		res, err = d.placeArchive(releasePath, localPath, info, shape)
	default:
		err = errors.Newf(errors.ErrInvalidInput, "unknown artifact shape %d", shape.Kind)
	}
	if err != nil {
		return res, err
	}

	logger.Info().
		Str("remote_path", res.RemotePath).
		Int("files", res.Files).
		Int("dirs", res.Dirs).
		Int("skipped_links", res.Skipped).
		Str("size", humanize.Bytes(uint64(res.Bytes))).
		Msg("Artifact placed")
	return res, nil
}

func (d *Dispatcher) placeFile(releasePath, localPath string, info fs.FileInfo, overwrite bool) (Result, error) {
	dest := path.Join(releasePath, filepath.Base(localPath))
	res := Result{RemotePath: dest}

	if !overwrite {
		exists, err := d.remote.Exists(dest)
		if err != nil {
			return res, err
		}
		if exists {
			return res, errors.Newf(errors.ErrAlreadyExists, "%s already exists", dest).
				WithDetail("path", dest)
		}
	}

	if !info.IsDir() {
		n, err := d.uploadFile(localPath, dest, info)
		res.Files, res.Bytes = 1, n
		return res, err
	}

	tree, err := d.uploadTree(localPath, dest)
	tree.RemotePath = dest
	return tree, err
}

func (d *Dispatcher) placeDirContents(releasePath, localPath string, info fs.FileInfo, overwrite bool) (Result, error) {
	res := Result{RemotePath: releasePath}
	if !info.IsDir() {
		return res, errors.Newf(errors.ErrInvalidInput, "artifact %s is not a directory", localPath).
			WithDetail("path", localPath)
	}

	children, err := afero.ReadDir(d.local, localPath)
	if err != nil {
		return res, errors.Wrapf(err, errors.ErrArtifactMissing, "unable to list %s", localPath).
			WithDetail("path", localPath)
	}
	for _, child := range children {
		if d.skipLink(localPath, child, &res) {
			continue
		}
		placed, err := d.Place(releasePath, filepath.Join(localPath, child.Name()), File, overwrite)
		res.add(placed)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (d *Dispatcher) placeArchive(releasePath, localPath string, info fs.FileInfo, shape Shape) (Result, error) {
	res := Result{RemotePath: releasePath}

	ext := shape.Ext
	if ext == "" {
		ext = ArchiveExt(localPath)
	}
	archive := path.Join(releasePath, fmt.Sprintf("%s%d.%s", archivePrefix, d.now().Unix(), ext))
	command, err := ExtractCommand(ext, archive, releasePath)
	if err != nil {
		return res, err
	}
	if info.IsDir() {
		return res, errors.Newf(errors.ErrInvalidInput, "archive %s is a directory", localPath).
			WithDetail("path", localPath)
	}

	n, err := d.uploadFile(localPath, archive, info)
	res.Bytes = n
	if err != nil {
		return res, err
	}

	_, execErr := d.remote.Exec(command, releasePath)
	cleanupErr := d.remote.Delete(archive, false)
	if execErr != nil {
		if cleanupErr != nil {
			d.logger.Error().Err(cleanupErr).Str("path", archive).Msg("Unable to remove uploaded archive")
		}
		return res, execErr
	}
	if cleanupErr != nil {
		return res, cleanupErr
	}

	res.Files = 1
	return res, nil
}

// uploadTree mirrors a local directory with an explicit work-list
func (d *Dispatcher) uploadTree(localRoot, remoteRoot string) (Result, error) {
	type item struct {
		local  string
		remote string
	}

	var res Result
	work := []item{{local: localRoot, remote: remoteRoot}}
	for len(work) > 0 {
		next := work[len(work)-1]
		work = work[:len(work)-1]

		info, err := d.local.Stat(next.local)
		if err != nil {
			return res, errors.Wrapf(err, errors.ErrArtifactMissing, "unable to read %s", next.local).
				WithDetail("path", next.local)
		}

		if !info.IsDir() {
			n, err := d.uploadFile(next.local, next.remote, info)
			if err != nil {
				return res, err
			}
			res.Files++
			res.Bytes += n
			continue
		}

		if err := d.remote.Mkdir(next.remote, true); err != nil {
			return res, err
		}
		if d.keepPermissions {
			if err := d.remote.Chmod(info.Mode().Perm(), next.remote, false); err != nil {
				return res, err
			}
		}
		res.Dirs++

		children, err := afero.ReadDir(d.local, next.local)
		if err != nil {
			return res, errors.Wrapf(err, errors.ErrArtifactMissing, "unable to list %s", next.local).
				WithDetail("path", next.local)
		}
		for _, child := range children {
			if d.skipLink(next.local, child, &res) {
				continue
			}
			work = append(work, item{
				local:  filepath.Join(next.local, child.Name()),
				remote: path.Join(next.remote, child.Name()),
			})
		}
	}
	return res, nil
}

// skipLink leaves out symbolic links found inside a directory artifact.
// Directory listings do not follow them, so a link loop never recurses.
func (d *Dispatcher) skipLink(dir string, child fs.FileInfo, res *Result) bool {
	if child.Mode()&fs.ModeSymlink == 0 {
		return false
	}
	d.logger.Warn().Str("path", filepath.Join(dir, child.Name())).Msg("Skipping symbolic link inside directory artifact")
	res.Skipped++
	return true
}

func (d *Dispatcher) uploadFile(localPath, remotePath string, info fs.FileInfo) (int64, error) {
	f, err := d.local.Open(localPath)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArtifactMissing, "unable to open %s", localPath).
			WithDetail("path", localPath)
	}
	defer f.Close()

	n, err := d.remote.Upload(remotePath, f)
	if err != nil {
		return n, err
	}
	d.logger.Debug().Str("path", remotePath).Str("size", humanize.Bytes(uint64(n))).Msg("Uploaded file")

	if d.keepPermissions {
		if err := d.remote.Chmod(info.Mode().Perm(), remotePath, false); err != nil {
			return n, err
		}
	}
	return n, nil
}
