// Package release implements the release state machine: the layout of a
// deployment base path, the lifecycle of release directories and the
// current pointer.
package release

import (
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/naming"
	"github.com/arthur-debert/deliveryman/pkg/paths"
	"github.com/arthur-debert/deliveryman/pkg/shared"
	"github.com/arthur-debert/deliveryman/pkg/transfer"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Manager owns one deployment base path on a remote.
// It is not safe for concurrent use, and nothing prevents two managers in
// different processes from racing on the same base path.
type Manager struct {
	remote    types.Remote
	base      string
	local     afero.Fs
	generator naming.Generator
	transfer  []transfer.Option
	logger    zerolog.Logger

	// layout is resolved from the absolute base path on first use
	layout *paths.Layout
}

// Option configures a Manager
type Option func(*Manager)

// WithLocalFs sets the filesystem artifacts are read from
func WithLocalFs(fs afero.Fs) Option {
	return func(m *Manager) { m.local = fs }
}

// WithGenerator sets the release name generator
func WithGenerator(g naming.Generator) Option {
	return func(m *Manager) { m.generator = g }
}

// WithTransferOptions configures the artifact dispatcher
func WithTransferOptions(opts ...transfer.Option) Option {
	return func(m *Manager) { m.transfer = append(m.transfer, opts...) }
}

// New creates a manager for base on remote. Nothing is read from the remote
// until the first operation.
func New(remote types.Remote, base string, opts ...Option) *Manager {
	if base == "" {
		base = "."
	}
	m := &Manager{
		remote:    remote,
		base:      base,
		local:     afero.NewOsFs(),
		generator: naming.NewTimestamp(),
		logger:    logging.GetLogger("release").With().Str("base", base).Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Remote returns the capability the manager operates on
func (m *Manager) Remote() types.Remote { return m.remote }

// LocalFs returns the filesystem artifacts are read from
func (m *Manager) LocalFs() afero.Fs { return m.local }

// BasePath returns the base path as configured
func (m *Manager) BasePath() string { return m.base }

func (m *Manager) resolve() (paths.Layout, error) {
	if m.layout != nil {
		return *m.layout, nil
	}
	abs, err := m.remote.Realpath(m.base)
	if err != nil {
		return paths.Layout{}, err
	}
	layout := paths.New(abs)
	m.layout = &layout
	m.logger.Debug().Str("absolute_base", abs).Msg("Resolved base path")
	return layout, nil
}

// AbsoluteBasePath returns the base path as resolved by the remote. The
// first successful resolution is kept for the lifetime of the manager.
func (m *Manager) AbsoluteBasePath() (string, error) {
	layout, err := m.resolve()
	if err != nil {
		return "", err
	}
	return layout.Base(), nil
}

// ReleasesPath returns the absolute releases directory
func (m *Manager) ReleasesPath() (string, error) {
	layout, err := m.resolve()
	if err != nil {
		return "", err
	}
	return layout.ReleasesPath(), nil
}

// ReleasePath returns the absolute path of release name
func (m *Manager) ReleasePath(name string) (string, error) {
	if err := paths.ValidateReleaseName(name); err != nil {
		return "", err
	}
	layout, err := m.resolve()
	if err != nil {
		return "", err
	}
	return layout.ReleasePath(name), nil
}

// SharedPath returns the absolute shared directory
func (m *Manager) SharedPath() (string, error) {
	layout, err := m.resolve()
	if err != nil {
		return "", err
	}
	return layout.SharedPath(), nil
}

// MaintenancePath returns the absolute maintenance directory
func (m *Manager) MaintenancePath() (string, error) {
	layout, err := m.resolve()
	if err != nil {
		return "", err
	}
	return layout.MaintenancePath(), nil
}

// CurrentPath returns the absolute path of the current link
func (m *Manager) CurrentPath() (string, error) {
	layout, err := m.resolve()
	if err != nil {
		return "", err
	}
	return layout.CurrentPath(), nil
}

// Setup prepares the base path. The base path itself must already exist.
// Running it again is harmless.
func (m *Manager) Setup() error {
	defer logging.LogOperationStart(m.logger, "setup")()

	isDir, err := m.remote.IsDir(m.base)
	if err != nil {
		return err
	}
	if !isDir {
		return errors.Newf(errors.ErrNotFound, "base path %s does not exist or is not a directory", m.base).
			WithDetail("path", m.base)
	}

	layout, err := m.resolve()
	if err != nil {
		return err
	}

	for _, dir := range []string{layout.ReleasesPath(), layout.SharedPath(), layout.MaintenancePath()} {
		if err := m.remote.Mkdir(dir, true); err != nil {
			return err
		}
	}

	isLink, err := m.remote.IsLink(layout.CurrentPath())
	if err != nil {
		return err
	}
	if !isLink {
		if err := m.remote.Symlink(layout.MaintenancePath(), layout.CurrentPath(), true); err != nil {
			return err
		}
		m.logger.Info().Msg("Current pointer initialized to maintenance")
	}
	return nil
}

// ListReleases returns the release names in generator order. Entries that
// are not directories and dot-entries are ignored.
func (m *Manager) ListReleases() ([]string, error) {
	layout, err := m.resolve()
	if err != nil {
		return nil, err
	}

	entries, err := m.remote.List(layout.ReleasesPath())
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for name, kind := range entries {
		if kind != types.EntryDir || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	naming.Sort(names, m.generator)
	return names, nil
}

// HasRelease reports whether release name exists
func (m *Manager) HasRelease(name string) (bool, error) {
	p, err := m.ReleasePath(name)
	if err != nil {
		return false, err
	}
	return m.remote.IsDir(p)
}

// NewReleaseName returns a generated name unused by any existing release
func (m *Manager) NewReleaseName() (string, error) {
	existing, err := m.ListReleases()
	if err != nil {
		return "", err
	}
	return m.generator.Generate(existing)
}

// CreateRelease creates an empty release directory and returns name. An
// existing release is replaced only when replace is set.
func (m *Manager) CreateRelease(name string, replace bool) (string, error) {
	p, err := m.ReleasePath(name)
	if err != nil {
		return "", err
	}
	logger := m.logger.With().Str("release", name).Logger()

	exists, err := m.remote.IsDir(p)
	if err != nil {
		return "", err
	}
	if exists {
		if !replace {
			return "", errors.Newf(errors.ErrAlreadyExists, "release %s already exists", name).
				WithDetail("release", name).
				WithDetail("path", p)
		}
		logger.Info().Msg("Replacing existing release")
		if err := m.RemoveRelease(name, true); err != nil {
			return "", err
		}
	}

	if err := m.remote.Mkdir(p, false); err != nil {
		return "", err
	}
	logger.Info().Str("path", p).Msg("Release created")
	return name, nil
}

// RemoveRelease deletes a release. Removing a missing release does nothing.
// The selected release is only removed with force, after maintenance has
// been selected in its place.
func (m *Manager) RemoveRelease(name string, force bool) error {
	p, err := m.ReleasePath(name)
	if err != nil {
		return err
	}

	exists, err := m.remote.IsDir(p)
	if err != nil {
		return err
	}
	if !exists {
		m.logger.Debug().Str("release", name).Msg("Release does not exist, nothing to remove")
		return nil
	}

	current, err := m.CurrentRelease()
	if err != nil {
		return err
	}
	if current.IsRelease(name) {
		if !force {
			return errors.Newf(errors.ErrCurrentReleaseProtected, "release %s is the current release, select another one first or force removal", name).
				WithDetail("release", name)
		}
		m.logger.Warn().Str("release", name).Msg("Removing current release, selecting maintenance")
		if err := m.SelectMaintenance(); err != nil {
			return err
		}
	}

	if err := m.remote.Delete(p, true); err != nil {
		return err
	}
	m.logger.Info().Str("release", name).Msg("Release removed")
	return nil
}

// CurrentRelease reads the current pointer. A pointer that designates
// neither maintenance nor an existing release is reported as invalid, not
// repaired.
func (m *Manager) CurrentRelease() (Current, error) {
	layout, err := m.resolve()
	if err != nil {
		return Current{}, err
	}

	isLink, err := m.remote.IsLink(layout.CurrentPath())
	if err != nil {
		return Current{}, err
	}
	if !isLink {
		return Current{State: StateInvalid}, nil
	}

	target, err := m.remote.Readlink(layout.CurrentPath())
	if err != nil {
		return Current{}, err
	}
	target = layout.ResolveTarget(target)

	if target == layout.MaintenancePath() {
		return Current{State: StateMaintenance, Target: target}, nil
	}

	if name, ok := layout.ReleaseName(target); ok && paths.ValidateReleaseName(name) == nil {
		exists, err := m.remote.IsDir(target)
		if err != nil {
			return Current{}, err
		}
		if exists {
			return Current{State: StateRelease, Name: name, Target: target}, nil
		}
	}
	return Current{State: StateInvalid, Target: target}, nil
}

// SelectRelease points current at release name, or at maintenance when name
// is "maintenance" in any case. It returns the selected path.
func (m *Manager) SelectRelease(name string) (string, error) {
	if paths.IsMaintenance(name) {
		if err := m.SelectMaintenance(); err != nil {
			return "", err
		}
		return m.MaintenancePath()
	}

	p, err := m.ReleasePath(name)
	if err != nil {
		return "", err
	}
	exists, err := m.remote.IsDir(p)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.Newf(errors.ErrNotFound, "release %s does not exist", name).
			WithDetail("release", name).
			WithDetail("path", p)
	}

	current, err := m.CurrentPath()
	if err != nil {
		return "", err
	}
	if err := m.remote.Symlink(p, current, true); err != nil {
		return "", err
	}
	m.logger.Info().Str("release", name).Msg("Release selected")
	return p, nil
}

// SelectMaintenance points current at the maintenance directory
func (m *Manager) SelectMaintenance() error {
	layout, err := m.resolve()
	if err != nil {
		return err
	}
	if err := m.remote.Symlink(layout.MaintenancePath(), layout.CurrentPath(), true); err != nil {
		return err
	}
	m.logger.Info().Msg("Maintenance selected")
	return nil
}

// CleanMaintenance empties the maintenance directory
func (m *Manager) CleanMaintenance() error {
	p, err := m.MaintenancePath()
	if err != nil {
		return err
	}
	exists, err := m.remote.Exists(p)
	if err != nil {
		return err
	}
	if exists {
		if err := m.remote.Delete(p, true); err != nil {
			return err
		}
	}
	if err := m.remote.Mkdir(p, false); err != nil {
		return err
	}
	m.logger.Info().Msg("Maintenance cleaned")
	return nil
}

func (m *Manager) dispatcher() *transfer.Dispatcher {
	return transfer.New(m.remote, m.local, m.transfer...)
}

func (m *Manager) existingRelease(name string) (string, error) {
	p, err := m.ReleasePath(name)
	if err != nil {
		return "", err
	}
	exists, err := m.remote.IsDir(p)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.Newf(errors.ErrNotFound, "release %s does not exist", name).
			WithDetail("release", name).
			WithDetail("path", p)
	}
	return p, nil
}

// UploadRelease places a local artifact into release name
func (m *Manager) UploadRelease(name, localPath string, shape transfer.Shape, overwrite bool) (transfer.Result, error) {
	p, err := m.existingRelease(name)
	if err != nil {
		return transfer.Result{}, err
	}
	return m.dispatcher().Place(p, localPath, shape, overwrite)
}

// UploadMaintenance places a local artifact into the maintenance directory
func (m *Manager) UploadMaintenance(localPath string, shape transfer.Shape, overwrite bool) (transfer.Result, error) {
	p, err := m.MaintenancePath()
	if err != nil {
		return transfer.Result{}, err
	}
	return m.dispatcher().Place(p, localPath, shape, overwrite)
}

func (m *Manager) binder() (*shared.Binder, error) {
	root, err := m.SharedPath()
	if err != nil {
		return nil, err
	}
	return shared.New(m.remote, root), nil
}

// BindReleaseShared links shared resource relPath into release name
func (m *Manager) BindReleaseShared(name, relPath string, ignoreMissing bool) (string, error) {
	if _, err := shared.CleanRelPath(relPath); err != nil {
		return "", err
	}
	p, err := m.existingRelease(name)
	if err != nil {
		return "", err
	}
	b, err := m.binder()
	if err != nil {
		return "", err
	}
	return b.Bind(p, relPath, ignoreMissing)
}

// BindMaintenanceShared links shared resource relPath into maintenance
func (m *Manager) BindMaintenanceShared(relPath string, ignoreMissing bool) (string, error) {
	if _, err := shared.CleanRelPath(relPath); err != nil {
		return "", err
	}
	p, err := m.MaintenancePath()
	if err != nil {
		return "", err
	}
	b, err := m.binder()
	if err != nil {
		return "", err
	}
	return b.Bind(p, relPath, ignoreMissing)
}

// Execute runs command inside a release directory and returns its output.
// name may be "current" for the selected release or "maintenance".
func (m *Manager) Execute(name, command string) ([]string, error) {
	var dir string
	switch {
	case paths.IsMaintenance(name):
		p, err := m.MaintenancePath()
		if err != nil {
			return nil, err
		}
		dir = p

	case paths.IsCurrent(name):
		current, err := m.CurrentRelease()
		if err != nil {
			return nil, err
		}
		if current.State != StateRelease {
			return nil, errors.Newf(errors.ErrNotFound, "no release is selected (current is %s)", current).
				WithDetail("release", name)
		}
		dir = current.Target

	default:
		p, err := m.existingRelease(name)
		if err != nil {
			return nil, err
		}
		dir = p
	}

	m.logger.Info().Str("dir", dir).Str("command", command).Msg("Executing command")
	return m.remote.Exec(command, dir)
}
