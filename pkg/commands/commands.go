// Package commands provides high-level command implementations for
// deliveryman.
//
// This package contains the command orchestration layer that coordinates
// between the CLI interface and the release manager.
//
// Each command group is implemented in its own subdirectory:
//   - setup/       - Setup command
//   - status/      - Status command
//   - release/     - release create, upload, bind, select, remove, list, exec
//   - maintenance/ - maintenance create, select, clean
//   - configure/   - Configure command
//   - internal/    - Shared artifact and display helpers
//
// This file re-exports the command functions and opens connections from
// a profile.
package commands

import (
	"github.com/arthur-debert/deliveryman/pkg/commands/configure"
	"github.com/arthur-debert/deliveryman/pkg/commands/maintenance"
	releasecmd "github.com/arthur-debert/deliveryman/pkg/commands/release"
	"github.com/arthur-debert/deliveryman/pkg/commands/setup"
	"github.com/arthur-debert/deliveryman/pkg/commands/status"
	"github.com/arthur-debert/deliveryman/pkg/config"
	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/release"
	"github.com/arthur-debert/deliveryman/pkg/remote"
	"github.com/arthur-debert/deliveryman/pkg/transfer"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/spf13/afero"
)

// Dialer opens the remote described by a profile
type Dialer func(p *config.Profile) (types.Remote, error)

// ConnectOptions defines how a profile becomes a release manager
type ConnectOptions struct {
	Profile *config.Profile
	// LocalFs is where artifacts are read from, the OS filesystem when nil
	LocalFs afero.Fs
	// Dial overrides DialProfile
	Dial Dialer
}

// DialProfile opens a local or SFTP remote for p
func DialProfile(p *config.Profile) (types.Remote, error) {
	if p.IsLocal() {
		return remote.NewLocal(), nil
	}
	key, err := p.PrivateKey()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "unable to read ssh key %s", p.SSHKey).
			WithDetail("path", p.SSHKey)
	}
	return remote.DialSFTP(remote.SFTPConfig{
		Host:           p.Host,
		Port:           p.Port,
		Username:       p.Username,
		Password:       p.Password,
		PrivateKey:     key,
		Passphrase:     p.SSHKeyPassphrase,
		KnownHostsFile: p.KnownHostsPath(),
		Timeout:        p.Timeout,
	})
}

// Connect validates the profile, opens its remote and returns a manager
// rooted at the profile path. Callers close the manager's remote.
func Connect(opts ConnectOptions) (*release.Manager, error) {
	log := logging.GetLogger("commands")
	if opts.Profile == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no profile given")
	}
	if err := config.Validate(opts.Profile); err != nil {
		return nil, err
	}

	dial := opts.Dial
	if dial == nil {
		dial = DialProfile
	}
	log.Debug().Str("profile", config.Describe(opts.Profile)).Msg("Connecting")
	r, err := dial(opts.Profile)
	if err != nil {
		return nil, err
	}

	managerOpts := []release.Option{
		release.WithTransferOptions(transfer.WithKeepPermissions(opts.Profile.KeepPermissions)),
	}
	if opts.LocalFs != nil {
		managerOpts = append(managerOpts, release.WithLocalFs(opts.LocalFs))
	}
	log.Info().Str("target", opts.Profile.Target()).Msg("Connected")
	return release.New(r, opts.Profile.Path, managerOpts...), nil
}

// Setup prepares the base path for deployments.
type SetupOptions = setup.SetupOptions

func Setup(opts SetupOptions) (*types.SetupResult, error) {
	return setup.Setup(opts)
}

// Status reports the releases on the target and the current pointer.
type StatusOptions = status.StatusOptions

func Status(opts StatusOptions) (*types.StatusResult, error) {
	return status.Status(opts)
}

// CreateRelease creates, fills and optionally selects a release.
type CreateReleaseOptions = releasecmd.CreateReleaseOptions

func CreateRelease(opts CreateReleaseOptions) (*types.ReleaseResult, error) {
	return releasecmd.CreateRelease(opts)
}

// Upload places artifacts into an existing release or maintenance.
type UploadOptions = releasecmd.UploadOptions

func Upload(opts UploadOptions) (*types.ReleaseResult, error) {
	return releasecmd.Upload(opts)
}

// Bind links shared resources into a release or maintenance.
type BindOptions = releasecmd.BindOptions

func Bind(opts BindOptions) (*types.ReleaseResult, error) {
	return releasecmd.Bind(opts)
}

// SelectRelease makes a release current.
type SelectReleaseOptions = releasecmd.SelectOptions

func SelectRelease(opts SelectReleaseOptions) (*types.ReleaseResult, error) {
	return releasecmd.Select(opts)
}

// RemoveRelease deletes a release.
type RemoveReleaseOptions = releasecmd.RemoveOptions

func RemoveRelease(opts RemoveReleaseOptions) (*types.ReleaseResult, error) {
	return releasecmd.Remove(opts)
}

// ListReleases lists the releases on the target.
type ListReleasesOptions = releasecmd.ListOptions

func ListReleases(opts ListReleasesOptions) (*types.ListReleasesResult, error) {
	return releasecmd.List(opts)
}

// Execute runs a command inside a release directory.
type ExecuteOptions = releasecmd.ExecuteOptions

func Execute(opts ExecuteOptions) (*types.ExecuteResult, error) {
	return releasecmd.Execute(opts)
}

// CreateMaintenance fills the maintenance directory.
type CreateMaintenanceOptions = maintenance.CreateMaintenanceOptions

func CreateMaintenance(opts CreateMaintenanceOptions) (*types.ReleaseResult, error) {
	return maintenance.CreateMaintenance(opts)
}

// SelectMaintenance points current at maintenance.
type SelectMaintenanceOptions = maintenance.SelectMaintenanceOptions

func SelectMaintenance(opts SelectMaintenanceOptions) (*types.ReleaseResult, error) {
	return maintenance.SelectMaintenance(opts)
}

// CleanMaintenance empties the maintenance directory.
type CleanMaintenanceOptions = maintenance.CleanMaintenanceOptions

func CleanMaintenance(opts CleanMaintenanceOptions) (*types.ReleaseResult, error) {
	return maintenance.CleanMaintenance(opts)
}

// Configure writes a profile file.
type ConfigureOptions = configure.ConfigureOptions

func Configure(opts ConfigureOptions) (*types.ConfigureResult, error) {
	return configure.Configure(opts)
}
