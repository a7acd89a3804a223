// Package release implements the release commands: create, upload, bind,
// select, remove, list and execute.
package release

import (
	"github.com/arthur-debert/deliveryman/pkg/commands/internal"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/naming"
	"github.com/arthur-debert/deliveryman/pkg/paths"
	"github.com/arthur-debert/deliveryman/pkg/release"
	"github.com/arthur-debert/deliveryman/pkg/transfer"
	"github.com/arthur-debert/deliveryman/pkg/types"
)

// CreateReleaseOptions defines the options for the CreateRelease command.
type CreateReleaseOptions struct {
	Manager *release.Manager
	// Name of the release, or "auto" for a generated name
	Name string
	// Artifacts are "[shape:]path" arguments, globs allowed
	Artifacts []string
	// Shared lists resource paths to bind after upload
	Shared        []string
	IgnoreMissing bool
	// Force replaces an existing release of the same name
	Force bool
	// Select makes the new release current
	Select bool
}

// CreateRelease creates a release, fills it and optionally selects it.
// Artifacts are resolved before anything is created remotely. A failure
// after creation leaves the partial release in place.
func CreateRelease(opts CreateReleaseOptions) (*types.ReleaseResult, error) {
	log := logging.GetLogger("commands.release")
	log.Debug().
		Str("command", "CreateRelease").
		Str("name", opts.Name).
		Strs("artifacts", opts.Artifacts).
		Strs("shared", opts.Shared).
		Bool("force", opts.Force).
		Msg("Executing command")

	m := opts.Manager
	artifacts, err := internal.ExpandArtifacts(m.LocalFs(), opts.Artifacts)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if naming.IsAuto(name) {
		if name, err = m.NewReleaseName(); err != nil {
			return nil, err
		}
		log.Info().Str("name", name).Msg("Generated release name")
	}

	if _, err := m.CreateRelease(name, opts.Force); err != nil {
		return nil, err
	}
	p, err := m.ReleasePath(name)
	if err != nil {
		return nil, err
	}
	result := &types.ReleaseResult{Name: name, Path: p}

	for _, a := range artifacts {
		res, err := m.UploadRelease(name, a.Path, a.Shape, true)
		if err != nil {
			return result, err
		}
		result.Uploads = append(result.Uploads, internal.UploadInfo(a, res))
	}

	for _, rel := range opts.Shared {
		dest, err := m.BindReleaseShared(name, rel, opts.IgnoreMissing)
		if err != nil {
			return result, err
		}
		result.Shared = append(result.Shared, types.SharedInfo{RelPath: rel, Path: dest})
	}

	if opts.Select {
		if _, err := m.SelectRelease(name); err != nil {
			return result, err
		}
		result.Selected = true
	}

	if result.Current, err = internal.Current(m); err != nil {
		return result, err
	}
	log.Info().Str("command", "CreateRelease").Str("name", name).Int("uploads", len(result.Uploads)).Msg("Command finished")
	return result, nil
}

// UploadOptions defines the options for the Upload command.
type UploadOptions struct {
	Manager   *release.Manager
	Name      string
	Artifacts []string
	Overwrite bool
}

// Upload places artifacts into an existing release, or into maintenance
// when Name is "maintenance".
func Upload(opts UploadOptions) (*types.ReleaseResult, error) {
	log := logging.GetLogger("commands.release")
	log.Debug().Str("command", "Upload").Str("name", opts.Name).Strs("artifacts", opts.Artifacts).Msg("Executing command")

	m := opts.Manager
	artifacts, err := internal.ExpandArtifacts(m.LocalFs(), opts.Artifacts)
	if err != nil {
		return nil, err
	}

	result, err := target(m, opts.Name)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		var res transfer.Result
		if paths.IsMaintenance(opts.Name) {
			res, err = m.UploadMaintenance(a.Path, a.Shape, opts.Overwrite)
		} else {
			res, err = m.UploadRelease(opts.Name, a.Path, a.Shape, opts.Overwrite)
		}
		if err != nil {
			return result, err
		}
		result.Uploads = append(result.Uploads, internal.UploadInfo(a, res))
	}

	log.Info().Str("command", "Upload").Int("uploads", len(result.Uploads)).Msg("Command finished")
	return result, nil
}

// BindOptions defines the options for the Bind command.
type BindOptions struct {
	Manager *release.Manager
	// Name of the release, or "maintenance"
	Name          string
	Paths         []string
	IgnoreMissing bool
}

// Bind links shared resources into a release or maintenance.
func Bind(opts BindOptions) (*types.ReleaseResult, error) {
	log := logging.GetLogger("commands.release")
	log.Debug().Str("command", "Bind").Str("name", opts.Name).Strs("paths", opts.Paths).Msg("Executing command")

	m := opts.Manager
	result, err := target(m, opts.Name)
	if err != nil {
		return nil, err
	}
	for _, rel := range opts.Paths {
		var dest string
		if paths.IsMaintenance(opts.Name) {
			dest, err = m.BindMaintenanceShared(rel, opts.IgnoreMissing)
		} else {
			dest, err = m.BindReleaseShared(opts.Name, rel, opts.IgnoreMissing)
		}
		if err != nil {
			return result, err
		}
		result.Shared = append(result.Shared, types.SharedInfo{RelPath: rel, Path: dest})
	}

	log.Info().Str("command", "Bind").Int("bound", len(result.Shared)).Msg("Command finished")
	return result, nil
}

// SelectOptions defines the options for the Select command.
type SelectOptions struct {
	Manager *release.Manager
	// Name of the release, or "maintenance"
	Name string
}

// Select makes a release, or maintenance, current.
func Select(opts SelectOptions) (*types.ReleaseResult, error) {
	log := logging.GetLogger("commands.release")
	log.Debug().Str("command", "Select").Str("name", opts.Name).Msg("Executing command")

	p, err := opts.Manager.SelectRelease(opts.Name)
	if err != nil {
		return nil, err
	}
	result := &types.ReleaseResult{Name: opts.Name, Path: p, Selected: true}
	if result.Current, err = internal.Current(opts.Manager); err != nil {
		return result, err
	}

	log.Info().Str("command", "Select").Str("name", opts.Name).Msg("Command finished")
	return result, nil
}

// RemoveOptions defines the options for the Remove command.
type RemoveOptions struct {
	Manager *release.Manager
	Name    string
	// Force removes the current release after selecting maintenance
	Force bool
}

// Remove deletes a release.
func Remove(opts RemoveOptions) (*types.ReleaseResult, error) {
	log := logging.GetLogger("commands.release")
	log.Debug().Str("command", "Remove").Str("name", opts.Name).Bool("force", opts.Force).Msg("Executing command")

	m := opts.Manager
	existed, err := m.HasRelease(opts.Name)
	if err != nil {
		return nil, err
	}
	if err := m.RemoveRelease(opts.Name, opts.Force); err != nil {
		return nil, err
	}
	p, err := m.ReleasePath(opts.Name)
	if err != nil {
		return nil, err
	}

	result := &types.ReleaseResult{Name: opts.Name, Path: p, Removed: existed}
	if result.Current, err = internal.Current(m); err != nil {
		return result, err
	}

	log.Info().Str("command", "Remove").Str("name", opts.Name).Bool("removed", existed).Msg("Command finished")
	return result, nil
}

// ListOptions defines the options for the List command.
type ListOptions struct {
	Manager *release.Manager
}

// List returns the releases on the target.
func List(opts ListOptions) (*types.ListReleasesResult, error) {
	log := logging.GetLogger("commands.release")
	log.Debug().Str("command", "List").Msg("Executing command")

	releases, current, err := internal.Releases(opts.Manager)
	if err != nil {
		return nil, err
	}

	log.Info().Str("command", "List").Int("releaseCount", len(releases)).Msg("Command finished")
	return &types.ListReleasesResult{Releases: releases, Current: current}, nil
}

// ExecuteOptions defines the options for the Execute command.
type ExecuteOptions struct {
	Manager *release.Manager
	// Name of the release, "current" or "maintenance"
	Name    string
	Command string
}

// Execute runs a command on the target inside a release directory.
func Execute(opts ExecuteOptions) (*types.ExecuteResult, error) {
	log := logging.GetLogger("commands.release")
	log.Debug().Str("command", "Execute").Str("name", opts.Name).Str("cmd", opts.Command).Msg("Executing command")

	out, err := opts.Manager.Execute(opts.Name, opts.Command)
	result := &types.ExecuteResult{Release: opts.Name, Command: opts.Command, Output: out}
	if err != nil {
		return result, err
	}

	log.Info().Str("command", "Execute").Int("lines", len(out)).Msg("Command finished")
	return result, nil
}

// target resolves the release or maintenance path an upload or bind acts on
func target(m *release.Manager, name string) (*types.ReleaseResult, error) {
	if paths.IsMaintenance(name) {
		p, err := m.MaintenancePath()
		if err != nil {
			return nil, err
		}
		return &types.ReleaseResult{Name: paths.MaintenanceDir, Path: p}, nil
	}
	p, err := m.ReleasePath(name)
	if err != nil {
		return nil, err
	}
	return &types.ReleaseResult{Name: name, Path: p}, nil
}
