// Package maintenance implements the commands acting on the maintenance
// directory.
package maintenance

import (
	"github.com/arthur-debert/deliveryman/pkg/commands/internal"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/paths"
	"github.com/arthur-debert/deliveryman/pkg/release"
	"github.com/arthur-debert/deliveryman/pkg/types"
)

// CreateMaintenanceOptions defines the options for the CreateMaintenance command.
type CreateMaintenanceOptions struct {
	Manager   *release.Manager
	Artifacts []string
	Shared    []string
	// IgnoreMissing skips shared resources that do not exist yet
	IgnoreMissing bool
	// Keep leaves the previous maintenance contents in place
	Keep bool
	// Select points current at maintenance once it is filled
	Select bool
}

// CreateMaintenance fills the maintenance directory. Unless Keep is set the
// previous contents are erased first.
func CreateMaintenance(opts CreateMaintenanceOptions) (*types.ReleaseResult, error) {
	log := logging.GetLogger("commands.maintenance")
	log.Debug().
		Str("command", "CreateMaintenance").
		Strs("artifacts", opts.Artifacts).
		Bool("keep", opts.Keep).
		Msg("Executing command")

	m := opts.Manager
	artifacts, err := internal.ExpandArtifacts(m.LocalFs(), opts.Artifacts)
	if err != nil {
		return nil, err
	}

	if !opts.Keep {
		if err := m.CleanMaintenance(); err != nil {
			return nil, err
		}
	}

	p, err := m.MaintenancePath()
	if err != nil {
		return nil, err
	}
	result := &types.ReleaseResult{Name: paths.MaintenanceDir, Path: p}

	for _, a := range artifacts {
		res, err := m.UploadMaintenance(a.Path, a.Shape, true)
		if err != nil {
			return result, err
		}
		result.Uploads = append(result.Uploads, internal.UploadInfo(a, res))
	}
	for _, rel := range opts.Shared {
		dest, err := m.BindMaintenanceShared(rel, opts.IgnoreMissing)
		if err != nil {
			return result, err
		}
		result.Shared = append(result.Shared, types.SharedInfo{RelPath: rel, Path: dest})
	}

	if opts.Select {
		if err := m.SelectMaintenance(); err != nil {
			return result, err
		}
		result.Selected = true
	}
	if result.Current, err = internal.Current(m); err != nil {
		return result, err
	}

	log.Info().Str("command", "CreateMaintenance").Int("uploads", len(result.Uploads)).Msg("Command finished")
	return result, nil
}

// SelectMaintenanceOptions defines the options for the SelectMaintenance command.
type SelectMaintenanceOptions struct {
	Manager *release.Manager
}

// SelectMaintenance points current at the maintenance directory.
func SelectMaintenance(opts SelectMaintenanceOptions) (*types.ReleaseResult, error) {
	log := logging.GetLogger("commands.maintenance")
	log.Debug().Str("command", "SelectMaintenance").Msg("Executing command")

	if err := opts.Manager.SelectMaintenance(); err != nil {
		return nil, err
	}
	p, err := opts.Manager.MaintenancePath()
	if err != nil {
		return nil, err
	}
	result := &types.ReleaseResult{Name: paths.MaintenanceDir, Path: p, Selected: true}
	if result.Current, err = internal.Current(opts.Manager); err != nil {
		return result, err
	}

	log.Info().Str("command", "SelectMaintenance").Msg("Command finished")
	return result, nil
}

// CleanMaintenanceOptions defines the options for the CleanMaintenance command.
type CleanMaintenanceOptions struct {
	Manager *release.Manager
}

// CleanMaintenance empties the maintenance directory.
func CleanMaintenance(opts CleanMaintenanceOptions) (*types.ReleaseResult, error) {
	log := logging.GetLogger("commands.maintenance")
	log.Debug().Str("command", "CleanMaintenance").Msg("Executing command")

	if err := opts.Manager.CleanMaintenance(); err != nil {
		return nil, err
	}
	p, err := opts.Manager.MaintenancePath()
	if err != nil {
		return nil, err
	}
	result := &types.ReleaseResult{Name: paths.MaintenanceDir, Path: p, Removed: true}
	if result.Current, err = internal.Current(opts.Manager); err != nil {
		return result, err
	}

	log.Info().Str("command", "CleanMaintenance").Msg("Command finished")
	return result, nil
}
