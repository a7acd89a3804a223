package setup

import (
	"github.com/arthur-debert/deliveryman/pkg/commands/internal"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/release"
	"github.com/arthur-debert/deliveryman/pkg/types"
)

// SetupOptions defines the options for the Setup command.
type SetupOptions struct {
	Manager *release.Manager
	// Target describes the deployment target for the result
	Target string
}

// Setup prepares the base path for deployments.
func Setup(opts SetupOptions) (*types.SetupResult, error) {
	log := logging.GetLogger("commands.setup")
	log.Debug().Str("command", "Setup").Msg("Executing command")

	if err := opts.Manager.Setup(); err != nil {
		return nil, err
	}

	abs, err := opts.Manager.AbsoluteBasePath()
	if err != nil {
		return nil, err
	}
	current, err := internal.Current(opts.Manager)
	if err != nil {
		return nil, err
	}

	log.Info().Str("command", "Setup").Str("basePath", abs).Msg("Command finished")
	return &types.SetupResult{
		Target:   opts.Target,
		BasePath: abs,
		Current:  current,
	}, nil
}
