package status

import (
	"time"

	"github.com/arthur-debert/deliveryman/pkg/commands/internal"
	"github.com/arthur-debert/deliveryman/pkg/config"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/release"
	"github.com/arthur-debert/deliveryman/pkg/types"
)

// StatusOptions defines the options for the Status command.
type StatusOptions struct {
	Manager *release.Manager
	Profile *config.Profile
	// Now is used for the result timestamp
	Now func() time.Time
}

// Status reports the profile in use, the releases on the target and what
// the current pointer designates.
func Status(opts StatusOptions) (*types.StatusResult, error) {
	log := logging.GetLogger("commands.status")
	log.Debug().Str("command", "Status").Msg("Executing command")

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	result := &types.StatusResult{Timestamp: now()}
	if opts.Profile != nil {
		result.Target = opts.Profile.Target()
		result.Auth = opts.Profile.AuthMethod()
		result.Sources = opts.Profile.Sources
	}

	abs, err := opts.Manager.AbsoluteBasePath()
	if err != nil {
		return nil, err
	}
	result.BasePath = abs

	releases, current, err := internal.Releases(opts.Manager)
	if err != nil {
		return nil, err
	}
	result.Releases = releases
	result.Current = current

	log.Info().Str("command", "Status").Int("releaseCount", len(releases)).Msg("Command finished")
	return result, nil
}
