package configure

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/deliveryman/pkg/config"
	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/types"
)

// ConfigureOptions defines the options for the Configure command.
type ConfigureOptions struct {
	// Profile is written out. Ignored when Template is set.
	Profile *config.Profile
	// Path of the profile file, DefaultProfileFile when empty
	Path string
	// Template writes the annotated defaults with values commented out
	Template       bool
	IncludeSecrets bool
	Overwrite      bool
	// StorePassword moves the password into the OS keyring
	StorePassword bool
}

// Configure writes a profile file, optionally storing the password in the
// OS keyring instead of the file.
func Configure(opts ConfigureOptions) (*types.ConfigureResult, error) {
	log := logging.GetLogger("commands.configure")
	log.Debug().
		Str("command", "Configure").
		Str("path", opts.Path).
		Bool("template", opts.Template).
		Msg("Executing command")

	path := opts.Path
	if path == "" {
		path = config.DefaultProfileFile
	}
	result := &types.ConfigureResult{Path: path, Template: opts.Template}

	if opts.Template {
		if err := writeTemplate(path, opts.Overwrite); err != nil {
			return nil, err
		}
		log.Info().Str("command", "Configure").Str("path", path).Msg("Command finished")
		return result, nil
	}

	if opts.Profile == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no profile to write")
	}
	profile := *opts.Profile
	if opts.StorePassword {
		if err := config.StorePassword(&profile); err != nil {
			return nil, err
		}
		profile.PasswordKeyring = true
		profile.Password = ""
		result.PasswordStored = true
	}

	if err := config.WriteProfile(&profile, path, config.WriteOptions{
		IncludeSecrets: opts.IncludeSecrets,
		Overwrite:      opts.Overwrite,
	}); err != nil {
		return nil, err
	}

	log.Info().Str("command", "Configure").Str("path", path).Bool("passwordStored", result.PasswordStored).Msg("Command finished")
	return result, nil
}

func writeTemplate(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.Newf(errors.ErrAlreadyExists, "%s already exists", path).WithDetail("path", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "unable to create %s", dir)
		}
	}
	if err := os.WriteFile(path, []byte(config.GenerateTemplate()), 0600); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "unable to write %s", path)
	}
	return nil
}
