package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/zalando/go-keyring"
)

// Environment and file names
const (
	// EnvPrefix prefixes every environment override, e.g. DELIVERYMAN_HOST
	EnvPrefix = "DELIVERYMAN_"

	// DefaultProfileFile is loaded from the working directory when no
	// profile is given explicitly
	DefaultProfileFile = "deliveryman.yml"

	// KeyringService is the OS keyring service holding passwords
	KeyringService = "deliveryman"
)

// LoadOptions selects the sources of a profile
type LoadOptions struct {
	// Files are merged in order. When empty, DefaultProfileFile is used if
	// it exists.
	Files []string
	// Flags hold command line overrides keyed by profile key. Only flags
	// the user actually set belong here.
	Flags map[string]interface{}
	// SkipKeyring disables the keyring lookup
	SkipKeyring bool
}

// LoadProfile merges defaults, profile files, environment and flags into a
// Profile. The result is not validated.
func LoadProfile(opts LoadOptions) (*Profile, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultProfile}, koanfyaml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Profile files
	files := opts.Files
	if len(files) == 0 {
		if _, err := os.Stat(DefaultProfileFile); err == nil {
			files = []string{DefaultProfileFile}
		}
	}
	for _, f := range files {
		parser, err := parserFor(f)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(f); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "profile %s not found", f).
				WithDetail("path", f)
		}
		if err := k.Load(file.Provider(f), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load profile from %s", f).
				WithDetail("path", f)
		}
		logger.Debug().Str("path", f).Msg("Loaded profile file")
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Flags
	if len(opts.Flags) > 0 {
		if err := k.Load(confmap.Provider(opts.Flags, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flags")
		}
	}

	// 5. Unmarshal
	var p Profile
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &p,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &p, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to decode profile")
	}
	p.Sources = files

	// 6. Post-process
	if err := postProcessProfile(&p, opts); err != nil {
		return nil, err
	}
	return &p, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return koanfyaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported profile format %q, expected .yml, .yaml or .toml", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

func postProcessProfile(p *Profile, opts LoadOptions) error {
	if p.Path == "" {
		p.Path = "."
	}
	if p.Port == 0 {
		p.Port = 22
	}

	if p.PasswordKeyring && p.Password == "" && !opts.SkipKeyring && !p.IsLocal() {
		password, err := keyring.Get(KeyringService, p.KeyringUser())
		if err != nil {
			return errors.Wrapf(err, errors.ErrConfigLoad, "unable to read password for %s from keyring", p.KeyringUser()).
				WithDetail("keyring_user", p.KeyringUser())
		}
		p.Password = password
	}
	return nil
}

// Validate checks that the profile can open a connection
func Validate(p *Profile) error {
	if p.IsLocal() {
		return nil
	}
	var missing []string
	if p.Host == "" {
		missing = append(missing, "host")
	}
	if p.Username == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return errors.Newf(errors.ErrConfigValid, "missing required profile values: %s", strings.Join(missing, ", ")).
			WithDetail("missing", missing)
	}
	if p.Port < 1 || p.Port > 65535 {
		return errors.Newf(errors.ErrConfigValid, "invalid port %d", p.Port).
			WithDetail("port", p.Port)
	}
	if p.SSHKey != "" && !p.HasInlineKey() {
		if _, err := os.Stat(p.KeyPath()); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "ssh key %s is not readable", p.SSHKey).
				WithDetail("path", p.SSHKey)
		}
	}
	if p.KnownHosts != "" {
		if _, err := os.Stat(p.KnownHostsPath()); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "known_hosts file %s is not readable", p.KnownHosts).
				WithDetail("path", p.KnownHosts)
		}
	}
	return nil
}

// StorePassword saves the profile password in the OS keyring
func StorePassword(p *Profile) error {
	if p.Password == "" {
		return errors.New(errors.ErrInvalidInput, "no password to store")
	}
	if err := keyring.Set(KeyringService, p.KeyringUser(), p.Password); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "unable to store password for %s in keyring", p.KeyringUser())
	}
	return nil
}

// Describe returns a one-line summary of the profile for logs
func Describe(p *Profile) string {
	return fmt.Sprintf("%s (auth: %s)", p.Target(), p.AuthMethod())
}
