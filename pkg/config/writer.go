package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// WriteOptions controls how a profile is saved
type WriteOptions struct {
	// IncludeSecrets keeps password and key passphrase in the file
	IncludeSecrets bool
	// Overwrite replaces an existing file
	Overwrite bool
}

// MarshalProfile encodes p as YAML or TOML depending on the extension of
// path. Secrets are dropped unless requested, and a keyring-backed password
// is never written.
func MarshalProfile(p *Profile, path string, includeSecrets bool) ([]byte, error) {
	out := *p
	out.Sources = nil
	if !includeSecrets || out.PasswordKeyring {
		out.Password = ""
	}
	if !includeSecrets {
		out.SSHKeyPassphrase = ""
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		data, err := yaml.Marshal(&out)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode profile as yaml")
		}
		return data, nil
	case ".toml":
		data, err := toml.Marshal(&out)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode profile as toml")
		}
		return data, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unsupported profile format %q, expected .yml, .yaml or .toml", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

// WriteProfile saves p to path. The file is only readable by its owner
// since it may hold credentials.
func WriteProfile(p *Profile, path string, opts WriteOptions) error {
	data, err := MarshalProfile(p, path, opts.IncludeSecrets)
	if err != nil {
		return err
	}

	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Newf(errors.ErrAlreadyExists, "profile %s already exists", path).
				WithDetail("path", path)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to write profile %s", path).
			WithDetail("path", path)
	}
	return nil
}

// GenerateTemplate returns the annotated defaults with every value
// commented out, as a starting point for a new profile
func GenerateTemplate() string {
	return commentOutConfigValues(GetDefaultsContent())
}

// commentOutConfigValues comments out all non-comment, non-blank lines
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Keep blank lines and comments as-is
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
