package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalHost selects the local filesystem instead of an SSH connection
const LocalHost = "local"

// Profile is the resolved connection and deployment settings
type Profile struct {
	Host     string `koanf:"host" yaml:"host" toml:"host"`
	Port     int    `koanf:"port" yaml:"port,omitempty" toml:"port,omitempty"`
	Username string `koanf:"username" yaml:"username,omitempty" toml:"username,omitempty"`

	Password         string `koanf:"password" yaml:"password,omitempty" toml:"password,omitempty"`
	PasswordKeyring  bool   `koanf:"password_keyring" yaml:"password_keyring,omitempty" toml:"password_keyring,omitempty"`
	SSHKey           string `koanf:"ssh_key" yaml:"ssh_key,omitempty" toml:"ssh_key,omitempty"`
	SSHKeyPassphrase string `koanf:"ssh_key_passphrase" yaml:"ssh_key_passphrase,omitempty" toml:"ssh_key_passphrase,omitempty"`
	KnownHosts       string `koanf:"known_hosts" yaml:"known_hosts,omitempty" toml:"known_hosts,omitempty"`

	Timeout time.Duration `koanf:"timeout" yaml:"-" toml:"-"`

	Path            string `koanf:"path" yaml:"path" toml:"path"`
	KeepPermissions bool   `koanf:"keep_permissions" yaml:"keep_permissions,omitempty" toml:"keep_permissions,omitempty"`

	// Sources lists the profile files that were merged, in order
	Sources []string `koanf:"-" yaml:"-" toml:"-"`
}

// IsLocal reports whether the profile targets this machine
func (p *Profile) IsLocal() bool {
	return strings.EqualFold(p.Host, LocalHost)
}

// Target describes the deployment target for display
func (p *Profile) Target() string {
	if p.IsLocal() {
		return fmt.Sprintf("local:%s", p.Path)
	}
	return fmt.Sprintf("%s@%s:%d:%s", p.Username, p.Host, p.Port, p.Path)
}

// KeyringUser is the keyring account the password is stored under
func (p *Profile) KeyringUser() string {
	return p.Username + "@" + p.Host
}

// AuthMethod names the credential that will be used
func (p *Profile) AuthMethod() string {
	switch {
	case p.IsLocal():
		return "none"
	case p.SSHKey != "":
		return "ssh key"
	case p.Password != "":
		return "password"
	default:
		return "ssh-agent"
	}
}

// HasInlineKey reports whether SSHKey holds the key itself rather than a path
func (p *Profile) HasInlineKey() bool {
	return strings.Contains(p.SSHKey, "-----BEGIN")
}

// KeyPath returns SSHKey as a path with a leading ~ expanded
func (p *Profile) KeyPath() string {
	return expandHome(p.SSHKey)
}

// KnownHostsPath returns KnownHosts with a leading ~ expanded
func (p *Profile) KnownHostsPath() string {
	if p.KnownHosts == "" {
		return ""
	}
	return expandHome(p.KnownHosts)
}

// PrivateKey returns the key material, reading the key file if needed
func (p *Profile) PrivateKey() ([]byte, error) {
	if p.SSHKey == "" {
		return nil, nil
	}
	if p.HasInlineKey() {
		return []byte(p.SSHKey), nil
	}
	return os.ReadFile(p.KeyPath())
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
