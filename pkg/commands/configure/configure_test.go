// pkg/commands/configure/configure_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), mock keyring
// PURPOSE: Test writing profiles and templates from the configure command

package configure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/deliveryman/pkg/config"
	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestConfigure_WritesProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deliveryman.yml")
	profile := &config.Profile{Host: "example.com", Port: 22, Username: "deploy", Path: "/srv/www"}

	result, err := Configure(ConfigureOptions{Profile: profile, Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)
	assert.False(t, result.PasswordStored)

	loaded, err := config.LoadProfile(config.LoadOptions{Files: []string{path}, SkipKeyring: true})
	require.NoError(t, err)
	assert.Equal(t, "example.com", loaded.Host)
	assert.Equal(t, "/srv/www", loaded.Path)

	_, err = Configure(ConfigureOptions{Profile: profile, Path: path})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestConfigure_StorePassword(t *testing.T) {
	keyring.MockInit()
	path := filepath.Join(t.TempDir(), "deliveryman.toml")
	profile := &config.Profile{Host: "example.com", Port: 22, Username: "deploy", Password: "s3cret", Path: "."}

	result, err := Configure(ConfigureOptions{Profile: profile, Path: path, IncludeSecrets: true, StorePassword: true})
	require.NoError(t, err)
	assert.True(t, result.PasswordStored)
	assert.Equal(t, "s3cret", profile.Password, "caller profile is left untouched")

	stored, err := keyring.Get(config.KeyringService, "deploy@example.com")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", stored)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "s3cret")

	loaded, err := config.LoadProfile(config.LoadOptions{Files: []string{path}})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", loaded.Password)
}

func TestConfigure_Template(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deliveryman.yml")

	result, err := Configure(ConfigureOptions{Template: true, Path: path})
	require.NoError(t, err)
	assert.True(t, result.Template)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			assert.True(t, strings.HasPrefix(trimmed, "#"), "line %q is commented out", line)
		}
	}

	_, err = Configure(ConfigureOptions{Template: true, Path: path})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
	_, err = Configure(ConfigureOptions{Template: true, Path: path, Overwrite: true})
	assert.NoError(t, err)
}

func TestConfigure_NoProfile(t *testing.T) {
	_, err := Configure(ConfigureOptions{Path: filepath.Join(t.TempDir(), "x.yml")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
