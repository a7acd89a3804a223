// pkg/commands/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: MemoryRemote, afero MemMapFs
// PURPOSE: Test the command layer end to end against an in-memory target

package commands_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/deliveryman/pkg/commands"
	"github.com/arthur-debert/deliveryman/pkg/config"
	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/naming"
	"github.com/arthur-debert/deliveryman/pkg/release"
	"github.com/arthur-debert/deliveryman/pkg/testutil"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "/srv/app"

func newManager(t *testing.T) (*release.Manager, *testutil.MemoryRemote, afero.Fs) {
	t.Helper()
	remote := testutil.NewMemoryRemote().MkdirAll(base)
	local := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(local, "/build/index.html", []byte("<h1>v1</h1>"), 0644))
	require.NoError(t, afero.WriteFile(local, "/build/assets/app.js", []byte("js"), 0644))
	require.NoError(t, afero.WriteFile(local, "/down/index.html", []byte("down"), 0644))

	m := release.New(remote, base,
		release.WithLocalFs(local),
		release.WithGenerator(naming.Timestamp{Now: func() time.Time { return time.Unix(1700000000, 0) }}),
	)
	_, err := commands.Setup(commands.SetupOptions{Manager: m})
	require.NoError(t, err)
	return m, remote, local
}

func TestConnect(t *testing.T) {
	remote := testutil.NewMemoryRemote().MkdirAll(base)
	profile := &config.Profile{Host: "example.com", Port: 22, Username: "deploy", Path: base, KeepPermissions: true}

	var dialed *config.Profile
	m, err := commands.Connect(commands.ConnectOptions{
		Profile: profile,
		LocalFs: afero.NewMemMapFs(),
		Dial: func(p *config.Profile) (types.Remote, error) {
			dialed = p
			return remote, nil
		},
	})
	require.NoError(t, err)
	assert.Same(t, profile, dialed)
	assert.Equal(t, base, m.BasePath())
	assert.Same(t, remote, m.Remote())
}

func TestConnect_InvalidProfile(t *testing.T) {
	called := false
	_, err := commands.Connect(commands.ConnectOptions{
		Profile: &config.Profile{Port: 22},
		Dial: func(p *config.Profile) (types.Remote, error) {
			called = true
			return nil, nil
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	assert.False(t, called, "no connection attempt with an invalid profile")

	_, err = commands.Connect(commands.ConnectOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestConnect_DialError(t *testing.T) {
	_, err := commands.Connect(commands.ConnectOptions{
		Profile: &config.Profile{Host: "example.com", Port: 22, Username: "deploy"},
		Dial: func(p *config.Profile) (types.Remote, error) {
			return nil, errors.New(errors.ErrConnectivity, "refused")
		},
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConnectivity))
}

func TestSetupAndStatus(t *testing.T) {
	m, _, _ := newManager(t)
	now := time.Unix(1700000500, 0)

	result, err := commands.Status(commands.StatusOptions{
		Manager: m,
		Profile: &config.Profile{Host: "local", Path: base, Sources: []string{"deliveryman.yml"}},
		Now:     func() time.Time { return now },
	})
	require.NoError(t, err)
	assert.Equal(t, base, result.BasePath)
	assert.Equal(t, "local:"+base, result.Target)
	assert.Equal(t, "none", result.Auth)
	assert.Equal(t, []string{"deliveryman.yml"}, result.Sources)
	assert.Empty(t, result.Releases)
	assert.Equal(t, "maintenance", result.Current.State)
	assert.Equal(t, now, result.Timestamp)
}

func TestCreateRelease_FullCycle(t *testing.T) {
	m, remote, _ := newManager(t)
	remote.WriteFile(base+"/shared/config.yml", "db: prod")

	result, err := commands.CreateRelease(commands.CreateReleaseOptions{
		Manager:   m,
		Name:      "auto",
		Artifacts: []string{"dir:/build"},
		Shared:    []string{"config.yml"},
		Select:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "1700000000", result.Name)
	assert.True(t, result.Selected)
	require.Len(t, result.Uploads, 1)
	assert.Equal(t, 2, result.Uploads[0].Files)
	assert.Equal(t, []types.SharedInfo{{RelPath: "config.yml", Path: base + "/releases/1700000000/config.yml"}}, result.Shared)
	assert.Equal(t, types.CurrentInfo{State: "release", Name: "1700000000", Target: base + "/releases/1700000000"}, result.Current)

	content, ok := remote.ReadFile(base + "/current/index.html")
	require.True(t, ok)
	assert.Equal(t, "<h1>v1</h1>", content)
	content, _ = remote.ReadFile(base + "/current/config.yml")
	assert.Equal(t, "db: prod", content)

	list, err := commands.ListReleases(commands.ListReleasesOptions{Manager: m})
	require.NoError(t, err)
	require.Len(t, list.Releases, 1)
	assert.True(t, list.Releases[0].Current)
}

func TestCreateRelease_MissingArtifactCreatesNothing(t *testing.T) {
	m, remote, _ := newManager(t)

	_, err := commands.CreateRelease(commands.CreateReleaseOptions{
		Manager:   m,
		Name:      "v1",
		Artifacts: []string{"/build/*.zip"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArtifactMissing))
	assert.Empty(t, remote.Paths(base+"/releases"))
}

func TestCreateRelease_ExistingNeedsForce(t *testing.T) {
	m, remote, _ := newManager(t)
	opts := commands.CreateReleaseOptions{Manager: m, Name: "v1", Artifacts: []string{"/build/index.html"}}

	_, err := commands.CreateRelease(opts)
	require.NoError(t, err)
	remote.WriteFile(base+"/releases/v1/stale.txt", "old")

	_, err = commands.CreateRelease(opts)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	opts.Force = true
	_, err = commands.CreateRelease(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, remote.Paths(base+"/releases/v1"))
}

func TestUploadAndBind(t *testing.T) {
	m, remote, _ := newManager(t)
	_, err := commands.CreateRelease(commands.CreateReleaseOptions{Manager: m, Name: "v1"})
	require.NoError(t, err)

	result, err := commands.Upload(commands.UploadOptions{Manager: m, Name: "v1", Artifacts: []string{"/build/index.html"}})
	require.NoError(t, err)
	assert.Equal(t, base+"/releases/v1", result.Path)

	_, err = commands.Upload(commands.UploadOptions{Manager: m, Name: "v1", Artifacts: []string{"/build/index.html"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, err = commands.Upload(commands.UploadOptions{Manager: m, Name: "maintenance", Artifacts: []string{"/down/index.html"}})
	require.NoError(t, err)
	content, _ := remote.ReadFile(base + "/maintenance/index.html")
	assert.Equal(t, "down", content)

	_, err = commands.Bind(commands.BindOptions{Manager: m, Name: "v1", Paths: []string{"uploads"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrSharedResourceMissing))

	result, err = commands.Bind(commands.BindOptions{Manager: m, Name: "maintenance", Paths: []string{"uploads"}, IgnoreMissing: true})
	require.NoError(t, err)
	assert.Len(t, result.Shared, 1)
}

func TestSelectAndRemove(t *testing.T) {
	m, remote, _ := newManager(t)
	for _, name := range []string{"v1", "v2"} {
		_, err := commands.CreateRelease(commands.CreateReleaseOptions{Manager: m, Name: name})
		require.NoError(t, err)
	}

	result, err := commands.SelectRelease(commands.SelectReleaseOptions{Manager: m, Name: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v2", result.Current.Name)

	_, err = commands.RemoveRelease(commands.RemoveReleaseOptions{Manager: m, Name: "v2"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCurrentReleaseProtected))

	result, err = commands.RemoveRelease(commands.RemoveReleaseOptions{Manager: m, Name: "v1"})
	require.NoError(t, err)
	assert.True(t, result.Removed)

	result, err = commands.RemoveRelease(commands.RemoveReleaseOptions{Manager: m, Name: "v2", Force: true})
	require.NoError(t, err)
	assert.Equal(t, "maintenance", result.Current.State)
	assert.Empty(t, remote.Paths(base+"/releases"))

	result, err = commands.RemoveRelease(commands.RemoveReleaseOptions{Manager: m, Name: "v9"})
	require.NoError(t, err)
	assert.False(t, result.Removed)
}

func TestMaintenanceCommands(t *testing.T) {
	m, remote, _ := newManager(t)
	remote.WriteFile(base+"/maintenance/old.html", "old")
	_, err := commands.CreateRelease(commands.CreateReleaseOptions{Manager: m, Name: "v1", Select: true})
	require.NoError(t, err)

	result, err := commands.CreateMaintenance(commands.CreateMaintenanceOptions{
		Manager:   m,
		Artifacts: []string{"/down/index.html"},
		Select:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, remote.Paths(base+"/maintenance"))
	assert.Equal(t, "maintenance", result.Current.State)

	_, err = commands.SelectRelease(commands.SelectReleaseOptions{Manager: m, Name: "v1"})
	require.NoError(t, err)
	result, err = commands.SelectMaintenance(commands.SelectMaintenanceOptions{Manager: m})
	require.NoError(t, err)
	assert.True(t, result.Selected)

	_, err = commands.CleanMaintenance(commands.CleanMaintenanceOptions{Manager: m})
	require.NoError(t, err)
	assert.Empty(t, remote.Paths(base+"/maintenance"))
}

func TestMaintenance_Keep(t *testing.T) {
	m, remote, _ := newManager(t)
	remote.WriteFile(base+"/maintenance/old.html", "old")

	_, err := commands.CreateMaintenance(commands.CreateMaintenanceOptions{
		Manager:   m,
		Artifacts: []string{"/down/index.html"},
		Keep:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "old.html"}, remote.Paths(base+"/maintenance"))
}

func TestExecute(t *testing.T) {
	m, remote, _ := newManager(t)
	remote.OnExec(func(command, cwd string) ([]string, error) {
		return []string{"ran " + command}, nil
	})

	_, err := commands.Execute(commands.ExecuteOptions{Manager: m, Name: "current", Command: "ls"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	_, err = commands.CreateRelease(commands.CreateReleaseOptions{Manager: m, Name: "v1", Select: true})
	require.NoError(t, err)
	result, err := commands.Execute(commands.ExecuteOptions{Manager: m, Name: "current", Command: "ls"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ran ls"}, result.Output)

	calls := remote.Commands()
	require.NotEmpty(t, calls)
	assert.Equal(t, base+"/releases/v1", calls[len(calls)-1].Cwd)
}
