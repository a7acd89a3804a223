// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test deployment layout paths and release name validation

package paths

import (
	"testing"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	l := New("/srv/app/")

	assert.Equal(t, "/srv/app", l.Base())
	assert.Equal(t, "/srv/app/releases", l.ReleasesPath())
	assert.Equal(t, "/srv/app/releases/1700000000", l.ReleasePath("1700000000"))
	assert.Equal(t, "/srv/app/shared", l.SharedPath())
	assert.Equal(t, "/srv/app/maintenance", l.MaintenancePath())
	assert.Equal(t, "/srv/app/current", l.CurrentPath())
}

func TestLayout_ResolveTarget(t *testing.T) {
	l := New("/srv/app")

	tests := map[string]string{
		"/srv/app/releases/r1":   "/srv/app/releases/r1",
		"/srv/app/releases/r1/":  "/srv/app/releases/r1",
		"releases/r1":            "/srv/app/releases/r1",
		"./maintenance":          "/srv/app/maintenance",
		"../other/releases/r1":   "/srv/other/releases/r1",
		"/srv/app//maintenance/": "/srv/app/maintenance",
	}
	for in, want := range tests {
		assert.Equal(t, want, l.ResolveTarget(in), in)
	}
}

func TestLayout_ReleaseName(t *testing.T) {
	l := New("/srv/app")

	name, ok := l.ReleaseName("/srv/app/releases/r1")
	assert.True(t, ok)
	assert.Equal(t, "r1", name)

	_, ok = l.ReleaseName("/srv/app/maintenance")
	assert.False(t, ok)
	_, ok = l.ReleaseName("/srv/app/releases/r1/sub")
	assert.False(t, ok)
	_, ok = l.ReleaseName("/srv/app/releases/.hidden")
	assert.False(t, ok)
}

func TestValidateReleaseName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"1700000000", true},
		{"v1.2.3", true},
		{"Feature-X", true},
		{"", false},
		{"a/b", false},
		{`a\b`, false},
		{".", false},
		{"..", false},
		{".hidden", false},
		{".git", false},
		{"current", false},
		{"CURRENT", false},
		{"maintenance", false},
		{"Maintenance", false},
		{"tab\tname", false},
	}
	for _, tt := range tests {
		err := ValidateReleaseName(tt.name)
		if tt.valid {
			assert.NoError(t, err, tt.name)
			continue
		}
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), tt.name)
	}
}

func TestReservedNameHelpers(t *testing.T) {
	assert.True(t, IsMaintenance("MAINTENANCE"))
	assert.False(t, IsMaintenance("maint"))
	assert.True(t, IsCurrent("Current"))
	assert.False(t, IsCurrent("currently"))
}
