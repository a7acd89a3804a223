// pkg/shared/binder_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: MemoryRemote
// PURPOSE: Test shared resource promotion and reuse

package shared

import (
	"testing"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sharedRoot = "/srv/app/shared"
	r1         = "/srv/app/releases/r1"
	r2         = "/srv/app/releases/r2"
)

func newBinder() (*Binder, *testutil.MemoryRemote) {
	remote := testutil.NewMemoryRemote().MkdirAll(sharedRoot).MkdirAll(r1).MkdirAll(r2)
	return New(remote, sharedRoot), remote
}

func TestBind_PromotionThenReuse(t *testing.T) {
	b, remote := newBinder()
	remote.WriteFile(r1+"/public/uploads/logo.png", "PNG-BYTES")

	dest, err := b.Bind(r1, "public/uploads", false)
	require.NoError(t, err)
	assert.Equal(t, r1+"/public/uploads", dest)

	content, ok := remote.ReadFile(sharedRoot + "/public/uploads/logo.png")
	require.True(t, ok, "content promoted to shared area")
	assert.Equal(t, "PNG-BYTES", content)

	target, err := remote.Readlink(r1 + "/public/uploads")
	require.NoError(t, err)
	assert.Equal(t, sharedRoot+"/public/uploads", target)

	dest, err = b.Bind(r2, "public/uploads", false)
	require.NoError(t, err)
	assert.Equal(t, r2+"/public/uploads", dest)

	target, err = remote.Readlink(r2 + "/public/uploads")
	require.NoError(t, err)
	assert.Equal(t, sharedRoot+"/public/uploads", target)

	after, _ := remote.ReadFile(sharedRoot + "/public/uploads/logo.png")
	assert.Equal(t, "PNG-BYTES", after, "shared content untouched by reuse")
	assert.Equal(t, []string{"public", "public/uploads", "public/uploads/logo.png"}, remote.Paths(sharedRoot))
}

func TestBind_ReplacesReleaseCopyWhenSharedExists(t *testing.T) {
	b, remote := newBinder()
	remote.WriteFile(sharedRoot+"/config.yml", "shared")
	remote.WriteFile(r1+"/config.yml", "bundled")

	_, err := b.Bind(r1, "config.yml", false)
	require.NoError(t, err)

	isLink, err := remote.IsLink(r1 + "/config.yml")
	require.NoError(t, err)
	assert.True(t, isLink)
	content, _ := remote.ReadFile(r1 + "/config.yml")
	assert.Equal(t, "shared", content)
}

func TestBind_RebindIsStable(t *testing.T) {
	b, remote := newBinder()
	remote.WriteFile(sharedRoot+"/logs/app.log", "line")

	for i := 0; i < 2; i++ {
		_, err := b.Bind(r1, "logs", false)
		require.NoError(t, err)
	}
	target, err := remote.Readlink(r1 + "/logs")
	require.NoError(t, err)
	assert.Equal(t, sharedRoot+"/logs", target)
	content, _ := remote.ReadFile(sharedRoot + "/logs/app.log")
	assert.Equal(t, "line", content)
}

func TestBind_Missing(t *testing.T) {
	b, remote := newBinder()

	_, err := b.Bind(r1, "var/cache", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSharedResourceMissing))

	dest, err := b.Bind(r1, "var/cache", true)
	require.NoError(t, err)
	assert.Equal(t, r1+"/var/cache", dest)
	assert.Empty(t, remote.Paths(r1))
	assert.Empty(t, remote.Paths(sharedRoot))
}

func TestBind_LeftoverLinkIsNotPromoted(t *testing.T) {
	b, remote := newBinder()
	remote.Link(sharedRoot+"/data", r1+"/data")

	_, err := b.Bind(r1, "data", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSharedResourceMissing))
	assert.Empty(t, remote.Paths(sharedRoot))
}

func TestBind_NestedPathUnderBoundParent(t *testing.T) {
	b, remote := newBinder()
	remote.WriteFile(r1+"/uploads/avatars/me.png", "ME")

	_, err := b.Bind(r1, "uploads", false)
	require.NoError(t, err)

	dest, err := b.Bind(r1, "uploads/avatars", false)
	require.NoError(t, err)
	assert.Equal(t, r1+"/uploads/avatars", dest)

	isLink, err := remote.IsLink(sharedRoot + "/uploads/avatars")
	require.NoError(t, err)
	assert.False(t, isLink, "shared content is never replaced by a link")
	content, ok := remote.ReadFile(sharedRoot + "/uploads/avatars/me.png")
	require.True(t, ok)
	assert.Equal(t, "ME", content)
}

func TestBind_NestedMissingUnderBoundParent(t *testing.T) {
	b, remote := newBinder()
	remote.WriteFile(sharedRoot+"/uploads/logo.png", "PNG")
	remote.Link(sharedRoot+"/uploads", r1+"/uploads")

	_, err := b.Bind(r1, "uploads/avatars", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSharedResourceMissing))
	assert.Equal(t, []string{"uploads", "uploads/logo.png"}, remote.Paths(sharedRoot))
}

func TestBind_ParentLinkedElsewhereInShared(t *testing.T) {
	b, remote := newBinder()
	remote.WriteFile(sharedRoot+"/media/avatars/me.png", "ME")
	remote.WriteFile(sharedRoot+"/uploads/avatars/other.png", "OTHER")
	remote.Link(sharedRoot+"/media", r1+"/uploads")

	_, err := b.Bind(r1, "uploads/avatars", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	content, ok := remote.ReadFile(sharedRoot + "/media/avatars/me.png")
	require.True(t, ok)
	assert.Equal(t, "ME", content)
}

func TestCleanRelPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"public/uploads", "public/uploads", true},
		{"public//uploads/", "public/uploads", true},
		{"./logs", "logs", true},
		{"a/../b", "b", true},
		{"", "", false},
		{".", "", false},
		{"/etc/passwd", "", false},
		{"../outside", "", false},
		{"a/../../outside", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanRelPath(tt.in)
			if !tt.ok {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
