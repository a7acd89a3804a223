// pkg/remote/local_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), sh
// PURPOSE: Test the shared Client behaviour through the local driver

package remote_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/remote"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_TypeChecks(t *testing.T) {
	root := t.TempDir()
	r := remote.NewLocal()

	dir := filepath.Join(root, "dir")
	file := filepath.Join(root, "file.txt")
	link := filepath.Join(root, "link")
	dangling := filepath.Join(root, "dangling")

	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	require.NoError(t, os.Symlink(dir, link))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), dangling))

	tests := []struct {
		name                          string
		path                          string
		exists, isDir, isFile, isLink bool
	}{
		{"directory", dir, true, true, false, false},
		{"regular file", file, true, false, true, false},
		{"link to directory", link, true, true, false, true},
		{"dangling link", dangling, true, false, false, true},
		{"missing", filepath.Join(root, "nope"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := r.Exists(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.exists, exists, "Exists")

			isDir, err := r.IsDir(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.isDir, isDir, "IsDir")

			isFile, err := r.IsFile(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.isFile, isFile, "IsFile")

			isLink, err := r.IsLink(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.isLink, isLink, "IsLink")
		})
	}
}

func TestLocal_MkdirRecursive(t *testing.T) {
	root := t.TempDir()
	r := remote.NewLocal()

	target := filepath.Join(root, "a", "b", "c")
	require.NoError(t, r.Mkdir(target, true))
	require.NoError(t, r.Mkdir(target, true), "recursive mkdir accepts existing directories")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	err = r.Mkdir(target, false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteOperation))
}

func TestLocal_MkdirRecursive_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	r := remote.NewLocal()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), []byte("x"), 0644))

	err := r.Mkdir(filepath.Join(root, "a", "b"), true)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteOperation))
}

func TestLocal_DeleteRecursive_DoesNotFollowLinks(t *testing.T) {
	root := t.TempDir()
	r := remote.NewLocal()

	outside := filepath.Join(root, "outside")
	require.NoError(t, os.MkdirAll(outside, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "keep.txt"), []byte("keep"), 0644))

	tree := filepath.Join(root, "tree")
	require.NoError(t, os.MkdirAll(filepath.Join(tree, "sub", "deeper"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tree, "sub", "deeper", "f.txt"), []byte("f"), 0644))
	require.NoError(t, os.Symlink(outside, filepath.Join(tree, "sub", "linked")))

	require.NoError(t, r.Delete(tree, true))

	_, err := os.Lstat(tree)
	assert.True(t, os.IsNotExist(err), "tree should be gone")
	content, err := os.ReadFile(filepath.Join(outside, "keep.txt"))
	require.NoError(t, err, "link target must survive")
	assert.Equal(t, "keep", string(content))
}

func TestLocal_DeleteMissing(t *testing.T) {
	r := remote.NewLocal()
	err := r.Delete(filepath.Join(t.TempDir(), "missing"), true)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteOperation))
}

func TestLocal_SymlinkForce(t *testing.T) {
	root := t.TempDir()
	r := remote.NewLocal()

	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")
	link := filepath.Join(root, "current")
	require.NoError(t, os.Mkdir(first, 0755))
	require.NoError(t, os.Mkdir(second, 0755))

	require.NoError(t, r.Symlink(first, link, false))
	assert.Error(t, r.Symlink(second, link, false), "unforced symlink over an existing link fails")

	require.NoError(t, r.Symlink(second, link, true))
	target, err := r.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, second, target)
}

func TestLocal_ListAndRealpath(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	r := remote.NewLocal()

	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file"), nil, 0644))
	require.NoError(t, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "link")))

	entries, err := r.List(root)
	require.NoError(t, err)
	assert.Equal(t, map[string]types.EntryType{
		"dir":  types.EntryDir,
		"file": types.EntryFile,
		"link": types.EntryLink,
	}, entries)

	resolved, err := r.Realpath(filepath.Join(root, "link"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dir"), resolved)
}

func TestLocal_UploadAndChmod(t *testing.T) {
	root := t.TempDir()
	r := remote.NewLocal()

	dest := filepath.Join(root, "index.html")
	n, err := r.Upload(dest, strings.NewReader("<h1>hello</h1>"))
	require.NoError(t, err)
	assert.Equal(t, int64(14), n)

	require.NoError(t, r.Chmod(0600, dest, false))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0600), info.Mode().Perm())

	require.NoError(t, os.MkdirAll(filepath.Join(root, "tree", "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "tree", "sub", "f"), nil, 0644))
	require.NoError(t, r.Chmod(0750, filepath.Join(root, "tree"), true))
	info, err = os.Stat(filepath.Join(root, "tree", "sub", "f"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0750), info.Mode().Perm())
}

func TestLocal_Rename(t *testing.T) {
	root := t.TempDir()
	r := remote.NewLocal()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), []byte("a"), 0644))
	require.NoError(t, r.Rename(filepath.Join(root, "a"), filepath.Join(root, "b")))

	exists, err := r.Exists(filepath.Join(root, "b"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocal_Exec(t *testing.T) {
	root := t.TempDir()
	r := remote.NewLocal()
	require.NoError(t, os.WriteFile(filepath.Join(root, "marker"), nil, 0644))

	t.Run("runs in working directory", func(t *testing.T) {
		lines, err := r.Exec("ls", root)
		require.NoError(t, err)
		assert.Equal(t, []string{"marker"}, lines)
	})

	t.Run("non-zero exit is an error with output", func(t *testing.T) {
		lines, err := r.Exec("echo broken; exit 3", root)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteOperation))
		assert.Contains(t, err.Error(), "broken")
		assert.Equal(t, []string{"broken"}, lines)
	})
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "''"},
		{"/srv/app", "'/srv/app'"},
		{"it's", `'it'\''s'`},
		{"a b", "'a b'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, remote.Quote(tt.in))
	}
}
