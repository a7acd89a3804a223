package remote

import (
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// NewLocal returns a client operating on the local filesystem. It serves
// base paths on the deploying machine and is the real-filesystem backend in
// integration tests.
func NewLocal() *Client {
	return newClient(&localDriver{}, "remote.local")
}

// localDriver implements driver using the OS filesystem
type localDriver struct{}

func (o *localDriver) Stat(name string) (fs.FileInfo, error)  { return os.Stat(name) }
func (o *localDriver) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }
func (o *localDriver) Mkdir(name string) error                { return os.Mkdir(name, 0755) }
func (o *localDriver) Remove(name string) error               { return os.Remove(name) }
func (o *localDriver) Rename(oldpath, newpath string) error   { return os.Rename(oldpath, newpath) }
func (o *localDriver) Symlink(target, link string) error      { return os.Symlink(target, link) }
func (o *localDriver) Readlink(name string) (string, error)   { return os.Readlink(name) }
func (o *localDriver) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode)
}

func (o *localDriver) ReadDir(name string) ([]fs.FileInfo, error) {
	entries, err := os.ReadDir(name)
	if err != nil {
		return nil, err
	}
	infos := make([]fs.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (o *localDriver) Realpath(name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (o *localDriver) Create(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

func (o *localDriver) Exec(command, cwd string) ([]byte, error) {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = cwd
	return cmd.CombinedOutput()
}

func (o *localDriver) Close() error { return nil }
