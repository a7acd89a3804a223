package remote

import (
	stderrors "errors"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/rs/zerolog"
)

// driver is the minimal set of primitives a transport has to provide.
type driver interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.FileInfo, error)
	Mkdir(name string) error
	// Remove deletes a file, a link or an empty directory.
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Symlink(target, link string) error
	Readlink(name string) (string, error)
	Realpath(name string) (string, error)
	Chmod(name string, mode fs.FileMode) error
	Create(name string) (io.WriteCloser, error)
	Exec(command, cwd string) ([]byte, error)
	Close() error
}

// Client implements types.Remote on top of a driver
type Client struct {
	driver driver
	logger zerolog.Logger
}

var _ types.Remote = (*Client)(nil)

func newClient(d driver, component string) *Client {
	return &Client{
		driver: d,
		logger: logging.GetLogger(component),
	}
}

// trace logs one primitive call; use as `defer c.trace("op", p)()`.
func (c *Client) trace(op, p string) func() {
	start := time.Now()
	return func() {
		c.logger.Trace().
			Str("operation", op).
			Str("path", p).
			Dur("duration", time.Since(start)).
			Msg("Remote call")
	}
}

// lstat returns (nil, false, nil) for a missing path
func (c *Client) lstat(p string) (fs.FileInfo, bool, error) {
	info, err := c.driver.Lstat(p)
	if err != nil {
		if isNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Remote(err, "lstat", p)
	}
	return info, true, nil
}

func (c *Client) stat(p string) (fs.FileInfo, bool, error) {
	info, err := c.driver.Stat(p)
	if err != nil {
		if isNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Remote(err, "stat", p)
	}
	return info, true, nil
}

// Exists implements types.Remote
func (c *Client) Exists(p string) (bool, error) {
	defer c.trace("exists", p)()
	_, ok, err := c.lstat(p)
	return ok, err
}

// IsDir implements types.Remote
func (c *Client) IsDir(p string) (bool, error) {
	defer c.trace("isdir", p)()
	info, ok, err := c.stat(p)
	if err != nil || !ok {
		return false, err
	}
	return info.IsDir(), nil
}

// IsFile implements types.Remote
func (c *Client) IsFile(p string) (bool, error) {
	defer c.trace("isfile", p)()
	info, ok, err := c.stat(p)
	if err != nil || !ok {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// IsLink implements types.Remote
func (c *Client) IsLink(p string) (bool, error) {
	defer c.trace("islink", p)()
	info, ok, err := c.lstat(p)
	if err != nil || !ok {
		return false, err
	}
	return info.Mode()&fs.ModeSymlink != 0, nil
}

// Mkdir implements types.Remote. A recursive Mkdir creates every missing
// parent and accepts an existing directory.
func (c *Client) Mkdir(p string, recursive bool) error {
	defer c.trace("mkdir", p)()
	if !recursive {
		return errors.Remote(c.driver.Mkdir(p), "mkdir", p)
	}

	for _, next := range accumPaths(p) {
		info, ok, err := c.stat(next)
		if err != nil {
			return err
		}
		if ok {
			if !info.IsDir() {
				return errors.Newf(errors.ErrRemoteOperation, "mkdir %q failed: %q is not a directory", p, next).
					WithDetail("operation", "mkdir").
					WithDetail("path", next)
			}
			continue
		}
		if err := c.driver.Mkdir(next); err != nil {
			return errors.Remote(err, "mkdir", next)
		}
	}
	return nil
}

// Delete implements types.Remote. The recursive form walks the tree with an
// explicit stack, removing children before their directory. Links are
// removed, never followed.
func (c *Client) Delete(p string, recursive bool) error {
	defer c.trace("delete", p)()
	if !recursive {
		return errors.Remote(c.driver.Remove(p), "delete", p)
	}

	info, err := c.driver.Lstat(p)
	if err != nil {
		return errors.Remote(err, "delete", p)
	}

	type item struct {
		path     string
		isDir    bool
		expanded bool
	}
	stack := []item{{path: p, isDir: info.IsDir()}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.isDir && !it.expanded {
			children, err := c.driver.ReadDir(it.path)
			if err != nil {
				return errors.Remote(err, "readdir", it.path)
			}
			stack = append(stack, item{path: it.path, isDir: true, expanded: true})
			for _, child := range children {
				stack = append(stack, item{
					path:  path.Join(it.path, child.Name()),
					isDir: child.IsDir() && child.Mode()&fs.ModeSymlink == 0,
				})
			}
			continue
		}

		if err := c.driver.Remove(it.path); err != nil {
			return errors.Remote(err, "delete", it.path)
		}
	}
	return nil
}

// Rename implements types.Remote
func (c *Client) Rename(oldpath, newpath string) error {
	defer c.trace("rename", oldpath)()
	if err := c.driver.Rename(oldpath, newpath); err != nil {
		return errors.Remote(err, "rename "+newpath+" from", oldpath)
	}
	return nil
}

// Symlink implements types.Remote. The forced form is delete-if-exists then
// create; it is as atomic as the transport's symlink primitive.
func (c *Client) Symlink(target, link string, force bool) error {
	defer c.trace("symlink", link)()
	if force {
		_, ok, err := c.lstat(link)
		if err != nil {
			return err
		}
		if ok {
			if err := c.driver.Remove(link); err != nil {
				return errors.Remote(err, "unlink", link)
			}
		}
	}
	if err := c.driver.Symlink(target, link); err != nil {
		return errors.Remote(err, "symlink to "+target+" at", link)
	}
	return nil
}

// Readlink implements types.Remote
func (c *Client) Readlink(p string) (string, error) {
	defer c.trace("readlink", p)()
	target, err := c.driver.Readlink(p)
	if err != nil {
		return "", errors.Remote(err, "readlink", p)
	}
	return target, nil
}

// Realpath implements types.Remote
func (c *Client) Realpath(p string) (string, error) {
	defer c.trace("realpath", p)()
	resolved, err := c.driver.Realpath(p)
	if err != nil {
		return "", errors.Remote(err, "realpath", p)
	}
	return resolved, nil
}

// Chmod implements types.Remote. Links are skipped by the recursive form.
func (c *Client) Chmod(mode fs.FileMode, p string, recursive bool) error {
	defer c.trace("chmod", p)()
	if !recursive {
		return errors.Remote(c.driver.Chmod(p, mode), "chmod", p)
	}

	queue := []string{p}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		info, err := c.driver.Lstat(next)
		if err != nil {
			return errors.Remote(err, "chmod", next)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			continue
		}
		if err := c.driver.Chmod(next, mode); err != nil {
			return errors.Remote(err, "chmod", next)
		}
		if !info.IsDir() {
			continue
		}
		children, err := c.driver.ReadDir(next)
		if err != nil {
			return errors.Remote(err, "readdir", next)
		}
		for _, child := range children {
			queue = append(queue, path.Join(next, child.Name()))
		}
	}
	return nil
}

// List implements types.Remote
func (c *Client) List(dir string) (map[string]types.EntryType, error) {
	defer c.trace("list", dir)()
	children, err := c.driver.ReadDir(dir)
	if err != nil {
		return nil, errors.Remote(err, "list", dir)
	}
	entries := make(map[string]types.EntryType, len(children))
	for _, child := range children {
		entries[child.Name()] = types.EntryTypeOf(child.Mode())
	}
	return entries, nil
}

// Upload implements types.Remote
func (c *Client) Upload(remotePath string, content io.Reader) (int64, error) {
	defer c.trace("upload", remotePath)()
	w, err := c.driver.Create(remotePath)
	if err != nil {
		return 0, errors.Remote(err, "create", remotePath)
	}
	n, err := io.Copy(w, content)
	if err != nil {
		_ = w.Close()
		return n, errors.Remote(err, "upload", remotePath)
	}
	if err := w.Close(); err != nil {
		return n, errors.Remote(err, "upload", remotePath)
	}
	return n, nil
}

// Exec implements types.Remote. The command output is part of the error so
// a failed extraction can be diagnosed without re-running it.
func (c *Client) Exec(command, cwd string) ([]string, error) {
	defer c.trace("exec", cwd)()
	c.logger.Debug().Str("command", command).Str("cwd", cwd).Msg("Executing remote command")

	out, err := c.driver.Exec(command, cwd)
	lines := splitLines(out)
	if err != nil {
		if errors.GetErrorCode(err) != errors.ErrUnknown {
			return lines, err
		}
		return lines, errors.Wrapf(err, errors.ErrRemoteOperation, "command %q failed: %s", command, strings.Join(lines, "\n")).
			WithDetail("operation", "exec").
			WithDetail("path", cwd).
			WithDetail("command", command)
	}
	return lines, nil
}

// Close implements types.Remote
func (c *Client) Close() error {
	return c.driver.Close()
}

// accumPaths splits /a/b/c into /a, /a/b, /a/b/c (relative paths stay relative)
func accumPaths(p string) []string {
	p = path.Clean(p)
	if p == "/" || p == "." {
		return nil
	}

	prefix := ""
	if strings.HasPrefix(p, "/") {
		prefix = "/"
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	res := make([]string, 0, len(parts))
	for i := range parts {
		res = append(res, prefix+strings.Join(parts[:i+1], "/"))
	}
	return res
}

func splitLines(out []byte) []string {
	trimmed := strings.TrimRight(string(out), "\r\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist) || isStatusCode(err, sshFxNoSuchFile)
}
