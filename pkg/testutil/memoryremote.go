package testutil

import (
	stderrors "errors"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/types"
)

// maxLinkHops bounds link resolution, like SYMLOOP_MAX
const maxLinkHops = 40

// ExecFunc scripts the behaviour of MemoryRemote.Exec
type ExecFunc func(command, cwd string) ([]string, error)

// ExecCall records one Exec invocation
type ExecCall struct {
	Command string
	Cwd     string
}

// MemoryRemote implements types.Remote with in-memory storage.
// Paths are POSIX and resolved against the remote's working directory.
type MemoryRemote struct {
	mu    sync.RWMutex
	nodes map[string]*memNode
	cwd   string

	// Error injection
	errorPaths map[string]error
	opErrors   map[string]error

	exec     ExecFunc
	commands []ExecCall
	closed   bool
}

// memNode represents a file, directory or link. Directory children are
// found by key prefix.
type memNode struct {
	mode     fs.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	isLink   bool
	linkDest string
}

var _ types.Remote = (*MemoryRemote)(nil)

// NewMemoryRemote creates an empty remote whose login directory is /home/deploy
func NewMemoryRemote() *MemoryRemote {
	m := &MemoryRemote{
		nodes:      map[string]*memNode{"/": {mode: 0755 | fs.ModeDir, isDir: true, modTime: time.Now()}},
		cwd:        "/home/deploy",
		errorPaths: make(map[string]error),
		opErrors:   make(map[string]error),
	}
	m.mkdirAll(m.cwd)
	return m
}

// WithError makes every operation touching path fail with err
func (m *MemoryRemote) WithError(p string, err error) *MemoryRemote {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[m.normalize(p)] = err
	return m
}

// FailOn makes only the named operation ("chmod", "delete", "upload", ...)
// fail on path
func (m *MemoryRemote) FailOn(op, p string, err error) *MemoryRemote {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opErrors[op+" "+m.normalize(p)] = err
	return m
}

// ClearError removes an injected error
func (m *MemoryRemote) ClearError(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errorPaths, m.normalize(p))
	for key := range m.opErrors {
		if strings.HasSuffix(key, " "+m.normalize(p)) {
			delete(m.opErrors, key)
		}
	}
}

// OnExec scripts Exec. Without a handler every command succeeds silently.
func (m *MemoryRemote) OnExec(fn ExecFunc) *MemoryRemote {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exec = fn
	return m
}

// Commands returns every Exec call in order
func (m *MemoryRemote) Commands() []ExecCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ExecCall(nil), m.commands...)
}

// Closed reports whether Close was called
func (m *MemoryRemote) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Cwd is the directory relative paths resolve against
func (m *MemoryRemote) Cwd() string { return m.cwd }

func (m *MemoryRemote) normalize(p string) string {
	if !path.IsAbs(p) {
		p = path.Join(m.cwd, p)
	}
	return path.Clean(p)
}

func (m *MemoryRemote) injected(op, p string) error {
	if err, ok := m.errorPaths[p]; ok {
		return errors.Remote(err, op, p)
	}
	if err, ok := m.opErrors[op+" "+p]; ok {
		return errors.Remote(err, op, p)
	}
	return nil
}

func pathErr(op, p string, err error) error {
	return errors.Remote(&fs.PathError{Op: op, Path: p, Err: err}, op, p)
}

// resolve follows links in every component of p. The last component is
// followed only when followLast is set. The returned path may not exist.
func (m *MemoryRemote) resolve(p string, followLast bool) (string, error) {
	p = m.normalize(p)
	hops := 0
	for {
		parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
		current := "/"
		restarted := false
		for i, part := range parts {
			if part == "" {
				continue
			}
			next := path.Join(current, part)
			last := i == len(parts)-1
			node, ok := m.nodes[next]
			if ok && node.isLink && (!last || followLast) {
				hops++
				if hops > maxLinkHops {
					return "", fs.ErrInvalid
				}
				dest := node.linkDest
				if !path.IsAbs(dest) {
					dest = path.Join(current, dest)
				}
				p = path.Join(append([]string{dest}, parts[i+1:]...)...)
				restarted = true
				break
			}
			current = next
		}
		if !restarted {
			return current, nil
		}
	}
}

func (m *MemoryRemote) lookup(op, p string, followLast bool) (string, *memNode, error) {
	resolved, err := m.resolve(p, followLast)
	if err != nil {
		return "", nil, pathErr(op, p, err)
	}
	if err := m.injected(op, m.normalize(p)); err != nil {
		return "", nil, err
	}
	if err := m.injected(op, resolved); err != nil {
		return "", nil, err
	}
	return resolved, m.nodes[resolved], nil
}

func (m *MemoryRemote) parentDir(op, resolved string) error {
	parent, ok := m.nodes[path.Dir(resolved)]
	if !ok {
		return pathErr(op, resolved, fs.ErrNotExist)
	}
	if !parent.isDir {
		return pathErr(op, resolved, stderrors.New("not a directory"))
	}
	return nil
}

func (m *MemoryRemote) children(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var res []string
	for key := range m.nodes {
		if key != dir && strings.HasPrefix(key, prefix) && !strings.Contains(key[len(prefix):], "/") {
			res = append(res, key)
		}
	}
	sort.Strings(res)
	return res
}

func (m *MemoryRemote) descendants(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var res []string
	for key := range m.nodes {
		if key != dir && strings.HasPrefix(key, prefix) {
			res = append(res, key)
		}
	}
	sort.Strings(res)
	return res
}

// Exists implements types.Remote
func (m *MemoryRemote) Exists(p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, node, err := m.lookup("lstat", p, false)
	return node != nil, err
}

// IsDir implements types.Remote
func (m *MemoryRemote) IsDir(p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, node, err := m.lookup("stat", p, true)
	return node != nil && node.isDir, err
}

// IsFile implements types.Remote
func (m *MemoryRemote) IsFile(p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, node, err := m.lookup("stat", p, true)
	return node != nil && !node.isDir && !node.isLink, err
}

// IsLink implements types.Remote
func (m *MemoryRemote) IsLink(p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, node, err := m.lookup("lstat", p, false)
	return node != nil && node.isLink, err
}

// Mkdir implements types.Remote
func (m *MemoryRemote) Mkdir(p string, recursive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !recursive {
		resolved, node, err := m.lookup("mkdir", p, false)
		if err != nil {
			return err
		}
		if node != nil {
			return pathErr("mkdir", p, fs.ErrExist)
		}
		if err := m.parentDir("mkdir", resolved); err != nil {
			return err
		}
		m.nodes[resolved] = &memNode{mode: 0755 | fs.ModeDir, isDir: true, modTime: time.Now()}
		return nil
	}

	resolved, node, err := m.lookup("mkdir", p, true)
	if err != nil {
		return err
	}
	if node != nil {
		if !node.isDir {
			return pathErr("mkdir", p, stderrors.New("not a directory"))
		}
		return nil
	}
	// walk up to the first existing ancestor
	var missing []string
	for dir := resolved; ; dir = path.Dir(dir) {
		if n, ok := m.nodes[dir]; ok {
			if !n.isDir {
				return pathErr("mkdir", dir, stderrors.New("not a directory"))
			}
			break
		}
		missing = append(missing, dir)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		m.nodes[missing[i]] = &memNode{mode: 0755 | fs.ModeDir, isDir: true, modTime: time.Now()}
	}
	return nil
}

// Delete implements types.Remote
func (m *MemoryRemote) Delete(p string, recursive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, node, err := m.lookup("delete", p, false)
	if err != nil {
		return err
	}
	if node == nil {
		return pathErr("delete", p, fs.ErrNotExist)
	}
	if node.isDir {
		below := m.descendants(resolved)
		if len(below) > 0 && !recursive {
			return pathErr("delete", p, stderrors.New("directory not empty"))
		}
		for _, key := range below {
			if err := m.injected("delete", key); err != nil {
				return err
			}
		}
		for _, key := range below {
			delete(m.nodes, key)
		}
	}
	delete(m.nodes, resolved)
	return nil
}

// Rename implements types.Remote
func (m *MemoryRemote) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, node, err := m.lookup("rename", oldpath, false)
	if err != nil {
		return err
	}
	if node == nil {
		return pathErr("rename", oldpath, fs.ErrNotExist)
	}
	to, existing, err := m.lookup("rename", newpath, false)
	if err != nil {
		return err
	}
	if err := m.parentDir("rename", to); err != nil {
		return err
	}
	if existing != nil && existing.isDir && len(m.descendants(to)) > 0 {
		return pathErr("rename", newpath, stderrors.New("directory not empty"))
	}
	if strings.HasPrefix(to+"/", from+"/") {
		return pathErr("rename", newpath, fs.ErrInvalid)
	}

	moved := m.descendants(from)
	m.nodes[to] = node
	delete(m.nodes, from)
	for _, key := range moved {
		m.nodes[to+strings.TrimPrefix(key, from)] = m.nodes[key]
		delete(m.nodes, key)
	}
	return nil
}

// Symlink implements types.Remote
func (m *MemoryRemote) Symlink(target, link string, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, existing, err := m.lookup("symlink", link, false)
	if err != nil {
		return err
	}
	if existing != nil {
		if !force || existing.isDir {
			return pathErr("symlink", link, fs.ErrExist)
		}
		delete(m.nodes, resolved)
	}
	if err := m.parentDir("symlink", resolved); err != nil {
		return err
	}
	m.nodes[resolved] = &memNode{mode: 0777 | fs.ModeSymlink, isLink: true, linkDest: target, modTime: time.Now()}
	return nil
}

// Readlink implements types.Remote
func (m *MemoryRemote) Readlink(p string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, node, err := m.lookup("readlink", p, false)
	if err != nil {
		return "", err
	}
	if node == nil {
		return "", pathErr("readlink", p, fs.ErrNotExist)
	}
	if !node.isLink {
		return "", pathErr("readlink", p, fs.ErrInvalid)
	}
	return node.linkDest, nil
}

// Realpath implements types.Remote
func (m *MemoryRemote) Realpath(p string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved, node, err := m.lookup("realpath", p, true)
	if err != nil {
		return "", err
	}
	if node == nil {
		return "", pathErr("realpath", p, fs.ErrNotExist)
	}
	return resolved, nil
}

// Chmod implements types.Remote
func (m *MemoryRemote) Chmod(mode fs.FileMode, p string, recursive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, node, err := m.lookup("chmod", p, true)
	if err != nil {
		return err
	}
	if node == nil {
		return pathErr("chmod", p, fs.ErrNotExist)
	}
	node.mode = node.mode.Type() | mode.Perm()
	if recursive && node.isDir {
		for _, key := range m.descendants(resolved) {
			if child := m.nodes[key]; !child.isLink {
				child.mode = child.mode.Type() | mode.Perm()
			}
		}
	}
	return nil
}

// List implements types.Remote
func (m *MemoryRemote) List(dir string) (map[string]types.EntryType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved, node, err := m.lookup("list", dir, true)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, pathErr("list", dir, fs.ErrNotExist)
	}
	if !node.isDir {
		return nil, pathErr("list", dir, stderrors.New("not a directory"))
	}
	entries := make(map[string]types.EntryType)
	for _, key := range m.children(resolved) {
		entries[path.Base(key)] = types.EntryTypeOf(m.nodes[key].mode)
	}
	return entries, nil
}

// Upload implements types.Remote
func (m *MemoryRemote) Upload(remotePath string, content io.Reader) (int64, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return 0, errors.Remote(err, "upload", remotePath)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, existing, err := m.lookup("upload", remotePath, true)
	if err != nil {
		return 0, err
	}
	if existing != nil && existing.isDir {
		return 0, pathErr("upload", remotePath, stderrors.New("is a directory"))
	}
	if err := m.parentDir("upload", resolved); err != nil {
		return 0, err
	}
	m.nodes[resolved] = &memNode{mode: 0644, content: data, modTime: time.Now()}
	return int64(len(data)), nil
}

// Exec implements types.Remote
func (m *MemoryRemote) Exec(command, cwd string) ([]string, error) {
	m.mu.Lock()
	m.commands = append(m.commands, ExecCall{Command: command, Cwd: cwd})
	handler := m.exec
	if cwd != "" {
		if err := m.injected("exec", m.normalize(cwd)); err != nil {
			m.mu.Unlock()
			return nil, err
		}
	}
	m.mu.Unlock()

	if handler == nil {
		return nil, nil
	}
	// the handler may call back into the remote
	return handler(command, cwd)
}

// Close implements types.Remote
func (m *MemoryRemote) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test setup helpers. They bypass error injection and create parents.

func (m *MemoryRemote) mkdirAll(p string) {
	p = m.normalize(p)
	for dir := p; dir != "/"; dir = path.Dir(dir) {
		if _, ok := m.nodes[dir]; ok {
			break
		}
		m.nodes[dir] = &memNode{mode: 0755 | fs.ModeDir, isDir: true, modTime: time.Now()}
	}
}

// MkdirAll creates a directory and its parents
func (m *MemoryRemote) MkdirAll(p string) *MemoryRemote {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(p)
	return m
}

// WriteFile creates a file and its parent directories
func (m *MemoryRemote) WriteFile(p, content string) *MemoryRemote {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = m.normalize(p)
	m.mkdirAll(path.Dir(p))
	m.nodes[p] = &memNode{mode: 0644, content: []byte(content), modTime: time.Now()}
	return m
}

// Link creates a symbolic link and its parent directories
func (m *MemoryRemote) Link(target, link string) *MemoryRemote {
	m.mu.Lock()
	defer m.mu.Unlock()
	link = m.normalize(link)
	m.mkdirAll(path.Dir(link))
	m.nodes[link] = &memNode{mode: 0777 | fs.ModeSymlink, isLink: true, linkDest: target, modTime: time.Now()}
	return m
}

// ReadFile returns the content of a file, following links
func (m *MemoryRemote) ReadFile(p string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resolved, err := m.resolve(p, true)
	if err != nil {
		return "", false
	}
	node, ok := m.nodes[resolved]
	if !ok || node.isDir {
		return "", false
	}
	return string(node.content), true
}

// Mode returns the permission bits of p without following a final link
func (m *MemoryRemote) Mode(p string) fs.FileMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resolved, err := m.resolve(p, false)
	if err != nil {
		return 0
	}
	if node, ok := m.nodes[resolved]; ok {
		return node.mode.Perm()
	}
	return 0
}

// Paths returns every path below root, sorted. Useful for asserting that an
// operation left no stray files behind.
func (m *MemoryRemote) Paths(root string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	root = m.normalize(root)
	var res []string
	for _, key := range m.descendants(root) {
		res = append(res, strings.TrimPrefix(key, strings.TrimSuffix(root, "/")+"/"))
	}
	return res
}
