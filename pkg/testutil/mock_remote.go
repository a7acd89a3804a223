package testutil

import (
	"io"
	"io/fs"

	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/stretchr/testify/mock"
)

// MockRemote is a testify mock of types.Remote. Any call without a matching
// expectation fails the test, which makes it suitable for asserting that an
// operation touches nothing.
type MockRemote struct {
	mock.Mock
}

var _ types.Remote = (*MockRemote)(nil)

func (m *MockRemote) Exists(p string) (bool, error) {
	args := m.Called(p)
	return args.Bool(0), args.Error(1)
}

func (m *MockRemote) IsDir(p string) (bool, error) {
	args := m.Called(p)
	return args.Bool(0), args.Error(1)
}

func (m *MockRemote) IsFile(p string) (bool, error) {
	args := m.Called(p)
	return args.Bool(0), args.Error(1)
}

func (m *MockRemote) IsLink(p string) (bool, error) {
	args := m.Called(p)
	return args.Bool(0), args.Error(1)
}

func (m *MockRemote) Mkdir(p string, recursive bool) error {
	return m.Called(p, recursive).Error(0)
}

func (m *MockRemote) Delete(p string, recursive bool) error {
	return m.Called(p, recursive).Error(0)
}

func (m *MockRemote) Rename(oldpath, newpath string) error {
	return m.Called(oldpath, newpath).Error(0)
}

func (m *MockRemote) Symlink(target, link string, force bool) error {
	return m.Called(target, link, force).Error(0)
}

func (m *MockRemote) Readlink(p string) (string, error) {
	args := m.Called(p)
	return args.String(0), args.Error(1)
}

func (m *MockRemote) Realpath(p string) (string, error) {
	args := m.Called(p)
	return args.String(0), args.Error(1)
}

func (m *MockRemote) Chmod(mode fs.FileMode, p string, recursive bool) error {
	return m.Called(mode, p, recursive).Error(0)
}

func (m *MockRemote) List(dir string) (map[string]types.EntryType, error) {
	args := m.Called(dir)
	entries, _ := args.Get(0).(map[string]types.EntryType)
	return entries, args.Error(1)
}

func (m *MockRemote) Upload(remotePath string, content io.Reader) (int64, error) {
	args := m.Called(remotePath, content)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockRemote) Exec(command, cwd string) ([]string, error) {
	args := m.Called(command, cwd)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

func (m *MockRemote) Close() error {
	return m.Called().Error(0)
}
