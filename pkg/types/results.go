package types

import "time"

// ReleaseInfo describes one release directory
type ReleaseInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Current bool   `json:"current"`
}

// CurrentInfo describes what the current pointer designates
type CurrentInfo struct {
	State  string `json:"state"` // "maintenance", "release" or "invalid"
	Name   string `json:"name,omitempty"`
	Target string `json:"target,omitempty"`
}

// UploadInfo describes one placed artifact
type UploadInfo struct {
	Artifact   string `json:"artifact"`
	Shape      string `json:"shape"`
	RemotePath string `json:"remotePath"`
	Files      int    `json:"files"`
	Dirs       int    `json:"dirs"`
	Bytes      int64  `json:"bytes"`
}

// SharedInfo describes one bound shared resource
type SharedInfo struct {
	RelPath string `json:"relPath"`
	Path    string `json:"path"`
}

// SetupResult holds the result of the 'setup' command.
type SetupResult struct {
	Target   string      `json:"target"`
	BasePath string      `json:"basePath"`
	Current  CurrentInfo `json:"current"`
}

// StatusResult holds the result of the 'status' command.
type StatusResult struct {
	Target    string        `json:"target"`
	Auth      string        `json:"auth"`
	Sources   []string      `json:"sources"`
	BasePath  string        `json:"basePath"`
	Releases  []ReleaseInfo `json:"releases"`
	Current   CurrentInfo   `json:"current"`
	Timestamp time.Time     `json:"timestamp"`
}

// ReleaseResult holds the result of commands acting on one release:
// create, upload, bind, select and remove.
type ReleaseResult struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Uploads  []UploadInfo `json:"uploads,omitempty"`
	Shared   []SharedInfo `json:"shared,omitempty"`
	Selected bool         `json:"selected"`
	Removed  bool         `json:"removed"`
	Current  CurrentInfo  `json:"current"`
}

// ListReleasesResult holds the result of the 'release list' command.
type ListReleasesResult struct {
	Releases []ReleaseInfo `json:"releases"`
	Current  CurrentInfo   `json:"current"`
}

// ExecuteResult holds the output of a remote command
type ExecuteResult struct {
	Release string   `json:"release"`
	Command string   `json:"command"`
	Output  []string `json:"output"`
}

// ConfigureResult holds the result of the 'configure' command.
type ConfigureResult struct {
	Path           string `json:"path"`
	PasswordStored bool   `json:"passwordStored"`
	Template       bool   `json:"template"`
}

// TotalBytes sums the bytes of all uploads
func (r *ReleaseResult) TotalBytes() int64 {
	var total int64
	for _, u := range r.Uploads {
		total += u.Bytes
	}
	return total
}
