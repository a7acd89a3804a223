// Package display turns command results into documents: a title and a
// list of status lines written in style markup. Renderers decide whether
// the markup is styled or stripped.
package display

import (
	"fmt"
	"strconv"
	"time"

	"github.com/arthur-debert/deliveryman/pkg/style"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/dustin/go-humanize"
)

// Line is one status line of a document
type Line struct {
	Status style.Status
	// Text uses style markup
	Text string
	// Indent is the nesting level below the previous line
	Indent int
}

// Document is the renderer-neutral form of a command result
type Document struct {
	Title string
	Lines []Line
}

func (d *Document) add(status style.Status, indent int, format string, args ...interface{}) {
	d.Lines = append(d.Lines, Line{Status: status, Indent: indent, Text: fmt.Sprintf(format, args...)})
}

// Build converts a command result into a document. ok is false for types
// it does not know.
func Build(result interface{}) (doc *Document, ok bool) {
	switch v := result.(type) {
	case *types.SetupResult:
		return setupDocument(v), true
	case *types.StatusResult:
		return statusDocument(v), true
	case *types.ReleaseResult:
		return releaseDocument(v), true
	case *types.ListReleasesResult:
		return listDocument(v), true
	case *types.ExecuteResult:
		return executeDocument(v), true
	case *types.ConfigureResult:
		return configureDocument(v), true
	default:
		return nil, false
	}
}

func setupDocument(r *types.SetupResult) *Document {
	d := &Document{Title: "Setup"}
	d.add(style.StatusSuccess, 0, "base path [path]%s[/path] is ready", r.BasePath)
	addCurrent(d, r.Current)
	return d
}

func statusDocument(r *types.StatusResult) *Document {
	d := &Document{Title: "Status of " + r.Target}
	d.add(style.StatusInfo, 0, "base path [path]%s[/path] (auth: %s)", r.BasePath, r.Auth)
	for _, src := range r.Sources {
		d.add(style.StatusInfo, 1, "[muted]profile %s[/muted]", src)
	}
	addCurrent(d, r.Current)
	addReleases(d, r.Releases)
	return d
}

func releaseDocument(r *types.ReleaseResult) *Document {
	d := &Document{Title: "Release " + r.Name}
	if r.Removed {
		d.add(style.StatusSuccess, 0, "removed [release]%s[/release]", r.Name)
	} else {
		d.add(style.StatusSuccess, 0, "[release]%s[/release] at [path]%s[/path]", r.Name, r.Path)
	}
	for _, u := range r.Uploads {
		d.add(style.StatusSuccess, 1, "%s %s: %d files, %d dirs, %s", u.Shape, u.Artifact, u.Files, u.Dirs, humanize.Bytes(uint64(u.Bytes)))
	}
	if len(r.Uploads) > 1 {
		d.add(style.StatusInfo, 1, "[muted]%s in total[/muted]", humanize.Bytes(uint64(r.TotalBytes())))
	}
	for _, s := range r.Shared {
		d.add(style.StatusSuccess, 1, "shared [shared]%s[/shared] -> [path]%s[/path]", s.RelPath, s.Path)
	}
	if r.Selected {
		d.add(style.StatusSuccess, 0, "selected [release]%s[/release]", r.Name)
	}
	addCurrent(d, r.Current)
	return d
}

func listDocument(r *types.ListReleasesResult) *Document {
	d := &Document{Title: "Releases"}
	addCurrent(d, r.Current)
	addReleases(d, r.Releases)
	return d
}

func executeDocument(r *types.ExecuteResult) *Document {
	d := &Document{Title: fmt.Sprintf("%s in %s", r.Command, r.Release)}
	for _, line := range r.Output {
		d.Lines = append(d.Lines, Line{Text: line})
	}
	return d
}

func configureDocument(r *types.ConfigureResult) *Document {
	d := &Document{Title: "Configure"}
	if r.Template {
		d.add(style.StatusSuccess, 0, "wrote profile template [path]%s[/path]", r.Path)
		return d
	}
	d.add(style.StatusSuccess, 0, "wrote profile [path]%s[/path]", r.Path)
	if r.PasswordStored {
		d.add(style.StatusSuccess, 1, "password stored in the OS keyring")
	}
	return d
}

func addCurrent(d *Document, c types.CurrentInfo) {
	status := style.CurrentStatus(c.State)
	switch status {
	case style.StatusCurrent:
		d.add(status, 0, "current -> [release]%s[/release]", c.Name)
	case style.StatusMaintenance:
		d.add(status, 0, "current -> [maintenance]maintenance[/maintenance]")
	default:
		if c.Target == "" {
			d.add(status, 0, "current is [error]not a link[/error]")
		} else {
			d.add(status, 0, "current -> [error]%s[/error]", c.Target)
		}
	}
}

func addReleases(d *Document, releases []types.ReleaseInfo) {
	if len(releases) == 0 {
		d.add(style.StatusInfo, 0, "[muted]no releases[/muted]")
		return
	}
	for _, r := range releases {
		status := style.StatusRelease
		if r.Current {
			status = style.StatusCurrent
		}
		text := fmt.Sprintf("[release]%s[/release]", r.Name)
		if age := releaseAge(r.Name); age != "" {
			text += fmt.Sprintf(" [muted](%s)[/muted]", age)
		}
		d.Lines = append(d.Lines, Line{Status: status, Text: text})
	}
}

// releaseAge reads generated names as unix timestamps
func releaseAge(name string) string {
	sec, err := strconv.ParseInt(name, 10, 64)
	if err != nil || sec <= 0 {
		return ""
	}
	return humanize.Time(time.Unix(sec, 0))
}
