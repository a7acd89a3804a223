// pkg/ui/ui_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test format parsing and the text and JSON renderers

package ui

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatAuto,
		"auto":     FormatAuto,
		"term":     FormatTerminal,
		"Terminal": FormatTerminal,
		"plain":    FormatText,
		"json":     FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("yaml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, FormatJSON, Resolve(FormatJSON, &bytes.Buffer{}))
	assert.Equal(t, FormatTerminal, Resolve(FormatAuto, &bytes.Buffer{}))

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, FormatText, Resolve(FormatAuto, os.Stdout))
}

func TestNewRenderer_AutoOnBufferIsTerminal(t *testing.T) {
	r, err := NewRenderer(FormatAuto, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NotNil(t, r)

	_, err = NewRenderer(Format("yaml"), &bytes.Buffer{})
	assert.Error(t, err)
}

func sampleList() *types.ListReleasesResult {
	return &types.ListReleasesResult{
		Releases: []types.ReleaseInfo{
			{Name: "v1", Path: "/srv/app/releases/v1"},
			{Name: "v2", Path: "/srv/app/releases/v2", Current: true},
		},
		Current: types.CurrentInfo{State: "release", Name: "v2", Target: "/srv/app/releases/v2"},
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRenderer(FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleList()))
	out := buf.String()
	assert.Contains(t, out, "Releases\n")
	assert.Contains(t, out, "[CURRENT] current -> v2")
	assert.Contains(t, out, "[RELEASE] v1")
	assert.Contains(t, out, "[CURRENT] v2")
	assert.NotContains(t, out, "[release]", "markup is stripped")

	buf.Reset()
	require.NoError(t, r.RenderError(errors.New(errors.ErrNotFound, "release v3 does not exist")))
	assert.Equal(t, "Error: [NOT_FOUND] release v3 does not exist\n", buf.String())
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRenderer(FormatJSON, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleList()))
	var decoded types.ListReleasesResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "v2", decoded.Current.Name)

	buf.Reset()
	require.NoError(t, r.RenderError(errors.New(errors.ErrAlreadyExists, "exists").WithDetail("release", "v1")))
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &obj))
	assert.Equal(t, "ALREADY_EXISTS", obj["code"])
	assert.Equal(t, map[string]interface{}{"release": "v1"}, obj["details"])
}

func TestTerminalRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRenderer(FormatTerminal, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleList()))
	out := buf.String()
	assert.Contains(t, out, "Releases")
	assert.Contains(t, out, "CURRENT")
	assert.NotContains(t, out, "[release]")

	buf.Reset()
	require.NoError(t, r.RenderMessage("hello [bold]world[/bold]"))
	assert.Contains(t, buf.String(), "world")
	assert.NotContains(t, buf.String(), "[bold]")
}
