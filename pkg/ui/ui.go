// Package ui renders command results and errors as styled terminal output,
// plain text or JSON.
package ui

import (
	"io"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/ui/json"
	"github.com/arthur-debert/deliveryman/pkg/ui/terminal"
	"github.com/arthur-debert/deliveryman/pkg/ui/text"
)

// Renderer writes results from pkg/types, errors and free-form messages
type Renderer interface {
	RenderResult(result interface{}) error
	RenderError(err error) error
	// RenderMessage accepts style markup; renderers without styling strip it
	RenderMessage(msg string) error
}

// NewRenderer returns the renderer for format writing to out
func NewRenderer(format Format, out io.Writer) (Renderer, error) {
	switch Resolve(format, out) {
	case FormatTerminal:
		return terminal.New(out)
	case FormatText:
		return text.New(out)
	case FormatJSON:
		return json.New(out)
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown format %q", format).
		WithDetail("format", string(format))
}
