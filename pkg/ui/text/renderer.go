// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/style"
	"github.com/arthur-debert/deliveryman/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	doc, ok := display.Build(result)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
	if _, err := fmt.Fprintln(r.output, doc.Title); err != nil {
		return err
	}
	for _, line := range doc.Lines {
		prefix := strings.Repeat("  ", line.Indent+1)
		if line.Status != "" {
			prefix += "[" + strings.TrimSpace(style.BadgeLabel(line.Status)) + "] "
		}
		if _, err := fmt.Fprintln(r.output, prefix+style.Strip(line.Text)); err != nil {
			return err
		}
	}
	return nil
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, style.Strip(msg))
	return err
}
