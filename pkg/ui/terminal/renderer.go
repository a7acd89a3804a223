// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/style"
	"github.com/arthur-debert/deliveryman/pkg/ui/display"
)

// Renderer provides rich terminal output using badges and markup styles
type Renderer struct {
	output io.Writer
	markup *style.MarkupParser
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{
		output: w,
		markup: style.NewMarkupParser(),
	}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	doc, ok := display.Build(result)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}

	var b strings.Builder
	b.WriteString(style.SubtitleStyle.Render(doc.Title) + "\n")
	for _, line := range doc.Lines {
		text := r.markup.Render(line.Text)
		if line.Status != "" && line.Indent == 0 {
			text = style.Badge(line.Status) + " " + text
		} else if line.Status != "" {
			text = indicator(line.Status) + " " + text
		}
		b.WriteString(style.Indent(text, line.Indent+1) + "\n")
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

// indicator is the compact marker used on nested lines
func indicator(status style.Status) string {
	switch status {
	case style.StatusSuccess:
		return style.SuccessIndicator
	case style.StatusError, style.StatusInvalid:
		return style.ErrorIndicator
	case style.StatusCurrent:
		return style.CurrentIndicator
	case style.StatusMaintenance:
		return style.WarningIndicator
	default:
		return style.InfoIndicator
	}
}

// RenderError renders an error with its code and details
func (r *Renderer) RenderError(err error) error {
	var b strings.Builder
	b.WriteString(style.ErrorIndicator + " " + style.ErrorStyle.Render(err.Error()) + "\n")

	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(style.Indent(style.MutedStyle.Render(fmt.Sprintf("%s: %v", k, details[k])), 1) + "\n")
	}
	_, werr := io.WriteString(r.output, b.String())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, style.InfoIndicator+" "+r.markup.Render(msg))
	return err
}
