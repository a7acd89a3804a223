package ui

import (
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format names an output format as given to --format
type Format string

const (
	FormatAuto     Format = "auto"
	FormatTerminal Format = "term"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

var formatAliases = map[string]Format{
	"":         FormatAuto,
	"auto":     FormatAuto,
	"term":     FormatTerminal,
	"terminal": FormatTerminal,
	"text":     FormatText,
	"plain":    FormatText,
	"json":     FormatJSON,
}

// ParseFormat accepts the --format names and their aliases, in any case
func ParseFormat(s string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(s)]; ok {
		return f, nil
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format %q, expected auto, term, text or json", s).
		WithDetail("format", s)
}

// Resolve replaces FormatAuto with what out can display. Styling needs a
// colour terminal and no NO_COLOR. Writers that are not files, such as
// buffers capturing command output, keep the terminal renderer.
func Resolve(f Format, out io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	file, ok := out.(*os.File)
	if !ok {
		return FormatTerminal
	}
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !isatty.IsTerminal(file.Fd()) && !isatty.IsCygwinTerminal(file.Fd()) {
		return FormatText
	}
	if termenv.NewOutput(file).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
