package style

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// markupTag matches any opening or closing tag for Strip
var markupTag = regexp.MustCompile(`\[/?[a-z_]+\]`)

// MarkupParser handles parsing and rendering of markup tags such as
// "[release]v1[/release]"
type MarkupParser struct {
	styles   map[string]lipgloss.Style
	patterns map[string]*regexp.Regexp
}

// NewMarkupParser creates a new markup parser with default styles
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{
		styles:   map[string]lipgloss.Style{},
		patterns: map[string]*regexp.Regexp{},
	}
	for tag, s := range map[string]lipgloss.Style{
		"title":    TitleStyle,
		"subtitle": SubtitleStyle,
		"success":  SuccessStyle,
		"error":    ErrorStyle,
		"warning":  WarningStyle,
		"info":     InfoStyle,
		"code":     CodeStyle,
		"path":     PathStyle,
		"muted":    MutedStyle,
		"bold":     lipgloss.NewStyle().Bold(true),
		"italic":   lipgloss.NewStyle().Italic(true),

		"release":     ReleaseStyle,
		"maintenance": MaintenanceStyle,
		"shared":      SharedStyle,
	} {
		p.AddStyle(tag, s)
	}
	return p
}

// Render processes markup text and returns styled output
func (p *MarkupParser) Render(text string) string {
	result := text

	// nested tags need several passes
	for {
		oldResult := result
		for tag, pattern := range p.patterns {
			style := p.styles[tag]
			result = pattern.ReplaceAllStringFunc(result, func(match string) string {
				submatch := pattern.FindStringSubmatch(match)
				if len(submatch) != 2 {
					return match
				}
				return style.Render(submatch[1])
			})
		}
		if result == oldResult {
			return result
		}
	}
}

// AddStyle allows adding custom styles
func (p *MarkupParser) AddStyle(tag string, style lipgloss.Style) {
	p.styles[tag] = style
	p.patterns[tag] = regexp.MustCompile(`\[` + regexp.QuoteMeta(tag) + `\](.*?)\[/` + regexp.QuoteMeta(tag) + `\]`)
}

// RenderTemplate renders a template with variable substitution and markup
func (p *MarkupParser) RenderTemplate(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return p.Render(result)
}

// Global parser instance
var defaultParser = NewMarkupParser()

// Render is a convenience function using the default parser
func Render(text string) string {
	return defaultParser.Render(text)
}

// RenderTemplate is a convenience function using the default parser
func RenderTemplate(template string, vars map[string]string) string {
	return defaultParser.RenderTemplate(template, vars)
}

// Strip removes markup tags, leaving plain text
func Strip(text string) string {
	return markupTag.ReplaceAllString(text, "")
}
