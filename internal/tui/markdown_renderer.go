package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders markdown for terminal views and recreates the renderer when wrap width or style changes.
type markdownRenderer struct {
	style    string
	width    int
	builtFor string
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	style := strings.TrimSpace(r.style)
	if style == "" {
		style = "dark"
	}

	if r.renderer == nil || r.width != wrapWidth || r.builtFor != style {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrapWidth)}
		if style == "auto" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(style))
		}
		renderer, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
		r.builtFor = style
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
