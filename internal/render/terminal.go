package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fuzzyhl/internal/classify"
)

type terminalRenderer struct {
	opts Options
}

func (r *terminalRenderer) styles(lr *lipgloss.Renderer) map[classify.TokenCategory]lipgloss.Style {
	p := r.opts.Palette
	out := make(map[classify.TokenCategory]lipgloss.Style)
	for _, cat := range classify.Categories() {
		if cat == classify.TokenPlain {
			continue
		}
		style := lr.NewStyle().Foreground(lipgloss.Color(p.Color(cat)))
		switch cat {
		case classify.TokenComment:
			style = style.Italic(true)
		case classify.TokenMacro:
			style = style.Bold(true)
		case classify.TokenOperator, classify.TokenPunctuation:
			style = style.Faint(true)
		}
		out[cat] = style
	}
	return out
}

// Render writes ANSI-styled text. Newlines, carriage returns and tabs are
// written raw so styling never changes the layout.
func (r *terminalRenderer) Render(w io.Writer, doc Document) error {
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(colorProfile(w, r.opts.Color, r.opts.Env))
	styles := r.styles(lr)

	bw := bufio.NewWriter(w)
	for _, span := range doc.Spans {
		text := string(doc.Src[span.Start:span.End])
		style, ok := styles[span.Cat]
		if !ok {
			bw.WriteString(text)
			continue
		}
		for text != "" {
			cut := strings.IndexAny(text, "\n\r\t")
			if cut < 0 {
				bw.WriteString(style.Render(text))
				break
			}
			if cut > 0 {
				bw.WriteString(style.Render(text[:cut]))
			}
			bw.WriteByte(text[cut])
			text = text[cut+1:]
		}
	}
	if err := bw.Flush(); err != nil {
		return writeErr(doc, err)
	}
	return nil
}
