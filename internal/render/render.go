package render

import (
	"fmt"
	"io"
	"strings"

	"fuzzyhl/internal/classify"
)

type Format int

const (
	TerminalColor Format = iota
	HTML
	SemanticHTML
	LaTeX
)

func (f Format) String() string {
	switch f {
	case HTML:
		return "html"
	case SemanticHTML:
		return "shtml"
	case LaTeX:
		return "latex"
	default:
		return "stdout"
	}
}

func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "stdout", "terminal", "term":
		return TerminalColor, nil
	case "html":
		return HTML, nil
	case "shtml", "semantic-html":
		return SemanticHTML, nil
	case "latex", "tex":
		return LaTeX, nil
	default:
		return TerminalColor, fmt.Errorf("invalid format %q (use stdout, html, shtml or latex)", v)
	}
}

// Document is one classified input ready for rendering.
type Document struct {
	Name  string
	Src   []byte
	Spans []classify.Span
}

// Renderer writes a document in one output format. Implementations consume
// every span once, in order, and never change its category; removing the
// markup they add yields Src again.
type Renderer interface {
	Render(w io.Writer, doc Document) error
}

type Options struct {
	Palette    ThemePalette
	Color      ColorMode
	Standalone bool
	// Env is consulted for color detection; nil means no overrides.
	Env map[string]string
}

func New(f Format, opts Options) (Renderer, error) {
	if opts.Palette.Name == "" {
		opts.Palette = mustDefaultTheme()
	}
	switch f {
	case TerminalColor:
		return &terminalRenderer{opts: opts}, nil
	case HTML:
		return newHTMLRenderer(opts), nil
	case SemanticHTML:
		return &semanticHTMLRenderer{opts: opts}, nil
	case LaTeX:
		return &latexRenderer{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported format %d", int(f))
	}
}

func writeErr(doc Document, err error) error {
	if doc.Name == "" {
		return fmt.Errorf("write output: %w", err)
	}
	return fmt.Errorf("write output for %s: %w", doc.Name, err)
}
