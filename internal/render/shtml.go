package render

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"fuzzyhl/internal/classify"
)

type semanticHTMLRenderer struct {
	opts Options
}

// Render writes <span class="category"> markup inside a single
// <pre class="fuzzyhl"><code> block. Plain text carries no markup.
func (r *semanticHTMLRenderer) Render(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	if r.opts.Standalone {
		r.header(bw, doc)
	}

	bw.WriteString(`<pre class="fuzzyhl"><code>`)
	for _, span := range doc.Spans {
		text := html.EscapeString(string(doc.Src[span.Start:span.End]))
		if span.Cat == classify.TokenPlain {
			bw.WriteString(text)
			continue
		}
		fmt.Fprintf(bw, `<span class="%s">%s</span>`, span.Cat, text)
	}
	bw.WriteString("</code></pre>\n")

	if r.opts.Standalone {
		bw.WriteString("</body>\n</html>\n")
	}
	if err := bw.Flush(); err != nil {
		return writeErr(doc, err)
	}
	return nil
}

func (r *semanticHTMLRenderer) header(bw *bufio.Writer, doc Document) {
	p := r.opts.Palette
	title := doc.Name
	if title == "" {
		title = "fuzzyhl"
	}

	bw.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(bw, "<title>%s</title>\n<style>\n", html.EscapeString(title))
	fmt.Fprintf(bw, "pre.fuzzyhl { color: %s; background-color: %s; }\n", p.Text, p.Background)
	for _, cat := range classify.Categories() {
		if cat == classify.TokenPlain {
			continue
		}
		fmt.Fprintf(bw, "pre.fuzzyhl .%s { color: %s;%s }\n", cat, p.Color(cat), cssExtra(cat))
	}
	bw.WriteString("</style>\n</head>\n<body>\n")
}

func cssExtra(cat classify.TokenCategory) string {
	switch cat {
	case classify.TokenComment:
		return " font-style: italic;"
	case classify.TokenKeyword, classify.TokenMacro:
		return " font-weight: bold;"
	}
	return ""
}
