package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"fuzzyhl/internal/classify"
)

// LaTeX output is a fancyvrb Verbatim environment whose command characters
// are \ { }. Each category is a \fhl<Category>{...} macro and literal
// backslashes and braces become \fhlZbs{}, \fhlZob{} and \fhlZcb{}.

const latexPrefix = "fhl"

var latexEscaper = strings.NewReplacer(
	`\`, `\`+latexPrefix+`Zbs{}`,
	`{`, `\`+latexPrefix+`Zob{}`,
	`}`, `\`+latexPrefix+`Zcb{}`,
)

type latexRenderer struct {
	opts Options
}

// LaTeXMacro returns the macro name for a category, without the backslash.
func LaTeXMacro(cat classify.TokenCategory) string {
	name := []rune(cat.String())
	name[0] = unicode.ToUpper(name[0])
	return latexPrefix + string(name)
}

// Render writes the Verbatim block. A comment line before it records the
// source size, because Verbatim content always ends with a newline.
func (r *latexRenderer) Render(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	if r.opts.Standalone {
		r.preamble(bw)
	}

	name := doc.Name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(bw, "%% fuzzyhl %s %d\n", strings.ReplaceAll(name, "\n", " "), len(doc.Src))
	bw.WriteString("\\begin{Verbatim}[commandchars=\\\\\\{\\}]\n")
	for _, span := range doc.Spans {
		text := string(doc.Src[span.Start:span.End])
		if span.Cat == classify.TokenPlain {
			bw.WriteString(latexEscaper.Replace(text))
			continue
		}
		macro := LaTeXMacro(span.Cat)
		// Verbatim is line based, so a macro argument never spans a newline.
		for text != "" {
			line, rest, found := strings.Cut(text, "\n")
			if line != "" {
				fmt.Fprintf(bw, "\\%s{%s}", macro, latexEscaper.Replace(line))
			}
			if !found {
				break
			}
			bw.WriteByte('\n')
			text = rest
		}
	}
	if len(doc.Src) == 0 || doc.Src[len(doc.Src)-1] != '\n' {
		bw.WriteByte('\n')
	}
	bw.WriteString("\\end{Verbatim}\n")

	if r.opts.Standalone {
		bw.WriteString("\\end{document}\n")
	}
	if err := bw.Flush(); err != nil {
		return writeErr(doc, err)
	}
	return nil
}

func (r *latexRenderer) preamble(bw *bufio.Writer) {
	p := r.opts.Palette
	bw.WriteString("\\documentclass{article}\n")
	bw.WriteString("\\usepackage[utf8]{inputenc}\n")
	bw.WriteString("\\usepackage{fancyvrb}\n")
	bw.WriteString("\\usepackage{xcolor}\n")
	fmt.Fprintf(bw, "\\newcommand{\\%sZbs}{\\char`\\\\}\n", latexPrefix)
	fmt.Fprintf(bw, "\\newcommand{\\%sZob}{\\char`\\{}\n", latexPrefix)
	fmt.Fprintf(bw, "\\newcommand{\\%sZcb}{\\char`\\}}\n", latexPrefix)
	for _, cat := range classify.Categories() {
		if cat == classify.TokenPlain {
			continue
		}
		body := fmt.Sprintf("\\textcolor[HTML]{%s}{#1}", hexDigits(p.Color(cat)))
		switch cat {
		case classify.TokenKeyword, classify.TokenMacro:
			body = "\\textbf{" + body + "}"
		case classify.TokenComment:
			body = "\\textit{" + body + "}"
		}
		fmt.Fprintf(bw, "\\newcommand{\\%s}[1]{%s}\n", LaTeXMacro(cat), body)
	}
	bw.WriteString("\\begin{document}\n")
}
