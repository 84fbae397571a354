package render

import (
	"bufio"
	"io"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"fuzzyhl/internal/classify"
)

var chromaTypes = map[classify.TokenCategory]chroma.TokenType{
	classify.TokenPlain:        chroma.Text,
	classify.TokenKeyword:      chroma.Keyword,
	classify.TokenType:         chroma.NameClass,
	classify.TokenIdentifier:   chroma.NameVariable,
	classify.TokenFunction:     chroma.NameFunction,
	classify.TokenMacro:        chroma.NameConstant,
	classify.TokenString:       chroma.LiteralString,
	classify.TokenNumber:       chroma.LiteralNumber,
	classify.TokenChar:         chroma.LiteralStringChar,
	classify.TokenComment:      chroma.Comment,
	classify.TokenPreprocessor: chroma.CommentPreproc,
	classify.TokenOperator:     chroma.Operator,
	classify.TokenPunctuation:  chroma.Punctuation,
}

// ChromaType maps a category to the chroma token type used for HTML.
func ChromaType(cat classify.TokenCategory) chroma.TokenType {
	if tt, ok := chromaTypes[cat]; ok {
		return tt
	}
	return chroma.Text
}

type htmlRenderer struct {
	style     *chroma.Style
	formatter *html.Formatter
}

func newHTMLRenderer(opts Options) *htmlRenderer {
	return &htmlRenderer{
		style: styles.Get(opts.Palette.Name),
		formatter: html.New(
			html.WithClasses(false),
			html.Standalone(opts.Standalone),
		),
	}
}

// Render feeds the classified spans to chroma's HTML formatter as a token
// stream, so no lexing happens on chroma's side. The formatter drops write
// errors, so output goes through a bufio.Writer that keeps the first one.
func (r *htmlRenderer) Render(w io.Writer, doc Document) error {
	tokens := make([]chroma.Token, 0, len(doc.Spans))
	for _, span := range doc.Spans {
		tokens = append(tokens, chroma.Token{
			Type:  ChromaType(span.Cat),
			Value: string(doc.Src[span.Start:span.End]),
		})
	}
	bw := bufio.NewWriter(w)
	if err := r.formatter.Format(bw, r.style, chroma.Literator(tokens...)); err != nil {
		return writeErr(doc, err)
	}
	if err := bw.Flush(); err != nil {
		return writeErr(doc, err)
	}
	return nil
}
