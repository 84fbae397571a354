package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	sgrPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")
)

// strip removes the markup a renderer added and returns the source text.
func strip(f Format, out string) (string, error) {
	switch f {
	case TerminalColor:
		return sgrPattern.ReplaceAllString(out, ""), nil
	case HTML, SemanticHTML:
		start := strings.Index(out, "<code>")
		end := strings.LastIndex(out, "</code>")
		if start < 0 || end < start {
			return "", fmt.Errorf("no <code> block in output")
		}
		body := out[start+len("<code>") : end]
		return html.UnescapeString(tagPattern.ReplaceAllString(body, "")), nil
	case LaTeX:
		return stripLaTeX(out)
	}
	return "", fmt.Errorf("unknown format %v", f)
}

func stripLaTeX(out string) (string, error) {
	header, body, ok := strings.Cut(out, "\\begin{Verbatim}[commandchars=\\\\\\{\\}]\n")
	if !ok {
		return "", fmt.Errorf("no Verbatim block in output")
	}
	lines := strings.Split(strings.TrimRight(header, "\n"), "\n")
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 2 || fields[0] != "%" {
		return "", fmt.Errorf("missing size comment")
	}
	size, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return "", fmt.Errorf("size comment: %w", err)
	}
	body, _, ok = strings.Cut(body, "\\end{Verbatim}")
	if !ok {
		return "", fmt.Errorf("unterminated Verbatim block")
	}

	var b strings.Builder
	for i := 0; i < len(body); {
		switch body[i] {
		case '\\':
			j := i + 1
			for j < len(body) && (body[j] >= 'a' && body[j] <= 'z' || body[j] >= 'A' && body[j] <= 'Z') {
				j++
			}
			switch body[i+1 : j] {
			case "fhlZbs":
				b.WriteByte('\\')
			case "fhlZob":
				b.WriteByte('{')
			case "fhlZcb":
				b.WriteByte('}')
			default:
				// opening brace of a category macro
				i = j + 1
				continue
			}
			i = j + 2
		case '}':
			i++
		default:
			b.WriteByte(body[i])
			i++
		}
	}
	s := b.String()
	if len(s) < size {
		return "", fmt.Errorf("stripped %d bytes, want %d", len(s), size)
	}
	return s[:size], nil
}
