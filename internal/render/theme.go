package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"fuzzyhl/internal/classify"
)

const DefaultTheme = "nord"

// ThemePalette holds one hex color per token category, derived from a chroma
// style.
type ThemePalette struct {
	Name         string
	Text         string
	Background   string
	Keyword      string
	Type         string
	Identifier   string
	Function     string
	Macro        string
	String       string
	Number       string
	Char         string
	Comment      string
	Preprocessor string
	Operator     string
	Punctuation  string
}

func LoadThemePalette(name string) (ThemePalette, error) {
	requested := strings.TrimSpace(name)
	if requested == "" {
		requested = DefaultTheme
	}

	lookup := normalizeThemeName(requested)
	names := styles.Names()
	available := make(map[string]struct{}, len(names))
	for _, n := range names {
		available[n] = struct{}{}
	}
	unknownThemeErr := func() error {
		sort.Strings(names)
		return fmt.Errorf("unknown theme %q. try one of: %s", requested, strings.Join(topThemeHints(names), ", "))
	}
	if _, ok := available[lookup]; !ok {
		return ThemePalette{}, unknownThemeErr()
	}

	style := styles.Get(lookup)
	if style == nil {
		return ThemePalette{}, unknownThemeErr()
	}

	baseBG := pickBackground(style, "#2E3440", chroma.Background)
	baseFG := pickForeground(style, "#D8DEE9", chroma.Text, chroma.Background)
	comment := pickForeground(style, adjustTone(baseFG, -60), chroma.Comment)
	str := pickForeground(style, baseFG, chroma.LiteralString)

	return ThemePalette{
		Name:         lookup,
		Text:         baseFG,
		Background:   baseBG,
		Keyword:      pickForeground(style, baseFG, chroma.Keyword),
		Type:         pickForeground(style, baseFG, chroma.KeywordType, chroma.NameClass),
		Identifier:   pickForeground(style, baseFG, chroma.NameVariable, chroma.Name, chroma.Text),
		Function:     pickForeground(style, baseFG, chroma.NameFunction, chroma.Name),
		Macro:        pickForeground(style, baseFG, chroma.NameConstant, chroma.CommentPreproc, chroma.NameFunction),
		String:       str,
		Number:       pickForeground(style, baseFG, chroma.LiteralNumber),
		Char:         pickForeground(style, str, chroma.LiteralStringChar, chroma.LiteralString),
		Comment:      comment,
		Preprocessor: pickForeground(style, comment, chroma.CommentPreproc, chroma.Comment),
		Operator:     pickForeground(style, baseFG, chroma.Operator),
		Punctuation:  pickForeground(style, adjustTone(baseFG, -30), chroma.Punctuation, chroma.Operator),
	}, nil
}

// Color returns the foreground for a category. TokenPlain uses Text.
func (p ThemePalette) Color(cat classify.TokenCategory) string {
	switch cat {
	case classify.TokenKeyword:
		return p.Keyword
	case classify.TokenType:
		return p.Type
	case classify.TokenIdentifier:
		return p.Identifier
	case classify.TokenFunction:
		return p.Function
	case classify.TokenMacro:
		return p.Macro
	case classify.TokenString:
		return p.String
	case classify.TokenNumber:
		return p.Number
	case classify.TokenChar:
		return p.Char
	case classify.TokenComment:
		return p.Comment
	case classify.TokenPreprocessor:
		return p.Preprocessor
	case classify.TokenOperator:
		return p.Operator
	case classify.TokenPunctuation:
		return p.Punctuation
	default:
		return p.Text
	}
}

// ThemeNames lists the chroma styles usable as themes.
func ThemeNames() []string {
	names := styles.Names()
	sort.Strings(names)
	return names
}

func normalizeThemeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "solarized":
		return "solarized-dark"
	case "one-dark":
		return "onedark"
	default:
		return n
	}
}

func pickForeground(style *chroma.Style, fallback string, types ...chroma.TokenType) string {
	for _, tt := range types {
		entry := style.Get(tt)
		if entry.Colour.IsSet() {
			return entry.Colour.String()
		}
	}
	return fallback
}

func pickBackground(style *chroma.Style, fallback string, types ...chroma.TokenType) string {
	for _, tt := range types {
		entry := style.Get(tt)
		if entry.Background.IsSet() {
			return entry.Background.String()
		}
	}
	return fallback
}

func topThemeHints(all []string) []string {
	wanted := []string{"nord", "dracula", "monokai", "github", "github-dark", "solarized-dark", "solarized-light", "gruvbox", "onedark"}
	set := map[string]bool{}
	for _, n := range all {
		set[n] = true
	}
	out := make([]string, 0, len(wanted))
	for _, name := range wanted {
		if set[name] {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		limit := min(8, len(all))
		return all[:limit]
	}
	return out
}

func adjustTone(hex string, delta int) string {
	r, g, b, ok := parseHexRGB(hex)
	if !ok {
		return hex
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp8(r+delta), clamp8(g+delta), clamp8(b+delta))
}

func parseHexRGB(hex string) (int, int, int, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int((v >> 16) & 0xFF), int((v >> 8) & 0xFF), int(v & 0xFF), true
}

func clamp8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// hexDigits returns the six hex digits of a color, as LaTeX's xcolor wants
// them. Unparseable colors fall back to black.
func hexDigits(hex string) string {
	r, g, b, ok := parseHexRGB(hex)
	if !ok {
		return "000000"
	}
	return fmt.Sprintf("%02X%02X%02X", r, g, b)
}

func mustDefaultTheme() ThemePalette {
	p, err := LoadThemePalette(DefaultTheme)
	if err == nil {
		return p
	}
	return ThemePalette{
		Name:         "fallback",
		Text:         "#D8DEE9",
		Background:   "#2E3440",
		Keyword:      "#81A1C1",
		Type:         "#8FBCBB",
		Identifier:   "#D8DEE9",
		Function:     "#88C0D0",
		Macro:        "#5E81AC",
		String:       "#A3BE8C",
		Number:       "#B48EAD",
		Char:         "#EBCB8B",
		Comment:      "#616E88",
		Preprocessor: "#5E81AC",
		Operator:     "#81A1C1",
		Punctuation:  "#ECEFF4",
	}
}
