package treesitter

import (
	"context"
	"strings"
	"testing"

	"fuzzyhl/internal/classify"
	"fuzzyhl/internal/lang"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/require"
)

func catOf(t *testing.T, src string, spans []classify.Span, needle string) classify.TokenCategory {
	t.Helper()
	at := strings.Index(src, needle)
	require.GreaterOrEqual(t, at, 0, "missing %q", needle)
	for _, span := range spans {
		if span.Start <= at && at < span.End {
			return span.Cat
		}
	}
	t.Fatalf("no span covers %q", needle)
	return classify.TokenPlain
}

func TestClassifyFunction(t *testing.T) {
	src := "int main(void) {\n  return puts(\"hi\");\n}\n"
	spans, err := Classify(context.Background(), sitter.NewParser(), []byte(src), lang.C, false)
	require.NoError(t, err)
	require.NoError(t, classify.Validate(spans, len(src)))

	tests := []struct {
		needle string
		want   classify.TokenCategory
	}{
		{"int", classify.TokenType},
		{"main", classify.TokenFunction},
		{"return", classify.TokenKeyword},
		{"puts", classify.TokenFunction},
		{"\"hi\"", classify.TokenString},
		{";", classify.TokenPunctuation},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, catOf(t, src, spans, tt.needle), tt.needle)
	}
}

func TestClassifyMacroAndComment(t *testing.T) {
	src := "#define MAX 10\n// note\nchar c = 'x';\n"
	spans, err := Classify(context.Background(), sitter.NewParser(), []byte(src), lang.C, false)
	require.NoError(t, err)
	require.NoError(t, classify.Validate(spans, len(src)))

	require.Equal(t, classify.TokenPreprocessor, catOf(t, src, spans, "#define"))
	require.Equal(t, classify.TokenMacro, catOf(t, src, spans, "MAX"))
	require.Equal(t, classify.TokenComment, catOf(t, src, spans, "// note"))
	require.Equal(t, classify.TokenChar, catOf(t, src, spans, "'x'"))
}

func TestClassifyIdentifiersOnly(t *testing.T) {
	src := "int *p = 0;\n"
	spans, err := Classify(context.Background(), sitter.NewParser(), []byte(src), lang.CPP, true)
	require.NoError(t, err)
	for _, span := range spans {
		require.True(t, span.Cat == classify.TokenPlain || span.Cat.Naming(), span.Cat.String())
	}
	require.Equal(t, classify.TokenPlain, catOf(t, src, spans, "0"))
}

func TestClassifyBrokenInputStillCovers(t *testing.T) {
	src := "void f() { if (x) { return; }\n"
	spans, err := Classify(context.Background(), sitter.NewParser(), []byte(src), lang.CPP, false)
	require.NoError(t, err)
	require.NoError(t, classify.Validate(spans, len(src)))
	require.Equal(t, src, string(classify.Reconstruct([]byte(src), spans)))
}

func TestClassifyEmpty(t *testing.T) {
	spans, err := Classify(context.Background(), sitter.NewParser(), nil, lang.C, false)
	require.NoError(t, err)
	require.Empty(t, spans)
}

func TestDump(t *testing.T) {
	out, err := Dump(context.Background(), sitter.NewParser(), []byte("int x;\n"), lang.C)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "(translation_unit"), out)
	require.Contains(t, out, "declaration")
}
