package classify

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"fuzzyhl/internal/fuzzy"
	"fuzzyhl/internal/lang"
	"fuzzyhl/internal/lexer"
)

func run(src string, opts Options) (*fuzzy.Tree, []Span) {
	b := []byte(src)
	tree := fuzzy.Parse(b, lexer.Lex(b, lang.CPP))
	return tree, Classify(tree, opts)
}

// categories lists "text:category" for every non-whitespace span.
func categories(src string, opts Options) []string {
	_, spans := run(src, opts)
	var out []string
	for _, span := range spans {
		text := span.Text([]byte(src))
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s:%s", text, span.Cat))
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "declarator tie-break",
			in:   "int Foo(int x);",
			want: []string{"int:keyword", "Foo:function", "(:punctuation", "int:keyword", "x:identifier", "):punctuation", ";:punctuation"},
		},
		{
			name: "macro definition",
			in:   "#define MAX 10",
			want: []string{"#:preprocessor", "define:preprocessor", "MAX:macro", "10:number"},
		},
		{
			name: "macro use",
			in:   "#define MAX 10\nint y = MAX;",
			want: []string{"#:preprocessor", "define:preprocessor", "MAX:macro", "10:number", "int:keyword", "y:identifier", "=:operator", "MAX:macro", ";:punctuation"},
		},
		{
			name: "include header",
			in:   "#include <stdio.h>",
			want: []string{"#:preprocessor", "include:preprocessor", "<stdio.h>:string"},
		},
		{
			name: "conditional",
			in:   "#if defined(FOO) && BAR > 1",
			want: []string{"#:preprocessor", "if:keyword", "defined:preprocessor", "(:punctuation", "FOO:macro", "):punctuation", "&&:operator", "BAR:identifier", ">:operator", "1:number"},
		},
		{
			name: "pragma body",
			in:   "#pragma once",
			want: []string{"#:preprocessor", "pragma:preprocessor", "once:preprocessor"},
		},
		{
			name: "qualified template type",
			in:   "std::vector<Foo> v;",
			want: []string{"std:type", ":::operator", "vector:type", "<:operator", "Foo:type", ">:operator", "v:identifier", ";:punctuation"},
		},
		{
			name: "call",
			in:   `printf("%d\n", n);`,
			want: []string{"printf:function", "(:punctuation", `"%d\n":string`, ",:punctuation", "n:identifier", "):punctuation", ";:punctuation"},
		},
		{
			name: "known struct",
			in:   "struct Point { int x; };\nn = sizeof(Point);",
			want: []string{
				"struct:keyword", "Point:type", "{:punctuation", "int:keyword", "x:identifier", ";:punctuation", "}:punctuation", ";:punctuation",
				"n:identifier", "=:operator", "sizeof:keyword", "(:punctuation", "Point:type", "):punctuation", ";:punctuation",
			},
		},
		{
			name: "typedef name",
			in:   "typedef unsigned long ulong;\nulong n;",
			want: []string{"typedef:keyword", "unsigned:keyword", "long:keyword", "ulong:type", ";:punctuation", "ulong:type", "n:identifier", ";:punctuation"},
		},
		{
			name: "namespace",
			in:   "namespace app {}",
			want: []string{"namespace:keyword", "app:type", "{:punctuation", "}:punctuation"},
		},
		{
			name: "parameters",
			in:   "void draw(Canvas *c, size_t n);",
			want: []string{"void:keyword", "draw:function", "(:punctuation", "Canvas:type", "*:operator", "c:identifier", ",:punctuation", "size_t:type", "n:identifier", "):punctuation", ";:punctuation"},
		},
		{
			name: "literals and comments",
			in:   "c = 'a' + 1.5; // done",
			want: []string{"c:identifier", "=:operator", "'a':char", "+:operator", "1.5:number", ";:punctuation", "// done:comment"},
		},
		{
			name: "unknown bytes are plain",
			in:   "a @ b",
			want: []string{"a:identifier", "@:plain", "b:identifier"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, categories(tc.in, Options{}))
		})
	}
}

func TestClassifyIdentifiersOnly(t *testing.T) {
	got := categories("int *p;", Options{IdentifiersOnly: true})
	require.Equal(t, []string{"int:keyword", "*:plain", "p:identifier", ";:plain"}, got)

	got = categories("#define N 1\nx = f(N); /* c */", Options{IdentifiersOnly: true})
	require.Equal(t, []string{
		"#:plain", "define:plain", "N:macro", "1:plain",
		"x:identifier", "=:plain", "f:function", "(:plain", "N:macro", "):plain", ";:plain", "/* c */:plain",
	}, got)
}

func TestClassifyBracketRecovery(t *testing.T) {
	src := "void f() { if (x) { return; }"
	_, spans := run(src, Options{})
	require.NoError(t, Validate(spans, len(src)))
	require.Equal(t, "f:function", categories(src, Options{})[1])
}

func TestClassifyEmpty(t *testing.T) {
	_, spans := run("", Options{})
	require.Empty(t, spans)
	require.NoError(t, Validate(spans, 0))
}

func TestClassifyTotalOverBytes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := rapid.SliceOfN(rapid.Byte(), 0, 256).Draw(rt, "src")
		tree := fuzzy.Parse(src, lexer.Lex(src, lang.CPP))
		spans := Classify(tree, Options{IdentifiersOnly: rapid.Bool().Draw(rt, "idOnly")})
		require.NoError(rt, Validate(spans, len(src)))
		require.Equal(rt, src, Reconstruct(src, spans))
	})
}

var fragments = []string{
	"int", "Foo", "x", "y", "::", "<", ">", "(", ")", "{", "}", "[", "]", ";", ",", "=", "*", "&",
	"template", "class", "struct", "return", "if", "else", "typedef", "sizeof", "const", "static",
	"#define M 1\n", "#if defined(M)\n", "#endif\n", "\"s\"", "'c'", "42", "/* c */", "// c\n",
	" ", "\n", "operator", "~", "namespace", "using", "new",
}

func TestClassifyKeywordStability(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 80).Draw(rt, "parts")
		src := []byte(strings.Join(parts, " "))
		tree := fuzzy.Parse(src, lexer.Lex(src, lang.CPP))
		spans := Classify(tree, Options{})
		require.Len(rt, spans, len(tree.Tokens))
		for i, tok := range tree.Tokens {
			if tok.Kind == lexer.Keyword {
				require.Equal(rt, TokenKeyword, spans[i].Cat, "keyword %q at %d", tok.Text(src), tok.Start)
			}
		}
	})
}

func TestClassifyIdentifiersOnlyKeepsNames(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 60).Draw(rt, "parts")
		src := []byte(strings.Join(parts, " "))
		tree := fuzzy.Parse(src, lexer.Lex(src, lang.CPP))
		full := Classify(tree, Options{})
		named := Classify(tree, Options{IdentifiersOnly: true})
		for i := range full {
			if full[i].Cat.Naming() {
				require.Equal(rt, full[i].Cat, named[i].Cat)
			} else {
				require.Equal(rt, TokenPlain, named[i].Cat)
			}
		}
	})
}
