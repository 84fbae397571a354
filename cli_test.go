package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fuzzyhl/internal/readfile"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestHighlightStdinSemanticHTML(t *testing.T) {
	out, err := runCLI(t, "int x;", "--format", "shtml")
	require.NoError(t, err)
	require.Equal(t, `<pre class="fuzzyhl"><code><span class="keyword">int</span> <span class="identifier">x</span>`+
		`<span class="punctuation">;</span></code></pre>`+"\n", out)
}

func TestHighlightTerminalNeverColorRoundTrips(t *testing.T) {
	src := "#define MAX 10\nint main() { return MAX; }\n"
	out, err := runCLI(t, src, "--color", "never")
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestHighlightIdentifiersOnly(t *testing.T) {
	out, err := runCLI(t, "int *p;", "-f", "shtml", "--identifiers-only")
	require.NoError(t, err)
	require.Contains(t, out, `<span class="keyword">int</span> *<span class="identifier">p</span>;`)
}

func TestHighlightFileArgument(t *testing.T) {
	src := "#include <stdio.h>\nint main(void) { return 0; }\n"
	path := writeFile(t, "main.c", src)

	out, err := runCLI(t, "ignored", "--color", "never", path)
	require.NoError(t, err)
	require.Equal(t, src, out)

	out, err = runCLI(t, src, "--color", "never", "-")
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestHighlightFilesInOrderToOutput(t *testing.T) {
	first := writeFile(t, "first.c", "int first;\n")
	second := writeFile(t, "second.cpp", "class Second {};\n")
	dest := filepath.Join(t.TempDir(), "out.html")

	out, err := runCLI(t, "", "-f", "shtml", "-o", dest, "--workers", "2", first, second)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	got := string(data)
	require.Equal(t, 2, strings.Count(got, `<pre class="fuzzyhl">`))
	require.Less(t, strings.Index(got, "first"), strings.Index(got, "Second"))
	require.Contains(t, got, `<span class="type">Second</span>`)
}

func TestHighlightDumpAST(t *testing.T) {
	out, err := runCLI(t, "void f() { if (x) { return; }", "--dump-ast")
	require.NoError(t, err)
	require.Contains(t, out, "TranslationUnit")
	require.Contains(t, out, "BracedBlock")
}

func TestHighlightLaTeXStandalone(t *testing.T) {
	out, err := runCLI(t, "int x;\n", "-f", "latex", "--standalone")
	require.NoError(t, err)
	require.Contains(t, out, `\begin{document}`)
	require.Contains(t, out, `\fhlKeyword{int}`)
	require.Contains(t, out, `\end{document}`)
}

func TestHighlightTreeSitterEngine(t *testing.T) {
	out, err := runCLI(t, "int main(void) { return 0; }\n", "-f", "shtml", "--engine", "tree-sitter", "--lang", "c")
	require.NoError(t, err)
	require.Contains(t, out, `<span class="function">main</span>`)
}

func TestMissingInputIsUnreadable(t *testing.T) {
	_, err := runCLI(t, "", filepath.Join(t.TempDir(), "absent.c"))
	require.ErrorIs(t, err, readfile.ErrInputUnreadable)
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--format", "pdf"}, "format"},
		{[]string{"--theme", "no-such-theme"}, "theme"},
		{[]string{"--color", "sometimes"}, "color"},
		{[]string{"--engine", "clang"}, "engine"},
		{[]string{"--lang", "go"}, "lang"},
		{[]string{"--no-such-flag"}, "unknown flag"},
	}
	for _, tt := range tests {
		_, err := runCLI(t, "int x;", tt.args...)
		require.Error(t, err, tt.args)
		require.Contains(t, err.Error(), tt.want)
	}
}

func TestConfigFileAndEnv(t *testing.T) {
	cfg := writeFile(t, "fuzzyhl.yaml", "format: shtml\n")
	t.Setenv("FUZZYHL_IDENTIFIERS_ONLY", "true")

	out, err := runCLI(t, "x = 1;", "--config", cfg)
	require.NoError(t, err)
	require.Equal(t, `<pre class="fuzzyhl"><code><span class="identifier">x</span> = 1;</code></pre>`+"\n", out)
}

func TestFlagOverridesConfigFile(t *testing.T) {
	cfg := writeFile(t, "fuzzyhl.yaml", "format: shtml\n")
	out, err := runCLI(t, "x;", "--config", cfg, "--format", "stdout", "--color", "never")
	require.NoError(t, err)
	require.Equal(t, "x;", out)
}

func TestSymbolsCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := "demo.c"
	require.NoError(t, os.WriteFile(filepath.Join(dir, src), []byte("#define MAX 10\nstruct point { int x; };\nint parse_header(void);\nstatic int counter;\n"), 0o600))

	out, err := runCLI(t, "", "symbols", "--color", "never", src)
	require.NoError(t, err)
	require.Equal(t, []string{
		src + ":1:9\tmacro\tMAX",
		src + ":2:8\ttype\tpoint",
		src + ":3:5\tfunction\tparse_header",
		src + ":4:12\tvariable\tcounter",
	}, strings.Split(strings.TrimSpace(out), "\n"))

	out, err = runCLI(t, "", "symbols", "--color", "never", "--query", "phdr", src)
	require.NoError(t, err)
	require.Equal(t, src+":3:5\tfunction\tparse_header\n", out)

	out, err = runCLI(t, "", "symbols", "--color", "never", "--kind", "macro,type", src)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(out, "\n"))

	_, err = runCLI(t, "", "symbols", "--kind", "label", src)
	require.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	out, err := runCLI(t, "", "config", "--theme", "monokai")
	require.NoError(t, err)
	require.Contains(t, out, "theme: monokai")
	require.Contains(t, out, "format: stdout")

	out, err = runCLI(t, "", "config", "--as", "toml")
	require.NoError(t, err)
	require.Contains(t, out, "cache_size = 256")
}

func TestDebugLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	_, err := runCLI(t, "int x;", "--color", "never", "--debug-log", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "[DEBUG] [lex] lexed")
	require.Contains(t, string(data), "[DEBUG] [parse] parsed")
	require.Contains(t, string(data), "[DEBUG] [render] rendered")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "--version")
	require.NoError(t, err)
	require.Equal(t, "fuzzyhl dev\n", out)
}
