package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func makeBenchmarkCSource(functions int) string {
	var b strings.Builder
	b.WriteString("#include <stdio.h>\n#define LIMIT 64\n\n")
	for i := 0; i < functions; i++ {
		b.WriteString("static int handler_")
		b.WriteString(strings.Repeat("x", i%7+1))
		b.WriteString("(const char *name, int n) {\n  for (int i = 0; i < n && i < LIMIT; i++) {\n    printf(\"%s %d\\n\", name, i);\n  }\n  return n;\n}\n\n")
	}
	return b.String()
}

func BenchmarkRunSemanticHTML(b *testing.B) {
	b.ReportAllocs()
	b.Setenv("HOME", b.TempDir())
	path := filepath.Join(b.TempDir(), "bench.c")
	if err := os.WriteFile(path, []byte(makeBenchmarkCSource(400)), 0o600); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := run(context.Background(), []string{"-f", "shtml", path}, nil, io.Discard, io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
