package readfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLinesNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  []string
	}{
		{
			name: "empty file",
			in:   "",
			out:  []string{""},
		},
		{
			name: "unix newlines",
			in:   "one\ntwo\n",
			out:  []string{"one", "two", ""},
		},
		{
			name: "windows newlines",
			in:   "one\r\ntwo\r\n",
			out:  []string{"one", "two", ""},
		},
		{
			name: "standalone carriage returns preserved",
			in:   "a\rb\n\r\n",
			out:  []string{"a\rb", "", ""},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := LinesNormalized([]byte(tc.in))
			if len(got) != len(tc.out) {
				t.Fatalf("lines len: got %d want %d", len(got), len(tc.out))
			}
			for i := range got {
				if got[i] != tc.out[i] {
					t.Fatalf("line %d: got %q want %q", i, got[i], tc.out[i])
				}
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "input.c")
	if err := os.WriteFile(path, []byte("int x;\n"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	data, name, err := Read(path, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "int x;\n" || name != path {
		t.Fatalf("Read: got %q from %q", data, name)
	}
}

func TestReadStdin(t *testing.T) {
	for _, path := range []string{"", "-"} {
		data, name, err := Read(path, strings.NewReader("void f();"))
		if err != nil {
			t.Fatalf("Read(%q): %v", path, err)
		}
		if string(data) != "void f();" || name != StdinName {
			t.Fatalf("Read(%q): got %q from %q", path, data, name)
		}
	}
}

func TestReadMissing(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "missing.c"), nil)
	if !errors.Is(err, ErrInputUnreadable) {
		t.Fatalf("expected ErrInputUnreadable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected the cause to be kept, got %v", err)
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestReadBrokenStdin(t *testing.T) {
	_, _, err := Read("-", brokenReader{})
	if !errors.Is(err, ErrInputUnreadable) || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("unexpected error: %v", err)
	}
}
