package readfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInputUnreadable wraps every failure to obtain an input's bytes.
var ErrInputUnreadable = errors.New("input unreadable")

// StdinName is the display name of standard input.
const StdinName = "<stdin>"

// Read returns the contents of path and its display name. An empty path or
// "-" reads stdin.
func Read(path string, stdin io.Reader) ([]byte, string, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			return nil, StdinName, fmt.Errorf("%w: %s: no stdin", ErrInputUnreadable, StdinName)
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, StdinName, fmt.Errorf("%w: %s: %w", ErrInputUnreadable, StdinName, err)
		}
		return data, StdinName, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	return data, path, nil
}

// LinesNormalized splits src into lines, treating \r\n as \n.
func LinesNormalized(src []byte) []string {
	normalized := strings.ReplaceAll(string(src), "\r\n", "\n")
	return strings.Split(normalized, "\n")
}
