package lang

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

type ID string

const (
	Auto ID = ""
	C    ID = "c"
	CPP  ID = "cpp"
)

var extMap = map[string]ID{
	".c":   C,
	".h":   C,
	".i":   C,
	".cpp": CPP,
	".cc":  CPP,
	".cxx": CPP,
	".c++": CPP,
	".cp":  CPP,
	".hpp": CPP,
	".hh":  CPP,
	".hxx": CPP,
	".h++": CPP,
	".ipp": CPP,
	".tpp": CPP,
	".inl": CPP,
	".ii":  CPP,
	".cu":  CPP,
	".ino": CPP,
}

// Headers without an extension, as shipped by the C++ standard library.
var fileMap = map[string]ID{
	"algorithm":  CPP,
	"memory":     CPP,
	"string":     CPP,
	"vector":     CPP,
	"map":        CPP,
	"iostream":   CPP,
	"functional": CPP,
	"utility":    CPP,
}

var cppMarkers = [][]byte{
	[]byte("class "),
	[]byte("namespace "),
	[]byte("template<"),
	[]byte("template <"),
	[]byte("public:"),
	[]byte("private:"),
	[]byte("protected:"),
	[]byte("std::"),
	[]byte("nullptr"),
	[]byte("#include <iostream>"),
}

func Parse(v string) (ID, error) {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "", "auto":
		return Auto, nil
	case "c":
		return C, nil
	case "cpp", "c++", "cxx":
		return CPP, nil
	default:
		return Auto, fmt.Errorf("invalid language %q (use auto, c or cpp)", v)
	}
}

func Detect(path string) ID {
	base := filepath.Base(path)
	if id, ok := fileMap[base]; ok {
		return id
	}
	ext := strings.ToLower(filepath.Ext(base))
	if id, ok := extMap[ext]; ok {
		return id
	}
	return CPP
}

// DetectWithContent refines Detect for ambiguous C headers: a ".h" file that
// uses C++ constructs is lexed as C++.
func DetectWithContent(path string, src []byte) ID {
	id := Detect(path)
	if id != C || strings.ToLower(filepath.Ext(path)) != ".h" {
		return id
	}
	if hasModeline(src, "c++") {
		return CPP
	}
	for _, marker := range cppMarkers {
		if bytes.Contains(src, marker) {
			return CPP
		}
	}
	return C
}

func hasModeline(src []byte, mode string) bool {
	line := src
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	lower := bytes.ToLower(line)
	return bytes.Contains(lower, []byte("-*-")) && bytes.Contains(lower, []byte(mode))
}
