package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

type ColorMode int

const (
	ModeAuto ColorMode = iota
	ModeAlways
	ModeNever
)

func (m ColorMode) String() string {
	switch m {
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return "auto"
	}
}

func ParseColorMode(v string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return ModeAuto, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	default:
		return ModeAuto, fmt.Errorf("unknown color mode: %s", v)
	}
}

func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		if idx := strings.Index(entry, "="); idx >= 0 {
			env[entry[:idx]] = entry[idx+1:]
		} else {
			env[entry] = ""
		}
	}
	return env
}

// DetectMode resolves ModeAuto for stdout.
//
// Priority order (first match wins):
//  1. TERM=dumb, NO_COLOR or CLICOLOR=0 disable colors.
//  2. CLICOLOR_FORCE / FORCE_COLOR with any non-zero value force colors.
//  3. Otherwise colors are emitted only when stdout is a TTY.
func DetectMode(stdout *os.File, env map[string]string) ColorMode {
	if env != nil {
		if v := strings.ToLower(strings.TrimSpace(env["TERM"])); v == "dumb" {
			return ModeNever
		}
		if v := strings.TrimSpace(env["NO_COLOR"]); v != "" {
			return ModeNever
		}
		if v := strings.TrimSpace(env["CLICOLOR"]); v == "0" {
			return ModeNever
		}
		if forceColor(env["CLICOLOR_FORCE"]) || forceColor(env["FORCE_COLOR"]) {
			return ModeAlways
		}
	}
	if IsTerminal(stdout) {
		return ModeAlways
	}
	return ModeNever
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func forceColor(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0"
}

// colorProfile picks the termenv profile for writing to w.
func colorProfile(w io.Writer, mode ColorMode, env map[string]string) termenv.Profile {
	if mode == ModeAuto {
		f, _ := w.(*os.File)
		mode = DetectMode(f, env)
	}
	if mode == ModeNever {
		return termenv.Ascii
	}

	if v := strings.ToLower(env["COLORTERM"]); strings.Contains(v, "truecolor") || strings.Contains(v, "24bit") {
		return termenv.TrueColor
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "256color") {
		return termenv.ANSI256
	}
	return termenv.ANSI
}
