package render

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
)

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ModeAuto, "AUTO": ModeAuto, "always": ModeAlways, " never ": ModeNever} {
		got, err := ParseColorMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseColorMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestDetectMode(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want ColorMode
	}{
		{name: "no tty", env: nil, want: ModeNever},
		{name: "no color", env: map[string]string{"NO_COLOR": "1", "FORCE_COLOR": "1"}, want: ModeNever},
		{name: "dumb terminal", env: map[string]string{"TERM": "dumb"}, want: ModeNever},
		{name: "forced", env: map[string]string{"FORCE_COLOR": "1"}, want: ModeAlways},
		{name: "force zero", env: map[string]string{"CLICOLOR_FORCE": "0"}, want: ModeNever},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectMode(nil, tc.env); got != tc.want {
				t.Fatalf("DetectMode: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestColorProfile(t *testing.T) {
	var buf bytes.Buffer
	if got := colorProfile(&buf, ModeAuto, nil); got != termenv.Ascii {
		t.Fatalf("auto on a buffer: got %v", got)
	}
	env := map[string]string{"FORCE_COLOR": "1", "COLORTERM": "truecolor"}
	if got := colorProfile(&buf, ModeAuto, env); got != termenv.TrueColor {
		t.Fatalf("forced truecolor: got %v", got)
	}
	if got := colorProfile(&buf, ModeAlways, map[string]string{"TERM": "xterm-256color"}); got != termenv.ANSI256 {
		t.Fatalf("256 colors: got %v", got)
	}
	if got := colorProfile(&buf, ModeNever, env); got != termenv.Ascii {
		t.Fatalf("never: got %v", got)
	}
}

func TestEnvMap(t *testing.T) {
	env := EnvMap([]string{"A=1", "B", "", "C=x=y"})
	if env["A"] != "1" || env["C"] != "x=y" {
		t.Fatalf("EnvMap: %v", env)
	}
	if _, ok := env["B"]; !ok {
		t.Fatalf("EnvMap dropped a bare key: %v", env)
	}
}
