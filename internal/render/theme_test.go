package render

import (
	"testing"

	"fuzzyhl/internal/classify"
)

func TestLoadThemePalette_Known(t *testing.T) {
	palette, err := LoadThemePalette("dracula")
	if err != nil {
		t.Fatalf("expected dracula theme to load: %v", err)
	}
	for _, cat := range classify.Categories() {
		if palette.Color(cat) == "" {
			t.Fatalf("theme palette has no color for %s: %+v", cat, palette)
		}
	}
}

func TestLoadThemePalette_Default(t *testing.T) {
	palette, err := LoadThemePalette("")
	if err != nil {
		t.Fatalf("default theme: %v", err)
	}
	if palette.Name != DefaultTheme {
		t.Fatalf("default theme name: got %q want %q", palette.Name, DefaultTheme)
	}
}

func TestLoadThemePalette_Unknown(t *testing.T) {
	if _, err := LoadThemePalette("this-theme-does-not-exist"); err == nil {
		t.Fatalf("expected unknown theme error")
	}
}

func TestHexDigits(t *testing.T) {
	if got := hexDigits("#81a1c1"); got != "81A1C1" {
		t.Fatalf("hexDigits: got %q", got)
	}
	if got := hexDigits("bogus"); got != "000000" {
		t.Fatalf("hexDigits fallback: got %q", got)
	}
}
