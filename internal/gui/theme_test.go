package gui

import (
	"errors"
	"testing"

	"github.com/gitpilot-go/gitpilot/internal/graph"
)

func TestThemePreferenceFromString(t *testing.T) {
	tests := []struct {
		raw  string
		want ThemePreference
	}{
		{"", ThemeAuto},
		{"auto", ThemeAuto},
		{" Dark ", ThemeDark},
		{"LIGHT", ThemeLight},
		{"solarized", ThemeAuto},
	}
	for _, tc := range tests {
		if got := ThemePreferenceFromString(tc.raw); got != tc.want {
			t.Fatalf("raw=%q: want %v, got %v", tc.raw, tc.want, got)
		}
	}
}

func TestPaletteForPreference(t *testing.T) {
	orig := detectDarkMode
	t.Cleanup(func() { detectDarkMode = orig })

	detectDarkMode = func() (bool, error) { return true, nil }
	if p := paletteForPreference(ThemeLight); p.isDark() {
		t.Fatalf("explicit light preference must win over detection")
	}
	p := paletteForPreference(ThemeAuto)
	if !p.isDark() || p.ChromaStyle != "github-dark" {
		t.Fatalf("expected dark palette, got %+v", p)
	}
	if len(p.Lanes) == 0 || p.Lanes[0] != graph.DarkLanePalette[0] {
		t.Fatalf("expected dark lane colors")
	}

	detectDarkMode = func() (bool, error) { return false, errors.New("no portal") }
	if p := paletteForPreference(ThemeAuto); p.isDark() {
		t.Fatalf("detection errors should fall back to light")
	}
	if p := paletteForPreference(ThemeDark); !p.isDark() {
		t.Fatalf("explicit dark preference ignored")
	}
}
