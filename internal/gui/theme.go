package gui

import (
	"log/slog"
	"strings"

	"github.com/gitpilot-go/gitpilot/internal/graph"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

type colorPalette struct {
	ThemeName   string
	DiffAdd     string
	DiffDel     string
	DiffHeader  string
	WIPRow      string
	ChromaStyle string
	// Lanes colors graph lanes of commits without a known branch.
	Lanes []graph.RGB
}

var (
	lightPalette = colorPalette{
		ThemeName:   "azure light",
		DiffAdd:     "#dff5de",
		DiffDel:     "#f9d6d5",
		DiffHeader:  "#e4e4e4",
		WIPRow:      "#fde2e1",
		ChromaStyle: "github",
		Lanes:       graph.LightLanePalette,
	}
	darkPalette = colorPalette{
		ThemeName:   "azure dark",
		DiffAdd:     "#1f3d2b",
		DiffDel:     "#3d1f29",
		DiffHeader:  "#2f2f2f",
		WIPRow:      "#4a1f23",
		ChromaStyle: "github-dark",
		Lanes:       graph.DarkLanePalette,
	}
	detectDarkMode = darkmode.IsDarkMode
)

func paletteForPreference(pref ThemePreference) colorPalette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	}
	if detectDarkMode == nil {
		return lightPalette
	}
	dark, err := detectDarkMode()
	if err != nil {
		slog.Debug("detect dark mode", slog.Any("error", err))
		return lightPalette
	}
	if dark {
		return darkPalette
	}
	return lightPalette
}

func (p colorPalette) isDark() bool {
	return strings.Contains(strings.ToLower(p.ThemeName), "dark")
}
