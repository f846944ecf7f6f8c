package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as #rrggbb, the form Tk and the config file use.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb or #rgb; the leading # is optional.
func ParseHex(raw string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q", raw)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", raw, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ColorSource records where a lane color came from.
type ColorSource uint8

const (
	// ColorFallback marks a lane color taken from the engine's lane palette.
	ColorFallback ColorSource = iota
	// ColorAssigned marks a color coming from the branch lookup.
	ColorAssigned
	// ColorInherited marks a color carried over from the lane the commit continues.
	ColorInherited
)

func (s ColorSource) String() string {
	switch s {
	case ColorAssigned:
		return "assigned"
	case ColorInherited:
		return "inherited"
	default:
		return "fallback"
	}
}

// Color is a lane color tagged with its source.
type Color struct {
	RGB
	Source ColorSource
}

// ColorResolver maps a branch name to its display color.
type ColorResolver interface {
	BranchColor(name string) (RGB, bool)
}

// ResolverFunc adapts a function to ColorResolver.
type ResolverFunc func(name string) (RGB, bool)

func (f ResolverFunc) BranchColor(name string) (RGB, bool) {
	return f(name)
}

// resolveColor picks the color of a commit drawn on a lane that currently
// carries laneColor.
func resolveColor(resolver ColorResolver, branch string, laneColor Color) Color {
	if rgb, ok := lookupBranch(resolver, branch); ok {
		return Color{RGB: rgb, Source: ColorAssigned}
	}
	return Color{RGB: laneColor.RGB, Source: ColorInherited}
}

func lookupBranch(resolver ColorResolver, branch string) (RGB, bool) {
	if resolver == nil || branch == "" {
		return RGB{}, false
	}
	return resolver.BranchColor(branch)
}

var (
	// Based on gitk's default colors; keep a small, high-contrast palette.
	LightLanePalette = []RGB{
		{0x00, 0xcc, 0x00}, {0xcc, 0x00, 0x00}, {0x00, 0x55, 0xcc}, {0xaa, 0x00, 0xaa},
		{0x55, 0x55, 0x55}, {0x8b, 0x45, 0x13}, {0xff, 0x8c, 0x00},
	}
	DarkLanePalette = []RGB{
		{0x00, 0xff, 0x00}, {0xff, 0x5c, 0x5c}, {0x4f, 0xa3, 0xff}, {0xd5, 0x6b, 0xff},
		{0xa0, 0xa0, 0xa0}, {0xd0, 0x9a, 0x6b}, {0xff, 0xb3, 0x47},
	}
)
