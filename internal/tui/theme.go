package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/prefs"
)

// ResolveTheme loads a theme with the following precedence:
//  1. NO_COLOR env var set → NoColorTheme (industry standard)
//  2. DVNT_THEME env var → parse custom colors.toml file
//  3. Theme name saved in preferences → <configdir>/theme/<name>.toml
//  4. User theme from <configdir>/theme/colors.toml
//  5. Default dvnt theme
//
// The theme directory can be a symlink into a system theme manager.
func ResolveTheme() Theme {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NoColorTheme()
	}

	if path := os.Getenv("DVNT_THEME"); path != "" {
		if theme, err := LoadThemeFromFile(path); err == nil {
			return theme
		}
	}

	if name := savedThemeName(); name != "" {
		if theme, err := LoadThemeFromFile(themePath(name + ".toml")); err == nil {
			return theme
		}
	}

	if theme, err := LoadThemeFromFile(themePath("colors.toml")); err == nil {
		return theme
	}

	return DefaultTheme()
}

func themePath(file string) string {
	return filepath.Join(config.GlobalConfigDir(), "theme", file)
}

// savedThemeName reads the theme name from the preference store.
func savedThemeName() string {
	p, err := prefs.NewStore(config.GlobalConfigDir()).Load()
	if err != nil {
		return ""
	}
	return p.Theme
}

// NoColorTheme returns a theme with empty colors. Lipgloss treats
// empty strings as "no color", resulting in plain text output.
func NoColorTheme() Theme {
	empty := lipgloss.AdaptiveColor{Light: "", Dark: ""}
	return Theme{
		Primary:    empty,
		Secondary:  empty,
		Success:    empty,
		Warning:    empty,
		Error:      empty,
		Muted:      empty,
		Foreground: empty,
		Border:     empty,
	}
}

// LoadThemeFromFile parses a colors.toml file and returns a Theme.
func LoadThemeFromFile(path string) (Theme, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path from trusted config
	if err != nil {
		return Theme{}, err
	}
	return themeFromColors(parseColorsTOML(data)), nil
}

// parseColorsTOML parses a flat TOML file of key = "#hex" pairs. It is
// deliberately not a full TOML parser; theme files from terminal theme
// managers are flat key/value lists.
func parseColorsTOML(data []byte) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if idx := inlineCommentIndex(value); idx >= 0 {
			value = strings.TrimSpace(value[:idx])
		}
		value = strings.Trim(value, `"'`)
		if !isHexColor(value) {
			continue
		}
		result[key] = value
	}
	return result
}

// inlineCommentIndex returns the index of a # outside quotes, or -1.
func inlineCommentIndex(s string) int {
	var quote rune
	for i, c := range s {
		switch {
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && c == '#':
			return i
		}
	}
	return -1
}

func isHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

// themeFromColors maps terminal-theme color names onto Theme semantics.
// Terminal themes are typically dark, so parsed colors populate the
// Dark variants and Light falls back to the defaults.
func themeFromColors(colors map[string]string) Theme {
	defaults := DefaultTheme()

	pick := func(fallback string, keys ...string) string {
		for _, k := range keys {
			if v, ok := colors[k]; ok {
				return v
			}
		}
		return fallback
	}

	dark := func(fallback lipgloss.AdaptiveColor, keys ...string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: fallback.Light, Dark: pick(fallback.Dark, keys...)}
	}

	return Theme{
		Primary:    dark(defaults.Primary, "accent", "color4"),
		Secondary:  dark(defaults.Secondary, "color7"),
		Success:    dark(defaults.Success, "color2"),
		Warning:    dark(defaults.Warning, "color3"),
		Error:      dark(defaults.Error, "color1"),
		Muted:      dark(defaults.Muted, "color8", "color0"),
		Foreground: dark(defaults.Foreground, "foreground"),
		Border:     dark(defaults.Border, "color8", "color0"),
	}
}
