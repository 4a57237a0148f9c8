package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name    string
	Bodies  []lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// Available themes
var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Bodies:  []lipgloss.Color{"#ffff00", "#00ffff", "#ff00ff", "#00ff88", "#ff8800", "#8888ff"},
		Text:    "#ffffff",
		Muted:   "#666666",
		Accent:  "#00ffff",
		Success: "#00ff00",
		Warning: "#ff8800",
		Error:   "#ff0000",
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Bodies:  []lipgloss.Color{"#88ff88", "#00ff00", "#00cc00", "#ccffcc", "#44aa44", "#008800"},
		Text:    "#00ff00",
		Muted:   "#005500",
		Accent:  "#88ff88",
		Success: "#88ff88",
		Warning: "#ffff00",
		Error:   "#ff0000",
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Bodies:  []lipgloss.Color{"#ffd700", "#00a8cc", "#e0f0ff", "#00ff88", "#ff9ff3", "#0077be"},
		Text:    "#e0f0ff",
		Muted:   "#4488aa",
		Accent:  "#ffd700",
		Success: "#00ff88",
		Warning: "#ffcc00",
		Error:   "#ff4444",
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Palette returns one foreground style per body color.
func (t Theme) Palette() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(t.Bodies))
	for i, c := range t.Bodies {
		styles[i] = lipgloss.NewStyle().Foreground(c)
	}
	return styles
}

// BodyStyle returns the style of body i, wrapping around the palette.
func (t Theme) BodyStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Bodies[i%len(t.Bodies)]).Bold(true)
}
