//go:build gui

package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// overlayTheme pins the dark variant regardless of the system setting.
// Everything but the two base colors falls through to the default.
type overlayTheme struct {
	fyne.Theme
}

func newOverlayTheme() fyne.Theme {
	return &overlayTheme{Theme: theme.DefaultTheme()}
}

func (o *overlayTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{18, 18, 18, 255}
	case theme.ColorNameForeground:
		return color.RGBA{200, 200, 200, 255}
	}
	return o.Theme.Color(name, theme.VariantDark)
}
