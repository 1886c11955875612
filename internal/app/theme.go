package app

import (
	"image/color"

	"constellation/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// ConstellationTheme is a dark theme tinted with the chart's accent color.
type ConstellationTheme struct{}

var _ fyne.Theme = (*ConstellationTheme)(nil)

func (t *ConstellationTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorutil.Glow
	case theme.ColorNameBackground:
		return colorutil.Sky
	case theme.ColorNameHeaderBackground, theme.ColorNameMenuBackground, theme.ColorNameOverlayBackground:
		return color.NRGBA{R: 0x1d, G: 0x1a, B: 0x2b, A: 0xff}
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(colorutil.Glow, 0.5)
	case theme.ColorNameHover:
		return colorutil.WithAlpha(colorutil.Highlight, 0.12)
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *ConstellationTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *ConstellationTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *ConstellationTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameHeadingText:
		return 22
	default:
		return theme.DefaultTheme().Size(name)
	}
}
