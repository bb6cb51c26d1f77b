package app

import (
	"image/color"

	"image-processor/pkg/colorutil"
	"image-processor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// EditorTheme is the default theme pinned to the variant chosen in the
// settings, with a blue accent and wide scrollbars.
type EditorTheme struct {
	Variant fyne.ThemeVariant
}

var _ fyne.Theme = (*EditorTheme)(nil)

// NewTheme returns the theme for a settings theme name. Unknown names get
// the dark variant.
func NewTheme(name string) *EditorTheme {
	if name == prefs.ThemeLight {
		return &EditorTheme{Variant: theme.VariantLight}
	}
	return &EditorTheme{Variant: theme.VariantDark}
}

func (t *EditorTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.Accent
	case theme.ColorNameSelection:
		return colorutil.Translucent(colorutil.Selection, 0x80)
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, t.Variant)
	}
}

func (t *EditorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *EditorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *EditorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16 // Wider scrollbar for easier grabbing
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
