// Package colorutil holds the overlay palette shared by the canvas, the
// match highlight and the theme.
package colorutil

import "image/color"

// Overlay colors.
var (
	Selection  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Viewport   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Match      = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Background = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	Accent     = color.NRGBA{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF}
)

// WithAlpha returns c at alpha a, premultiplied for drawing into an
// *image.RGBA.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(a) / 255) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}

// Translucent returns c at alpha a without premultiplying, the form the
// theme expects.
func Translucent(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
