package canvas

import (
	"image"
	"image/color"

	"image-processor/pkg/colorutil"
)

var (
	selectionColor = colorutil.Selection
	viewColor      = colorutil.Viewport
)

// drawSelectionRect draws r as a dashed yellow outline.
func drawSelectionRect(output *image.RGBA, r image.Rectangle) {
	if r.Empty() {
		return
	}
	x1, y1 := r.Min.X, r.Min.Y
	x2, y2 := r.Max.X-1, r.Max.Y-1

	for x := x1; x <= x2; x++ {
		if (x+y1)%4 < 2 {
			setClipped(output, x, y1, selectionColor)
		}
		if (x+y2)%4 < 2 {
			setClipped(output, x, y2, selectionColor)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%4 < 2 {
			setClipped(output, x1, y, selectionColor)
		}
		if (x2+y)%4 < 2 {
			setClipped(output, x2, y, selectionColor)
		}
	}
}

// drawRectOutline draws a solid outline of the given thickness inside r.
func drawRectOutline(output *image.RGBA, r image.Rectangle, col color.RGBA, thickness int) {
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setClipped(output, x, r.Min.Y+t, col)
			setClipped(output, x, r.Max.Y-1-t, col)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setClipped(output, r.Min.X+t, y, col)
			setClipped(output, r.Max.X-1-t, y, col)
		}
	}
}

func setClipped(output *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(output.Bounds()) {
		output.SetRGBA(x, y, col)
	}
}
