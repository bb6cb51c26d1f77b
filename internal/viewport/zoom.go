package viewport

import (
	"fmt"
	"math"

	"image-processor/pkg/geometry"
)

const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.1

	// DoubleClickFactor multiplies the zoom on the first double-click.
	DoubleClickFactor = 1.5
)

// Zoom holds the user zoom level, clamped to [MinZoom, MaxZoom], and the
// double-click toggle that restores the level it replaced.
type Zoom struct {
	level float64

	toggled     bool
	beforeLevel float64
	pivot       geometry.Point2D
}

// NewZoom returns a zoom at 1.0.
func NewZoom() *Zoom {
	return &Zoom{level: 1.0}
}

// Level returns the current zoom level.
func (z *Zoom) Level() float64 {
	return z.level
}

// Set stores a clamped zoom level and returns it.
func (z *Zoom) Set(level float64) float64 {
	if math.IsNaN(level) {
		return z.level
	}
	z.level = geometry.Clamp(level, MinZoom, MaxZoom)
	return z.level
}

// In steps the zoom up by ZoomStep.
func (z *Zoom) In() float64 {
	return z.Set(z.step(1))
}

// Out steps the zoom down by ZoomStep.
func (z *Zoom) Out() float64 {
	return z.Set(z.step(-1))
}

// step rounds to the step grid so repeated steps do not accumulate error.
func (z *Zoom) step(dir float64) float64 {
	return math.Round((z.level+dir*ZoomStep)*1000) / 1000
}

// Reset returns to 1.0 and drops any double-click state.
func (z *Zoom) Reset() {
	z.level = 1.0
	z.toggled = false
	z.beforeLevel = 0
	z.pivot = geometry.Point2D{}
}

// Toggled reports whether a double-click zoom is active.
func (z *Zoom) Toggled() bool {
	return z.toggled
}

// Pivot returns the point the last double-click zoomed around.
func (z *Zoom) Pivot() geometry.Point2D {
	return z.pivot
}

// ToggleDoubleClick zooms in around pivot, or restores the level from before
// the previous double-click. It returns the new level.
func (z *Zoom) ToggleDoubleClick(pivot geometry.Point2D) float64 {
	z.pivot = pivot
	if z.toggled {
		z.toggled = false
		return z.Set(z.beforeLevel)
	}
	z.beforeLevel = z.level
	z.toggled = true
	return z.Set(z.level * DoubleClickFactor)
}

// Percent formats the level the way the status bar shows it.
func (z *Zoom) Percent() string {
	return fmt.Sprintf("%.0f%%", z.level*100)
}

// CenterOffset returns the scroll offset that puts p (in unzoomed content
// coordinates) in the middle of a viewport of the given size.
func CenterOffset(p geometry.Point2D, zoom float64, viewport geometry.Size) geometry.Point2D {
	return geometry.Point2D{
		X: math.Max(0, p.X*zoom-viewport.Width/2),
		Y: math.Max(0, p.Y*zoom-viewport.Height/2),
	}
}
