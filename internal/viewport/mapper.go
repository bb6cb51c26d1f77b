// Package viewport maps between the display surface and image pixels, tracks
// the zoom level, and keeps the minimap rectangle in step with scrolling.
package viewport

import (
	"image-processor/pkg/geometry"
)

// Geometry describes how an image is fitted into its control. The image is
// scaled by BaseScale and centred, leaving letterbox bars on one axis.
//
// Zoom is applied by the display separately and is not part of Geometry.
type Geometry struct {
	ControlWidth  float64
	ControlHeight float64
	ImageWidth    int
	ImageHeight   int
	BaseScale     float64
}

// NewGeometry computes the fit-to-control scale. With no image or a zero-size
// control the scale is 1.0 and every mapping degrades to zero.
func NewGeometry(controlW, controlH float64, imageW, imageH int) Geometry {
	g := Geometry{
		ControlWidth:  controlW,
		ControlHeight: controlH,
		ImageWidth:    imageW,
		ImageHeight:   imageH,
		BaseScale:     1.0,
	}
	if imageW <= 0 || imageH <= 0 || controlW <= 0 || controlH <= 0 {
		return g
	}
	sx := controlW / float64(imageW)
	sy := controlH / float64(imageH)
	g.BaseScale = sx
	if sy < sx {
		g.BaseScale = sy
	}
	return g
}

// Valid reports whether the geometry can map coordinates.
func (g Geometry) Valid() bool {
	return g.ImageWidth > 0 && g.ImageHeight > 0 &&
		g.ControlWidth > 0 && g.ControlHeight > 0 && g.BaseScale > 0
}

// Offset returns the letterbox margins of the fitted image.
func (g Geometry) Offset() (x, y float64) {
	x = (g.ControlWidth - float64(g.ImageWidth)*g.BaseScale) / 2
	y = (g.ControlHeight - float64(g.ImageHeight)*g.BaseScale) / 2
	return x, y
}

// imageToDisplay is the affine map from pixel space into control space.
func (g Geometry) imageToDisplay() geometry.AffineTransform {
	ox, oy := g.Offset()
	return geometry.Translation(ox, oy).Compose(geometry.Scale(g.BaseScale, g.BaseScale))
}

// ImageBounds returns the image as a rectangle in display space.
func (g Geometry) ImageBounds() geometry.Rect {
	if !g.Valid() {
		return geometry.Rect{}
	}
	return g.imageToDisplay().ApplyRect(geometry.Rect{
		Width:  float64(g.ImageWidth),
		Height: float64(g.ImageHeight),
	})
}

// ToImage maps a display point into pixel space, clamped to the image.
func (g Geometry) ToImage(p geometry.Point2D) geometry.Point2D {
	if !g.Valid() {
		return geometry.Point2D{}
	}
	inv, ok := g.imageToDisplay().Inverse()
	if !ok {
		return geometry.Point2D{}
	}
	q := inv.Apply(p)
	return geometry.Point2D{
		X: geometry.Clamp(q.X, 0, float64(g.ImageWidth)),
		Y: geometry.Clamp(q.Y, 0, float64(g.ImageHeight)),
	}
}

// ToDisplay maps a pixel-space point into display space. It is not clamped.
func (g Geometry) ToDisplay(p geometry.Point2D) geometry.Point2D {
	if !g.Valid() {
		return geometry.Point2D{}
	}
	return g.imageToDisplay().Apply(p)
}

// ToDisplayRect maps a pixel rectangle into display space.
func (g Geometry) ToDisplayRect(r geometry.Rect) geometry.Rect {
	if !g.Valid() {
		return geometry.Rect{}
	}
	return g.imageToDisplay().ApplyRect(r)
}

// ToImageRect maps a display rectangle into pixel space. Each corner is
// clamped on its own, so a rectangle hanging off the image is trimmed.
func (g Geometry) ToImageRect(r geometry.Rect) geometry.Rect {
	if !g.Valid() {
		return geometry.Rect{}
	}
	return geometry.FromCorners(g.ToImage(r.TopLeft()), g.ToImage(r.BottomRight()))
}
