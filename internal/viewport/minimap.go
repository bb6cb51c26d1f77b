package viewport

import (
	"math"
	"time"

	"image-processor/pkg/geometry"
)

// MinimapThrottle is the minimum spacing between two rectangle updates.
const MinimapThrottle = 16 * time.Millisecond

// ScrollState is a snapshot of a scroll container: the offset of the
// visible window, the zoomed content extent and the visible window size.
type ScrollState struct {
	Offset   geometry.Point2D
	Extent   geometry.Size
	Viewport geometry.Size
}

// Minimap keeps a rectangle inside a small overview control that mirrors
// which part of the zoomed image is visible in the main viewport.
type Minimap struct {
	size geometry.Size

	imageW, imageH int
	rect           geometry.Rect

	now        func() time.Time
	lastUpdate time.Time
}

// NewMinimap creates a minimap for a control of the given size.
func NewMinimap(size geometry.Size) *Minimap {
	return &Minimap{size: size, now: time.Now}
}

// SetClock replaces the time source used for throttling.
func (m *Minimap) SetClock(now func() time.Time) {
	m.now = now
}

// Resize sets the measured size of the minimap control.
func (m *Minimap) Resize(size geometry.Size) {
	m.size = size
}

// Size returns the measured size of the minimap control.
func (m *Minimap) Size() geometry.Size {
	return m.size
}

// Rect returns the last good viewport rectangle in minimap coordinates.
func (m *Minimap) Rect() geometry.Rect {
	return m.rect
}

// SetImage records the image dimensions used for letterboxing clicks.
func (m *Minimap) SetImage(w, h int) {
	m.imageW, m.imageH = w, h
}

// Letterbox returns where an image of the recorded size is drawn inside
// the minimap when its aspect ratio is preserved.
func (m *Minimap) Letterbox() geometry.Rect {
	return letterbox(m.size, float64(m.imageW), float64(m.imageH))
}

func letterbox(area geometry.Size, imageW, imageH float64) geometry.Rect {
	if area.IsZero() || imageW <= 0 || imageH <= 0 {
		return geometry.Rect{}
	}
	imageAspect := imageW / imageH
	areaAspect := area.Width / area.Height

	if imageAspect > areaAspect {
		h := area.Width / imageAspect
		return geometry.Rect{Y: (area.Height - h) / 2, Width: area.Width, Height: h}
	}
	w := area.Height * imageAspect
	return geometry.Rect{X: (area.Width - w) / 2, Width: w, Height: area.Height}
}

// Update recomputes the viewport rectangle. It returns the rectangle and
// whether it changed; throttled or degenerate calls keep the last one.
func (m *Minimap) Update(scroll ScrollState, imageW, imageH int, zoom float64) (geometry.Rect, bool) {
	now := m.now()
	if !m.lastUpdate.IsZero() && now.Sub(m.lastUpdate) < MinimapThrottle {
		return m.rect, false
	}
	m.lastUpdate = now

	if imageW <= 0 || imageH <= 0 || m.size.IsZero() || zoom <= 0 {
		return m.rect, false
	}
	m.imageW, m.imageH = imageW, imageH

	box := m.Letterbox()

	actualW := scroll.Extent.Width / zoom
	actualH := scroll.Extent.Height / zoom
	if actualW == 0 || actualH == 0 {
		return m.rect, false
	}

	viewRatioW := scroll.Viewport.Width / (actualW * zoom)
	viewRatioH := scroll.Viewport.Height / (actualH * zoom)
	scrollRatioX := scroll.Offset.X / (scroll.Extent.Width - scroll.Viewport.Width + 0.001)
	scrollRatioY := scroll.Offset.Y / (scroll.Extent.Height - scroll.Viewport.Height + 0.001)

	for _, v := range []float64{viewRatioW, viewRatioH, scrollRatioX, scrollRatioY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return m.rect, false
		}
	}

	w := box.Width * viewRatioW
	h := box.Height * viewRatioH
	x := box.X + (box.Width-w)*scrollRatioX
	y := box.Y + (box.Height-h)*scrollRatioY

	// Size first, then position, so the rectangle always fits the letterbox.
	// The one unit floor gives way to a letterbox thinner than that.
	w = math.Max(math.Min(1, box.Width), math.Min(w, box.Width))
	h = math.Max(math.Min(1, box.Height), math.Min(h, box.Height))
	x = geometry.Clamp(x, box.X, box.X+box.Width-w)
	y = geometry.Clamp(y, box.Y, box.Y+box.Height-h)

	m.rect = geometry.Rect{X: x, Y: y, Width: w, Height: h}
	return m.rect, true
}

// RatioAt converts a point on the minimap into a position within the image,
// normalised to [0,1] on both axes. Points outside the letterbox are clamped.
func (m *Minimap) RatioAt(p geometry.Point2D) (geometry.Point2D, bool) {
	box := m.Letterbox()
	if box.IsEmpty() {
		return geometry.Point2D{}, false
	}
	x := geometry.Clamp(p.X, box.X, box.X+box.Width)
	y := geometry.Clamp(p.Y, box.Y, box.Y+box.Height)
	return geometry.Point2D{
		X: (x - box.X) / box.Width,
		Y: (y - box.Y) / box.Height,
	}, true
}

// ScrollTarget converts a minimap ratio into the scroll offset that centres
// that point in the viewport.
func ScrollTarget(ratio geometry.Point2D, scroll ScrollState) geometry.Point2D {
	maxX := math.Max(0, scroll.Extent.Width-scroll.Viewport.Width)
	maxY := math.Max(0, scroll.Extent.Height-scroll.Viewport.Height)
	return geometry.Point2D{
		X: geometry.Clamp(ratio.X*scroll.Extent.Width-scroll.Viewport.Width/2, 0, maxX),
		Y: geometry.Clamp(ratio.Y*scroll.Extent.Height-scroll.Viewport.Height/2, 0, maxY),
	}
}
