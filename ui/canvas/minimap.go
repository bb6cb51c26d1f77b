package canvas

import (
	"image"

	"image-processor/internal/session"
	"image-processor/internal/viewport"
	"image-processor/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
)

// Minimap shows a thumbnail of the session image with the part visible in
// an ImageCanvas outlined. Tapping or dragging on it scrolls the canvas.
type Minimap struct {
	widget.BaseWidget

	canvas *ImageCanvas
	model  *viewport.Minimap
	raster *fynecanvas.Raster
}

var _ fyne.Draggable = (*Minimap)(nil)

// NewMinimap creates a minimap following ic.
func NewMinimap(ic *ImageCanvas) *Minimap {
	m := &Minimap{
		canvas: ic,
		model:  viewport.NewMinimap(geometry.Size{}),
	}
	m.raster = fynecanvas.NewRaster(m.draw)
	m.ExtendBaseWidget(m)

	ic.OnViewChange(m.viewChanged)
	ic.session.On(session.EventImageChanged, func(interface{}) {
		if img := ic.session.Current(); img != nil {
			m.model.SetImage(img.Bounds().Dx(), img.Bounds().Dy())
		} else {
			m.model.SetImage(0, 0)
		}
		m.raster.Refresh()
	})
	return m
}

// Rect returns the outlined rectangle in minimap coordinates.
func (m *Minimap) Rect() geometry.Rect {
	return m.model.Rect()
}

func (m *Minimap) viewChanged(st viewport.ScrollState) {
	img := m.canvas.session.Current()
	if img == nil {
		return
	}
	if _, changed := m.model.Update(st, img.Bounds().Dx(), img.Bounds().Dy(), m.canvas.session.ZoomLevel()); changed {
		m.raster.Refresh()
	}
}

// Tapped scrolls the canvas to centre the tapped point.
func (m *Minimap) Tapped(ev *fyne.PointEvent) {
	m.seek(ev.Position)
}

func (m *Minimap) Dragged(ev *fyne.DragEvent) {
	m.seek(ev.Position)
}

func (m *Minimap) DragEnd() {}

func (m *Minimap) seek(pos fyne.Position) {
	ratio, ok := m.model.RatioAt(geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)})
	if !ok {
		return
	}
	target := m.canvas.session.ViewportDragged(ratio, m.canvas.ScrollState())
	m.canvas.ScrollTo(target)
}

func (m *Minimap) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(output, output.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)

	img := m.canvas.session.Current()
	size := m.model.Size()
	if img == nil || size.Width <= 0 {
		return output
	}
	k := float64(w) / size.Width
	xdraw.ApproxBiLinear.Scale(output, scaleRect(m.model.Letterbox(), k), img, img.Bounds(), xdraw.Over, nil)
	drawRectOutline(output, scaleRect(m.model.Rect(), k), viewColor, 2)
	return output
}

func (m *Minimap) MinSize() fyne.Size {
	return fyne.NewSize(160, 120)
}

func (m *Minimap) Resize(size fyne.Size) {
	m.model.Resize(geometry.Size{Width: float64(size.Width), Height: float64(size.Height)})
	m.BaseWidget.Resize(size)
}

// CreateRenderer implements fyne.Widget.
func (m *Minimap) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.raster)
}
