// Package canvas provides the image view bound to an editing session: a
// zoomable, scrollable raster with rubber-band selection, and a minimap.
package canvas

import (
	"image"

	"image-processor/internal/session"
	"image-processor/internal/viewport"
	"image-processor/pkg/colorutil"
	"image-processor/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
)

var background = colorutil.Background

// ImageCanvas shows the current image of a session fitted into the visible
// area and scaled by the session zoom.
type ImageCanvas struct {
	widget.BaseWidget

	session *session.Session

	raster  *fynecanvas.Raster
	content *surface
	scroll  *zoomScroll

	// viewport is the last measured size of the visible area; the image is
	// fitted into it and the content is viewport * zoom.
	viewport    fyne.Size
	contentSize fyne.Size

	// Callbacks
	onPointer    func(p geometry.Point2D) // Image coordinates under the pointer
	onViewChange func(st viewport.ScrollState)
}

// zoomScroll wraps a scroll container but uses the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *ImageCanvas
}

func newZoomScroll(content fyne.CanvasObject, ic *ImageCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: ic}
	scroll.OnScrolled = func(fyne.Position) { ic.notifyView() }
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.session.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.session.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// surface is the scrolled content. It turns pointer input into session
// calls; positions are divided by the zoom before they reach the session.
type surface struct {
	widget.BaseWidget
	canvas *ImageCanvas
}

var (
	_ fyne.Draggable      = (*surface)(nil)
	_ fyne.DoubleTappable = (*surface)(nil)
	_ desktop.Mouseable   = (*surface)(nil)
	_ desktop.Hoverable   = (*surface)(nil)
)

func newSurface(ic *ImageCanvas) *surface {
	s := &surface{canvas: ic}
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.canvas.raster)
}

func (s *surface) MinSize() fyne.Size {
	return s.canvas.contentSize
}

func (s *surface) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.canvas.session.PointerDown(s.canvas.unzoom(ev.Position))
}

func (s *surface) MouseUp(*desktop.MouseEvent) {
	s.canvas.session.PointerUp()
}

func (s *surface) Dragged(ev *fyne.DragEvent) {
	s.canvas.pointerMoved(ev.Position)
}

func (s *surface) DragEnd() {
	s.canvas.session.PointerUp()
}

func (s *surface) MouseIn(ev *desktop.MouseEvent) {
	s.canvas.pointerMoved(ev.Position)
}

func (s *surface) MouseMoved(ev *desktop.MouseEvent) {
	s.canvas.pointerMoved(ev.Position)
}

func (s *surface) MouseOut() {
	s.canvas.session.PointerLeave()
	if s.canvas.onPointer != nil {
		s.canvas.onPointer(geometry.Point2D{})
	}
}

func (s *surface) DoubleTapped(ev *fyne.PointEvent) {
	ic := s.canvas
	if !ic.session.HasImage() {
		return
	}
	vp := geometry.Size{Width: float64(ic.viewport.Width), Height: float64(ic.viewport.Height)}
	offset := ic.session.DoubleClickZoom(ic.unzoom(ev.Position), vp)
	ic.ScrollTo(offset)
}

// NewImageCanvas creates a canvas for s and subscribes it to the session
// events that change what it shows.
func NewImageCanvas(s *session.Session) *ImageCanvas {
	ic := &ImageCanvas{
		session:     s,
		contentSize: fyne.NewSize(400, 300),
	}
	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels
	ic.content = newSurface(ic)
	ic.scroll = newZoomScroll(ic.content, ic)
	ic.ExtendBaseWidget(ic)

	s.On(session.EventImageChanged, func(interface{}) { ic.updateContentSize() })
	s.On(session.EventZoomChanged, func(interface{}) { ic.updateContentSize() })
	s.On(session.EventSelectionChanged, func(interface{}) { ic.raster.Refresh() })
	return ic
}

// OnPointer sets a callback receiving the image coordinates under the
// pointer. It receives the origin when the pointer leaves.
func (ic *ImageCanvas) OnPointer(callback func(p geometry.Point2D)) {
	ic.onPointer = callback
}

// OnViewChange sets a callback for scroll, zoom and resize changes.
func (ic *ImageCanvas) OnViewChange(callback func(st viewport.ScrollState)) {
	ic.onViewChange = callback
}

// ScrollState returns the current scroll offset and extents.
func (ic *ImageCanvas) ScrollState() viewport.ScrollState {
	off := ic.scroll.scroll.Offset
	return viewport.ScrollState{
		Offset:   geometry.Point2D{X: float64(off.X), Y: float64(off.Y)},
		Extent:   geometry.Size{Width: float64(ic.contentSize.Width), Height: float64(ic.contentSize.Height)},
		Viewport: geometry.Size{Width: float64(ic.viewport.Width), Height: float64(ic.viewport.Height)},
	}
}

// ScrollTo moves the visible area so its top-left corner is at p, in
// zoomed content coordinates.
func (ic *ImageCanvas) ScrollTo(p geometry.Point2D) {
	ic.scroll.scroll.Offset = fyne.NewPos(float32(p.X), float32(p.Y))
	ic.scroll.scroll.Refresh()
	ic.notifyView()
}

// Refresh redraws the image and selection.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

func (ic *ImageCanvas) unzoom(p fyne.Position) geometry.Point2D {
	zoom := ic.session.ZoomLevel()
	return geometry.Point2D{X: float64(p.X) / zoom, Y: float64(p.Y) / zoom}
}

func (ic *ImageCanvas) pointerMoved(p fyne.Position) {
	pt := ic.session.PointerMove(ic.unzoom(p))
	if ic.onPointer != nil {
		ic.onPointer(pt)
	}
}

func (ic *ImageCanvas) notifyView() {
	if ic.onViewChange != nil {
		ic.onViewChange(ic.ScrollState())
	}
}

// setViewport records the visible size and passes it to the session as
// the control the image is fitted into.
func (ic *ImageCanvas) setViewport(size fyne.Size) {
	if size == ic.viewport {
		return
	}
	ic.viewport = size
	ic.session.Resize(geometry.Size{Width: float64(size.Width), Height: float64(size.Height)})
	ic.updateContentSize()
}

// updateContentSize sizes the scrolled content to viewport * zoom.
func (ic *ImageCanvas) updateContentSize() {
	zoom := float32(ic.session.ZoomLevel())
	if ic.viewport.Width > 0 && ic.viewport.Height > 0 {
		ic.contentSize = fyne.NewSize(ic.viewport.Width*zoom, ic.viewport.Height*zoom)
	}
	ic.content.Resize(ic.contentSize)
	ic.content.Refresh()
	ic.scroll.scroll.Refresh()
	ic.raster.Refresh()
	ic.notifyView()
}

// draw renders the fitted image and selection at content resolution.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(output, output.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)

	img := ic.session.Current()
	if img == nil || ic.contentSize.Width <= 0 {
		return output
	}

	// The raster may be drawn at a different pixel density than the
	// content's logical size.
	scale := float64(w) / float64(ic.contentSize.Width)
	zoom := ic.session.ZoomLevel() * scale

	bounds := scaleRect(ic.session.Geometry().ImageBounds(), zoom)
	xdraw.ApproxBiLinear.Scale(output, bounds, img, img.Bounds(), xdraw.Over, nil)

	if r, visible := ic.session.Selection(); visible {
		drawSelectionRect(output, scaleRect(r, zoom))
	}
	return output
}

func scaleRect(r geometry.Rect, k float64) image.Rectangle {
	return geometry.Rect{X: r.X * k, Y: r.Y * k, Width: r.Width * k, Height: r.Height * k}.ImageRect()
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &imageCanvasRenderer{canvas: ic}
}

type imageCanvasRenderer struct {
	canvas *ImageCanvas
}

func (r *imageCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
	r.canvas.setViewport(size)
}

func (r *imageCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *imageCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *imageCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *imageCanvasRenderer) Destroy() {}
