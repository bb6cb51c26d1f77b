// Package session holds the state of one image-editing session: the
// current image, its history, the selection, the zoom and the transform
// cache. Every mutation goes through a Session method and is announced on
// the session's event bus.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"image-processor/internal/clipboard"
	"image-processor/internal/engine"
	"image-processor/internal/history"
	imgutil "image-processor/internal/image"
	"image-processor/internal/logging"
	"image-processor/internal/oplog"
	"image-processor/internal/selection"
	"image-processor/internal/spectrum"
	"image-processor/internal/viewport"
	"image-processor/pkg/geometry"
)

// Op computes a new image from src. It must not modify src.
type Op func(ctx context.Context, src *image.RGBA) (*image.RGBA, error)

// Session is safe for concurrent use. Listeners run outside the session
// lock and may call back into the session.
type Session struct {
	mu  sync.Mutex
	bus bus

	engine     engine.Engine
	clipboard  clipboard.Service
	log        *oplog.Log
	history    *history.History
	selection  *selection.State
	zoom       *viewport.Zoom
	cache      spectrum.Cache
	params     engine.Params
	scheduler  Scheduler
	recordPath func(path string)

	// current is what the user sees; loaded follows it. original is the
	// image as it was read from disk.
	current  *image.RGBA
	loaded   *image.RGBA
	original *image.RGBA

	path   string
	format string
	dpi    float64

	control     geometry.Size
	pointer     geometry.Point2D
	busy        bool
	lastElapsed time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithClipboard sets the clipboard used by cut, copy and paste.
func WithClipboard(c clipboard.Service) Option {
	return func(s *Session) { s.clipboard = c }
}

// WithHistory replaces the default unbounded history.
func WithHistory(h *history.History) Option {
	return func(s *Session) { s.history = h }
}

// WithLog sets the operation log.
func WithLog(l *oplog.Log) Option {
	return func(s *Session) { s.log = l }
}

// WithParams sets the filter parameters.
func WithParams(p engine.Params) Option {
	return func(s *Session) { s.params = p }
}

// WithScheduler sets where asynchronous continuations run.
func WithScheduler(sc Scheduler) Option {
	return func(s *Session) { s.scheduler = sc }
}

// WithPathRecorder registers fn to persist the path of every loaded file.
func WithPathRecorder(fn func(path string)) Option {
	return func(s *Session) { s.recordPath = fn }
}

// WithLastPath seeds the path Reload reads from.
func WithLastPath(path string) Option {
	return func(s *Session) { s.path = path }
}

// New creates a session with no image.
func New(e engine.Engine, opts ...Option) *Session {
	s := &Session{
		engine:    e,
		clipboard: clipboard.NewMemory(),
		log:       oplog.New(),
		history:   history.New(),
		selection: selection.New(),
		zoom:      viewport.NewZoom(),
		params:    engine.DefaultParams(),
		scheduler: Immediate{},
		dpi:       imgutil.DefaultDPI,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// On registers a listener for event.
func (s *Session) On(event EventType, listener EventListener) {
	s.bus.on(event, listener)
}

func (s *Session) flush(evts events) {
	for _, e := range evts {
		s.bus.emit(e.typ, e.data)
	}
}

// Load replaces the session image with doc. Zoom, selection and the
// transform cache are reset; history is kept.
func (s *Session) Load(doc *imgutil.Document) error {
	if doc == nil || doc.Image == nil {
		return errors.New("no image in document")
	}
	var evts events
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	img := doc.Image
	s.current, s.loaded, s.original = img, img, img
	if doc.Path != "" {
		s.path = doc.Path
	}
	s.format, s.dpi = doc.Format, doc.DPI
	s.zoom.Reset()
	s.selection.Clear()
	s.cache.Clear()
	s.engine.ClearTransformData()
	record, path := s.recordPath, doc.Path

	evts.add(EventImageChanged, img)
	evts.add(EventZoomChanged, s.zoom.Level())
	evts.add(EventSelectionChanged, geometry.Rect{})
	evts.add(EventTransformCacheChanged, false)
	s.mu.Unlock()

	logging.Logger().Info("image loaded",
		"path", doc.Path,
		"width", doc.Width(),
		"height", doc.Height(),
		"format", doc.Format)
	if record != nil && path != "" {
		record(path)
	}
	s.flush(evts)
	return nil
}

// LoadFile reads path and loads it.
func (s *Session) LoadFile(path string) error {
	doc, err := imgutil.Load(path)
	if err != nil {
		return err
	}
	return s.Load(doc)
}

// LoadAsync reads path on a goroutine and loads it through the scheduler.
// done receives the outcome.
func (s *Session) LoadAsync(path string, done func(error)) {
	go func() {
		doc, err := imgutil.Load(path)
		s.scheduler.Post(func() {
			if err == nil {
				err = s.Load(doc)
			}
			if err != nil {
				logging.Logger().Warn("load failed", "path", path, "err", err)
			}
			if done != nil {
				done(err)
			}
		})
	}()
}

// Reload loads the last path again. A missing file is ignored.
func (s *Session) Reload() error {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()
	if !imgutil.Exists(path) {
		return nil
	}
	return s.LoadFile(path)
}

// Save writes the current image to path.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	img := s.current
	s.mu.Unlock()
	if img == nil {
		return precondition("Save", ErrNoImage)
	}
	return imgutil.Save(img, path)
}

// SaveAsync writes the current image on a goroutine. done receives the
// outcome through the scheduler.
func (s *Session) SaveAsync(path string, done func(error)) error {
	s.mu.Lock()
	img := s.current
	s.mu.Unlock()
	if img == nil {
		return precondition("Save", ErrNoImage)
	}
	go func() {
		err := imgutil.Save(img, path)
		s.scheduler.Post(func() {
			if done != nil {
				done(err)
			}
		})
	}()
	return nil
}

// DeleteImage drops the image, the selection and the transform state and
// resets the zoom. History is kept.
func (s *Session) DeleteImage() error {
	var evts events
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.current, s.loaded, s.original = nil, nil, nil
	s.selection.Clear()
	s.cache.Clear()
	s.engine.ClearTransformData()
	s.zoom.Reset()
	s.pointer = geometry.Point2D{}

	evts.add(EventImageChanged, (*image.RGBA)(nil))
	evts.add(EventSelectionChanged, geometry.Rect{})
	evts.add(EventTransformCacheChanged, false)
	evts.add(EventZoomChanged, s.zoom.Level())
	s.mu.Unlock()
	s.flush(evts)
	return nil
}

// Current returns the image on display. Callers must not modify it.
func (s *Session) Current() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Original returns the image as it was loaded from disk.
func (s *Session) Original() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

// HasImage reports whether an image is loaded.
func (s *Session) HasImage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Path returns the path Reload reads from.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Busy reports whether a mutation is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Params returns the filter parameters.
func (s *Session) Params() engine.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams validates and stores new filter parameters.
func (s *Session) SetParams(p engine.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return nil
}

// Log returns the operation log.
func (s *Session) Log() *oplog.Log {
	return s.log
}

// Info describes the current image for the analysis report.
func (s *Session) Info() oplog.ImageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := oplog.ImageInfo{DPI: s.dpi, Format: s.format}
	if s.current != nil {
		info.Width = s.current.Bounds().Dx()
		info.Height = s.current.Bounds().Dy()
	}
	return info
}

// Report renders the analysis report for the current image.
func (s *Session) Report() (string, error) {
	if !s.HasImage() {
		return "", precondition("Report", ErrNoImage)
	}
	return oplog.Report(s.Info(), s.log.Entries()), nil
}

// HistoryState returns undo and redo availability.
func (s *Session) HistoryState() HistoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyStateLocked()
}

func (s *Session) historyStateLocked() HistoryState {
	return HistoryState{CanUndo: s.history.CanUndo(), CanRedo: s.history.CanRedo()}
}

// TransformReady reports whether an inverse transform may run.
func (s *Session) TransformReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.HasResult()
}

// Resize records the size of the display control.
func (s *Session) Resize(size geometry.Size) {
	s.mu.Lock()
	s.control = size
	s.mu.Unlock()
}

// Geometry returns the current display mapping.
func (s *Session) Geometry() viewport.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometryLocked()
}

func (s *Session) geometryLocked() viewport.Geometry {
	w, h := 0, 0
	if s.current != nil {
		w, h = s.current.Bounds().Dx(), s.current.Bounds().Dy()
	}
	return viewport.NewGeometry(s.control.Width, s.control.Height, w, h)
}

// Selection returns the selection rectangle in display coordinates and
// whether it is shown.
func (s *Session) Selection() (geometry.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Rect(), s.selection.Visible()
}

// HasValidSelection reports whether cut, copy and delete can run.
func (s *Session) HasValidSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.selection.Valid()
}

// PointerDown starts a selection drag at p.
func (s *Session) PointerDown(p geometry.Point2D) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.selection.Start(p, s.geometryLocked())
	r := s.selection.Rect()
	s.mu.Unlock()
	s.bus.emit(EventSelectionChanged, r)
}

// PointerMove tracks the pointer and stretches an active drag. It returns
// the image coordinates under p.
func (s *Session) PointerMove(p geometry.Point2D) geometry.Point2D {
	s.mu.Lock()
	g := s.geometryLocked()
	s.pointer = g.ToImage(p)
	pt := s.pointer
	dragging := s.selection.Active()
	if dragging {
		s.selection.Update(p, g)
	}
	r := s.selection.Rect()
	s.mu.Unlock()
	if dragging {
		s.bus.emit(EventSelectionChanged, r)
	}
	return pt
}

// PointerUp ends a drag.
func (s *Session) PointerUp() {
	s.mu.Lock()
	if !s.selection.Active() {
		s.mu.Unlock()
		return
	}
	s.selection.End()
	r := s.selection.Rect()
	s.mu.Unlock()
	s.bus.emit(EventSelectionChanged, r)
}

// PointerLeave resets the pointer coordinates.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	s.pointer = geometry.Point2D{}
	s.mu.Unlock()
}

// ClearSelection hides the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selection.Clear()
	s.mu.Unlock()
	s.bus.emit(EventSelectionChanged, geometry.Rect{})
}

// Coordinates returns the image position last reported by PointerMove.
func (s *Session) Coordinates() geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer
}

// CoordinatesText formats Coordinates for the status bar.
func (s *Session) CoordinatesText() string {
	p := s.Coordinates()
	return fmt.Sprintf("X=%.0f, Y=%.0f", p.X, p.Y)
}

// LastElapsed returns the duration of the last logged operation.
func (s *Session) LastElapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastElapsed
}

// ProcessTimeText formats LastElapsed for the status bar.
func (s *Session) ProcessTimeText() string {
	return fmt.Sprintf("Process Time: %d ms", s.LastElapsed().Milliseconds())
}

// ZoomLevel returns the zoom level.
func (s *Session) ZoomLevel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom.Level()
}

// ZoomText formats the zoom level, e.g. "150%".
func (s *Session) ZoomText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom.Percent()
}

// ZoomIn steps the zoom up.
func (s *Session) ZoomIn() float64 {
	return s.changeZoom(func(z *viewport.Zoom) float64 { return z.In() })
}

// ZoomOut steps the zoom down.
func (s *Session) ZoomOut() float64 {
	return s.changeZoom(func(z *viewport.Zoom) float64 { return z.Out() })
}

// ResetZoom returns to 100%.
func (s *Session) ResetZoom() float64 {
	return s.changeZoom(func(z *viewport.Zoom) float64 { z.Reset(); return z.Level() })
}

// SetZoom sets a clamped zoom level.
func (s *Session) SetZoom(level float64) float64 {
	return s.changeZoom(func(z *viewport.Zoom) float64 { return z.Set(level) })
}

func (s *Session) changeZoom(fn func(*viewport.Zoom) float64) float64 {
	s.mu.Lock()
	level := fn(s.zoom)
	s.mu.Unlock()
	s.bus.emit(EventZoomChanged, level)
	return level
}

// DoubleClickZoom toggles the double-click zoom around p, given in
// unzoomed content coordinates, and returns the scroll offset that centres
// p in a viewport of the given size.
func (s *Session) DoubleClickZoom(p geometry.Point2D, vp geometry.Size) geometry.Point2D {
	level := s.changeZoom(func(z *viewport.Zoom) float64 { return z.ToggleDoubleClick(p) })
	return viewport.CenterOffset(p, level, vp)
}

// ViewportDragged converts a minimap ratio into a scroll offset and
// announces it with EventViewportDragged.
func (s *Session) ViewportDragged(ratio geometry.Point2D, scroll viewport.ScrollState) geometry.Point2D {
	target := viewport.ScrollTarget(ratio, scroll)
	s.bus.emit(EventViewportDragged, target)
	return target
}
