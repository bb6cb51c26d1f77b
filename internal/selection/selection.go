// Package selection implements the rubber-band selection used by the editor.
package selection

import (
	"image-processor/internal/viewport"
	"image-processor/pkg/geometry"
)

// MinSize is the smallest side, in display units, a dragged selection may
// have and still be kept.
const MinSize = 5

// Phase is the state of the selection machine.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Committed
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	default:
		return "idle"
	}
}

// State tracks one rectangular selection in display coordinates.
type State struct {
	phase   Phase
	rect    geometry.Rect
	anchor  geometry.Point2D
	visible bool
}

// New returns an idle, invisible selection.
func New() *State {
	return &State{}
}

// snap maps p into the image and back, pinning it inside the letterbox.
func snap(p geometry.Point2D, g viewport.Geometry) geometry.Point2D {
	return g.ToDisplay(g.ToImage(p))
}

// Start begins a drag at p.
func (s *State) Start(p geometry.Point2D, g viewport.Geometry) {
	s.anchor = snap(p, g)
	s.rect = geometry.Rect{X: s.anchor.X, Y: s.anchor.Y}
	s.phase = Dragging
	s.visible = true
}

// Update stretches the selection to p. Ignored unless dragging.
func (s *State) Update(p geometry.Point2D, g viewport.Geometry) {
	if s.phase != Dragging {
		return
	}
	s.rect = geometry.FromCorners(s.anchor, snap(p, g))
}

// End finishes a drag. Selections smaller than MinSize on either side are
// discarded.
func (s *State) End() {
	if s.phase != Dragging {
		return
	}
	if s.rect.Width < MinSize || s.rect.Height < MinSize {
		s.Clear()
		return
	}
	s.phase = Committed
}

// Set commits r directly, as after a paste or a template match.
func (s *State) Set(r geometry.Rect) {
	if r.IsEmpty() {
		s.Clear()
		return
	}
	s.rect = r
	s.anchor = r.TopLeft()
	s.phase = Committed
	s.visible = true
}

// Clear resets to idle regardless of the current phase.
func (s *State) Clear() {
	s.phase = Idle
	s.rect = geometry.Rect{}
	s.anchor = geometry.Point2D{}
	s.visible = false
}

// Rect returns the selection rectangle in display coordinates.
func (s *State) Rect() geometry.Rect {
	return s.rect
}

// Visible reports whether the rectangle should be drawn.
func (s *State) Visible() bool {
	return s.visible
}

// Active reports whether a drag is in progress.
func (s *State) Active() bool {
	return s.phase == Dragging
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Valid reports whether the selection is large enough to cut, copy or
// delete. Both sides must exceed MinSize.
func (s *State) Valid() bool {
	return s.visible && s.rect.Width > MinSize && s.rect.Height > MinSize
}
