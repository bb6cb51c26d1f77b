package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	imgutil "image-processor/internal/image"
	"image-processor/internal/logging"
	"image-processor/pkg/geometry"
)

const (
	opCut    = "Cut Selection"
	opCopy   = "Copy Selection"
	opPaste  = "Paste"
	opDelete = "Delete Selection"
)

// selectedRegionLocked returns the selection in image pixels.
func (s *Session) selectedRegionLocked(op string) (image.Rectangle, error) {
	if !s.selection.Valid() {
		return image.Rectangle{}, precondition(op, ErrNoSelection)
	}
	r := s.geometryLocked().ToImageRect(s.selection.Rect()).ImageRect()
	if r.Empty() {
		return image.Rectangle{}, precondition(op, ErrNoSelection)
	}
	return r, nil
}

// Cut copies the selection to the clipboard and clears it to transparent.
func (s *Session) Cut(ctx context.Context) error {
	return s.execute(ctx, s.cutJob())
}

// DeleteSelection clears the selection to transparent.
func (s *Session) DeleteSelection(ctx context.Context) error {
	return s.execute(ctx, s.deleteJob())
}

// Paste draws the clipboard image at the selection's top-left corner, or
// at the image origin without a selection. The pasted area becomes the
// new selection.
func (s *Session) Paste(ctx context.Context) error {
	return s.execute(ctx, s.pasteJob())
}

func (s *Session) cutJob() *job {
	var region image.Rectangle
	return &job{
		name: opCut,
		prepare: func() (err error) {
			region, err = s.selectedRegionLocked(opCut)
			return err
		},
		run: func(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
			crop, ok := imgutil.Crop(src, region)
			if !ok {
				return nil, errors.New("selection is outside the image")
			}
			if err := s.clipboard.SetImage(crop); err != nil {
				return nil, fmt.Errorf("failed to write clipboard: %w", err)
			}
			return imgutil.Clear(src, region), nil
		},
		commit: s.clearSelectionLocked,
	}
}

func (s *Session) deleteJob() *job {
	var region image.Rectangle
	return &job{
		name: opDelete,
		prepare: func() (err error) {
			region, err = s.selectedRegionLocked(opDelete)
			return err
		},
		run: func(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
			return imgutil.Clear(src, region), nil
		},
		commit: s.clearSelectionLocked,
	}
}

func (s *Session) pasteJob() *job {
	var (
		clip *image.RGBA
		at   image.Point
	)
	return &job{
		name: opPaste,
		prepare: func() error {
			img, err := s.clipboard.Image()
			if err != nil {
				logging.Logger().Warn("clipboard read failed", "err", err)
			}
			if err != nil || img == nil || img.Bounds().Empty() {
				return precondition(opPaste, ErrEmptyClipboard)
			}
			clip = img
			at = image.Point{}
			if s.selection.Valid() {
				p := s.geometryLocked().ToImage(s.selection.Rect().TopLeft())
				at = image.Pt(int(p.X), int(p.Y))
			}
			return nil
		},
		run: func(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
			return imgutil.Paste(src, clip, at), nil
		},
		commit: func(evts *events) {
			pasted := geometry.FromImageRect(image.Rectangle{Min: at, Max: at.Add(clip.Bounds().Size())})
			s.selection.Set(s.geometryLocked().ToDisplayRect(pasted))
			evts.add(EventSelectionChanged, s.selection.Rect())
		},
	}
}

func (s *Session) clearSelectionLocked(evts *events) {
	s.selection.Clear()
	evts.add(EventSelectionChanged, geometry.Rect{})
}

// Copy puts the selection on the clipboard. The image and the history are
// left alone.
func (s *Session) Copy() error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return precondition(opCopy, ErrNoImage)
	}
	region, err := s.selectedRegionLocked(opCopy)
	src := s.current
	s.mu.Unlock()
	if err != nil {
		return err
	}

	started := time.Now()
	crop, ok := imgutil.Crop(src, region)
	if !ok {
		return precondition(opCopy, ErrNoSelection)
	}
	if err := s.clipboard.SetImage(crop); err != nil {
		return &ProcessingError{Op: opCopy, Elapsed: time.Since(started), Err: err}
	}
	entry := s.log.Record(opCopy, time.Since(started))
	s.bus.emit(EventOperationLogged, entry)
	return nil
}
