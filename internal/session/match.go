package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"image-processor/internal/engine"
	imgutil "image-processor/internal/image"
	"image-processor/internal/logging"
	"image-processor/pkg/geometry"
)

const (
	opMatch      = "Template Matching"
	opApplyMatch = "Apply Template Match"

	// matchStroke is the outline width drawn around a match.
	matchStroke = 4
)

// ErrStaleMatch is returned when a match result is applied after the image
// it was computed on has been replaced.
var ErrStaleMatch = errors.New("image changed since the match")

// MatchResult is the outcome of TemplateMatch. Image is an annotated copy
// of Source when Found, and Source itself otherwise.
type MatchResult struct {
	Rect    image.Rectangle
	Found   bool
	Source  *image.RGBA
	Image   *image.RGBA
	Elapsed time.Duration
}

// TemplateMatch searches the current image for tmpl. The image is not
// changed; use ApplyMatch to keep the annotated result.
func (s *Session) TemplateMatch(ctx context.Context, tmpl *image.RGBA) (MatchResult, error) {
	s.mu.Lock()
	src := s.current
	s.mu.Unlock()
	if src == nil {
		return MatchResult{}, precondition(opMatch, ErrNoImage)
	}
	if tmpl == nil {
		return MatchResult{}, &engine.ValidationError{Field: "template", Value: nil, Reason: "is missing"}
	}
	ss, ts := src.Bounds().Size(), tmpl.Bounds().Size()
	if ts.X > ss.X || ts.Y > ss.Y {
		return MatchResult{}, &engine.ValidationError{
			Field:  "template",
			Value:  fmt.Sprintf("%dx%d", ts.X, ts.Y),
			Reason: fmt.Sprintf("is larger than the image %dx%d", ss.X, ss.Y),
		}
	}

	started := time.Now()
	rect, found, err := s.engine.TemplateMatch(ctx, src, tmpl)
	elapsed := time.Since(started)
	if err != nil {
		err = failure(opMatch, elapsed, err)
		s.bus.emit(EventOperationFailed, err)
		return MatchResult{}, err
	}

	res := MatchResult{Rect: rect, Found: found && !rect.Empty(), Source: src, Image: src, Elapsed: elapsed}
	if res.Found {
		res.Image = imgutil.Highlight(src, rect, matchStroke)
	}

	s.mu.Lock()
	s.lastElapsed = elapsed
	s.mu.Unlock()
	entry := s.log.Record(opMatch, elapsed)
	logging.Logger().Info("template match", "found", res.Found, "rect", rect, "elapsed", elapsed)
	s.bus.emit(EventOperationLogged, entry)
	return res, nil
}

// ApplyMatch makes the annotated match image current and selects the
// matched area. A result without a match changes nothing.
func (s *Session) ApplyMatch(ctx context.Context, res MatchResult) error {
	if !res.Found || res.Image == nil {
		return nil
	}
	return s.execute(ctx, &job{
		name: opApplyMatch,
		prepare: func() error {
			if s.current != res.Source {
				return precondition(opApplyMatch, ErrStaleMatch)
			}
			return nil
		},
		run: func(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
			return res.Image, nil
		},
		commit: func(evts *events) {
			s.selection.Set(s.geometryLocked().ToDisplayRect(geometry.FromImageRect(res.Rect)))
			evts.add(EventSelectionChanged, s.selection.Rect())
		},
	})
}
