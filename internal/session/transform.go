package session

import (
	"context"
	"image"

	"image-processor/internal/engine"
)

const (
	opForward = "FFT"
	opInverse = "IFFT"
)

// ApplyFilter runs one of the engine filters with the session parameters.
// Parameters are validated before anything is recorded.
func (s *Session) ApplyFilter(ctx context.Context, f engine.Filter) error {
	return s.execute(ctx, s.filterJob(f))
}

func (s *Session) filterJob(f engine.Filter) *job {
	var params engine.Params
	return &job{
		name:           f.String(),
		clearSelection: true,
		prepare: func() error {
			params = s.params
			return f.Validate(params)
		},
		run: func(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
			return engine.Run(ctx, s.engine, f, params, src)
		},
	}
}

// ForwardTransform replaces the image with its magnitude spectrum and
// enables InverseTransform.
func (s *Session) ForwardTransform(ctx context.Context) error {
	return s.execute(ctx, s.forwardJob())
}

// InverseTransform reconstructs the image from the last forward
// transform. It fails with ErrNoForwardResult when there is none, and
// consumes the result on success.
func (s *Session) InverseTransform(ctx context.Context) error {
	return s.execute(ctx, s.inverseJob())
}

func (s *Session) forwardJob() *job {
	return &job{
		name:           opForward,
		clearSelection: true,
		run: func(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
			out, err := s.engine.ForwardTransform(ctx, src)
			if err != nil {
				return nil, err
			}
			if out == nil || !s.engine.HasTransformData() {
				return nil, &EngineDataError{Op: opForward}
			}
			return out, nil
		},
		commit: func(evts *events) {
			s.cache.RecordForwardSuccess()
			evts.add(EventTransformCacheChanged, true)
		},
	}
}

func (s *Session) inverseJob() *job {
	return &job{
		name:           opInverse,
		clearSelection: true,
		prepare: func() error {
			if err := s.cache.Require(); err != nil {
				return precondition(opInverse, err)
			}
			return nil
		},
		run: func(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
			return s.engine.InverseTransform(ctx, src)
		},
		commit: func(evts *events) {
			s.cache.Consume()
			evts.add(EventTransformCacheChanged, false)
		},
	}
}
