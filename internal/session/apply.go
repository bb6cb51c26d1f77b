package session

import (
	"context"
	"errors"
	"image"
	"time"

	"image-processor/internal/engine"
	"image-processor/internal/logging"
	"image-processor/pkg/geometry"
)

// job is one history-recorded mutation of the current image.
type job struct {
	name string

	// clearSelection hides the selection before the operation starts.
	clearSelection bool

	// prepare checks preconditions and captures inputs. Runs under the
	// session lock.
	prepare func() error

	run Op

	// commit applies side effects after a successful run. Runs under the
	// session lock.
	commit func(evts *events)
}

// Apply runs op on the current image as one undoable operation logged
// under name. On failure the history is left as it was.
func (s *Session) Apply(ctx context.Context, name string, op Op) error {
	return s.execute(ctx, &job{name: name, clearSelection: true, run: op})
}

func (s *Session) execute(ctx context.Context, j *job) error {
	src, err := s.start(j)
	if err != nil {
		return err
	}
	started := time.Now()
	out, runErr := j.run(ctx, src)
	return s.complete(j, started, out, runErr)
}

// dispatch starts j and runs it on a goroutine. The commit and done are
// posted to the scheduler.
func (s *Session) dispatch(ctx context.Context, j *job, done func(error)) error {
	src, err := s.start(j)
	if err != nil {
		return err
	}
	started := time.Now()
	go func() {
		out, runErr := j.run(ctx, src)
		s.scheduler.Post(func() {
			err := s.complete(j, started, out, runErr)
			if done != nil {
				done(err)
			}
		})
	}()
	return nil
}

// start checks the job's preconditions, claims the in-flight slot and
// records the undo snapshot.
func (s *Session) start(j *job) (*image.RGBA, error) {
	var evts events
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if s.current == nil {
		s.mu.Unlock()
		return nil, precondition(j.name, ErrNoImage)
	}
	if j.prepare != nil {
		if err := j.prepare(); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	// A refused command leaves the selection alone.
	if j.clearSelection && s.selection.Visible() {
		s.selection.Clear()
		evts.add(EventSelectionChanged, geometry.Rect{})
	}
	s.busy = true
	src := s.current
	s.history.Record(src)
	s.mu.Unlock()

	s.flush(evts)
	return src, nil
}

// complete releases the in-flight slot and either commits out or rolls
// back the undo snapshot.
func (s *Session) complete(j *job, started time.Time, out *image.RGBA, runErr error) error {
	elapsed := time.Since(started)
	if runErr == nil && out == nil {
		runErr = errors.New("engine returned no image")
	}

	var evts events
	s.mu.Lock()
	s.busy = false

	if runErr != nil {
		s.history.Rollback()
		err := failure(j.name, elapsed, runErr)
		evts.add(EventOperationFailed, err)
		s.mu.Unlock()

		logging.Logger().Warn("operation failed", "op", j.name, "elapsed", elapsed, "err", err)
		s.flush(evts)
		return err
	}

	s.history.Commit()
	s.current, s.loaded = out, out
	s.lastElapsed = elapsed
	if j.commit != nil {
		j.commit(&evts)
	}
	entry := s.log.Record(j.name, elapsed)
	evts.add(EventImageChanged, out)
	evts.add(EventHistoryChanged, s.historyStateLocked())
	evts.add(EventOperationLogged, entry)
	s.mu.Unlock()

	logging.Logger().Info("operation applied",
		"op", j.name,
		"elapsed", elapsed,
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy())
	s.flush(evts)
	return nil
}

// failure wraps engine errors in ProcessingError. Cancellation and errors
// that are already classified pass through.
func failure(op string, elapsed time.Duration, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var (
		ve *engine.ValidationError
		pe *PreconditionError
		de *EngineDataError
	)
	if errors.As(err, &ve) || errors.As(err, &pe) || errors.As(err, &de) {
		return err
	}
	return &ProcessingError{Op: op, Elapsed: elapsed, Err: err}
}

// Undo restores the previous image.
func (s *Session) Undo() error {
	return s.step(s.history.Undo)
}

// Redo reapplies the last undone image.
func (s *Session) Redo() error {
	return s.step(s.history.Redo)
}

func (s *Session) step(fn func(*image.RGBA) (*image.RGBA, bool)) error {
	var evts events
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	img, ok := fn(s.current)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	s.current, s.loaded = img, img
	evts.add(EventImageChanged, img)
	evts.add(EventHistoryChanged, s.historyStateLocked())
	s.mu.Unlock()
	s.flush(evts)
	return nil
}
