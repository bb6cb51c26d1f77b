// Package history keeps the linear undo/redo stacks of image snapshots.
package history

import (
	"image"

	imgutil "image-processor/internal/image"
)

// History holds owned deep copies of images. A snapshot is never mutated
// once stored; callers receive the stored image itself when popping and
// own it from then on.
type History struct {
	undo []*image.RGBA
	redo []*image.RGBA

	// capacity bounds the undo stack; 0 means unbounded.
	capacity int

	// pending is set between Record and the next operation so Rollback can
	// put back the redo stack and the oldest snapshot that Record discarded.
	pending        bool
	stashedRedo    []*image.RGBA
	stashedEvicted []*image.RGBA
}

// Option configures a History.
type Option func(*History)

// WithCapacity keeps at most n undo snapshots, evicting the oldest first.
// n <= 0 leaves the stack unbounded.
func WithCapacity(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.capacity = n
		}
	}
}

// New creates an empty history.
func New(opts ...Option) *History {
	h := &History{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record stores a copy of current as the state to return to and discards
// the redo stack. Call it once per mutation, before computing the result.
func (h *History) Record(current *image.RGBA) {
	if current == nil {
		return
	}
	h.stashedEvicted = h.push(&h.undo, imgutil.Clone(current))
	h.stashedRedo = h.redo
	h.redo = nil
	h.pending = true
}

// Rollback discards the entry pushed by the latest Record and restores the
// redo stack it cleared. Used when the mutation it guarded failed. Only
// the most recent Record can be rolled back.
func (h *History) Rollback() bool {
	if !h.pending {
		return false
	}
	h.pending = false
	pop(&h.undo)
	if len(h.stashedEvicted) > 0 {
		h.undo = append(h.stashedEvicted, h.undo...)
	}
	h.redo = h.stashedRedo
	h.stashedRedo = nil
	h.stashedEvicted = nil
	return true
}

// Commit marks the latest Record as final; it can no longer be rolled back.
func (h *History) Commit() {
	h.settle()
}

// settle forgets the rollback point.
func (h *History) settle() {
	h.pending = false
	h.stashedRedo = nil
	h.stashedEvicted = nil
}

// Undo returns the previous image and pushes a copy of current onto the
// redo stack. With nothing to undo it returns current unchanged.
func (h *History) Undo(current *image.RGBA) (*image.RGBA, bool) {
	h.settle()
	prev, ok := pop(&h.undo)
	if !ok {
		return current, false
	}
	if current != nil {
		h.redo = append(h.redo, imgutil.Clone(current))
	}
	return prev, true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current *image.RGBA) (*image.RGBA, bool) {
	h.settle()
	next, ok := pop(&h.redo)
	if !ok {
		return current, false
	}
	if current != nil {
		h.push(&h.undo, imgutil.Clone(current))
	}
	return next, true
}

// CanUndo reports whether an undo is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Capacity returns the undo bound, 0 when unbounded.
func (h *History) Capacity() int {
	return h.capacity
}

// Reset drops every snapshot.
func (h *History) Reset() {
	h.settle()
	h.undo = nil
	h.redo = nil
}

// push appends img and returns the oldest snapshots evicted to stay within
// capacity.
func (h *History) push(stack *[]*image.RGBA, img *image.RGBA) []*image.RGBA {
	*stack = append(*stack, img)
	if h.capacity <= 0 || len(*stack) <= h.capacity {
		return nil
	}
	drop := len(*stack) - h.capacity
	evicted := make([]*image.RGBA, drop)
	copy(evicted, (*stack)[:drop])
	// Clear evicted slots so the snapshots can be collected.
	for i := 0; i < drop; i++ {
		(*stack)[i] = nil
	}
	*stack = append((*stack)[:0], (*stack)[drop:]...)
	return evicted
}

func pop(stack *[]*image.RGBA) (*image.RGBA, bool) {
	n := len(*stack)
	if n == 0 {
		return nil, false
	}
	img := (*stack)[n-1]
	(*stack)[n-1] = nil
	*stack = (*stack)[:n-1]
	return img, true
}
