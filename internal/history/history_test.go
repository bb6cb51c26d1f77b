package history

import (
	"image"
	"image/color"
	"testing"

	imgutil "image-processor/internal/image"
)

func solid(v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// mutate stands in for an engine call: it returns a new image.
func mutate(img *image.RGBA, v uint8) *image.RGBA {
	out := imgutil.Clone(img)
	out.SetRGBA(int(v)%4, 0, color.RGBA{R: v, G: v, B: v, A: 255})
	return out
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New()
	start := solid(10)
	cur := start

	const n = 6
	for i := 0; i < n; i++ {
		h.Record(cur)
		cur = mutate(cur, uint8(50+i))
		h.Commit()
	}
	final := imgutil.Clone(cur)

	for i := 0; i < n; i++ {
		var ok bool
		cur, ok = h.Undo(cur)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
	}
	if !imgutil.Equal(cur, start) {
		t.Fatal("undoing everything did not restore the start image")
	}
	if h.CanUndo() {
		t.Fatal("undo stack should be empty")
	}

	for i := 0; i < n; i++ {
		var ok bool
		cur, ok = h.Redo(cur)
		if !ok {
			t.Fatalf("redo %d failed", i)
		}
	}
	if !imgutil.Equal(cur, final) {
		t.Fatal("redoing everything did not reproduce the final image")
	}
}

func TestFreshOperationClearsRedo(t *testing.T) {
	h := New()
	cur := solid(1)
	for i := 0; i < 3; i++ {
		h.Record(cur)
		cur = mutate(cur, uint8(i))
	}
	cur, _ = h.Undo(cur)
	cur, _ = h.Undo(cur)
	if !h.CanRedo() {
		t.Fatal("expected redo entries after two undos")
	}

	h.Record(cur)
	cur = mutate(cur, 99)
	if h.CanRedo() {
		t.Fatal("a fresh operation must clear the redo stack")
	}
	same, ok := h.Redo(cur)
	if ok || same != cur {
		t.Fatal("redo after a fresh operation must be a no-op")
	}
}

func TestSnapshotsAreOwned(t *testing.T) {
	h := New()
	cur := solid(5)
	h.Record(cur)
	// Mutating the caller's image after Record must not reach the snapshot.
	cur.Pix[0] = 200
	prev, _ := h.Undo(cur)
	if prev.Pix[0] != 5 {
		t.Fatalf("snapshot pixel = %d, want 5", prev.Pix[0])
	}
}

func TestEmptyHistoryIsNoOp(t *testing.T) {
	h := New()
	cur := solid(3)
	if got, ok := h.Undo(cur); ok || got != cur {
		t.Fatal("undo on empty history must return current")
	}
	if got, ok := h.Redo(cur); ok || got != cur {
		t.Fatal("redo on empty history must return current")
	}
	h.Record(nil)
	if h.CanUndo() {
		t.Fatal("recording nil must not push")
	}
}

func TestRollbackRestoresRedo(t *testing.T) {
	h := New()
	cur := solid(1)
	h.Record(cur)
	cur = mutate(cur, 7)
	cur, _ = h.Undo(cur)

	h.Record(cur)
	if h.CanRedo() {
		t.Fatal("Record should clear redo")
	}
	if !h.Rollback() {
		t.Fatal("rollback failed")
	}
	undo, redo := h.Len()
	if undo != 0 || redo != 1 {
		t.Fatalf("after rollback undo=%d redo=%d, want 0/1", undo, redo)
	}
	if h.Rollback() {
		t.Fatal("second rollback must be rejected")
	}

	h.Record(cur)
	h.Commit()
	if h.Rollback() {
		t.Fatal("rollback after commit must be rejected")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	h := New(WithCapacity(3))
	if h.Capacity() != 3 {
		t.Fatalf("capacity = %d", h.Capacity())
	}
	cur := solid(0)
	for i := 1; i <= 5; i++ {
		h.Record(cur)
		cur = solid(uint8(i * 10))
	}
	undo, _ := h.Len()
	if undo != 3 {
		t.Fatalf("undo depth = %d, want 3", undo)
	}
	// Oldest surviving snapshot is the third recorded image.
	for i := 0; i < 3; i++ {
		cur, _ = h.Undo(cur)
	}
	if cur.Pix[0] != 20 {
		t.Fatalf("oldest snapshot = %d, want 20", cur.Pix[0])
	}
	if h.CanUndo() {
		t.Fatal("evicted entries must not be reachable")
	}
}

func TestUnboundedByDefault(t *testing.T) {
	h := New(WithCapacity(0))
	cur := solid(0)
	for i := 0; i < 100; i++ {
		h.Record(cur)
	}
	if undo, _ := h.Len(); undo != 100 {
		t.Fatalf("undo depth = %d, want 100", undo)
	}
	h.Reset()
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("Reset left entries")
	}
}

func TestRollbackAtCapacityRestoresEvicted(t *testing.T) {
	h := New(WithCapacity(2))
	a, b, c := solid(1), solid(2), solid(3)
	h.Record(a)
	h.Commit()
	h.Record(b)
	h.Commit()

	h.Record(c)
	if undo, _ := h.Len(); undo != 2 {
		t.Fatalf("undo depth while pending = %d, want 2", undo)
	}
	if !h.Rollback() {
		t.Fatal("rollback failed")
	}
	if undo, _ := h.Len(); undo != 2 {
		t.Fatalf("undo depth after rollback = %d, want 2", undo)
	}

	cur := solid(4)
	cur, _ = h.Undo(cur)
	if cur.Pix[0] != 2 {
		t.Fatalf("first undo = %d, want 2", cur.Pix[0])
	}
	cur, ok := h.Undo(cur)
	if !ok || cur.Pix[0] != 1 {
		t.Fatalf("second undo ok=%v pixel=%d, want the evicted snapshot 1", ok, cur.Pix[0])
	}
}

func TestCommitAtCapacityKeepsEviction(t *testing.T) {
	h := New(WithCapacity(2))
	for i := 1; i <= 3; i++ {
		h.Record(solid(uint8(i)))
		h.Commit()
	}
	if h.Rollback() {
		t.Fatal("rollback after commit must be rejected")
	}
	cur := solid(9)
	cur, _ = h.Undo(cur)
	cur, _ = h.Undo(cur)
	if cur.Pix[0] != 2 || h.CanUndo() {
		t.Fatalf("oldest reachable = %d, want 2 with nothing older", cur.Pix[0])
	}
}
