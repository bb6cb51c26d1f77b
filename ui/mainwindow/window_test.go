package mainwindow

import (
	"context"
	"image"
	"path/filepath"
	"testing"
	"time"

	"image-processor/internal/app"
	"image-processor/internal/clipboard"
	"image-processor/internal/engine"
	imgutil "image-processor/internal/image"
	"image-processor/internal/session"
	"image-processor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

type stubEngine struct{ engine.Engine }

func (stubEngine) ClearTransformData()    {}
func (stubEngine) HasTransformData() bool { return false }

// blockingEngine holds Grayscale until its context is done.
type blockingEngine struct{ stubEngine }

func (blockingEngine) Grayscale(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestWindow(t *testing.T) *MainWindow {
	t.Helper()
	return newTestWindowWith(t, stubEngine{})
}

func newTestWindowWith(t *testing.T, e engine.Engine) *MainWindow {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	p, err := prefs.Open(filepath.Join(t.TempDir(), "preferences.json"))
	if err != nil {
		t.Fatal(err)
	}
	mw := New(a, app.NewState(e, clipboard.NewMemory(), p))
	t.Cleanup(mw.Shutdown)
	return mw
}

func (mw *MainWindow) itemFor(kind session.CommandKind) *fyne.MenuItem {
	for item, cmd := range mw.commandItems {
		if cmd.Kind == kind {
			return item
		}
	}
	return nil
}

func TestMenusFollowSession(t *testing.T) {
	mw := newTestWindow(t)
	if !mw.itemFor(session.CmdFilter).Disabled {
		t.Fatal("filters should be disabled without an image")
	}

	path := filepath.Join(t.TempDir(), "img.png")
	if err := imgutil.Save(image.NewRGBA(image.Rect(0, 0, 40, 30)), path); err != nil {
		t.Fatal(err)
	}
	if err := mw.session.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if mw.itemFor(session.CmdFilter).Disabled {
		t.Fatal("filters should be enabled once an image is loaded")
	}
	if !mw.itemFor(session.CmdUndo).Disabled || !mw.itemFor(session.CmdInverseTransform).Disabled {
		t.Fatal("undo and inverse transform need history and a forward result")
	}
	if mw.Title() != appTitle+" - img.png" {
		t.Fatalf("title = %q", mw.Title())
	}
}

func TestZoomUpdatesStatus(t *testing.T) {
	mw := newTestWindow(t)
	mw.run(session.Command{Kind: session.CmdZoomIn})
	if got := mw.zoomLabel.Text; got != "110%" {
		t.Fatalf("zoom label = %q", got)
	}
	mw.onZoomReset()
	if got := mw.zoomLabel.Text; got != "100%" {
		t.Fatalf("zoom label = %q", got)
	}
}

func TestRejectedCommandReportsFailure(t *testing.T) {
	mw := newTestWindow(t)
	mw.run(session.Command{Kind: session.CmdCut})
	if got := mw.statusLabel.Text; got != "Cut failed" {
		t.Fatalf("status = %q", got)
	}
}

func TestEscapeCancelsRunningFilter(t *testing.T) {
	mw := newTestWindowWith(t, blockingEngine{})
	path := filepath.Join(t.TempDir(), "img.png")
	if err := imgutil.Save(image.NewRGBA(image.Rect(0, 0, 40, 30)), path); err != nil {
		t.Fatal(err)
	}
	if err := mw.session.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	mw.onFilter(engine.FilterGrayscale)
	if !mw.session.Busy() {
		t.Fatal("filter is not running")
	}
	if mw.cancelButton.Disabled() {
		t.Fatal("cancel button disabled while a filter runs")
	}

	mw.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyEscape})
	deadline := time.After(5 * time.Second)
	for mw.session.Busy() {
		select {
		case <-mw.state.Queue().Ready():
			mw.state.Queue().Drain()
		case <-deadline:
			t.Fatal("cancelled filter never reported back")
		}
	}

	if got := mw.statusLabel.Text; got != "GrayScale cancelled" {
		t.Fatalf("status = %q", got)
	}
	if mw.session.HistoryState().CanUndo {
		t.Fatal("cancelled filter left an undo entry")
	}
	if !mw.cancelButton.Disabled() {
		t.Fatal("cancel button still enabled with nothing running")
	}
}
