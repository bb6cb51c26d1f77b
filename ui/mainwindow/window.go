// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"path/filepath"

	"image-processor/internal/app"
	"image-processor/internal/logging"
	"image-processor/internal/oplog"
	"image-processor/internal/session"
	"image-processor/pkg/geometry"
	"image-processor/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	appTitle       = "Image Processor"
	prefKeyLastDir = "lastDirectory"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	state   *app.State
	session *session.Session
	canvas  *canvas.ImageCanvas
	minimap *canvas.Minimap
	watcher *app.FileWatcher
	logger  *log.Logger

	// ctx cancels in-flight operations when the window closes.
	ctx    context.Context
	cancel context.CancelFunc

	// Cancel funcs of operations still running, keyed by start order
	ops    map[int]context.CancelFunc
	nextOp int

	// Status bar
	coordsLabel  *widget.Label
	timeLabel    *widget.Label
	zoomLabel    *widget.Label
	statusLabel  *widget.Label
	cancelButton *widget.Button

	// Menu items enabled from session state, keyed by command
	mainMenu     *fyne.MainMenu
	commandItems map[*fyne.MenuItem]session.Command
}

// New creates the main window for state.
func New(fyneApp fyne.App, state *app.State) *MainWindow {
	win := fyneApp.NewWindow(appTitle)
	ctx, cancel := context.WithCancel(context.Background())

	mw := &MainWindow{
		Window:       win,
		app:          fyneApp,
		state:        state,
		session:      state.Session,
		logger:       slog.NewLogLogger(logging.Logger().Handler(), slog.LevelInfo),
		ctx:          ctx,
		cancel:       cancel,
		ops:          make(map[int]context.CancelFunc),
		commandItems: make(map[*fyne.MenuItem]session.Command),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupWatcher()
	mw.updateCommands()

	win.SetOnClosed(mw.Shutdown)
	win.Resize(fyne.NewSize(1100, 760))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas(mw.session)
	mw.minimap = canvas.NewMinimap(mw.canvas)

	mw.coordsLabel = widget.NewLabel(mw.session.CoordinatesText())
	mw.timeLabel = widget.NewLabel(mw.session.ProcessTimeText())
	mw.zoomLabel = widget.NewLabel(mw.session.ZoomText())
	mw.statusLabel = widget.NewLabel("Ready")
	mw.cancelButton = widget.NewButton("Cancel", mw.cancelOperations)
	mw.cancelButton.Disable()

	mw.canvas.OnPointer(func(p geometry.Point2D) {
		mw.coordsLabel.SetText(mw.session.CoordinatesText())
	})

	side := container.NewBorder(
		widget.NewLabelWithStyle("Navigator", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		container.NewPadded(mw.minimap),
	)

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	split := container.NewHSplit(canvasArea, side)
	split.SetOffset(0.8) // Canvas takes 80% of width

	statusBar := container.NewHBox(
		mw.statusLabel,
		mw.cancelButton,
		widget.NewSeparator(),
		mw.coordsLabel,
		widget.NewSeparator(),
		mw.timeLabel,
		widget.NewSeparator(),
		mw.zoomLabel,
	)

	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			mw.cancelOperations()
		}
	})

	mw.SetContent(container.NewBorder(
		nil,                            // top
		container.NewPadded(statusBar), // bottom
		nil,                            // left
		nil,                            // right
		split,                          // center
	))
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.onZoomOut),
		widget.NewButton("+", mw.onZoomIn),
		widget.NewButton("100%", mw.onZoomReset),
	)
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	s := mw.session

	s.On(session.EventImageChanged, func(interface{}) {
		if path := s.Path(); path != "" && s.HasImage() {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
		} else {
			mw.SetTitle(appTitle)
		}
		mw.updateCommands()
	})
	s.On(session.EventZoomChanged, func(interface{}) {
		mw.zoomLabel.SetText(s.ZoomText())
		mw.updateCommands()
	})
	for _, ev := range []session.EventType{
		session.EventSelectionChanged,
		session.EventHistoryChanged,
		session.EventTransformCacheChanged,
	} {
		s.On(ev, func(interface{}) { mw.updateCommands() })
	}
	s.On(session.EventOperationLogged, func(data interface{}) {
		mw.timeLabel.SetText(s.ProcessTimeText())
		if entry, ok := data.(oplog.Entry); ok {
			mw.updateStatus(entry.String())
		}
	})
	s.On(session.EventOperationFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Failed: " + err.Error())
		}
	})
}

// setupWatcher offers a reload when the open file changes on disk.
func (mw *MainWindow) setupWatcher() {
	w, err := app.NewFileWatcher(app.DefaultSettle, func(path string) {
		mw.state.Queue().Post(func() { mw.confirmReload(path) })
	})
	if err != nil {
		mw.logger.Printf("File watcher: %v", err)
		return
	}
	mw.watcher = w
	mw.session.On(session.EventImageChanged, func(interface{}) {
		if mw.watcher == nil {
			return
		}
		path := ""
		if mw.session.HasImage() {
			path = mw.session.Path()
		}
		if err := mw.watcher.Watch(path); err != nil {
			mw.logger.Printf("File watcher: %v", err)
		}
	})
}

func (mw *MainWindow) confirmReload(path string) {
	dialog.ShowConfirm("Image Changed",
		filepath.Base(path)+" was modified on disk.\nReload it?",
		func(reload bool) {
			if reload {
				mw.run(session.Command{Kind: session.CmdReload})
			}
		}, mw.Window)
}

// Shutdown cancels running work and stops watching the image file.
func (mw *MainWindow) Shutdown() {
	mw.cancel()
	if mw.watcher != nil {
		mw.watcher.Close()
		mw.watcher = nil
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusLabel.SetText(text)
}

// updateCommands enables the menu items whose command can run now.
func (mw *MainWindow) updateCommands() {
	if mw.cancelButton != nil {
		if len(mw.ops) > 0 {
			mw.cancelButton.Enable()
		} else {
			mw.cancelButton.Disable()
		}
	}
	if mw.mainMenu == nil {
		return
	}
	for item, cmd := range mw.commandItems {
		item.Disabled = !mw.session.CanExecute(cmd)
	}
	mw.mainMenu.Refresh()
}

// beginOp returns the context for a new operation and the func that
// releases it once the outcome is in. Both run on the UI goroutine.
func (mw *MainWindow) beginOp() (context.Context, func()) {
	ctx, cancel := context.WithCancel(mw.ctx)
	id := mw.nextOp
	mw.nextOp++
	mw.ops[id] = cancel
	mw.updateCommands()
	return ctx, func() {
		cancel()
		delete(mw.ops, id)
	}
}

// cancelOperations cancels every operation still running.
func (mw *MainWindow) cancelOperations() {
	if len(mw.ops) == 0 {
		return
	}
	for _, cancel := range mw.ops {
		cancel()
	}
	mw.updateStatus("Cancelling...")
}

// run dispatches cmd and reports a failure in a dialog.
func (mw *MainWindow) run(cmd session.Command) {
	mw.updateStatus(cmd.String() + "...")
	ctx, end := mw.beginOp()
	err := mw.session.Dispatch(ctx, cmd, func(err error) {
		end()
		mw.finished(cmd.String(), err)
	})
	if err != nil {
		end()
		mw.finished(cmd.String(), err)
	}
	mw.updateCommands()
}

func (mw *MainWindow) finished(name string, err error) {
	mw.updateCommands()
	if err == nil {
		return
	}
	if mw.ctx.Err() != nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		mw.logger.Printf("%s cancelled", name)
		mw.updateStatus(name + " cancelled")
		return
	}
	mw.logger.Printf("%s: %v", name, err)
	mw.updateStatus(name + " failed")
	dialog.ShowError(err, mw.Window)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		path = mw.state.Settings().DefaultDir
	}
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// RestoreLastImage reopens the image from the previous run, if any.
func (mw *MainWindow) RestoreLastImage() {
	ok, err := mw.state.RestoreLastImage()
	if err != nil {
		mw.logger.Printf("Failed to restore last image: %v", err)
		return
	}
	if ok {
		mw.updateStatus("Restored " + filepath.Base(mw.session.Path()))
	}
}
