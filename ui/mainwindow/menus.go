package mainwindow

import (
	"fmt"
	"path/filepath"
	"strings"

	"image-processor/internal/app"
	"image-processor/internal/engine"
	imgutil "image-processor/internal/image"
	"image-processor/internal/session"
	"image-processor/internal/version"
	"image-processor/ui/dialogs"
	"image-processor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
)

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		mw.shortcutItem("Open...", fyne.KeyO, mw.onOpen),
		mw.shortcutItem("Save As...", fyne.KeyS, mw.onSaveAs),
		fyne.NewMenuItemSeparator(),
		mw.commandItem("Reload", session.Command{Kind: session.CmdReload}),
		mw.commandItem("Delete Image", session.Command{Kind: session.CmdDeleteImage}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		mw.commandItem("Undo", session.Command{Kind: session.CmdUndo}, fyne.KeyZ),
		mw.commandItem("Redo", session.Command{Kind: session.CmdRedo}, fyne.KeyY),
		fyne.NewMenuItemSeparator(),
		mw.commandItem("Cut", session.Command{Kind: session.CmdCut}, fyne.KeyX),
		mw.commandItem("Copy", session.Command{Kind: session.CmdCopy}, fyne.KeyC),
		mw.commandItem("Paste", session.Command{Kind: session.CmdPaste}, fyne.KeyV),
		mw.commandItem("Delete Selection", session.Command{Kind: session.CmdDeleteSelection}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings...", mw.onSettings),
	)

	var filterItems []*fyne.MenuItem
	for _, f := range engine.Filters() {
		f := f
		item := fyne.NewMenuItem(f.String()+ellipsis(f), func() { mw.onFilter(f) })
		mw.commandItems[item] = session.FilterCommand(f)
		filterItems = append(filterItems, item)
	}
	filterMenu := fyne.NewMenu("Filter", filterItems...)

	transformMenu := fyne.NewMenu("Transform",
		mw.commandItem("Forward FFT", session.Command{Kind: session.CmdForwardTransform}),
		mw.commandItem("Inverse FFT", session.Command{Kind: session.CmdInverseTransform}),
	)

	matchItem := fyne.NewMenuItem("Template Matching...", mw.onTemplateMatch)
	mw.commandItems[matchItem] = session.FilterCommand(engine.FilterGrayscale) // Same preconditions
	toolsMenu := fyne.NewMenu("Tools",
		matchItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show Original", mw.onShowOriginal),
		fyne.NewMenuItem("Operation Log", mw.onShowLog),
		fyne.NewMenuItem("Analysis Report", mw.onShowReport),
	)

	viewMenu := fyne.NewMenu("View",
		mw.commandItem("Zoom In", session.Command{Kind: session.CmdZoomIn}, fyne.KeyEqual),
		mw.commandItem("Zoom Out", session.Command{Kind: session.CmdZoomOut}, fyne.KeyMinus),
		mw.commandItem("Reset Zoom", session.Command{Kind: session.CmdZoomReset}, fyne.Key0),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.mainMenu = fyne.NewMainMenu(fileMenu, editMenu, filterMenu, transformMenu, toolsMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mw.mainMenu)
}

// commandItem creates a menu item running cmd, with an optional
// Ctrl/Cmd shortcut key.
func (mw *MainWindow) commandItem(label string, cmd session.Command, key ...fyne.KeyName) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, func() { mw.run(cmd) })
	if len(key) > 0 {
		mw.addShortcut(item, key[0])
	}
	mw.commandItems[item] = cmd
	return item
}

func (mw *MainWindow) shortcutItem(label string, key fyne.KeyName, action func()) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, action)
	mw.addShortcut(item, key)
	return item
}

func (mw *MainWindow) addShortcut(item *fyne.MenuItem, key fyne.KeyName) {
	sc := &desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}
	action := item.Action
	mw.Canvas().AddShortcut(sc, func(fyne.Shortcut) {
		if !item.Disabled {
			action()
		}
	})
}

func ellipsis(f engine.Filter) string {
	if dialogs.HasParams(f) {
		return "..."
	}
	return ""
}

// Menu action handlers

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		mw.updateStatus("Loading " + filepath.Base(path) + "...")
		mw.session.LoadAsync(path, func(err error) {
			if err != nil {
				mw.finished("Open", err)
				return
			}
			mw.updateStatus("Loaded " + filepath.Base(path))
		})
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imgutil.OpenFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveAs() {
	if !mw.session.HasImage() {
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !imgutil.IsSupportedFormat(path) {
			path += ".png"
		}
		mw.saveLastDir(path)
		err = mw.session.SaveAsync(path, func(err error) {
			if err != nil {
				mw.finished("Save", err)
				return
			}
			mw.updateStatus("Saved " + filepath.Base(path))
		})
		if err != nil {
			mw.finished("Save", err)
		}
	}, mw.Window)
	name := "image.png"
	if p := mw.session.Path(); p != "" {
		name = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)) + "_edited.png"
	}
	fd.SetFileName(name)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onFilter(f engine.Filter) {
	if !dialogs.HasParams(f) {
		mw.run(session.FilterCommand(f))
		return
	}
	dialogs.NewParamsDialog(f, mw.session.Params(), mw.Window, func(p engine.Params) {
		if err := mw.session.SetParams(p); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.run(session.FilterCommand(f))
	}).Show()
}

func (mw *MainWindow) onSettings() {
	dialogs.NewSettingsDialog(mw.state.Settings(), mw.Window, func(s prefs.Settings) error {
		if err := mw.state.ApplySettings(s); err != nil {
			return err
		}
		mw.app.Settings().SetTheme(app.NewTheme(s.Theme))
		mw.updateStatus("Settings saved")
		return nil
	}).Show()
}

func (mw *MainWindow) onTemplateMatch() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		mw.updateStatus("Matching " + filepath.Base(path) + "...")

		ctx, end := mw.beginOp()
		go func() {
			var res session.MatchResult
			doc, err := imgutil.Load(path)
			if err == nil {
				res, err = mw.session.TemplateMatch(ctx, doc.Image)
			}
			mw.state.Queue().Post(func() {
				end()
				mw.updateCommands()
				if err != nil {
					mw.finished("Template Matching", err)
					return
				}
				dialogs.ShowMatch(res, mw.Window, mw.applyMatch)
			})
		}()
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imgutil.OpenFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) applyMatch(res session.MatchResult) {
	ctx, end := mw.beginOp()
	go func() {
		err := mw.session.ApplyMatch(ctx, res)
		mw.state.Queue().Post(func() {
			end()
			mw.finished("Apply Template Match", err)
		})
	}()
}

func (mw *MainWindow) onShowOriginal() {
	img := mw.session.Original()
	if img == nil {
		mw.updateStatus("No image loaded")
		return
	}
	dialogs.ShowImage(mw.app, "Original - "+filepath.Base(mw.session.Path()), img)
}

func (mw *MainWindow) onShowLog() {
	dialogs.ShowLog(mw.app, mw.session.Log().Entries())
}

func (mw *MainWindow) onShowReport() {
	report, err := mw.session.Report()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	dialogs.ShowReport(mw.app, report)
}

func (mw *MainWindow) onZoomIn() {
	mw.session.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.session.ZoomOut()
}

func (mw *MainWindow) onZoomReset() {
	mw.session.ResetZoom()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Filters, frequency transforms and template matching\n"+
			"with undo and redo.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
