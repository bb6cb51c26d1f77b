package dialogs

import (
	"fmt"
	"image"

	"image-processor/internal/oplog"
	"image-processor/internal/session"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// NewLogList returns a list of log entries, newest first.
func NewLogList(entries []oplog.Entry) *widget.List {
	return widget.NewList(
		func() int { return len(entries) },
		func() fyne.CanvasObject { return widget.NewLabel("[00:00:00] Template Matching - 0000 ms") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(entries[id].String())
		},
	)
}

// ShowLog opens a window listing the operation log.
func ShowLog(app fyne.App, entries []oplog.Entry) fyne.Window {
	w := app.NewWindow("Operation Log")
	var content fyne.CanvasObject = NewLogList(entries)
	if len(entries) == 0 {
		content = widget.NewLabel("No operations yet.")
	}
	w.SetContent(content)
	w.Resize(fyne.NewSize(420, 360))
	w.Show()
	return w
}

// ShowReport opens a window rendering the Markdown analysis report.
func ShowReport(app fyne.App, report string) fyne.Window {
	w := app.NewWindow("Image Analysis Report")
	text := widget.NewRichTextFromMarkdown(report)
	text.Wrapping = fyne.TextWrapWord
	w.SetContent(container.NewVScroll(text))
	w.Resize(fyne.NewSize(480, 400))
	w.Show()
	return w
}

// ShowImage opens a window displaying img at its natural aspect ratio.
func ShowImage(app fyne.App, title string, img image.Image) fyne.Window {
	w := app.NewWindow(title)
	w.SetContent(imageView(img))
	w.Resize(fittedSize(img, 800))
	w.Show()
	return w
}

// ShowMatch shows a template match result. When something matched, Apply
// hands the result back through onApply.
func ShowMatch(res session.MatchResult, window fyne.Window, onApply func(session.MatchResult)) {
	if !res.Found {
		dialog.ShowInformation("Template Matching", "No match found.", window)
		return
	}
	info := widget.NewLabel(fmt.Sprintf("Match at (%d, %d), %d x %d, in %d ms",
		res.Rect.Min.X, res.Rect.Min.Y, res.Rect.Dx(), res.Rect.Dy(), res.Elapsed.Milliseconds()))
	content := container.NewBorder(nil, info, nil, nil, imageView(res.Image))

	dlg := dialog.NewCustomConfirm("Template Matching", "Apply", "Close", content, func(apply bool) {
		if apply && onApply != nil {
			onApply(res)
		}
	}, window)
	dlg.Resize(fittedSize(res.Image, 600))
	dlg.Show()
}

func imageView(img image.Image) fyne.CanvasObject {
	view := fynecanvas.NewImageFromImage(img)
	view.FillMode = fynecanvas.ImageFillContain
	view.ScaleMode = fynecanvas.ImageScaleSmooth
	return view
}

// fittedSize scales the image size so its longer side is at most limit.
func fittedSize(img image.Image, limit float32) fyne.Size {
	if img == nil {
		return fyne.NewSize(limit, limit*0.75)
	}
	b := img.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	if w <= 0 || h <= 0 {
		return fyne.NewSize(limit, limit*0.75)
	}
	k := limit / w
	if h > w {
		k = limit / h
	}
	if k > 1 {
		k = 1
	}
	return fyne.NewSize(w*k, h*k)
}
