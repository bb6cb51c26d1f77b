// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"image-processor/internal/engine"
	"image-processor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

var laplacianChoices = []string{"4-neighbour", "8-neighbour"}

// SettingsDialog edits the filter defaults and editor preferences.
type SettingsDialog struct {
	settings prefs.Settings
	window   fyne.Window

	// Filters
	sigmaEntry     *widget.Entry
	medianEntry    *widget.Entry
	laplacian      *widget.Select
	thresholdEntry *widget.Entry
	otsuCheck      *widget.Check
	dilationEntry  *widget.Entry
	erosionEntry   *widget.Entry

	// Editor
	historyEntry *widget.Entry
	themeSelect  *widget.Select

	// Callback; a returned error keeps the dialog's values unsaved.
	onSave func(prefs.Settings) error
}

// NewSettingsDialog creates a settings dialog showing s.
func NewSettingsDialog(s prefs.Settings, window fyne.Window, onSave func(prefs.Settings) error) *SettingsDialog {
	d := &SettingsDialog{
		settings: s,
		window:   window,
		onSave:   onSave,
	}
	d.createEntries()
	return d
}

// Show displays the dialog.
func (d *SettingsDialog) Show() {
	dlg := dialog.NewCustomConfirm(
		"Settings",
		"Save",
		"Cancel",
		d.createContent(),
		func(save bool) {
			if !save {
				return
			}
			s, err := d.Settings()
			if err == nil && d.onSave != nil {
				err = d.onSave(s)
			}
			if err != nil {
				dialog.ShowError(err, d.window)
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(420, 520))
	dlg.Show()
}

func (d *SettingsDialog) createEntries() {
	p := d.settings.Params

	d.sigmaEntry = widget.NewEntry()
	d.sigmaEntry.SetText(strconv.FormatFloat(p.GaussianSigma, 'g', -1, 64))

	d.medianEntry = intEntry(p.MedianKernel)
	d.dilationEntry = intEntry(p.DilationKernel)
	d.erosionEntry = intEntry(p.ErosionKernel)
	d.thresholdEntry = intEntry(p.BinarizationThreshold)

	d.laplacian = widget.NewSelect(laplacianChoices, nil)
	if p.LaplacianKernel == engine.Laplacian4 {
		d.laplacian.SetSelected(laplacianChoices[0])
	} else {
		d.laplacian.SetSelected(laplacianChoices[1])
	}

	d.otsuCheck = widget.NewCheck("Automatic (Otsu)", func(on bool) {
		if on {
			d.thresholdEntry.Disable()
		} else {
			d.thresholdEntry.Enable()
		}
	})
	d.otsuCheck.SetChecked(p.Otsu)

	d.historyEntry = intEntry(d.settings.HistoryCapacity)

	d.themeSelect = widget.NewSelect([]string{prefs.ThemeDark, prefs.ThemeLight}, nil)
	d.themeSelect.SetSelected(d.settings.Theme)
}

func (d *SettingsDialog) createContent() fyne.CanvasObject {
	filterForm := widget.NewForm(
		widget.NewFormItem("Gaussian sigma", d.sigmaEntry),
		widget.NewFormItem("Median kernel", d.medianEntry),
		widget.NewFormItem("Laplacian", d.laplacian),
		widget.NewFormItem("Binarization", d.otsuCheck),
		widget.NewFormItem("Threshold (0-255)", d.thresholdEntry),
		widget.NewFormItem("Dilation kernel", d.dilationEntry),
		widget.NewFormItem("Erosion kernel", d.erosionEntry),
	)
	editorForm := widget.NewForm(
		widget.NewFormItem("Undo steps (0 = unlimited)", d.historyEntry),
		widget.NewFormItem("Theme", d.themeSelect),
	)
	return container.NewVBox(
		widget.NewCard("Filters", "", filterForm),
		widget.NewCard("Editor", "", editorForm),
	)
}

// Settings parses and validates the entered values.
func (d *SettingsDialog) Settings() (prefs.Settings, error) {
	s := d.settings
	var err error
	if s.Params.GaussianSigma, err = parseFloat("Gaussian sigma", d.sigmaEntry.Text); err != nil {
		return s, err
	}
	if s.Params.MedianKernel, err = parseInt("median kernel", d.medianEntry.Text); err != nil {
		return s, err
	}
	if s.Params.DilationKernel, err = parseInt("dilation kernel", d.dilationEntry.Text); err != nil {
		return s, err
	}
	if s.Params.ErosionKernel, err = parseInt("erosion kernel", d.erosionEntry.Text); err != nil {
		return s, err
	}
	if s.Params.BinarizationThreshold, err = parseInt("threshold", d.thresholdEntry.Text); err != nil {
		return s, err
	}
	if s.HistoryCapacity, err = parseInt("undo steps", d.historyEntry.Text); err != nil {
		return s, err
	}
	s.Params.LaplacianKernel = engine.Laplacian8
	if d.laplacian.Selected == laplacianChoices[0] {
		s.Params.LaplacianKernel = engine.Laplacian4
	}
	s.Params.Otsu = d.otsuCheck.Checked
	s.Theme = d.themeSelect.Selected
	return s, s.Validate()
}

func intEntry(v int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.Itoa(v))
	return e
}

func parseInt(field, text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, text, err)
	}
	return v, nil
}

func parseFloat(field, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, text, err)
	}
	return v, nil
}
