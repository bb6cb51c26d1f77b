package dialogs

import (
	"strconv"

	"image-processor/internal/engine"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// HasParams reports whether f takes a parameter worth asking for.
func HasParams(f engine.Filter) bool {
	return f != engine.FilterGrayscale && f != engine.FilterSobel
}

// ParamsDialog asks for the parameter of one filter before it runs. It
// starts from the session parameters.
type ParamsDialog struct {
	filter engine.Filter
	params engine.Params
	window fyne.Window

	entry     *widget.Entry
	laplacian *widget.Select
	otsuCheck *widget.Check

	onRun func(engine.Params)
}

// NewParamsDialog creates a prompt for f.
func NewParamsDialog(f engine.Filter, p engine.Params, window fyne.Window, onRun func(engine.Params)) *ParamsDialog {
	d := &ParamsDialog{filter: f, params: p, window: window, onRun: onRun}
	d.entry = widget.NewEntry()

	switch f {
	case engine.FilterGaussian:
		d.entry.SetText(strconv.FormatFloat(p.GaussianSigma, 'g', -1, 64))
	case engine.FilterMedian:
		d.entry.SetText(strconv.Itoa(p.MedianKernel))
	case engine.FilterDilate:
		d.entry.SetText(strconv.Itoa(p.DilationKernel))
	case engine.FilterErode:
		d.entry.SetText(strconv.Itoa(p.ErosionKernel))
	case engine.FilterBinarize:
		d.entry.SetText(strconv.Itoa(p.BinarizationThreshold))
		d.otsuCheck = widget.NewCheck("Automatic (Otsu)", func(on bool) {
			if on {
				d.entry.Disable()
			} else {
				d.entry.Enable()
			}
		})
		d.otsuCheck.SetChecked(p.Otsu)
	case engine.FilterLaplacian:
		d.laplacian = widget.NewSelect(laplacianChoices, nil)
		if p.LaplacianKernel == engine.Laplacian4 {
			d.laplacian.SetSelected(laplacianChoices[0])
		} else {
			d.laplacian.SetSelected(laplacianChoices[1])
		}
	}
	return d
}

func (d *ParamsDialog) items() []*widget.FormItem {
	switch d.filter {
	case engine.FilterGaussian:
		return []*widget.FormItem{widget.NewFormItem("Sigma", d.entry)}
	case engine.FilterLaplacian:
		return []*widget.FormItem{widget.NewFormItem("Kernel", d.laplacian)}
	case engine.FilterBinarize:
		return []*widget.FormItem{
			widget.NewFormItem("Mode", d.otsuCheck),
			widget.NewFormItem("Threshold (0-255)", d.entry),
		}
	default:
		return []*widget.FormItem{widget.NewFormItem("Kernel size (odd)", d.entry)}
	}
}

// Show displays the prompt. Invalid input is reported and the filter is
// not run.
func (d *ParamsDialog) Show() {
	dialog.ShowForm(d.filter.String(), "Apply", "Cancel", d.items(), func(ok bool) {
		if !ok {
			return
		}
		p, err := d.Params()
		if err != nil {
			dialog.ShowError(err, d.window)
			return
		}
		if d.onRun != nil {
			d.onRun(p)
		}
	}, d.window)
}

// Params returns the session parameters with the entered value applied.
func (d *ParamsDialog) Params() (engine.Params, error) {
	p := d.params
	var err error
	switch d.filter {
	case engine.FilterGaussian:
		p.GaussianSigma, err = parseFloat("sigma", d.entry.Text)
	case engine.FilterMedian:
		p.MedianKernel, err = parseInt("kernel size", d.entry.Text)
	case engine.FilterDilate:
		p.DilationKernel, err = parseInt("kernel size", d.entry.Text)
	case engine.FilterErode:
		p.ErosionKernel, err = parseInt("kernel size", d.entry.Text)
	case engine.FilterBinarize:
		p.Otsu = d.otsuCheck.Checked
		if !p.Otsu {
			p.BinarizationThreshold, err = parseInt("threshold", d.entry.Text)
		}
	case engine.FilterLaplacian:
		p.LaplacianKernel = engine.Laplacian8
		if d.laplacian.Selected == laplacianChoices[0] {
			p.LaplacianKernel = engine.Laplacian4
		}
	}
	if err != nil {
		return d.params, err
	}
	return p, d.filter.Validate(p)
}
