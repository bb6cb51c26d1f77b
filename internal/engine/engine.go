// Package engine defines the pixel-processing engine the editing session
// calls into, and ships an OpenCV-backed implementation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrNoImage is returned when an engine call receives no source image.
var ErrNoImage = errors.New("no source image")

// Engine runs the destructive image operations. Every call returns a new
// image and never modifies src.
type Engine interface {
	Grayscale(ctx context.Context, src *image.RGBA) (*image.RGBA, error)
	GaussianBlur(ctx context.Context, src *image.RGBA, sigma float64) (*image.RGBA, error)
	Median(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error)
	Laplacian(ctx context.Context, src *image.RGBA, kind int) (*image.RGBA, error)
	Sobel(ctx context.Context, src *image.RGBA) (*image.RGBA, error)
	Binarize(ctx context.Context, src *image.RGBA, threshold int, otsu bool) (*image.RGBA, error)
	Dilate(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error)
	Erode(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error)

	// ForwardTransform renders the magnitude spectrum and retains the
	// coefficients for InverseTransform.
	ForwardTransform(ctx context.Context, src *image.RGBA) (*image.RGBA, error)
	InverseTransform(ctx context.Context, src *image.RGBA) (*image.RGBA, error)
	HasTransformData() bool
	ClearTransformData()

	// TemplateMatch returns the best placement of tmpl inside src.
	TemplateMatch(ctx context.Context, src, tmpl *image.RGBA) (image.Rectangle, bool, error)
}

// Filter names one of the parameterised filters.
type Filter int

const (
	FilterGrayscale Filter = iota
	FilterGaussian
	FilterMedian
	FilterLaplacian
	FilterSobel
	FilterBinarize
	FilterDilate
	FilterErode
)

var filterNames = []struct {
	key  string
	name string
}{
	{"grayscale", "GrayScale"},
	{"gaussian", "Gaussian Blur"},
	{"median", "Median Filter"},
	{"laplacian", "Laplacian"},
	{"sobel", "Sobel"},
	{"binarize", "Binarization"},
	{"dilate", "Dilation"},
	{"erode", "Erosion"},
}

// Filters lists every filter in menu order.
func Filters() []Filter {
	out := make([]Filter, len(filterNames))
	for i := range out {
		out[i] = Filter(i)
	}
	return out
}

// String returns the operation name recorded in the log.
func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f].name
}

// Key returns the short command-line name.
func (f Filter) Key() string {
	if f < 0 || int(f) >= len(filterNames) {
		return ""
	}
	return filterNames[f].key
}

// ParseFilter resolves a command-line name such as "gaussian".
func ParseFilter(key string) (Filter, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, n := range filterNames {
		if n.key == key {
			return Filter(i), nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", key)
}

// Validate checks only the parameters f uses.
func (f Filter) Validate(p Params) error {
	switch f {
	case FilterGaussian:
		if p.GaussianSigma <= 0 {
			return &ValidationError{Field: "gaussian sigma", Value: p.GaussianSigma, Reason: "must be positive"}
		}
	case FilterMedian:
		return ValidateKernel("median kernel", p.MedianKernel)
	case FilterLaplacian:
		return ValidateLaplacian(p.LaplacianKernel)
	case FilterBinarize:
		if !p.Otsu {
			return ValidateThreshold(p.BinarizationThreshold)
		}
	case FilterDilate:
		return ValidateKernel("dilation kernel", p.DilationKernel)
	case FilterErode:
		return ValidateKernel("erosion kernel", p.ErosionKernel)
	}
	return nil
}

// Run dispatches f to e with its parameters taken from p.
func Run(ctx context.Context, e Engine, f Filter, p Params, src *image.RGBA) (*image.RGBA, error) {
	switch f {
	case FilterGrayscale:
		return e.Grayscale(ctx, src)
	case FilterGaussian:
		return e.GaussianBlur(ctx, src, p.GaussianSigma)
	case FilterMedian:
		return e.Median(ctx, src, p.MedianKernel)
	case FilterLaplacian:
		return e.Laplacian(ctx, src, p.LaplacianKernel)
	case FilterSobel:
		return e.Sobel(ctx, src)
	case FilterBinarize:
		return e.Binarize(ctx, src, p.BinarizationThreshold, p.Otsu)
	case FilterDilate:
		return e.Dilate(ctx, src, p.DilationKernel)
	case FilterErode:
		return e.Erode(ctx, src, p.ErosionKernel)
	}
	return nil, fmt.Errorf("unknown filter %d", int(f))
}
