package engine

import (
	"errors"
	"testing"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"defaults", func(*Params) {}, ""},
		{"zero sigma", func(p *Params) { p.GaussianSigma = 0 }, "gaussian sigma"},
		{"even median", func(p *Params) { p.MedianKernel = 4 }, "median kernel"},
		{"negative dilation", func(p *Params) { p.DilationKernel = -3 }, "dilation kernel"},
		{"zero erosion", func(p *Params) { p.ErosionKernel = 0 }, "erosion kernel"},
		{"threshold too high", func(p *Params) { p.BinarizationThreshold = 256 }, "binarization threshold"},
		{"laplacian 6", func(p *Params) { p.LaplacianKernel = 6 }, "laplacian kernel"},
		{"laplacian 4", func(p *Params) { p.LaplacianKernel = Laplacian4 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestFilterValidateIsScoped(t *testing.T) {
	p := DefaultParams()
	p.MedianKernel = 2
	if err := FilterSobel.Validate(p); err != nil {
		t.Fatalf("sobel should ignore the median kernel: %v", err)
	}
	if err := FilterMedian.Validate(p); err == nil {
		t.Fatal("median should reject an even kernel")
	}

	p = DefaultParams()
	p.BinarizationThreshold = 400
	if err := FilterBinarize.Validate(p); err != nil {
		t.Fatalf("otsu binarization ignores the fixed threshold: %v", err)
	}
	p.Otsu = false
	if err := FilterBinarize.Validate(p); err == nil {
		t.Fatal("fixed binarization should reject 400")
	}
}

func TestParseFilter(t *testing.T) {
	for _, f := range Filters() {
		got, err := ParseFilter(f.Key())
		if err != nil || got != f {
			t.Errorf("ParseFilter(%q) = %v, %v", f.Key(), got, err)
		}
	}
	if _, err := ParseFilter("sharpen"); err == nil {
		t.Fatal("expected unknown filter error")
	}
	if FilterMedian.String() != "Median Filter" || FilterGrayscale.String() != "GrayScale" {
		t.Fatalf("unexpected log names %q %q", FilterMedian, FilterGrayscale)
	}
}
