package engine

import "fmt"

// Laplacian neighbourhoods.
const (
	Laplacian4 = 4
	Laplacian8 = 8
)

// Params holds the tunable inputs of the filters.
type Params struct {
	GaussianSigma         float64 `json:"gaussianSigma"`
	LaplacianKernel       int     `json:"laplacianKernel"`
	BinarizationThreshold int     `json:"binarizationThreshold"`
	// Otsu picks the binarization threshold from the histogram and ignores
	// BinarizationThreshold.
	Otsu           bool `json:"otsu"`
	DilationKernel int  `json:"dilationKernel"`
	ErosionKernel  int  `json:"erosionKernel"`
	MedianKernel   int  `json:"medianKernel"`
}

// DefaultParams returns the filter defaults.
func DefaultParams() Params {
	return Params{
		GaussianSigma:         1.0,
		LaplacianKernel:       Laplacian8,
		BinarizationThreshold: 128,
		Otsu:                  true,
		DilationKernel:        3,
		ErosionKernel:         3,
		MedianKernel:          3,
	}
}

// ValidationError is returned for a parameter the filters cannot accept.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every field and returns the first problem found.
func (p Params) Validate() error {
	if p.GaussianSigma <= 0 {
		return &ValidationError{Field: "gaussian sigma", Value: p.GaussianSigma, Reason: "must be positive"}
	}
	if err := ValidateLaplacian(p.LaplacianKernel); err != nil {
		return err
	}
	if err := ValidateThreshold(p.BinarizationThreshold); err != nil {
		return err
	}
	kernels := []struct {
		name string
		size int
	}{
		{"dilation kernel", p.DilationKernel},
		{"erosion kernel", p.ErosionKernel},
		{"median kernel", p.MedianKernel},
	}
	for _, k := range kernels {
		if err := ValidateKernel(k.name, k.size); err != nil {
			return err
		}
	}
	return nil
}

// ValidateKernel requires a positive odd kernel size.
func ValidateKernel(name string, size int) error {
	if size <= 0 {
		return &ValidationError{Field: name, Value: size, Reason: "must be positive"}
	}
	if size%2 == 0 {
		return &ValidationError{Field: name, Value: size, Reason: "must be odd"}
	}
	return nil
}

// ValidateThreshold requires a value in [0, 255].
func ValidateThreshold(t int) error {
	if t < 0 || t > 255 {
		return &ValidationError{Field: "binarization threshold", Value: t, Reason: "must be between 0 and 255"}
	}
	return nil
}

// ValidateLaplacian accepts Laplacian4 or Laplacian8.
func ValidateLaplacian(kind int) error {
	if kind != Laplacian4 && kind != Laplacian8 {
		return &ValidationError{Field: "laplacian kernel", Value: kind, Reason: "must be 4 or 8"}
	}
	return nil
}
