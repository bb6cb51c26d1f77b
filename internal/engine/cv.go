package engine

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"image-processor/internal/logging"
	"image-processor/internal/spectrum"
)

// CV implements Engine with OpenCV kernels. The frequency transform runs
// on gonum through spectrum.Transformer.
type CV struct {
	mu       sync.Mutex
	spectrum *spectrum.Transformer
}

// NewCV creates an OpenCV engine.
func NewCV() *CV {
	return &CV{spectrum: spectrum.NewTransformer()}
}

var _ Engine = (*CV)(nil)

// run converts src, applies kernel and converts the result back. The
// context is checked before and after the kernel.
func (e *CV) run(ctx context.Context, name string, src *image.RGBA, kernel func(in gocv.Mat, out *gocv.Mat)) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("failed to run %s: empty image", name)
	}
	start := time.Now()

	in := rgbaToMat(src)
	defer in.Close()
	out := gocv.NewMat()
	defer out.Close()

	kernel(in, &out)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if out.Empty() {
		return nil, fmt.Errorf("failed to run %s: empty result", name)
	}
	result := matToRGBA(out, src)
	logging.Logger().Debug("engine kernel",
		"op", name,
		"width", result.Bounds().Dx(),
		"height", result.Bounds().Dy(),
		"elapsed", time.Since(start))
	return result, nil
}

func toGray(in gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	gocv.CvtColor(in, &gray, gocv.ColorBGRToGray)
	return gray
}

// Grayscale converts to luminance.
func (e *CV) Grayscale(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	return e.run(ctx, "grayscale", src, func(in gocv.Mat, out *gocv.Mat) {
		gocv.CvtColor(in, out, gocv.ColorBGRToGray)
	})
}

// GaussianBlur blurs with a kernel spanning three sigmas each side.
func (e *CV) GaussianBlur(ctx context.Context, src *image.RGBA, sigma float64) (*image.RGBA, error) {
	if sigma <= 0 {
		return nil, &ValidationError{Field: "gaussian sigma", Value: sigma, Reason: "must be positive"}
	}
	radius := int(math.Ceil(sigma * 3))
	size := radius*2 + 1
	return e.run(ctx, "gaussian", src, func(in gocv.Mat, out *gocv.Mat) {
		gocv.GaussianBlur(in, out, image.Pt(size, size), sigma, sigma, gocv.BorderReplicate)
	})
}

// Median replaces each pixel with the median of its neighbourhood.
func (e *CV) Median(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error) {
	if err := ValidateKernel("median kernel", kernel); err != nil {
		return nil, err
	}
	return e.run(ctx, "median", src, func(in gocv.Mat, out *gocv.Mat) {
		gocv.MedianBlur(in, out, kernel)
	})
}

// Laplacian detects edges with the 4- or 8-neighbour kernel and scales
// the absolute response so the strongest edge is white.
func (e *CV) Laplacian(ctx context.Context, src *image.RGBA, kind int) (*image.RGBA, error) {
	if err := ValidateLaplacian(kind); err != nil {
		return nil, err
	}
	return e.run(ctx, "laplacian", src, func(in gocv.Mat, out *gocv.Mat) {
		gray := toGray(in)
		defer gray.Close()
		lap := gocv.NewMat()
		defer lap.Close()

		if kind == Laplacian4 {
			gocv.Laplacian(gray, &lap, gocv.MatTypeCV32F, 1, 1, 0, gocv.BorderReplicate)
		} else {
			k := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
			defer k.Close()
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					k.SetFloatAt(r, c, 1)
				}
			}
			k.SetFloatAt(1, 1, -8)
			gocv.Filter2D(gray, &lap, gocv.MatTypeCV32F, k, image.Pt(-1, -1), 0, gocv.BorderReplicate)
		}

		minVal, maxVal, _, _ := gocv.MinMaxLoc(lap)
		peak := math.Max(math.Abs(float64(minVal)), math.Abs(float64(maxVal)))
		if peak == 0 {
			peak = 1
		}
		gocv.ConvertScaleAbs(lap, out, 255/peak, 0)
	})
}

// Sobel returns the gradient magnitude, saturated at 255.
func (e *CV) Sobel(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	return e.run(ctx, "sobel", src, func(in gocv.Mat, out *gocv.Mat) {
		gray := toGray(in)
		defer gray.Close()
		gx, gy, mag := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
		defer gx.Close()
		defer gy.Close()
		defer mag.Close()

		gocv.Sobel(gray, &gx, gocv.MatTypeCV32F, 1, 0, 3, 1, 0, gocv.BorderDefault)
		gocv.Sobel(gray, &gy, gocv.MatTypeCV32F, 0, 1, 3, 1, 0, gocv.BorderDefault)
		gocv.Magnitude(gx, gy, &mag)
		gocv.ConvertScaleAbs(mag, out, 1, 0)
	})
}

// Binarize thresholds the luminance. With otsu set the threshold is taken
// from the histogram.
func (e *CV) Binarize(ctx context.Context, src *image.RGBA, threshold int, otsu bool) (*image.RGBA, error) {
	if !otsu {
		if err := ValidateThreshold(threshold); err != nil {
			return nil, err
		}
	}
	return e.run(ctx, "binarize", src, func(in gocv.Mat, out *gocv.Mat) {
		gray := toGray(in)
		defer gray.Close()
		typ := gocv.ThresholdBinary
		if otsu {
			typ |= gocv.ThresholdOtsu
		}
		gocv.Threshold(gray, out, float32(threshold), 255, typ)
	})
}

// Dilate grows bright regions with a square structuring element.
func (e *CV) Dilate(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error) {
	if err := ValidateKernel("dilation kernel", kernel); err != nil {
		return nil, err
	}
	return e.run(ctx, "dilate", src, func(in gocv.Mat, out *gocv.Mat) {
		k := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kernel, kernel))
		defer k.Close()
		gocv.Dilate(in, out, k)
	})
}

// Erode shrinks bright regions with a square structuring element.
func (e *CV) Erode(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error) {
	if err := ValidateKernel("erosion kernel", kernel); err != nil {
		return nil, err
	}
	return e.run(ctx, "erode", src, func(in gocv.Mat, out *gocv.Mat) {
		k := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kernel, kernel))
		defer k.Close()
		gocv.Erode(in, out, k)
	})
}

// ForwardTransform renders the centred log magnitude spectrum.
func (e *CV) ForwardTransform(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrNoImage
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()
	out, err := e.spectrum.Forward(ctx, src)
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("engine transform", "op", "fft", "elapsed", time.Since(start))
	return out, nil
}

// InverseTransform reconstructs the image from the retained coefficients.
func (e *CV) InverseTransform(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrNoImage
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()
	out, err := e.spectrum.Inverse(ctx, src)
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("engine transform", "op", "ifft", "elapsed", time.Since(start))
	return out, nil
}

// HasTransformData reports whether forward coefficients are retained.
func (e *CV) HasTransformData() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spectrum.HasData()
}

// ClearTransformData drops retained coefficients.
func (e *CV) ClearTransformData() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spectrum.Clear()
}

// TemplateMatch finds the placement of tmpl with the smallest squared
// difference of luminance.
func (e *CV) TemplateMatch(ctx context.Context, src, tmpl *image.RGBA) (image.Rectangle, bool, error) {
	if src == nil || tmpl == nil {
		return image.Rectangle{}, false, ErrNoImage
	}
	ss, ts := src.Bounds().Size(), tmpl.Bounds().Size()
	if ts.X == 0 || ts.Y == 0 {
		return image.Rectangle{}, false, &ValidationError{Field: "template", Value: ts, Reason: "is empty"}
	}
	if ts.X > ss.X || ts.Y > ss.Y {
		return image.Rectangle{}, false, &ValidationError{Field: "template", Value: ts, Reason: fmt.Sprintf("is larger than the image %v", ss)}
	}
	if err := ctx.Err(); err != nil {
		return image.Rectangle{}, false, err
	}

	srcMat := rgbaToMat(src)
	defer srcMat.Close()
	tmplMat := rgbaToMat(tmpl)
	defer tmplMat.Close()
	srcGray := toGray(srcMat)
	defer srcGray.Close()
	tmplGray := toGray(tmplMat)
	defer tmplGray.Close()

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(srcGray, tmplGray, &result, gocv.TmSqdiff, mask)

	if err := ctx.Err(); err != nil {
		return image.Rectangle{}, false, err
	}
	if result.Empty() {
		return image.Rectangle{}, false, nil
	}
	_, _, minLoc, _ := gocv.MinMaxLoc(result)
	return image.Rectangle{Min: minLoc, Max: minLoc.Add(ts)}, true, nil
}
