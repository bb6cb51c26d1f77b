package cmd

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"image-processor/internal/engine"
	imgutil "image-processor/internal/image"
	"image-processor/internal/spectrum"
)

// pixelEngine inverts for every filter, transforms with the pure Go FFT
// and matches templates by exact comparison.
type pixelEngine struct {
	fft *spectrum.Transformer
}

func newPixelEngine() *pixelEngine {
	return &pixelEngine{fft: spectrum.NewTransformer()}
}

func invert(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := imgutil.Clone(src)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255 - out.Pix[i]
		out.Pix[i+1] = 255 - out.Pix[i+1]
		out.Pix[i+2] = 255 - out.Pix[i+2]
	}
	return out, nil
}

func (e *pixelEngine) Grayscale(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	return invert(ctx, src)
}
func (e *pixelEngine) GaussianBlur(ctx context.Context, src *image.RGBA, _ float64) (*image.RGBA, error) {
	return invert(ctx, src)
}
func (e *pixelEngine) Median(ctx context.Context, src *image.RGBA, _ int) (*image.RGBA, error) {
	return invert(ctx, src)
}
func (e *pixelEngine) Laplacian(ctx context.Context, src *image.RGBA, _ int) (*image.RGBA, error) {
	return invert(ctx, src)
}
func (e *pixelEngine) Sobel(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	return invert(ctx, src)
}
func (e *pixelEngine) Binarize(ctx context.Context, src *image.RGBA, _ int, _ bool) (*image.RGBA, error) {
	return invert(ctx, src)
}
func (e *pixelEngine) Dilate(ctx context.Context, src *image.RGBA, _ int) (*image.RGBA, error) {
	return invert(ctx, src)
}
func (e *pixelEngine) Erode(ctx context.Context, src *image.RGBA, _ int) (*image.RGBA, error) {
	return invert(ctx, src)
}

func (e *pixelEngine) ForwardTransform(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	return e.fft.Forward(ctx, src)
}
func (e *pixelEngine) InverseTransform(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	return e.fft.Inverse(ctx, src)
}
func (e *pixelEngine) HasTransformData() bool { return e.fft.HasData() }
func (e *pixelEngine) ClearTransformData()    { e.fft.Clear() }

func (e *pixelEngine) TemplateMatch(ctx context.Context, src, tmpl *image.RGBA) (image.Rectangle, bool, error) {
	ss, ts := src.Bounds().Size(), tmpl.Bounds().Size()
	for y := 0; y+ts.Y <= ss.Y; y++ {
		for x := 0; x+ts.X <= ss.X; x++ {
			r := image.Rect(x, y, x+ts.X, y+ts.Y)
			if imgutil.Equal(imgutil.Clone(src.SubImage(r)), tmpl) {
				return r, true, nil
			}
		}
	}
	return image.Rectangle{}, false, nil
}

var _ engine.Engine = (*pixelEngine)(nil)

// useEngine installs a fresh pixelEngine for the duration of the test.
func useEngine(t *testing.T) {
	t.Helper()
	old := newEngine
	newEngine = func() engine.Engine { return newPixelEngine() }
	t.Cleanup(func() { newEngine = old })
}

func pattern(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 9), G: uint8(y * 13), B: uint8(x * y), A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, name string, img *image.RGBA) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := imgutil.Save(img, path); err != nil {
		t.Fatal(err)
	}
	return path
}
