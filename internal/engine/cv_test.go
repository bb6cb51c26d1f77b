package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

func checker(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x/cell+y/cell)%2 == 0 {
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestCVFiltersPreserveSize(t *testing.T) {
	ctx := context.Background()
	e := NewCV()
	src := checker(32, 24, 4)
	p := DefaultParams()

	for _, f := range Filters() {
		out, err := Run(ctx, e, f, p, src)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if out.Bounds() != src.Bounds() {
			t.Errorf("%s: bounds = %v, want %v", f, out.Bounds(), src.Bounds())
		}
		if out == src {
			t.Errorf("%s returned its input", f)
		}
	}
}

func TestCVGrayscaleWeights(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		src.SetRGBA(i%2, i/2, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	}
	out, err := NewCV().Grayscale(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	// 0.299*200 + 0.587*100 + 0.114*50 = 124.2
	got := out.RGBAAt(0, 0)
	if got.R < 123 || got.R > 125 || got.R != got.G || got.G != got.B {
		t.Fatalf("gray = %v, want about 124", got)
	}
}

func TestCVBinarizeIsBinary(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 1))
	for x := 0; x < 16; x++ {
		v := uint8(x * 16)
		src.SetRGBA(x, 0, color.RGBA{R: v, G: v, B: v, A: 255})
	}
	out, err := NewCV().Binarize(context.Background(), src, 128, false)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 16; x++ {
		v := out.RGBAAt(x, 0).R
		want := uint8(0)
		if x*16 > 128 {
			want = 255
		}
		if v != want {
			t.Fatalf("x=%d: %d, want %d", x, v, want)
		}
	}
}

func TestCVRejectsBadKernel(t *testing.T) {
	var ve *ValidationError
	_, err := NewCV().Dilate(context.Background(), checker(8, 8, 2), 2)
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCVCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewCV().Sobel(ctx, checker(8, 8, 2)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCVTemplateMatch(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	// A dark cross the template is cut from.
	for y := 10; y < 18; y++ {
		for x := 20; x < 28; x++ {
			if x == 24 || y == 14 {
				src.SetRGBA(x, y, color.RGBA{A: 255})
			}
		}
	}
	tmpl := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			tmpl.SetRGBA(x, y, src.RGBAAt(20+x, 10+y))
		}
	}

	e := NewCV()
	r, ok, err := e.TemplateMatch(context.Background(), src, tmpl)
	if err != nil || !ok {
		t.Fatalf("match failed: ok=%v err=%v", ok, err)
	}
	if r != image.Rect(20, 10, 28, 18) {
		t.Fatalf("match = %v, want (20,10)-(28,18)", r)
	}

	var ve *ValidationError
	if _, _, err := e.TemplateMatch(context.Background(), tmpl, src); !errors.As(err, &ve) {
		t.Fatalf("oversized template: err = %v", err)
	}
}

func TestCVTransformData(t *testing.T) {
	ctx := context.Background()
	e := NewCV()
	src := checker(16, 16, 4)
	if e.HasTransformData() {
		t.Fatal("fresh engine has transform data")
	}
	mag, err := e.ForwardTransform(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	if !e.HasTransformData() {
		t.Fatal("forward transform kept no data")
	}
	if _, err := e.InverseTransform(ctx, mag); err != nil {
		t.Fatal(err)
	}
	if e.HasTransformData() {
		t.Fatal("inverse transform should release the data")
	}
	if _, err := e.ForwardTransform(ctx, src); err != nil {
		t.Fatal(err)
	}
	e.ClearTransformData()
	if e.HasTransformData() {
		t.Fatal("ClearTransformData left data")
	}
}
