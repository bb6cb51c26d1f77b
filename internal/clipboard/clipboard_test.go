package clipboard

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func sample() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	return img
}

func TestMemoryCopiesImages(t *testing.T) {
	m := NewMemory()
	if img, err := m.Image(); err != nil || img != nil {
		t.Fatalf("empty clipboard returned %v, %v", img, err)
	}

	src := sample()
	if err := m.SetImage(src); err != nil {
		t.Fatal(err)
	}
	src.SetRGBA(1, 1, color.RGBA{})

	got, err := m.Image()
	if err != nil {
		t.Fatal(err)
	}
	if got.RGBAAt(1, 1) != (color.RGBA{R: 9, G: 8, B: 7, A: 255}) {
		t.Fatal("clipboard shares pixels with the caller")
	}

	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	if img, _ := m.Image(); img != nil {
		t.Fatal("Clear left an image behind")
	}
}

func TestSystemFallsBackToMemory(t *testing.T) {
	s := NewSystem()
	s.init = func() error { return errNoDisplay }

	if s.Available() {
		t.Fatal("expected the desktop clipboard to be unavailable")
	}
	if !errors.Is(s.ensureInit(), errNoDisplay) {
		t.Fatalf("init error = %v", s.ensureInit())
	}
	if err := s.SetImage(sample()); err != nil {
		t.Fatal(err)
	}
	got, err := s.Image()
	if err != nil || got == nil {
		t.Fatalf("Image() = %v, %v", got, err)
	}
	if got.Bounds().Dx() != 3 {
		t.Fatalf("unexpected size %v", got.Bounds())
	}
	s.Clear()
	if got, _ := s.Image(); got != nil {
		t.Fatal("Clear left an image behind")
	}
}
