package image

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func TestCloneIsIndependent(t *testing.T) {
	src := gradient(8, 6)
	dup := Clone(src)
	if !Equal(src, dup) {
		t.Fatal("clone differs from source")
	}
	src.SetRGBA(0, 0, color.RGBA{A: 1})
	if Equal(src, dup) {
		t.Fatal("mutating the source changed the clone")
	}
}

func TestCloneRebasesSubImage(t *testing.T) {
	src := gradient(10, 10)
	sub := src.SubImage(image.Rect(3, 4, 7, 9))
	c := Clone(sub)
	if c.Bounds() != image.Rect(0, 0, 4, 5) {
		t.Fatalf("bounds = %v", c.Bounds())
	}
	if c.RGBAAt(0, 0) != src.RGBAAt(3, 4) {
		t.Fatal("clone did not start at the sub-image origin")
	}
	if Clone(nil) != nil || Clone((*image.RGBA)(nil)) != nil {
		t.Fatal("nil clone should be nil")
	}
}

func TestCrop(t *testing.T) {
	src := gradient(20, 10)
	got, ok := Crop(src, image.Rect(15, 5, 30, 30))
	if !ok {
		t.Fatal("crop overlapping the edge should succeed")
	}
	if got.Bounds().Size() != image.Pt(5, 5) {
		t.Fatalf("cropped size = %v, want 5x5", got.Bounds().Size())
	}
	if got.RGBAAt(0, 0) != src.RGBAAt(15, 5) {
		t.Fatal("crop origin mismatch")
	}
	if _, ok := Crop(src, image.Rect(40, 40, 50, 50)); ok {
		t.Fatal("crop outside the image should fail")
	}
}

func TestClearLeavesSourceAlone(t *testing.T) {
	src := gradient(10, 10)
	before := Clone(src)
	out := Clear(src, image.Rect(2, 2, 5, 5))
	if !Equal(src, before) {
		t.Fatal("Clear mutated its input")
	}
	if out.RGBAAt(3, 3) != (color.RGBA{}) {
		t.Fatalf("cleared pixel = %v, want transparent", out.RGBAAt(3, 3))
	}
	if out.RGBAAt(6, 6) != src.RGBAAt(6, 6) {
		t.Fatal("pixel outside the region changed")
	}
}

func TestPasteClipsToDestination(t *testing.T) {
	dst := gradient(10, 10)
	patch := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range patch.Pix {
		patch.Pix[i] = 255
	}
	out := Paste(dst, patch, image.Pt(8, 8))
	if out.Bounds() != dst.Bounds() {
		t.Fatalf("paste changed size to %v", out.Bounds())
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if out.RGBAAt(9, 9) != white {
		t.Fatalf("pasted pixel = %v", out.RGBAAt(9, 9))
	}
	if out.RGBAAt(7, 7) != dst.RGBAAt(7, 7) {
		t.Fatal("pixel before paste origin changed")
	}
}

func TestHighlight(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	out := Highlight(src, image.Rect(5, 5, 15, 15), 2)
	if out.RGBAAt(5, 5) != matchStroke {
		t.Fatalf("edge pixel = %v, want stroke", out.RGBAAt(5, 5))
	}
	if out.RGBAAt(10, 10) != matchFill {
		t.Fatalf("inner pixel = %v, want fill", out.RGBAAt(10, 10))
	}
	if out.RGBAAt(0, 0) != (color.RGBA{}) {
		t.Fatal("pixel outside the match changed")
	}
}

func TestSaveLoadLossless(t *testing.T) {
	dir := t.TempDir()
	src := gradient(12, 9)
	for _, ext := range []string{".png", ".bmp", ".tiff"} {
		path := filepath.Join(dir, "img"+ext)
		if err := Save(src, path); err != nil {
			t.Fatalf("Save(%s): %v", ext, err)
		}
		doc, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", ext, err)
		}
		if !Equal(src, doc.Image) {
			t.Errorf("%s round trip changed pixels", ext)
		}
		if doc.Path != path || doc.Width() != 12 || doc.Height() != 9 {
			t.Errorf("%s metadata: %+v", ext, doc)
		}
	}
}

func TestLoadTIFFResolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.tif")
	if err := Save(gradient(4, 4), path); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// The x/image encoder writes 72 pixels per inch.
	if math.Abs(doc.DPI-72) > 1e-9 {
		t.Fatalf("DPI = %v, want 72", doc.DPI)
	}
}

func TestSaveErrors(t *testing.T) {
	dir := t.TempDir()
	if err := Save(gradient(2, 2), filepath.Join(dir, "x.xyz")); err == nil {
		t.Fatal("expected unsupported format error")
	}
	if err := Save(nil, filepath.Join(dir, "x.png")); err == nil {
		t.Fatal("expected error for nil image")
	}
	if _, err := Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if Exists(filepath.Join(dir, "missing.png")) || Exists("") {
		t.Fatal("Exists reported a missing file")
	}
}

func TestPNGBytes(t *testing.T) {
	src := gradient(5, 5)
	data, err := EncodePNG(src)
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodePNG(data)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(src, back) {
		t.Fatal("png bytes did not round trip")
	}
}
