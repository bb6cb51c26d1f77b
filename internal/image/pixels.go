package image

import (
	"bytes"
	"image"
	"image/draw"

	"image-processor/pkg/colorutil"
)

// Clone returns an owned *image.RGBA copy of src with its origin at (0,0).
// This is the canonical pixel form used for snapshots and engine calls.
func Clone(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	rgba, isRGBA := src.(*image.RGBA)
	if isRGBA && rgba == nil {
		return nil
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if isRGBA {
		rowLen := b.Dx() * 4
		for y := 0; y < b.Dy(); y++ {
			srcOff := rgba.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], rgba.Pix[srcOff:srcOff+rowLen])
		}
		return dst
	}

	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Equal reports whether two images have identical size and pixels.
func Equal(a, b *image.RGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ca, cb := Clone(a), Clone(b)
	return bytes.Equal(ca.Pix, cb.Pix)
}

// Crop copies the part of src inside r. It returns false when r does not
// overlap the image.
func Crop(src *image.RGBA, r image.Rectangle) (*image.RGBA, bool) {
	if src == nil {
		return nil, false
	}
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil, false
	}
	return Clone(src.SubImage(r)), true
}

// Clear returns a copy of src with r set to transparent black.
func Clear(src *image.RGBA, r image.Rectangle) *image.RGBA {
	dst := Clone(src)
	if dst == nil {
		return nil
	}
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return dst
	}
	draw.Draw(dst, r, image.Transparent, image.Point{}, draw.Src)
	return dst
}

// Paste returns a copy of dst with src drawn over it with its top-left
// corner at at. Pixels falling outside dst are dropped.
func Paste(dst, src *image.RGBA, at image.Point) *image.RGBA {
	out := Clone(dst)
	if out == nil || src == nil {
		return out
	}
	sb := src.Bounds()
	target := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	draw.Draw(out, target, src, sb.Min, draw.Over)
	return out
}

var (
	matchStroke = colorutil.Match
	matchFill   = colorutil.WithAlpha(colorutil.Match, 80)
)

// Highlight returns a copy of src with r outlined in red and tinted with a
// translucent red fill.
func Highlight(src *image.RGBA, r image.Rectangle, stroke int) *image.RGBA {
	out := Clone(src)
	if out == nil {
		return nil
	}
	r = r.Intersect(out.Bounds())
	if r.Empty() {
		return out
	}
	draw.Draw(out, r, image.NewUniform(matchFill), image.Point{}, draw.Over)

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stroke),
		image.Rect(r.Min.X, r.Max.Y-stroke, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+stroke, r.Max.Y),
		image.Rect(r.Max.X-stroke, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(out, e.Intersect(r), image.NewUniform(matchStroke), image.Point{}, draw.Src)
	}
	return out
}
