package spectrum

import (
	"context"
	"errors"
	"image"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Transformer computes the forward 2-D FFT magnitude spectrum of an image
// and keeps the unshifted coefficients so an inverse can reconstruct the
// grayscale source.
type Transformer struct {
	coeffs        *mat.CDense
	width, height int
}

// NewTransformer creates a transformer holding no data.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// HasData reports whether coefficients from a forward pass are held.
func (t *Transformer) HasData() bool {
	return t.coeffs != nil
}

// Clear drops the held coefficients.
func (t *Transformer) Clear() {
	t.coeffs = nil
	t.width, t.height = 0, 0
}

// Forward converts src to grayscale, zero pads it to powers of two and
// returns the centred log magnitude spectrum cropped to the source size.
func (t *Transformer) Forward(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	if src == nil {
		return nil, errors.New("no image for forward transform")
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("empty image for forward transform")
	}
	padW, padH := nextPowerOf2(w), nextPowerOf2(h)

	data := mat.NewCDense(padH, padW, nil)
	raw := data.RawCMatrix()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			gray := 0.299*float64(src.Pix[o]) + 0.587*float64(src.Pix[o+1]) + 0.114*float64(src.Pix[o+2])
			raw.Data[y*raw.Stride+x] = complex(gray, 0)
		}
	}

	if err := transform2D(ctx, data, false); err != nil {
		return nil, err
	}

	backup := mat.NewCDense(padH, padW, nil)
	copyCDense(backup, data)

	shifted := fftShift(data)
	sraw := shifted.RawCMatrix()
	mags := make([]float64, padW*padH)
	maxVal := 0.0
	for y := 0; y < padH; y++ {
		for x := 0; x < padW; x++ {
			m := math.Log(1 + cmplx.Abs(sraw.Data[y*sraw.Stride+x]))
			mags[y*padW+x] = m
			if m > maxVal {
				maxVal = m
			}
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	startX, startY := (padW-w)/2, (padH-h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(mags[(y+startY)*padW+x+startX] / maxVal * 255)
			o := out.PixOffset(x, y)
			out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = v, v, v, 255
		}
	}

	t.coeffs = backup
	t.width, t.height = w, h
	return out, nil
}

// Inverse reconstructs the grayscale image from the coefficients of the
// last forward pass and releases them. The current image is ignored apart
// from validation.
func (t *Transformer) Inverse(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	if src == nil {
		return nil, errors.New("no image for inverse transform")
	}
	if t.coeffs == nil {
		return nil, ErrNoForwardResult
	}
	rows, cols := t.coeffs.Dims()
	data := mat.NewCDense(rows, cols, nil)
	copyCDense(data, t.coeffs)

	if err := transform2D(ctx, data, true); err != nil {
		return nil, err
	}

	raw := data.RawCMatrix()
	out := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			v := math.Round(real(raw.Data[y*raw.Stride+x]))
			g := uint8(math.Max(0, math.Min(255, v)))
			o := out.PixOffset(x, y)
			out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = g, g, g, 255
		}
	}

	t.Clear()
	return out, nil
}

// transform2D runs the 1-D transform over every row and then every column.
// The inverse is normalised by the sequence length.
func transform2D(ctx context.Context, m *mat.CDense, inverse bool) error {
	rows, cols := m.Dims()
	raw := m.RawCMatrix()

	rowFFT := fourier.NewCmplxFFT(cols)
	buf := make([]complex128, cols)
	for y := 0; y < rows; y++ {
		row := raw.Data[y*raw.Stride : y*raw.Stride+cols]
		apply(rowFFT, buf, row, inverse)
		copy(row, buf)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	colFFT := fourier.NewCmplxFFT(rows)
	col := make([]complex128, rows)
	buf = make([]complex128, rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			col[y] = raw.Data[y*raw.Stride+x]
		}
		apply(colFFT, buf, col, inverse)
		for y := 0; y < rows; y++ {
			raw.Data[y*raw.Stride+x] = buf[y]
		}
	}
	return ctx.Err()
}

func apply(fft *fourier.CmplxFFT, dst, src []complex128, inverse bool) {
	if !inverse {
		fft.Coefficients(dst, src)
		return
	}
	fft.Sequence(dst, src)
	scale := complex(1/float64(len(src)), 0)
	for i := range dst {
		dst[i] *= scale
	}
}

// fftShift swaps quadrants so the zero frequency sits at the centre.
func fftShift(m *mat.CDense) *mat.CDense {
	rows, cols := m.Dims()
	out := mat.NewCDense(rows, cols, nil)
	cy, cx := rows/2, cols/2
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out.Set((y+cy)%rows, (x+cx)%cols, m.At(y, x))
		}
	}
	return out
}

func copyCDense(dst, src *mat.CDense) {
	d, s := dst.RawCMatrix(), src.RawCMatrix()
	rows, cols := src.Dims()
	for y := 0; y < rows; y++ {
		copy(d.Data[y*d.Stride:y*d.Stride+cols], s.Data[y*s.Stride:y*s.Stride+cols])
	}
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
