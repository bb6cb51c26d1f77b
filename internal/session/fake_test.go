package session

import (
	"context"
	"errors"
	"image"
	"sync"

	imgutil "image-processor/internal/image"
)

// fakeEngine marks each result with a per-operation byte so tests can tell
// images apart, and can be told to fail, block or drop transform data.
type fakeEngine struct {
	mu       sync.Mutex
	calls    []string
	failNext error
	block    chan struct{}
	hasData  bool
	dropData bool

	match      image.Rectangle
	matchFound bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{}
}

func (f *fakeEngine) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeEngine) op(ctx context.Context, name string, src *image.RGBA, mark uint8) (*image.RGBA, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	err := f.failNext
	f.failNext = nil
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := imgutil.Clone(src)
	out.Pix[0] = mark
	return out, nil
}

func (f *fakeEngine) Grayscale(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	return f.op(ctx, "grayscale", src, 1)
}

func (f *fakeEngine) GaussianBlur(ctx context.Context, src *image.RGBA, sigma float64) (*image.RGBA, error) {
	return f.op(ctx, "gaussian", src, 2)
}

func (f *fakeEngine) Median(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error) {
	return f.op(ctx, "median", src, 3)
}

func (f *fakeEngine) Laplacian(ctx context.Context, src *image.RGBA, kind int) (*image.RGBA, error) {
	return f.op(ctx, "laplacian", src, 4)
}

func (f *fakeEngine) Sobel(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	return f.op(ctx, "sobel", src, 5)
}

func (f *fakeEngine) Binarize(ctx context.Context, src *image.RGBA, threshold int, otsu bool) (*image.RGBA, error) {
	return f.op(ctx, "binarize", src, 6)
}

func (f *fakeEngine) Dilate(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error) {
	return f.op(ctx, "dilate", src, 7)
}

func (f *fakeEngine) Erode(ctx context.Context, src *image.RGBA, kernel int) (*image.RGBA, error) {
	return f.op(ctx, "erode", src, 8)
}

func (f *fakeEngine) ForwardTransform(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	out, err := f.op(ctx, "fft", src, 9)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.hasData = !f.dropData
	f.mu.Unlock()
	return out, nil
}

func (f *fakeEngine) InverseTransform(ctx context.Context, src *image.RGBA) (*image.RGBA, error) {
	f.mu.Lock()
	has := f.hasData
	f.mu.Unlock()
	if !has {
		return nil, errors.New("no transform data")
	}
	out, err := f.op(ctx, "ifft", src, 10)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.hasData = false
	f.mu.Unlock()
	return out, nil
}

func (f *fakeEngine) HasTransformData() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasData
}

func (f *fakeEngine) ClearTransformData() {
	f.mu.Lock()
	f.hasData = false
	f.mu.Unlock()
}

func (f *fakeEngine) TemplateMatch(ctx context.Context, src, tmpl *image.RGBA) (image.Rectangle, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "match")
	return f.match, f.matchFound, nil
}
