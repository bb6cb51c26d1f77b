// Package clipboard exchanges images with the system clipboard.
package clipboard

import (
	"image"
	"sync"

	imgutil "image-processor/internal/image"
)

// Service stores one image for cut, copy and paste.
type Service interface {
	SetImage(img *image.RGBA) error
	// Image returns the stored image, or nil when the clipboard holds none.
	Image() (*image.RGBA, error)
	Clear() error
}

// Memory is an in-process clipboard.
type Memory struct {
	mu  sync.Mutex
	img *image.RGBA
}

// NewMemory returns an empty in-process clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// SetImage stores a copy of img.
func (m *Memory) SetImage(img *image.RGBA) error {
	m.mu.Lock()
	m.img = imgutil.Clone(img)
	m.mu.Unlock()
	return nil
}

// Image returns a copy of the stored image.
func (m *Memory) Image() (*image.RGBA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return imgutil.Clone(m.img), nil
}

// Clear empties the clipboard.
func (m *Memory) Clear() error {
	m.mu.Lock()
	m.img = nil
	m.mu.Unlock()
	return nil
}
