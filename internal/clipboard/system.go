package clipboard

import (
	"errors"
	"image"
	"os"
	"sync"

	imgutil "image-processor/internal/image"
	"image-processor/internal/logging"

	"golang.design/x/clipboard"
)

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

// System publishes images to the desktop clipboard as PNG. When the
// desktop clipboard cannot be initialised it keeps images in memory so cut
// and paste still work inside the application.
type System struct {
	initOnce sync.Once
	initErr  error
	init     func() error

	fallback *Memory
}

// NewSystem returns a clipboard backed by golang.design/x/clipboard.
func NewSystem() *System {
	return &System{init: initClipboard, fallback: NewMemory()}
}

func initClipboard() error {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" && needsDisplay() {
		return errNoDisplay
	}
	return clipboard.Init()
}

func (s *System) ensureInit() error {
	s.initOnce.Do(func() {
		s.initErr = s.init()
		if s.initErr != nil {
			logging.Logger().Warn("Clipboard: system clipboard unavailable, using memory", "err", s.initErr)
		}
	})
	return s.initErr
}

// Available reports whether the desktop clipboard is in use.
func (s *System) Available() bool {
	return s.ensureInit() == nil
}

// SetImage encodes img as PNG and publishes it.
func (s *System) SetImage(img *image.RGBA) error {
	if err := s.fallback.SetImage(img); err != nil {
		return err
	}
	if s.ensureInit() != nil || img == nil {
		return nil
	}
	data, err := imgutil.EncodePNG(img)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

// Image reads PNG data from the desktop clipboard. It returns nil, nil when
// the clipboard holds no image.
func (s *System) Image() (*image.RGBA, error) {
	if s.ensureInit() != nil {
		return s.fallback.Image()
	}
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, nil
	}
	return imgutil.DecodePNG(data)
}

// Clear drops the stored image. On the desktop clipboard this replaces the
// contents with empty text.
func (s *System) Clear() error {
	s.fallback.Clear()
	if s.ensureInit() != nil {
		return nil
	}
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}
