package snapwait

import (
	"errors"
	"image"
)

// CaptureFunc takes a live capture of the application under test. It is
// called repeatedly while waiting, so it must be safe to call at a high
// rate. An error ends the wait immediately.
type CaptureFunc func() (image.Image, error)

// ErrNoScreenCapture is returned by screen operations on a headless session.
var ErrNoScreenCapture = errors.New("snapwait: no screen capture configured")

// errNilCapture is returned when a CaptureFunc yields neither an image nor
// an error.
var errNilCapture = errors.New("capture returned a nil image")

// Static returns a CaptureFunc that always yields img.
func Static(img image.Image) CaptureFunc {
	return func() (image.Image, error) {
		return img, nil
	}
}

// CanCaptureScreen reports whether the session was configured with a screen
// capture.
func (s *Session) CanCaptureScreen() bool {
	return s.opts.screen != nil
}

// CaptureScreen captures the whole screen once.
func (s *Session) CaptureScreen() image.Image {
	s.t.Helper()

	capture, err := s.screen()
	if err != nil {
		s.t.Fatalf("snapwait: capture: %v", err)
	}
	img, err := s.checked(capture)()
	if err != nil {
		s.t.Fatalf("snapwait: capture: %v", err)
	}
	return img
}

func (s *Session) screen() (CaptureFunc, error) {
	if s.opts.screen == nil {
		return nil, ErrNoScreenCapture
	}
	return s.opts.screen, nil
}

// checked wraps capture so a nil image is reported as an error rather than
// compared.
func (s *Session) checked(capture CaptureFunc) func() (image.Image, error) {
	return func() (image.Image, error) {
		if capture == nil {
			return nil, errors.New("nil capture function")
		}
		img, err := capture()
		if err != nil {
			return nil, err
		}
		if img == nil {
			return nil, errNilCapture
		}
		return img, nil
	}
}
