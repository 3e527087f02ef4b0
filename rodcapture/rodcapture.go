// Package rodcapture adapts go-rod pages and elements to snapwait capture
// functions.
package rodcapture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/cboone/snapwait"
)

// Page captures the visible viewport of page.
func Page(page *rod.Page) snapwait.CaptureFunc {
	return func() (image.Image, error) {
		data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			return nil, fmt.Errorf("rodcapture: page screenshot: %w", err)
		}
		return decode(data)
	}
}

// FullPage captures the whole scrollable page.
func FullPage(page *rod.Page) snapwait.CaptureFunc {
	return func() (image.Image, error) {
		data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			return nil, fmt.Errorf("rodcapture: full page screenshot: %w", err)
		}
		return decode(data)
	}
}

// Element captures the box of el. The element is scrolled into view first.
func Element(el *rod.Element) snapwait.CaptureFunc {
	return func() (image.Image, error) {
		data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
		if err != nil {
			return nil, fmt.Errorf("rodcapture: element screenshot: %w", err)
		}
		return decode(data)
	}
}

func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("rodcapture: decode: empty screenshot")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("rodcapture: decode: %w", err)
	}
	return img, nil
}
