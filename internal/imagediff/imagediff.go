// Package imagediff compares two raster images pixel by pixel under a
// channel-distance tolerance and produces a difference mask.
package imagediff

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	// ErrNilImage is returned when either input image is nil.
	ErrNilImage = errors.New("imagediff: nil image")

	// ErrToleranceRange is returned for a tolerance outside 0..100.
	ErrToleranceRange = errors.New("imagediff: tolerance must be within 0..100")
)

// Mask colours.
var (
	Similar    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x00}
	Dissimilar = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
)

// maxDistance is the largest possible sum of three 8-bit channel deltas.
const maxDistance = 3 * 0xff

// Tolerance is the largest per-pixel distance percentage still treated as
// equal. 0 accepts only identical colours; 100 accepts any two colours.
type Tolerance int

// Exact is the zero tolerance.
const Exact Tolerance = 0

// NewTolerance validates pct and returns it as a Tolerance.
func NewTolerance(pct int) (Tolerance, error) {
	t := Tolerance(pct)
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return t, nil
}

// Validate reports whether t is within 0..100.
func (t Tolerance) Validate() error {
	if t < 0 || t > 100 {
		return fmt.Errorf("%w: got %d", ErrToleranceRange, int(t))
	}
	return nil
}

// Difference is the result of one comparison. It is never mutated after
// Compare returns it.
type Difference struct {
	A, B image.Image

	// Different is true when at least one mask pixel is Dissimilar.
	Different bool

	// Mask spans the union of both image sizes.
	Mask *image.NRGBA

	// Changed counts Dissimilar pixels in Mask.
	Changed int
}

// Compare computes the difference of a and b at tolerance tol.
//
// Images are compared from their own Bounds().Min over a rectangle as wide
// and as tall as the larger of the two. A position covered by only one
// image is always dissimilar. For positions covered by both, the absolute
// red, green and blue deltas are summed and scaled to a percentage in
// 1..100 (0 only for an exact colour match); alpha is not part of the
// distance. Pixels are similar when that percentage is at most tol or when
// they are bit-identical.
func Compare(a, b image.Image, tol Tolerance) (Difference, error) {
	if a == nil || b == nil {
		return Difference{}, ErrNilImage
	}
	if err := tol.Validate(); err != nil {
		return Difference{}, err
	}

	ab, bb := a.Bounds(), b.Bounds()
	aw, ah := ab.Dx(), ab.Dy()
	bw, bh := bb.Dx(), bb.Dy()
	w, h := max(aw, bw), max(ah, bh)

	mask := image.NewNRGBA(image.Rect(0, 0, w, h))
	changed := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inA := x < aw && y < ah
			inB := x < bw && y < bh

			similar := false
			if inA && inB {
				pa := pixelAt(a, ab.Min.X+x, ab.Min.Y+y)
				pb := pixelAt(b, bb.Min.X+x, bb.Min.Y+y)
				similar = pa == pb || DistancePercent(pa, pb) <= int(tol)
			}

			if similar {
				mask.SetNRGBA(x, y, Similar)
			} else {
				mask.SetNRGBA(x, y, Dissimilar)
				changed++
			}
		}
	}

	return Difference{
		A:         a,
		B:         b,
		Different: changed > 0,
		Mask:      mask,
		Changed:   changed,
	}, nil
}

// Mask is Compare returning only the difference mask.
func Mask(a, b image.Image, tol Tolerance) (*image.NRGBA, error) {
	d, err := Compare(a, b, tol)
	if err != nil {
		return nil, err
	}
	return d.Mask, nil
}

// DistancePercent maps the summed RGB distance of two pixels to 0..100.
// It is 0 only when the colour channels are equal.
func DistancePercent(p, q color.NRGBA) int {
	sum := absDiff(p.R, q.R) + absDiff(p.G, q.G) + absDiff(p.B, q.B)
	if sum == 0 {
		return 0
	}
	return 1 + sum*99/maxDistance
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// pixelAt reads one pixel as 8-bit non-premultiplied RGBA, skipping the
// colour model conversion for the common image types.
func pixelAt(img image.Image, x, y int) color.NRGBA {
	switch m := img.(type) {
	case *image.NRGBA:
		return m.NRGBAAt(x, y)
	case *image.RGBA:
		c := m.RGBAAt(x, y)
		if c.A == 0xff {
			return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
		}
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}
