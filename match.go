package snapwait

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/cboone/snapwait/internal/imagediff"
)

// A Matcher reports whether a captured image satisfies a condition.
// The string return is a human-readable description for error messages.
type Matcher func(img image.Image) (ok bool, description string)

// compare is the comparison used by matchers and snapshot matching.
var compare = imagediff.Compare

// MatchesImage matches when the capture is similar to at least one of the
// candidates at the given tolerance percentage.
func MatchesImage(tolerance int, candidates ...image.Image) Matcher {
	return func(img image.Image) (bool, string) {
		desc := fmt.Sprintf("capture to match one of %d candidate images at tolerance %d%%", len(candidates), tolerance)
		ok, err := matchesAny(img, candidates, imagediff.Tolerance(tolerance))
		if err != nil {
			return false, desc + fmt.Sprintf(" (%v)", err)
		}
		return ok, desc
	}
}

// matchesAny reports whether img is not different from some candidate.
func matchesAny(img image.Image, candidates []image.Image, tol imagediff.Tolerance) (bool, error) {
	for _, c := range candidates {
		d, err := compare(img, c, tol)
		if err != nil {
			return false, err
		}
		if !d.Different {
			return true, nil
		}
	}
	return false, nil
}

// Size matches if the capture is exactly width x height pixels.
func Size(width, height int) Matcher {
	return func(img image.Image) (bool, string) {
		desc := fmt.Sprintf("capture of size %dx%d", width, height)
		b := img.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return true, desc
		}
		return false, desc + fmt.Sprintf(" (actual: %dx%d)", b.Dx(), b.Dy())
	}
}

// PixelAt matches if the pixel at (x, y), relative to the capture's origin,
// is within tolerance of want.
func PixelAt(x, y int, want color.Color, tolerance int) Matcher {
	return func(img image.Image) (bool, string) {
		desc := fmt.Sprintf("pixel (%d,%d) to be %v", x, y, want)
		b := img.Bounds()
		if x < 0 || y < 0 || x >= b.Dx() || y >= b.Dy() {
			return false, desc + " (out of bounds)"
		}
		got := img.At(b.Min.X+x, b.Min.Y+y)
		d, err := compare(pixel(got), pixel(want), imagediff.Tolerance(tolerance))
		if err != nil {
			return false, desc + fmt.Sprintf(" (%v)", err)
		}
		if d.Different {
			return false, desc + fmt.Sprintf(" (actual: %v)", got)
		}
		return true, desc
	}
}

func pixel(c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	return img
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return func(img image.Image) (bool, string) {
		ok, desc := m(img)
		return !ok, "NOT(" + desc + ")"
	}
}

// All matches when every provided matcher matches.
func All(matchers ...Matcher) Matcher {
	return func(img image.Image) (bool, string) {
		descs := make([]string, 0, len(matchers))
		for _, m := range matchers {
			ok, desc := m(img)
			descs = append(descs, desc)
			if !ok {
				return false, "all of: " + strings.Join(descs, ", ")
			}
		}
		return true, "all of: " + strings.Join(descs, ", ")
	}
}

// Any matches when at least one provided matcher matches.
func Any(matchers ...Matcher) Matcher {
	return func(img image.Image) (bool, string) {
		descs := make([]string, 0, len(matchers))
		for _, m := range matchers {
			ok, desc := m(img)
			descs = append(descs, desc)
			if ok {
				return true, "any of: " + strings.Join(descs, ", ")
			}
		}
		return false, "any of: " + strings.Join(descs, ", ")
	}
}
