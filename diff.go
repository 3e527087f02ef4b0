package snapwait

import (
	"image"

	"github.com/cboone/snapwait/internal/imagediff"
)

// Difference is the outcome of comparing two images.
type Difference = imagediff.Difference

// ImageDifference compares a and b pixel by pixel. tolerance is the largest
// per-pixel distance percentage (0..100) still treated as equal.
func ImageDifference(a, b image.Image, tolerance int) (Difference, error) {
	return imagediff.Compare(a, b, imagediff.Tolerance(tolerance))
}

// ImageDifferenceMask returns the mask of ImageDifference: opaque black
// where the images differ, transparent white elsewhere.
func ImageDifferenceMask(a, b image.Image, tolerance int) (*image.NRGBA, error) {
	return imagediff.Mask(a, b, imagediff.Tolerance(tolerance))
}
