package rodcapture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.NRGBA{R: 200, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	r, _, _, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(200)*0x101, r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestDecodeErrors(t *testing.T) {
	_, err := decode(nil)
	assert.ErrorContains(t, err, "empty screenshot")

	_, err = decode([]byte("not a png"))
	assert.ErrorContains(t, err, "rodcapture: decode:")
}
