package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
)

const (
	thumbDim     = 150
	thumbQuality = 70
)

// Compress shrinks an already-encoded image to a thumbnail no larger than
// 150x150, re-encoded as JPEG at quality 70. Any failure returns the input
// unchanged so callers never lose the image.
func Compress(data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	img = toRGB(img)
	img = downscale(img, thumbDim, thumbDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: thumbQuality}); err != nil {
		return data
	}
	if buf.Len() == 0 {
		return data
	}
	return buf.Bytes()
}
