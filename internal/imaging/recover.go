// Package imaging turns raw embedded image objects into encoded, embeddable
// images. Recovery and encoding fail softly: a broken image yields an error
// the caller logs and skips, never a failed document.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hyperifyio/pdf2md/internal/pdfdoc"
)

var (
	ErrTooSmall  = errors.New("image below minimum dimensions")
	ErrTooLarge  = errors.New("image above maximum dimensions")
	ErrTruncated = errors.New("image sample data truncated")
)

const (
	minDimension = 5
	maxDimension = 10000
)

// Recovered is a decoded image plus what we know about its source encoding.
type Recovered struct {
	Img         image.Image
	Width       int
	Height      int
	Format      string // source encoding as reported by the decoder
	SourceBytes int
}

// Recover validates and decodes one embedded image object. Dimension gates
// run on the header before the full decode so oversized objects are rejected
// cheaply.
func Recover(obj pdfdoc.ImageObject) (*Recovered, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(obj.Data))
	if err != nil {
		return nil, fmt.Errorf("decode header of image %d on page %d: %w", obj.Xref, obj.PageNr, err)
	}
	if cfg.Width < minDimension || cfg.Height < minDimension {
		return nil, fmt.Errorf("image %d on page %d is %dx%d: %w", obj.Xref, obj.PageNr, cfg.Width, cfg.Height, ErrTooSmall)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return nil, fmt.Errorf("image %d on page %d is %dx%d: %w", obj.Xref, obj.PageNr, cfg.Width, cfg.Height, ErrTooLarge)
	}

	img, _, err := image.Decode(bytes.NewReader(obj.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d on page %d: %w", obj.Xref, obj.PageNr, err)
	}
	if err := checkSamples(img); err != nil {
		return nil, fmt.Errorf("image %d on page %d: %w", obj.Xref, obj.PageNr, err)
	}
	img = toRGB(img)

	b := img.Bounds()
	return &Recovered{
		Img:         img,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Format:      format,
		SourceBytes: len(obj.Data),
	}, nil
}

// checkSamples rejects images whose backing buffer holds less than half the
// samples the dimensions call for. Only raster types with an accessible
// buffer are checked.
func checkSamples(img image.Image) error {
	var pix []byte
	var channels int
	switch m := img.(type) {
	case *image.RGBA:
		pix, channels = m.Pix, 4
	case *image.NRGBA:
		pix, channels = m.Pix, 4
	case *image.CMYK:
		pix, channels = m.Pix, 4
	case *image.Gray:
		pix, channels = m.Pix, 1
	default:
		return nil
	}
	b := img.Bounds()
	expected := b.Dx() * b.Dy() * channels
	if len(pix)*2 < expected {
		return ErrTruncated
	}
	return nil
}

// toRGB converts CMYK and other exotic color models into NRGBA so every
// downstream encoder sees a model it supports. Conversion trouble falls back
// to the original image.
func toRGB(img image.Image) image.Image {
	switch img.ColorModel() {
	case color.CMYKModel, color.YCbCrModel:
	default:
		return img
	}
	converted := func() (out image.Image) {
		defer func() {
			if recover() != nil {
				out = nil
			}
		}()
		b := img.Bounds()
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}()
	if converted == nil {
		return img
	}
	return converted
}
