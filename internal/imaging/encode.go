package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// ErrEncodeFailed means every codec in the fallback chain produced nothing
// usable for the image.
var ErrEncodeFailed = errors.New("no codec produced a usable encoding")

// Outputs under this size are treated as codec failures rather than images.
const minEncodedBytes = 100

// Default bounding box for embedded images. Callers opt out explicitly.
const (
	DefaultMaxWidth  = 400
	DefaultMaxHeight = 300
)

// Encoder turns recovered images into embeddable payloads. The zero value
// does no resizing and encodes JPEG at quality 85.
type Encoder struct {
	// MaxWidth and MaxHeight bound the output; larger images are scaled
	// down preserving aspect ratio. Zero on both disables resizing.
	MaxWidth  int
	MaxHeight int
	// Quality is the JPEG quality, 1..100. Zero means 85.
	Quality int
}

// Encoded is a finished, embeddable image.
type Encoded struct {
	Data   []byte
	Format string // "jpeg" or "png"
	Width  int
	Height int
}

// DataURI renders the payload as a base64 data URI.
func (e Encoded) DataURI() string {
	return "data:image/" + e.Format + ";base64," + base64.StdEncoding.EncodeToString(e.Data)
}

// scalers is the resize fallback order. The last nil entry means give up on
// resizing and encode at the original size.
var scalers = []xdraw.Scaler{xdraw.CatmullRom, xdraw.ApproxBiLinear, nil}

// Encode resizes r if needed and encodes it. Images with meaningful alpha go
// to PNG; everything else goes through the JPEG-first codec chain.
func (enc Encoder) Encode(r *Recovered) (*Encoded, error) {
	img := r.Img
	if enc.MaxWidth > 0 || enc.MaxHeight > 0 {
		img = downscale(img, enc.MaxWidth, enc.MaxHeight)
	}
	b := img.Bounds()

	quality := enc.Quality
	if quality <= 0 {
		quality = 85
	}

	var attempts []func(*bytes.Buffer) (string, error)
	if hasAlpha(img) {
		attempts = append(attempts, func(buf *bytes.Buffer) (string, error) {
			return "png", png.Encode(buf, img)
		})
	}
	attempts = append(attempts,
		func(buf *bytes.Buffer) (string, error) {
			return "jpeg", jpeg.Encode(buf, img, &jpeg.Options{Quality: quality})
		},
		func(buf *bytes.Buffer) (string, error) {
			return "jpeg", jpeg.Encode(buf, img, nil)
		},
		func(buf *bytes.Buffer) (string, error) {
			return "png", png.Encode(buf, img)
		},
		func(buf *bytes.Buffer) (string, error) {
			return "png", png.Encode(buf, flatten(img))
		},
	)

	for _, attempt := range attempts {
		var buf bytes.Buffer
		format, err := attempt(&buf)
		if err != nil || buf.Len() < minEncodedBytes {
			continue
		}
		return &Encoded{Data: buf.Bytes(), Format: format, Width: b.Dx(), Height: b.Dy()}, nil
	}
	return nil, ErrEncodeFailed
}

// downscale fits img inside maxW x maxH, walking the scaler fallback chain.
// A zero bound leaves that axis unconstrained. If every scaler panics the
// original image is returned unscaled.
func downscale(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		if s := float64(maxH) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1.0 {
		return img
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	for _, s := range scalers {
		if s == nil {
			return img
		}
		if scaled := tryScale(s, img, nw, nh); scaled != nil {
			return scaled
		}
	}
	return img
}

func tryScale(s xdraw.Scaler, img image.Image, w, h int) (out image.Image) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	s.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// hasAlpha reports whether any pixel is less than fully opaque.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// flatten copies the pixels into a fresh NRGBA, the last resort when a codec
// rejects the source raster type.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}
