// Package testpdf synthesizes small PDF fixtures for tests. It is only
// imported from _test files; keeping it as a regular package lets every
// package share the same fixtures.
package testpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// JPEGBytes returns an encoded JPEG of the given dimensions filled with a
// simple gradient so the payload is not trivially small.
func JPEGBytes(w, h int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Doc builds a PDF page by page. Each entry of pages is rendered on its own
// page; text lines flow top-down, and an optional image is placed above the
// text. The file is written into dir and its path returned.
type PageSpec struct {
	Lines     []string
	ImageW    int // embed a JPEG of this size when >0
	ImageH    int
	TableRows [][]string // aligned columns rendered after the lines
}

func Doc(dir, name string, pages []PageSpec) (string, error) {
	return DocWithInfo(dir, name, "", "", pages)
}

// DocWithInfo is Doc plus document information entries for metadata tests.
func DocWithInfo(dir, name, title, author string, pages []PageSpec) (string, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	if title != "" {
		pdf.SetTitle(title, true)
	}
	if author != "" {
		pdf.SetAuthor(author, true)
	}
	pdf.SetFont("Helvetica", "", 12)

	for pi, spec := range pages {
		pdf.AddPage()
		y := 80.0

		if spec.ImageW > 0 && spec.ImageH > 0 {
			data, err := JPEGBytes(spec.ImageW, spec.ImageH)
			if err != nil {
				return "", err
			}
			imgName := fmt.Sprintf("img-%d", pi)
			opts := gofpdf.ImageOptions{ImageType: "JPG"}
			pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(data))
			pdf.ImageOptions(imgName, 72, y, 100, 0, false, opts, 0, "")
			y += 140
		}

		for _, line := range spec.Lines {
			pdf.Text(72, y, line)
			y += 20
		}

		if len(spec.TableRows) > 0 {
			y += 20
			for _, row := range spec.TableRows {
				x := 72.0
				for _, cell := range row {
					pdf.Text(x, y, cell)
					x += 140
				}
				y += 18
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

// SimpleText writes a one-page PDF containing the given lines.
func SimpleText(dir, name string, lines ...string) (string, error) {
	return Doc(dir, name, []PageSpec{{Lines: lines}})
}

// NotAPDF writes a file with a .pdf name but non-PDF content, for input
// validation tests.
func NotAPDF(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
