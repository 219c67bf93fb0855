// Package report writes conversion results out: Markdown documents, a JSON
// document form, and optionally each image as a standalone file.
package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pdf2md/internal/assemble"
	"github.com/hyperifyio/pdf2md/internal/convert"
)

// ImagesDirName is the directory created next to the output for separately
// saved images.
const ImagesDirName = "extracted_images"

// Image is the JSON form of one extracted image.
type Image struct {
	Data              string `json:"data"`
	Format            string `json:"format"`
	Index             int    `json:"index"`
	SizeBytes         int    `json:"size_bytes"`
	OriginalSizeBytes int    `json:"original_size_bytes,omitempty"`
	OriginalFormat    string `json:"original_format,omitempty"`
}

// Document is the JSON form of a conversion result.
type Document struct {
	Text       string  `json:"text"`
	Images     []Image `json:"images"`
	ImageCount int     `json:"image_count"`
	Filename   string  `json:"filename"`
}

// JSON renders the result for the given source filename as indented JSON.
func JSON(res *convert.Result, filename string) ([]byte, error) {
	doc := Document{
		Text:     res.Text,
		Images:   make([]Image, 0, len(res.Images)),
		Filename: filename,
	}
	for i, img := range res.Images {
		doc.Images = append(doc.Images, Image{
			Data:              base64.StdEncoding.EncodeToString(img.Encoded.Data),
			Format:            img.Encoded.Format,
			Index:             i + 1,
			SizeBytes:         len(img.Encoded.Data),
			OriginalSizeBytes: img.OriginalBytes,
			OriginalFormat:    img.OriginalFormat,
		})
	}
	doc.ImageCount = len(doc.Images)
	return json.MarshalIndent(doc, "", "  ")
}

// ImageFileName names a separately saved image after its source document,
// page, and position.
func ImageFileName(pdfPath string, img assemble.PageImage) string {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	ext := img.Encoded.Format
	if ext == "jpeg" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s_page%d_img%d.%s", stem, img.PageNr, img.Index, ext)
}

// SaveImages writes each image under dir/extracted_images and returns the
// Markdown-usable relative path per saved image, keyed by page and index.
// Individual write failures are logged and skipped.
func SaveImages(dir, pdfPath string, images []assemble.PageImage) (map[[2]int]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	outDir := filepath.Join(dir, ImagesDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}

	refs := make(map[[2]int]string, len(images))
	for _, img := range images {
		name := ImageFileName(pdfPath, img)
		if err := os.WriteFile(filepath.Join(outDir, name), img.Encoded.Data, 0o644); err != nil {
			log.Warn().Err(err).Str("image", name).Msg("image file not written")
			continue
		}
		refs[[2]int{img.PageNr, img.Index}] = filepath.ToSlash(filepath.Join(ImagesDirName, name))
	}
	return refs, nil
}

// WriteMarkdown writes the document to path, or to stdout when path is "-"
// or empty.
func WriteMarkdown(path, markdown string) error {
	return writeOut(path, []byte(markdown))
}

// WriteJSON renders and writes the JSON document form.
func WriteJSON(path string, res *convert.Result, filename string) error {
	data, err := JSON(res, filename)
	if err != nil {
		return err
	}
	return writeOut(path, append(data, '\n'))
}

func writeOut(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
