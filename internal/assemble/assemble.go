// Package assemble builds per-page Markdown blocks from document content.
// Every extraction unit on a page fails independently: a broken image or an
// unreadable text layer degrades the block instead of losing the page, and a
// page that fails outright becomes a placeholder block.
package assemble

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pdf2md/internal/imaging"
	"github.com/hyperifyio/pdf2md/internal/pdfdoc"
	"github.com/hyperifyio/pdf2md/internal/tables"
	"github.com/hyperifyio/pdf2md/internal/textnorm"
)

// PageImage is one successfully recovered and encoded image on a page.
type PageImage struct {
	Index          int // 1-based position within the page
	PageNr         int
	Encoded        *imaging.Encoded
	OriginalFormat string
	OriginalBytes  int
}

// PageBlock is the assembled content of one page.
type PageBlock struct {
	Number   int
	Failed   bool
	Text     string
	Tables   []tables.Table
	Images   []PageImage
	Markdown string
}

// Options control what each block contains and how images are referenced.
type Options struct {
	IncludeImages bool
	IncludeTables bool
	Encoder       imaging.Encoder
	// ImageRef renders the Markdown link target for an image. Nil means
	// embed the payload as a base64 data URI.
	ImageRef func(img PageImage) string
}

// Page extracts and assembles one page. It never returns an error; total
// page failure yields a placeholder block with Failed set.
func Page(doc *pdfdoc.Document, n int, opts Options) PageBlock {
	block := PageBlock{Number: n}

	page, err := doc.Page(n)
	if err != nil {
		log.Warn().Err(err).Int("page", n).Msg("page unavailable")
		return placeholder(n)
	}

	if text, err := page.PlainText(); err != nil {
		log.Warn().Err(err).Int("page", n).Msg("text extraction failed; page continues without text")
	} else {
		block.Text = textnorm.Normalize(text)
	}

	if opts.IncludeTables {
		block.Tables = tables.Detect(page.Layout())
	}

	var imagesFound int
	if opts.IncludeImages {
		block.Images, imagesFound = pageImages(doc, n, opts.Encoder)
	}

	// A page with nothing extractable still renders its heading; the
	// placeholder is reserved for pages that fail outright.
	block.Markdown = render(block, opts.ImageRef)
	log.Debug().
		Int("page", n).
		Int("chars", len(block.Text)).
		Int("images_found", imagesFound).
		Int("images_recovered", len(block.Images)).
		Int("tables", len(block.Tables)).
		Msg("page assembled")
	return block
}

func placeholder(n int) PageBlock {
	return PageBlock{
		Number:   n,
		Failed:   true,
		Markdown: fmt.Sprintf("## Page %d\n\n*Page %d could not be processed*\n", n, n),
	}
}

// pageImages recovers and encodes the page's images, returning how many
// image objects the page referenced in total.
func pageImages(doc *pdfdoc.Document, pageNr int, enc imaging.Encoder) ([]PageImage, int) {
	refs := doc.ImageRefs(pageNr)
	var out []PageImage
	for i, xref := range refs {
		obj, ok := doc.ImageObject(pageNr, xref)
		if !ok {
			continue
		}
		rec, err := imaging.Recover(obj)
		if err != nil {
			log.Warn().Err(err).Int("page", pageNr).Int("xref", xref).Msg("image skipped")
			continue
		}
		encoded, err := enc.Encode(rec)
		if err != nil {
			log.Warn().Err(err).Int("page", pageNr).Int("xref", xref).Msg("image encoding failed; image skipped")
			continue
		}
		out = append(out, PageImage{
			Index:          i + 1,
			PageNr:         pageNr,
			Encoded:        encoded,
			OriginalFormat: rec.Format,
			OriginalBytes:  rec.SourceBytes,
		})
	}
	return out, len(refs)
}

// render lays the block out as heading, images, text, then tables.
func render(b PageBlock, imageRef func(PageImage) string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Page %d\n\n", b.Number)

	for _, img := range b.Images {
		ref := ""
		if imageRef != nil {
			ref = imageRef(img)
		}
		if ref == "" {
			ref = img.Encoded.DataURI()
		}
		fmt.Fprintf(&sb, "![Image %d from page %d](%s)\n\n", img.Index, b.Number, ref)
		fmt.Fprintf(&sb, "*Image %d from page %d (%dx%d)*\n\n", img.Index, b.Number, img.Encoded.Width, img.Encoded.Height)
	}

	if b.Text != "" {
		sb.WriteString(b.Text)
		sb.WriteString("\n\n")
	}

	for _, t := range b.Tables {
		sb.WriteString(t.Markdown())
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}
