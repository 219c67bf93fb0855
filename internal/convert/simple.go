package convert

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pdf2md/internal/assemble"
	"github.com/hyperifyio/pdf2md/internal/imaging"
	"github.com/hyperifyio/pdf2md/internal/pdfdoc"
	"github.com/hyperifyio/pdf2md/internal/textnorm"
)

// Simple is the fallback strategy: plain text per page and raw image
// pass-through, no layout analysis and no table detection. It trades
// fidelity for resilience on documents the robust path cannot handle.
type Simple struct {
	opts Options
}

func (s *Simple) Info() Info {
	return Info{
		Name:        "simple",
		Type:        "plain text",
		Features:    []string{"plain text extraction", "raw image pass-through"},
		Limitations: []string{"no table detection", "no layout analysis", "images embedded unvalidated"},
		Speed:       "fastest",
	}
}

func (s *Simple) Convert(ctx context.Context, path string) (*Result, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	var blocks []assemble.PageBlock
	for n := 1; n <= doc.NumPages(); n++ {
		if err := ctx.Err(); err != nil {
			return partial(doc, blocks, s.opts), fmt.Errorf("conversion interrupted at page %d: %w", n, err)
		}
		blocks = append(blocks, s.page(doc, n))
	}

	header := ""
	if s.opts.ExtractMetadata {
		header = metadataHeader(doc)
	}
	return joinPages(header, blocks), nil
}

func (s *Simple) page(doc *pdfdoc.Document, n int) assemble.PageBlock {
	block := assemble.PageBlock{Number: n}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Page %d\n\n", n)

	if s.opts.IncludeImages {
		for i, xref := range doc.ImageRefs(n) {
			obj, ok := doc.ImageObject(n, xref)
			if !ok || len(obj.Data) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "![Image %d from page %d](%s)\n\n", i+1, n, rawDataURI(obj))
		}
	}

	page, err := doc.Page(n)
	if err == nil {
		if text, terr := page.PlainText(); terr == nil {
			block.Text = textnorm.Normalize(text)
		} else {
			log.Warn().Err(terr).Int("page", n).Msg("text extraction failed")
		}
	} else {
		log.Warn().Err(err).Int("page", n).Msg("page unavailable")
	}

	if block.Text != "" {
		sb.WriteString(block.Text)
		sb.WriteString("\n")
	}
	block.Markdown = sb.String()
	return block
}

// Raw payloads above this size are thumbnailed before embedding so a single
// scan cannot balloon the output document.
const maxRawEmbed = 512 << 10

// rawDataURI embeds the image bytes as stored in the file, trusting the
// declared type. Broken payloads render as broken images rather than being
// filtered out.
func rawDataURI(obj pdfdoc.ImageObject) string {
	data := obj.Data
	mime := "image/" + strings.ToLower(obj.FileType)
	if obj.FileType == "" {
		mime = "application/octet-stream"
	}
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	if len(data) > maxRawEmbed {
		if c := imaging.Compress(data); len(c) < len(data) {
			data = c
			mime = "image/jpeg"
		}
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
