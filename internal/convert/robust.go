package convert

import (
	"context"
	"fmt"

	"github.com/hyperifyio/pdf2md/internal/assemble"
	"github.com/hyperifyio/pdf2md/internal/pdfdoc"
)

// Robust is the default strategy: positioned text with layout analysis,
// validated image recovery, and table detection. Individual pages and images
// degrade without failing the document.
type Robust struct {
	opts Options
}

func (r *Robust) Info() Info {
	return Info{
		Name: "robust",
		Type: "layout analysis",
		Features: []string{
			"positioned text extraction",
			"table detection",
			"validated image recovery",
			"document metadata",
		},
		Limitations: []string{"no OCR for scanned pages"},
		Speed:       "fast",
	}
}

func (r *Robust) Convert(ctx context.Context, path string) (*Result, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	aopts := assemble.Options{
		IncludeImages: r.opts.IncludeImages,
		IncludeTables: r.opts.IncludeTables,
		Encoder:       r.opts.encoder(),
	}
	if r.opts.ImageRef != nil {
		aopts.ImageRef = func(img assemble.PageImage) string { return r.opts.ImageRef(img) }
	}

	var blocks []assemble.PageBlock
	for n := 1; n <= doc.NumPages(); n++ {
		if err := ctx.Err(); err != nil {
			return partial(doc, blocks, r.opts), fmt.Errorf("conversion interrupted at page %d: %w", n, err)
		}
		blocks = append(blocks, assemble.Page(doc, n, aopts))
	}

	header := ""
	if r.opts.ExtractMetadata {
		header = metadataHeader(doc)
	}
	return joinPages(header, blocks), nil
}

// partial packages whatever pages finished before an interruption.
func partial(doc *pdfdoc.Document, blocks []assemble.PageBlock, opts Options) *Result {
	if len(blocks) == 0 {
		return nil
	}
	header := ""
	if opts.ExtractMetadata {
		header = metadataHeader(doc)
	}
	return joinPages(header, blocks)
}
