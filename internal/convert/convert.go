// Package convert holds the conversion strategies that turn a PDF file into
// Markdown. Strategies share one contract so the caller can pick per run and
// fall back between them.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperifyio/pdf2md/internal/assemble"
	"github.com/hyperifyio/pdf2md/internal/imaging"
	"github.com/hyperifyio/pdf2md/internal/llm"
	"github.com/hyperifyio/pdf2md/internal/pdfdoc"
)

// Converter is a single conversion strategy.
type Converter interface {
	// Convert reads the PDF at path and produces Markdown. A non-nil
	// Result may accompany an error when part of the document converted
	// before the failure.
	Convert(ctx context.Context, path string) (*Result, error)
	Info() Info
}

// Result is the output of one conversion.
type Result struct {
	Markdown string
	// Text is the concatenated plain text of all pages, without headings
	// or image markup.
	Text   string
	Pages  []assemble.PageBlock
	Images []assemble.PageImage
}

// Info describes a strategy for listings and logs.
type Info struct {
	Name        string
	Type        string
	Features    []string
	Limitations []string
	Speed       string
}

// Options are shared across strategies; each strategy honors the subset that
// applies to it.
type Options struct {
	ExtractMetadata bool
	IncludeImages   bool
	IncludeTables   bool
	// MaxImageWidth and MaxImageHeight bound embedded images. Zero on
	// both keeps original dimensions.
	MaxImageWidth  int
	MaxImageHeight int
	// ImageQuality is the JPEG quality, 1..100. Zero means the default.
	ImageQuality int
	// ImageRef overrides the Markdown link target for images; nil embeds
	// base64 data URIs.
	ImageRef func(img assemble.PageImage) string
}

func (o Options) encoder() imaging.Encoder {
	return imaging.Encoder{MaxWidth: o.MaxImageWidth, MaxHeight: o.MaxImageHeight, Quality: o.ImageQuality}
}

// New returns the named strategy. Vision conversion needs a model client and
// model name; the other strategies ignore them.
func New(name string, opts Options, client llm.Client, visionModel string) (Converter, error) {
	switch name {
	case "robust", "":
		return &Robust{opts: opts}, nil
	case "simple":
		return &Simple{opts: opts}, nil
	case "vision":
		return &Vision{opts: opts, client: client, model: visionModel}, nil
	default:
		return nil, fmt.Errorf("unknown converter %q (want robust, simple, or vision)", name)
	}
}

// All lists every available strategy in fallback preference order.
func All() []string { return []string{"robust", "simple", "vision"} }

// metadataHeader renders the document information section placed before the
// page blocks. Empty fields are left out.
func metadataHeader(doc *pdfdoc.Document) string {
	meta := doc.Metadata()
	var sb strings.Builder
	fmt.Fprintf(&sb, "# PDF Conversion: %s\n\n", doc.Filename())
	sb.WriteString("## Document Information\n\n")
	for _, f := range []struct{ label, value string }{
		{"Title", meta.Title},
		{"Author", meta.Author},
		{"Subject", meta.Subject},
		{"Creator", meta.Creator},
		{"Producer", meta.Producer},
	} {
		if f.value != "" {
			fmt.Fprintf(&sb, "- **%s:** %s\n", f.label, f.value)
		}
	}
	fmt.Fprintf(&sb, "- **Pages:** %d\n", doc.NumPages())
	fmt.Fprintf(&sb, "- **File size:** %.2f MB\n", doc.SizeMB())
	sb.WriteString("\n")
	return sb.String()
}

// joinPages flattens page blocks into a Result.
func joinPages(header string, blocks []assemble.PageBlock) *Result {
	res := &Result{Pages: blocks}
	var md, text []string
	if header != "" {
		md = append(md, strings.TrimRight(header, "\n")+"\n")
	}
	for _, b := range blocks {
		md = append(md, strings.TrimRight(b.Markdown, "\n")+"\n")
		if b.Text != "" {
			text = append(text, b.Text)
		}
		res.Images = append(res.Images, b.Images...)
	}
	res.Markdown = strings.Join(md, "\n")
	res.Text = strings.Join(text, "\n\n")
	return res
}
