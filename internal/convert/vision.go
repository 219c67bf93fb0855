package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/pdf2md/internal/assemble"
	"github.com/hyperifyio/pdf2md/internal/htmltext"
	"github.com/hyperifyio/pdf2md/internal/imaging"
	"github.com/hyperifyio/pdf2md/internal/llm"
)

// visionPrompt asks the model for Markdown; HTML responses still happen and
// are salvaged after the fact.
const visionPrompt = "Transcribe this document page to Markdown. Preserve headings, paragraphs, lists, and tables. Output only the page content."

// Vision rasterizes each page and asks a multimodal model to transcribe it.
// It handles scanned documents the text-based strategies cannot read, at the
// cost of speed and a model dependency.
type Vision struct {
	opts   Options
	client llm.Client
	model  string
}

func (v *Vision) Info() Info {
	return Info{
		Name:        "vision",
		Type:        "model transcription",
		Features:    []string{"scanned page OCR", "layout-aware transcription", "table reconstruction"},
		Limitations: []string{"requires a vision model", "no image embedding", "slow on long documents"},
		Speed:       "slow",
	}
}

func (v *Vision) Convert(ctx context.Context, path string) (*Result, error) {
	if v.client == nil || v.model == "" {
		return nil, errors.New("vision conversion requires a configured vision model")
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rasterization: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, errors.New("pdf has no pages")
	}

	var blocks []assemble.PageBlock
	for n := 1; n <= doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			if len(blocks) == 0 {
				return nil, fmt.Errorf("conversion interrupted at page %d: %w", n, err)
			}
			return joinPages("", blocks), fmt.Errorf("conversion interrupted at page %d: %w", n, err)
		}
		blocks = append(blocks, v.page(ctx, doc, n))
	}
	return joinPages("", blocks), nil
}

func (v *Vision) page(ctx context.Context, doc *fitz.Document, n int) assemble.PageBlock {
	img, err := doc.Image(n - 1)
	if err != nil {
		log.Warn().Err(err).Int("page", n).Msg("rasterization failed")
		return failedPage(n)
	}

	// Page renders go to the model at full resolution; the embed bounds
	// only apply to images inside documents.
	enc, err := imaging.Encoder{Quality: v.opts.ImageQuality}.Encode(&imaging.Recovered{Img: img})
	if err != nil {
		log.Warn().Err(err).Int("page", n).Msg("page image encoding failed")
		return failedPage(n)
	}

	text, err := v.transcribe(ctx, enc.DataURI())
	if err != nil {
		log.Warn().Err(err).Int("page", n).Str("model", v.model).Msg("transcription failed")
		return failedPage(n)
	}
	if htmltext.IsHTML(text) {
		text = htmltext.Salvage(text)
	}

	return assemble.PageBlock{
		Number:   n,
		Text:     text,
		Markdown: fmt.Sprintf("## Page %d\n\n%s\n", n, strings.TrimSpace(text)),
	}
}

func (v *Vision) transcribe(ctx context.Context, imageURI string) (string, error) {
	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURI}},
			},
		}},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("model returned an empty transcription")
	}
	return text, nil
}

func failedPage(n int) assemble.PageBlock {
	return assemble.PageBlock{
		Number:   n,
		Failed:   true,
		Markdown: fmt.Sprintf("## Page %d\n\n*Page %d could not be processed*\n", n, n),
	}
}
