// Package summarize hands converted Markdown to a chat model for analysis
// and prepends the response to the document. It never fails the pipeline: if
// no model answers, the input passes through unchanged.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/pdf2md/internal/llm"
)

// DefaultPrompt is used when the caller supplies no instruction.
const DefaultPrompt = "Summarize the key points of this document in a few short paragraphs."

// Options configure which models handle the request.
type Options struct {
	// Model is tried first.
	Model string
	// BackupModel is tried when the primary model errors or returns an
	// empty response. Optional.
	BackupModel string
	// Prompt is the instruction sent alongside the document. Empty means
	// DefaultPrompt.
	Prompt string
	// MaxTokens bounds the response length. Zero leaves it to the model.
	MaxTokens int
	// RequestTimeout bounds each model call. Zero inherits the caller's
	// deadline.
	RequestTimeout time.Duration
}

// Summarizer runs documents through a chat model.
type Summarizer struct {
	client llm.Client
	opts   Options
}

func New(client llm.Client, opts Options) *Summarizer {
	return &Summarizer{client: client, opts: opts}
}

// Apply asks the model about markdown and returns the annotated document:
// the response under an "AI Analysis" heading, a rule, then the original
// input. On any failure the input comes back unchanged.
func (s *Summarizer) Apply(ctx context.Context, markdown string) string {
	if s == nil || s.client == nil || strings.TrimSpace(markdown) == "" {
		return markdown
	}

	models := []string{s.opts.Model}
	if s.opts.BackupModel != "" && s.opts.BackupModel != s.opts.Model {
		models = append(models, s.opts.BackupModel)
	}

	for _, model := range models {
		if model == "" {
			continue
		}
		answer, err := s.ask(ctx, model, markdown)
		if err != nil {
			log.Warn().Err(err).Str("model", model).Msg("summarization attempt failed")
			continue
		}
		return fmt.Sprintf("# AI Analysis (%s)\n\n%s\n\n---\n\n%s", model, answer, markdown)
	}
	log.Warn().Msg("all summarization models failed; returning document unchanged")
	return markdown
}

func (s *Summarizer) ask(ctx context.Context, model, markdown string) (string, error) {
	prompt := s.opts.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: s.opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: markdown},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("model returned an empty response")
	}
	return answer, nil
}
