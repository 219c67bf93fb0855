package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// capturingClient records requests and replays scripted responses per model.
type capturingClient struct {
	requests []openai.ChatCompletionRequest
	answers  map[string]string
	errs     map[string]error
}

func (c *capturingClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.requests = append(c.requests, req)
	if err := c.errs[req.Model]; err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: c.answers[req.Model]}},
	}}, nil
}

func TestApplyFormatsResponse(t *testing.T) {
	client := &capturingClient{answers: map[string]string{"primary": "Three key points."}}
	s := New(client, Options{Model: "primary"})

	got := s.Apply(context.Background(), "# Doc\n\nBody text.")

	want := "# AI Analysis (primary)\n\nThree key points.\n\n---\n\n# Doc\n\nBody text."
	if got != want {
		t.Errorf("Apply output:\n%q\nwant:\n%q", got, want)
	}
	if len(client.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(client.requests))
	}
	if client.requests[0].Messages[0].Content != DefaultPrompt {
		t.Errorf("system prompt = %q", client.requests[0].Messages[0].Content)
	}
}

func TestApplyFallsBackToBackupModel(t *testing.T) {
	client := &capturingClient{
		answers: map[string]string{"backup": "From the backup."},
		errs:    map[string]error{"primary": errors.New("rate limited")},
	}
	s := New(client, Options{Model: "primary", BackupModel: "backup"})

	got := s.Apply(context.Background(), "body")
	if !strings.HasPrefix(got, "# AI Analysis (backup)") {
		t.Errorf("expected backup model heading, got %q", got)
	}
	if len(client.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(client.requests))
	}
}

func TestApplyReturnsInputWhenAllModelsFail(t *testing.T) {
	client := &capturingClient{errs: map[string]error{
		"primary": errors.New("down"),
		"backup":  errors.New("also down"),
	}}
	s := New(client, Options{Model: "primary", BackupModel: "backup"})

	in := "untouched document"
	if got := s.Apply(context.Background(), in); got != in {
		t.Errorf("Apply altered input on total failure: %q", got)
	}
}

func TestApplyTreatsEmptyResponseAsFailure(t *testing.T) {
	client := &capturingClient{answers: map[string]string{"primary": "  ", "backup": "real answer"}}
	s := New(client, Options{Model: "primary", BackupModel: "backup"})

	got := s.Apply(context.Background(), "body")
	if !strings.Contains(got, "real answer") {
		t.Errorf("empty primary response not skipped: %q", got)
	}
}

func TestApplySkipsBlankInput(t *testing.T) {
	client := &capturingClient{}
	s := New(client, Options{Model: "primary"})
	if got := s.Apply(context.Background(), "   "); got != "   " {
		t.Errorf("blank input changed: %q", got)
	}
	if len(client.requests) != 0 {
		t.Errorf("model called for blank input")
	}
}

func TestApplyCustomPrompt(t *testing.T) {
	client := &capturingClient{answers: map[string]string{"m": "ok"}}
	s := New(client, Options{Model: "m", Prompt: "Translate to French."})
	s.Apply(context.Background(), "body")
	if client.requests[0].Messages[0].Content != "Translate to French." {
		t.Errorf("prompt = %q", client.requests[0].Messages[0].Content)
	}
}
