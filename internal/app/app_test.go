package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/pdf2md/internal/imaging"
	"github.com/hyperifyio/pdf2md/internal/report"
	"github.com/hyperifyio/pdf2md/internal/testpdf"
)

func TestValidateInput(t *testing.T) {
	dir := t.TempDir()

	pdfPath, err := testpdf.SimpleText(dir, "good.pdf", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateInput(pdfPath); err != nil {
		t.Errorf("valid pdf rejected: %v", err)
	}

	if err := ValidateInput(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("missing file accepted")
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateInput(txt); err == nil {
		t.Error("non-pdf extension accepted")
	}

	empty := filepath.Join(dir, "empty.pdf")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateInput(empty); err == nil {
		t.Error("empty file accepted")
	}
}

func TestValidateConfig(t *testing.T) {
	base := Config{InputPath: "in.pdf"}
	if err := ValidateConfig(base); err != nil {
		t.Errorf("minimal config rejected: %v", err)
	}
	for name, mutate := range map[string]func(*Config){
		"missing input":     func(c *Config) { c.InputPath = " " },
		"bad format":        func(c *Config) { c.Format = "xml" },
		"bad converter":     func(c *Config) { c.Converter = "psychic" },
		"quality too high":  func(c *Config) { c.ImageQuality = 101 },
		"negative timeout":  func(c *Config) { c.TimeoutSeconds = -1 },
		"vision w/o model":  func(c *Config) { c.Converter = "vision" },
		"summary w/o model": func(c *Config) { c.AISummary = true },
	} {
		cfg := base
		mutate(&cfg)
		if err := ValidateConfig(cfg); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestApplyEnvToConfig(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "key-from-env")
	t.Setenv("OPENROUTER_MODEL", "model-from-env")
	t.Setenv("OPENROUTER_BACKUP_MODEL", "backup-from-env")
	t.Setenv("OPENROUTER_MAX_TOKENS", "2048")
	t.Setenv("OPENROUTER_TIMEOUT_MS", "9000")
	t.Setenv("PDF2MD_TIMEOUT_SECONDS", "42")

	cfg := Config{LLMModel: "explicit-model"}
	ApplyEnvToConfig(&cfg)

	if cfg.LLMAPIKey != "key-from-env" {
		t.Errorf("api key = %q", cfg.LLMAPIKey)
	}
	if cfg.LLMModel != "explicit-model" {
		t.Errorf("explicit model overridden: %q", cfg.LLMModel)
	}
	if cfg.LLMBackupModel != "backup-from-env" {
		t.Errorf("backup model = %q", cfg.LLMBackupModel)
	}
	if cfg.LLMBaseURL != DefaultOpenRouterBaseURL {
		t.Errorf("base url = %q", cfg.LLMBaseURL)
	}
	if cfg.LLMMaxTokens != 2048 {
		t.Errorf("max tokens = %d", cfg.LLMMaxTokens)
	}
	if cfg.LLMTimeoutMS != 9000 {
		t.Errorf("llm timeout = %d", cfg.LLMTimeoutMS)
	}
	if cfg.TimeoutSeconds != 42 {
		t.Errorf("timeout = %d", cfg.TimeoutSeconds)
	}
}

func TestApplyFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdf2md.yaml")
	data := `
input: from-file.pdf
converter: simple
images:
  quality: 60
  maxWidth: 640
  maxHeight: 480
extract:
  tables: false
timeoutSeconds: 10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := Config{InputPath: "explicit.pdf", ExtractTables: true}
	ApplyFileConfig(&cfg, fc)

	if cfg.InputPath != "explicit.pdf" {
		t.Errorf("explicit input overridden: %q", cfg.InputPath)
	}
	if cfg.Converter != "simple" {
		t.Errorf("converter = %q", cfg.Converter)
	}
	if cfg.ImageQuality != 60 {
		t.Errorf("quality = %d", cfg.ImageQuality)
	}
	if cfg.MaxImageWidth != 640 || cfg.MaxImageHeight != 480 {
		t.Errorf("image bound = %dx%d", cfg.MaxImageWidth, cfg.MaxImageHeight)
	}
	if cfg.ExtractTables {
		t.Error("extract.tables=false not applied")
	}
	if cfg.TimeoutSeconds != 10 {
		t.Errorf("timeout = %d", cfg.TimeoutSeconds)
	}
}

func TestParseImageSize(t *testing.T) {
	for _, tc := range []struct {
		in   string
		w, h int
	}{
		{"", 0, 0},
		{"400x300", 400, 300},
		{"256", 256, 256},
		{"-1", -1, -1},
		{" 640 x 480 ", 640, 480},
	} {
		w, h, err := ParseImageSize(tc.in)
		if err != nil {
			t.Errorf("ParseImageSize(%q): %v", tc.in, err)
			continue
		}
		if w != tc.w || h != tc.h {
			t.Errorf("ParseImageSize(%q) = %dx%d, want %dx%d", tc.in, w, h, tc.w, tc.h)
		}
	}
	for _, bad := range []string{"wide", "400x", "x300", "400xtall"} {
		if _, _, err := ParseImageSize(bad); err == nil {
			t.Errorf("ParseImageSize(%q) accepted", bad)
		}
	}
}

func TestConverterOptionsImageBounds(t *testing.T) {
	opts := converterOptions(Config{})
	if opts.MaxImageWidth != imaging.DefaultMaxWidth || opts.MaxImageHeight != imaging.DefaultMaxHeight {
		t.Errorf("default bound = %dx%d", opts.MaxImageWidth, opts.MaxImageHeight)
	}

	opts = converterOptions(Config{MaxImageWidth: 800, MaxImageHeight: 600})
	if opts.MaxImageWidth != 800 || opts.MaxImageHeight != 600 {
		t.Errorf("explicit bound = %dx%d", opts.MaxImageWidth, opts.MaxImageHeight)
	}

	opts = converterOptions(Config{MaxImageWidth: -1, MaxImageHeight: -1})
	if opts.MaxImageWidth != 0 || opts.MaxImageHeight != 0 {
		t.Errorf("negative bound not unlimited: %dx%d", opts.MaxImageWidth, opts.MaxImageHeight)
	}
}

func TestRunWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	in, err := testpdf.SimpleText(dir, "doc.pdf", "A line of body text.")
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "doc.md")

	cfg := Config{
		InputPath:           in,
		OutputPath:          out,
		ExtractMetadata:     true,
		ExtractTables:       true,
		EmbedImagesAsBase64: true,
	}
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, "# PDF Conversion: doc.pdf") {
		t.Errorf("metadata header missing:\n%.300s", got)
	}
	if !strings.Contains(got, "A line of body text.") {
		t.Errorf("body missing:\n%.300s", got)
	}
}

func TestRunWritesJSON(t *testing.T) {
	dir := t.TempDir()
	in, err := testpdf.SimpleText(dir, "doc.pdf", "json body text")
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "doc.json")

	cfg := Config{InputPath: in, OutputPath: out, Format: "json", EmbedImagesAsBase64: true}
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc report.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if doc.Filename != "doc.pdf" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if !strings.Contains(doc.Text, "json body text") {
		t.Errorf("text = %q", doc.Text)
	}
}

func TestRunRejectsBadInputBeforeConverting(t *testing.T) {
	cfg := Config{InputPath: "nowhere.pdf"}
	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run accepted missing input")
	}
}

func TestRunFallbackStillFailsOnGarbage(t *testing.T) {
	dir := t.TempDir()
	in, err := testpdf.NotAPDF(dir, "fake.pdf")
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{InputPath: in, OutputPath: filepath.Join(dir, "out.md")}
	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run converted a non-PDF payload")
	}
}
