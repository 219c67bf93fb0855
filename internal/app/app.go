package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pdf2md/internal/assemble"
	"github.com/hyperifyio/pdf2md/internal/convert"
	"github.com/hyperifyio/pdf2md/internal/imaging"
	"github.com/hyperifyio/pdf2md/internal/llm"
	"github.com/hyperifyio/pdf2md/internal/report"
	"github.com/hyperifyio/pdf2md/internal/summarize"
)

// ErrTimeout is returned when the conversion deadline passes. Pages finished
// before the deadline are still written out.
var ErrTimeout = errors.New("conversion timed out")

// ValidateInput rejects files the pipeline cannot work on before any PDF
// parsing starts.
func ValidateInput(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("input %q is not a .pdf file", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input %q is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input %q is empty", path)
	}
	return nil
}

// Run executes one conversion end to end: validate, convert with strategy
// fallback, optionally summarize, and write the output.
func Run(ctx context.Context, cfg Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if err := ValidateInput(cfg.InputPath); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	var client llm.Client
	if cfg.LLMAPIKey != "" {
		client = llm.NewOpenAICompatible(cfg.LLMAPIKey, cfg.LLMBaseURL)
	}

	start := time.Now()
	res, convErr := runConvert(ctx, cfg, client)
	if res == nil {
		return wrapTimeout(convErr)
	}
	if convErr != nil {
		log.Warn().Err(convErr).Msg("conversion incomplete; writing partial result")
	}

	if cfg.SaveImagesSeparately || !cfg.EmbedImagesAsBase64 {
		if _, err := report.SaveImages(outputDir(cfg.OutputPath), cfg.InputPath, res.Images); err != nil {
			log.Warn().Err(err).Msg("saving images failed; document still written")
		}
	}

	if cfg.AISummary && client != nil && cfg.Format != "json" {
		s := summarize.New(client, summarize.Options{
			Model:          cfg.LLMModel,
			BackupModel:    cfg.LLMBackupModel,
			Prompt:         cfg.AIPrompt,
			MaxTokens:      cfg.LLMMaxTokens,
			RequestTimeout: time.Duration(cfg.LLMTimeoutMS) * time.Millisecond,
		})
		res.Markdown = s.Apply(ctx, res.Markdown)
	}

	var writeErr error
	if cfg.Format == "json" {
		writeErr = report.WriteJSON(cfg.OutputPath, res, filepath.Base(cfg.InputPath))
	} else {
		writeErr = report.WriteMarkdown(cfg.OutputPath, res.Markdown)
	}
	if writeErr != nil {
		return writeErr
	}

	log.Info().
		Str("input", cfg.InputPath).
		Int("pages", len(res.Pages)).
		Int("images", len(res.Images)).
		Dur("elapsed", time.Since(start)).
		Msg("conversion finished")
	return wrapTimeout(convErr)
}

// runConvert tries the configured strategy and, when it fails without a
// deadline in play, one alternate strategy.
func runConvert(ctx context.Context, cfg Config, client llm.Client) (*convert.Result, error) {
	opts := converterOptions(cfg)

	primary := cfg.Converter
	if primary == "" {
		primary = "robust"
	}
	conv, err := convert.New(primary, opts, client, cfg.VisionModel)
	if err != nil {
		return nil, err
	}

	info := conv.Info()
	log.Debug().
		Str("converter", info.Name).
		Str("type", info.Type).
		Str("speed", info.Speed).
		Strs("features", info.Features).
		Str("input", cfg.InputPath).
		Msg("conversion started")
	res, err := conv.Convert(ctx, cfg.InputPath)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return res, err
	}

	alternate := fallbackFor(primary)
	if alternate == "" {
		return res, err
	}
	log.Warn().Err(err).Str("converter", primary).Str("fallback", alternate).Msg("strategy failed; trying fallback")

	fb, ferr := convert.New(alternate, opts, client, cfg.VisionModel)
	if ferr != nil {
		return res, err
	}
	fres, ferr := fb.Convert(ctx, cfg.InputPath)
	if ferr == nil {
		return fres, nil
	}
	return res, fmt.Errorf("%s converter failed (%v); %s converter failed: %w", primary, err, alternate, ferr)
}

func converterOptions(cfg Config) convert.Options {
	opts := convert.Options{
		ExtractMetadata: cfg.ExtractMetadata,
		IncludeImages:   cfg.ExtractImages,
		IncludeTables:   cfg.ExtractTables,
		ImageQuality:    cfg.ImageQuality,
	}
	switch {
	case cfg.MaxImageWidth < 0 || cfg.MaxImageHeight < 0:
		// Keep original dimensions.
	case cfg.MaxImageWidth == 0 && cfg.MaxImageHeight == 0:
		opts.MaxImageWidth, opts.MaxImageHeight = imaging.DefaultMaxWidth, imaging.DefaultMaxHeight
	default:
		opts.MaxImageWidth, opts.MaxImageHeight = cfg.MaxImageWidth, cfg.MaxImageHeight
	}
	if cfg.SaveImagesSeparately || !cfg.EmbedImagesAsBase64 {
		input := cfg.InputPath
		opts.ImageRef = func(img assemble.PageImage) string {
			return report.ImagesDirName + "/" + report.ImageFileName(input, img)
		}
	}
	return opts
}

// fallbackFor pairs the two local strategies with each other. Vision has no
// automatic fallback since its failures are usually model configuration.
func fallbackFor(name string) string {
	switch name {
	case "robust":
		return "simple"
	case "simple":
		return "robust"
	}
	return ""
}

func wrapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func outputDir(outputPath string) string {
	if outputPath == "" || outputPath == "-" {
		return "."
	}
	return filepath.Dir(outputPath)
}
