package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested sections
// map naturally to flags and env.
type FileConfig struct {
	Input     string `yaml:"input" json:"input"`
	Output    string `yaml:"output" json:"output"`
	Format    string `yaml:"format" json:"format"`
	Converter string `yaml:"converter" json:"converter"`

	Extract struct {
		Metadata *bool `yaml:"metadata" json:"metadata"`
		Images   *bool `yaml:"images" json:"images"`
		Tables   *bool `yaml:"tables" json:"tables"`
	} `yaml:"extract" json:"extract"`

	Images struct {
		Embed        *bool `yaml:"embed" json:"embed"`
		SaveSeparate bool  `yaml:"saveSeparate" json:"saveSeparate"`
		MaxWidth     int   `yaml:"maxWidth" json:"maxWidth"`
		MaxHeight    int   `yaml:"maxHeight" json:"maxHeight"`
		Quality      int   `yaml:"quality" json:"quality"`
	} `yaml:"images" json:"images"`

	LLM struct {
		BaseURL     string `yaml:"base" json:"base"`
		APIKey      string `yaml:"key" json:"key"`
		Model       string `yaml:"model" json:"model"`
		BackupModel string `yaml:"backupModel" json:"backupModel"`
		VisionModel string `yaml:"visionModel" json:"visionModel"`
	} `yaml:"llm" json:"llm"`

	AI struct {
		Summary bool   `yaml:"summary" json:"summary"`
		Prompt  string `yaml:"prompt" json:"prompt"`
	} `yaml:"ai" json:"ai"`

	TimeoutSeconds int  `yaml:"timeoutSeconds" json:"timeoutSeconds"`
	Verbose        bool `yaml:"verbose" json:"verbose"`
	DebugVerbose   bool `yaml:"debugVerbose" json:"debugVerbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for fields still
// at their zero or default value. Flags should already have been parsed; the
// file supplies defaults without overriding explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	const (
		formatDefault    = "markdown"
		converterDefault = "robust"
	)

	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if cfg.OutputPath == "" && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if (cfg.Format == "" || cfg.Format == formatDefault) && fc.Format != "" {
		cfg.Format = fc.Format
	}
	if (cfg.Converter == "" || cfg.Converter == converterDefault) && fc.Converter != "" {
		cfg.Converter = fc.Converter
	}

	if fc.Extract.Metadata != nil {
		cfg.ExtractMetadata = *fc.Extract.Metadata
	}
	if fc.Extract.Images != nil {
		cfg.ExtractImages = *fc.Extract.Images
	}
	if fc.Extract.Tables != nil {
		cfg.ExtractTables = *fc.Extract.Tables
	}

	if fc.Images.Embed != nil {
		cfg.EmbedImagesAsBase64 = *fc.Images.Embed
	}
	if !cfg.SaveImagesSeparately && fc.Images.SaveSeparate {
		cfg.SaveImagesSeparately = true
	}
	if cfg.MaxImageWidth == 0 && cfg.MaxImageHeight == 0 &&
		(fc.Images.MaxWidth != 0 || fc.Images.MaxHeight != 0) {
		cfg.MaxImageWidth = fc.Images.MaxWidth
		cfg.MaxImageHeight = fc.Images.MaxHeight
	}
	if cfg.ImageQuality == 0 && fc.Images.Quality > 0 {
		cfg.ImageQuality = fc.Images.Quality
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMBackupModel == "" && fc.LLM.BackupModel != "" {
		cfg.LLMBackupModel = fc.LLM.BackupModel
	}
	if cfg.VisionModel == "" && fc.LLM.VisionModel != "" {
		cfg.VisionModel = fc.LLM.VisionModel
	}

	if !cfg.AISummary && fc.AI.Summary {
		cfg.AISummary = true
	}
	if cfg.AIPrompt == "" && fc.AI.Prompt != "" {
		cfg.AIPrompt = fc.AI.Prompt
	}

	if cfg.TimeoutSeconds == 0 && fc.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = fc.TimeoutSeconds
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	if !cfg.DebugVerbose && fc.DebugVerbose {
		cfg.DebugVerbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: input path is required")
	}
	switch cfg.Format {
	case "", "markdown", "json":
	default:
		return fmt.Errorf("config: unknown format %q (want markdown or json)", cfg.Format)
	}
	switch cfg.Converter {
	case "", "robust", "simple", "vision":
	default:
		return fmt.Errorf("config: unknown converter %q (want robust, simple, or vision)", cfg.Converter)
	}
	if cfg.ImageQuality < 0 || cfg.ImageQuality > 100 {
		return errors.New("config: image quality must be within 1..100")
	}
	if cfg.TimeoutSeconds < 0 {
		return errors.New("config: negative timeout is not allowed")
	}
	if cfg.Converter == "vision" && strings.TrimSpace(cfg.VisionModel) == "" {
		return errors.New("config: vision converter requires a vision model (set OPENROUTER_VISION_MODEL)")
	}
	if cfg.AISummary && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: ai summary requires a model (set OPENROUTER_MODEL)")
	}
	return nil
}
