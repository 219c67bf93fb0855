package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the application.
type Config struct {
	InputPath  string
	OutputPath string

	// Format is "markdown" or "json".
	Format string
	// Converter is "robust", "simple", or "vision".
	Converter string

	// Extraction toggles
	ExtractMetadata bool
	ExtractImages   bool
	ExtractTables   bool

	// Image handling
	EmbedImagesAsBase64  bool
	SaveImagesSeparately bool
	// MaxImageWidth and MaxImageHeight bound embedded images in pixels.
	// Both zero applies the default 400x300 bound, any negative value keeps
	// original dimensions.
	MaxImageWidth  int
	MaxImageHeight int
	ImageQuality   int

	// LLM
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMBackupModel string
	LLMMaxTokens   int
	LLMTimeoutMS   int
	VisionModel    string
	AISummary      bool
	AIPrompt       string

	// Behavior
	TimeoutSeconds int
	Verbose        bool
	DebugVerbose   bool
}

const defaultTimeoutSeconds = 300

// ParseImageSize reads an image bound given as "WxH" or as a single number
// applied to both sides. Empty keeps the default bound, a negative value
// keeps original dimensions.
func ParseImageSize(s string) (int, int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, 0, nil
	}
	if ws, hs, ok := strings.Cut(s, "x"); ok {
		w, werr := strconv.Atoi(strings.TrimSpace(ws))
		h, herr := strconv.Atoi(strings.TrimSpace(hs))
		if werr != nil || herr != nil {
			return 0, 0, fmt.Errorf("image size %q is not of the form WxH", s)
		}
		return w, h, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, fmt.Errorf("image size %q is not a number or WxH", s)
	}
	return n, n, nil
}

// Timeout returns the wall-clock budget for one conversion.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
