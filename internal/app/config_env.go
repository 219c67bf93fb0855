package app

import (
	"os"
	"strconv"
	"strings"
)

// DefaultOpenRouterBaseURL is used when OPENROUTER_BASE_URL is unset.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("OPENROUTER_MODEL")
	}
	if cfg.LLMBackupModel == "" {
		cfg.LLMBackupModel = os.Getenv("OPENROUTER_BACKUP_MODEL")
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = os.Getenv("OPENROUTER_VISION_MODEL")
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("OPENROUTER_BASE_URL")
	}
	if cfg.LLMBaseURL == "" && cfg.LLMAPIKey != "" {
		cfg.LLMBaseURL = DefaultOpenRouterBaseURL
	}
	if cfg.LLMMaxTokens == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("OPENROUTER_MAX_TOKENS"))); err == nil && n > 0 {
			cfg.LLMMaxTokens = n
		}
	}
	if cfg.LLMTimeoutMS == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("OPENROUTER_TIMEOUT_MS"))); err == nil && n > 0 {
			cfg.LLMTimeoutMS = n
		}
	}

	if cfg.TimeoutSeconds == 0 {
		if s := os.Getenv("PDF2MD_TIMEOUT_SECONDS"); s != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
				cfg.TimeoutSeconds = n
			}
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.DebugVerbose, "DEBUG")
}
