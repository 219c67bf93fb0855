package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pdf2md/internal/app"
	"github.com/hyperifyio/pdf2md/internal/convert"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		inputPath    string
		outputPath   string
		format       string
		converter    string
		configPath   string
		noMetadata   bool
		noImages     bool
		noTables     bool
		noEmbed      bool
		saveImages   bool
		maxImageSize string
		imageQuality int
		timeoutSecs  int
		aiSummary    bool
		aiPrompt     string
		llmBaseURL   string
		llmModel     string
		llmBackup    string
		visionModel  string
		llmKey       string
		listInfo     bool
		verbose      bool
		debugVerbose bool
	)

	flag.StringVar(&inputPath, "input", "", "Path to the PDF file to convert")
	flag.StringVar(&outputPath, "output", "", "Path to write the result; '-' or empty writes to stdout")
	flag.StringVar(&format, "format", "markdown", "Output format: markdown or json")
	flag.StringVar(&converter, "converter", "robust", "Conversion strategy: robust, simple, or vision")
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.BoolVar(&noMetadata, "no-metadata", false, "Skip the document information header")
	flag.BoolVar(&noImages, "no-images", false, "Skip embedded image extraction")
	flag.BoolVar(&noTables, "no-tables", false, "Skip table detection")
	flag.BoolVar(&noEmbed, "no-embed", false, "Reference images as files instead of base64 data URIs")
	flag.BoolVar(&saveImages, "save-images", false, "Also write each image under extracted_images/")
	flag.StringVar(&maxImageSize, "image.maxSize", "", "Bound embedded images as WxH or one number for both sides (empty uses the 400x300 default, negative keeps original size)")
	flag.IntVar(&imageQuality, "image.quality", 0, "JPEG quality 1..100 (0 uses the default)")
	flag.IntVar(&timeoutSecs, "timeout", 0, "Conversion timeout in seconds (0 uses the default)")
	flag.BoolVar(&aiSummary, "ai.summary", false, "Prepend a model-written analysis to the document")
	flag.StringVar(&aiPrompt, "ai.prompt", "", "Custom instruction for the analysis model")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL (defaults to OpenRouter)")
	flag.StringVar(&llmModel, "llm.model", "", "Model for analysis")
	flag.StringVar(&llmBackup, "llm.backupModel", "", "Fallback model when the primary fails")
	flag.StringVar(&visionModel, "llm.visionModel", "", "Vision model for the vision converter")
	flag.StringVar(&llmKey, "llm.key", "", "API key for the model endpoint")
	flag.BoolVar(&listInfo, "converters", false, "List available conversion strategies and exit")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&debugVerbose, "debug-verbose", false, "Trace-level logging")
	flag.Parse()

	if listInfo {
		printConverters()
		return
	}

	// Positional form: pdf2md input.pdf [output.md]
	if inputPath == "" && flag.NArg() > 0 {
		inputPath = flag.Arg(0)
	}
	if outputPath == "" && flag.NArg() > 1 {
		outputPath = flag.Arg(1)
	}

	maxW, maxH, err := app.ParseImageSize(maxImageSize)
	if err != nil {
		log.Error().Err(err).Msg("invalid -image.maxSize")
		os.Exit(1)
	}

	cfg := app.Config{
		InputPath:            inputPath,
		OutputPath:           outputPath,
		Format:               format,
		Converter:            converter,
		ExtractMetadata:      !noMetadata,
		ExtractImages:        !noImages,
		ExtractTables:        !noTables,
		EmbedImagesAsBase64:  !noEmbed,
		SaveImagesSeparately: saveImages,
		MaxImageWidth:        maxW,
		MaxImageHeight:       maxH,
		ImageQuality:         imageQuality,
		TimeoutSeconds:       timeoutSecs,
		AISummary:            aiSummary,
		AIPrompt:             aiPrompt,
		LLMBaseURL:           llmBaseURL,
		LLMModel:             llmModel,
		LLMBackupModel:       llmBackup,
		VisionModel:          visionModel,
		LLMAPIKey:            llmKey,
		Verbose:              verbose,
		DebugVerbose:         debugVerbose,
	}

	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("config", configPath).Msg("config file not loaded")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	switch {
	case cfg.DebugVerbose:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case cfg.Verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := app.Run(context.Background(), cfg); err != nil {
		log.Error().Err(err).Msg("conversion failed")
		// Exit code policy: 2 for a timeout so callers can retry with a
		// larger budget, 1 for everything else.
		if errors.Is(err, app.ErrTimeout) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func printConverters() {
	for _, name := range convert.All() {
		c, err := convert.New(name, convert.Options{}, nil, "model")
		if err != nil {
			continue
		}
		info := c.Info()
		fmt.Printf("%s (%s, %s)\n", info.Name, info.Type, info.Speed)
		for _, f := range info.Features {
			fmt.Printf("  + %s\n", f)
		}
		for _, l := range info.Limitations {
			fmt.Printf("  - %s\n", l)
		}
	}
}
