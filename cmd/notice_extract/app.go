package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonathan/notice-extractor/internal/config"
	"github.com/jonathan/notice-extractor/internal/extraction"
	"github.com/jonathan/notice-extractor/internal/llm"
	"github.com/jonathan/notice-extractor/internal/observability"
	"github.com/jonathan/notice-extractor/internal/pipeline"
	"github.com/jonathan/notice-extractor/internal/server"
	"github.com/jonathan/notice-extractor/internal/textextract"
)

// newProvider builds the model provider; tests replace it with a stub.
var newProvider = llm.NewProvider

// app holds the components wired from one resolved configuration.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	provider llm.Provider
	gateway  *extraction.Gateway
	text     *textextract.Service
}

// resolveConfig layers command-line flags over the environment, the
// --config file and the defaults.
func resolveConfig(overrides config.Config) (config.Config, error) {
	var file *config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		file = loaded
	}

	flags := overrides.MergeWithDefaults(config.Config{
		Provider: flagConfig.Provider,
		APIKey:   flagConfig.APIKey,
		Model:    flagConfig.Model,
		LogLevel: flagConfig.LogLevel,
	})
	return config.Resolve(flags, file, os.Getenv)
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	logger := observability.NewLogger(logOut, cfg.LogLevel, cfg.LogFormat)

	provider, err := newProvider(ctx, llmConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
	}

	if !textextract.OCREnabled {
		logger.Warn("ocr.disabled", "hint", "build with -tags ocr to enable Tesseract")
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		gateway: extraction.NewGateway(provider, extraction.Options{
			MaxInputChars:    cfg.MaxInputChars,
			WarnOnTruncation: cfg.WarnOnTruncation,
		}),
		text: textextract.NewService(ocrConfig(cfg)),
	}, nil
}

// orchestrator returns a pipeline over the app's components
func (a *app) orchestrator(onProgress pipeline.ProgressCallback) *pipeline.Orchestrator {
	return pipeline.New(a.text, a.gateway, pipeline.Options{
		AllowOCRTextFallback: a.cfg.AllowOCRTextFallback,
		Timeout:              a.cfg.Timeout(),
		OnProgress:           onProgress,
	})
}

// withLogger returns ctx carrying the app logger
func (a *app) withLogger(ctx context.Context) context.Context {
	return observability.WithLogger(ctx, a.logger)
}

func (a *app) providerInfo() server.ProviderInfo {
	return server.ProviderInfo{
		Name:       string(a.provider.Name()),
		Multimodal: a.provider.SupportsAttachments(),
		Models:     a.provider.Models(),
	}
}

func (a *app) Close() error {
	return a.provider.Close()
}

func llmConfig(cfg config.Config) *llm.Config {
	return &llm.Config{
		Provider: llm.ParseProviderName(cfg.Provider),
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
	}
}

func ocrConfig(cfg config.Config) textextract.OCRConfig {
	return textextract.OCRConfig{
		Language:       cfg.OCRLanguage,
		DPI:            cfg.OCRDPI,
		Pdftoppm:       cfg.PdftoppmPath,
		TessdataPrefix: cfg.TessdataPrefix,
		MaxPages:       cfg.OCRMaxPages,
	}
}
