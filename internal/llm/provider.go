package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/notice-extractor/internal/observability"
)

// Attachment is a binary document sent alongside the prompt
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is a single generation request
type Request struct {
	Prompt     string
	Attachment *Attachment
	// JSON asks the provider for a JSON response where it supports that
	JSON bool
}

// Provider is an abstraction over LLM backends. A provider answers a
// prompt, optionally with an attachment, using one named model.
type Provider interface {
	// Name returns the provider selector
	Name() ProviderName
	// Models returns the ordered candidate chain for this provider
	Models() []string
	// SupportsAttachments reports whether Generate accepts req.Attachment
	SupportsAttachments() bool
	// Generate returns the raw text response of model for req.
	// Failures are *ModelError values.
	Generate(ctx context.Context, model string, req Request) (string, error)
	// Close releases any resources held by the provider
	Close() error
}

// NewProvider creates the provider selected by config
func NewProvider(ctx context.Context, config *Config) (Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiProvider(ctx, config)
	case ProviderOpenAI, ProviderOllama:
		return NewOpenAIProvider(config)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", config.Provider)
	}
}

// Generate runs req through the provider's candidate chain. Each failed
// candidate is logged and the next one tried; the first non-empty
// response wins. It returns the response and the model that produced it.
func Generate(ctx context.Context, p Provider, req Request) (string, string, error) {
	logger := observability.Logger(ctx).With("provider", string(p.Name()))

	if req.Attachment != nil && !p.SupportsAttachments() {
		return "", "", &ModelError{Provider: p.Name(), Kind: KindUnsupported, Cause: ErrAttachmentsUnsupported}
	}

	candidates := p.Models()
	attempt := 0
	try := func(ctx context.Context, model string) (string, error) {
		attempt++
		start := time.Now()
		logger.Debug("llm.candidate.start", "model", model, "attempt", attempt)

		text, err := p.Generate(ctx, model, req)
		if err == nil && strings.TrimSpace(text) == "" {
			err = &ModelError{Provider: p.Name(), Model: model, Kind: KindEmptyResponse, Cause: ErrEmptyResponse}
		}
		if err != nil {
			logger.Warn("llm.candidate.failed",
				"model", model,
				"attempt", attempt,
				"kind", string(KindOf(err)),
				"elapsed_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return "", err
		}

		logger.Info("llm.candidate.ok",
			"model", model,
			"attempt", attempt,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"response_chars", len(text),
		)
		return text, nil
	}

	text, model, err := TryInOrder(ctx, candidates, try, ContinueUnlessCanceled)
	if err != nil {
		logger.Error("llm.chain.exhausted", "candidates", len(candidates), "error", err)
		return "", "", err
	}
	if attempt > 1 {
		logger.Info("llm.chain.fell_back", "model", model, "attempts", attempt)
	}
	return text, model, nil
}
