// Package extraction turns notice text or a scanned PDF into structured
// job fields by prompting the configured model provider.
package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/notice-extractor/internal/llm"
	"github.com/jonathan/notice-extractor/internal/observability"
	"github.com/jonathan/notice-extractor/internal/types"
)

// TruncationWarning is added to Warnings when WarnOnTruncation is set
const TruncationWarning = "document text was truncated before extraction; later sections may be missing"

// Options tunes the gateway. The zero value uses the defaults.
type Options struct {
	// MaxInputChars caps the document text sent to the model
	MaxInputChars int
	// WarnOnTruncation surfaces truncation in Warnings instead of only logging it
	WarnOnTruncation bool
}

// Gateway is the single entry point for model-backed extraction. It holds
// only immutable configuration and is safe for concurrent use.
type Gateway struct {
	provider llm.Provider
	opts     Options
}

// NewGateway creates a gateway over provider
func NewGateway(provider llm.Provider, opts Options) *Gateway {
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	return &Gateway{provider: provider, opts: opts}
}

// SupportsAttachments reports whether ExtractFromAttachment can be used
func (g *Gateway) SupportsAttachments() bool {
	return g.provider.SupportsAttachments()
}

// ProviderName returns the active provider selector
func (g *Gateway) ProviderName() string {
	return string(g.provider.Name())
}

// ExtractText extracts job fields from document text.
func (g *Gateway) ExtractText(ctx context.Context, text string) (*types.ExtractedData, error) {
	logger := observability.Logger(ctx)

	truncated, cut := truncateChars(text, g.opts.MaxInputChars)
	if cut {
		logger.Info("extraction.truncated",
			"limit_chars", g.opts.MaxInputChars,
			"input_bytes", len(text),
		)
	}

	data, err := g.run(ctx, llm.Request{Prompt: buildTextPrompt(truncated), JSON: true})
	if err != nil {
		return nil, err
	}
	if cut && g.opts.WarnOnTruncation {
		data.Warnings = append(data.Warnings, TruncationWarning)
	}
	return data, nil
}

// ExtractFromAttachment sends the raw document to a multimodal model.
// It fails with *UnsupportedAttachmentError on text-only providers.
func (g *Gateway) ExtractFromAttachment(ctx context.Context, buf []byte, mimeType string) (*types.ExtractedData, error) {
	if !g.provider.SupportsAttachments() {
		return nil, &UnsupportedAttachmentError{Provider: g.ProviderName()}
	}

	return g.run(ctx, llm.Request{
		Prompt:     buildAttachmentPrompt(),
		Attachment: &llm.Attachment{MIMEType: mimeType, Data: buf},
		JSON:       true,
	})
}

func (g *Gateway) run(ctx context.Context, req llm.Request) (*types.ExtractedData, error) {
	logger := observability.Logger(ctx)
	start := time.Now()
	logger.Info("extraction.start",
		"provider", g.ProviderName(),
		"attachment", req.Attachment != nil,
		"prompt_chars", len(req.Prompt),
	)

	raw, model, err := llm.Generate(ctx, g.provider, req)
	if err != nil {
		return nil, &APICallError{
			Message: fmt.Sprintf("no %s model produced a response", g.ProviderName()),
			Cause:   err,
		}
	}

	data, err := ParseResponse(raw)
	if err != nil {
		logger.Error("extraction.parse.failed", "model", model, "response_chars", len(raw), "error", err)
		return nil, err
	}
	data.Model = model

	logger.Info("extraction.done",
		"model", model,
		"warnings", len(data.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}
