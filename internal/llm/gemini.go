package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiProvider implements Provider for Google Gemini. Gemini reads PDF
// attachments directly, so scanned documents can skip OCR.
type GeminiProvider struct {
	client *genai.Client
	models []string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		models: CandidateModels(config.Model, geminiFallbacks),
	}, nil
}

// Name returns the provider selector
func (p *GeminiProvider) Name() ProviderName { return ProviderGemini }

// Models returns the configured model followed by the Gemini fallbacks
func (p *GeminiProvider) Models() []string { return p.models }

// SupportsAttachments is always true for Gemini
func (p *GeminiProvider) SupportsAttachments() bool { return true }

// Generate sends the prompt, and the attachment if any, to model.
func (p *GeminiProvider) Generate(ctx context.Context, model string, req Request) (string, error) {
	gm := p.client.GenerativeModel(model)
	gm.SetTemperature(0.1) // Low temperature for consistent output
	if req.JSON {
		gm.ResponseMIMEType = "application/json"
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Attachment != nil {
		parts = append(parts, genai.Blob{
			MIMEType: req.Attachment.MIMEType,
			Data:     req.Attachment.Data,
		})
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &ModelError{Provider: ProviderGemini, Model: model, Kind: classifyGeminiError(err), Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &ModelError{Provider: ProviderGemini, Model: model, Kind: KindEmptyResponse, Cause: err}
	}
	return text, nil
}

// Close releases resources held by the client
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// classifyGeminiError maps SDK error types onto ErrorKind.
func classifyGeminiError(err error) ErrorKind {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return KindSafety
	}
	if isContextErr(err) {
		return KindCanceled
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return kindFromHTTPStatus(apiErr.Code)
	}

	switch status.Code(err) {
	case codes.NotFound:
		return KindNotFound
	case codes.ResourceExhausted:
		return KindRateLimited
	case codes.Unauthenticated, codes.PermissionDenied:
		return KindAuth
	case codes.Canceled, codes.DeadlineExceeded:
		return KindCanceled
	default:
		return KindUnknown
	}
}

func kindFromHTTPStatus(code int) ErrorKind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	default:
		return KindUnknown
	}
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response: %w", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response: %w", ErrEmptyResponse)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response: %w", ErrEmptyResponse)
	}

	return strings.Join(parts, ""), nil
}
