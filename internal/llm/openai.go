package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible
// servers (Ollama, vLLM, LM Studio). Chat completions take text only.
type OpenAIProvider struct {
	client openai.Client
	name   ProviderName
	models []string
}

// NewOpenAIProvider creates a provider for the openai or ollama selector
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	name := config.Provider
	apiKey := config.APIKey
	baseURL := config.BaseURL
	defaultModel := defaultOpenAIModel

	if name == ProviderOllama {
		defaultModel = defaultOllamaModel
		if baseURL == "" {
			baseURL = DefaultOllamaBaseURL
		}
		if apiKey == "" {
			apiKey = "ollama" // Ollama ignores the key but the SDK requires one
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	// The fallback chain is the only retry policy.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := config.Model
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		name:   name,
		models: CandidateModels(model, nil),
	}, nil
}

// Name returns the provider selector
func (p *OpenAIProvider) Name() ProviderName { return p.name }

// Models returns a one-element chain
func (p *OpenAIProvider) Models() []string { return p.models }

// SupportsAttachments is false: chat completions cannot read PDFs
func (p *OpenAIProvider) SupportsAttachments() bool { return false }

// Generate sends the prompt to model as a single user message.
func (p *OpenAIProvider) Generate(ctx context.Context, model string, req Request) (string, error) {
	if req.Attachment != nil {
		return "", &ModelError{Provider: p.name, Model: model, Kind: KindUnsupported, Cause: ErrAttachmentsUnsupported}
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(0.1),
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &ModelError{Provider: p.name, Model: model, Kind: classifyOpenAIError(err), Cause: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &ModelError{Provider: p.name, Model: model, Kind: KindEmptyResponse, Cause: ErrEmptyResponse}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", &ModelError{
			Provider: p.name,
			Model:    model,
			Kind:     KindSafety,
			Cause:    errors.New("response withheld by content filter"),
		}
	}
	return choice.Message.Content, nil
}

// Close is a no-op; the SDK holds no long-lived resources
func (p *OpenAIProvider) Close() error { return nil }

// classifyOpenAIError maps SDK error types onto ErrorKind.
func classifyOpenAIError(err error) ErrorKind {
	if isContextErr(err) {
		return KindCanceled
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == "content_filter" {
			return KindSafety
		}
		return kindFromHTTPStatus(apiErr.StatusCode)
	}
	return KindUnknown
}
