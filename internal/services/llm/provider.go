// Package llm wraps the hosted model APIs behind a provider-agnostic
// interface. The factory routes each request to Claude or Gemini based on
// the model name, so callers configure models, not providers.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"google.golang.org/genai"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// GenerateRequest represents a provider-agnostic generation request
type GenerateRequest struct {
	Prompt            string
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
}

// GenerateResponse represents a provider-agnostic generation response
type GenerateResponse struct {
	Text     string
	Provider ProviderType
	Model    string
}

// Provider defines the interface for model text generation
type Provider interface {
	GenerateText(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error)
	Close() error
}

// ProviderFactory creates and caches API clients for both providers and
// implements Provider by dispatching on the requested model.
type ProviderFactory struct {
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	llmConfig    *common.LLMConfig
	logger       arbor.ILogger
	geminiClient *genai.Client
	claudeClient anthropic.Client
	claudeReady  bool
	retry        *RetryConfig
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *common.Config, logger arbor.ILogger) *ProviderFactory {
	return &ProviderFactory{
		geminiConfig: &cfg.Gemini,
		claudeConfig: &cfg.Claude,
		llmConfig:    &cfg.LLM,
		logger:       logger,
		retry:        NewDefaultRetryConfig(),
	}
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-sonnet-4-20250514" -> Claude
// - "claude/claude-sonnet-4-20250514" -> Claude (with prefix)
// - "gemini-2.5-flash" -> Gemini
// - Empty string -> uses default provider from config
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	if model == "" {
		return ProviderType(f.llmConfig.DefaultProvider)
	}

	model = strings.ToLower(model)

	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") {
		return ProviderGemini
	}

	if strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini-") {
		return ProviderGemini
	}

	return ProviderType(f.llmConfig.DefaultProvider)
}

// NormalizeModel removes the provider prefix from a model name if present
func (f *ProviderFactory) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// GetGeminiClient returns a Gemini client, creating one if necessary
func (f *ProviderFactory) GetGeminiClient(ctx context.Context) (*genai.Client, error) {
	if f.geminiClient != nil {
		return f.geminiClient, nil
	}

	if f.geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  f.geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	f.geminiClient = client
	return client, nil
}

// GetClaudeClient returns a Claude client, creating one if necessary
func (f *ProviderFactory) GetClaudeClient(ctx context.Context) (anthropic.Client, error) {
	if f.claudeReady {
		return f.claudeClient, nil
	}

	if f.claudeConfig.APIKey == "" {
		return anthropic.Client{}, fmt.Errorf("anthropic API key is not configured")
	}

	f.claudeClient = anthropic.NewClient(
		option.WithAPIKey(f.claudeConfig.APIKey),
	)
	f.claudeReady = true
	return f.claudeClient, nil
}

// GenerateText generates text using the provider matching the request model
func (f *ProviderFactory) GenerateText(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error) {
	provider := f.DetectProvider(request.Model)
	model := f.NormalizeModel(request.Model)

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("prompt_chars", len(request.Prompt)).
		Msg("Generating text with provider")

	switch provider {
	case ProviderClaude:
		return f.generateWithClaude(ctx, request, model)
	case ProviderGemini:
		return f.generateWithGemini(ctx, request, model)
	default:
		return f.generateWithGemini(ctx, request, model)
	}
}

func (f *ProviderFactory) generateWithClaude(ctx context.Context, request *GenerateRequest, model string) (*GenerateResponse, error) {
	client, err := f.GetClaudeClient(ctx)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = f.claudeConfig.Model
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = f.claudeConfig.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.claudeConfig.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	if request.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: request.SystemInstruction},
		}
	}

	var resp *anthropic.Message
	var apiErr error
	for attempt := 0; attempt <= f.retry.MaxRetries; attempt++ {
		resp, apiErr = client.Messages.New(ctx, params)
		if apiErr == nil {
			break
		}
		if attempt == f.retry.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * 2 * time.Second
		if IsRateLimitError(apiErr) {
			backoff = f.retry.CalculateBackoff(attempt, 0)
		}

		f.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Claude API call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return nil, fmt.Errorf("Claude API call failed after %d retries: %w", f.retry.MaxRetries, apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Claude API")
	}

	return &GenerateResponse{
		Text:     text.String(),
		Provider: ProviderClaude,
		Model:    model,
	}, nil
}

func (f *ProviderFactory) generateWithGemini(ctx context.Context, request *GenerateRequest, model string) (*GenerateResponse, error) {
	client, err := f.GetGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = f.geminiConfig.Model
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.geminiConfig.Temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if request.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemInstruction, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(request.Prompt, genai.RoleUser),
	}

	var resp *genai.GenerateContentResponse
	var apiErr error
	for attempt := 0; attempt <= f.retry.MaxRetries; attempt++ {
		resp, apiErr = client.Models.GenerateContent(ctx, model, contents, config)
		if apiErr == nil {
			break
		}
		if attempt == f.retry.MaxRetries {
			break
		}

		var backoff time.Duration
		if IsRateLimitError(apiErr) {
			backoff = f.retry.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))
		} else {
			backoff = time.Duration(attempt+1) * 2 * time.Second
		}

		f.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Gemini API call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return nil, fmt.Errorf("Gemini API call failed after %d retries: %w", f.retry.MaxRetries, apiErr)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}
	responseText := resp.Text()
	if responseText == "" {
		return nil, fmt.Errorf("empty text in Gemini response")
	}

	return &GenerateResponse{
		Text:     responseText,
		Provider: ProviderGemini,
		Model:    model,
	}, nil
}

// Close releases cached clients
func (f *ProviderFactory) Close() error {
	f.geminiClient = nil
	f.claudeClient = anthropic.Client{}
	f.claudeReady = false
	return nil
}
