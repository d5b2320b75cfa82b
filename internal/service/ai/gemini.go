package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/zhouzirui/judge-companion/backend/internal/config"
)

// GeminiProvider 调用 Gemini generateContent 接口。
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider 创建 Gemini 供应商。
func NewGeminiProvider(ctx context.Context, cfg config.GeminiConfig) (*GeminiProvider, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("gemini config incomplete: GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: cfg.Model}, nil
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Complete implements Provider.
func (p *GeminiProvider) Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(opts.Temperature)
	}

	res, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrProviderUnavailable, err)
	}

	text := candidateText(res)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// candidateText 拼接首个候选的文本分片；被安全策略拦截时没有候选。
func candidateText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}

	var builder strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		builder.WriteString(part.Text)
	}
	return strings.TrimSpace(builder.String())
}
