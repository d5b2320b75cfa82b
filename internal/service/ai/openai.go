package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/zhouzirui/judge-companion/backend/internal/config"
)

// OpenAIProvider 调用 OpenAI 兼容的 chat completions 接口。
type OpenAIProvider struct {
	client openaigo.Client
	model  string
}

// NewOpenAIProvider 创建 OpenAI 供应商。SDK 自带重试被关闭，失败直接交给下一个供应商。
func NewOpenAIProvider(cfg config.OpenAIConfig, timeout time.Duration) (*OpenAIProvider, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("openai config incomplete: OPENAI_API_KEY is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		client: openaigo.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Complete implements Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	params := openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(p.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(system),
			openaigo.UserMessage(user),
		},
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openaigo.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openaigo.Float(float64(opts.Temperature))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrProviderUnavailable, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
