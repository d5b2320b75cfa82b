package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/judge-companion/backend/internal/config"
)

// ArkProvider 通过 eino 调用火山方舟模型。
type ArkProvider struct {
	chatModel model.ChatModel
}

// NewArkProvider 使用配置创建方舟供应商。
func NewArkProvider(ctx context.Context, cfg config.ArkConfig) (*ArkProvider, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewArkProviderWithModel(chatModel), nil
}

// NewArkProviderWithModel 包装已有的 eino ChatModel。
func NewArkProviderWithModel(chatModel model.ChatModel) *ArkProvider {
	return &ArkProvider{chatModel: chatModel}
}

// Name implements Provider.
func (p *ArkProvider) Name() string { return "ark" }

// Complete implements Provider.
func (p *ArkProvider) Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	var callOpts []model.Option
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, model.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		callOpts = append(callOpts, model.WithTemperature(opts.Temperature))
	}

	msg, err := p.chatModel.Generate(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("%w: ark: %w", ErrProviderUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(msg.Content), nil
}
