package ai

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrProviderUnavailable 表示供应商调用失败（网络、鉴权、配额、超时）。
	ErrProviderUnavailable = errors.New("ai: provider unavailable")
	// ErrEmptyCompletion 表示供应商返回了空回复。
	ErrEmptyCompletion = errors.New("ai: empty completion")
	// ErrNoProviders 表示没有配置任何供应商。
	ErrNoProviders = errors.New("ai: no provider configured")
)

// CompletionOptions 是单次补全的采样参数。
type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
	// Purpose 仅用于日志与指标（chat / analytics）。
	Purpose string
}

// 对话回复与案件分析两种调用的预算。
var (
	ChatOptions      = CompletionOptions{MaxTokens: 200, Temperature: 0.8, Purpose: "chat"}
	AnalyticsOptions = CompletionOptions{MaxTokens: 300, Temperature: 0.7, Purpose: "analytics"}
)

// Provider 是一个能根据 system + user 文本给出单条回复的大模型。
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error)
}

// Recorder 记录供应商调用指标。
type Recorder interface {
	RecordProviderCall(provider, purpose, status string, duration time.Duration)
}
