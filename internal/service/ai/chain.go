package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Chain 按优先级依次尝试供应商，不对同一供应商重试。
type Chain struct {
	providers []Provider
	timeout   time.Duration
	recorder  Recorder
	logger    logrus.FieldLogger
}

// NewChain 创建供应商链。timeout 为单次调用上限，<=0 时使用 30s。
func NewChain(providers []Provider, timeout time.Duration, recorder Recorder, logger logrus.FieldLogger) *Chain {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}

	return &Chain{providers: kept, timeout: timeout, recorder: recorder, logger: logger}
}

// Configured 表示链上至少有一个供应商。
func (c *Chain) Configured() bool {
	return c != nil && len(c.providers) > 0
}

// Names 返回供应商名称，按尝试顺序排列。
func (c *Chain) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Timeout 返回单次调用上限。
func (c *Chain) Timeout() time.Duration {
	return c.timeout
}

// Complete 返回第一个成功供应商的回复及其名称。只有调用错误或空回复才会换下一个供应商。
func (c *Chain) Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, string, error) {
	if !c.Configured() {
		return "", "", ErrNoProviders
	}

	chainErr := &ChainError{}
	for _, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			chainErr.Failures = append(chainErr.Failures, ProviderFailure{Provider: provider.Name(), Err: err})
			break
		}

		text, err := c.call(ctx, provider, system, user, opts)
		if err == nil {
			return text, provider.Name(), nil
		}

		c.logger.WithFields(logrus.Fields{
			"provider": provider.Name(),
			"purpose":  opts.Purpose,
		}).WithError(err).Warn("provider failed, trying next")
		chainErr.Failures = append(chainErr.Failures, ProviderFailure{Provider: provider.Name(), Err: err})
	}

	return "", "", chainErr
}

func (c *Chain) call(ctx context.Context, provider Provider, system, user string, opts CompletionOptions) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := provider.Complete(callCtx, system, user, opts)
	if err == nil && text == "" {
		err = ErrEmptyCompletion
	}
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrProviderUnavailable) {
		err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	if c.recorder != nil {
		c.recorder.RecordProviderCall(provider.Name(), opts.Purpose, callStatus(err), time.Since(start))
	}
	return text, err
}

// ProviderFailure 记录单个供应商的失败原因。
type ProviderFailure struct {
	Provider string
	Err      error
}

// ChainError 汇总链上每个供应商的失败原因。
type ChainError struct {
	Failures []ProviderFailure
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}
	return "ai: all providers failed: " + strings.Join(parts, "; ")
}

// Unwrap 让 errors.Is 能匹配任一供应商的错误。
func (e *ChainError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// AllEmpty 表示每个供应商都只是返回了空回复。
func (e *ChainError) AllEmpty() bool {
	if len(e.Failures) == 0 {
		return false
	}
	for _, f := range e.Failures {
		if !errors.Is(f.Err, ErrEmptyCompletion) {
			return false
		}
	}
	return true
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
