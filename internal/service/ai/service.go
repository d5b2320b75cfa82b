package ai

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
)

// Messages 提供无需调用模型的固定本地化文案。
type Messages interface {
	Apology(lang chat.Language) string
	Busy(lang chat.Language) string
	NotConfigured(lang chat.Language) string
}

// Synthesizer 把回复转成 base64 音频。
type Synthesizer interface {
	SynthesizeBase64(ctx context.Context, text string, lang chat.Language, label emotion.Label) (string, error)
}

// Analyzer 按需生成案件分析，失败时返回 nil。
type Analyzer interface {
	MaybeAnalyze(ctx context.Context, userText, reply string) *analytics.CaseAnalysis
}

// Response 是一轮对话的生成结果。
type Response struct {
	Message     string
	Emotion     emotion.Label
	AudioBase64 string
	Analytics   *analytics.CaseAnalysis
	// Provider 为空表示使用了固定文案。
	Provider string
}

// Options 为可选依赖。
type Options struct {
	Speech   Synthesizer
	Analyzer Analyzer
	Logger   logrus.FieldLogger
}

// Service 编排供应商链、情绪识别、语音合成与案件分析。
type Service struct {
	chain    *Chain
	messages Messages
	speech   Synthesizer
	analyzer Analyzer
	logger   logrus.FieldLogger
}

// NewService creates the orchestrator. chain may be empty, in which case every
// turn answers with the "not configured" text.
func NewService(chain *Chain, messages Messages, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		chain:    chain,
		messages: messages,
		speech:   opts.Speech,
		analyzer: opts.Analyzer,
		logger:   logger,
	}
}

// Providers 返回已配置的供应商名称。
func (s *Service) Providers() []string {
	return s.chain.Names()
}

// Generate 生成一轮回复。供应商失败被吸收为固定文案，只有调用方已取消时才返回错误。
func (s *Service) Generate(ctx context.Context, userText string, lang chat.Language) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !s.chain.Configured() {
		s.logger.Warn("no AI provider configured")
		return &Response{Message: s.messages.NotConfigured(lang), Emotion: emotion.Idle}, nil
	}

	reply, provider, err := s.chain.Complete(ctx, BuildSystemPrompt(lang), userText, ChatOptions)
	if err != nil {
		var chainErr *ChainError
		if errors.As(err, &chainErr) && chainErr.AllEmpty() {
			s.logger.WithError(err).Warn("all providers returned empty replies")
			return &Response{Message: s.messages.Busy(lang), Emotion: emotion.Idle}, nil
		}
		s.logger.WithError(err).Error("all providers failed")
		return &Response{Message: s.messages.Apology(lang), Emotion: emotion.Idle}, nil
	}

	resp := &Response{
		Message:  reply,
		Emotion:  emotion.Classify(reply),
		Provider: provider,
	}

	var wg sync.WaitGroup
	if s.speech != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.recoverEnrichment("speech")
			audio, err := s.speech.SynthesizeBase64(ctx, reply, lang, resp.Emotion)
			if err != nil {
				s.logger.WithError(err).Warn("speech synthesis failed, omitting audio")
				return
			}
			resp.AudioBase64 = audio
		}()
	}
	if s.analyzer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.recoverEnrichment("analytics")
			resp.Analytics = s.analyzer.MaybeAnalyze(ctx, userText, reply)
		}()
	}
	wg.Wait()

	s.logger.WithFields(logrus.Fields{
		"provider":      provider,
		"language":      lang,
		"emotion":       resp.Emotion,
		"has_audio":     resp.AudioBase64 != "",
		"has_analytics": resp.Analytics != nil,
	}).Info("chat turn generated")

	return resp, nil
}

// recoverEnrichment 吞掉语音或分析协程里的 panic，对应字段保持为空。
func (s *Service) recoverEnrichment(step string) {
	if r := recover(); r != nil {
		s.logger.WithFields(logrus.Fields{
			"step":  step,
			"panic": r,
		}).Error("enrichment panicked, omitting result")
	}
}
