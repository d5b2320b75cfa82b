package analytics

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/analysis/legal"
	model "github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/service/ai"
)

// 分析结果指标标签
const (
	ResultSkipped   = "skipped"
	ResultGenerated = "generated"
	ResultFailed    = "failed"
)

// Completer 是供应商链中分析服务用到的部分。
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, system, user string, opts ai.CompletionOptions) (string, string, error)
}

// Recorder 记录分析结果指标。
type Recorder interface {
	RecordAnalytics(result string)
}

// Service 在对话涉及法律话题时请求模型给出结构化案件分析。
type Service struct {
	chain    Completer
	recorder Recorder
	logger   logrus.FieldLogger
}

// NewService 创建分析服务。recorder 可为空。
func NewService(chain Completer, recorder Recorder, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{chain: chain, recorder: recorder, logger: logger}
}

// MaybeAnalyze 通过关键词门槛后请求分析；任何失败都降级为 nil。
func (s *Service) MaybeAnalyze(ctx context.Context, userText, reply string) *model.CaseAnalysis {
	if !legal.ShouldAnalyze(userText, reply) {
		s.record(ResultSkipped)
		return nil
	}
	if s.chain == nil || !s.chain.Configured() {
		s.record(ResultSkipped)
		return nil
	}

	text, provider, err := s.chain.Complete(ctx, analystSystemPrompt, buildAnalyticsPrompt(userText, reply), ai.AnalyticsOptions)
	if err != nil {
		s.logger.WithError(err).Warn("case analytics unavailable")
		s.record(ResultFailed)
		return nil
	}

	// 回复格式不对时直接放弃，不再询问其他供应商
	parsed, err := legal.Parse(text)
	if err != nil {
		s.logger.WithField("provider", provider).WithError(err).Warn("case analytics reply rejected")
		s.record(ResultFailed)
		return nil
	}

	if parsed.RiskCorrected() {
		s.logger.WithFields(logrus.Fields{
			"provider":            provider,
			"success_probability": parsed.Analysis.SuccessProbability,
			"claimed_risk":        parsed.ClaimedRisk,
			"corrected_risk":      parsed.Analysis.RiskLevel,
		}).Info("analytics risk level corrected")
	}

	s.record(ResultGenerated)
	analysis := parsed.Analysis
	return &analysis
}

func (s *Service) record(result string) {
	if s.recorder != nil {
		s.recorder.RecordAnalytics(result)
	}
}
