package speech

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/judge-companion/backend/internal/config"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
	"github.com/zhouzirui/judge-companion/backend/internal/model/speech"
	"github.com/zhouzirui/judge-companion/backend/pkg/markdown"
)

const defaultTimeout = 30 * time.Second

// Recorder 记录语音合成结果指标。
type Recorder interface {
	RecordSpeech(status string)
}

// Service 把助手回复合成为语音
type Service struct {
	config   config.SpeechConfig
	client   *VolcengineTTSClient
	timeout  time.Duration
	recorder Recorder
	logger   logrus.FieldLogger
}

// NewService 创建语音服务。recorder 可为空。
func NewService(cfg config.SpeechConfig, recorder Recorder, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		config:   cfg,
		client:   NewVolcengineTTSClient(cfg, logger),
		timeout:  timeout,
		recorder: recorder,
		logger:   logger,
	}
}

// Enabled 表示凭证齐全，可以发起合成。
func (s *Service) Enabled() bool {
	return s != nil && s.config.Enabled
}

// SynthesizeSpeech 调用 TTS 接口合成语音
func (s *Service) SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.SynthesizeSpeechWS(ctx, req)
}

// SynthesizeBase64 去掉 Markdown 后按语言选择发音人和情绪，返回 base64 编码的 mp3。
func (s *Service) SynthesizeBase64(ctx context.Context, text string, lang chat.Language, label emotion.Label) (string, error) {
	if !s.Enabled() {
		s.record("disabled")
		return "", ErrNotConfigured
	}
	plain := markdown.ToSpeechText(text)
	if plain == "" {
		s.record("skipped")
		return "", ErrEmptyText
	}

	voice := VoiceFor(lang, s.config.TTSVoice, s.config.TTSVoiceEN)
	req := &speech.TTSRequest{
		Text:     plain,
		Voice:    voice,
		Format:   defaultFormat,
		Language: string(lang),
	}
	decision := emotion.Decision{Emotion: label, Score: emotion.Analyze(text).Score}
	if ok, mapped, scale := ComputeEmotionParameters(voice, decision); ok {
		req.Emotion = mapped
		req.EmotionScale = scale
	}

	resp, err := s.SynthesizeSpeech(ctx, req)
	if err != nil {
		s.record("error")
		return "", err
	}
	s.record("success")
	s.logger.WithFields(logrus.Fields{
		"voice":      resp.Voice,
		"emotion":    req.Emotion,
		"bytes":      len(resp.AudioData),
		"request_id": resp.RequestID,
	}).Debug("speech synthesized")
	return base64.StdEncoding.EncodeToString(resp.AudioData), nil
}

func (s *Service) record(status string) {
	if s.recorder != nil {
		s.recorder.RecordSpeech(status)
	}
}
