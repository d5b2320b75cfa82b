package chat

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
	"github.com/zhouzirui/judge-companion/backend/internal/service/ai"
	"github.com/zhouzirui/judge-companion/backend/internal/service/ratelimit"
	"github.com/zhouzirui/judge-companion/backend/pkg/utils"
)

// MaxContentLength 单条消息的最大字符数
const MaxContentLength = 2000

// maxBodyBytes 请求体上限，足够容纳 2000 个多字节字符
const maxBodyBytes = 64 << 10

// 对话结果指标标签
const (
	OutcomeOK          = "ok"
	OutcomeFallback    = "fallback"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Generator 生成一轮助手回复。
type Generator interface {
	Generate(ctx context.Context, userText string, lang chat.Language) (*ai.Response, error)
}

// Texts 提供本地化的固定文案。
type Texts interface {
	RateLimited(lang chat.Language, seconds int) string
}

// Recorder 记录对话指标。
type Recorder interface {
	RecordChatTurn(outcome string)
	RecordCooldownRejected()
}

// Handler 处理 POST /api/chat
type Handler struct {
	generator Generator
	limiter   ratelimit.Limiter
	texts     Texts
	recorder  Recorder
	logger    logrus.FieldLogger
	now       func() time.Time
}

// New 创建聊天处理器。recorder 可为空。
func New(generator Generator, limiter ratelimit.Limiter, texts Texts, recorder Recorder, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		generator: generator,
		limiter:   limiter,
		texts:     texts,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRoutes 注册聊天路由，mw 只作用于聊天接口
func (h *Handler) RegisterRoutes(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.With(mw...).Post("/chat", h.handleChat)
}

// FieldError 描述一个未通过校验的字段
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details"`
}

type rateLimitedResponse struct {
	Error         string `json:"error"`
	RemainingTime int    `json:"remainingTime"`
}

type chatResponse struct {
	UserMessage chat.Message            `json:"userMessage"`
	CzMessage   chat.Message            `json:"czMessage"`
	Analytics   *analytics.CaseAnalysis `json:"analytics"`
}

type turn struct {
	content  string
	username string
	language chat.Language
	wallet   string
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	in, details := decodeTurn(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if len(details) > 0 {
		h.record(OutcomeInvalid)
		utils.RespondJSON(w, http.StatusBadRequest, validationResponse{Error: "Invalid request data", Details: details})
		return
	}

	key := sessionKey(in.wallet, r)
	log := h.logger.WithFields(logrus.Fields{"session_key": key, "language": in.language})

	now := h.now()
	decision, err := h.limiter.TryAcquire(r.Context(), key, now)
	if err != nil {
		log.WithError(err).Error("cooldown check failed")
		h.record(OutcomeError)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !decision.Allowed {
		seconds := decision.RemainingSeconds()
		if h.recorder != nil {
			h.recorder.RecordCooldownRejected()
		}
		h.record(OutcomeRateLimited)
		log.WithField("remaining", seconds).Info("chat rejected by cooldown")
		utils.RespondJSON(w, http.StatusTooManyRequests, rateLimitedResponse{
			Error:         h.texts.RateLimited(in.language, seconds),
			RemainingTime: seconds,
		})
		return
	}

	resp, err := h.generator.Generate(r.Context(), in.content, in.language)
	if err != nil || resp == nil {
		log.WithError(err).Error("chat turn failed")
		h.record(OutcomeError)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	outcome := OutcomeOK
	if resp.Provider == "" {
		outcome = OutcomeFallback
	}
	h.record(outcome)

	at := h.now()
	utils.RespondJSON(w, http.StatusOK, chatResponse{
		UserMessage: chat.NewUserMessage(in.content, in.username, at),
		CzMessage:   chat.NewAssistantMessage(resp.Message, string(resp.Emotion), resp.AudioBase64, at),
		Analytics:   resp.Analytics,
	})
}

// decodeTurn 解析并校验请求体，返回所有不合法字段
func decodeTurn(body io.Reader) (turn, []FieldError) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return turn{}, []FieldError{{Field: "body", Message: "Request body must be a JSON object"}}
	}

	var (
		in      turn
		details []FieldError
	)

	content, present, err := stringField(fields, "content")
	switch {
	case err != nil:
		details = append(details, FieldError{Field: "content", Message: "Expected string"})
	case !present:
		details = append(details, FieldError{Field: "content", Message: "Required"})
	case content == "":
		details = append(details, FieldError{Field: "content", Message: "Content must contain at least 1 character"})
	case utf8.RuneCountInString(content) > MaxContentLength:
		details = append(details, FieldError{Field: "content", Message: "Content must contain at most 2000 characters"})
	default:
		in.content = content
	}

	raw, _, err := stringField(fields, "language")
	lang, ok := chat.ParseLanguage(raw)
	if err != nil || !ok {
		details = append(details, FieldError{Field: "language", Message: "Expected 'en' | 'zh'"})
	}
	in.language = lang

	if in.username, _, err = stringField(fields, "username"); err != nil {
		details = append(details, FieldError{Field: "username", Message: "Expected string"})
	}
	wallet, _, err := stringField(fields, "walletAddress")
	if err != nil {
		details = append(details, FieldError{Field: "walletAddress", Message: "Expected string"})
	}
	in.wallet = strings.TrimSpace(wallet)

	return in, details
}

// stringField 读取可选字符串字段，null 视为未提供
func stringField(fields map[string]json.RawMessage, name string) (string, bool, error) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return "", false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", true, err
	}
	return value, true, nil
}

// sessionKey 钱包地址优先，其次客户端 IP
func sessionKey(wallet string, r *http.Request) string {
	if wallet != "" {
		return wallet
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}

func (h *Handler) record(outcome string) {
	if h.recorder != nil {
		h.recorder.RecordChatTurn(outcome)
	}
}
