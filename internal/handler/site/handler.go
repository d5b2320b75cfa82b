package site

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
	"github.com/zhouzirui/judge-companion/backend/pkg/utils"
)

// Info 前端展示用的站点信息
type Info struct {
	ContractAddress string          `json:"contractAddress"`
	Languages       []chat.Language `json:"languages"`
	CooldownSeconds int             `json:"cooldownSeconds"`
}

// Handler 返回站点信息
type Handler struct {
	info Info
}

// New 创建站点信息处理器
func New(contractAddress string, cooldown time.Duration) *Handler {
	return &Handler{info: Info{
		ContractAddress: contractAddress,
		Languages:       []chat.Language{chat.LanguageEnglish, chat.LanguageChinese},
		CooldownSeconds: int((cooldown + time.Second - 1) / time.Second),
	}}
}

// RegisterRoutes 注册站点信息路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/site", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, h.info)
	})
}
