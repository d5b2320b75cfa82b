package cases

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
	"github.com/zhouzirui/judge-companion/backend/internal/model/legalcase"
	"github.com/zhouzirui/judge-companion/backend/pkg/utils"
)

// Handler 示例案件的HTTP处理器
type Handler struct {
	cases legalcase.Store
}

// New 创建示例案件处理器
func New(cases legalcase.Store) *Handler {
	return &Handler{cases: cases}
}

// RegisterRoutes 注册示例案件路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/cases", h.handleListCases)
	r.Get("/cases/{caseID}", h.handleGetCase)
}

// caseView 是按语言展开后的案件
type caseView struct {
	ID          string                 `json:"id"`
	Category    string                 `json:"category"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Analysis    analytics.CaseAnalysis `json:"analysis"`
}

func localize(c legalcase.Case, lang chat.Language) caseView {
	return caseView{
		ID:          c.ID,
		Category:    c.Category,
		Title:       c.Title.In(lang),
		Description: c.Description.In(lang),
		Analysis:    c.Analysis,
	}
}

func (h *Handler) handleListCases(w http.ResponseWriter, r *http.Request) {
	lang, ok := chat.ParseLanguage(r.URL.Query().Get("language"))
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "unsupported language")
		return
	}

	items := h.cases.List()
	views := make([]caseView, 0, len(items))
	for _, item := range items {
		views = append(views, localize(item, lang))
	}
	utils.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	lang, ok := chat.ParseLanguage(r.URL.Query().Get("language"))
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "unsupported language")
		return
	}

	item, found := h.cases.FindByID(chi.URLParam(r, "caseID"))
	if !found {
		utils.RespondError(w, http.StatusNotFound, "case not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, localize(item, lang))
}
