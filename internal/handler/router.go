package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/handler/cases"
	"github.com/zhouzirui/judge-companion/backend/internal/handler/chat"
	"github.com/zhouzirui/judge-companion/backend/internal/handler/site"
	middlewarePkg "github.com/zhouzirui/judge-companion/backend/internal/middleware"
	"github.com/zhouzirui/judge-companion/backend/internal/model/legalcase"
	"github.com/zhouzirui/judge-companion/backend/internal/service/ratelimit"
	"github.com/zhouzirui/judge-companion/backend/pkg/utils"
)

// Deps 是路由依赖的服务。Metrics 与 Guard 可为空。
type Deps struct {
	Cases           legalcase.Store
	Generator       chat.Generator
	Limiter         ratelimit.Limiter
	Texts           chat.Texts
	Metrics         *middlewarePkg.Metrics
	Guard           *middlewarePkg.ThroughputGuard
	AllowedOrigins  []string
	ContractAddress string
	Cooldown        time.Duration
	Logger          logrus.FieldLogger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(middlewarePkg.HTTPMetrics)
	}

	var recorder chat.Recorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}
	chatHandler := chat.New(deps.Generator, deps.Limiter, deps.Texts, recorder, logger)
	caseHandler := cases.New(deps.Cases)
	siteHandler := site.New(deps.ContractAddress, deps.Cooldown)

	// 全局吞吐保护只作用于会触发模型调用的聊天接口
	var chatMiddleware []func(http.Handler) http.Handler
	if deps.Guard != nil {
		chatMiddleware = append(chatMiddleware, deps.Guard.Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api, chatMiddleware...)
		caseHandler.RegisterRoutes(api)
		siteHandler.RegisterRoutes(api)
	})

	return r
}
