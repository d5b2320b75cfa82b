package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/config"
	"github.com/zhouzirui/judge-companion/backend/internal/handler"
	"github.com/zhouzirui/judge-companion/backend/internal/i18n"
	"github.com/zhouzirui/judge-companion/backend/internal/middleware"
	"github.com/zhouzirui/judge-companion/backend/internal/model/legalcase"
	"github.com/zhouzirui/judge-companion/backend/internal/service/ai"
	"github.com/zhouzirui/judge-companion/backend/internal/service/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/service/ratelimit"
	"github.com/zhouzirui/judge-companion/backend/internal/service/speech"
	"github.com/zhouzirui/judge-companion/backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize logger")
	}
	if dotenvErr != nil {
		log.WithError(dotenvErr).Debug("no .env file loaded, using process environment")
	}

	metrics := middleware.NewMetrics()
	texts := i18n.MustNew()

	chain := ai.NewChain(buildProviders(ctx, cfg.AI, log), cfg.AI.RequestTimeout, metrics, log)
	if chain.Configured() {
		log.WithField("providers", chain.Names()).Info("AI provider chain initialized")
	} else {
		log.Warn("no AI provider credentials configured, chat will answer with the setup message")
	}

	opts := ai.Options{
		Analyzer: analytics.NewService(chain, metrics, log),
		Logger:   log,
	}
	if cfg.Speech.Enabled {
		opts.Speech = speech.NewService(cfg.Speech, metrics, log)
		log.Info("speech synthesis enabled")
	} else {
		log.Info("speech credentials not configured, replies will have no audio")
	}
	aiService := ai.NewService(chain, texts, opts)

	limiter, err := ratelimit.New(ctx, cfg.RateLimit, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize cooldown store")
	}
	if closer, ok := limiter.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var guard *middleware.ThroughputGuard
	if cfg.RateLimit.GlobalEnabled() {
		guard = middleware.NewThroughputGuard(cfg.RateLimit.GlobalRPS, cfg.RateLimit.GlobalBurst, metrics, log)
	}

	router := handler.NewRouter(handler.Deps{
		Cases:           legalcase.NewMemoryStore(legalcase.Seed()),
		Generator:       aiService,
		Limiter:         limiter,
		Texts:           texts,
		Metrics:         metrics,
		Guard:           guard,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ContractAddress: cfg.Site.ContractAddress,
		Cooldown:        cfg.RateLimit.Cooldown,
		Logger:          log,
	})

	if cfg.Metrics.Enabled {
		metricsSrv := middleware.NewMetricsServer(cfg.Metrics.Addr)
		go func() {
			log.WithField("addr", cfg.Metrics.Addr).Info("metrics server listening")
			if err := runServer(ctx, metricsSrv); err != nil {
				log.WithError(err).Error("metrics server error")
			}
		}()
	}

	startServer(ctx, cfg.Server, router, writeTimeout(chain), log)
}

// buildProviders 按 OpenAI → Ark → Gemini 的顺序创建已配置的供应商。
func buildProviders(ctx context.Context, cfg config.AIConfig, log logrus.FieldLogger) []ai.Provider {
	var providers []ai.Provider

	if cfg.OpenAI.Enabled() {
		p, err := ai.NewOpenAIProvider(cfg.OpenAI, cfg.RequestTimeout)
		if err != nil {
			log.WithError(err).Warn("failed to initialize OpenAI provider")
		} else {
			providers = append(providers, p)
		}
	}

	if cfg.Ark.Enabled() {
		p, err := ai.NewArkProvider(ctx, cfg.Ark)
		if err != nil {
			log.WithError(err).Warn("failed to initialize Ark provider, 请检查 Ark 模型相关环境变量")
		} else {
			providers = append(providers, p)
		}
	}

	if cfg.Gemini.Enabled() {
		p, err := ai.NewGeminiProvider(ctx, cfg.Gemini)
		if err != nil {
			log.WithError(err).Warn("failed to initialize Gemini provider")
		} else {
			providers = append(providers, p)
		}
	}

	return providers
}

// writeTimeout 覆盖最坏情况：聊天链全部超时后，分析链再全部超时。
func writeTimeout(chain *ai.Chain) time.Duration {
	calls := len(chain.Names())
	if calls == 0 {
		calls = 1
	}
	return 2*time.Duration(calls)*chain.Timeout() + 15*time.Second
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, write time.Duration, log logrus.FieldLogger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       120 * time.Second,
	}

	log.WithField("addr", serverCfg.Addr).Info("judge companion backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.WithError(err).Fatal("server error")
	}
	log.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
