package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/zhouzirui/judge-companion/backend/pkg/utils"
)

// ThroughputGuard 是进程级的令牌桶，保护上游模型配额不被突发流量耗尽。
type ThroughputGuard struct {
	limiter *rate.Limiter
	metrics *Metrics
	logger  logrus.FieldLogger
}

// NewThroughputGuard creates a guard admitting rps requests per second with the given burst.
func NewThroughputGuard(rps float64, burst int, metrics *Metrics, logger logrus.FieldLogger) *ThroughputGuard {
	if burst < 1 {
		burst = 1
	}
	return &ThroughputGuard{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		metrics: metrics,
		logger:  logger,
	}
}

// Allow reports whether one more request may pass right now.
func (g *ThroughputGuard) Allow() bool {
	return g.limiter.Allow()
}

// Handler 拒绝超出全局速率的请求，返回 503。
func (g *ThroughputGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Allow() {
			if g.metrics != nil {
				g.metrics.RecordThroughputRejected()
			}
			if g.logger != nil {
				g.logger.WithField("path", r.URL.Path).Warn("global throughput limit exceeded")
			}
			w.Header().Set("Retry-After", "1")
			utils.RespondError(w, http.StatusServiceUnavailable, "Server is busy, please try again shortly.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
