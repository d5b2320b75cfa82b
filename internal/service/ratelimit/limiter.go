package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/config"
)

// DefaultCooldown 同一会话两条消息之间的最短间隔
const DefaultCooldown = 5 * time.Second

// Decision 是一次 TryAcquire 的结果。
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RemainingSeconds 返回向上取整的剩余等待秒数。
func (d Decision) RemainingSeconds() int {
	if d.Allowed || d.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// Limiter 按会话键实施冷却窗口。检查与记录必须是一个原子步骤；被拒绝的请求不刷新窗口。
type Limiter interface {
	TryAcquire(ctx context.Context, key string, now time.Time) (Decision, error)
}

// decide 根据上次放行时间计算本次结果，elapsed 恰好等于窗口时放行。
func decide(last, now time.Time, cooldown time.Duration) Decision {
	elapsed := now.Sub(last)
	if elapsed < cooldown {
		return Decision{RetryAfter: cooldown - elapsed}
	}
	return Decision{Allowed: true}
}

// New 按配置创建冷却存储后端
func New(ctx context.Context, cfg config.RateLimitConfig, logger logrus.FieldLogger) (Limiter, error) {
	switch cfg.Store {
	case config.RateLimitStoreRedis:
		return NewRedisLimiter(ctx, cfg.Redis, cfg.Cooldown, logger)
	case config.RateLimitStoreMemory, "":
		return NewMemoryLimiter(cfg.Cooldown), nil
	default:
		return nil, fmt.Errorf("ratelimit: unknown store %q", cfg.Store)
	}
}
