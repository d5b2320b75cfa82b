package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryLimiter 进程内冷却表，条目在窗口过去后由 go-cache 清理。
type MemoryLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	entries  *cache.Cache
}

// NewMemoryLimiter 创建内存冷却表，cooldown<=0 时使用 DefaultCooldown。
func NewMemoryLimiter(cooldown time.Duration) *MemoryLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	// 条目过期时间等于窗口，过期的条目恰好是窗口外的条目
	return &MemoryLimiter{
		cooldown: cooldown,
		entries:  cache.New(cooldown, 2*cooldown),
	}
}

// Cooldown 返回冷却窗口。
func (l *MemoryLimiter) Cooldown() time.Duration {
	return l.cooldown
}

// TryAcquire 实现 Limiter。
func (l *MemoryLimiter) TryAcquire(_ context.Context, key string, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.entries.Get(key); ok {
		if decision := decide(v.(time.Time), now, l.cooldown); !decision.Allowed {
			return decision, nil
		}
	}
	l.entries.SetDefault(key, now)
	return Decision{Allowed: true}, nil
}
