package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/judge-companion/backend/internal/config"
)

const keyPrefix = "judge-companion:cooldown:"

// acquireScript 在服务端原子地完成检查与记录。
// KEYS[1] 会话键；ARGV[1] 当前毫秒时间戳；ARGV[2] 窗口毫秒数。返回剩余等待毫秒，0 表示放行。
var acquireScript = redis.NewScript(`
local last = redis.call('GET', KEYS[1])
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
if last then
  local elapsed = now - tonumber(last)
  if elapsed < window then
    return window - elapsed
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', window)
return 0
`)

// RedisLimiter 多实例部署时共享的冷却表
type RedisLimiter struct {
	client   redis.UniversalClient
	cooldown time.Duration
	logger   logrus.FieldLogger
}

// NewRedisLimiter 连接 Redis 并确认可用
func NewRedisLimiter(ctx context.Context, cfg config.RedisConfig, cooldown time.Duration, logger logrus.FieldLogger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisLimiterWithClient(client, cooldown, logger), nil
}

// NewRedisLimiterWithClient 使用已有客户端创建冷却表
func NewRedisLimiterWithClient(client redis.UniversalClient, cooldown time.Duration, logger logrus.FieldLogger) *RedisLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisLimiter{client: client, cooldown: cooldown, logger: logger}
}

// TryAcquire 实现 Limiter。
func (l *RedisLimiter) TryAcquire(ctx context.Context, key string, now time.Time) (Decision, error) {
	remaining, err := acquireScript.Run(ctx, l.client, []string{keyPrefix + key}, now.UnixMilli(), l.cooldown.Milliseconds()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.logger.WithError(err).WithField("key", key).Error("cooldown check failed")
		return Decision{}, fmt.Errorf("ratelimit: redis acquire: %w", err)
	}
	if remaining > 0 {
		return Decision{RetryAfter: time.Duration(remaining) * time.Millisecond}, nil
	}
	return Decision{Allowed: true}, nil
}

// Close 关闭 Redis 连接
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
