package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"smart-campus/backend/pkg/response"
)

// RateCounter 共享限流计数器（pkg/redis.Client 实现）
type RateCounter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP 限流的中间件
// limit: 窗口内允许的最大请求数，<= 0 时不限流
// window: 滑动窗口时长
// counter 为 nil 或出错时退化为进程内令牌桶，不直接放行
func RateLimit(counter RateCounter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	local := newLocalLimiter(limit, window)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed := false
		if counter != nil {
			key := fmt.Sprintf("%s:%s", c.FullPath(), ip)
			ok, err := counter.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err != nil {
				logger.Warn("Redis 限流失败，使用本地限流", zap.Error(err))
				allowed = local.allow(ip)
			} else {
				allowed = ok
			}
		} else {
			allowed = local.allow(ip)
		}

		if !allowed {
			response.TooManyRequests(c, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ── 进程内令牌桶 ──

// localLimiterMaxKeys 本地限流表容量上限
const localLimiterMaxKeys = 10000

type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	limit    int
	window   time.Duration
	maxKeys  int
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(limit int, window time.Duration) *localLimiter {
	return &localLimiter{
		limiters: make(map[string]*ipLimiter),
		limit:    limit,
		window:   window,
		maxKeys:  localLimiterMaxKeys,
	}
}

func (l *localLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= l.maxKeys {
			l.evict(now)
		}
		entry = &ipLimiter{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

// evict 先清理超过一个窗口未访问的 IP；仍然满员时淘汰最久未访问的一个
func (l *localLimiter) evict(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.window {
			delete(l.limiters, ip)
		}
	}
	if len(l.limiters) < l.maxKeys {
		return
	}

	var oldestIP string
	var oldest time.Time
	for ip, entry := range l.limiters {
		if oldestIP == "" || entry.lastSeen.Before(oldest) {
			oldestIP, oldest = ip, entry.lastSeen
		}
	}
	delete(l.limiters, oldestIP)
}
