package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// RateLimitStore 分布式限流存储，由 pkg/redis.Client 实现
type RateLimitStore interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ipLimiters 进程内按 IP 的令牌桶，Redis 不可用时使用
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limiters[ip] = limiter
	}
	return limiter
}

// RateLimit 速率限制中间件
// store 非 nil 时使用 Redis 滑动窗口（limit 次 / window）；
// store 为 nil 或出错时降级为进程内令牌桶（速率 limit/window，突发 burst）
func RateLimit(store RateLimitStore, limit int, window time.Duration, burst int) gin.HandlerFunc {
	local := &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(float64(limit) / window.Seconds()),
		b:        burst,
	}

	return func(c *gin.Context) {
		allowed := true
		useLocal := store == nil

		if store != nil {
			key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
			ok, err := store.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err != nil {
				useLocal = true
			} else {
				allowed = ok
			}
		}
		if useLocal {
			allowed = local.get(c.ClientIP()).Allow()
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
