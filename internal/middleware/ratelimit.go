package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HitCounter 记录某个客户端在时间窗口内的请求数
type HitCounter interface {
	Hit(ctx context.Context, clientKey string, window time.Duration) (int64, error)
}

// RateLimit 返回一个 Gin 中间件，用于基于客户端 IP 地址进行速率限制。
// counter: 计数器实现 (Redis)，必须提供。
// maxRequests: 在指定时间窗口内允许的最大请求数。
// window: 速率限制的时间窗口。
func RateLimit(counter HitCounter, maxRequests int, window time.Duration) gin.HandlerFunc {
	if counter == nil {
		panic("counter cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 {
		panic("maxRequests must be positive for RateLimit middleware")
	}
	if window <= 0 {
		panic("window duration must be positive for RateLimit middleware")
	}

	return func(c *gin.Context) {
		count, err := counter.Hit(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			// Redis 不可用时放行
			logrus.WithError(err).Error("RateLimit: counter failed")
			c.Next()
			return
		}

		if count > int64(maxRequests) {
			logrus.WithField("client_ip", c.ClientIP()).Warn("RateLimit: Too many requests")
			c.String(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.")
			c.Abort()
			return
		}

		c.Next()
	}
}
