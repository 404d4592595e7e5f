package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rafabene/onemore-backend/internal/domain/ports"
)

// RequestLogger registra cada requisição no logger estruturado.
// Query strings não são logadas porque podem carregar tokens de sessão.
func RequestLogger(logger ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if principal := GetPrincipal(c); principal != nil {
			args = append(args, "user_id", principal.UserID)
		}

		switch {
		case status >= 500:
			logger.Error("http request", args...)
		case status >= 400:
			logger.Warn("http request", args...)
		default:
			logger.Info("http request", args...)
		}
	}
}
