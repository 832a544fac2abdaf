package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/types"
)

// LoggingMiddleware logs one line per request, leveled by response status
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		ctx := c.Request.Context()
		statusCode := c.Writer.Status()
		fields := []interface{}{
			"status", statusCode,
			"method", c.Request.Method,
			"path", path,
			"query", raw,
			"latency_ms", time.Since(start).Milliseconds(),
			"tenant_id", types.GetTenantID(ctx),
			"user_id", types.GetUserID(ctx),
		}

		if requestID := types.GetRequestID(ctx); requestID != "" {
			fields = append(fields, "request_id", requestID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case statusCode >= 500:
			log.Errorw("HTTP_REQUEST_ERROR", fields...)
		case statusCode >= 400:
			log.Warnw("HTTP_REQUEST_WARNING", fields...)
		default:
			log.Infow("HTTP_REQUEST_INFO", fields...)
		}
	}
}
