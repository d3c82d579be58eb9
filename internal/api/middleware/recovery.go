package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/pkg/logger"
	"github.com/d60-Lab/socialnet/pkg/response"
)

const sentryFlushTimeout = 2 * time.Second

// Recovery converts panics into 500 responses and reports them to Sentry.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error("panic recovered",
				zap.Any("error", rec),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
			if hub := sentry.CurrentHub(); hub.Client() != nil {
				hub := hub.Clone()
				hub.Scope().SetRequest(c.Request)
				hub.RecoverWithContext(c.Request.Context(), rec)
				hub.Flush(sentryFlushTimeout)
			}
			if !c.Writer.Written() {
				response.Fail(c, http.StatusInternalServerError, "Internal server error")
				return
			}
			c.Abort()
			_ = c.Error(fmt.Errorf("panic after response written: %v", rec))
		}()
		c.Next()
	}
}
