package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"vkinder/consts"
	"vkinder/pkg/logger"
	"vkinder/pkg/result"

	"github.com/gin-gonic/gin"
)

// slowRequest is the latency above which a request is logged at warn.
const slowRequest = 2 * time.Second

// NewContextWithGin returns the request context carrying the trace id set by util.TraceLogger.
func NewContextWithGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if traceId := c.GetString("trace_id"); traceId != "" && logger.TraceID(ctx) == "" {
		ctx = logger.WithTraceID(ctx, traceId)
	}
	return ctx
}

// GinLogger logs the start of every request and, on completion, server errors and slow requests.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		clientIP := ClientIPFromGinContext(c)
		if clientIP == "" {
			clientIP = c.ClientIP()
		}
		ctx := NewContextWithGin(c)

		// query strings carry authorization codes, never log them
		logger.Info(ctx, "request started",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("ip", clientIP),
		)

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()

		// healthy fast requests are not logged twice
		if status >= http.StatusInternalServerError || cost > slowRequest {
			logger.Warn(ctx, "slow request or server error",
				logger.Int("status", status),
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.String("ip", clientIP),
				logger.String("user-agent", c.Request.UserAgent()),
				logger.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
				logger.Duration("cost", cost),
			)
		}
	}
}

// GinRecovery turns a handler panic into a logged error and an internal error reply.
func GinRecovery(stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				fields := []logger.Field{
					logger.Any("panic", r),
					logger.String("path", c.Request.URL.Path),
				}
				if stack {
					fields = append(fields, logger.String("stack", string(debug.Stack())))
				}
				logger.Error(NewContextWithGin(c), "http handler panic", fields...)

				if !c.Writer.Written() {
					result.Fail(c, nil, consts.CodeInternalError)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
