package middleware

import (
	"context"
	"errors"
	"time"

	"vkinder/consts"
	"vkinder/pkg/logger"
	"vkinder/pkg/result"

	"github.com/gin-gonic/gin"
)

// TimeoutMiddleware bounds the request context. It runs the handler inline and relies on
// downstream calls honoring ctx; a handler that wrote nothing before the deadline gets a timeout reply.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			logger.Warn(NewContextWithGin(c), "request timed out",
				logger.String("path", c.Request.URL.Path),
				logger.Duration("timeout", timeout),
			)
			result.Fail(c, nil, consts.CodeTimeoutError)
		}
	}
}
