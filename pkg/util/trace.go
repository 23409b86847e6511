package util

import (
	"vkinder/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger takes the trace id from X-Request-ID or generates one, and exposes it to
// handlers, to the request context and to the client.
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. a proxy may already have assigned one
		traceId := c.GetHeader(HeaderXRequestID)

		// 2. otherwise generate
		if traceId == "" {
			traceId = uuid.New().String()
		}

		// 3. handlers read it from gin, services from the request context
		c.Set("trace_id", traceId)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceId))

		// 4. echo back so a failed request can be found in the logs
		c.Header(HeaderXRequestID, traceId)

		c.Next()
	}
}
