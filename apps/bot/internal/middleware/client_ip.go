package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	headerXRealIP       = "X-Real-IP"
	headerXForwardedFor = "X-Forwarded-For"
)

// GetClientIP returns the caller IP.
// Priority: X-Real-IP > X-Forwarded-For (first hop) > RemoteAddr.
func GetClientIP(c *gin.Context) string {
	// 1. set by the reverse proxy in front of the bot
	if ip := c.GetHeader(headerXRealIP); ip != "" {
		return strings.TrimSpace(ip)
	}

	// 2. proxy chain, the first entry is the original client
	if xff := c.GetHeader(headerXForwardedFor); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// 3. gin's own resolution of RemoteAddr
	return c.ClientIP()
}

// GetClientIPSafe is GetClientIP that also rejects values that are not IPs.
func GetClientIPSafe(c *gin.Context) (string, bool) {
	ip := GetClientIP(c)
	if ip == "" || net.ParseIP(ip) == nil {
		return "", false
	}
	return ip, true
}

// ClientIPMiddleware stores the caller IP under "client_ip".
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("client_ip", GetClientIP(c))
		c.Next()
	}
}

// ClientIPFromGinContext reads what ClientIPMiddleware stored.
func ClientIPFromGinContext(c *gin.Context) string {
	if ip, exists := c.Get("client_ip"); exists {
		if ipStr, ok := ip.(string); ok {
			return ipStr
		}
	}
	return ""
}
