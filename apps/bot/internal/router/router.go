package router

import (
	"net/http"

	"vkinder/apps/bot/internal/middleware"
	v1 "vkinder/apps/bot/internal/router/v1"
	"vkinder/config"
	rediskey "vkinder/consts/redisKey"
	"vkinder/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitRouter builds the HTTP surface of the bot: the OAuth redirect, health and metrics.
// limiter may be nil, which disables callback throttling.
func InitRouter(cfg config.ServerConfig, limiter *middleware.RedisRateLimiter, oauthHandler *v1.OAuthHandler) *gin.Engine {
	r := gin.New()

	r.Use(middleware.GinRecovery(true))
	r.Use(util.TraceLogger())
	r.Use(middleware.ClientIPMiddleware())
	r.Use(middleware.GinLogger())
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// covers the code exchange and the token write
	callbackTimeout := cfg.WriteTimeout
	if callbackTimeout <= 0 {
		callbackTimeout = config.DefaultServerConfig().WriteTimeout
	}

	oauthGroup := r.Group("/oauth")
	oauthGroup.Use(middleware.IPRateLimitMiddleware(limiter, rediskey.CallbackIPRateLimitKey))
	oauthGroup.Use(middleware.TimeoutMiddleware(callbackTimeout))
	{
		oauthGroup.GET("/callback", oauthHandler.Callback)
	}

	return r
}

// NewServer wraps the engine in an http.Server configured from cfg.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
