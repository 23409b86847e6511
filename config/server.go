package config

import "time"

// ServerConfig configures the HTTP server receiving OAuth redirects and serving /metrics.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Mode            string        `json:"mode" yaml:"mode" mapstructure:"mode"` // gin mode: release/debug/test
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout" mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout" mapstructure:"shutdownTimeout"`

	// RateLimit and RateBurst drive the per-IP token bucket on the callback route.
	RateLimit float64 `json:"rateLimit" yaml:"rateLimit" mapstructure:"rateLimit"`
	RateBurst int     `json:"rateBurst" yaml:"rateBurst" mapstructure:"rateBurst"`
}

// DefaultServerConfig returns production defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		Mode:            "release",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		RateLimit:       2,
		RateBurst:       10,
	}
}
