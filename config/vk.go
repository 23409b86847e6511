package config

import "time"

// VKConfig configures the VK API gateway and the group session used for messaging.
type VKConfig struct {
	GroupID    int64  `json:"groupId" yaml:"groupId" mapstructure:"groupId" validate:"required"`
	GroupToken string `json:"groupToken" yaml:"groupToken" mapstructure:"groupToken" validate:"required"`
	APIVersion string `json:"apiVersion" yaml:"apiVersion" mapstructure:"apiVersion" validate:"required"`
	BaseURL    string `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl" validate:"required"`

	// MinInterval is the fixed spacing between two calls issued through one client (~3 calls/s).
	MinInterval    time.Duration `json:"minInterval" yaml:"minInterval" mapstructure:"minInterval"`
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout" mapstructure:"requestTimeout"`

	// FloodBackoff is the wait before the single retry of a flood-controlled search.
	FloodBackoff time.Duration `json:"floodBackoff" yaml:"floodBackoff" mapstructure:"floodBackoff"`

	// LongPollWait is the server side wait of one long poll request, in seconds.
	LongPollWait int `json:"longPollWait" yaml:"longPollWait" mapstructure:"longPollWait"`

	// ClientCacheSize bounds how many per-token API clients are kept alive.
	ClientCacheSize int           `json:"clientCacheSize" yaml:"clientCacheSize" mapstructure:"clientCacheSize"`
	ClientCacheTTL  time.Duration `json:"clientCacheTTL" yaml:"clientCacheTTL" mapstructure:"clientCacheTTL"`

	Breaker BreakerConfig `json:"breaker" yaml:"breaker" mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker shared by all VK API clients.
type BreakerConfig struct {
	MaxRequests  uint32        `json:"maxRequests" yaml:"maxRequests" mapstructure:"maxRequests"`    // trial requests allowed while half-open
	Interval     time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`             // closed-state counter reset
	Timeout      time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`                // open -> half-open delay
	MinRequests  uint32        `json:"minRequests" yaml:"minRequests" mapstructure:"minRequests"`    // requests before tripping is considered
	FailureRatio float64       `json:"failureRatio" yaml:"failureRatio" mapstructure:"failureRatio"` // trip threshold
}

// DefaultVKConfig returns defaults matching the public VK API limits.
func DefaultVKConfig() VKConfig {
	return VKConfig{
		APIVersion:      "5.131",
		BaseURL:         "https://api.vk.com/method/",
		MinInterval:     340 * time.Millisecond,
		RequestTimeout:  10 * time.Second,
		FloodBackoff:    time.Second,
		LongPollWait:    25,
		ClientCacheSize: 1024,
		ClientCacheTTL:  30 * time.Minute,
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     15 * time.Second,
			Timeout:      45 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.5,
		},
	}
}
