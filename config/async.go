package config

import "time"

// AsyncConfig configures the shared goroutine pool.
// Only fire-and-forget side work runs here (cache rebuilds, upstream like mirroring), never a user's turn.
type AsyncConfig struct {
	PoolSize         int           `json:"poolSize" yaml:"poolSize" mapstructure:"poolSize"`                         // pool capacity
	MaxBlockingTasks int           `json:"maxBlockingTasks" yaml:"maxBlockingTasks" mapstructure:"maxBlockingTasks"` // 0 means unlimited
	ExpiryDuration   time.Duration `json:"expiryDuration" yaml:"expiryDuration" mapstructure:"expiryDuration"`       // idle worker expiry
	Nonblocking      bool          `json:"nonblocking" yaml:"nonblocking" mapstructure:"nonblocking"`                // fail instead of blocking on submit
	ReleaseTimeout   time.Duration `json:"releaseTimeout" yaml:"releaseTimeout" mapstructure:"releaseTimeout"`       // graceful release wait
}

// DefaultAsyncConfig returns local development defaults.
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		PoolSize:         64,
		MaxBlockingTasks: 0,
		ExpiryDuration:   10 * time.Second,
		Nonblocking:      false,
		ReleaseTimeout:   5 * time.Second,
	}
}
