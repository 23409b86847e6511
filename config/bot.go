package config

import "time"

// BotConfig configures the conversation controller.
type BotConfig struct {
	// SessionCacheSize bounds the per-user UI cache (current candidate, last favorites list).
	SessionCacheSize int `json:"sessionCacheSize" yaml:"sessionCacheSize" mapstructure:"sessionCacheSize"`
	// SessionTTL evicts UI entries of users that went quiet.
	SessionTTL time.Duration `json:"sessionTTL" yaml:"sessionTTL" mapstructure:"sessionTTL"`

	// NextCandidateBackoff is the wait before retrying a flood-controlled "next candidate".
	NextCandidateBackoff time.Duration `json:"nextCandidateBackoff" yaml:"nextCandidateBackoff" mapstructure:"nextCandidateBackoff"`

	// FavoritesPageSize caps how many favorites are listed (and addressable by number).
	FavoritesPageSize int `json:"favoritesPageSize" yaml:"favoritesPageSize" mapstructure:"favoritesPageSize"`

	// ReconnectDelay is the pause after a failed long poll before polling again.
	ReconnectDelay time.Duration `json:"reconnectDelay" yaml:"reconnectDelay" mapstructure:"reconnectDelay"`

	// SnowflakeNode identifies this process when generating message random ids.
	SnowflakeNode int64 `json:"snowflakeNode" yaml:"snowflakeNode" mapstructure:"snowflakeNode"`
}

// DefaultBotConfig returns production defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		SessionCacheSize:     10000,
		SessionTTL:           24 * time.Hour,
		NextCandidateBackoff: 10 * time.Second,
		FavoritesPageSize:    10,
		ReconnectDelay:       time.Second,
		SnowflakeNode:        1,
	}
}
