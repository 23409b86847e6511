package config

import "time"

// MatchingConfig configures candidate search and ranking.
type MatchingConfig struct {
	// SearchCount is the raw pool size requested from users.search.
	SearchCount int `json:"searchCount" yaml:"searchCount" mapstructure:"searchCount"`
	// PhotosPerCandidate is how many top photos are attached to a candidate.
	PhotosPerCandidate int `json:"photosPerCandidate" yaml:"photosPerCandidate" mapstructure:"photosPerCandidate"`
	// CacheTTL is how long a cached match stays eligible for "next candidate".
	CacheTTL time.Duration `json:"cacheTTL" yaml:"cacheTTL" mapstructure:"cacheTTL"`
}

// DefaultMatchingConfig returns production defaults.
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		SearchCount:        100,
		PhotosPerCandidate: 3,
		CacheTTL:           24 * time.Hour,
	}
}
