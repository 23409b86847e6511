package config

import "time"

// OAuthConfig configures the VK ID authorization code flow with PKCE.
type OAuthConfig struct {
	AppID        string   `json:"appId" yaml:"appId" mapstructure:"appId" validate:"required"`
	AppSecret    string   `json:"appSecret" yaml:"appSecret" mapstructure:"appSecret"`
	RedirectURI  string   `json:"redirectUri" yaml:"redirectUri" mapstructure:"redirectUri" validate:"required"`
	AuthorizeURL string   `json:"authorizeUrl" yaml:"authorizeUrl" mapstructure:"authorizeUrl" validate:"required"`
	TokenURL     string   `json:"tokenUrl" yaml:"tokenUrl" mapstructure:"tokenUrl" validate:"required"`
	Scopes       []string `json:"scopes" yaml:"scopes" mapstructure:"scopes"`

	VerifierLength  int           `json:"verifierLength" yaml:"verifierLength" mapstructure:"verifierLength"`
	ChallengeTTL    time.Duration `json:"challengeTTL" yaml:"challengeTTL" mapstructure:"challengeTTL"`
	ExchangeTimeout time.Duration `json:"exchangeTimeout" yaml:"exchangeTimeout" mapstructure:"exchangeTimeout"`
	ValidateTimeout time.Duration `json:"validateTimeout" yaml:"validateTimeout" mapstructure:"validateTimeout"`

	// TokenSecret enables encryption of stored access tokens when set (32 bytes, hex or raw).
	TokenSecret string `json:"tokenSecret" yaml:"tokenSecret" mapstructure:"tokenSecret"`
}

// DefaultOAuthConfig returns VK ID endpoints and the scopes the bot needs.
func DefaultOAuthConfig() OAuthConfig {
	return OAuthConfig{
		AuthorizeURL:    "https://id.vk.com/authorize",
		TokenURL:        "https://id.vk.com/oauth2/auth",
		Scopes:          []string{"friends", "photos", "groups", "wall"},
		VerifierLength:  64,
		ChallengeTTL:    10 * time.Minute,
		ExchangeTimeout: 10 * time.Second,
		ValidateTimeout: 5 * time.Second,
	}
}
