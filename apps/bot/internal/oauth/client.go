// Package oauth implements the VK ID authorization code flow with PKCE.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"vkinder/apps/bot/internal/vkapi"
	"vkinder/config"
	"vkinder/pkg/logger"

	"golang.org/x/oauth2"
)

// ErrExchangeRejected is returned when VK refuses the code. The code is single use: never retry.
var ErrExchangeRejected = errors.New("oauth: code exchange rejected")

// IdentityProvider resolves the owner of a token.
type IdentityProvider interface {
	LookupProfile(ctx context.Context, userID int64) (*vkapi.Profile, error)
}

// IdentityFunc returns the provider bound to token.
type IdentityFunc func(token string) IdentityProvider

// Token is the result of a successful exchange.
type Token struct {
	AccessToken string
	VKUserID    int64
}

// Client builds authorization URLs, exchanges codes and validates tokens.
type Client struct {
	cfg        config.OAuthConfig
	apiVersion string
	oauth      *oauth2.Config
	httpClient *http.Client
	identity   IdentityFunc
}

// NewClient builds a client. identity is used by ValidateToken.
func NewClient(cfg config.OAuthConfig, apiVersion string, httpClient *http.Client, identity IdentityFunc) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.ExchangeTimeout}
	}
	return &Client{
		cfg:        cfg,
		apiVersion: apiVersion,
		httpClient: httpClient,
		identity:   identity,
		oauth: &oauth2.Config{
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// BuildAuthURL returns the authorization URL for state and the verifier to keep for the exchange.
func (c *Client) BuildAuthURL(state string) (string, string, error) {
	verifier, err := GenerateVerifier(c.cfg.VerifierLength)
	if err != nil {
		return "", "", err
	}

	authURL := c.oauth.AuthCodeURL(state,
		// VK expects comma separated scopes
		oauth2.SetAuthURLParam("scope", strings.Join(c.cfg.Scopes, ",")),
		oauth2.SetAuthURLParam("v", c.apiVersion),
		oauth2.SetAuthURLParam("code_challenge", DeriveChallenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	return authURL, verifier, nil
}

// ExchangeCode trades code for an access token. Upstream refusals map to ErrExchangeRejected.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier, state, deviceID string) (*Token, error) {
	if c.cfg.ExchangeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ExchangeTimeout)
		defer cancel()
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth.Exchange(ctx, code,
		oauth2.VerifierOption(verifier),
		oauth2.SetAuthURLParam("device_id", deviceID),
		oauth2.SetAuthURLParam("state", state),
		oauth2.SetAuthURLParam("v", c.apiVersion),
	)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) || !vkapi.IsConnectionError(err) {
			logger.Warn(ctx, "oauth exchange rejected", logger.ErrorField("error", err))
			return nil, fmt.Errorf("%w: %v", ErrExchangeRejected, err)
		}
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}

	return &Token{AccessToken: tok.AccessToken, VKUserID: extraInt64(tok.Extra("user_id"))}, nil
}

// ValidateToken reports whether token still works. Any failure counts as invalid.
func (c *Client) ValidateToken(ctx context.Context, token string) bool {
	if token == "" || c.identity == nil {
		return false
	}
	if c.cfg.ValidateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ValidateTimeout)
		defer cancel()
	}
	if _, err := c.identity(token).LookupProfile(ctx, 0); err != nil {
		logger.Info(ctx, "access token rejected", logger.ErrorField("error", err))
		return false
	}
	return true
}

// extraInt64 reads a numeric token extra that may arrive as a JSON number or string.
func extraInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case string:
		id, _ := strconv.ParseInt(n, 10, 64)
		return id
	default:
		return 0
	}
}
