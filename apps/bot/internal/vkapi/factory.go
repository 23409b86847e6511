package vkapi

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"vkinder/config"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sony/gobreaker"
)

// Factory hands out one Client per user token so each user keeps its own rate limit slot.
// Clients idle longer than ClientCacheTTL are dropped.
type Factory struct {
	cfg        config.VKConfig
	breaker    *gobreaker.CircuitBreaker
	httpClient *http.Client
	clients    *expirable.LRU[string, *Client]
}

// NewFactory builds a factory; all clients share breaker and httpClient.
func NewFactory(cfg config.VKConfig, breaker *gobreaker.CircuitBreaker, httpClient *http.Client) *Factory {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	size := cfg.ClientCacheSize
	if size <= 0 {
		size = 1024
	}
	return &Factory{
		cfg:        cfg,
		breaker:    breaker,
		httpClient: httpClient,
		clients:    expirable.NewLRU[string, *Client](size, nil, cfg.ClientCacheTTL),
	}
}

// ForToken returns the client bound to token.
func (f *Factory) ForToken(token string) *Client {
	sum := sha256.Sum256([]byte(token))
	key := hex.EncodeToString(sum[:])

	if c, ok := f.clients.Get(key); ok {
		return c
	}
	c := NewClient(token, f.cfg, f.breaker, f.httpClient)
	f.clients.Add(key, c)
	return c
}

// Len reports how many clients are cached.
func (f *Factory) Len() int {
	return f.clients.Len()
}
