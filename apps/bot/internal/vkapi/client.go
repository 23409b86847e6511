// Package vkapi is the rate limited gateway to the VK API.
package vkapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vkinder/config"
	"vkinder/pkg/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Client calls the VK API with one access token.
// Consecutive calls through one Client are spaced by at least MinInterval; callers wait, never drop.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	token      string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	floodRetry RetryPolicy
}

// NewClient builds a client. breaker may be nil.
func NewClient(token string, cfg config.VKConfig, breaker *gobreaker.CircuitBreaker, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		version:    cfg.APIVersion,
		token:      token,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    breaker,
		floodRetry: RetryPolicy{Attempts: 2, Backoff: cfg.FloodBackoff},
	}
}

// NewBreaker builds the circuit breaker shared by every client.
// API error bodies count as successes: only transport failures trip it.
func NewBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vk-api",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsAPIError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *struct {
		Code    int    `json:"error_code"`
		Message string `json:"error_msg"`
	} `json:"error"`
}

// Call invokes method and decodes the "response" field into out (nil discards it).
func (c *Client) Call(ctx context.Context, method string, params url.Values, out interface{}) error {
	// 1. wait for our slot
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: KindFatal, Method: method, Err: err}
	}

	// 2. execute through the breaker
	start := time.Now()
	raw, err := c.execute(ctx, method, params)
	observe(method, start, err)
	if err != nil {
		logger.Warn(ctx, "vk api call failed",
			logger.String("method", method),
			logger.ErrorField("error", err),
		)
		return err
	}

	// 3. decode
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindFatal, Method: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) execute(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	if c.breaker == nil {
		return c.do(ctx, method, params)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, method, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &Error{Kind: KindFatal, Method: method, Err: fmt.Errorf("circuit breaker [%s]: %w", c.breaker.Name(), err)}
		}
		return nil, err
	}
	return res.(json.RawMessage), nil
}

func (c *Client) do(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("access_token", c.token)
	form.Set("v", c.version)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Kind: KindFatal, Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindFatal, Method: method, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: KindFatal, Method: method, Err: fmt.Errorf("http status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &Error{Kind: KindFatal, Method: method, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if env.Error != nil {
		return nil, &Error{
			Kind:    classify(env.Error.Code),
			Method:  method,
			Code:    env.Error.Code,
			Message: env.Error.Message,
		}
	}
	return env.Response, nil
}
