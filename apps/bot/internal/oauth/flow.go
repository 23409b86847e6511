package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vkinder/apps/bot/internal/repository"
	"vkinder/pkg/logger"
)

// ErrChallengeNotFound is returned when no live challenge matches the redirect state.
var ErrChallengeNotFound = errors.New("oauth: authorization state unknown or expired")

// Result is a completed authorization.
type Result struct {
	OwnerID     int64 // bot user who requested the link
	VKUserID    int64 // account that granted the token, 0 when VK did not say
	AccessToken string
}

// Flow drives one authorization over the challenge store.
type Flow struct {
	client *Client
	repo   repository.IAuthRepository
	ttl    time.Duration
}

// NewFlow builds a flow; challenges live for ttl.
func NewFlow(client *Client, repo repository.IAuthRepository, ttl time.Duration) *Flow {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Flow{client: client, repo: repo, ttl: ttl}
}

// Client returns the underlying protocol client.
func (f *Flow) Client() *Client { return f.client }

// Begin stores a fresh challenge for ownerID, replacing any previous one, and returns the link.
func (f *Flow) Begin(ctx context.Context, ownerID int64) (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", err
	}
	authURL, verifier, err := f.client.BuildAuthURL(state)
	if err != nil {
		return "", err
	}
	if err := f.repo.SaveAuthChallenge(ctx, ownerID, verifier, state, f.ttl); err != nil {
		return "", err
	}
	return authURL, nil
}

// Complete finishes the flow for a redirect URL pasted into the chat by ownerID.
func (f *Flow) Complete(ctx context.Context, ownerID int64, redirectURL string) (*Result, error) {
	params, err := ExtractParams(redirectURL)
	if err != nil {
		return nil, err
	}
	challenge, err := f.repo.GetAuthChallenge(ctx, ownerID, params.State)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, ErrChallengeNotFound
	}
	return f.exchange(ctx, challenge.UserID, challenge.CodeVerifier, params)
}

// CompleteByState finishes the flow for a redirect that landed on the HTTP callback.
func (f *Flow) CompleteByState(ctx context.Context, params Params) (*Result, error) {
	if params.Code == "" || params.State == "" {
		return nil, ErrMissingParams
	}
	challenge, err := f.repo.GetAuthChallengeByState(ctx, params.State)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, ErrChallengeNotFound
	}
	return f.exchange(ctx, challenge.UserID, challenge.CodeVerifier, params)
}

func (f *Flow) exchange(ctx context.Context, ownerID int64, verifier string, params Params) (*Result, error) {
	tok, err := f.client.ExchangeCode(ctx, params.Code, verifier, params.State, params.DeviceID)
	if err != nil {
		return nil, err
	}

	// the code is spent: the challenge cannot be used again
	if err := f.repo.DeleteAuthChallenge(ctx, ownerID); err != nil {
		logger.Warn(ctx, "auth challenge not deleted",
			logger.Int64("user_id", ownerID),
			logger.ErrorField("error", err),
		)
	}

	// a link forwarded to someone else must not bind their account to this chat
	if tok.VKUserID != 0 && tok.VKUserID != ownerID {
		logger.Warn(ctx, "token granted by another account",
			logger.Int64("user_id", ownerID),
			logger.Int64("vk_user_id", tok.VKUserID),
		)
		return nil, fmt.Errorf("%w: token granted to another account", ErrExchangeRejected)
	}

	return &Result{OwnerID: ownerID, VKUserID: tok.VKUserID, AccessToken: tok.AccessToken}, nil
}
