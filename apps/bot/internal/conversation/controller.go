// Package conversation turns incoming chat messages into state transitions and replies.
package conversation

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"vkinder/apps/bot/internal/matching"
	"vkinder/apps/bot/internal/oauth"
	"vkinder/apps/bot/internal/repository"
	"vkinder/apps/bot/internal/vkapi"
	"vkinder/config"
	"vkinder/model"
	"vkinder/pkg/logger"
)

// ====== collaborators ======

// Messenger delivers replies.
type Messenger interface {
	SendMessage(ctx context.Context, peerID int64, text string, keyboard *vkapi.Keyboard, attachments []string) error
}

// ProfileSource looks up VK profiles.
type ProfileSource interface {
	LookupProfile(ctx context.Context, userID int64) (*vkapi.Profile, error)
}

// PhotoLiker mirrors photo likes on VK.
type PhotoLiker interface {
	LikePhoto(ctx context.Context, ownerID, photoID int64) error
	UnlikePhoto(ctx context.Context, ownerID, photoID int64) error
}

// UserAPI is what the bot does with a user's own token.
type UserAPI interface {
	ProfileSource
	PhotoLiker
}

// UserAPIFunc returns the API bound to a user token.
type UserAPIFunc func(token string) UserAPI

// Matcher hands out candidates.
type Matcher interface {
	GetNextCandidate(ctx context.Context, ownerID int64) (*matching.Candidate, error)
	InvalidateCache(ctx context.Context, ownerID int64) error
}

// Authorizer runs the OAuth flow started from the chat.
type Authorizer interface {
	Begin(ctx context.Context, ownerID int64) (string, error)
	Complete(ctx context.Context, ownerID int64, redirectURL string) (*oauth.Result, error)
}

// TokenValidator checks a stored token before a search.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) bool
}

// Deps groups the controller's collaborators.
type Deps struct {
	Messenger  Messenger
	Community  ProfileSource // lookups with the community token, used before the user authorized
	UserAPI    UserAPIFunc
	Matcher    Matcher
	Auth       Authorizer
	Validator  TokenValidator
	Users      repository.IUserRepository
	Params     repository.ISearchParamsRepository
	Favorites  repository.IFavoriteRepository
	Blacklist  repository.IBlacklistRepository
	PhotoLikes repository.IPhotoLikeRepository
}

// Controller is the conversation state machine. Messages must be handled one at a time per user.
type Controller struct {
	cfg      config.BotConfig
	deps     Deps
	sessions *SessionStore

	// likeAsync runs the VK side of a like; replaced in tests
	likeAsync func(ctx context.Context, task func(ctx context.Context))
}

// NewController builds a controller.
func NewController(cfg config.BotConfig, deps Deps, sessions *SessionStore) *Controller {
	if sessions == nil {
		sessions = NewSessionStore(cfg.SessionCacheSize, cfg.SessionTTL)
	}
	if cfg.FavoritesPageSize <= 0 {
		cfg.FavoritesPageSize = 10
	}
	return &Controller{
		cfg:       cfg,
		deps:      deps,
		sessions:  sessions,
		likeAsync: runLikeAsync,
	}
}

// Sessions exposes the UI cache.
func (c *Controller) Sessions() *SessionStore { return c.sessions }

// HandleMessage is the single error boundary of a turn: failures and panics are
// logged and answered with an apology. The error is returned so the caller can
// react to connection failures.
func (c *Controller) HandleMessage(ctx context.Context, msg vkapi.Message) (err error) {
	ctx = logger.WithTraceID(ctx, "")
	start := time.Now()
	userID := msg.FromID

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "message handler panic",
				logger.Int64("user_id", userID),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
			c.reply(ctx, userID, textGenericError, nil)
			observeMessage("panic", start)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err = c.dispatch(ctx, userID, strings.TrimSpace(msg.Text)); err != nil {
		logger.Error(ctx, "message handling failed",
			logger.Int64("user_id", userID),
			logger.ErrorField("error", err),
		)
		c.reply(ctx, userID, textGenericError, nil)
		observeMessage("error", start)
		return err
	}
	observeMessage("ok", start)
	return nil
}

// dispatch routes one message: auth commands first, then the unauthorized gate,
// then global commands, then the table of the current state.
func (c *Controller) dispatch(ctx context.Context, userID int64, text string) error {
	lower := strings.ToLower(text)

	// 1. authorization works in any state
	if lower == CommandAuthorize {
		return c.startAuth(ctx, userID)
	}
	if strings.Contains(text, "code=") {
		return c.completeAuth(ctx, userID, text)
	}

	// 2. everything else needs a token
	user, err := c.deps.Users.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasToken() {
		return c.send(ctx, userID, textNeedAuth, nil)
	}

	// 3. global commands
	if _, ok := globalCommands[lower]; ok {
		return c.showMainMenu(ctx, userID)
	}

	logger.Debug(ctx, "handling message",
		logger.Int64("user_id", userID),
		logger.String("state", user.State.String()),
	)

	// 4. current state
	switch user.State {
	case model.StateAwaitingMinAge:
		return c.onMinAgeInput(ctx, user, text)
	case model.StateAwaitingMaxAge:
		return c.onMaxAgeInput(ctx, user, text)
	case model.StateAwaitingCity:
		return c.onCityInput(ctx, user, text)
	case model.StateMainMenu:
		return c.onMainMenu(ctx, user, text)
	case model.StateViewingCandidate:
		return c.onCandidate(ctx, user, text)
	case model.StateFavorites:
		return c.onFavorites(ctx, user, text)
	case model.StateSearchSettings:
		return c.onSettings(ctx, user, text)
	case model.StatePrioritySettings:
		return c.onPriority(ctx, user, text)
	default:
		// no known state, or a turn interrupted in SEARCHING / AUTH_IN_PROGRESS
		return c.showMainMenu(ctx, userID)
	}
}

// ====== helpers ======

// send delivers a reply and returns the delivery error.
func (c *Controller) send(ctx context.Context, userID int64, text string, kb *vkapi.Keyboard, attachments ...string) error {
	if err := c.deps.Messenger.SendMessage(ctx, userID, text, kb, attachments); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// reply is send for paths that cannot do anything about a failed delivery.
func (c *Controller) reply(ctx context.Context, userID int64, text string, kb *vkapi.Keyboard) {
	if err := c.deps.Messenger.SendMessage(ctx, userID, text, kb, nil); err != nil {
		logger.Warn(ctx, "reply not delivered",
			logger.Int64("user_id", userID),
			logger.ErrorField("error", err),
		)
	}
}

// setState persists a transition.
func (c *Controller) setState(ctx context.Context, userID int64, state model.BotState) error {
	if err := c.deps.Users.SaveState(ctx, userID, state); err != nil {
		return err
	}
	transitionsTotal.WithLabelValues(state.String()).Inc()
	logger.Debug(ctx, "state changed",
		logger.Int64("user_id", userID),
		logger.String("state", state.String()),
	)
	return nil
}

func (c *Controller) showMainMenu(ctx context.Context, userID int64) error {
	if err := c.setState(ctx, userID, model.StateMainMenu); err != nil {
		return err
	}
	return c.send(ctx, userID, textMainMenu, mainKeyboard())
}
