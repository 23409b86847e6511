package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vkinder/apps/bot/internal/oauth"
	"vkinder/model"
	"vkinder/pkg/logger"
)

// startAuth creates the profile when needed and replies with a fresh authorization link.
func (c *Controller) startAuth(ctx context.Context, userID int64) error {
	link, err := c.deps.Auth.Begin(ctx, userID)
	if err != nil {
		logger.Error(ctx, "auth link not prepared", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textAuthPrepareFailed, nil)
	}

	if _, err := c.ensureProfile(ctx, userID, model.StateAuthInProgress); err != nil {
		logger.Error(ctx, "profile not created", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textProfileFailed, nil)
	}
	if err := c.setState(ctx, userID, model.StateAuthInProgress); err != nil {
		return err
	}
	return c.send(ctx, userID, fmt.Sprintf(textAuthLink, link), nil)
}

// completeAuth finishes the flow with a redirect URL pasted into the chat.
func (c *Controller) completeAuth(ctx context.Context, userID int64, text string) error {
	res, err := c.deps.Auth.Complete(ctx, userID, redirectFromText(text))
	switch {
	case err == nil:
	case errors.Is(err, oauth.ErrMissingParams):
		return c.send(ctx, userID, textAuthBadParams, nil)
	case errors.Is(err, oauth.ErrChallengeNotFound):
		return c.send(ctx, userID, textAuthExpired, nil)
	default:
		logger.Warn(ctx, "token exchange failed", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textAuthTokenFailed, nil)
	}
	return c.FinishAuthorization(ctx, res)
}

// FinishAuthorization stores the token of a completed flow and greets the user with the main menu.
// It serves both the chat flow and the HTTP redirect endpoint.
func (c *Controller) FinishAuthorization(ctx context.Context, res *oauth.Result) error {
	userID := res.OwnerID

	user, err := c.ensureProfile(ctx, userID, model.StateMainMenu)
	if err != nil {
		logger.Error(ctx, "profile not created", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textProfileFailed, nil)
	}
	if err := c.deps.Users.UpdateToken(ctx, userID, res.AccessToken); err != nil {
		return err
	}
	c.refreshProfile(ctx, user, res.AccessToken)
	if err := c.setState(ctx, userID, model.StateMainMenu); err != nil {
		return err
	}
	c.sessions.Drop(userID)

	logger.Info(ctx, "user authorized", logger.Int64("user_id", userID))
	return c.send(ctx, userID, textAuthSuccess, mainKeyboard())
}

// refreshProfile overwrites the identity stored at creation with what the user's own token can see.
// Fields VK leaves empty keep their stored value. Failures only cost freshness.
func (c *Controller) refreshProfile(ctx context.Context, user *model.User, token string) {
	profile, err := c.deps.UserAPI(token).LookupProfile(ctx, 0)
	if err != nil {
		logger.Warn(ctx, "profile not refreshed", logger.Int64("user_id", user.UserID), logger.ErrorField("error", err))
		return
	}

	updated := *user
	if profile.FirstName != "" {
		updated.FirstName = profile.FirstName
	}
	if profile.LastName != "" {
		updated.LastName = profile.LastName
	}
	if profile.Age != nil {
		updated.Age = profile.Age
	}
	if profile.Gender != "" {
		updated.Gender = profile.Gender
	}
	if profile.City != "" {
		updated.City = profile.City
	}

	if err := c.deps.Users.UpdateProfile(ctx, &updated); err != nil {
		logger.Warn(ctx, "profile not refreshed", logger.Int64("user_id", user.UserID), logger.ErrorField("error", err))
	}
}

// ensureProfile returns the stored profile, creating it from the community view of the user when absent.
func (c *Controller) ensureProfile(ctx context.Context, userID int64, initial model.BotState) (*model.User, error) {
	user, err := c.deps.Users.GetProfile(ctx, userID)
	if err != nil || user != nil {
		return user, err
	}

	profile, err := c.deps.Community.LookupProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.deps.Users.CreateProfile(ctx, &model.User{
		UserID:    userID,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Age:       profile.Age,
		Gender:    profile.Gender,
		City:      profile.City,
		State:     initial,
	})
}

// redirectFromText picks the word carrying the redirect out of a chat message.
func redirectFromText(text string) string {
	for _, field := range strings.Fields(text) {
		if strings.Contains(field, "code=") {
			return field
		}
	}
	return text
}
