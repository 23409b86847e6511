package conversation

import (
	"context"
	"fmt"
	"time"

	"vkinder/apps/bot/internal/matching"
	"vkinder/apps/bot/internal/vkapi"
	"vkinder/model"
	"vkinder/pkg/async"
	"vkinder/pkg/logger"
)

// likedPhotos caps how many photos of a candidate are liked.
const likedPhotos = 3

// likeTimeout bounds the background VK calls of one like/unlike.
const likeTimeout = 30 * time.Second

// startSearch enters SEARCHING and shows the next candidate. On failure the previous state is restored.
func (c *Controller) startSearch(ctx context.Context, user *model.User) error {
	userID := user.UserID
	previous := user.State

	if err := c.setState(ctx, userID, model.StateSearching); err != nil {
		return err
	}

	// 1. a revoked token would fail every call below
	if !c.deps.Validator.ValidateToken(ctx, user.AccessToken) {
		if err := c.setState(ctx, userID, model.StateMainMenu); err != nil {
			return err
		}
		return c.send(ctx, userID, textReauthRequired, nil)
	}

	// 2. parameters are created lazily
	if _, err := c.ensureParams(ctx, user); err != nil {
		return c.searchFailed(ctx, userID, previous, err)
	}

	// 3. flood control gets one more chance after telling the user to wait
	candidate, err := vkapi.Retry(ctx, vkapi.RetryPolicy{
		Attempts: 2,
		Backoff:  c.cfg.NextCandidateBackoff,
		OnRetry: func(ctx context.Context, _ int, _ error) {
			c.reply(ctx, userID, textFloodWait, nil)
		},
	}, func(ctx context.Context) (*matching.Candidate, error) {
		return c.deps.Matcher.GetNextCandidate(ctx, userID)
	})
	if err != nil {
		return c.searchFailed(ctx, userID, previous, err)
	}

	// 4. nobody left
	if candidate == nil {
		if err := c.setState(ctx, userID, model.StateMainMenu); err != nil {
			return err
		}
		return c.send(ctx, userID, textNoCandidates, mainKeyboard())
	}

	c.sessions.Get(userID).Candidate = candidate
	return c.showCandidate(ctx, userID, candidate)
}

func (c *Controller) searchFailed(ctx context.Context, userID int64, previous model.BotState, cause error) error {
	logger.Error(ctx, "search failed",
		logger.Int64("user_id", userID),
		logger.ErrorField("error", cause),
	)
	if !previous.Valid() || previous == model.StateSearching {
		previous = model.StateMainMenu
	}
	if vkapi.HasCode(cause, vkapi.CodeAuthFailed) {
		// the token was revoked while searching
		if err := c.setState(ctx, userID, model.StateMainMenu); err != nil {
			return err
		}
		return c.send(ctx, userID, textReauthRequired, nil)
	}
	if err := c.setState(ctx, userID, previous); err != nil {
		return err
	}
	if vkapi.IsConnectionError(cause) {
		// surfaced so the loop can rebuild its session
		return cause
	}
	return c.send(ctx, userID, textSearchFailed, nil)
}

func (c *Controller) showCandidate(ctx context.Context, userID int64, cand *matching.Candidate) error {
	if err := c.setState(ctx, userID, model.StateViewingCandidate); err != nil {
		return err
	}

	liked, err := c.deps.PhotoLikes.HasLikedAny(ctx, userID, cand.UserID, photoIDs(cand.Photos))
	if err != nil {
		logger.Warn(ctx, "like lookup failed", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		liked = false
	}

	text := fmt.Sprintf(textCandidateCard, cand.FirstName, cand.LastName, cand.ProfileURL(), cand.Percent)
	return c.send(ctx, userID, text, candidateKeyboard(liked), cand.Attachments()...)
}

// onCandidate handles VIEWING_CANDIDATE.
func (c *Controller) onCandidate(ctx context.Context, user *model.User, text string) error {
	userID := user.UserID

	sess, ok := c.sessions.Peek(userID)
	if !ok || sess.Candidate == nil {
		// the card was lost with the cache: show a new one
		return c.startSearch(ctx, user)
	}
	cand := sess.Candidate

	switch text {
	case LabelLike:
		return c.like(ctx, user, cand)
	case LabelUnlike:
		return c.unlike(ctx, user, cand)
	case LabelAddFavorite:
		return c.addFavorite(ctx, userID, cand)
	case LabelAddBlacklist:
		if _, err := c.deps.Blacklist.AddBlacklist(ctx, userID, cand.UserID); err != nil {
			logger.Error(ctx, "blacklist not updated", logger.Int64("user_id", userID), logger.ErrorField("error", err))
			return c.send(ctx, userID, textBlockFailed, nil)
		}
		sess.Candidate = nil
		if err := c.send(ctx, userID, textBlocked, nil); err != nil {
			return err
		}
		return c.startSearch(ctx, user)
	case LabelNextCandidate:
		return c.startSearch(ctx, user)
	case LabelToMenu:
		return c.showMainMenu(ctx, userID)
	default:
		return c.send(ctx, userID, textCandidateHint, nil)
	}
}

// addFavorite saves the shown candidate; a second press only reports it is already saved.
func (c *Controller) addFavorite(ctx context.Context, userID int64, cand *matching.Candidate) error {
	saved, err := c.deps.Favorites.IsFavorite(ctx, userID, cand.UserID)
	if err != nil {
		logger.Error(ctx, "favorite not checked", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textFavoriteFail, nil)
	}
	if saved {
		return c.send(ctx, userID, textFavoriteExists, nil)
	}

	_, err = c.deps.Favorites.AddFavorite(ctx, &model.Favorite{
		UserID:         userID,
		FavoriteUserID: cand.UserID,
		FirstName:      cand.FirstName,
		LastName:       cand.LastName,
		ProfileURL:     cand.ProfileURL(),
	})
	if err != nil {
		logger.Error(ctx, "favorite not added", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textFavoriteFail, nil)
	}
	return c.send(ctx, userID, textFavoriteAdded, nil)
}

// like records likes on the top photos and mirrors the new ones on VK in the background.
func (c *Controller) like(ctx context.Context, user *model.User, cand *matching.Candidate) error {
	userID := user.UserID
	photos := topPhotos(cand.Photos)
	if len(photos) == 0 {
		return c.send(ctx, userID, textNoPhotos, nil)
	}

	var created []model.Photo
	for _, p := range photos {
		ok, err := c.deps.PhotoLikes.LikePhoto(ctx, userID, p.OwnerID, p.ID)
		if err != nil {
			return err
		}
		if ok {
			created = append(created, p)
		}
	}
	if len(created) == 0 {
		return c.send(ctx, userID, textAlreadyLiked, candidateKeyboard(true))
	}

	api := c.deps.UserAPI(user.AccessToken)
	c.likeAsync(ctx, func(ctx context.Context) {
		for _, p := range created {
			if err := api.LikePhoto(ctx, p.OwnerID, p.ID); err != nil {
				logger.Warn(ctx, "vk like failed",
					logger.Int64("owner_id", p.OwnerID),
					logger.Int64("photo_id", p.ID),
					logger.ErrorField("error", err),
				)
			}
		}
	})
	return c.send(ctx, userID, textLiked, candidateKeyboard(true))
}

func (c *Controller) unlike(ctx context.Context, user *model.User, cand *matching.Candidate) error {
	userID := user.UserID
	photos := topPhotos(cand.Photos)

	var removed []model.Photo
	for _, p := range photos {
		ok, err := c.deps.PhotoLikes.UnlikePhoto(ctx, userID, p.OwnerID, p.ID)
		if err != nil {
			return err
		}
		if ok {
			removed = append(removed, p)
		}
	}
	if len(removed) == 0 {
		return c.send(ctx, userID, textNothingLiked, candidateKeyboard(false))
	}

	api := c.deps.UserAPI(user.AccessToken)
	c.likeAsync(ctx, func(ctx context.Context) {
		for _, p := range removed {
			if err := api.UnlikePhoto(ctx, p.OwnerID, p.ID); err != nil {
				logger.Warn(ctx, "vk unlike failed",
					logger.Int64("owner_id", p.OwnerID),
					logger.Int64("photo_id", p.ID),
					logger.ErrorField("error", err),
				)
			}
		}
	})
	return c.send(ctx, userID, textUnliked, candidateKeyboard(false))
}

func runLikeAsync(ctx context.Context, task func(ctx context.Context)) {
	async.RunSafe(ctx, task, likeTimeout)
}

func topPhotos(photos []model.Photo) []model.Photo {
	if len(photos) > likedPhotos {
		return photos[:likedPhotos]
	}
	return photos
}

func photoIDs(photos []model.Photo) []int64 {
	ids := make([]int64, 0, len(photos))
	for _, p := range photos {
		ids = append(ids, p.ID)
	}
	return ids
}
