package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vkinder/apps/bot/internal/repository"
	"vkinder/model"
	"vkinder/pkg/logger"
)

// showFavorites enters FAVORITES with the numbered list, or returns to the menu when it is empty.
func (c *Controller) showFavorites(ctx context.Context, userID int64) error {
	favs, ok, err := c.loadFavorites(ctx, userID)
	if err != nil || !ok {
		return err
	}

	var sb strings.Builder
	sb.WriteString(textFavoritesHeader)
	for i, f := range favs {
		fmt.Fprintf(&sb, "%d. id%d\n", i+1, f.FavoriteUserID)
	}
	return c.send(ctx, userID, sb.String(), favoritesKeyboard())
}

// viewFavorites lists the same page with names and profile links.
func (c *Controller) viewFavorites(ctx context.Context, userID int64) error {
	favs, ok, err := c.loadFavorites(ctx, userID)
	if err != nil || !ok {
		return err
	}

	var sb strings.Builder
	sb.WriteString(textFavoritesDetails)
	for i, f := range favs {
		name := strings.TrimSpace(f.FirstName + " " + f.LastName)
		if name == "" {
			name = "id" + strconv.FormatInt(f.FavoriteUserID, 10)
		}
		link := f.ProfileURL
		if link == "" {
			link = "vk.com/id" + strconv.FormatInt(f.FavoriteUserID, 10)
		}
		fmt.Fprintf(&sb, "%d. %s\n🔗 %s\n", i+1, name, link)
	}
	return c.send(ctx, userID, sb.String(), favoritesKeyboard())
}

// loadFavorites enters FAVORITES and caches the shown page. ok is false when a reply was already sent.
func (c *Controller) loadFavorites(ctx context.Context, userID int64) ([]*model.Favorite, bool, error) {
	if err := c.setState(ctx, userID, model.StateFavorites); err != nil {
		return nil, false, err
	}

	favs, err := c.deps.Favorites.ListFavorites(ctx, userID)
	if err != nil {
		logger.Error(ctx, "favorites not loaded", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return nil, false, c.send(ctx, userID, textFavoritesFailed, nil)
	}
	if len(favs) == 0 {
		c.sessions.Get(userID).Favorites = nil
		if err := c.setState(ctx, userID, model.StateMainMenu); err != nil {
			return nil, false, err
		}
		return nil, false, c.send(ctx, userID, textFavoritesEmpty, mainKeyboard())
	}

	if len(favs) > c.cfg.FavoritesPageSize {
		favs = favs[:c.cfg.FavoritesPageSize]
	}
	ids := make([]int64, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.FavoriteUserID)
	}
	c.sessions.Get(userID).Favorites = ids
	return favs, true, nil
}

// onFavorites handles FAVORITES; a number removes that entry of the last shown list.
func (c *Controller) onFavorites(ctx context.Context, user *model.User, text string) error {
	userID := user.UserID
	switch text {
	case LabelViewFavorites:
		return c.viewFavorites(ctx, userID)
	case LabelDeleteFavorites:
		return c.send(ctx, userID, textAskFavoriteIndex, nil)
	case LabelBack:
		return c.showMainMenu(ctx, userID)
	}

	if index, ok := parseIndex(text); ok {
		return c.removeFavorite(ctx, userID, index)
	}
	return c.send(ctx, userID, textFavoritesHint, nil)
}

// removeFavorite deletes the index-th (1-based) entry of the cached list and shows the refreshed list.
func (c *Controller) removeFavorite(ctx context.Context, userID int64, index int) error {
	sess, ok := c.sessions.Peek(userID)
	if !ok || sess.Favorites == nil {
		// no list to address: show one first
		return c.showFavorites(ctx, userID)
	}
	if index < 1 || index > len(sess.Favorites) {
		return c.send(ctx, userID, textBadFavoriteIndex, nil)
	}

	candidateID := sess.Favorites[index-1]
	reply := fmt.Sprintf(textFavoriteRemoved, candidateID)
	if err := c.deps.Favorites.RemoveFavorite(ctx, userID, candidateID); err != nil {
		// ErrRecordNotFound means the cached list was stale
		if !errors.Is(err, repository.ErrRecordNotFound) {
			logger.Error(ctx, "favorite not removed",
				logger.Int64("user_id", userID),
				logger.Int64("candidate_id", candidateID),
				logger.ErrorField("error", err),
			)
		}
		reply = fmt.Sprintf(textFavoriteNotGone, candidateID)
	}
	if err := c.send(ctx, userID, reply, nil); err != nil {
		return err
	}
	return c.showFavorites(ctx, userID)
}

// parseIndex accepts plain decimal digits only.
func parseIndex(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}
