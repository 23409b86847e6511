package conversation

import (
	"context"
	"fmt"
	"strings"

	"vkinder/model"
	"vkinder/pkg/logger"
)

// onMainMenu handles MAIN_MENU.
func (c *Controller) onMainMenu(ctx context.Context, user *model.User, text string) error {
	switch text {
	case LabelFind:
		return c.startSearch(ctx, user)
	case LabelFavorites:
		return c.showFavorites(ctx, user.UserID)
	case LabelSettings:
		return c.showSettings(ctx, user)
	case LabelBlacklist:
		return c.showBlacklist(ctx, user.UserID)
	case LabelHelp:
		return c.send(ctx, user.UserID, textHelp, mainKeyboard())
	default:
		return c.send(ctx, user.UserID, textUseMenuButtons, nil)
	}
}

func (c *Controller) showBlacklist(ctx context.Context, userID int64) error {
	entries, err := c.deps.Blacklist.ListBlacklist(ctx, userID)
	if err != nil {
		logger.Error(ctx, "blacklist not loaded", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textBlacklistFailed, nil)
	}
	if len(entries) == 0 {
		return c.send(ctx, userID, textBlacklistEmpty, mainKeyboard())
	}

	var sb strings.Builder
	sb.WriteString(textBlacklistHeader)
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. id%d", i+1, e.BlockedUserID)
	}
	return c.send(ctx, userID, sb.String(), mainKeyboard())
}
