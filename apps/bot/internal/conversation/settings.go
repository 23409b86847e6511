package conversation

import (
	"context"
	"fmt"
	"strconv"

	"vkinder/apps/bot/internal/matching"
	"vkinder/model"
	"vkinder/pkg/logger"
)

// Age bounds accepted for the search range.
const (
	minSearchAge     = 18
	maxSearchAge     = 99
	defaultOwnerAge  = 25
	defaultAgeSpread = 5
)

// ensureParams returns the owner's search parameters, creating defaults derived from the profile when absent.
func (c *Controller) ensureParams(ctx context.Context, user *model.User) (*model.SearchParams, error) {
	params, err := c.deps.Params.GetSearchParams(ctx, user.UserID)
	if err != nil || params != nil {
		return params, err
	}
	return c.deps.Params.CreateSearchParams(ctx, c.defaultParams(ctx, user))
}

// defaultParams centers the age range on the owner, targets the opposite gender in the owner's city
// and copies the owner's interests from VK.
func (c *Controller) defaultParams(ctx context.Context, user *model.User) *model.SearchParams {
	age := defaultOwnerAge
	if user.Age != nil {
		age = *user.Age
	}

	p := model.NewSearchParams(user.UserID)
	p.MinAge = max(minSearchAge, age-defaultAgeSpread)
	p.MaxAge = min(maxSearchAge, max(p.MinAge, age+defaultAgeSpread))
	p.Gender = matching.TargetGender(user.Gender, "")
	p.City = user.City
	p.HasPhoto = true

	if c.deps.UserAPI != nil && user.HasToken() {
		profile, err := c.deps.UserAPI(user.AccessToken).LookupProfile(ctx, 0)
		if err != nil {
			logger.Debug(ctx, "owner interests unavailable",
				logger.Int64("user_id", user.UserID),
				logger.ErrorField("error", err),
			)
		} else {
			p.Interests = model.EncodeInterests(profile.Interests)
		}
	}
	return p
}

// showSettings enters SEARCH_SETTINGS with a summary of the parameters.
func (c *Controller) showSettings(ctx context.Context, user *model.User) error {
	userID := user.UserID
	if err := c.setState(ctx, userID, model.StateSearchSettings); err != nil {
		return err
	}

	p, err := c.ensureParams(ctx, user)
	if err != nil {
		logger.Error(ctx, "settings not loaded", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textSettingsFailed, nil)
	}

	city := p.City
	if city == "" {
		city = "не указан"
	}
	photo := "нет"
	if p.HasPhoto {
		photo = "да"
	}
	gender := genderTitles[matching.TargetGender(user.Gender, p.Gender)]

	return c.send(ctx, userID, fmt.Sprintf(textSettings, p.MinAge, p.MaxAge, gender, city, photo), settingsKeyboard())
}

// onSettings handles SEARCH_SETTINGS, including the gender buttons it offers.
func (c *Controller) onSettings(ctx context.Context, user *model.User, text string) error {
	userID := user.UserID
	switch text {
	case LabelMinAge:
		return c.askInput(ctx, userID, model.StateAwaitingMinAge, textAskMinAge)
	case LabelMaxAge:
		return c.askInput(ctx, userID, model.StateAwaitingMaxAge, textAskMaxAge)
	case LabelCity:
		return c.askInput(ctx, userID, model.StateAwaitingCity, textAskCity)
	case LabelGender:
		return c.send(ctx, userID, textAskGender, genderKeyboard())
	case LabelPriorities:
		if err := c.setState(ctx, userID, model.StatePrioritySettings); err != nil {
			return err
		}
		return c.send(ctx, userID, textAskPriority, priorityKeyboard())
	case LabelDone, LabelBack:
		return c.showMainMenu(ctx, userID)
	}

	if gender, ok := genderChoices[text]; ok {
		if err := c.updateParams(ctx, user, model.SearchParamsUpdate{Gender: &gender}); err != nil {
			return err
		}
		return c.send(ctx, userID, fmt.Sprintf(textGenderSet, text), settingsKeyboard())
	}
	return c.send(ctx, userID, textSettingsHint, nil)
}

// onPriority handles PRIORITY_SETTINGS.
func (c *Controller) onPriority(ctx context.Context, user *model.User, text string) error {
	if text == LabelBack {
		return c.showSettings(ctx, user)
	}
	preset, ok := priorityPresets[text]
	if !ok {
		return c.send(ctx, user.UserID, textPriorityInvalid, nil)
	}
	if err := c.updateParams(ctx, user, preset); err != nil {
		return err
	}
	return c.send(ctx, user.UserID, fmt.Sprintf(textPrioritySet, text), priorityKeyboard())
}

func (c *Controller) askInput(ctx context.Context, userID int64, state model.BotState, prompt string) error {
	if err := c.setState(ctx, userID, state); err != nil {
		return err
	}
	return c.send(ctx, userID, prompt, emptyKeyboard())
}

// ====== awaiting input ======

func (c *Controller) onMinAgeInput(ctx context.Context, user *model.User, text string) error {
	return c.onAgeInput(ctx, user, text, true)
}

func (c *Controller) onMaxAgeInput(ctx context.Context, user *model.User, text string) error {
	return c.onAgeInput(ctx, user, text, false)
}

// onAgeInput accepts an integer in [18, 99] that keeps min <= max; anything else re-prompts in the same state.
func (c *Controller) onAgeInput(ctx context.Context, user *model.User, text string, isMin bool) error {
	userID := user.UserID

	age, err := strconv.Atoi(text)
	if err != nil || age < minSearchAge || age > maxSearchAge {
		return c.send(ctx, userID, textAgeOutOfRange, emptyKeyboard())
	}

	params, err := c.ensureParams(ctx, user)
	if err != nil {
		return err
	}

	var update model.SearchParamsUpdate
	if isMin {
		if age > params.MaxAge {
			return c.send(ctx, userID, fmt.Sprintf(textAgeMinAboveMax, params.MaxAge), emptyKeyboard())
		}
		update.MinAge = &age
	} else {
		if age < params.MinAge {
			return c.send(ctx, userID, fmt.Sprintf(textAgeMaxBelowMin, params.MinAge), emptyKeyboard())
		}
		update.MaxAge = &age
	}

	if err := c.updateParams(ctx, user, update); err != nil {
		logger.Error(ctx, "age not saved", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textSaveFailed, emptyKeyboard())
	}
	return c.showSettings(ctx, user)
}

// onCityInput stores the text as the city; only an empty message is refused.
func (c *Controller) onCityInput(ctx context.Context, user *model.User, text string) error {
	userID := user.UserID
	if text == "" {
		return c.send(ctx, userID, textCityEmpty, emptyKeyboard())
	}
	if err := c.updateParams(ctx, user, model.SearchParamsUpdate{City: &text}); err != nil {
		logger.Error(ctx, "city not saved", logger.Int64("user_id", userID), logger.ErrorField("error", err))
		return c.send(ctx, userID, textSaveFailed, emptyKeyboard())
	}
	return c.showSettings(ctx, user)
}

// updateParams writes a partial update and drops the cached matches ranked under the old parameters.
func (c *Controller) updateParams(ctx context.Context, user *model.User, update model.SearchParamsUpdate) error {
	if _, err := c.ensureParams(ctx, user); err != nil {
		return err
	}
	if _, err := c.deps.Params.UpdateSearchParams(ctx, user.UserID, update); err != nil {
		return err
	}
	if err := c.deps.Matcher.InvalidateCache(ctx, user.UserID); err != nil {
		logger.Warn(ctx, "cached matches not cleared",
			logger.Int64("user_id", user.UserID),
			logger.ErrorField("error", err),
		)
	}
	c.sessions.Get(user.UserID).Candidate = nil
	return nil
}
