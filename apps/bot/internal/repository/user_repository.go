package repository

import (
	"context"
	"errors"

	"vkinder/model"
	"vkinder/pkg/logger"
	"vkinder/pkg/tokenbox"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepositoryImpl user profile data access
type userRepositoryImpl struct {
	db  *gorm.DB
	box *tokenbox.Box
}

// NewUserRepository creates the user repository. A nil box stores tokens in clear.
func NewUserRepository(db *gorm.DB, box *tokenbox.Box) IUserRepository {
	return &userRepositoryImpl{db: db, box: box}
}

// GetProfile returns the user, nil when absent.
func (r *userRepositoryImpl) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}

	user.State = r.knownState(ctx, userID, user.State)

	token, err := r.box.Open(user.AccessToken)
	if err != nil {
		// an unreadable token is as good as none: the user authorizes again
		logger.Warn(ctx, "stored access token cannot be opened",
			logger.Int64("user_id", userID),
			logger.ErrorField("error", err),
		)
		token = ""
	}
	user.AccessToken = token

	return &user, nil
}

// CreateProfile inserts user; an existing row wins.
func (r *userRepositoryImpl) CreateProfile(ctx context.Context, user *model.User) (*model.User, error) {
	if user.State != model.StateNone && !user.State.Valid() {
		return nil, ErrInvalidState
	}

	row := *user
	sealed, err := r.box.Seal(row.AccessToken)
	if err != nil {
		return nil, err
	}
	row.AccessToken = sealed

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, WrapDBError(err)
	}

	return r.GetProfile(ctx, user.UserID)
}

// UpdateProfile overwrites the identity fields.
func (r *userRepositoryImpl) UpdateProfile(ctx context.Context, user *model.User) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]interface{}{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"age":        user.Age,
			"gender":     user.Gender,
			"city":       user.City,
		})
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SaveState persists state.
func (r *userRepositoryImpl) SaveState(ctx context.Context, userID int64, state model.BotState) error {
	if !state.Valid() {
		return ErrInvalidState
	}

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("state", state)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetState returns the persisted state.
func (r *userRepositoryImpl) GetState(ctx context.Context, userID int64) (model.BotState, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Select("user_id", "state").
		Where("user_id = ?", userID).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.StateNone, nil
		}
		return model.StateNone, WrapDBError(err)
	}
	return r.knownState(ctx, userID, user.State), nil
}

// UpdateToken stores the access token.
func (r *userRepositoryImpl) UpdateToken(ctx context.Context, userID int64, token string) error {
	sealed, err := r.box.Seal(token)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("access_token", sealed)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// knownState maps values outside the closed set to StateNone and logs them.
func (r *userRepositoryImpl) knownState(ctx context.Context, userID int64, raw model.BotState) model.BotState {
	if raw == model.StateNone {
		return model.StateNone
	}
	state, err := model.ParseBotState(string(raw))
	if err != nil {
		logger.Warn(ctx, "unknown persisted bot state",
			logger.Int64("user_id", userID),
			logger.String("state", string(raw)),
		)
		return model.StateNone
	}
	return state
}
