package repository

import (
	"context"
	"errors"
	"time"

	"vkinder/model"

	"gorm.io/gorm"
)

// authRepositoryImpl PKCE challenge data access
type authRepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuthRepository creates the auth repository.
func NewAuthRepository(db *gorm.DB) IAuthRepository {
	return &authRepositoryImpl{db: db, now: time.Now}
}

// SaveAuthChallenge replaces the owner's challenge in one transaction.
func (r *authRepositoryImpl) SaveAuthChallenge(ctx context.Context, userID int64, verifier, state string, ttl time.Duration) error {
	now := r.now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. drop the previous challenge, expired or not
		if err := tx.Where("user_id = ?", userID).Delete(&model.AuthChallenge{}).Error; err != nil {
			return err
		}

		// 2. insert the new one
		return tx.Create(&model.AuthChallenge{
			UserID:       userID,
			CodeVerifier: verifier,
			State:        state,
			CreatedAt:    now,
			ExpiresAt:    now.Add(ttl),
		}).Error
	})
	return WrapDBError(err)
}

// GetAuthChallenge returns the unexpired challenge matching (owner, state).
func (r *authRepositoryImpl) GetAuthChallenge(ctx context.Context, userID int64, state string) (*model.AuthChallenge, error) {
	return r.take(r.db.WithContext(ctx).Where("user_id = ? AND state = ?", userID, state))
}

// GetAuthChallengeByState returns the unexpired challenge with state.
func (r *authRepositoryImpl) GetAuthChallengeByState(ctx context.Context, state string) (*model.AuthChallenge, error) {
	return r.take(r.db.WithContext(ctx).Where("state = ?", state))
}

// DeleteAuthChallenge removes the owner's challenge.
func (r *authRepositoryImpl) DeleteAuthChallenge(ctx context.Context, userID int64) error {
	return WrapDBError(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AuthChallenge{}).Error)
}

// take filters out expired rows; they stay in the table until replaced.
func (r *authRepositoryImpl) take(query *gorm.DB) (*model.AuthChallenge, error) {
	var challenge model.AuthChallenge
	err := query.Where("expires_at > ?", r.now()).Take(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &challenge, nil
}
