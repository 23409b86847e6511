package repository

import (
	"context"
	"errors"
	"time"

	"vkinder/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// matchRepositoryImpl cached match data access
type matchRepositoryImpl struct {
	db       *gorm.DB
	cacheTTL time.Duration
	now      func() time.Time
}

// NewMatchRepository creates the match repository. Rows older than cacheTTL are ignored; 0 keeps them forever.
func NewMatchRepository(db *gorm.DB, cacheTTL time.Duration) IMatchRepository {
	return &matchRepositoryImpl{db: db, cacheTTL: cacheTTL, now: time.Now}
}

// UpsertCachedMatch inserts or re-scores the row. Re-scoring clears LastShown.
func (r *matchRepositoryImpl) UpsertCachedMatch(ctx context.Context, match *model.CachedMatch) error {
	row := *match
	row.ID = 0
	row.LastShown = nil
	row.UpdatedAt = r.now()
	if row.Photos == nil {
		row.Photos = model.EncodePhotos(nil)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "matched_user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"match_score": row.MatchScore,
			"first_name":  row.FirstName,
			"last_name":   row.LastName,
			"domain":      row.Domain,
			"photos":      row.Photos,
			"last_shown":  nil,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// GetBestCachedMatch returns the best eligible row, nil when none.
func (r *matchRepositoryImpl) GetBestCachedMatch(ctx context.Context, userID int64) (*model.CachedMatch, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND last_shown IS NULL", userID).
		Where("matched_user_id NOT IN (?)",
			r.db.Model(&model.Blacklist{}).Select("blocked_user_id").Where("user_id = ?", userID)).
		Where("matched_user_id NOT IN (?)",
			r.db.Model(&model.Favorite{}).Select("favorite_user_id").Where("user_id = ?", userID))
	if r.cacheTTL > 0 {
		query = query.Where("updated_at > ?", r.now().Add(-r.cacheTTL))
	}

	var match model.CachedMatch
	err := query.Order("match_score DESC, id ASC").Take(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &match, nil
}

// MarkMatchShown stamps LastShown.
func (r *matchRepositoryImpl) MarkMatchShown(ctx context.Context, userID, candidateID int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.CachedMatch{}).
		Where("user_id = ? AND matched_user_id = ?", userID, candidateID).
		UpdateColumn("last_shown", r.now())
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ClearCachedMatches drops every cached row of the owner.
func (r *matchRepositoryImpl) ClearCachedMatches(ctx context.Context, userID int64) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CachedMatch{}).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}
