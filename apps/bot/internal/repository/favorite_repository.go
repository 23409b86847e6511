package repository

import (
	"context"

	"vkinder/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// favoriteRepositoryImpl favorites data access
type favoriteRepositoryImpl struct {
	db *gorm.DB
}

// NewFavoriteRepository creates the favorites repository.
func NewFavoriteRepository(db *gorm.DB) IFavoriteRepository {
	return &favoriteRepositoryImpl{db: db}
}

// AddFavorite inserts the pair or returns the existing row.
func (r *favoriteRepositoryImpl) AddFavorite(ctx context.Context, fav *model.Favorite) (*model.Favorite, error) {
	row := *fav
	row.ID = 0
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "favorite_user_id"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	var existing model.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND favorite_user_id = ?", fav.UserID, fav.FavoriteUserID).
		Take(&existing).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &existing, nil
}

// RemoveFavorite deletes the pair.
func (r *favoriteRepositoryImpl) RemoveFavorite(ctx context.Context, userID, candidateID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND favorite_user_id = ?", userID, candidateID).
		Delete(&model.Favorite{})
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListFavorites returns the owner's favorites oldest first.
func (r *favoriteRepositoryImpl) ListFavorites(ctx context.Context, userID int64) ([]*model.Favorite, error) {
	var favorites []*model.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC, id ASC").
		Find(&favorites).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return favorites, nil
}

// IsFavorite checks the pair.
func (r *favoriteRepositoryImpl) IsFavorite(ctx context.Context, userID, candidateID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Where("user_id = ? AND favorite_user_id = ?", userID, candidateID).
		Count(&count).Error; err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}
