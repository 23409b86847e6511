package repository

import (
	"context"

	"vkinder/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// photoLikeRepositoryImpl photo like data access
type photoLikeRepositoryImpl struct {
	db *gorm.DB
}

// NewPhotoLikeRepository creates the photo like repository.
func NewPhotoLikeRepository(db *gorm.DB) IPhotoLikeRepository {
	return &photoLikeRepositoryImpl{db: db}
}

// LikePhoto records a like.
func (r *photoLikeRepositoryImpl) LikePhoto(ctx context.Context, userID, ownerID, photoID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "owner_id"}, {Name: "photo_id"}},
			DoNothing: true,
		}).
		Create(&model.PhotoLike{UserID: userID, OwnerID: ownerID, PhotoID: photoID})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UnlikePhoto removes a like.
func (r *photoLikeRepositoryImpl) UnlikePhoto(ctx context.Context, userID, ownerID, photoID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND owner_id = ? AND photo_id = ?", userID, ownerID, photoID).
		Delete(&model.PhotoLike{})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// HasLikedAny reports whether at least one of photoIDs is liked.
func (r *photoLikeRepositoryImpl) HasLikedAny(ctx context.Context, userID, ownerID int64, photoIDs []int64) (bool, error) {
	if len(photoIDs) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.PhotoLike{}).
		Where("user_id = ? AND owner_id = ? AND photo_id IN ?", userID, ownerID, photoIDs).
		Count(&count).Error; err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}
