package repository

import (
	"context"
	"errors"

	"vkinder/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// searchParamsRepositoryImpl search parameter data access
type searchParamsRepositoryImpl struct {
	db *gorm.DB
}

// NewSearchParamsRepository creates the search params repository.
func NewSearchParamsRepository(db *gorm.DB) ISearchParamsRepository {
	return &searchParamsRepositoryImpl{db: db}
}

// GetSearchParams returns the owner's parameters, nil when absent.
func (r *searchParamsRepositoryImpl) GetSearchParams(ctx context.Context, userID int64) (*model.SearchParams, error) {
	var params model.SearchParams
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&params).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &params, nil
}

// CreateSearchParams inserts params; an existing row wins.
func (r *searchParamsRepositoryImpl) CreateSearchParams(ctx context.Context, params *model.SearchParams) (*model.SearchParams, error) {
	row := *params
	row.ParamID = 0
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return r.GetSearchParams(ctx, params.UserID)
}

// UpdateSearchParams applies the present fields of update.
// Missing rows are created from the storage defaults first, inside one transaction.
func (r *searchParamsRepositoryImpl) UpdateSearchParams(ctx context.Context, userID int64, update model.SearchParamsUpdate) (*model.SearchParams, error) {
	var out model.SearchParams

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. make sure the row exists
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
			Create(model.NewSearchParams(userID)).Error; err != nil {
			return err
		}

		// 2. apply the present fields
		if !update.IsEmpty() {
			if err := tx.Model(&model.SearchParams{}).
				Where("user_id = ?", userID).
				Updates(update.Columns()).Error; err != nil {
				return err
			}
		}

		// 3. read back
		return tx.Where("user_id = ?", userID).Take(&out).Error
	})
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &out, nil
}
