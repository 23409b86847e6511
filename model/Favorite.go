package model

import "time"

// Favorite is a saved candidate; (UserID, FavoriteUserID) is unique.
type Favorite struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         int64     `gorm:"column:user_id;not null;uniqueIndex:uidx_favorites_pair,priority:1;index:idx_favorites_user"`
	FavoriteUserID int64     `gorm:"column:favorite_user_id;not null;uniqueIndex:uidx_favorites_pair,priority:2"`
	FirstName      string    `gorm:"column:first_name;type:varchar(100)"`
	LastName       string    `gorm:"column:last_name;type:varchar(100)"`
	ProfileURL     string    `gorm:"column:profile_url;type:varchar(255)"`
	AddedAt        time.Time `gorm:"column:added_at;autoCreateTime"`
}

func (Favorite) TableName() string { return "favorites" }
