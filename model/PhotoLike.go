package model

import "time"

// PhotoLike records that the owner liked one photo of a candidate.
type PhotoLike struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uidx_photo_likes,priority:1"`
	OwnerID   int64     `gorm:"column:owner_id;not null;uniqueIndex:uidx_photo_likes,priority:2;comment:photo owner (candidate)"`
	PhotoID   int64     `gorm:"column:photo_id;not null;uniqueIndex:uidx_photo_likes,priority:3"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PhotoLike) TableName() string { return "photo_likes" }
