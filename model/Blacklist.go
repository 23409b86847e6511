package model

import "time"

// Blacklist excludes a candidate from the owner's results; (UserID, BlockedUserID) is unique.
type Blacklist struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        int64     `gorm:"column:user_id;not null;uniqueIndex:uidx_blacklist_pair,priority:1;index:idx_blacklist_user"`
	BlockedUserID int64     `gorm:"column:blocked_user_id;not null;uniqueIndex:uidx_blacklist_pair,priority:2"`
	AddedAt       time.Time `gorm:"column:added_at;autoCreateTime"`
}

func (Blacklist) TableName() string { return "blacklist" }
