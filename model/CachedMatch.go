package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// CachedMatch memoizes a scored candidate; (UserID, MatchedUserID) is unique.
// LastShown stays nil until the candidate is handed out by the next-candidate flow.
type CachedMatch struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        int64          `gorm:"column:user_id;not null;uniqueIndex:uidx_cached_matches_pair,priority:1;index:idx_cached_matches_user_score,priority:1"`
	MatchedUserID int64          `gorm:"column:matched_user_id;not null;uniqueIndex:uidx_cached_matches_pair,priority:2"`
	MatchScore    float64        `gorm:"column:match_score;not null;index:idx_cached_matches_user_score,priority:2"`
	FirstName     string         `gorm:"column:first_name;type:varchar(100)"`
	LastName      string         `gorm:"column:last_name;type:varchar(100)"`
	Domain        string         `gorm:"column:domain;type:varchar(100)"`
	Photos        datatypes.JSON `gorm:"column:photos"`
	LastShown     *time.Time     `gorm:"column:last_shown"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (CachedMatch) TableName() string { return "cached_matches" }

// PhotoList decodes Photos; malformed JSON yields nil.
func (m *CachedMatch) PhotoList() []Photo {
	if m == nil || len(m.Photos) == 0 {
		return nil
	}
	var photos []Photo
	if err := json.Unmarshal(m.Photos, &photos); err != nil {
		return nil
	}
	return photos
}

// EncodePhotos serializes photos for the Photos column.
func EncodePhotos(photos []Photo) datatypes.JSON {
	if len(photos) == 0 {
		return datatypes.JSON("[]")
	}
	raw, err := json.Marshal(photos)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
