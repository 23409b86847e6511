package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Gender targets accepted in SearchParams.Gender.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderAny    = "any"
)

// Interest categories compared by the matcher.
var InterestCategories = []string{"interests", "music", "books", "movies"}

// SearchParams is one-to-one with User. MinAge <= MaxAge is the caller's job.
// No gorm defaults on purpose: false/0 are legal values and must not be replaced by a column default.
type SearchParams struct {
	ParamID  int64  `gorm:"column:param_id;primaryKey;autoIncrement"`
	UserID   int64  `gorm:"column:user_id;not null;uniqueIndex:uidx_search_params_user"`
	MinAge   int    `gorm:"column:min_age;not null"`
	MaxAge   int    `gorm:"column:max_age;not null"`
	Gender   string `gorm:"column:gender;type:varchar(10);comment:male/female/any"`
	City     string `gorm:"column:city;type:varchar(100)"`
	HasPhoto bool   `gorm:"column:has_photo;not null"`

	// Interests holds {"interests": [...], "music": [...], ...}.
	Interests datatypes.JSON `gorm:"column:interests"`

	AgeWeight       float64 `gorm:"column:age_weight;not null"`
	InterestsWeight float64 `gorm:"column:interests_weight;not null"`
	GroupsWeight    float64 `gorm:"column:groups_weight;not null"`
	FriendsWeight   float64 `gorm:"column:friends_weight;not null"`

	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SearchParams) TableName() string { return "search_params" }

// NewSearchParams returns a row with the storage defaults.
func NewSearchParams(userID int64) *SearchParams {
	return &SearchParams{
		UserID:          userID,
		MinAge:          18,
		MaxAge:          45,
		HasPhoto:        true,
		AgeWeight:       1.0,
		InterestsWeight: 0.7,
		GroupsWeight:    0.5,
		FriendsWeight:   0.8,
	}
}

// InterestMap decodes Interests; malformed or empty JSON yields nil.
func (p *SearchParams) InterestMap() map[string][]string {
	if p == nil || len(p.Interests) == 0 {
		return nil
	}
	var m map[string][]string
	if err := json.Unmarshal(p.Interests, &m); err != nil {
		return nil
	}
	return m
}

// EncodeInterests serializes an interest map for the Interests column.
func EncodeInterests(m map[string][]string) datatypes.JSON {
	if len(m) == 0 {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// SearchParamsUpdate is a partial update: only non-nil fields are written.
type SearchParamsUpdate struct {
	MinAge          *int
	MaxAge          *int
	Gender          *string
	City            *string
	HasPhoto        *bool
	Interests       map[string][]string
	AgeWeight       *float64
	InterestsWeight *float64
	GroupsWeight    *float64
	FriendsWeight   *float64
}

// IsEmpty reports whether the update carries no field.
func (u SearchParamsUpdate) IsEmpty() bool {
	return u.MinAge == nil && u.MaxAge == nil && u.Gender == nil && u.City == nil &&
		u.HasPhoto == nil && u.Interests == nil && u.AgeWeight == nil &&
		u.InterestsWeight == nil && u.GroupsWeight == nil && u.FriendsWeight == nil
}

// Apply copies the present fields onto p.
func (u SearchParamsUpdate) Apply(p *SearchParams) {
	if u.MinAge != nil {
		p.MinAge = *u.MinAge
	}
	if u.MaxAge != nil {
		p.MaxAge = *u.MaxAge
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.City != nil {
		p.City = *u.City
	}
	if u.HasPhoto != nil {
		p.HasPhoto = *u.HasPhoto
	}
	if u.Interests != nil {
		p.Interests = EncodeInterests(u.Interests)
	}
	if u.AgeWeight != nil {
		p.AgeWeight = *u.AgeWeight
	}
	if u.InterestsWeight != nil {
		p.InterestsWeight = *u.InterestsWeight
	}
	if u.GroupsWeight != nil {
		p.GroupsWeight = *u.GroupsWeight
	}
	if u.FriendsWeight != nil {
		p.FriendsWeight = *u.FriendsWeight
	}
}

// Columns returns the column->value map of the present fields, used for UPDATE.
func (u SearchParamsUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.MinAge != nil {
		cols["min_age"] = *u.MinAge
	}
	if u.MaxAge != nil {
		cols["max_age"] = *u.MaxAge
	}
	if u.Gender != nil {
		cols["gender"] = *u.Gender
	}
	if u.City != nil {
		cols["city"] = *u.City
	}
	if u.HasPhoto != nil {
		cols["has_photo"] = *u.HasPhoto
	}
	if u.Interests != nil {
		cols["interests"] = EncodeInterests(u.Interests)
	}
	if u.AgeWeight != nil {
		cols["age_weight"] = *u.AgeWeight
	}
	if u.InterestsWeight != nil {
		cols["interests_weight"] = *u.InterestsWeight
	}
	if u.GroupsWeight != nil {
		cols["groups_weight"] = *u.GroupsWeight
	}
	if u.FriendsWeight != nil {
		cols["friends_weight"] = *u.FriendsWeight
	}
	return cols
}
