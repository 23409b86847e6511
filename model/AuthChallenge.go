package model

import "time"

// AuthChallenge holds a pending PKCE verifier; at most one row per user.
type AuthChallenge struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex:uidx_auth_states_user"`
	CodeVerifier string    `gorm:"column:code_verifier;type:varchar(128);not null"`
	State        string    `gorm:"column:state;type:varchar(128);not null;uniqueIndex:uidx_auth_states_state"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"column:expires_at;not null;index:idx_auth_states_expires"`
}

func (AuthChallenge) TableName() string { return "auth_states" }

// Expired reports whether the challenge is no longer usable at now.
func (c *AuthChallenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
