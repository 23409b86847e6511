package model

import "time"

// User is a VK user who talked to the bot.
// Created on first interaction, never hard-deleted; State is owned by the conversation controller.
type User struct {
	UserID    int64  `gorm:"column:user_id;primaryKey;autoIncrement:false;comment:VK user id"`
	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100)"`
	Age       *int   `gorm:"column:age;comment:nil when the birthdate is hidden or partial"`
	Gender    string `gorm:"column:gender;type:varchar(10);comment:male/female"`
	City      string `gorm:"column:city;type:varchar(100)"`

	// AccessToken is stored sealed when a token secret is configured.
	AccessToken string `gorm:"column:access_token;type:varchar(1024)"`

	State            BotState  `gorm:"column:state;type:varchar(32);not null;comment:conversation state"`
	RegistrationDate time.Time `gorm:"column:registration_date;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// HasToken reports whether the user finished authorization at least once.
func (u *User) HasToken() bool { return u != nil && u.AccessToken != "" }
