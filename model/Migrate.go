package model

import "gorm.io/gorm"

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&SearchParams{},
		&Favorite{},
		&Blacklist{},
		&CachedMatch{},
		&AuthChallenge{},
		&PhotoLike{},
	}
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
