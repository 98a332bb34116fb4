package types

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name              string
	Email             string
	Password          string
	Role              string
	PushSubscriptions []PushSubscription
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         *time.Time `gorm:"autoUpdateTime"`
	DeletedAt         *time.Time
}

func (u User) IsSet() bool {
	return u.Email != ""
}

// Namespace scopes the user's key/value collections, the way a browser
// profile scopes its local storage.
func (u User) Namespace() string {
	return fmt.Sprintf("user:%d", u.ID)
}
