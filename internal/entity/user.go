package entity

import (
	"time"
)

// User is the identity provider's own record (postgres). photo_url here is
// size-capped; oversized avatars go through the Profile override instead.
type User struct {
	ID           string    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex"`
	Email        string    `gorm:"uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	PhotoURL     string    `gorm:"size:512"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

type UserFilter struct {
	Email    *string
	Username *string
}
