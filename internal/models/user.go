package models

import (
	"time"
)

// User represents a registered account. RefreshToken mirrors the last-issued
// refresh token so a rotated-out or mismatched token can be revoked; at most
// one refresh token is live per user.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Avatar       string    `gorm:"size:500" json:"avatar"`
	Confirmed    bool      `gorm:"default:false" json:"confirmed"`
	RefreshToken *string   `gorm:"size:1000" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
