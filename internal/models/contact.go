package models

import (
	"time"
)

// Contact is an address-book entry owned by a single user. All queries are
// scoped by UserID.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Surname   string    `gorm:"size:50" json:"surname"`
	Phone     string    `gorm:"size:15" json:"phone"`
	Email     string    `gorm:"size:50" json:"email"`
	Birthday  time.Time `json:"birthday"`
	Extra     string    `gorm:"size:255" json:"extra"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }
