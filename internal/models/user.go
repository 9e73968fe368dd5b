package models

import "time"

// User is created on first sign-in from the verified token subject and is
// immutable afterwards except for profile fields.
type User struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Subject     string    `gorm:"uniqueIndex;not null" json:"-"`
	Email       string    `gorm:"index" json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
