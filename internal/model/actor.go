package model

import "time"

// Actor is an authenticated identity that owns listings.
type Actor struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`

	// Associations
	Listings []Listing `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
}
