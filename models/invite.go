package models

import (
	"time"
)

// Invitation records an invite sent by a room host to an email address.
type Invitation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    string    `gorm:"size:64;index" json:"room_id"`
	SenderID  string    `gorm:"size:255" json:"sender_id"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Status    string    `gorm:"size:20;default:'sent'" json:"status"` // sent, failed
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
