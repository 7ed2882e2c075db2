package postgres

import (
	"time"
)

/*
 * 'GameInvitation' is the durable log row of a sent invitation, serving
 * the REST inbox. The realtime inbox entry is the consumable copy; this
 * row records that the invitation happened
 */
type GameInvitation struct {
	RoomID          string    `gorm:"primaryKey;size:50;not null"`
	SenderUsername  string    `gorm:"primaryKey;size:50;not null"`
	InvitedUsername string    `gorm:"primaryKey;size:50;not null"`
	Status          string    `gorm:"size:20;default:'pending'"` // pending | accepted | declined
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	SenderProfile  PlayerProfile `gorm:"foreignKey:SenderUsername;constraint:OnDelete:CASCADE"`
	InvitedProfile PlayerProfile `gorm:"foreignKey:InvitedUsername;constraint:OnDelete:CASCADE"`
}
