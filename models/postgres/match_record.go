package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'MatchRecord' is the archived row of a finished match: the final
 * gameStats snapshot plus both peer ratings, copied out of the realtime
 * store by the sync manager once the match is over
 */
type MatchRecord struct {
	RoomID          string         `gorm:"primaryKey;size:50;not null"`
	Player1Username string         `gorm:"size:50;not null;index"`
	Player2Username string         `gorm:"size:50;not null;index"`
	WinnerUsername  string         `gorm:"size:50"` // empty on a tie
	Player1Score    float64        `gorm:"not null"`
	Player2Score    float64        `gorm:"not null"`
	GameStats       datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	Ratings         datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	MatchDate       time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
}
