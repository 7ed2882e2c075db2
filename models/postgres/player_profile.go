package postgres

import (
	"gorm.io/datatypes"
)

/*
 * 'PlayerProfile' defines the per-user aggregate profile served read-only
 * to ranking and recommendation. UserStats is the jsonb rollup that the
 * sync manager updates after every archived match. It is referenced in
 * User, MatchRecord and GameInvitation
 */
type PlayerProfile struct {
	Username  string         `gorm:"primaryKey;size:50;not null"`
	UserStats datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	UserIcon  int            `gorm:"default:0"`
	IsInAGame bool           `gorm:"default:false"`

	MatchRecords    []MatchRecord    `gorm:"foreignKey:WinnerUsername"`
	GameInvitations []GameInvitation `gorm:"foreignKey:InvitedUsername"`
}

// AggregateStats is the shape stored inside PlayerProfile.UserStats
type AggregateStats struct {
	MatchesPlayed  int     `json:"matchesPlayed"`
	Wins           int     `json:"wins"`
	Ties           int     `json:"ties"`
	TotalFruit     int     `json:"totalFruit"`
	TotalEnemies   int     `json:"totalEnemies"`
	TotalKnockback int     `json:"totalKnockback"`
	BestScore      float64 `json:"bestScore"`
}
