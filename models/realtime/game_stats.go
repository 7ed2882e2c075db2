package realtime

// Game status values for MultiplayerGameStats.GameStatus
const (
	GameStatusPlaying  = "playing"
	GameStatusFinished = "finished"
)

// WinnerNameTie marks an exact score tie. No random tiebreak is applied.
const WinnerNameTie = "Tie"

// MultiplayerPlayerStats is one of the two fixed finish slots of a match.
// Slot assignment is first-come: whichever slot has an empty PlayerID is
// claimed first. Once HasFinished is true the slot is never reset except by
// an explicit restart, which reinitializes that slot only.
type MultiplayerPlayerStats struct {
	PlayerID       string  `json:"playerId"`
	PlayerName     string  `json:"playerName"`
	FruitCollected int     `json:"fruitCollected"`
	CompletionTime float64 `json:"completionTime"`
	EnemiesKilled  int     `json:"enemiesKilled"`
	KnockBacks     int     `json:"knockBacks"`
	TotalScore     float64 `json:"totalScore"`
	HasFinished    bool    `json:"hasFinished"`
}

// MultiplayerGameStats is the shared finish document at
// Rooms/{roomId}/gameStats. Both clients run the same read-modify-write
// sequence against it; the last writer's winner comparison is authoritative.
type MultiplayerGameStats struct {
	Player1    MultiplayerPlayerStats `json:"player1"`
	Player2    MultiplayerPlayerStats `json:"player2"`
	GameStatus string                 `json:"gameStatus"`
	WinnerID   string                 `json:"winnerId"`
	WinnerName string                 `json:"winnerName"`
}

// SlotFor returns a pointer to the slot already claimed by playerId, or to
// the first unclaimed slot. Returns nil when both slots belong to others.
func (gs *MultiplayerGameStats) SlotFor(playerID string) *MultiplayerPlayerStats {
	if gs.Player1.PlayerID == playerID {
		return &gs.Player1
	}
	if gs.Player2.PlayerID == playerID {
		return &gs.Player2
	}
	if gs.Player1.PlayerID == "" {
		return &gs.Player1
	}
	if gs.Player2.PlayerID == "" {
		return &gs.Player2
	}
	return nil
}
