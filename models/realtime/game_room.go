package realtime

// PlayerPositionData is the per-tick transform sample a player publishes to
// its own position sub-path. Written only by its owner, read by every peer.
type PlayerPositionData struct {
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	FacingRight    bool    `json:"facingRight"`
	VelocityX      float64 `json:"velocityX"`
	VelocityY      float64 `json:"velocityY"`
	IsGrounded     bool    `json:"isGrounded"`
	IsWallDetected bool    `json:"isWallDetected"`
	Timestamp      int64   `json:"timestamp"`
}

// PlayerMatchStats accumulates a player's in-match counters
type PlayerMatchStats struct {
	Score           float64 `json:"score"`
	FruitsCollected int     `json:"fruitsCollected"`
	EnemiesKilled   int     `json:"enemiesKilled"`
	Deaths          int     `json:"deaths"`
	TimeAlive       float64 `json:"timeAlive"`
}

// PlayerGameData is the live per-player slice of a GameRoom. Each participant
// mutates only its own entry; peers read it through the store.
type PlayerGameData struct {
	PlayerID    string             `json:"playerId"`
	PlayerName  string             `json:"playerName"`
	Position    PlayerPositionData `json:"position"`
	Input       string             `json:"input"`
	Animation   string             `json:"animation"`
	Stats       PlayerMatchStats   `json:"stats"`
	IsConnected bool               `json:"isConnected"`
	LastSeen    int64              `json:"lastSeen"`
}

// GameRoom is the per-match live-state document, distinct from the lobby
// Room. Created when the match scene is entered, torn down when the room
// transitions back to waiting.
type GameRoom struct {
	RoomID         string                    `json:"roomId"`
	Players        map[string]PlayerGameData `json:"players"`
	GameStatus     string                    `json:"gameStatus"`
	GameStartTime  int64                     `json:"gameStartTime"`
	LastUpdateTime int64                     `json:"lastUpdateTime"`
}
