package realtime

import "time"

type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusInGame  RoomStatus = "in_game"
)

// RoomPlayer is one entry in a lobby room's player map
type RoomPlayer struct {
	UserName string `json:"userName"`
	IsReady  bool   `json:"isReady"`
}

// Room represents a pre-match lobby. The creator is the host; only the host
// may start the game or delete the room. A room holds 1-2 players and its
// status only ever moves waiting -> in_game (a rematch gets a fresh room).
type Room struct {
	HostID       string                `json:"hostId"`
	Players      map[string]RoomPlayer `json:"players"`
	Status       RoomStatus            `json:"status"`
	CreatedAt    time.Time             `json:"createdAt"`
	LastActivity time.Time             `json:"lastActivity"`
}

// MaxRoomPlayers is fixed: matches are always 1v1
const MaxRoomPlayers = 2

// BothReady reports whether the room is full and every player toggled ready.
// Used to gate the host's start action.
func (r *Room) BothReady() bool {
	if len(r.Players) != MaxRoomPlayers {
		return false
	}
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}
