package rooms

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/invitations"
	"Pixelhop/services/store"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyInRoom = errors.New("player already in room")
	ErrRoomFull      = errors.New("room is full")
	ErrNotHost       = errors.New("only the host can do that")
	ErrNotReady      = errors.New("both players must be ready")
	ErrNotInRoom     = errors.New("player is not in the room")
)

// Manager owns the lobby room lifecycle: create, join, ready-toggle, leave
// and host-triggered start. It is an explicitly constructed service, wired
// by the session gateway, never a process-wide singleton. There are no
// remote transactions anywhere in here: every precondition is a point read
// immediately before the write, and the race window that leaves open is an
// accepted limitation.
type Manager struct {
	store   store.Store
	invites *invitations.Channel
}

func NewManager(s store.Store, invites *invitations.Channel) *Manager {
	return &Manager{store: s, invites: invites}
}

// CreateRoom allocates a fresh room with the host as sole ready-false
// player and, when an invitee was supplied, asynchronously sends the
// invitation. A new id is allocated on every call; duplicate rooms are a
// known acceptable side effect, not deduplicated. The remote write is
// fire-and-forget: a failure is logged and the caller may simply call
// again.
func (m *Manager) CreateRoom(ctx context.Context, hostID, hostName, invitedID string) string {
	roomID := uuid.NewString()
	log.Printf("[ROOM-CREATE] Host %s creating room %s", hostID, roomID)

	store.Async("create room "+roomID, func() error {
		now := time.Now()
		room := realtime.Room{
			HostID: hostID,
			Players: map[string]realtime.RoomPlayer{
				hostID: {UserName: hostName, IsReady: false},
			},
			Status:       realtime.RoomStatusWaiting,
			CreatedAt:    now,
			LastActivity: now,
		}
		return m.store.Set(ctx, store.RoomPath(roomID), room)
	})

	if invitedID != "" && invitedID != hostID {
		m.invites.Send(ctx, roomID, hostID, invitedID, hostName)
	}
	return roomID
}

// JoinRoom adds the player to the room. The not-already-present and
// not-full preconditions are checked with a point read immediately before
// the write.
func (m *Manager) JoinRoom(ctx context.Context, userID, userName, roomID string) error {
	var room realtime.Room
	found, err := m.store.Get(ctx, store.RoomPath(roomID), &room)
	if err != nil {
		return fmt.Errorf("error reading room %s: %v", roomID, err)
	}
	if !found {
		return ErrRoomNotFound
	}
	if _, ok := room.Players[userID]; ok {
		return ErrAlreadyInRoom
	}
	if len(room.Players) >= realtime.MaxRoomPlayers {
		return ErrRoomFull
	}

	room.Players[userID] = realtime.RoomPlayer{UserName: userName, IsReady: false}
	room.LastActivity = time.Now()
	if err := m.store.Set(ctx, store.RoomPath(roomID), room); err != nil {
		return fmt.Errorf("error joining room %s: %v", roomID, err)
	}
	log.Printf("[ROOM-JOIN] Player %s joined room %s", userID, roomID)
	return nil
}

// ToggleReady flips the caller's own ready flag. Writers other than the
// entry's own id are rejected here, not enforced by the store.
func (m *Manager) ToggleReady(ctx context.Context, userID, roomID string) error {
	var room realtime.Room
	found, err := m.store.Get(ctx, store.RoomPath(roomID), &room)
	if err != nil {
		return fmt.Errorf("error reading room %s: %v", roomID, err)
	}
	if !found {
		return ErrRoomNotFound
	}
	entry, ok := room.Players[userID]
	if !ok {
		return ErrNotInRoom
	}

	entry.IsReady = !entry.IsReady
	room.Players[userID] = entry
	room.LastActivity = time.Now()
	if err := m.store.Set(ctx, store.RoomPath(roomID), room); err != nil {
		return fmt.Errorf("error toggling ready in room %s: %v", roomID, err)
	}
	log.Printf("[ROOM-READY] Player %s in room %s ready=%v", userID, roomID, entry.IsReady)
	return nil
}

// LeaveRoom removes the caller from the room. A leaving host deletes the
// whole room, which every listener observes as "room no longer exists";
// a non-host leave removes only that player's entry.
func (m *Manager) LeaveRoom(ctx context.Context, userID, roomID string) error {
	var room realtime.Room
	found, err := m.store.Get(ctx, store.RoomPath(roomID), &room)
	if err != nil {
		return fmt.Errorf("error reading room %s: %v", roomID, err)
	}
	if !found {
		// Already gone, nothing to leave
		return nil
	}

	if room.HostID == userID {
		log.Printf("[ROOM-LEAVE] Host %s leaving, removing room %s", userID, roomID)
		if err := m.store.Remove(ctx, store.RoomPath(roomID)); err != nil {
			return fmt.Errorf("error removing room %s: %v", roomID, err)
		}
		return nil
	}

	if _, ok := room.Players[userID]; !ok {
		return ErrNotInRoom
	}
	delete(room.Players, userID)
	room.LastActivity = time.Now()
	if err := m.store.Set(ctx, store.RoomPath(roomID), room); err != nil {
		return fmt.Errorf("error leaving room %s: %v", roomID, err)
	}
	log.Printf("[ROOM-LEAVE] Player %s left room %s", userID, roomID)
	return nil
}

// StartGame flips the room status to in_game. Only the host may call it and
// only when both players are ready; both preconditions are enforced
// client-side, before any remote write. The status write is the sole
// trigger listeners use to transition into the match.
func (m *Manager) StartGame(ctx context.Context, hostID, roomID string) error {
	var room realtime.Room
	found, err := m.store.Get(ctx, store.RoomPath(roomID), &room)
	if err != nil {
		return fmt.Errorf("error reading room %s: %v", roomID, err)
	}
	if !found {
		return ErrRoomNotFound
	}
	if room.HostID != hostID {
		return ErrNotHost
	}
	if !room.BothReady() {
		return ErrNotReady
	}

	room.Status = realtime.RoomStatusInGame
	room.LastActivity = time.Now()
	if err := m.store.Set(ctx, store.RoomPath(roomID), room); err != nil {
		return fmt.Errorf("error starting game in room %s: %v", roomID, err)
	}
	log.Printf("[ROOM-START] Host %s started game in room %s", hostID, roomID)
	return nil
}

// GetRoom reads the room once. found=false when it no longer exists.
func (m *Manager) GetRoom(ctx context.Context, roomID string) (realtime.Room, bool, error) {
	var room realtime.Room
	found, err := m.store.Get(ctx, store.RoomPath(roomID), &room)
	return room, found, err
}
