package rooms

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
)

// PlayerView is one row of the projected player list
type PlayerView struct {
	PlayerID string `json:"playerId"`
	UserName string `json:"userName"`
	IsReady  bool   `json:"isReady"`
}

// Signals are the callbacks a room listener drives. All of them are invoked
// from the listener's own goroutine; nil callbacks are skipped.
type Signals struct {
	// OnRoomPlayersChanged fires on every projected update of the room
	OnRoomPlayersChanged func(players []PlayerView, hostID string)
	// OnRoomEnded fires once when the room document no longer exists, for
	// both normal host teardown and leave-while-in-room
	OnRoomEnded func()
	// OnGameStarted fires exactly once when the room status flips to
	// in_game, however many times the raw listener reports that status
	OnGameStarted func(roomID string)
}

// Listener subscribes to a room document's change stream and projects each
// raw event into a player-list + status view. It owns its store
// subscription and guarantees teardown through Close on every exit path.
type Listener struct {
	roomID  string
	sub     store.Subscription
	signals Signals

	mu           sync.Mutex
	startedFired bool
	ended        bool
	closeOnce    sync.Once
	done         chan struct{}
}

// Listen starts a projector on the room's change stream. The caller owns
// the returned listener and must Close it when leaving the room.
func (m *Manager) Listen(ctx context.Context, roomID string, signals Signals) (*Listener, error) {
	sub, err := m.store.Watch(ctx, store.RoomPath(roomID))
	if err != nil {
		return nil, err
	}
	l := &Listener{
		roomID:  roomID,
		sub:     sub,
		signals: signals,
		done:    make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *Listener) run() {
	defer close(l.done)
	for ev := range l.sub.Events() {
		l.handle(ev)
	}
}

func (l *Listener) handle(ev store.Event) {
	if ev.Data == nil {
		l.fireEnded()
		return
	}

	var room realtime.Room
	if err := json.Unmarshal(ev.Data, &room); err != nil {
		// A garbled document is projected as "room does not exist"
		log.Printf("[ROOM-LISTEN-WARN] garbled room %s: %v", l.roomID, err)
		l.fireEnded()
		return
	}

	if l.signals.OnRoomPlayersChanged != nil {
		l.signals.OnRoomPlayersChanged(project(room), room.HostID)
	}

	if room.Status == realtime.RoomStatusInGame {
		l.mu.Lock()
		fire := !l.startedFired
		l.startedFired = true
		l.mu.Unlock()
		if fire && l.signals.OnGameStarted != nil {
			log.Printf("[ROOM-LISTEN] Game started in room %s", l.roomID)
			l.signals.OnGameStarted(l.roomID)
		}
	}
}

func (l *Listener) fireEnded() {
	l.mu.Lock()
	fire := !l.ended
	l.ended = true
	l.mu.Unlock()
	if fire && l.signals.OnRoomEnded != nil {
		log.Printf("[ROOM-LISTEN] Room %s ended", l.roomID)
		l.signals.OnRoomEnded()
	}
}

// project orders the player list host first. The store guarantees no join
// order, so the remaining players are sorted by id for a stable rendering.
func project(room realtime.Room) []PlayerView {
	players := make([]PlayerView, 0, len(room.Players))
	for id, p := range room.Players {
		players = append(players, PlayerView{PlayerID: id, UserName: p.UserName, IsReady: p.IsReady})
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].PlayerID == room.HostID {
			return true
		}
		if players[j].PlayerID == room.HostID {
			return false
		}
		return players[i].PlayerID < players[j].PlayerID
	})
	return players
}

// BothReady recomputes the start gate from a projected player list.
func BothReady(players []PlayerView) bool {
	if len(players) != realtime.MaxRoomPlayers {
		return false
	}
	for _, p := range players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// Close tears the subscription down. Safe to call more than once and on
// every exit path, including error paths.
func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		l.sub.Close()
		<-l.done
	})
}
