package replication

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Replicator manages the per-match presence of one local player: its
// PlayerGameData entry, the disconnect hook that best-effort flips the
// connected flag, and the watch that reports the opponent going away.
type Replicator struct {
	store store.Store
}

func NewReplicator(s store.Store) *Replicator {
	return &Replicator{store: s}
}

// EnterMatch writes the player's initial PlayerGameData and registers the
// disconnect-triggered write. The disconnect write is fire-and-forget and
// never awaited by the initiating client.
func (r *Replicator) EnterMatch(ctx context.Context, sessionID, roomID, playerID, playerName string) error {
	now := time.Now().UnixMilli()
	data := realtime.PlayerGameData{
		PlayerID:    playerID,
		PlayerName:  playerName,
		IsConnected: true,
		LastSeen:    now,
	}
	path := store.PlayerGameDataPath(roomID, playerID)
	if err := r.store.Set(ctx, path, data); err != nil {
		return fmt.Errorf("error entering match %s: %v", roomID, err)
	}

	offline := data
	offline.IsConnected = false
	r.store.OnDisconnect(sessionID, path, offline)

	log.Printf("[REPLICATE] Player %s entered match %s", playerID, roomID)
	return nil
}

// LeaveMatch removes the player's per-match state. Fire-and-forget.
func (r *Replicator) LeaveMatch(ctx context.Context, roomID, playerID string) store.WriteResult {
	return store.Async("leave match "+roomID, func() error {
		return r.store.Remove(ctx, store.PlayerGameDataPath(roomID, playerID))
	})
}

// MatchOverview assembles a point-in-time GameRoom view of the live match:
// every player entry with its latest published position folded in, plus the
// current game status from the shared stats document.
func (r *Replicator) MatchOverview(ctx context.Context, roomID string) (realtime.GameRoom, error) {
	children, err := r.store.Children(ctx, store.GameRoomPath(roomID))
	if err != nil {
		return realtime.GameRoom{}, fmt.Errorf("error listing match state for room %s: %v", roomID, err)
	}

	overview := realtime.GameRoom{
		RoomID:     roomID,
		Players:    make(map[string]realtime.PlayerGameData, len(children)),
		GameStatus: realtime.GameStatusPlaying,
	}
	for id, raw := range children {
		var data realtime.PlayerGameData
		if err := json.Unmarshal(raw, &data); err != nil {
			log.Printf("[REPLICATE-WARN] garbled match entry %s in room %s", id, roomID)
			continue
		}
		var pos realtime.PlayerPositionData
		if found, err := r.store.Get(ctx, store.PlayerPositionPath(roomID, id), &pos); err == nil && found {
			data.Position = pos
		}
		overview.Players[id] = data

		if overview.GameStartTime == 0 || data.LastSeen < overview.GameStartTime {
			overview.GameStartTime = data.LastSeen
		}
		if data.LastSeen > overview.LastUpdateTime {
			overview.LastUpdateTime = data.LastSeen
		}
	}

	var stats realtime.MultiplayerGameStats
	if found, err := r.store.Get(ctx, store.GameStatsPath(roomID), &stats); err == nil && found && stats.GameStatus != "" {
		overview.GameStatus = stats.GameStatus
	}
	return overview, nil
}

// ConnectionWatch observes a peer's PlayerGameData and fires once when the
// connected flag flips to false.
type ConnectionWatch struct {
	sub       store.Subscription
	closeOnce sync.Once
	done      chan struct{}
}

// WatchConnection fires onDisconnected(peerID) the first time the peer's
// entry reports isConnected=false or disappears entirely.
func (r *Replicator) WatchConnection(ctx context.Context, roomID, peerID string, onDisconnected func(playerID string)) (*ConnectionWatch, error) {
	sub, err := r.store.Watch(ctx, store.PlayerGameDataPath(roomID, peerID))
	if err != nil {
		return nil, err
	}
	w := &ConnectionWatch{sub: sub, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		fired := false
		for ev := range sub.Events() {
			disconnected := false
			if ev.Data == nil {
				disconnected = true
			} else {
				var data realtime.PlayerGameData
				if err := json.Unmarshal(ev.Data, &data); err != nil || !data.IsConnected {
					disconnected = true
				}
			}
			if disconnected && !fired {
				fired = true
				log.Printf("[REPLICATE] Peer %s disconnected from match %s", peerID, roomID)
				if onDisconnected != nil {
					onDisconnected(peerID)
				}
			}
		}
	}()
	return w, nil
}

func (w *ConnectionWatch) Close() {
	w.closeOnce.Do(func() {
		w.sub.Close()
		<-w.done
	})
}
