package handlers

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/replication"
	"Pixelhop/services/scoring"
	socketio_types "Pixelhop/services/socket_io/types"
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// feedInterval paces the smoothed opponent-position feed toward the client
const feedInterval = 50 * time.Millisecond

// beginMatch sets up the per-match state of one participant once the room
// listener reports the game started: own presence + disconnect hook, the
// bounded-rate position publisher, the opponent mirror and its connection
// watch, and the match scorer.
func beginMatch(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer, roomID string) {
	ctx := context.Background()
	session, ok := sio.GetSession(username)
	if !ok {
		return
	}

	room, found, err := svc.Rooms.GetRoom(ctx, roomID)
	if err != nil || !found {
		log.Printf("[MATCH-ERROR] Room %s desapareció antes de empezar: %v", roomID, err)
		return
	}
	opponentID := ""
	for id := range room.Players {
		if id != username {
			opponentID = id
		}
	}

	if err := svc.Replicator.EnterMatch(ctx, string(client.Id()), roomID, username, username); err != nil {
		log.Printf("[MATCH-ERROR] EnterMatch de %s en room %s: %v", username, roomID, err)
		return
	}

	publisher := replication.NewPublisher(svc.Store, roomID, username)
	publisher.Start(ctx)

	session.BeginMatch(roomID, opponentID, publisher, scoring.NewScorer(svc.Store, roomID, svc.Scoring))

	// Both participants learn the outcome through the shared stats
	// document, whichever of them happened to finish last
	resultWatch, err := scoring.WatchResult(ctx, svc.Store, roomID, func(stats realtime.MultiplayerGameStats) {
		client.Emit("match_result", gin.H{
			"winner_id":   stats.WinnerID,
			"winner_name": stats.WinnerName,
			"player1":     stats.Player1,
			"player2":     stats.Player2,
		})
	})
	if err != nil {
		log.Printf("[MATCH-ERROR] Watch del resultado en room %s: %v", roomID, err)
	} else {
		session.AttachResultWatch(resultWatch)
	}

	if opponentID == "" {
		log.Printf("[MATCH-WARN] Room %s empezó sin oponente para %s", roomID, username)
		return
	}

	remote, err := replication.WatchRemotePlayer(ctx, svc.Store, roomID, opponentID)
	if err != nil {
		log.Printf("[MATCH-ERROR] Watch del oponente %s: %v", opponentID, err)
		return
	}
	session.AttachPeer(remote)

	watch, err := svc.Replicator.WatchConnection(ctx, roomID, opponentID, func(playerID string) {
		client.Emit("opponent_disconnected", gin.H{"player_id": playerID})
	})
	if err != nil {
		log.Printf("[MATCH-ERROR] Watch de conexión de %s: %v", opponentID, err)
	} else {
		session.AttachPeerWatch(watch)
	}

	// Smoothed opponent-position feed at the same bounded rate as the
	// publisher. Facing snaps, position interpolates.
	stop := make(chan struct{})
	session.AttachFeed(stop)
	go func() {
		ticker := time.NewTicker(feedInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				dt := now.Sub(last).Seconds()
				last = now
				target, has := remote.Target()
				if !has {
					continue
				}
				x, y := remote.Step(dt)
				client.Emit("opponent_position", gin.H{
					"player_id":    opponentID,
					"x":            x,
					"y":            y,
					"facing_right": remote.FacingRight(),
					"velocity_x":   target.VelocityX,
					"velocity_y":   target.VelocityY,
					"is_grounded":  target.IsGrounded,
				})
			}
		}
	}()

	log.Printf("[MATCH] Usuario %s en partida %s contra %s", username, roomID, opponentID)
}

// HandlePositionUpdate records the client's newest transform sample. The
// publisher drains it on its own clock; there is no per-event remote write.
func HandlePositionUpdate(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		session, ok := sio.GetSession(username)
		if !ok {
			return
		}
		publisher := session.Publisher()
		if publisher == nil {
			return
		}
		payload := argMap(args)
		if payload == nil {
			return
		}
		publisher.Update(realtime.PlayerPositionData{
			X:              getFloat(payload, "x"),
			Y:              getFloat(payload, "y"),
			FacingRight:    getBool(payload, "facing_right"),
			VelocityX:      getFloat(payload, "velocity_x"),
			VelocityY:      getFloat(payload, "velocity_y"),
			IsGrounded:     getBool(payload, "is_grounded"),
			IsWallDetected: getBool(payload, "is_wall_detected"),
		})
	}
}

// HandleLevelFinished records the player's final per-session stats and, if
// both participants are done, reports the match result.
func HandleLevelFinished(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		session, ok := sio.GetSession(username)
		if !ok {
			client.Emit("error", gin.H{"error": "No match in progress"})
			return
		}
		scorer := session.Scorer()
		if scorer == nil {
			client.Emit("error", gin.H{"error": "No match in progress"})
			return
		}
		payload := argMap(args)
		if payload == nil {
			client.Emit("error", gin.H{"error": "Missing level stats"})
			return
		}

		err := scorer.RecordFinish(context.Background(), username, username,
			getInt(payload, "fruit_collected"),
			getFloat(payload, "completion_time"),
			getInt(payload, "enemies_killed"),
			getInt(payload, "knockbacks"))
		if err != nil {
			log.Printf("[FINISH-ERROR] %v", err)
			client.Emit("error", gin.H{"error": "Error recording finish"})
			return
		}
		// The match_result emit rides the result watch both clients hold,
		// so the first finisher learns the outcome too
	}
}

// HandleLevelRestarted reinitializes the caller's own stats slot after an
// in-level restart. The opponent's slot and any finish it already reported
// are left untouched.
func HandleLevelRestarted(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		session, ok := sio.GetSession(username)
		if !ok {
			return
		}
		scorer := session.Scorer()
		if scorer == nil {
			return
		}
		if err := scorer.RestartSlot(context.Background(), username); err != nil {
			log.Printf("[RESTART-ERROR] %v", err)
			client.Emit("error", gin.H{"error": "Error restarting level"})
		}
	}
}

// HandleMatchOverview replies with a point-in-time view of the live match
// state, latest positions folded in.
func HandleMatchOverview(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		session, ok := sio.GetSession(username)
		if !ok || session.Room() == "" {
			client.Emit("error", gin.H{"error": "No match in progress"})
			return
		}
		overview, err := svc.Replicator.MatchOverview(context.Background(), session.Room())
		if err != nil {
			log.Printf("[OVERVIEW-ERROR] %v", err)
			client.Emit("error", gin.H{"error": "Error reading match state"})
			return
		}
		client.Emit("match_overview", overview)
	}
}

// HandleSubmitRating merges the caller's post-match peer rating into the
// match history record and archives the finished match to PostgreSQL.
func HandleSubmitRating(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		ctx := context.Background()
		session, ok := sio.GetSession(username)
		if !ok {
			client.Emit("error", gin.H{"error": "No match to rate"})
			return
		}
		scorer := session.Scorer()
		if scorer == nil {
			client.Emit("error", gin.H{"error": "No match to rate"})
			return
		}
		payload := argMap(args)
		if payload == nil {
			client.Emit("error", gin.H{"error": "Missing rating"})
			return
		}
		rating := getString(payload, "rating")
		roomID := session.Room()

		snapshot, found, err := scorer.Stats(ctx)
		if err != nil || !found {
			client.Emit("error", gin.H{"error": "No match stats to rate"})
			return
		}

		if err := svc.History.SubmitRating(ctx, roomID, snapshot, username, rating); err != nil {
			log.Printf("[RATING-ERROR] %v", err)
			client.Emit("error", gin.H{"error": "Error submitting rating"})
			return
		}

		// Best-effort archive; the upsert makes a second participant's
		// archive overwrite harmless
		if snapshot.GameStatus == realtime.GameStatusFinished {
			if err := svc.Sync.ArchiveMatch(ctx, roomID); err != nil {
				log.Printf("[RATING-WARN] Error archivando partida %s: %v", roomID, err)
			}
		}

		client.Emit("rating_submitted", gin.H{"room_id": roomID})
	}
}
