package handlers

import (
	models "Pixelhop/models/postgres"
	"Pixelhop/services/rooms"
	socketio_types "Pixelhop/services/socket_io/types"
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleCreateRoom creates a fresh lobby room with the caller as host and,
// when the payload names an invitee, sends the invitation alongside. A new
// room id is allocated on every request; callers retry by simply asking
// again.
func HandleCreateRoom(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		ctx := context.Background()
		payload := argMap(args)
		invitedID := ""
		if payload != nil {
			invitedID = getString(payload, "invited_id")
		}
		log.Printf("[CREATE] Usuario %s creando room (invitado: %q)", username, invitedID)

		roomID := svc.Rooms.CreateRoom(ctx, username, username, invitedID)

		// Durable invitation log, serving the REST inbox
		if invitedID != "" && invitedID != username {
			inv := models.GameInvitation{
				RoomID:          roomID,
				SenderUsername:  username,
				InvitedUsername: invitedID,
				Status:          "pending",
			}
			if err := svc.DB.Create(&inv).Error; err != nil {
				log.Printf("[CREATE-WARN] Error registrando invitación en Postgres: %v", err)
			}
		}

		if err := attachRoomListener(svc, client, username, sio, roomID); err != nil {
			log.Printf("[CREATE-ERROR] Error escuchando room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "Error listening to room"})
			return
		}

		log.Printf("[CREATE-SUCCESS] Usuario %s creó room %s", username, roomID)
		client.Emit("room_created", gin.H{"room_id": roomID})
	}
}

// HandleJoinRoom joins an existing room by id.
func HandleJoinRoom(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Room id must be a string"})
			return
		}
		ctx := context.Background()
		log.Printf("[JOIN] Usuario %s uniéndose a room %s", username, roomID)

		if err := svc.Rooms.JoinRoom(ctx, username, username, roomID); err != nil {
			log.Printf("[JOIN-ERROR] %v", err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		if err := attachRoomListener(svc, client, username, sio, roomID); err != nil {
			log.Printf("[JOIN-ERROR] Error escuchando room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "Error listening to room"})
			return
		}

		log.Printf("[JOIN-SUCCESS] Usuario %s unido a room %s", username, roomID)
		client.Emit("joined_room", gin.H{"room_id": roomID})
	}
}

// HandleToggleReady flips the caller's own ready flag in its current room.
func HandleToggleReady(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		session, ok := sio.GetSession(username)
		if !ok || session.Room() == "" {
			client.Emit("error", gin.H{"error": "You are not in a room"})
			return
		}
		if err := svc.Rooms.ToggleReady(context.Background(), username, session.Room()); err != nil {
			log.Printf("[READY-ERROR] %v", err)
			client.Emit("error", gin.H{"error": err.Error()})
		}
	}
}

// HandleLeaveRoom leaves the current room. When the caller is the host the
// whole room goes away and every listener observes the teardown.
func HandleLeaveRoom(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		session, ok := sio.GetSession(username)
		if !ok || session.Room() == "" {
			client.Emit("error", gin.H{"error": "You are not in a room"})
			return
		}
		roomID := session.Room()
		log.Printf("[LEAVE] Usuario %s saliendo de room %s", username, roomID)

		if err := svc.Rooms.LeaveRoom(context.Background(), username, roomID); err != nil {
			log.Printf("[LEAVE-ERROR] %v", err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		// Listener teardown on every exit path
		session.Close()
		client.Emit("left_room", gin.H{"room_id": roomID})
	}
}

// HandleStartGame asks the room manager to start the match. Host-only and
// both-ready preconditions are enforced before any remote write.
func HandleStartGame(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		session, ok := sio.GetSession(username)
		if !ok || session.Room() == "" {
			client.Emit("error", gin.H{"error": "You are not in a room"})
			return
		}
		if err := svc.Rooms.StartGame(context.Background(), username, session.Room()); err != nil {
			log.Printf("[START-ERROR] %v", err)
			client.Emit("error", gin.H{"error": err.Error()})
		}
		// The game_started emit rides the room listener, not this ack:
		// both clients must observe exactly one event through the same path
	}
}

// attachRoomListener wires the projector signals of one room to the
// client's socket and stores the handles in the player session.
func attachRoomListener(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer, roomID string) error {
	session, ok := sio.GetSession(username)
	if !ok {
		session = &socketio_types.PlayerSession{}
		sio.SetSession(username, session)
	}
	// Leaving a previous room implies dropping its listener first
	session.Close()

	listener, err := svc.Rooms.Listen(context.Background(), roomID, rooms.Signals{
		OnRoomPlayersChanged: func(players []rooms.PlayerView, hostID string) {
			client.Emit("room_players_changed", gin.H{
				"room_id":    roomID,
				"players":    players,
				"host_id":    hostID,
				"both_ready": rooms.BothReady(players),
			})
		},
		OnRoomEnded: func() {
			client.Emit("room_ended", gin.H{"room_id": roomID})
			// The room is gone; release the per-match handles with it
			session.CloseMatchState()
		},
		OnGameStarted: func(roomID string) {
			beginMatch(svc, client, username, sio, roomID)
			client.Emit("game_started", gin.H{"room_id": roomID})
		},
	})
	if err != nil {
		return err
	}

	session.BindRoom(roomID, listener)
	return nil
}
