package handlers

import (
	models "Pixelhop/models/postgres"
	socketio_types "Pixelhop/services/socket_io/types"
	"Pixelhop/utils"
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleSendInvitation pushes an invitation into another player's inbox for
// the caller's current room. Fire-and-forget toward the store.
func HandleSendInvitation(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		session, ok := sio.GetSession(username)
		if !ok || session.Room() == "" {
			client.Emit("error", gin.H{"error": "You are not in a room"})
			return
		}
		roomID := session.Room()
		payload := argMap(args)
		if payload == nil {
			client.Emit("error", gin.H{"error": "Missing invited player"})
			return
		}
		invitedID := getString(payload, "invited_id")
		if invitedID == "" || invitedID == username {
			client.Emit("error", gin.H{"error": "Invalid invited player"})
			return
		}

		svc.Invites.Send(context.Background(), roomID, username, invitedID, username)

		inv := models.GameInvitation{
			RoomID:          roomID,
			SenderUsername:  username,
			InvitedUsername: invitedID,
			Status:          "pending",
		}
		if err := svc.DB.Create(&inv).Error; err != nil {
			log.Printf("[INVITE-WARN] Error registrando invitación en Postgres: %v", err)
		}

		client.Emit("invitation_sent", gin.H{
			"room_id":     roomID,
			"invited_id":  invitedID,
			"sender_icon": utils.UserIcon(svc.DB, username),
		})
	}
}

// HandleAcceptInvitation consumes the invitation and joins its room. A
// second accept of the same id is a no-op, not an error.
func HandleAcceptInvitation(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		ctx := context.Background()
		payload := argMap(args)
		if payload == nil {
			client.Emit("error", gin.H{"error": "Missing invitation id"})
			return
		}
		invitationID := getString(payload, "invitation_id")

		roomID, found, err := svc.Invites.Accept(ctx, username, invitationID)
		if err != nil {
			log.Printf("[INVITE-ERROR] %v", err)
			client.Emit("error", gin.H{"error": "Error accepting invitation"})
			return
		}
		if !found {
			// Already consumed; nothing left to do
			return
		}

		if err := svc.DB.Model(&models.GameInvitation{}).
			Where("room_id = ? AND invited_username = ?", roomID, username).
			Update("status", "accepted").Error; err != nil {
			log.Printf("[INVITE-WARN] Error actualizando invitación en Postgres: %v", err)
		}

		if err := svc.Rooms.JoinRoom(ctx, username, username, roomID); err != nil {
			log.Printf("[INVITE-ERROR] Join tras aceptar: %v", err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}
		if err := attachRoomListener(svc, client, username, sio, roomID); err != nil {
			log.Printf("[INVITE-ERROR] Error escuchando room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "Error listening to room"})
			return
		}
		client.Emit("joined_room", gin.H{"room_id": roomID})
	}
}

// HandleDeclineInvitation consumes the invitation without joining.
func HandleDeclineInvitation(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload := argMap(args)
		if payload == nil {
			client.Emit("error", gin.H{"error": "Missing invitation id"})
			return
		}
		invitationID := getString(payload, "invitation_id")

		if err := svc.Invites.Decline(context.Background(), username, invitationID); err != nil {
			log.Printf("[INVITE-ERROR] %v", err)
			client.Emit("error", gin.H{"error": "Error declining invitation"})
			return
		}

		if err := svc.DB.Model(&models.GameInvitation{}).
			Where("invited_username = ? AND status = ?", username, "pending").
			Update("status", "declined").Error; err != nil {
			log.Printf("[INVITE-WARN] Error actualizando invitación en Postgres: %v", err)
		}

		client.Emit("invitation_declined", gin.H{"invitation_id": invitationID})
	}
}
