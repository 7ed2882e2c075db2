package handlers

import (
	socketio_types "Pixelhop/services/socket_io/types"
	"context"
	"log"

	"github.com/zishang520/socket.io/v2/socket"
)

// HandleDisconnecting tears down everything the connection owned: the
// registered disconnect writes run first (best-effort online-flag flip),
// then the room is left and every live subscription is closed. The other
// participant learns about it through the store, not through this socket.
func HandleDisconnecting(svc *Services, client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		ctx := context.Background()
		log.Printf("[DISCONNECT] Usuario %s desconectando", username)

		// Fire-and-forget disconnect writes registered by EnterMatch
		svc.Store.RunDisconnect(ctx, string(client.Id()))

		if session, ok := sio.GetSession(username); ok {
			if roomID := session.Room(); roomID != "" {
				// Host leave removes the room for everyone; non-host leave
				// removes only this player's entry
				if err := svc.Rooms.LeaveRoom(ctx, username, roomID); err != nil {
					log.Printf("[DISCONNECT-ERROR] Error saliendo de room %s: %v", roomID, err)
				}
				svc.Replicator.LeaveMatch(ctx, roomID, username)
			}
			session.Close()
		}

		sio.RemoveConnection(username)
		log.Printf("[DISCONNECT-SUCCESS] Usuario %s desconectado", username)
	}
}
